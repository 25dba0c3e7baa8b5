package main

import (
	"fmt"

	"github.com/ethereum/go-ethereum/rlp"
)

// splitProofList decodes a proof file's contents into the ordered list
// of RLP-encoded trie nodes it holds.
func splitProofList(proofRLP []byte) ([][]byte, error) {
	var nodes [][]byte
	if err := rlp.DecodeBytes(proofRLP, &nodes); err != nil {
		return nil, fmt.Errorf("failed to decode proof file: %w", err)
	}
	return nodes, nil
}
