// Package mpt is the peripheral bridge between Ethereum account/storage
// state proofs and the pure trie engine in package trie. It is the kind
// of plumbing the engine deliberately stays free of: it knows about
// Ethereum's account RLP shape and about keccak-256-derived storage
// keys, neither of which the engine needs to know about.
package mpt

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	gethrlp "github.com/ethereum/go-ethereum/rlp"

	"triewitness/trie"
	"triewitness/trie/nibble"
	"triewitness/trie/rlp"
)

// Account represents an Ethereum account as stored in the state trie.
type Account struct {
	Nonce       uint64      `json:"nonce"`
	Balance     *big.Int    `json:"balance"`
	StorageRoot common.Hash `json:"storageRoot"`
	CodeHash    common.Hash `json:"codeHash"`
}

// VerifyAccountProof recovers and validates the account at address
// against stateRoot using a Merkle proof. If the account does not
// exist, but the proof is valid, (nil, nil) is returned.
func VerifyAccountProof(stateRoot common.Hash, address common.Address, proofNodes [][]byte) (*Account, error) {
	key := crypto.Keccak256(address[:])

	data, found, err := readProof(stateRoot, key, proofNodes)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}

	var account Account
	if err := gethrlp.DecodeBytes(data, &account); err != nil {
		return nil, fmt.Errorf("failed to decode account: %w", err)
	}
	return &account, nil
}

// VerifyStorageProof recovers and validates the value stored at slotKey
// against storageRoot using a Merkle proof. If there is no value for
// the given slot, nil is returned. The slot key is assumed to already
// be the keccak-256 hash of the raw byte key, matching Ethereum's
// storage trie convention.
func VerifyStorageProof(storageRoot common.Hash, slotKey common.Hash, proofNodes [][]byte) ([]byte, error) {
	if storageRoot == types.EmptyRootHash {
		return nil, nil
	}

	data, found, err := readProof(storageRoot, slotKey[:], proofNodes)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}

	var val []byte
	if err := gethrlp.DecodeBytes(data, &val); err != nil {
		return nil, fmt.Errorf("failed to decode value: %w", err)
	}
	return val, nil
}

// AsWord interprets a decoded storage value as a 32-byte big-endian
// word. RLP strips a value's leading zero bytes, so the bytes
// VerifyStorageProof returns are shorter than 32 whenever the on-chain
// word itself had leading zero bytes; AsWord restores that canonical
// width the way eth_getStorageAt results are usually displayed.
func AsWord(value []byte) [32]byte {
	return nibble.ToBytes32(value)
}

// readProof assembles proofNodes — each already a complete, independent
// RLP encoding of one trie node, the form callers such as eth_getProof
// hand back — into the single nested RLP list the engine walks, and
// reads the value at key, if present.
func readProof(root common.Hash, key []byte, proofNodes [][]byte) ([]byte, bool, error) {
	proofRLP := rlp.EncodeList(proofNodes)

	value, found, err := trie.ReadProof(key, proofRLP, [32]byte(root))
	if err != nil {
		return nil, false, fmt.Errorf("failed to read proof: %w", err)
	}
	return value, found, nil
}
