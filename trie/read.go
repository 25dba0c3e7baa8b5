package trie

import "triewitness/trie/trienode"

// ReadProof returns the value stored at key under root, or found=false
// if proof establishes key is absent. Unlike VerifyInclusionProof /
// VerifyExclusionProof it does not require the caller to already know
// the expected value — it is built on the same walk those two use, and
// exists for peripheral callers (such as the account/storage proof
// layer in package mpt) that need to recover a value from a proof
// rather than confirm one they already hold. It shares their error
// contract: a malformed or mismatched proof is an error, not a
// found=false result.
func ReadProof(key, proofRLP []byte, root [32]byte) (value []byte, found bool, err error) {
	proof, err := trienode.ParseProof(proofRLP)
	if err != nil {
		return nil, false, err
	}

	res, err := walk(proof, key, root)
	if err != nil {
		return nil, false, err
	}

	if len(res.keyRemainder) != 0 {
		return nil, false, nil
	}

	last := proof[res.pathLength-1]
	kind, err := trienode.Type(last)
	if err != nil {
		return nil, false, err
	}
	if kind == trienode.Extension || kind == trienode.Empty {
		return nil, false, nil
	}

	lastValue, err := trienode.Value(last)
	if err != nil {
		return nil, false, err
	}
	if len(lastValue) == 0 {
		return nil, false, nil
	}
	return lastValue, true, nil
}
