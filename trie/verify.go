// Package trie implements a pure, stateless Merkle-Patricia trie proof
// engine: verifying inclusion and exclusion proofs against a known root
// hash, and computing the root that results from inserting or
// overwriting a key/value pair given a proof rooted at the current
// root. It has no mutable state and performs no I/O; every exported
// function is a pure function of its arguments and is safe to call
// concurrently on disjoint inputs.
package trie

import (
	"triewitness/trie/nibble"
	"triewitness/trie/trienode"
)

// VerifyInclusionProof reports whether proof establishes that key maps
// to value under root. The proof's first node must hash to root;
// callers get ErrInvalidRoot/ErrInvalidProof/ErrMalformedRLP-family
// errors if the proof itself can't be interpreted, and a plain boolean
// otherwise — a malformed or mismatched proof is an error, not a false
// return.
func VerifyInclusionProof(key, value, proofRLP []byte, root [32]byte) (bool, error) {
	proof, err := trienode.ParseProof(proofRLP)
	if err != nil {
		return false, err
	}

	res, err := walk(proof, key, root)
	if err != nil {
		return false, err
	}

	last := proof[res.pathLength-1]
	kind, err := trienode.Type(last)
	if err != nil {
		return false, err
	}
	if kind == trienode.Extension || kind == trienode.Empty {
		// Neither an extension nor the empty-trie sentinel ever
		// terminates a key with a value, so landing on one is never
		// inclusion.
		return false, nil
	}

	lastValue, err := trienode.Value(last)
	if err != nil {
		return false, err
	}

	return len(res.keyRemainder) == 0 && nibble.Equal(lastValue, value), nil
}

// VerifyExclusionProof reports whether proof establishes that key does
// not map to value under root. Passing value = 0x against a present
// zero-length value is reported as inclusion, not exclusion; this is a
// deliberate choice rather than a special case.
func VerifyExclusionProof(key, value, proofRLP []byte, root [32]byte) (bool, error) {
	proof, err := trienode.ParseProof(proofRLP)
	if err != nil {
		return false, err
	}

	res, err := walk(proof, key, root)
	if err != nil {
		return false, err
	}

	last := proof[res.pathLength-1]
	kind, err := trienode.Type(last)
	if err != nil {
		return false, err
	}
	if kind == trienode.Extension || kind == trienode.Empty {
		// Neither an extension nor the empty-trie sentinel ever
		// terminates a key with a value; landing on one excludes key
		// only on a dead end, not when the proof simply ends after a
		// fully matched extension.
		return res.isDeadEnd, nil
	}

	lastValue, err := trienode.Value(last)
	if err != nil {
		return false, err
	}

	if len(res.keyRemainder) == 0 {
		return !nibble.Equal(lastValue, value), nil
	}
	return res.isDeadEnd, nil
}

