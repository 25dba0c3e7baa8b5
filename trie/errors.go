package trie

import "errors"

// Structural failures. These reject the input outright; they are never
// retried or swallowed, and are distinct from the boolean semantic
// outcomes verification returns.
var (
	// ErrInvalidRoot is returned when the first proof node does not
	// hash to the caller-supplied root.
	ErrInvalidRoot = errors.New("trie: proof does not match root")

	// ErrInvalidProof is returned when a non-root proof node's
	// reference check against its parent fails.
	ErrInvalidProof = errors.New("trie: invalid proof")

	// ErrEmptyProof is returned when the proof contains no nodes at
	// all — there is nothing to check against the root.
	ErrEmptyProof = errors.New("trie: empty proof")
)
