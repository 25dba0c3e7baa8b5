package trie

import (
	"fmt"

	"triewitness/trie/nibble"
	"triewitness/trie/rlp"
	"triewitness/trie/trienode"
)

// walkResult is the outcome of walking a proof toward a key.
type walkResult struct {
	// pathLength is the number of proof nodes actually consumed.
	pathLength int
	// keyRemainder is the nibbles of the key left unmatched once the
	// walk stopped.
	keyRemainder []byte
	// isDeadEnd is true iff the walk terminated on a provably absent
	// reference: an empty branch slot, a diverging extension, or any
	// leaf (a leaf always marks a dead end, exact hit or not; callers
	// distinguish the two via keyRemainder).
	isDeadEnd bool
}

// walk walks proof, matching nibbles of key against each node in turn,
// starting from root.
func walk(proof []trienode.Node, key []byte, root [32]byte) (walkResult, error) {
	if len(proof) == 0 {
		return walkResult{}, ErrEmptyProof
	}

	keyNibbles := nibble.Expand(key)
	cursor := 0
	currentRef := root

	for i, n := range proof {
		if i == 0 {
			if keccak256(n.Encoded) != root {
				return walkResult{}, fmt.Errorf("%w: node 0", ErrInvalidRoot)
			}
		} else {
			var ref [32]byte
			if len(n.Encoded) >= 32 {
				ref = keccak256(n.Encoded)
			} else {
				ref = nibble.RefBytes32(n.Encoded)
			}
			if ref != currentRef {
				return walkResult{}, fmt.Errorf("%w: node %d", ErrInvalidProof, i)
			}
		}

		kind, err := trienode.Type(n)
		if err != nil {
			return walkResult{}, err
		}

		switch kind {
		case trienode.Empty:
			// The canonical empty string stands in for an empty trie:
			// nothing to match against, so the whole remaining key is
			// unmatched and the proof establishes absence.
			return walkResult{pathLength: i + 1, keyRemainder: keyNibbles[cursor:], isDeadEnd: true}, nil

		case trienode.Branch:
			if cursor == len(keyNibbles) {
				return walkResult{pathLength: i + 1, keyRemainder: keyNibbles[cursor:], isDeadEnd: false}, nil
			}

			slot := n.Decoded[keyNibbles[cursor]]
			slotBytes := rlp.ToRlpBytes(slot)
			if trienode.IsEmptySlot(slotBytes) {
				return walkResult{pathLength: i + 1, keyRemainder: keyNibbles[cursor:], isDeadEnd: true}, nil
			}

			currentRef = nibble.RefBytes32(trienode.ID(slot))
			cursor++

		case trienode.Extension:
			nodeKey, err := trienode.Key(n)
			if err != nil {
				return walkResult{}, err
			}
			remaining := keyNibbles[cursor:]
			shared := nibble.SharedLength(nodeKey, remaining)

			if shared < len(nodeKey) {
				// The key diverges somewhere within this
				// extension's own path (including right at its
				// start): the proof establishes absence here.
				return walkResult{pathLength: i + 1, keyRemainder: remaining, isDeadEnd: true}, nil
			}

			currentRef = nibble.RefBytes32(trienode.ID(n.Decoded[1]))
			cursor += shared

		case trienode.Leaf:
			nodeKey, err := trienode.Key(n)
			if err != nil {
				return walkResult{}, err
			}
			remaining := keyNibbles[cursor:]
			shared := nibble.SharedLength(nodeKey, remaining)

			if shared == len(nodeKey) && shared == len(remaining) {
				cursor += shared
			}
			return walkResult{pathLength: i + 1, keyRemainder: keyNibbles[cursor:], isDeadEnd: true}, nil
		}
	}

	// The proof was exhausted without reaching a branch's value slot, a
	// dead end, or a leaf — the caller supplied an insufficient proof.
	return walkResult{pathLength: len(proof), keyRemainder: keyNibbles[cursor:], isDeadEnd: false}, nil
}
