package trie

import (
	"fmt"

	"triewitness/trie/nibble"
	"triewitness/trie/trienode"
)

// Update computes the root that results from inserting or overwriting
// key with value in the trie rooted at root, given a proof reaching
// either key itself or the point where it would be inserted. There is
// no "not found" outcome: the shape of the proof, combined with the
// walk, determines which of the five replacement cases applies.
func Update(key, value, proofRLP []byte, root [32]byte) ([32]byte, error) {
	proof, err := trienode.ParseProof(proofRLP)
	if err != nil {
		return [32]byte{}, err
	}

	res, err := walk(proof, key, root)
	if err != nil {
		return [32]byte{}, err
	}

	last := proof[res.pathLength-1]
	kind, err := trienode.Type(last)
	if err != nil {
		return [32]byte{}, err
	}

	newNodes, err := buildReplacement(last, kind, res.keyRemainder, value)
	if err != nil {
		return [32]byte{}, err
	}

	newPath := make([]trienode.Node, 0, res.pathLength-1+len(newNodes))
	newPath = append(newPath, proof[:res.pathLength-1]...)
	newPath = append(newPath, newNodes...)

	return getUpdatedTrieRoot(newPath, key), nil
}

// buildReplacement constructs the (at most 3) replacement tail nodes for
// the position the walk landed on: (A) overwrite a leaf's value, (B)
// overwrite a branch's value slot, (C) hang a new leaf off a branch, (D)
// split a leaf or extension that diverges partway through its key, or
// (E) insert the first entry into an empty trie.
func buildReplacement(last trienode.Node, kind trienode.Kind, keyRemainder, value []byte) ([]trienode.Node, error) {
	switch {
	case kind == trienode.Empty:
		// (E) inserting into an empty trie: nothing to split, the
		// whole key becomes a single leaf's key.
		return []trienode.Node{trienode.MakeLeafNode(keyRemainder, value)}, nil

	case len(keyRemainder) == 0 && kind == trienode.Leaf:
		// (A) exact hit on a leaf: overwrite its value.
		nodeKey, err := trienode.Key(last)
		if err != nil {
			return nil, err
		}
		return []trienode.Node{trienode.MakeLeafNode(nodeKey, value)}, nil

	case kind == trienode.Branch && len(keyRemainder) == 0:
		// (B) exact hit on a branch's value slot.
		return []trienode.Node{trienode.EditBranchValue(last, value)}, nil

	case kind == trienode.Branch:
		// (C) branch reached with a key remainder: keep the branch,
		// append a leaf for the new tail. The fold wires the leaf's
		// hash into the branch slot named by keyRemainder[0].
		newLeaf := trienode.MakeLeafNode(keyRemainder[1:], value)
		return []trienode.Node{last, newLeaf}, nil

	case kind == trienode.Leaf || kind == trienode.Extension:
		// (D) leaf or extension reached with a key remainder: split.
		return buildSplit(last, kind, keyRemainder, value)

	default:
		return nil, fmt.Errorf("trie: unreachable node kind %d", kind)
	}
}

// buildSplit implements case (D): splitting a leaf or extension node
// into an (optional) shared extension, a branch, and an (optional) new
// leaf for the inserted value.
func buildSplit(last trienode.Node, kind trienode.Kind, keyRemainder, value []byte) ([]trienode.Node, error) {
	lastKey, err := trienode.Key(last)
	if err != nil {
		return nil, err
	}

	// lastChild is the tail's trailing slot: a terminal value for a
	// leaf, or a child reference (inlined node or hash) for an
	// extension. Value() assumes a string and cannot be used for an
	// extension's slot, which may be list-encoded when inlined.
	var lastChild []byte
	if kind == trienode.Leaf {
		lastChild, err = trienode.Value(last)
		if err != nil {
			return nil, err
		}
	} else {
		lastChild = trienode.ID(last.Decoded[len(last.Decoded)-1])
	}

	shared := nibble.SharedLength(lastKey, keyRemainder)

	var nodes []trienode.Node
	if shared > 0 {
		// Placeholder reference, overwritten with the branch's real
		// hash once the fold below finishes building it. It is always a
		// 32-byte hash so the placeholder is a well-formed 2-item node.
		placeholder := keccak256Bytes(value)
		nodes = append(nodes, trienode.MakeExtensionNode(lastKey[:shared], placeholder))
		lastKey = lastKey[shared:]
		keyRemainder = keyRemainder[shared:]
	}

	branch := trienode.MakeEmptyBranchNode()

	if len(lastKey) == 0 {
		// Only reachable for a leaf: an extension's key can never be
		// fully consumed here, since the walk would have descended
		// into its child instead of stopping at the extension.
		branch = trienode.EditBranchValue(branch, lastChild)
	} else {
		b := lastKey[0]
		rest := lastKey[1:]
		if len(rest) > 0 {
			var tail trienode.Node
			if kind == trienode.Leaf {
				tail = trienode.MakeLeafNode(rest, lastChild)
			} else {
				tail = trienode.MakeExtensionNode(rest, lastChild)
			}
			branch = trienode.EditBranchIndex(branch, int(b), trienode.Hash(tail.Encoded, keccak256Bytes))
		} else if kind == trienode.Leaf {
			tail := trienode.MakeLeafNode(rest, lastChild)
			branch = trienode.EditBranchIndex(branch, int(b), trienode.Hash(tail.Encoded, keccak256Bytes))
		} else {
			branch = trienode.EditBranchIndex(branch, int(b), lastChild)
		}
	}

	if len(keyRemainder) == 0 {
		branch = trienode.EditBranchValue(branch, value)
		nodes = append(nodes, branch)
	} else {
		nodes = append(nodes, branch)
		newLeaf := trienode.MakeLeafNode(keyRemainder[1:], value)
		nodes = append(nodes, newLeaf)
	}

	return nodes, nil
}

// getUpdatedTrieRoot folds newPath from tail to root, rewriting any
// node whose child changed and re-hashing each one in turn.
func getUpdatedTrieRoot(newPath []trienode.Node, key []byte) [32]byte {
	keyNibbles := nibble.Expand(key)
	var previousHash []byte

	for i := len(newPath) - 1; i >= 0; i-- {
		n := newPath[i]
		kind, err := trienode.Type(n)
		if err != nil {
			// newPath contains only freshly constructed or
			// already-validated nodes; this cannot happen.
			panic(fmt.Sprintf("trie: invalid node in fold: %v", err))
		}

		switch kind {
		case trienode.Leaf:
			nodeKey, _ := trienode.Key(n)
			keyNibbles = keyNibbles[:len(keyNibbles)-len(nodeKey)]

		case trienode.Extension:
			nodeKey, _ := trienode.Key(n)
			keyNibbles = keyNibbles[:len(keyNibbles)-len(nodeKey)]
			if len(previousHash) > 0 {
				n = trienode.MakeExtensionNode(nodeKey, previousHash)
				newPath[i] = n
			}

		case trienode.Branch:
			if len(previousHash) > 0 {
				b := keyNibbles[len(keyNibbles)-1]
				keyNibbles = keyNibbles[:len(keyNibbles)-1]
				n = trienode.EditBranchIndex(n, int(b), previousHash)
				newPath[i] = n
			}
		}

		previousHash = trienode.Hash(n.Encoded, keccak256Bytes)
	}

	return keccak256(newPath[0].Encoded)
}
