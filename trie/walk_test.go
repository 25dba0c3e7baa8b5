package trie

import (
	"bytes"
	"testing"

	"triewitness/trie/nibble"
	"triewitness/trie/trienode"
)

// buildTwoLeafBranch builds a branch with leaf children at nibbles a and
// b, each holding the given value, and returns the branch plus both
// leaves (all already hashed/encoded, ready to drop into a proof list).
func buildTwoLeafBranch(t *testing.T, a byte, aRest []byte, aVal []byte, b byte, bRest []byte, bVal []byte) (trienode.Node, trienode.Node, trienode.Node) {
	t.Helper()
	leafA := trienode.MakeLeafNode(aRest, aVal)
	leafB := trienode.MakeLeafNode(bRest, bVal)

	branch := trienode.MakeEmptyBranchNode()
	branch = trienode.EditBranchIndex(branch, int(a), trienode.Hash(leafA.Encoded, keccak256Bytes))
	branch = trienode.EditBranchIndex(branch, int(b), trienode.Hash(leafB.Encoded, keccak256Bytes))
	return branch, leafA, leafB
}

func TestWalkBranchToLeaf(t *testing.T) {
	// key nibbles: [1, 2, 3, 4] -> leaf at slot 1 with rest [2,3,4]
	// a sibling key at slot 5 to prove the branch is real.
	branch, leafA, _ := buildTwoLeafBranch(t, 1, []byte{2, 3, 4}, []byte("hello"), 5, []byte{9}, []byte("world"))
	root := keccak256(branch.Encoded)

	proof := []trienode.Node{branch, leafA}
	key := nibble.Pack([]byte{1, 2, 3, 4})

	res, err := walk(proof, key, root)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if res.pathLength != 2 {
		t.Errorf("expected pathLength 2, got %d", res.pathLength)
	}
	if len(res.keyRemainder) != 0 {
		t.Errorf("expected empty key remainder, got %v", res.keyRemainder)
	}
	if !res.isDeadEnd {
		t.Errorf("expected an exact leaf hit to be reported as a dead end")
	}
}

func TestWalkBranchEmptySlot(t *testing.T) {
	branch, _, _ := buildTwoLeafBranch(t, 1, []byte{2}, []byte("a"), 5, []byte{9}, []byte("b"))
	root := keccak256(branch.Encoded)

	key := nibble.Pack([]byte{3, 0})
	res, err := walk([]trienode.Node{branch}, key, root)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !res.isDeadEnd {
		t.Errorf("expected empty slot lookup to be a dead end")
	}
	if len(res.keyRemainder) != 2 {
		t.Errorf("expected full key remainder preserved, got %v", res.keyRemainder)
	}
}

func TestWalkBranchExactValueSlot(t *testing.T) {
	branch, _, _ := buildTwoLeafBranch(t, 1, []byte{2}, []byte("a"), 5, []byte{9}, []byte("b"))
	branch = trienode.EditBranchValue(branch, []byte("root value"))
	root := keccak256(branch.Encoded)

	res, err := walk([]trienode.Node{branch}, []byte{}, root)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if res.isDeadEnd {
		t.Errorf("expected branch value slot hit not to be a dead end")
	}
	if len(res.keyRemainder) != 0 {
		t.Errorf("expected empty remainder, got %v", res.keyRemainder)
	}
}

func TestWalkExtensionFullMatch(t *testing.T) {
	leaf := trienode.MakeLeafNode([]byte{7, 8, 9}, []byte("deep"))
	ext := trienode.MakeExtensionNode([]byte{1, 2, 3}, trienode.Hash(leaf.Encoded, keccak256Bytes))
	root := keccak256(ext.Encoded)

	key := nibble.Pack([]byte{1, 2, 3, 7, 8, 9})
	res, err := walk([]trienode.Node{ext, leaf}, key, root)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if res.isDeadEnd != true {
		t.Errorf("expected the terminal leaf hit to report a dead end")
	}
	if len(res.keyRemainder) != 0 {
		t.Errorf("expected empty remainder, got %v", res.keyRemainder)
	}
}

func TestWalkExtensionPartialDivergence(t *testing.T) {
	leaf := trienode.MakeLeafNode([]byte{7, 8}, []byte("deep"))
	ext := trienode.MakeExtensionNode([]byte{1, 2, 3}, trienode.Hash(leaf.Encoded, keccak256Bytes))
	root := keccak256(ext.Encoded)

	// key shares only the first nibble (1) with the extension's path
	// (1,2,3) before diverging at the second nibble (9 != 2).
	key := nibble.Pack([]byte{1, 9, 0, 0})
	res, err := walk([]trienode.Node{ext}, key, root)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !res.isDeadEnd {
		t.Errorf("expected a mid-extension divergence to be a dead end")
	}
	if len(res.keyRemainder) != 4 {
		t.Errorf("expected the full unconsumed key preserved on divergence, got %v (len %d)", res.keyRemainder, len(res.keyRemainder))
	}
	if !bytes.Equal(res.keyRemainder, []byte{1, 9, 0, 0}) {
		t.Errorf("expected keyRemainder to start over at the extension, got %v", res.keyRemainder)
	}
}

func TestWalkEmptyTrieSentinel(t *testing.T) {
	emptyNode, err := trienode.DecodeNode([]byte{0x80})
	if err != nil {
		t.Fatalf("expected no error decoding the empty-trie sentinel, got %v", err)
	}
	root := keccak256(emptyNode.Encoded)

	key := nibble.Pack([]byte{0xA, 0x7})
	res, err := walk([]trienode.Node{emptyNode}, key, root)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !res.isDeadEnd {
		t.Errorf("expected the empty trie to be reported as a dead end")
	}
	if !bytes.Equal(res.keyRemainder, []byte{0xA, 0x7}) {
		t.Errorf("expected the full key preserved as remainder, got %v", res.keyRemainder)
	}
}

func TestWalkInvalidRoot(t *testing.T) {
	leaf := trienode.MakeLeafNode([]byte{1}, []byte("v"))
	var wrongRoot [32]byte
	wrongRoot[0] = 0xFF

	_, err := walk([]trienode.Node{leaf}, []byte{0x10}, wrongRoot)
	if err == nil {
		t.Fatalf("expected ErrInvalidRoot, got nil")
	}
}

func TestWalkEmptyProof(t *testing.T) {
	_, err := walk(nil, []byte{0x10}, [32]byte{})
	if err != ErrEmptyProof {
		t.Errorf("expected ErrEmptyProof, got %v", err)
	}
}
