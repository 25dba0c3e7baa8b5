// Package trienode implements the Merkle-Patricia trie node model: node
// classification, hex-prefix path encoding/decoding, node construction,
// and node reference/hash derivation. It builds on trie/rlp for the
// codec and trie/nibble for byte/nibble primitives. It covers both
// directions: decoding nodes out of a proof and constructing the
// replacement nodes an update needs to rewrite part of that proof.
package trienode

import (
	"errors"

	"triewitness/trie/nibble"
	"triewitness/trie/rlp"
)

// ErrMalformedProof is returned when a proof element decodes to neither
// a 2-item nor a 17-item list.
var ErrMalformedProof = errors.New("trienode: malformed proof")

// ErrInvalidNodePrefix is returned when a 2-item node's path does not
// start with a hex-prefix nibble in {0,1,2,3}.
var ErrInvalidNodePrefix = errors.New("trienode: invalid node prefix")

// Kind classifies a decoded node.
type Kind int

const (
	// Branch is a 17-item node: 16 child slots plus a value slot.
	Branch Kind = iota
	// Extension is a 2-item node whose path nibble count must be
	// followed further to reach a value.
	Extension
	// Leaf is a 2-item node whose path is the remaining key to a value.
	Leaf
	// Empty is the canonical RLP empty string standing in for an empty
	// trie. It only ever appears as proof[0]: a branch's empty child
	// slot is recognized and treated as a dead end before the slot is
	// ever decoded as a node in its own right.
	Empty
)

const (
	shortNodeLength = 2
	fullNodeLength  = 17
)

// emptyStringRLP is the canonical RLP encoding of the empty string,
// used both as an empty branch slot and as the dead-end sentinel.
var emptyStringRLP = []byte{0x80}

// Node carries a trie node's canonical encoding together with its
// decoded children. Keeping both together lets the trie engine avoid
// re-decoding a node it has already classified.
type Node struct {
	Encoded []byte
	Decoded []rlp.Item
}

// ParseProof decodes an RLP-encoded proof list into its constituent
// nodes, in order from root to leaf.
func ParseProof(rlpProof []byte) ([]Node, error) {
	outer, err := rlp.ToItem(rlpProof)
	if err != nil {
		return nil, err
	}
	elems, err := rlp.ToList(outer)
	if err != nil {
		return nil, err
	}

	nodes := make([]Node, 0, len(elems))
	for _, elem := range elems {
		encoded := rlp.ToRlpBytes(elem)
		n, err := DecodeNode(encoded)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, n)
	}
	return nodes, nil
}

// DecodeNode decodes a single node from its RLP encoding, validating
// that it has either 2 or 17 decoded items. The canonical empty string
// (0x80) is accepted as a special case representing an empty trie and
// decodes to a Node with no children.
func DecodeNode(encoded []byte) (Node, error) {
	item, err := rlp.ToItem(encoded)
	if err != nil {
		return Node{}, err
	}
	if !item.IsList() {
		b, err := rlp.ToBytes(item)
		if err != nil {
			return Node{}, err
		}
		if len(b) != 0 {
			return Node{}, ErrMalformedProof
		}
		return Node{Encoded: encoded, Decoded: nil}, nil
	}
	decoded, err := rlp.ToList(item)
	if err != nil {
		return Node{}, err
	}
	if len(decoded) != shortNodeLength && len(decoded) != fullNodeLength {
		return Node{}, ErrMalformedProof
	}
	return Node{Encoded: encoded, Decoded: decoded}, nil
}

// Type classifies a node by the length of its decoded item list and, for
// short nodes, the hex-prefix nibble of its path.
func Type(n Node) (Kind, error) {
	switch len(n.Decoded) {
	case 0:
		return Empty, nil
	case fullNodeLength:
		return Branch, nil
	case shortNodeLength:
		pathBytes, err := rlp.ToBytes(n.Decoded[0])
		if err != nil {
			return 0, err
		}
		if len(pathBytes) == 0 {
			return 0, ErrInvalidNodePrefix
		}
		switch pathBytes[0] >> 4 {
		case 0, 1:
			return Extension, nil
		case 2, 3:
			return Leaf, nil
		default:
			return 0, ErrInvalidNodePrefix
		}
	default:
		return 0, ErrMalformedProof
	}
}

// Path returns the nibble-expanded, hex-prefix-encoded path stored in a
// short node's first item.
func Path(n Node) ([]byte, error) {
	pathBytes, err := rlp.ToBytes(n.Decoded[0])
	if err != nil {
		return nil, err
	}
	return nibble.Expand(pathBytes), nil
}

// Key returns a short node's path with the hex-prefix (and padding
// nibble, if any) stripped.
func Key(n Node) ([]byte, error) {
	path, err := Path(n)
	if err != nil {
		return nil, err
	}
	return RemoveHexPrefix(path), nil
}

// Value returns the value stored in a node: the trailing slot for a
// branch, the second item for a leaf or extension. It fails with
// rlp.ErrNotAString when that item is a list, as an extension's inlined
// child is; ID reads such a child reference.
func Value(n Node) ([]byte, error) {
	return rlp.ToBytes(n.Decoded[len(n.Decoded)-1])
}

// ID derives a child reference from a decoded child item: the full RLP
// encoding when the item's wire length is below 32 bytes (the child is
// inlined), otherwise the item's payload bytes (a 32-byte hash).
func ID(item rlp.Item) []byte {
	if item.WireLength() < 32 {
		return rlp.ToRlpBytes(item)
	}
	// ToBytes cannot fail here: a >=32 byte child reference slot is
	// always RLP-encoded as a string (the 32-byte hash), never a list.
	b, _ := rlp.ToBytes(item)
	return b
}

// Hash derives a parent-visible hash for a node's own encoding: the
// encoding itself when it is below 32 bytes (inlined), otherwise its
// keccak-256 hash. The caller supplies the hash function so this package
// stays free of a concrete hash implementation.
func Hash(encoded []byte, keccak256 func([]byte) []byte) []byte {
	if len(encoded) < 32 {
		return encoded
	}
	return keccak256(encoded)
}

// IsEmptySlot reports whether a branch child slot holds the canonical
// RLP empty string — i.e. no child is present.
func IsEmptySlot(slot []byte) bool {
	return nibble.Equal(slot, emptyStringRLP)
}

// AddHexPrefix encodes key (a nibble sequence) with the standard
// hex-prefix scheme: prefix nibble 2/3 for a leaf, 0/1 for an
// extension, with the parity bit set when key has odd length. The
// result is packed back to bytes.
func AddHexPrefix(key []byte, isLeaf bool) []byte {
	var prefix byte
	if isLeaf {
		prefix = 2
	}

	var head []byte
	if len(key)%2 == 1 {
		prefix |= 1
		head = []byte{prefix}
	} else {
		head = []byte{prefix, 0}
	}

	return nibble.Pack(nibble.Concat(head, key))
}

// RemoveHexPrefix drops the hex-prefix nibble (and padding nibble, if
// present) from an already nibble-expanded path.
func RemoveHexPrefix(path []byte) []byte {
	if len(path) == 0 {
		return path
	}
	if path[0]%2 == 0 {
		return path[2:]
	}
	return path[1:]
}

// MakeLeafNode constructs a leaf node from an unprefixed key and value.
func MakeLeafNode(key, value []byte) Node {
	pathEnc := rlp.EncodeBytes(AddHexPrefix(key, true))
	valueEnc := rlp.EncodeBytes(value)
	encoded := rlp.EncodeList([][]byte{pathEnc, valueEnc})

	item, _ := rlp.ToItem(encoded)
	decoded, _ := rlp.ToList(item)
	return Node{Encoded: encoded, Decoded: decoded}
}

// MakeExtensionNode constructs an extension node from an unprefixed key
// and a child reference (either a 32-byte hash or an inlined encoding).
func MakeExtensionNode(key, next []byte) Node {
	pathEnc := rlp.EncodeBytes(AddHexPrefix(key, false))
	nextEnc := encodeRef(next)
	encoded := rlp.EncodeList([][]byte{pathEnc, nextEnc})

	item, _ := rlp.ToItem(encoded)
	decoded, _ := rlp.ToList(item)
	return Node{Encoded: encoded, Decoded: decoded}
}

// encodeRef encodes a node reference (the output of Hash: either a raw
// node encoding below 32 bytes, or an exact 32-byte keccak hash) for
// storage in a parent slot. An inlined reference is already a complete,
// self-describing RLP item and is stored verbatim; a hash is a bare
// 32-byte value and must be wrapped in an RLP string header.
func encodeRef(ref []byte) []byte {
	if len(ref) < 32 {
		return ref
	}
	return rlp.EncodeBytes(ref)
}

// MakeEmptyBranchNode constructs a branch node with all 17 slots set to
// the RLP empty string.
func MakeEmptyBranchNode() Node {
	items := make([][]byte, fullNodeLength)
	for i := range items {
		items[i] = emptyStringRLP
	}
	encoded := rlp.EncodeList(items)

	item, _ := rlp.ToItem(encoded)
	decoded, _ := rlp.ToList(item)
	return Node{Encoded: encoded, Decoded: decoded}
}

// EditBranchValue returns a copy of branch with its value slot (index
// 16) replaced.
func EditBranchValue(branch Node, value []byte) Node {
	return rebuildBranch(branch, fullNodeLength-1, rlp.EncodeBytes(value))
}

// EditBranchIndex returns a copy of branch with child slot i replaced by
// a reference (the output of Hash: an inlined node encoding below 32
// bytes, stored verbatim, or an exact 32-byte hash, string-wrapped).
func EditBranchIndex(branch Node, i int, value []byte) Node {
	return rebuildBranch(branch, i, encodeRef(value))
}

func rebuildBranch(branch Node, slot int, encodedSlot []byte) Node {
	items := make([][]byte, fullNodeLength)
	for i, child := range branch.Decoded {
		items[i] = rlp.ToRlpBytes(child)
	}
	items[slot] = encodedSlot

	encoded := rlp.EncodeList(items)
	item, _ := rlp.ToItem(encoded)
	decoded, _ := rlp.ToList(item)
	return Node{Encoded: encoded, Decoded: decoded}
}
