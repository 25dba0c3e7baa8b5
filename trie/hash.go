package trie

import "github.com/ethereum/go-ethereum/crypto"

// keccak256 is the engine's pinned hash function: keccak-256, the
// Ethereum variant with the original Keccak padding, not NIST SHA-3.
func keccak256(data []byte) [32]byte {
	return [32]byte(crypto.Keccak256Hash(data))
}

// keccak256Bytes is keccak256 with a []byte result, for call sites that
// feed the hash into trienode.Hash (which is hash-function agnostic and
// takes func([]byte) []byte).
func keccak256Bytes(data []byte) []byte {
	h := keccak256(data)
	return h[:]
}
