// Package nibble provides the byte and nibble level primitives the trie
// engine is built on: slicing, equality, concatenation, and the
// byte<->nibble expansion used throughout the Merkle-Patricia trie's
// hex-prefix path encoding.
package nibble

// Slice returns data[offset:offset+length]. The range is end-exclusive,
// as is Go's native slice syntax; callers must not pass an out-of-range
// offset/length pair.
func Slice(data []byte, offset, length int) []byte {
	return data[offset : offset+length]
}

// Equal reports whether a and b contain the same bytes.
func Equal(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Concat concatenates parts into a single freshly allocated slice.
func Concat(parts ...[]byte) []byte {
	n := 0
	for _, p := range parts {
		n += len(p)
	}

	out := make([]byte, 0, n)
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

// ToBytes32 interprets b as a 32-byte value: if b is at least 32 bytes
// long, the first 32 bytes are used; otherwise b is left-padded with
// zero bytes. It is distinct from RefBytes32, which the trie engine
// uses to compare inlined node references against a parent's stored
// reference.
func ToBytes32(b []byte) [32]byte {
	var out [32]byte
	if len(b) >= 32 {
		copy(out[:], b[:32])
		return out
	}
	copy(out[32-len(b):], b)
	return out
}

// RefBytes32 right-pads b with zero bytes up to 32 bytes. The trie
// engine uses this specifically when an inlined (< 32 byte) node
// encoding must be compared against a parent's stored 32-byte reference
// slot; mirroring this exact padding convention is required for the
// engine to accept otherwise-valid proofs.
func RefBytes32(b []byte) [32]byte {
	var out [32]byte
	copy(out[:], b)
	return out
}

// Expand expands a byte string into its nibble sequence, high nibble
// first: byte b becomes the pair (b>>4, b&0xF).
func Expand(b []byte) []byte {
	out := make([]byte, 0, len(b)*2)
	for _, c := range b {
		out = append(out, c>>4, c&0x0F)
	}
	return out
}

// Pack packs a sequence of nibbles into bytes, two nibbles per byte. The
// caller guarantees an even-length input; behavior for odd-length input
// is undefined (the trailing nibble is silently dropped).
func Pack(nibbles []byte) []byte {
	out := make([]byte, 0, len(nibbles)/2)
	for i := 0; i+1 < len(nibbles); i += 2 {
		out = append(out, nibbles[i]<<4|nibbles[i+1])
	}
	return out
}

// SharedLength returns the length of the common prefix of a and b,
// measured in nibbles.
func SharedLength(a, b []byte) int {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			return i
		}
	}
	return n
}
