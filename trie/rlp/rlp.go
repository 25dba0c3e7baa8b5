// Package rlp implements the specific slice of canonical RLP (Recursive
// Length Prefix) encoding the MPT node model needs: decoding a byte
// string into a tree of items without copying payload bytes, and
// encoding byte strings and lists back into their canonical form.
//
// It intentionally does not attempt to decode or encode arbitrary Go
// values (unlike github.com/ethereum/go-ethereum/rlp, which the rest of
// this repository uses for that purpose) — node classification needs
// direct control over offsets so a node's "full encoding" and "decoded
// children" can be derived from a single buffer without reallocating.
package rlp

import (
	"errors"

	"triewitness/trie/nibble"
)

// ErrMalformedRLP is returned when a decode encounters an inconsistent
// length header or a truncated buffer.
var ErrMalformedRLP = errors.New("malformed RLP")

// ErrNotAList is returned by ToList when the item is a string, not a
// list.
var ErrNotAList = errors.New("rlp: item is not a list")

// ErrNotAString is returned by ToBytes when the item is a list, not a
// string.
var ErrNotAString = errors.New("rlp: item is not a string")

// Item is a decoded top-level RLP value: a span into the original
// buffer plus a tag distinguishing byte strings from lists. Decoding an
// Item never copies the payload.
type Item struct {
	buf       []byte
	headerLen int
	payloadOK int // payload length
	isList    bool
}

// IsList reports whether the item is a list.
func (it Item) IsList() bool {
	return it.isList
}

// WireLength is the total length of the item's encoding (header plus
// payload) as it appears on the wire.
func (it Item) WireLength() int {
	return it.headerLen + it.payloadOK
}

// ToItem decodes the single top-level RLP item found at the start of
// data. Trailing bytes after the item are ignored; callers that need to
// walk a concatenation of items (such as list payloads) call ToItem
// repeatedly, advancing by WireLength each time.
func ToItem(data []byte) (Item, error) {
	if len(data) == 0 {
		return Item{}, ErrMalformedRLP
	}

	prefix := data[0]

	switch {
	case prefix < 0x80:
		return Item{buf: data[:1], headerLen: 0, payloadOK: 1, isList: false}, nil

	case prefix <= 0xB7:
		length := int(prefix - 0x80)
		if len(data) < 1+length {
			return Item{}, ErrMalformedRLP
		}
		return Item{buf: nibble.Slice(data, 0, 1+length), headerLen: 1, payloadOK: length, isList: false}, nil

	case prefix <= 0xBF:
		lenOfLen := int(prefix - 0xB7)
		if len(data) < 1+lenOfLen {
			return Item{}, ErrMalformedRLP
		}
		length, err := decodeBigEndian(nibble.Slice(data, 1, lenOfLen))
		if err != nil {
			return Item{}, err
		}
		headerLen := 1 + lenOfLen
		if len(data) < headerLen+length {
			return Item{}, ErrMalformedRLP
		}
		return Item{buf: nibble.Slice(data, 0, headerLen+length), headerLen: headerLen, payloadOK: length, isList: false}, nil

	case prefix <= 0xF7:
		length := int(prefix - 0xC0)
		if len(data) < 1+length {
			return Item{}, ErrMalformedRLP
		}
		return Item{buf: nibble.Slice(data, 0, 1+length), headerLen: 1, payloadOK: length, isList: true}, nil

	default: // 0xF8..0xFF
		lenOfLen := int(prefix - 0xF7)
		if len(data) < 1+lenOfLen {
			return Item{}, ErrMalformedRLP
		}
		length, err := decodeBigEndian(nibble.Slice(data, 1, lenOfLen))
		if err != nil {
			return Item{}, err
		}
		headerLen := 1 + lenOfLen
		if len(data) < headerLen+length {
			return Item{}, ErrMalformedRLP
		}
		return Item{buf: nibble.Slice(data, 0, headerLen+length), headerLen: headerLen, payloadOK: length, isList: true}, nil
	}
}

// ToList decodes item's payload as an ordered sequence of child items.
// It fails with ErrNotAList if item is not a list.
func ToList(item Item) ([]Item, error) {
	if !item.isList {
		return nil, ErrNotAList
	}

	payload := item.buf[item.headerLen:]

	var items []Item
	for len(payload) > 0 {
		child, err := ToItem(payload)
		if err != nil {
			return nil, err
		}
		items = append(items, child)
		payload = payload[child.WireLength():]
	}
	return items, nil
}

// ToBytes returns item's payload bytes, stripping the length header. It
// fails with ErrNotAString if item is a list.
func ToBytes(item Item) ([]byte, error) {
	if item.isList {
		return nil, ErrNotAString
	}
	return item.buf[item.headerLen:], nil
}

// ToRlpBytes returns item's full encoding, header and payload together
// — used when an inlined small node must be embedded verbatim into a
// parent's child slot.
func ToRlpBytes(item Item) []byte {
	return item.buf
}

// EncodeBytes produces the canonical RLP string encoding of b: the
// single-byte fast path when b is exactly one byte below 0x80, a short
// string header for payloads up to 55 bytes, and a long string header
// otherwise.
func EncodeBytes(b []byte) []byte {
	if len(b) == 1 && b[0] < 0x80 {
		return []byte{b[0]}
	}

	if len(b) <= 55 {
		return nibble.Concat([]byte{byte(0x80 + len(b))}, b)
	}

	lenBytes := bigEndian(len(b))
	return nibble.Concat([]byte{byte(0xB7 + len(lenBytes))}, lenBytes, b)
}

// EncodeList concatenates the already-encoded items and prepends the
// canonical list header.
func EncodeList(items [][]byte) []byte {
	payload := nibble.Concat(items...)

	if len(payload) <= 55 {
		return nibble.Concat([]byte{byte(0xC0 + len(payload))}, payload)
	}

	lenBytes := bigEndian(len(payload))
	return nibble.Concat([]byte{byte(0xF7 + len(lenBytes))}, lenBytes, payload)
}

func decodeBigEndian(b []byte) (int, error) {
	if len(b) == 0 || (len(b) > 1 && b[0] == 0) {
		return 0, ErrMalformedRLP
	}
	n := 0
	for _, c := range b {
		n = n<<8 | int(c)
	}
	return n, nil
}

func bigEndian(n int) []byte {
	if n == 0 {
		return nil
	}
	var tmp [8]byte
	i := 8
	for n > 0 {
		i--
		tmp[i] = byte(n)
		n >>= 8
	}
	return tmp[i:]
}
