package rlp

import (
	"bytes"
	"strings"
	"testing"
)

func TestEncodeBytes(t *testing.T) {
	t.Run("should encode single byte below 0x80 verbatim", func(t *testing.T) {
		got := EncodeBytes([]byte{0x42})
		want := []byte{0x42}
		if !bytes.Equal(got, want) {
			t.Errorf("expected %x, got %x", want, got)
		}
	})

	t.Run("should encode empty string as 0x80", func(t *testing.T) {
		got := EncodeBytes([]byte{})
		want := []byte{0x80}
		if !bytes.Equal(got, want) {
			t.Errorf("expected %x, got %x", want, got)
		}
	})

	t.Run("should use a short string header for payloads up to 55 bytes", func(t *testing.T) {
		payload := bytes.Repeat([]byte{0xAB}, 10)
		got := EncodeBytes(payload)
		if got[0] != byte(0x80+10) {
			t.Errorf("expected header 0x%x, got 0x%x", 0x80+10, got[0])
		}
		if !bytes.Equal(got[1:], payload) {
			t.Errorf("expected payload %x, got %x", payload, got[1:])
		}
	})

	t.Run("should use a long string header above 55 bytes", func(t *testing.T) {
		payload := bytes.Repeat([]byte{0xCD}, 60)
		got := EncodeBytes(payload)
		if got[0] != 0xB8 {
			t.Errorf("expected header 0xB8, got 0x%x", got[0])
		}
		if got[1] != 60 {
			t.Errorf("expected length byte 60, got %d", got[1])
		}
	})
}

func TestEncodeList(t *testing.T) {
	t.Run("should concatenate items under a short list header", func(t *testing.T) {
		a := EncodeBytes([]byte("cat"))
		b := EncodeBytes([]byte("dog"))
		got := EncodeList([][]byte{a, b})

		want := append([]byte{0xC8}, append(append([]byte{}, a...), b...)...)
		if !bytes.Equal(got, want) {
			t.Errorf("expected %x, got %x", want, got)
		}
	})
}

func TestToItemAndRoundTrip(t *testing.T) {
	t.Run("should decode a single-byte string", func(t *testing.T) {
		item, err := ToItem([]byte{0x42})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if item.IsList() {
			t.Errorf("expected string item, got list")
		}
		b, err := ToBytes(item)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !bytes.Equal(b, []byte{0x42}) {
			t.Errorf("expected %x, got %x", []byte{0x42}, b)
		}
	})

	t.Run("should round-trip a short list", func(t *testing.T) {
		encoded := EncodeList([][]byte{EncodeBytes([]byte("ab")), EncodeBytes([]byte("cd"))})

		item, err := ToItem(encoded)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !item.IsList() {
			t.Errorf("expected list item")
		}

		children, err := ToList(item)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(children) != 2 {
			t.Fatalf("expected 2 children, got %d", len(children))
		}

		first, err := ToBytes(children[0])
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !bytes.Equal(first, []byte("ab")) {
			t.Errorf("expected 'ab', got %q", first)
		}
	})

	t.Run("should report ToBytes on a list as an error", func(t *testing.T) {
		encoded := EncodeList([][]byte{EncodeBytes([]byte("x"))})
		item, err := ToItem(encoded)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if _, err := ToBytes(item); err == nil {
			t.Errorf("expected ErrNotAString, got nil")
		}
	})

	t.Run("should report ToList on a string as an error", func(t *testing.T) {
		item, err := ToItem(EncodeBytes([]byte("x")))
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if _, err := ToList(item); err == nil {
			t.Errorf("expected ErrNotAList, got nil")
		}
	})

	t.Run("should preserve the full wire bytes via ToRlpBytes", func(t *testing.T) {
		encoded := EncodeBytes(bytes.Repeat([]byte{0x01}, 40))
		item, err := ToItem(encoded)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !bytes.Equal(ToRlpBytes(item), encoded) {
			t.Errorf("expected round trip to be identical")
		}
	})

	t.Run("should fail on truncated input", func(t *testing.T) {
		_, err := ToItem([]byte{0xB8, 0x05, 0x01})
		if err == nil || !strings.Contains(err.Error(), "malformed") {
			t.Errorf("expected malformed RLP error, got %v", err)
		}
	})

	t.Run("should fail on empty input", func(t *testing.T) {
		if _, err := ToItem(nil); err == nil {
			t.Errorf("expected error on empty input")
		}
	})
}
