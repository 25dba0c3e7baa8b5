// Package proofcache caches proofs already validated against a known
// root, keyed by (root, key), so that a repeated read of the same
// account or storage slot under the same root does not require
// re-walking the Merkle proof. It is deliberately thin: it stores
// whatever bytes the caller already validated and makes no attempt to
// validate anything itself.
package proofcache

import (
	"encoding/binary"
	"errors"
	"fmt"

	"triewitness/internal/log"
	"triewitness/storage"
	"triewitness/storage/mem"
)

// ErrNotFound is returned when no cached entry exists for the
// requested (root, key) pair.
var ErrNotFound = errors.New("proofcache: not found")

// Cache caches verified trie values keyed by (root, key). It wraps any
// storage.KeyValStore, so the same Cache works against the in-memory
// store or a persistent one such as storage/badger.
type Cache struct {
	store storage.KeyValStore
	log   log.Logger
}

// New returns a Cache backed by store. logger may be nil, in which
// case cache activity is logged through a default terminal logger.
func New(store storage.KeyValStore, logger log.Logger) *Cache {
	if logger == nil {
		logger = log.New(log.NewTerminalHandler())
	}
	return &Cache{store: store, log: logger.With("component", "proofcache")}
}

// NewInMemory returns a Cache backed by a fresh in-memory store. This
// is the default used by callers that don't need entries to survive a
// restart.
func NewInMemory(logger log.Logger) *Cache {
	return New(mem.New(), logger)
}

// Get returns the cached value for key under root, or ErrNotFound if
// no entry has been stored for this (root, key) pair.
func (c *Cache) Get(root [32]byte, key []byte) ([]byte, error) {
	val, err := c.store.Get(cacheKey(root, key))
	if errors.Is(err, storage.ErrKeyNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("proofcache: get failed: %w", err)
	}
	return val, nil
}

// Put stores value as the result of a proof already validated for key
// under root. It overwrites any previous entry for the same pair.
func (c *Cache) Put(root [32]byte, key, value []byte) error {
	if err := c.store.Put(cacheKey(root, key), value); err != nil {
		return fmt.Errorf("proofcache: put failed: %w", err)
	}
	c.log.Debug("cached value", "root", fmt.Sprintf("%x", root), "key", fmt.Sprintf("%x", key))
	return nil
}

// Close releases the underlying store.
func (c *Cache) Close() error {
	return c.store.Close()
}

// cacheKey derives a single lookup key from a trie root and the key
// being read under it, so that the same leaf key under two different
// roots (e.g. before and after an update) does not collide.
func cacheKey(root [32]byte, key []byte) []byte {
	out := make([]byte, 0, 32+8+len(key))
	out = append(out, root[:]...)
	length := make([]byte, 8)
	binary.BigEndian.PutUint64(length, uint64(len(key)))
	out = append(out, length...)
	out = append(out, key...)
	return out
}
