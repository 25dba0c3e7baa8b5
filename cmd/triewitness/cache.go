package main

import (
	"triewitness/internal/log"
	"triewitness/proofcache"
	"triewitness/storage/badger"
)

// openCache opens a persistent proof cache at path, or falls back to
// an in-memory one if path is empty.
func openCache(path string, logger log.Logger) (*proofcache.Cache, error) {
	if path == "" {
		return proofcache.NewInMemory(logger), nil
	}

	db, err := badger.New(path)
	if err != nil {
		return nil, err
	}
	return proofcache.New(db, logger), nil
}
