// Command triewitness reads a small set of configured account and
// storage-slot targets, each backed by an RLP-encoded Merkle proof file
// on disk, and verifies each one against its configured state root.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/ethereum/go-ethereum/crypto"

	"triewitness/internal/config"
	"triewitness/internal/log"
	"triewitness/mpt"
	"triewitness/proofcache"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the target config file")
	cachePath := flag.String("cache-db", "", "path to a persistent proof cache (defaults to in-memory)")
	flag.Parse()

	if v := os.Getenv("CONFIG_PATH"); v != "" {
		*configPath = v
	}

	logger := log.New(log.NewTerminalHandler()).With("component", "main")

	loader := config.NewLoader(logger)
	cfg, err := loader.Load(*configPath)
	if err != nil {
		logger.Error("failed to load config", "err", err)
		os.Exit(1)
	}

	cache, err := openCache(*cachePath, logger)
	if err != nil {
		logger.Error("failed to open proof cache", "err", err)
		os.Exit(1)
	}
	defer cache.Close()

	failures := 0
	for _, target := range cfg.Targets {
		if err := checkTarget(target, cache, logger); err != nil {
			logger.Error("target check failed", "addr", target.Address, "err", err)
			failures++
			continue
		}
		logger.Info("target verified", "addr", target.Address)
	}

	if failures > 0 {
		os.Exit(1)
	}
}

func checkTarget(target *config.Target, cache *proofcache.Cache, logger log.Logger) error {
	proofRLP, err := os.ReadFile(target.ProofPath)
	if err != nil {
		return fmt.Errorf("failed to read proof file: %w", err)
	}

	if target.Slot == nil {
		return checkAccount(target, proofRLP, cache, logger)
	}
	return checkStorage(target, proofRLP, cache, logger)
}

func checkAccount(target *config.Target, proofRLP []byte, cache *proofcache.Cache, logger log.Logger) error {
	key := crypto.Keccak256(target.Address[:])
	if cached, err := cache.Get(target.StateRoot, key); err == nil {
		logger.Debug("account served from cache", "addr", target.Address, "bytes", len(cached))
		return nil
	}

	proofNodes, err := splitProofList(proofRLP)
	if err != nil {
		return err
	}

	account, err := mpt.VerifyAccountProof(target.StateRoot, target.Address, proofNodes)
	if err != nil {
		return err
	}
	if account == nil {
		logger.Info("account absent", "addr", target.Address)
		return nil
	}

	if err := cache.Put(target.StateRoot, key, proofRLP); err != nil {
		logger.Warn("failed to cache account proof", "err", err)
	}
	logger.Info("account found", "addr", target.Address, "nonce", account.Nonce, "balance", account.Balance)
	return nil
}

func checkStorage(target *config.Target, proofRLP []byte, cache *proofcache.Cache, logger log.Logger) error {
	proofNodes, err := splitProofList(proofRLP)
	if err != nil {
		return err
	}

	val, err := mpt.VerifyStorageProof(target.StateRoot, *target.Slot, proofNodes)
	if err != nil {
		return err
	}
	if val == nil {
		logger.Info("slot empty", "addr", target.Address, "slot", target.Slot)
		return nil
	}

	if err := cache.Put(target.StateRoot, target.Slot[:], val); err != nil {
		logger.Warn("failed to cache storage proof", "err", err)
	}
	word := mpt.AsWord(val)
	logger.Info("slot found", "addr", target.Address, "slot", target.Slot, "value", fmt.Sprintf("%x", word))
	return nil
}
