package config

import (
	"fmt"
	"os"

	"github.com/ethereum/go-ethereum/common"
	"gopkg.in/yaml.v3"

	"triewitness/internal/log"
)

// AppConfig is the parsed set of witness targets to check on startup.
type AppConfig struct {
	Targets []*Target
}

// Target names a single account or storage slot to read, and the file
// holding the RLP-encoded proof nodes to read it with.
type Target struct {
	StateRoot common.Hash
	Address   common.Address
	Slot      *common.Hash // nil for an account-level target
	ProofPath string
}

// rawConfig mirrors the on-disk YAML shape.
type rawConfig struct {
	Targets []*rawTarget `yaml:"targets"`
}

type rawTarget struct {
	StateRoot string `yaml:"state_root"`
	Address   string `yaml:"address"`
	Slot      string `yaml:"slot"`
	ProofPath string `yaml:"proof_path"`
}

// Loader reads the witness target config file.
type Loader struct {
	log log.Logger
}

// NewLoader creates a new config Loader with the specified logging
// context attached.
func NewLoader(logger log.Logger) *Loader {
	return &Loader{log: logger.With("component", "config-loader")}
}

// Load reads the config file at the specified path.
func (l *Loader) Load(path string) (*AppConfig, error) {
	l.log.Info("load config", "path", path)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var raw rawConfig
	if err = yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	var targets []*Target
	for idx, unparsed := range raw.Targets {
		parsed, err := l.parseTarget(unparsed)
		if err != nil {
			return nil, fmt.Errorf("failed to parse target at index %d: %w", idx, err)
		}
		targets = append(targets, parsed)
	}

	return &AppConfig{Targets: targets}, nil
}

func (l *Loader) parseTarget(t *rawTarget) (*Target, error) {
	l.log.Debug("load target", "addr", t.Address)

	if t.StateRoot == "" {
		return nil, fmt.Errorf("state_root is required")
	}
	if t.Address == "" {
		return nil, fmt.Errorf("address is required")
	}
	if t.ProofPath == "" {
		return nil, fmt.Errorf("proof_path is required")
	}

	target := &Target{
		StateRoot: common.HexToHash(t.StateRoot),
		Address:   common.HexToAddress(t.Address),
		ProofPath: t.ProofPath,
	}
	if t.Slot != "" {
		slot := common.HexToHash(t.Slot)
		target.Slot = &slot
	}
	return target, nil
}
