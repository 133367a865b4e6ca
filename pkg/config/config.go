// Package config holds the operator shell configuration: compiled-in
// defaults, optionally overridden by a YAML profile file.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// OperatorConfig controls shell behavior. Values come from DefaultConfig,
// overridden by a profile file when the operator supplies one.
type OperatorConfig struct {
	// Owner tags every entry the operator creates in the virtual tree.
	Owner string `yaml:"owner"`

	// Prompt is the shell prompt template; the current directory is
	// appended at display time.
	Prompt string `yaml:"prompt"`

	// StartDir is the token resolved as the initial current directory,
	// e.g. "vfs:" for the virtual root or "~" for the real home.
	StartDir string `yaml:"start_dir"`

	// HardenProcess disables core dumps and locks memory at startup.
	HardenProcess bool `yaml:"harden_process"`

	// SecureDeletePasses is the overwrite pass count for the shred verb.
	SecureDeletePasses int `yaml:"secure_delete_passes"`

	// JobTimeout bounds how long a background job may run; zero means
	// no limit.
	JobTimeout time.Duration `yaml:"job_timeout"`
}

// DefaultConfig returns a configuration with sane defaults.
func DefaultConfig() *OperatorConfig {
	return &OperatorConfig{
		Owner:              "operator",
		Prompt:             "brackish",
		StartDir:           "vfs:",
		HardenProcess:      true,
		SecureDeletePasses: 3,
		JobTimeout:         0,
	}
}

// LoadProfile reads a YAML profile and overlays it on the defaults. Fields
// absent from the file keep their default values.
func LoadProfile(path string) (*OperatorConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read profile %s: %w", path, err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse profile %s: %w", path, err)
	}
	if cfg.Owner == "" {
		cfg.Owner = "operator"
	}
	if cfg.SecureDeletePasses <= 0 {
		cfg.SecureDeletePasses = 3
	}
	return cfg, nil
}
