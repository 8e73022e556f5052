// Package config loads the small YAML file the CLI's --config flag
// points at: default syntax/target/trace values the commands fall back to
// when the equivalent flag is unset, and a list of prelude search paths,
// which is parsed but not read by any command.
package config

import (
	"fmt"
	"os"

	"github.com/goccy/go-yaml"
)

// Config is the on-disk shape of a ursa config file.
type Config struct {
	Syntax       string   `yaml:"syntax"`
	Target       string   `yaml:"target"`
	PreludePaths []string `yaml:"preludePaths"`
	Trace        bool     `yaml:"trace"`
}

// Default returns the configuration used when no --config flag is given.
func Default() *Config {
	return &Config{
		Syntax: "json",
		Target: "ark",
		Trace:  false,
	}
}

// Load reads and parses the YAML file at path, filling in any field the
// file omits from Default.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(b, cfg); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	if cfg.Syntax == "" {
		cfg.Syntax = "json"
	}
	if cfg.Target == "" {
		cfg.Target = "ark"
	}
	return cfg, nil
}
