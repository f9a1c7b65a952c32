// Package config handles loading, parsing, and validating the YAML
// configuration file for the kick command. Secrets can be overlaid with
// environment variables.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultPath is where Load looks when no config flag is given.
const DefaultPath = "kick.yaml"

// Config is the kick command configuration.
type Config struct {
	// Token is the OAuth access token. Usually set via KICK_TOKEN rather
	// than the file.
	Token string `yaml:"token"`

	// Chatrooms lists chatroom IDs to follow with the chat subcommand.
	// A channel's chatroom ID can be found in the page source of
	// kick.com/<slug> by searching for "chatroom":{"id":.
	Chatrooms []int64 `yaml:"chatrooms"`

	LogLevel string `yaml:"log_level"`
	LogDir   string `yaml:"log_dir"`

	// MetricsAddr enables the Prometheus endpoint when set, e.g. ":9109".
	MetricsAddr string `yaml:"metrics_addr"`
}

// Load reads a config file, applies defaults and environment overrides.
// A missing file is not an error; the defaults and environment are used.
func Load(path string) (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	case os.IsNotExist(err) && path == DefaultPath:
		// Fine, run on defaults.
	default:
		return nil, fmt.Errorf("reading config file %s: %w", path, err)
	}

	applyDefaults(&cfg)
	applyEnvOverrides(&cfg)

	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.LogLevel == "" {
		cfg.LogLevel = "INFO"
	}
}

// applyEnvOverrides overlays environment variables for secrets.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("KICK_TOKEN"); v != "" {
		cfg.Token = v
	}
}

// Validate checks the configuration for common errors.
func Validate(cfg *Config) error {
	for i, id := range cfg.Chatrooms {
		if id <= 0 {
			return fmt.Errorf("chatroom at index %d has invalid id %d", i, id)
		}
	}
	return nil
}
