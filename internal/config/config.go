// Package config provides configuration loading for docdash.
//
// Settings come from built-in defaults, overridden by ~/.docdash/config.toml
// when present, overridden by environment variables (DOCDASH_API_URL,
// DOCDASH_MODEL, DOCDASH_DATA_DIR).
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/docdash/docdash/internal/api"
)

// Config holds all application settings.
type Config struct {
	// APIBaseURL is the base URL of the remote index/query service.
	APIBaseURL string `toml:"api_base_url"`

	// Model is the model tag shown on new conversations.
	Model string `toml:"model"`

	// DataDir holds the local database and the config file itself.
	DataDir string `toml:"data_dir"`

	// TimeoutSecs bounds a single API request.
	TimeoutSecs int `toml:"timeout_secs"`
}

// Default returns the built-in defaults.
func Default() *Config {
	home, _ := os.UserHomeDir()
	return &Config{
		APIBaseURL:  api.DefaultBaseURL,
		Model:       "docdash-rag",
		DataDir:     filepath.Join(home, ".docdash"),
		TimeoutSecs: 60,
	}
}

// Load builds the effective configuration. A missing config file is not an
// error; an unparseable one is.
func Load() (*Config, error) {
	cfg := Default()

	path := filepath.Join(cfg.DataDir, "config.toml")
	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	}

	if v := os.Getenv("DOCDASH_API_URL"); v != "" {
		cfg.APIBaseURL = v
	}
	if v := os.Getenv("DOCDASH_MODEL"); v != "" {
		cfg.Model = v
	}
	if v := os.Getenv("DOCDASH_DATA_DIR"); v != "" {
		cfg.DataDir = v
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.APIBaseURL == "" {
		return fmt.Errorf("api_base_url cannot be empty")
	}
	if u, err := url.Parse(c.APIBaseURL); err != nil {
		return fmt.Errorf("invalid api_base_url: %w", err)
	} else if u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid api_base_url: %q", c.APIBaseURL)
	}
	if c.DataDir == "" {
		return fmt.Errorf("data_dir cannot be empty")
	}
	if c.TimeoutSecs <= 0 {
		return fmt.Errorf("timeout_secs must be positive")
	}
	return nil
}

// Timeout returns the request timeout as a duration.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSecs) * time.Second
}
