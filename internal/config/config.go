// Package config provides configuration management for neuromesh.
//
// The config file carries connection settings (mesh source, segmentation
// graph, cache location); the database carries the cache manifest and
// can be rebuilt from the cache directory at any time.
//
// Config file locations (priority order):
//  1. $NEUROMESH_CONFIG
//  2. ./neuromesh.yaml
//  3. ~/.config/neuromesh/config.yaml
//  4. /etc/neuromesh/config.yaml
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Load finds and loads the config file, or returns defaults if none found
func Load() (*Config, string, error) {
	path := FindConfigPath()

	if path == "" {
		// No config found - return defaults
		return DefaultConfig(), "", nil
	}

	return LoadFromPath(path)
}

// LoadFromPath loads config from a specific path
func LoadFromPath(path string) (*Config, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, path, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, path, fmt.Errorf("parse config: %w", err)
	}

	cfg.applyDefaults()

	return &cfg, path, nil
}

// Save writes config to the specified path
func (c *Config) Save(path string) error {
	if err := EnsureConfigDir(path); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	return os.WriteFile(path, data, 0644)
}

// DefaultConfig returns sensible defaults for a new installation
func DefaultConfig() *Config {
	return &Config{
		Version:  1,
		Source:   SourceConfig{CacheDir: "./meshcache"},
		Database: DatabaseConfig{Path: "./neuromesh.db"},
		Server:   ServerConfig{Addr: ":3000"},
		Download: DownloadConfig{Workers: 4},
		Integrity: IntegrityConfig{
			Enabled:      true,
			PollInterval: "5m",
		},
	}
}

// applyDefaults fills in missing values with defaults
func (c *Config) applyDefaults() {
	if c.Version == 0 {
		c.Version = 1
	}
	if c.Source.CacheDir == "" {
		c.Source.CacheDir = "./meshcache"
	}
	if c.Database.Path == "" {
		c.Database.Path = "./neuromesh.db"
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":3000"
	}
	if c.Download.Workers <= 0 {
		c.Download.Workers = 4
	}
	if c.Integrity.PollInterval == "" {
		c.Integrity.PollInterval = "5m"
	}
}

// Validate checks settings that have no usable default
func (c *Config) Validate() error {
	if c.Source.BaseURL == "" {
		return fmt.Errorf("source.base_url is required")
	}
	return nil
}

// HealingEnabled reports whether a segmentation graph is configured
func (c *Config) HealingEnabled() bool {
	return c.SegmentGraph.BaseURL != ""
}

// Summary returns a human-readable config summary
func (c *Config) Summary() string {
	summary := fmt.Sprintf("Source: %s, Cache: %s\n", c.Source.BaseURL, c.Source.CacheDir)
	if c.HealingEnabled() {
		summary += fmt.Sprintf("Segment graph: %s\n", c.SegmentGraph.BaseURL)
	} else {
		summary += "Segment graph: disabled\n"
	}
	summary += fmt.Sprintf("Workers: %d, Integrity: %v (every %s)",
		c.Download.Workers, c.Integrity.Enabled, c.Integrity.PollInterval)
	return summary
}
