package config

import (
	"time"
)

// Config is the root configuration structure
type Config struct {
	Version      int             `yaml:"version"`
	Source       SourceConfig    `yaml:"source"`
	SegmentGraph GraphConfig     `yaml:"segment_graph"`
	Database     DatabaseConfig  `yaml:"database"`
	Server       ServerConfig    `yaml:"server"`
	Download     DownloadConfig  `yaml:"download"`
	Integrity    IntegrityConfig `yaml:"integrity"`
}

// SourceConfig describes the remote mesh source and the local cache
type SourceConfig struct {
	BaseURL  string `yaml:"base_url"`
	CacheDir string `yaml:"cache_dir"`
}

// GraphConfig describes the segmentation-graph service used for healing.
// An empty BaseURL disables healing.
type GraphConfig struct {
	BaseURL string `yaml:"base_url,omitempty"`
}

// DatabaseConfig holds cache-manifest database settings
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// DownloadConfig holds bulk download settings
type DownloadConfig struct {
	Workers int       `yaml:"workers"`
	Timeout *Duration `yaml:"timeout,omitempty"`
}

// IntegrityConfig holds background verification settings
type IntegrityConfig struct {
	Enabled      bool   `yaml:"enabled"`
	PollInterval string `yaml:"poll_interval,omitempty"`
}

// Duration wraps time.Duration for YAML unmarshaling
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler
func (d *Duration) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// Duration returns the underlying time.Duration
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}
