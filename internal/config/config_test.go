package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Version != 1 {
		t.Errorf("Version = %d, want 1", cfg.Version)
	}
	if cfg.Source.CacheDir == "" {
		t.Error("Source.CacheDir should not be empty")
	}
	if cfg.Database.Path == "" {
		t.Error("Database.Path should not be empty")
	}
	if cfg.Download.Workers <= 0 {
		t.Error("Download.Workers should be positive")
	}
	if !cfg.Integrity.Enabled {
		t.Error("Integrity should be enabled by default")
	}
}

func TestValidate(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err == nil {
		t.Error("Validate() should fail without source.base_url")
	}

	cfg.Source.BaseURL = "https://meshes.example.org"
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() error: %v", err)
	}
}

func TestHealingEnabled(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.HealingEnabled() {
		t.Error("healing should be disabled without a segment graph URL")
	}

	cfg.SegmentGraph.BaseURL = "https://graph.example.org"
	if !cfg.HealingEnabled() {
		t.Error("healing should be enabled with a segment graph URL")
	}
}

func TestSaveAndLoad(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	cfg := DefaultConfig()
	cfg.Source.BaseURL = "https://meshes.example.org/v1"
	cfg.SegmentGraph.BaseURL = "https://graph.example.org"
	cfg.Download.Workers = 8
	timeout := Duration(2 * time.Minute)
	cfg.Download.Timeout = &timeout

	if err := cfg.Save(configPath); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	loaded, path, err := LoadFromPath(configPath)
	if err != nil {
		t.Fatalf("LoadFromPath() error: %v", err)
	}
	if path != configPath {
		t.Errorf("path = %s, want %s", path, configPath)
	}

	if loaded.Source.BaseURL != "https://meshes.example.org/v1" {
		t.Errorf("Source.BaseURL = %s", loaded.Source.BaseURL)
	}
	if loaded.Download.Workers != 8 {
		t.Errorf("Download.Workers = %d, want 8", loaded.Download.Workers)
	}
	if loaded.Download.Timeout == nil || loaded.Download.Timeout.Duration() != 2*time.Minute {
		t.Error("Download.Timeout should round-trip as 2m")
	}
}

func TestLoadAppliesDefaults(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	// Minimal config with most fields absent.
	minimal := []byte("source:\n  base_url: https://meshes.example.org\n")
	if err := os.WriteFile(configPath, minimal, 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	loaded, _, err := LoadFromPath(configPath)
	if err != nil {
		t.Fatalf("LoadFromPath() error: %v", err)
	}
	if loaded.Version != 1 {
		t.Errorf("Version = %d, want default 1", loaded.Version)
	}
	if loaded.Source.CacheDir == "" {
		t.Error("CacheDir default not applied")
	}
	if loaded.Server.Addr == "" {
		t.Error("Server.Addr default not applied")
	}
	if loaded.Download.Workers <= 0 {
		t.Error("Workers default not applied")
	}
}

func TestFindConfigPath(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, ConfigFileName)

	cfg := DefaultConfig()
	if err := cfg.Save(configPath); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	oldWd, _ := os.Getwd()
	os.Chdir(tmpDir)
	defer os.Chdir(oldWd)

	// Should find config in working directory
	found := FindConfigPath()
	if found == "" {
		t.Error("FindConfigPath() should find config in working directory")
	}

	// Explicit path doesn't exist, should fall back
	os.Setenv(EnvConfigPath, "/nonexistent/path.yaml")
	defer os.Unsetenv(EnvConfigPath)

	found = FindConfigPath()
	if found == "" {
		t.Error("FindConfigPath() should fall back when env path doesn't exist")
	}
}

func TestDuration(t *testing.T) {
	d := Duration(5 * time.Minute)

	if d.Duration() != 5*time.Minute {
		t.Errorf("Duration() = %s, want 5m", d.Duration())
	}

	marshaled, err := d.MarshalYAML()
	if err != nil {
		t.Fatalf("MarshalYAML() error: %v", err)
	}
	if marshaled != "5m0s" {
		t.Errorf("MarshalYAML() = %v, want 5m0s", marshaled)
	}
}
