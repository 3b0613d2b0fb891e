package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if cfg.Context.Before != 512 || cfg.Context.After != 512 {
		t.Errorf("context padding = %d/%d, want 512/512", cfg.Context.Before, cfg.Context.After)
	}
	if cfg.Token.TTLHours != 24 {
		t.Errorf("token ttl = %d, want 24", cfg.Token.TTLHours)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.Version != Version {
		t.Errorf("version = %d, want %d", cfg.Version, Version)
	}
	if !cfg.Cache.Enabled {
		t.Error("cache should default to enabled")
	}
}

func TestSaveAndReload(t *testing.T) {
	root := t.TempDir()

	cfg := DefaultConfig()
	cfg.Context.Before = 128
	cfg.Logging.Format = "json"
	if err := cfg.Save(root); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loaded, err := LoadConfig(root)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if loaded.Context.Before != 128 {
		t.Errorf("context.before = %d, want 128", loaded.Context.Before)
	}
	if loaded.Logging.Format != "json" {
		t.Errorf("logging.format = %q, want json", loaded.Logging.Format)
	}
	// Unset fields fall back to defaults.
	if loaded.Token.TTLHours != 24 {
		t.Errorf("token.ttlHours = %d, want default 24", loaded.Token.TTLHours)
	}
}

func TestLoadConfigMalformed(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, ".scalpel")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "config.json"), []byte("{nope"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadConfig(root); err == nil {
		t.Fatal("malformed config must error, not fall back")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad version", func(c *Config) { c.Version = 99 }},
		{"negative padding", func(c *Config) { c.Context.Before = -1 }},
		{"zero ttl", func(c *Config) { c.Token.TTLHours = 0 }},
		{"bad format", func(c *Config) { c.Logging.Format = "xml" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("Validate() should reject this config")
			}
		})
	}
}
