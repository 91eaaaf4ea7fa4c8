package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/menta2k/focuspoint/internal/errs"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Server.Port != 8080 {
		t.Errorf("expected default port 8080, got %d", cfg.Server.Port)
	}
	if cfg.Fetch.TimeoutSeconds != 10 {
		t.Errorf("expected default fetch timeout 10s, got %d", cfg.Fetch.TimeoutSeconds)
	}
	if cfg.Saliency.Algorithm != "spectral" {
		t.Errorf("expected default algorithm spectral, got %s", cfg.Saliency.Algorithm)
	}
	if cfg.Describe.Enabled {
		t.Error("describe should be disabled by default")
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	content := `{"server":{"host":"127.0.0.1","port":9000},"saliency":{"algorithm":"finegrained","analysis_size":64,"blur_sigma":1.0}}`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile failed: %v", err)
	}

	if cfg.Server.Port != 9000 {
		t.Errorf("expected port 9000, got %d", cfg.Server.Port)
	}
	if cfg.Saliency.Algorithm != "finegrained" {
		t.Errorf("expected finegrained, got %s", cfg.Saliency.Algorithm)
	}
	// Untouched sections keep defaults
	if cfg.Fetch.TimeoutSeconds != 10 {
		t.Errorf("expected default fetch timeout to survive partial config, got %d", cfg.Fetch.TimeoutSeconds)
	}
}

func TestLoadFromFileMissing(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "missing.json"))
	if err == nil {
		t.Fatal("expected error for missing config file")
	}
	if !errs.IsKind(err, errs.KindConfig) {
		t.Errorf("expected config kind, got: %v", err)
	}
}

func TestLoadFromFileInvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	_, err := LoadFromFile(path)
	if err == nil {
		t.Fatal("expected error for invalid JSON")
	}
	if !errs.IsKind(err, errs.KindConfig) {
		t.Errorf("expected config kind, got: %v", err)
	}
}

func TestSaveAndReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.json")

	cfg := Default()
	cfg.Server.Port = 8123
	if err := cfg.SaveToFile(path); err != nil {
		t.Fatalf("SaveToFile failed: %v", err)
	}

	loaded, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile failed: %v", err)
	}
	if loaded.Server.Port != 8123 {
		t.Errorf("expected port 8123 after reload, got %d", loaded.Server.Port)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid default", func(c *Config) {}, false},
		{"bad port", func(c *Config) { c.Server.Port = 0 }, true},
		{"zero timeout", func(c *Config) { c.Fetch.TimeoutSeconds = 0 }, true},
		{"negative max bytes", func(c *Config) { c.Fetch.MaxBytes = -1 }, true},
		{"unknown algorithm", func(c *Config) { c.Saliency.Algorithm = "otsu" }, true},
		{"tiny analysis size", func(c *Config) { c.Saliency.AnalysisSize = 4 }, true},
		{"negative sigma", func(c *Config) { c.Saliency.BlurSigma = -1 }, true},
		{"describe enabled without url", func(c *Config) {
			c.Describe.Enabled = true
			c.Describe.URL = ""
		}, true},
		{"describe enabled without model", func(c *Config) {
			c.Describe.Enabled = true
			c.Describe.Model = ""
		}, true},
		{"describe enabled fully", func(c *Config) { c.Describe.Enabled = true }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errs.IsKind(err, errs.KindConfig) {
				t.Errorf("expected config kind, got: %v", err)
			}
		})
	}
}
