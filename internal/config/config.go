package config

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/menta2k/focuspoint/internal/errs"
)

// Config holds the application configuration
type Config struct {
	Server   ServerConfig   `json:"server"`
	Fetch    FetchConfig    `json:"fetch"`
	Saliency SaliencyConfig `json:"saliency"`
	Describe DescribeConfig `json:"describe"`
	Log      LogConfig      `json:"log"`
}

// ServerConfig holds the HTTP listener settings
type ServerConfig struct {
	Host string `json:"host"`
	Port int    `json:"port"`
}

// FetchConfig holds settings for remote image downloads
type FetchConfig struct {
	TimeoutSeconds int   `json:"timeout_seconds"`
	MaxBytes       int64 `json:"max_bytes"`
}

// SaliencyConfig selects and tunes the saliency scorer
type SaliencyConfig struct {
	Algorithm    string  `json:"algorithm"` // "spectral" or "finegrained"
	AnalysisSize int     `json:"analysis_size"`
	BlurSigma    float64 `json:"blur_sigma"`
}

// DescribeConfig holds optional vision-model caption settings
type DescribeConfig struct {
	Enabled bool   `json:"enabled"`
	URL     string `json:"url"`
	Model   string `json:"model"`
}

// LogConfig holds logging settings
type LogConfig struct {
	Level string `json:"level"`
}

// Default returns a configuration with default values
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Fetch: FetchConfig{
			TimeoutSeconds: 10,
			MaxBytes:       32 << 20, // 32 MiB
		},
		Saliency: SaliencyConfig{
			Algorithm:    "spectral",
			AnalysisSize: 64,
			BlurSigma:    2.5,
		},
		Describe: DescribeConfig{
			Enabled: false,
			URL:     "http://localhost:11434",
			Model:   "llava",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// LoadFromFile loads configuration from a JSON file
func LoadFromFile(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, errs.Wrap(errs.KindConfig, "load", "failed to read config file", err)
	}

	config := Default()
	if err := json.Unmarshal(data, config); err != nil {
		return nil, errs.Wrap(errs.KindConfig, "load", "failed to parse config file", err)
	}

	return config, nil
}

// SaveToFile saves configuration to a JSON file
func (c *Config) SaveToFile(filename string) error {
	dir := filepath.Dir(filename)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errs.Wrap(errs.KindConfig, "save", "failed to create config directory", err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return errs.Wrap(errs.KindConfig, "save", "failed to marshal config", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return errs.Wrap(errs.KindConfig, "save", "failed to write config file", err)
	}

	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return errs.New(errs.KindConfig, "validate", "server.port must be between 1 and 65535")
	}

	if c.Fetch.TimeoutSeconds < 1 {
		return errs.New(errs.KindConfig, "validate", "fetch.timeout_seconds must be positive")
	}

	if c.Fetch.MaxBytes < 0 {
		return errs.New(errs.KindConfig, "validate", "fetch.max_bytes cannot be negative")
	}

	switch c.Saliency.Algorithm {
	case "spectral", "finegrained":
	default:
		return errs.New(errs.KindConfig, "validate", `saliency.algorithm must be "spectral" or "finegrained"`)
	}

	if c.Saliency.AnalysisSize < 8 {
		return errs.New(errs.KindConfig, "validate", "saliency.analysis_size must be at least 8")
	}

	if c.Saliency.BlurSigma < 0 {
		return errs.New(errs.KindConfig, "validate", "saliency.blur_sigma cannot be negative")
	}

	if c.Describe.Enabled {
		if c.Describe.URL == "" {
			return errs.New(errs.KindConfig, "validate", "describe.url is required when describe is enabled")
		}
		if c.Describe.Model == "" {
			return errs.New(errs.KindConfig, "validate", "describe.model is required when describe is enabled")
		}
	}

	return nil
}

// GetConfigPath returns the default configuration file path
func GetConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "./config.json"
	}
	return filepath.Join(home, ".config", "focuspoint", "config.json")
}
