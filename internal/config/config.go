package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/termchat/termchat/internal/models"
)

// Config holds everything read at startup. It comes from an optional
// YAML file overridden by environment variables; nothing is ever written
// back.
type Config struct {
	APIKey       string   `yaml:"api_key"`
	DefaultModel string   `yaml:"default_model"`
	BaseURL      string   `yaml:"base_url"`
	AppURL       string   `yaml:"app_url"`
	AppTitle     string   `yaml:"app_title"`
	Models       []string `yaml:"models"`
}

// Dir is where the optional config file lives.
func Dir() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".termchat")
}

func configPath() string {
	return filepath.Join(Dir(), "termchat.yaml")
}

// Load reads the config file when present (env vars inside it are
// expanded), applies OPENROUTER_API_KEY and DEFAULT_MODEL overrides and
// the built-in defaults, and validates that an API key exists. A missing
// key is a startup error; everything else has a fallback.
func Load() (*Config, error) {
	var cfg Config
	data, err := os.ReadFile(configPath())
	switch {
	case err == nil:
		data = []byte(os.ExpandEnv(string(data)))
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	case !os.IsNotExist(err):
		return nil, fmt.Errorf("load config: %w", err)
	}

	if v := os.Getenv("OPENROUTER_API_KEY"); v != "" {
		cfg.APIKey = v
	}
	if v := os.Getenv("DEFAULT_MODEL"); v != "" {
		cfg.DefaultModel = v
	}
	if cfg.DefaultModel == "" {
		cfg.DefaultModel = models.DefaultModel
	}
	if len(cfg.Models) == 0 {
		cfg.Models = models.Catalog()
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("OPENROUTER_API_KEY not set: export it or put api_key in %s", configPath())
	}
	return &cfg, nil
}
