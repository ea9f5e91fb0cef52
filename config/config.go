package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/viant/scy/cred/secret"
	"gopkg.in/yaml.v3"
)

// Config defines provider and cache settings for the CLI and embedders.
type Config struct {
	Embeddings EmbeddingsConfig `yaml:"embeddings"`
	Chat       ChatConfig       `yaml:"chat"`
	Cache      CacheConfig      `yaml:"cache"`
}

// EmbeddingsConfig selects and tunes the embedding provider.
type EmbeddingsConfig struct {
	Provider   string         `yaml:"provider"` // voyageai | simple
	Model      string         `yaml:"model"`
	APIKey     string         `yaml:"apiKey,omitempty"`
	Secret     string         `yaml:"secret,omitempty"`
	BatchSize  int            `yaml:"batchSize,omitempty"`
	BatchSizes map[string]int `yaml:"batchSizes,omitempty"`
	Truncation *bool          `yaml:"truncation,omitempty"`
	Progress   bool           `yaml:"progress,omitempty"`
}

// ChatConfig selects and tunes the chat provider.
type ChatConfig struct {
	Provider string `yaml:"provider"` // ai21 | together
	Model    string `yaml:"model"`
	APIKey   string `yaml:"apiKey,omitempty"`
	Secret   string `yaml:"secret,omitempty"`
	APIHost  string `yaml:"apiHost,omitempty"`
}

// CacheConfig selects the LLM cache binding.
type CacheConfig struct {
	Driver    string  `yaml:"driver"` // memory | redis | semantic
	Addr      string  `yaml:"addr,omitempty"`
	Prefix    string  `yaml:"prefix,omitempty"`
	DSN       string  `yaml:"dsn,omitempty"`
	Secret    string  `yaml:"secret,omitempty"`
	Threshold float32 `yaml:"threshold,omitempty"`
}

// Load reads and expands a YAML config.
func Load(path string) (*Config, error) {
	path, err := expandUserPath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	ctx := context.Background()
	if cfg.Embeddings.Secret != "" {
		if cfg.Embeddings.APIKey, err = ExpandWithSecret(ctx, cfg.Embeddings.APIKey, cfg.Embeddings.Secret); err != nil {
			return nil, err
		}
	}
	if cfg.Chat.Secret != "" {
		if cfg.Chat.APIKey, err = ExpandWithSecret(ctx, cfg.Chat.APIKey, cfg.Chat.Secret); err != nil {
			return nil, err
		}
	}
	if cfg.Cache.DSN != "" {
		if cfg.Cache.DSN, err = expandUserPath(cfg.Cache.DSN); err != nil {
			return nil, err
		}
	}
	if cfg.Cache.Secret != "" {
		if cfg.Cache.DSN, err = ExpandWithSecret(ctx, cfg.Cache.DSN, cfg.Cache.Secret); err != nil {
			return nil, err
		}
	}
	return &cfg, nil
}

// ExpandWithSecret loads a secret and expands placeholders in value.
func ExpandWithSecret(ctx context.Context, value, secretRef string) (string, error) {
	secretRef = strings.TrimSpace(secretRef)
	if secretRef == "" {
		return value, nil
	}
	if strings.TrimSpace(value) == "" {
		return "", fmt.Errorf("config: secret %q provided but value is empty", secretRef)
	}
	svc := secret.New()
	sec, err := svc.Lookup(ctx, secret.Resource(secretRef))
	if err != nil {
		return "", err
	}
	return sec.Expand(value), nil
}

func expandUserPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" || trimmed[0] != '~' {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	if trimmed == "~" {
		return home, nil
	}
	if !strings.HasPrefix(trimmed, "~/") {
		return "", fmt.Errorf("config: unsupported ~user path: %s", path)
	}
	return filepath.Join(home, trimmed[2:]), nil
}
