// Package config loads the operator configuration for mtm: where decisions
// are logged, how verbose logging is, and which webhooks hear about
// rejected manifests.
package config

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/ppiankov/mtm/internal/alert"
)

// Config is the contents of ~/.mtm/config.yaml.
type Config struct {
	AuditLog string              `yaml:"audit_log"`
	LogLevel string              `yaml:"log_level"`
	Alerts   []alert.AlertConfig `yaml:"alerts"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{LogLevel: "info"}
}

// DefaultPath returns ~/.mtm/config.yaml, or "" if the home directory
// cannot be resolved.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".mtm", "config.yaml")
}

// Load reads the config at path (DefaultPath when empty) and returns it with
// the SHA-256 of the raw bytes. A missing file yields defaults and the hash
// of empty input. Unknown keys are an error.
func Load(path string) (*Config, string, error) {
	if path == "" {
		path = DefaultPath()
	}
	if path == "" {
		return Default(), hashOf(nil), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), hashOf(nil), nil
		}
		return nil, "", fmt.Errorf("failed to read config: %w", err)
	}

	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, "", fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return nil, "", fmt.Errorf("invalid config %s: %w", path, err)
	}

	return cfg, hashOf(data), nil
}

func (c *Config) validate() error {
	for i, a := range c.Alerts {
		if a.URL == "" {
			return fmt.Errorf("alerts[%d]: url is required", i)
		}
		switch a.Format {
		case "", alert.FormatGeneric, alert.FormatSlack, alert.FormatPagerDuty:
		default:
			return fmt.Errorf("alerts[%d]: unknown format %q", i, a.Format)
		}
		if len(a.Events) == 0 {
			return fmt.Errorf("alerts[%d]: at least one event is required", i)
		}
	}
	return nil
}

func hashOf(data []byte) string {
	h := sha256.Sum256(data)
	return "sha256:" + hex.EncodeToString(h[:])
}
