package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"
)

// TickMode selects how recording ticks map onto milliseconds
type TickMode string

const (
	TickModeRaw   TickMode = "raw"   // one tick = one millisecond
	TickModeTempo TickMode = "tempo" // metric ticks at the file's first tempo
)

// Config is the main configuration structure
type Config struct {
	LookaheadMs      int64    `json:"lookaheadMs"`
	InputPort        string   `json:"inputPort,omitempty"` // empty = any keyboard
	Palette          string   `json:"palette,omitempty"`   // GPL file, empty = built-in
	TickMode         TickMode `json:"tickMode,omitempty"`
	ShowOverlay      bool     `json:"showOverlay"`
	ViewportFraction float64  `json:"viewportFraction,omitempty"` // share of height above the keyboard
}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		LookaheadMs:      DefaultLookahead.Milliseconds(),
		TickMode:         TickModeRaw,
		ShowOverlay:      true,
		ViewportFraction: 0.85,
	}
}

// Lookahead returns the configured window as a duration
func (c *Config) Lookahead() time.Duration {
	return time.Duration(c.LookaheadMs) * time.Millisecond
}

// ConfigDir returns the config directory path
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "go-synthy"), nil
}

// ConfigPath returns the full path to config.json
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// LoadFrom reads the config at path, or returns defaults if not found.
// Fields missing from the file keep their defaults.
func LoadFrom(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, err
	}

	cfg := DefaultConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// SaveTo writes the config to path, creating its directory
func (c *Config) SaveTo(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}
