// CLAUDE:SUMMARY Defines recflow config structs and parses YAML configuration files with defaults.
// Package config handles recflow configuration from YAML files.
package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level recflow configuration.
type Config struct {
	Browser   BrowserConfig   `yaml:"browser"`
	Recording RecordingConfig `yaml:"recording"`
	Store     StoreConfig     `yaml:"store"`
	Server    ServerConfig    `yaml:"server"`
}

// BrowserConfig controls the Chrome instance recordings run in.
type BrowserConfig struct {
	Remote   string `yaml:"remote"`   // ws:// URL of an external Chrome; empty = launch
	Headless bool   `yaml:"headless"` // recording is interactive, default headful
	Stealth  bool   `yaml:"stealth"`
}

// RecordingConfig controls step synthesis.
type RecordingConfig struct {
	FillDebounce   time.Duration `yaml:"fill_debounce"`
	ScrollDebounce time.Duration `yaml:"scroll_debounce"`
	ClickThreshold time.Duration `yaml:"click_threshold"`
	BatchInterval  time.Duration `yaml:"batch_interval"`
	AckTimeout     time.Duration `yaml:"ack_timeout"`
	GracePeriod    time.Duration `yaml:"grace_period"`
	RedactAll      bool          `yaml:"redact_all"`
	Overlay        *bool         `yaml:"overlay"` // default on
}

// StoreConfig locates the flow database.
type StoreConfig struct {
	Path string `yaml:"path"`
}

// ServerConfig exposes the control plane.
type ServerConfig struct {
	Addr string `yaml:"addr"` // HTTP listen address; empty = no HTTP
	MCP  string `yaml:"mcp"`  // "stdio" to serve MCP on stdio; empty = off
}

// LoadFile reads a YAML configuration file.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	cfg.ApplyDefaults()
	return &cfg, nil
}

// ApplyDefaults fills zero values with the recording constants.
func (c *Config) ApplyDefaults() {
	if c.Recording.FillDebounce <= 0 {
		c.Recording.FillDebounce = 800 * time.Millisecond
	}
	if c.Recording.ScrollDebounce <= 0 {
		c.Recording.ScrollDebounce = 350 * time.Millisecond
	}
	if c.Recording.ClickThreshold <= 0 {
		c.Recording.ClickThreshold = 300 * time.Millisecond
	}
	if c.Recording.BatchInterval <= 0 {
		c.Recording.BatchInterval = 100 * time.Millisecond
	}
	if c.Recording.AckTimeout <= 0 {
		c.Recording.AckTimeout = 3 * time.Second
	}
	if c.Recording.GracePeriod <= 0 {
		c.Recording.GracePeriod = 100 * time.Millisecond
	}
	if c.Recording.Overlay == nil {
		on := true
		c.Recording.Overlay = &on
	}
	if c.Store.Path == "" {
		c.Store.Path = "flows.db"
	}
}
