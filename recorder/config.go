package recorder

import (
	"github.com/hazyhaar/recflow/recorder/internal/config"
)

// Config is the top-level recflow configuration. Re-exported from internal.
type Config = config.Config

// BrowserConfig controls the Chrome instance recordings run in.
type BrowserConfig = config.BrowserConfig

// RecordingConfig controls step synthesis windows and redaction.
type RecordingConfig = config.RecordingConfig

// StoreConfig locates the flow database.
type StoreConfig = config.StoreConfig

// ServerConfig exposes the control plane.
type ServerConfig = config.ServerConfig

// LoadConfigFile reads a YAML configuration file.
func LoadConfigFile(path string) (*Config, error) {
	return config.LoadFile(path)
}
