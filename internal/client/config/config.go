// Package config loads CLI settings: built-in defaults, overlaid by an
// optional JSON file (-c/-config), overlaid by command-line flags.
package config

import (
	"os"
	"path/filepath"
	"time"
)

// Config holds runtime settings for the expense capture CLI.
type Config struct {
	// ServerAddr is the base URL of the backend HTTP API.
	ServerAddr string
	// DataDir is where the queue, ledger and metadata JSON files live.
	DataDir string
	// OnlineCheckInterval is how often the client probes server reachability.
	OnlineCheckInterval time.Duration
	// RequestTimeout bounds individual HTTP calls.
	RequestTimeout time.Duration
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerAddr = "http://127.0.0.1:8080"
	c.DataDir = defaultDataDir()
	c.OnlineCheckInterval = 3 * time.Second
	c.RequestTimeout = 15 * time.Second
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".speakance"
	}
	return filepath.Join(home, ".speakance")
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
