package config

import (
	"path/filepath"
	"time"
)

// Config holds runtime settings for the applylog CLI.
type Config struct {
	ServerEndpointAddr  string
	OnlineCheckInterval time.Duration
	RequestTimeout      time.Duration
	UseTLS              bool

	PageSize        int
	MaxSyncAttempts int

	// DataDir holds the local database, the log file and exports unless
	// those are configured separately.
	DataDir     string
	DatabaseDSN string
	ExportDir   string
	LogLevel    string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerEndpointAddr = "127.0.0.1:50051"
	c.OnlineCheckInterval = 3 * time.Second
	c.RequestTimeout = 10 * time.Second
	c.PageSize = 10
	c.MaxSyncAttempts = 5
	c.DataDir = ".applylog"
	c.LogLevel = "info"
}

// DSN returns the local database location.
func (c *Config) DSN() string {
	if c.DatabaseDSN != "" {
		return c.DatabaseDSN
	}
	return filepath.Join(c.DataDir, "applylog.db")
}

// Exports returns the directory downloaded exports go to.
func (c *Config) Exports() string {
	if c.ExportDir != "" {
		return c.ExportDir
	}
	return filepath.Join(c.DataDir, "exports")
}

// LogFile is where the client writes its log, away from the REPL.
func (c *Config) LogFile() string {
	return filepath.Join(c.DataDir, "client.log")
}

// KeyFile holds the key that seals the stored session.
func (c *Config) KeyFile() string {
	return filepath.Join(c.DataDir, "session.key")
}

// LoadConfig applies defaults, then the environment, the config file and
// command-line flags. Later sources take precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseEnv(cfg)
	parseFile(cfg)
	parseFlags(cfg)
	return cfg
}
