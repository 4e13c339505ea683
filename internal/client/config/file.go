package config

import (
	"github.com/dmitrijs2005/applylog/internal/configx"
	"github.com/dmitrijs2005/applylog/internal/flagx"
	"github.com/dmitrijs2005/applylog/internal/timex"
)

// FileConfig is the config-file shape. It relies on timex.Duration so
// intervals can be written as "3s" or as integer nanoseconds. Absent
// fields leave the current value alone.
type FileConfig struct {
	ServerEndpointAddr  string         `json:"server_endpoint_addr" toml:"server_endpoint_addr"`
	OnlineCheckInterval timex.Duration `json:"online_check_interval" toml:"online_check_interval"`
	RequestTimeout      timex.Duration `json:"request_timeout" toml:"request_timeout"`
	UseTLS              *bool          `json:"tls" toml:"tls"`
	PageSize            int            `json:"page_size" toml:"page_size"`
	MaxSyncAttempts     int            `json:"max_sync_attempts" toml:"max_sync_attempts"`
	DataDir             string         `json:"data_dir" toml:"data_dir"`
	DatabaseDSN         string         `json:"database_dsn" toml:"database_dsn"`
	ExportDir           string         `json:"export_dir" toml:"export_dir"`
	LogLevel            string         `json:"log_level" toml:"log_level"`
}

// parseFile overlays Config with the file named by -c or -config. JSON is
// the default; a .toml extension selects TOML. Read or decode errors panic.
func parseFile(cfg *Config) {
	path := flagx.ConfigFileFlag()
	if path == "" {
		return
	}

	var fc FileConfig
	if err := configx.DecodeFile(path, &fc); err != nil {
		panic(err)
	}
	fc.apply(cfg)
}

func (fc FileConfig) apply(cfg *Config) {
	setString(&cfg.ServerEndpointAddr, fc.ServerEndpointAddr)
	setString(&cfg.DataDir, fc.DataDir)
	setString(&cfg.DatabaseDSN, fc.DatabaseDSN)
	setString(&cfg.ExportDir, fc.ExportDir)
	setString(&cfg.LogLevel, fc.LogLevel)
	if fc.OnlineCheckInterval.Duration > 0 {
		cfg.OnlineCheckInterval = fc.OnlineCheckInterval.Duration
	}
	if fc.RequestTimeout.Duration > 0 {
		cfg.RequestTimeout = fc.RequestTimeout.Duration
	}
	if fc.UseTLS != nil {
		cfg.UseTLS = *fc.UseTLS
	}
	if fc.PageSize > 0 {
		cfg.PageSize = fc.PageSize
	}
	if fc.MaxSyncAttempts > 0 {
		cfg.MaxSyncAttempts = fc.MaxSyncAttempts
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
