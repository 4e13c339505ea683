package config

import (
	"errors"

	"github.com/dmitrijs2005/applylog/internal/configx"
)

// parseEnv overlays Config with APPLYLOG_* variables, after loading .env.
// A malformed value panics, like the other loaders.
func parseEnv(cfg *Config) {
	if err := configx.LoadDotEnv(); err != nil {
		panic(err)
	}

	configx.String("APPLYLOG_SERVER_ADDR", &cfg.ServerEndpointAddr)
	configx.String("APPLYLOG_DATA_DIR", &cfg.DataDir)
	configx.String("APPLYLOG_DATABASE_DSN", &cfg.DatabaseDSN)
	configx.String("APPLYLOG_EXPORT_DIR", &cfg.ExportDir)
	configx.String("APPLYLOG_LOG_LEVEL", &cfg.LogLevel)

	err := errors.Join(
		configx.Duration("APPLYLOG_ONLINE_CHECK_INTERVAL", &cfg.OnlineCheckInterval),
		configx.Duration("APPLYLOG_REQUEST_TIMEOUT", &cfg.RequestTimeout),
		configx.Int("APPLYLOG_PAGE_SIZE", &cfg.PageSize),
		configx.Int("APPLYLOG_MAX_SYNC_ATTEMPTS", &cfg.MaxSyncAttempts),
		configx.Bool("APPLYLOG_TLS", &cfg.UseTLS),
	)
	if err != nil {
		panic(err)
	}
}
