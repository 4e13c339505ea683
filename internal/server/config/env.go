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

	configx.String("APPLYLOG_GRPC_ADDR", &cfg.EndpointAddrGRPC)
	configx.String("APPLYLOG_HTTP_ADDR", &cfg.EndpointAddrHTTP)
	configx.String("APPLYLOG_DATABASE_DSN", &cfg.DatabaseDSN)
	configx.String("APPLYLOG_SECRET_KEY", &cfg.SecretKey)
	configx.String("APPLYLOG_S3_USER", &cfg.S3RootUser)
	configx.String("APPLYLOG_S3_PASSWORD", &cfg.S3RootPassword)
	configx.String("APPLYLOG_S3_BUCKET", &cfg.S3Bucket)
	configx.String("APPLYLOG_S3_REGION", &cfg.S3Region)
	configx.String("APPLYLOG_S3_ENDPOINT", &cfg.S3BaseEndpoint)
	configx.Strings("APPLYLOG_CORS_ORIGINS", &cfg.CORSAllowedOrigins)
	configx.String("APPLYLOG_LOG_LEVEL", &cfg.LogLevel)

	err := errors.Join(
		configx.Duration("APPLYLOG_ACCESS_TOKEN_TTL", &cfg.AccessTokenValidityDuration),
		configx.Duration("APPLYLOG_REFRESH_TOKEN_TTL", &cfg.RefreshTokenValidityDuration),
		configx.Duration("APPLYLOG_EXPORT_LINK_TTL", &cfg.ExportLinkTTL),
		configx.Int("APPLYLOG_RATE_LIMIT", &cfg.RateLimitPerMinute),
		configx.Int("APPLYLOG_MAX_PAGE_SIZE", &cfg.MaxPageSize),
	)
	if err != nil {
		panic(err)
	}
}
