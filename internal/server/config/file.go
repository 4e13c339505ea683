package config

import (
	"github.com/dmitrijs2005/applylog/internal/configx"
	"github.com/dmitrijs2005/applylog/internal/flagx"
	"github.com/dmitrijs2005/applylog/internal/timex"
)

// FileConfig is the config-file shape. Durations use timex.Duration, so
// "15m" and integer nanoseconds both work. Absent fields keep the current
// value; RateLimitPerMinute is a pointer so 0 can switch limiting off.
type FileConfig struct {
	EndpointAddrGRPC             string         `json:"endpoint_addr_grpc" toml:"endpoint_addr_grpc"`
	EndpointAddrHTTP             string         `json:"endpoint_addr_http" toml:"endpoint_addr_http"`
	DatabaseDSN                  string         `json:"database_dsn" toml:"database_dsn"`
	SecretKey                    string         `json:"secret_key" toml:"secret_key"`
	AccessTokenValidityDuration  timex.Duration `json:"access_token_validity_duration" toml:"access_token_validity_duration"`
	RefreshTokenValidityDuration timex.Duration `json:"refresh_token_validity_duration" toml:"refresh_token_validity_duration"`
	S3RootUser                   string         `json:"s3_root_user" toml:"s3_root_user"`
	S3RootPassword               string         `json:"s3_root_password" toml:"s3_root_password"`
	S3Bucket                     string         `json:"s3_bucket" toml:"s3_bucket"`
	S3Region                     string         `json:"s3_region" toml:"s3_region"`
	S3BaseEndpoint               string         `json:"s3_base_endpoint" toml:"s3_base_endpoint"`
	ExportLinkTTL                timex.Duration `json:"export_link_ttl" toml:"export_link_ttl"`
	CORSAllowedOrigins           []string       `json:"cors_allowed_origins" toml:"cors_allowed_origins"`
	RateLimitPerMinute           *int           `json:"rate_limit_per_minute" toml:"rate_limit_per_minute"`
	MaxPageSize                  int            `json:"max_page_size" toml:"max_page_size"`
	LogLevel                     string         `json:"log_level" toml:"log_level"`
}

// parseFile overlays Config with the file named by -c or -config.
// Read or decode errors panic.
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
	setString(&cfg.EndpointAddrGRPC, fc.EndpointAddrGRPC)
	setString(&cfg.EndpointAddrHTTP, fc.EndpointAddrHTTP)
	setString(&cfg.DatabaseDSN, fc.DatabaseDSN)
	setString(&cfg.SecretKey, fc.SecretKey)
	setString(&cfg.S3RootUser, fc.S3RootUser)
	setString(&cfg.S3RootPassword, fc.S3RootPassword)
	setString(&cfg.S3Bucket, fc.S3Bucket)
	setString(&cfg.S3Region, fc.S3Region)
	setString(&cfg.S3BaseEndpoint, fc.S3BaseEndpoint)
	setString(&cfg.LogLevel, fc.LogLevel)

	if d := fc.AccessTokenValidityDuration.Duration; d > 0 {
		cfg.AccessTokenValidityDuration = d
	}
	if d := fc.RefreshTokenValidityDuration.Duration; d > 0 {
		cfg.RefreshTokenValidityDuration = d
	}
	if d := fc.ExportLinkTTL.Duration; d > 0 {
		cfg.ExportLinkTTL = d
	}
	if fc.CORSAllowedOrigins != nil {
		cfg.CORSAllowedOrigins = fc.CORSAllowedOrigins
	}
	if fc.RateLimitPerMinute != nil {
		cfg.RateLimitPerMinute = *fc.RateLimitPerMinute
	}
	if fc.MaxPageSize > 0 {
		cfg.MaxPageSize = fc.MaxPageSize
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
