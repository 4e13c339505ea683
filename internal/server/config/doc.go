// Package config loads runtime configuration for the applylog server.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Environment: .env is loaded first, then APPLYLOG_* variables.
//  3. Optional config file selected with -c or -config; JSON, or TOML for
//     a .toml extension.
//  4. Command-line flags, which override everything else.
//
// # File schema
//
//	{
//	  "endpoint_addr_grpc": ":50051",
//	  "endpoint_addr_http": ":8080",
//	  "database_dsn": "postgres://...",
//	  "secret_key": "...",
//	  "access_token_validity_duration": "15m",
//	  "refresh_token_validity_duration": "720h",
//	  "s3_root_user": "admin",
//	  "s3_root_password": "...",
//	  "s3_bucket": "applylog",
//	  "s3_region": "us-east-1",
//	  "s3_base_endpoint": "http://127.0.0.1:9000/",
//	  "export_link_ttl": "15m",
//	  "cors_allowed_origins": ["http://localhost:5173"],
//	  "rate_limit_per_minute": 100,
//	  "max_page_size": 100,
//	  "log_level": "info"
//	}
//
// Durations accept Go syntax ("15m") or integer nanoseconds.
package config
