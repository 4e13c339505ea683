// Package config loads runtime configuration for the applylog CLI.
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
//	  "server_endpoint_addr": "127.0.0.1:50051",
//	  "online_check_interval": "3s",
//	  "request_timeout": "10s",
//	  "tls": false,
//	  "page_size": 10,
//	  "max_sync_attempts": 5,
//	  "data_dir": ".applylog",
//	  "log_level": "info"
//	}
package config
