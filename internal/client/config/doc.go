// Package config loads runtime configuration for the IAM CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional config file selected with -c or -config. Files ending in
//     .yaml or .yml are decoded as YAML, everything else as JSON.
//  3. A .env file in the working directory (if any) and IAM_* environment
//     variables.
//  4. Command-line flags, which override everything else.
//
// Supported flags
//
//	-a string   base URL of the IAM API (e.g. http://localhost:8080/api/v1)
//	-t int      request timeout (seconds)
//	-s string   path of the local state database
//	-l string   log level (debug, info, warn, error)
//
// # File schema
//
// Durations use timex.Duration, so they can be strings like "10s" or integer
// nanoseconds:
//
//	{
//	  "base_url": "https://iam.example.com/api/v1",
//	  "request_timeout": "10s",
//	  "refresh_threshold": "30s",
//	  "state_path": "~/.iamclient/state.db",
//	  "log_level": "debug"
//	}
//
// # Environment
//
//	IAM_BASE_URL, IAM_REFRESH_PATH, IAM_REQUEST_TIMEOUT, IAM_REFRESH_THRESHOLD,
//	IAM_STATE_PATH, IAM_STATE_PASSPHRASE, IAM_LOG_LEVEL, IAM_LOG_FORMAT,
//	IAM_METRICS_ADDR
//
// The state passphrase is deliberately not a flag so it does not show up in
// process listings.
package config
