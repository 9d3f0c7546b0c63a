// Package config loads runtime configuration for the genpass CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected with -c or -config, or $GENPASS_CONFIG.
//  3. Command-line flags, which override earlier values.
//
// Supported flags
//
//	-d string   data directory
//	-l string   log level
//	-b string   log backend
//
// # JSON schema
//
// Durations use timex.Duration, so they can be strings like "5m" or integer
// nanoseconds. The email block keeps the key names of the legacy
// email_config.json file:
//
//	{
//	  "data_dir": "/home/alice/.genpass",
//	  "allow_legacy_hashes": true,
//	  "argon2": {"time": 1, "memory_kib": 65536, "threads": 4},
//	  "totp_interval": "5m",
//	  "otp_min_gap": "1m",
//	  "max_attempts": 3,
//	  "lockout_duration": "15m",
//	  "challenge_ttl": "5m",
//	  "email": {
//	    "smtp_server": "smtp.gmail.com",
//	    "smtp_port": 587,
//	    "sender_email": "vault@example.com",
//	    "sender_password": "app-password"
//	  },
//	  "log_level": "info",
//	  "log_backend": "zap"
//	}
//
// Call (*Config).Validate after loading.
package config
