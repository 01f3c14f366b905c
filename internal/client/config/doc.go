// Package config loads runtime configuration for the TellBrandz terminal
// client.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected with -c or -config (see parseJSON).
//  3. TBZ_* environment variables (see parseEnv).
//  4. Command-line flags (see parseFlags).
//
// Later sources override earlier ones.
//
// Supported flags
//
//	-a string   backend base URL
//	-k string   publishable (anon) API key
//	-i int      online status check interval (seconds)
//	-d string   path of the local state database
//	-l string   log level (debug|info|warn|error)
//
// # JSON schema
//
// Durations accept strings like "3s" or integer nanoseconds:
//
//	{
//	  "backend_url": "https://project.example.co",
//	  "anon_key": "public-anon-key",
//	  "online_check_interval": "10s",
//	  "storage": {"driver": "s3", "bucket": "tell-media"}
//	}
package config
