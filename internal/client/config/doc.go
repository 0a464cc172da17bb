// Package config loads runtime configuration for the Eventverse client.
//
// Sources, later ones overriding earlier ones:
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file named with -c or -config.
//  3. EVENTVERSE_* environment variables.
//  4. Command-line flags.
//
// Supported flags
//
//	-a string   base URL of the HTTP API
//	-g string   host:port of the gRPC health endpoint
//	-d string   path of the local cache database
//	-t int      request timeout (seconds)
//	-i int      online status check interval (seconds)
//	-r string   background refresh schedule (cron spec)
//	-l string   log level (debug, info, warn, error)
//
// # JSON schema
//
// Durations are strings like "3s" or integer nanoseconds:
//
//	{
//	  "server_url": "http://127.0.0.1:8080",
//	  "health_addr": "127.0.0.1:50051",
//	  "database_path": "eventverse.db",
//	  "request_timeout": "10s",
//	  "online_check_interval": "3s",
//	  "refresh_schedule": "@every 10m",
//	  "log_level": "info"
//	}
package config
