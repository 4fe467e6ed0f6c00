// Package config provides centralized configuration management for albumsvc.
// It loads configuration from multiple sources, validates it, and exposes a
// type-safe struct to the rest of the application.
//
// # Configuration Sources
//
// Configuration is resolved in the following order of precedence:
//
//	1. Environment variables (highest priority)
//	2. YAML configuration file
//	3. Default values (lowest priority)
//
// # Environment Variables
//
// All environment variables follow the pattern ALBUMSVC_<SECTION>_<KEY>:
//
//	ALBUMSVC_SERVER_PORT=3000
//	ALBUMSVC_DATABASE_DSN=file:albums.db
//	ALBUMSVC_LOGGING_LEVEL=debug
//	ALBUMSVC_TELEMETRY_TRACE_EXPORTER=stdout
//
// The file location is taken from the --config flag, then ALBUMSVC_CONFIG,
// then config.yaml or configs/config.yaml in the working directory.
//
// # Usage
//
//	cfg, err := config.Load("")
//	if err != nil {
//	    return err
//	}
//
// # Testing
//
// Use config.Default() for a configuration that needs no environment or
// files, and adjust fields directly.
package config
