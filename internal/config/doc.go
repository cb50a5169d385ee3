// Package config provides centralized configuration management for pipeledger.
// It handles loading configuration from multiple sources, validation, and provides
// a type-safe API for accessing configuration values throughout the application.
//
// # Configuration Sources
//
// Configuration is loaded from the following sources in order of precedence:
//
//	1. Environment variables (highest priority), optionally seeded from a .env file
//	2. A YAML configuration file (config.yaml or configs/config.yaml)
//	3. Default values (lowest priority)
//
// # Environment Variables
//
// All environment variables follow the pattern PIPELEDGER_* for namespacing:
//
//	PIPELEDGER_SERVER_PORT=8080
//	PIPELEDGER_LOGGING_LEVEL=debug
//	PIPELEDGER_PATHS_DATA_DIR=/var/lib/pipeledger
//	PIPELEDGER_MERGE_GAP_FILL=true
//
// # Paths
//
// Every on-disk location (ledger tables, bulletin inbox, freshness database,
// exports, logs) is derived from the data directory by GetPaths.
package config
