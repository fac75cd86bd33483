// Package config loads, normalizes, and validates the TOML configuration
// file and defines the storage directory layout derived from it.
package config
