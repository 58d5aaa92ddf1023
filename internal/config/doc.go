// Package config loads, validates, and defaults the TOML configuration
// used by the diagnosis engine and its CLI.
package config
