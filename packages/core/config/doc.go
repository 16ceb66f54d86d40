// Package config handles configuration loading and management for bookcheck.
//
// It provides functionality for:
//   - Loading configuration from .bookcheck.json or .bookcheck.yaml files
//   - Default configuration values
//   - BOOKCHECK_* environment overrides
package config
