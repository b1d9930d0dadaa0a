// Package config handles configuration loading and management for gqltester.
//
// It provides functionality for:
//   - Loading configuration from .gqltester.yml or .gqltester.yaml files
//   - Validating the file against an embedded JSON schema
//   - Default configuration values and merging of overrides
package config
