// Package config loads and validates application settings from environment
// variables and an optional YAML file, giving the rest of the application
// type-safe access to server, database, and auth configuration.
package config