// Package config loads, parses and validates application settings from a
// YAML file and CARDLINK_ environment variables, and holds the SDK
// configuration and client token that flows read at start.
package config
