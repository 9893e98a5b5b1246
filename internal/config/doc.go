// Package config loads, parses, and validates application settings from an
// optional .env file, environment variables, and an optional config.yaml.
// Settings are loaded once at startup and passed by reference to the
// components that need them.
package config
