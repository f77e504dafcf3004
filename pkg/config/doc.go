// Package config handles configuration management for drivepool.
// It layers embedded TOML defaults, the user config file, a project config
// file and DRIVEPOOL_ environment variables through koanf, then decodes the
// result into a Config value that is passed explicitly to constructors.
package config
