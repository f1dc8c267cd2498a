package config

import (
	"fmt"
	"net"
)

var (
	validBackends  = map[string]bool{"sqlite": true, "bolt": true, "memory": true}
	validLevels    = map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	validEncodings = map[string]bool{"console": true, "json": true}
)

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if !validBackends[c.Storage.Backend] {
		return fmt.Errorf("invalid storage backend: %q (valid: sqlite, bolt, memory)", c.Storage.Backend)
	}
	if c.Storage.Backend != "memory" && c.Storage.Path == "" {
		return fmt.Errorf("storage path is required for the %s backend", c.Storage.Backend)
	}
	if c.Storage.StateKey == "" {
		return fmt.Errorf("storage stateKey must not be empty")
	}

	if c.Journal.Enabled && c.Journal.Path == "" {
		return fmt.Errorf("journal path is required when the journal is enabled")
	}
	if c.Journal.RetentionDays < 0 {
		return fmt.Errorf("journal retentionDays must be non-negative, got %d", c.Journal.RetentionDays)
	}

	if c.Logging.Level != "" && !validLevels[c.Logging.Level] {
		return fmt.Errorf("invalid log level: %q (valid: debug, info, warn, error)", c.Logging.Level)
	}
	if c.Logging.Encoding != "" && !validEncodings[c.Logging.Encoding] {
		return fmt.Errorf("invalid log encoding: %q (valid: console, json)", c.Logging.Encoding)
	}

	if _, _, err := net.SplitHostPort(c.Server.Addr); err != nil {
		return fmt.Errorf("invalid server addr %q: %w", c.Server.Addr, err)
	}

	return nil
}
