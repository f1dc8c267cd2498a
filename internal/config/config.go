/*
Package config handles loading and saving retroos-brain configuration.

Configuration is stored in ~/.retroos-brain/config.yaml. Missing keys
keep their defaults, and a few settings can be overridden from the
environment.

Schema:

	storage:
	  backend: sqlite        # sqlite | bolt | memory
	  path: ~/.retroos-brain/brain.db
	  stateKey: retroos_ai_state
	journal:
	  enabled: true
	  path: ~/.retroos-brain/history.db
	  retentionDays: 30
	logging:
	  level: info            # debug | info | warn | error
	  encoding: console      # console | json
	engine:
	  seed: 0                # 0 seeds from the clock
	  displayName: ""
	server:
	  addr: 127.0.0.1:8095
*/
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// dirName is the per-user directory holding config and databases.
const dirName = ".retroos-brain"

// Config represents the root configuration structure.
type Config struct {
	Storage StorageConfig `yaml:"storage"`
	Journal JournalConfig `yaml:"journal"`
	Logging LoggingConfig `yaml:"logging"`
	Engine  EngineConfig  `yaml:"engine"`
	Server  ServerConfig  `yaml:"server"`
}

// StorageConfig selects where engine state lives.
type StorageConfig struct {
	// Backend is one of "sqlite", "bolt" or "memory".
	Backend string `yaml:"backend"`

	// Path is the database file. Ignored by the memory backend.
	Path string `yaml:"path"`

	// StateKey is the key the state blob is stored under.
	StateKey string `yaml:"stateKey"`
}

// JournalConfig configures the action history.
type JournalConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`

	// RetentionDays is how long history is kept by "history prune". 0 keeps everything.
	RetentionDays int `yaml:"retentionDays"`
}

// Retention returns the retention as a duration.
func (j JournalConfig) Retention() time.Duration {
	return time.Duration(j.RetentionDays) * 24 * time.Hour
}

// LoggingConfig configures the zap logger.
type LoggingConfig struct {
	Level    string `yaml:"level"`
	Encoding string `yaml:"encoding"`
}

// EngineConfig tunes the behavior engine.
type EngineConfig struct {
	// Seed fixes the phrase randomness. 0 seeds from the clock.
	Seed int64 `yaml:"seed"`

	// DisplayName is woven into the first-contact greeting.
	DisplayName string `yaml:"displayName"`
}

// ServerConfig configures the WebSocket listener.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// Default returns a Config with sensible defaults.
func Default() *Config {
	return &Config{
		Storage: StorageConfig{
			Backend:  "sqlite",
			Path:     "~/" + dirName + "/brain.db",
			StateKey: "retroos_ai_state",
		},
		Journal: JournalConfig{
			Enabled:       true,
			Path:          "~/" + dirName + "/history.db",
			RetentionDays: 30,
		},
		Logging: LoggingConfig{
			Level:    "info",
			Encoding: "console",
		},
		Server: ServerConfig{
			Addr: "127.0.0.1:8095",
		},
	}
}

// DefaultPath returns the path to ~/.retroos-brain/config.yaml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, dirName, "config.yaml"), nil
}

// Load reads the config at path, or the default path when path is empty.
// A missing file yields the defaults. Environment overrides are applied
// last and the result is validated.
func Load(path string) (*Config, error) {
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
	}

	cfg, err := LoadFrom(path)
	if err != nil {
		if !IsNotFound(err) {
			return nil, err
		}
		cfg = Default()
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, &InvalidConfigError{
			Path:   path,
			Reason: err.Error(),
			Hint:   "Run 'retroos-brain config init --force' to restore defaults",
		}
	}
	return cfg, nil
}

// LoadOrCreate writes the defaults to path if no file exists there yet,
// then loads it like Load.
func LoadOrCreate(path string) (*Config, error) {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		if err := Save(Default(), path); err != nil {
			return nil, err
		}
	}
	return Load(path)
}

// applyEnvOverrides applies environment variable overrides to the config.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("RETROOS_BRAIN_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}

	if v := os.Getenv("RETROOS_BRAIN_BACKEND"); v != "" {
		cfg.Storage.Backend = v
	}

	if v := os.Getenv("RETROOS_BRAIN_JOURNAL"); v != "" {
		cfg.Journal.Enabled = v == "true" || v == "1"
	}
}

// ExpandPath replaces a leading ~ with the user's home directory.
func ExpandPath(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to expand %s: %w", path, err)
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}
