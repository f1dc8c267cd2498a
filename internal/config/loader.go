package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadFrom reads config from a YAML file. Keys missing from the file keep
// their defaults. Environment overrides are not applied.
func LoadFrom(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return nil, &ConfigNotFoundError{Path: path}
	case errors.Is(err, fs.ErrPermission):
		return nil, &PermissionError{Path: path, Op: "read", Err: err}
	case err != nil:
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, &InvalidConfigError{
			Path:   path,
			Reason: fmt.Sprintf("YAML parse error: %v", err),
			Hint:   "Restore " + path + ".bak if it exists, or run 'retroos-brain config init --force'",
		}
	}

	return cfg, nil
}
