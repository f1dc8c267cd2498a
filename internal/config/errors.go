package config

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"strings"
)

// PermissionError is returned when the config file or its directory
// can't be read or written.
type PermissionError struct {
	Path string
	Op   string // "read" or "write"
	Err  error
}

func (e *PermissionError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "cannot %s %s", e.Op, e.Path)
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	if mode := currentMode(e.Path); mode != "" {
		fmt.Fprintf(&b, " (mode %s)", mode)
	}
	b.WriteString("\n💡 Fix: ")
	b.WriteString(permissionHint(e.Path, e.Op))
	return b.String()
}

func (e *PermissionError) Unwrap() error {
	return e.Err
}

// ConfigNotFoundError is returned by LoadFrom when the file doesn't exist.
type ConfigNotFoundError struct {
	Path string
}

func (e *ConfigNotFoundError) Error() string {
	return fmt.Sprintf("config file not found: %s\n💡 Run 'retroos-brain config init' to create one", e.Path)
}

// InvalidConfigError is returned for unparsable files and for settings
// that fail validation.
type InvalidConfigError struct {
	Path   string
	Reason string
	Hint   string
}

func (e *InvalidConfigError) Error() string {
	msg := fmt.Sprintf("invalid config %s: %s", e.Path, e.Reason)
	if e.Hint != "" {
		msg += "\n💡 " + e.Hint
	}
	return msg
}

// IsNotFound reports whether err is, or wraps, a ConfigNotFoundError.
func IsNotFound(err error) bool {
	var nf *ConfigNotFoundError
	return errors.As(err, &nf)
}

// permissionHint suggests a platform-specific fix.
func permissionHint(path, op string) string {
	if runtime.GOOS == "windows" {
		return fmt.Sprintf("Right-click %s → Properties → Security and allow %s access", path, op)
	}
	if op == "read" {
		return fmt.Sprintf("chmod u+r %s", path)
	}
	return fmt.Sprintf("chmod u+w %s", path)
}

func currentMode(path string) string {
	if runtime.GOOS == "windows" {
		return ""
	}
	info, err := os.Stat(path)
	if err != nil {
		return ""
	}
	return fmt.Sprintf("%04o", info.Mode().Perm())
}
