// Package platform resolves the per-user directories the launcher reads and
// writes. Callers depend on the Dirs interface so tests can point the
// launcher at temporary directories instead of real user profiles.
package platform

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
)

// AppName is the directory name used under the platform base directories.
const AppName = "doom-cli"

// Environment variables that override the platform lookup.
const (
	EnvConfigDir = "DOOM_CLI_CONFIG_DIR"
	EnvDataDir   = "DOOM_CLI_DATA_DIR"
)

// Dirs returns the per-user configuration and data directories.
type Dirs interface {
	ConfigDir() (string, error)
	DataDir() (string, error)
}

// System resolves directories from the host platform conventions.
// The configuration directory prefers the roaming profile on Windows.
type System struct{}

// ConfigDir returns <user config dir>/doom-cli.
func (System) ConfigDir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, AppName), nil
}

// DataDir returns <user data dir>/doom-cli.
func (System) DataDir() (string, error) {
	base := strings.TrimSpace(xdg.DataHome)
	if base == "" {
		return "", errors.New("no user data directory available")
	}
	return filepath.Join(base, AppName), nil
}

// Static returns fixed directories.
type Static struct {
	Config string
	Data   string
}

func (s Static) ConfigDir() (string, error) {
	if s.Config == "" {
		return "", errors.New("config directory not set")
	}
	return s.Config, nil
}

func (s Static) DataDir() (string, error) {
	if s.Data == "" {
		return "", errors.New("data directory not set")
	}
	return s.Data, nil
}

// envDirs lets environment variables take precedence over base.
type envDirs struct {
	base Dirs
}

// WithEnvOverrides wraps base so DOOM_CLI_CONFIG_DIR and DOOM_CLI_DATA_DIR,
// when set, win over the wrapped lookup.
func WithEnvOverrides(base Dirs) Dirs {
	return envDirs{base: base}
}

func (e envDirs) ConfigDir() (string, error) {
	if v := strings.TrimSpace(os.Getenv(EnvConfigDir)); v != "" {
		return v, nil
	}
	return e.base.ConfigDir()
}

func (e envDirs) DataDir() (string, error) {
	if v := strings.TrimSpace(os.Getenv(EnvDataDir)); v != "" {
		return v, nil
	}
	return e.base.DataDir()
}

// Default is the lookup used by the launcher binary.
func Default() Dirs {
	return WithEnvOverrides(System{})
}
