// Package paths resolves the configuration and data directories of the
// dirstore CLI.
//
// Precedence, highest first:
//
//	config dir: --config-dir flag, DIRSTORE_CONFIG_DIR, platform config dir
//	data dir:   --data-dir flag, data_dir in config.yaml, DIRSTORE_DATA_DIR,
//	            platform data dir
package paths

import (
	"os"
	"path/filepath"
	"runtime"
)

// appName is the directory created under the platform base directories.
const appName = "dirstore"

// Environment variable names for directory overrides.
const (
	EnvConfigDir = "DIRSTORE_CONFIG_DIR"
	EnvDataDir   = "DIRSTORE_DATA_DIR"
)

// platformDir holds platform-detection functions that can be overridden in tests.
var platformDir = struct {
	homeDir       func() (string, error)
	userConfigDir func() (string, error)
}{
	homeDir:       os.UserHomeDir,
	userConfigDir: os.UserConfigDir,
}

// DefaultConfigDir returns the platform configuration directory.
//
// Linux:   $XDG_CONFIG_HOME/dirstore (fallback ~/.config/dirstore)
// macOS:   ~/Library/Application Support/dirstore
// Windows: %APPDATA%/dirstore
func DefaultConfigDir() (string, error) {
	return platformBase("XDG_CONFIG_HOME", ".config")
}

// DefaultDataDir returns the platform data directory.
//
// Linux:   $XDG_DATA_HOME/dirstore (fallback ~/.local/share/dirstore)
// macOS and Windows: same as DefaultConfigDir.
func DefaultDataDir() (string, error) {
	return platformBase("XDG_DATA_HOME", filepath.Join(".local", "share"))
}

// platformBase applies the XDG rules on Linux and os.UserConfigDir elsewhere.
func platformBase(xdgEnv, homeRel string) (string, error) {
	if runtime.GOOS != "linux" {
		dir, err := platformDir.userConfigDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(dir, appName), nil
	}
	if xdg := os.Getenv(xdgEnv); xdg != "" {
		return filepath.Join(xdg, appName), nil
	}
	home, err := platformDir.homeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, homeRel, appName), nil
}

// ResolveConfigDir returns the absolute configuration directory.
func ResolveConfigDir(flag string) (string, error) {
	return firstAbs(DefaultConfigDir, flag, os.Getenv(EnvConfigDir))
}

// ResolveDataDir returns the absolute data directory. configValue is the
// data_dir setting read from config.yaml, if any.
func ResolveDataDir(flag, configValue string) (string, error) {
	return firstAbs(DefaultDataDir, flag, configValue, os.Getenv(EnvDataDir))
}

// firstAbs returns the first non-empty candidate made absolute, or the
// fallback.
func firstAbs(fallback func() (string, error), candidates ...string) (string, error) {
	for _, c := range candidates {
		if c != "" {
			return filepath.Abs(c)
		}
	}
	return fallback()
}
