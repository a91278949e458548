// Package paths resolves where geokernel keeps its config file and its
// model store.
package paths

import (
	"os"
	"path/filepath"
	"runtime"
)

// AppName names the per-user directories.
const AppName = "geokernel"

// File names inside the resolved directories.
const (
	ConfigFile = "config.yaml"
	StoreFile  = "models.db"
)

// Environment overrides.
const (
	EnvConfigDir = "GEOKERNEL_CONFIG_DIR"
	EnvDataDir   = "GEOKERNEL_DATA_DIR"
)

// platform is swapped out in tests.
var platform = struct {
	goos          string
	homeDir       func() (string, error)
	userConfigDir func() (string, error)
}{
	goos:          runtime.GOOS,
	homeDir:       os.UserHomeDir,
	userConfigDir: os.UserConfigDir,
}

// xdgDir returns $xdgVar/geokernel, or ~/fallback/geokernel when the
// variable is unset. Outside Linux both directories live under the
// user config dir.
func xdgDir(xdgVar string, fallback ...string) (string, error) {
	if platform.goos != "linux" {
		dir, err := platform.userConfigDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(dir, AppName), nil
	}
	if v := os.Getenv(xdgVar); v != "" {
		return filepath.Join(v, AppName), nil
	}
	home, err := platform.homeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(append(append([]string{home}, fallback...), AppName)...), nil
}

// DefaultConfigDir is $XDG_CONFIG_HOME/geokernel on Linux.
func DefaultConfigDir() (string, error) {
	return xdgDir("XDG_CONFIG_HOME", ".config")
}

// DefaultDataDir is $XDG_DATA_HOME/geokernel on Linux.
func DefaultDataDir() (string, error) {
	return xdgDir("XDG_DATA_HOME", ".local", "share")
}

func firstAbs(candidates ...string) (string, bool, error) {
	for _, c := range candidates {
		if c == "" {
			continue
		}
		abs, err := filepath.Abs(c)
		return abs, true, err
	}
	return "", false, nil
}

// ResolveConfigDir applies flag > GEOKERNEL_CONFIG_DIR > platform default.
func ResolveConfigDir(flag string) (string, error) {
	if dir, ok, err := firstAbs(flag, os.Getenv(EnvConfigDir)); ok {
		return dir, err
	}
	return DefaultConfigDir()
}

// ResolveDataDir applies flag > data_dir from config.yaml >
// GEOKERNEL_DATA_DIR > platform default.
func ResolveDataDir(flag, configValue string) (string, error) {
	if dir, ok, err := firstAbs(flag, configValue, os.Getenv(EnvDataDir)); ok {
		return dir, err
	}
	return DefaultDataDir()
}
