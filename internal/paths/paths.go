// Package paths resolves where serbaguna keeps its configuration and its
// embedded database. Every resolver follows flag > environment > config
// value > platform default and returns absolute paths.
package paths

import (
	"os"
	"path/filepath"
	"runtime"
)

// AppName is the directory name used under the platform base directories.
const AppName = "serbaguna"

// Environment variable names for directory overrides.
const (
	EnvConfigDir = "SERBAGUNA_CONFIG_DIR"
	EnvDataDir   = "SERBAGUNA_DATA_DIR"
)

// File names inside the config directory.
const (
	ConfigFileName = "config.yaml"
	PrefsFileName  = "prefs.yaml"
)

// platformDir holds platform-detection functions that can be overridden in tests.
var platformDir = struct {
	goos          string
	homeDir       func() (string, error)
	userConfigDir func() (string, error)
}{
	goos:          runtime.GOOS,
	homeDir:       os.UserHomeDir,
	userConfigDir: os.UserConfigDir,
}

// DefaultConfigDir returns the platform configuration directory.
//
// Linux:   $XDG_CONFIG_HOME/serbaguna (fallback ~/.config/serbaguna)
// Others:  os.UserConfigDir()/serbaguna
func DefaultConfigDir() (string, error) {
	return platformBase("XDG_CONFIG_HOME", ".config")
}

// DefaultDataDir returns the platform data directory.
//
// Linux:   $XDG_DATA_HOME/serbaguna (fallback ~/.local/share/serbaguna)
// Others:  same as DefaultConfigDir
func DefaultDataDir() (string, error) {
	return platformBase("XDG_DATA_HOME", filepath.Join(".local", "share"))
}

func platformBase(xdgVar, homeRel string) (string, error) {
	if platformDir.goos != "linux" {
		dir, err := platformDir.userConfigDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(dir, AppName), nil
	}
	if xdg := os.Getenv(xdgVar); xdg != "" {
		return filepath.Join(xdg, AppName), nil
	}
	home, err := platformDir.homeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, homeRel, AppName), nil
}

// ResolveConfigDir returns the configuration directory:
// flag > SERBAGUNA_CONFIG_DIR > DefaultConfigDir().
func ResolveConfigDir(flag string) (string, error) {
	return resolve(flag, os.Getenv(EnvConfigDir), "", DefaultConfigDir)
}

// ResolveDataDir returns the data directory:
// flag > SERBAGUNA_DATA_DIR > configured (data_dir in config.yaml) > DefaultDataDir().
func ResolveDataDir(flag, configured string) (string, error) {
	return resolve(flag, os.Getenv(EnvDataDir), configured, DefaultDataDir)
}

func resolve(flag, env, configured string, fallback func() (string, error)) (string, error) {
	for _, candidate := range []string{flag, env, configured} {
		if candidate != "" {
			return filepath.Abs(candidate)
		}
	}
	return fallback()
}

// ConfigFile returns the config.yaml path inside configDir.
func ConfigFile(configDir string) string {
	return filepath.Join(configDir, ConfigFileName)
}

// PrefsFile returns the preferences path inside configDir.
func PrefsFile(configDir string) string {
	return filepath.Join(configDir, PrefsFileName)
}
