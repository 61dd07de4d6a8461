// Package utils provides small shared helpers for the desktop shell.
package utils

import (
	"os"
	"path/filepath"
	"runtime"
)

// Fixed organization/application identifier. The settings file location is
// keyed by this pair and must stay stable across releases.
const (
	orgDirName = "jutukuva"
	appDirName = "overlay-captions"
)

// GetAppDir returns the per-user base directory for this application.
// Windows: %APPDATA%\jutukuva\overlay-captions
// macOS:   ~/Library/Application Support/jutukuva/overlay-captions
// Linux:   $XDG_CONFIG_HOME/jutukuva/overlay-captions (or ~/.config/...)
func GetAppDir() string {
	if base, err := os.UserConfigDir(); err == nil && base != "" {
		return filepath.Join(base, orgDirName, appDirName)
	}

	// os.UserConfigDir fails only when the relevant environment variables
	// are unset; fall back to a dot directory in the home directory.
	homeDir, _ := os.UserHomeDir()
	if runtime.GOOS == "windows" {
		return filepath.Join(homeDir, "AppData", "Roaming", orgDirName, appDirName)
	}
	return filepath.Join(homeDir, "."+appDirName)
}

// GetDataDir returns the directory for databases and other app-managed data.
func GetDataDir() string {
	return filepath.Join(GetAppDir(), "data")
}

// GetLogDir returns the directory for log files.
func GetLogDir() string {
	return filepath.Join(GetAppDir(), "logs")
}

// SettingsPath returns the location of the user settings file.
func SettingsPath() string {
	return filepath.Join(GetAppDir(), "settings.json")
}

// EnsureAppDirs creates the application directories if they do not exist.
func EnsureAppDirs() error {
	for _, dir := range []string{GetAppDir(), GetDataDir(), GetLogDir()} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	return nil
}
