// Package config loads the shell's configuration, settings and the locations
// of its data files.
package config

import (
	"path/filepath"
)

const appName = "shesh"

// Paths contains the standard paths for shell data.
type Paths struct {
	Config string // ~/.config/shesh
	Data   string // ~/.local/share/shesh
	State  string // ~/.local/state/shesh
}

// GetPaths returns the XDG paths for the shell. If HOME isn't set the
// defaults are relative to the working directory.
func GetPaths(getenv func(string) string) Paths {
	home := getenv("HOME")
	if home == "" {
		home = "."
	}

	getEnvOrDefault := func(key, defaultValue string) string {
		if value := getenv(key); value != "" {
			return value
		}
		return defaultValue
	}

	return Paths{
		Config: filepath.Join(getEnvOrDefault("XDG_CONFIG_HOME", filepath.Join(home, ".config")), appName),
		Data:   filepath.Join(getEnvOrDefault("XDG_DATA_HOME", filepath.Join(home, ".local", "share")), appName),
		State:  filepath.Join(getEnvOrDefault("XDG_STATE_HOME", filepath.Join(home, ".local", "state")), appName),
	}
}

// ShellConfigPath is the location of the prompt and startup file.
func (p Paths) ShellConfigPath() string {
	return filepath.Join(p.Config, ShellConfigName)
}

// SettingsPath is the location of the settings file.
func (p Paths) SettingsPath() string {
	return filepath.Join(p.Config, SettingsName)
}
