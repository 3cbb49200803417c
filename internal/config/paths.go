package config

import (
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// GetGlobalConfigDir returns the path to the global configuration directory
// (~/.taskviewer). It's a variable to allow overriding in tests.
var GetGlobalConfigDir = func() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".taskviewer"), nil
}

// GetSettingsPath returns the path of the profile settings file.
// Resolution order (first match wins):
// 1. Explicit config via "settings.path" (Viper/env/flag)
// 2. XDG_CONFIG_HOME/taskviewer/settings.json (if XDG_CONFIG_HOME is set)
// 3. Global fallback: ~/.taskviewer/settings.json
func GetSettingsPath() string {
	if path := viper.GetString("settings.path"); path != "" {
		return path
	}

	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "taskviewer", "settings.json")
	}

	dir, err := GetGlobalConfigDir()
	if err != nil {
		return "settings.json"
	}
	return filepath.Join(dir, "settings.json")
}

// GetGlobalAgentsDir returns the directory holding user-global agent
// definitions shared across projects.
// Resolution order mirrors GetSettingsPath.
func GetGlobalAgentsDir() string {
	if path := viper.GetString("agents.globalDir"); path != "" {
		return path
	}

	dir, err := GetGlobalConfigDir()
	if err != nil {
		return "agents"
	}
	return filepath.Join(dir, "agents")
}
