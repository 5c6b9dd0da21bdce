package config

import (
	"os"
	"path/filepath"
)

const (
	// EnvConfigPath names an explicit config file
	EnvConfigPath = "STEMMA_CONFIG"
	// ConfigDirName is the config directory name under XDG and /etc
	ConfigDirName = "stemma"
)

// configNames are tried in order in every searched directory
var configNames = []string{"config.yaml", "config.toml"}

// localNames are tried in the working directory
var localNames = []string{"stemma.yaml", "stemma.toml"}

// FindConfigPath searches for a config file in priority order:
// 1. $STEMMA_CONFIG
// 2. ./stemma.yaml, ./stemma.toml
// 3. $XDG_CONFIG_HOME/stemma/config.{yaml,toml}
// 4. ~/.config/stemma/config.{yaml,toml}
// 5. /etc/stemma/config.{yaml,toml}
//
// Returns empty string if no config file found
func FindConfigPath() string {
	if path := os.Getenv(EnvConfigPath); path != "" && fileExists(path) {
		return path
	}

	for _, name := range localNames {
		if fileExists(name) {
			if abs, err := filepath.Abs(name); err == nil {
				return abs
			}
			return name
		}
	}

	for _, dir := range searchDirs() {
		for _, name := range configNames {
			path := filepath.Join(dir, name)
			if fileExists(path) {
				return path
			}
		}
	}

	return ""
}

// DefaultConfigPath returns the preferred location for a new config file
func DefaultConfigPath() string {
	dirs := searchDirs()
	if len(dirs) > 1 {
		return filepath.Join(dirs[0], configNames[0])
	}
	return localNames[0]
}

// EnsureConfigDir creates the config directory if it doesn't exist
func EnsureConfigDir(configPath string) error {
	return os.MkdirAll(filepath.Dir(configPath), 0755)
}

func searchDirs() []string {
	var dirs []string
	if xdgHome := os.Getenv("XDG_CONFIG_HOME"); xdgHome != "" {
		dirs = append(dirs, filepath.Join(xdgHome, ConfigDirName))
	}
	if home := os.Getenv("HOME"); home != "" {
		dirs = append(dirs, filepath.Join(home, ".config", ConfigDirName))
	}
	return append(dirs, filepath.Join("/etc", ConfigDirName))
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
