package config

import (
	"os"
	"path/filepath"
)

// EnvConfig names the environment variable holding a config path.
const EnvConfig = "KEYVIZ_CONFIG"

// LegacyConfigFile is read from the working directory when present.
const LegacyConfigFile = "config.ini"

// SupportedConfigFormats returns the accepted file extensions.
func SupportedConfigFormats() []string {
	return []string{"ini", "toml", "yaml", "yml"}
}

// ConfigDir returns $XDG_CONFIG_HOME/keyviz or ~/.config/keyviz.
func ConfigDir() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "keyviz")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "keyviz")
}

// Locate picks the config file to load. An explicit path wins, then
// $KEYVIZ_CONFIG, then ./config.ini, then config.<ext> in ConfigDir.
// Explicit paths are returned even when missing so Load can report them.
// The empty string means no file was found.
func Locate(explicit string) string {
	if explicit != "" {
		return explicit
	}
	if env := os.Getenv(EnvConfig); env != "" {
		return env
	}
	if exists(LegacyConfigFile) {
		return LegacyConfigFile
	}

	dir := ConfigDir()
	for _, ext := range SupportedConfigFormats() {
		path := filepath.Join(dir, "config."+ext)
		if exists(path) {
			return path
		}
	}
	return ""
}

func exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
