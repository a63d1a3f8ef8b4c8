package configs

import (
	"os"
	"path/filepath"
)

// Settings holds the filesystem locations hush reads and writes.
type Settings struct {
	ConfigPath   string
	DataPath     string
	DatabasePath string
	AuditLogPath string
}

// HushSettings is initialized from the XDG base directories at startup.
var HushSettings *Settings

func init() {
	HushSettings = DefaultSettings()
}

// DefaultSettings resolves the config and data directories. It falls back to
// the working directory when no home directory is available.
func DefaultSettings() *Settings {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = "."
	}

	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		configDir = filepath.Join(homeDir, ".config")
	}

	dataDir := os.Getenv("XDG_DATA_HOME")
	if dataDir == "" {
		dataDir = filepath.Join(homeDir, ".local", "share")
	}

	return NewSettings(filepath.Join(configDir, "hush"), filepath.Join(dataDir, "hush"))
}

// NewSettings builds Settings rooted at the given config and data directories.
func NewSettings(configDir, dataDir string) *Settings {
	return &Settings{
		ConfigPath:   filepath.Join(configDir, "config.toml"),
		DataPath:     dataDir,
		DatabasePath: filepath.Join(dataDir, "hush.db"),
		AuditLogPath: filepath.Join(dataDir, "audit.jsonl"),
	}
}

// expandHome replaces a leading "~/" with the user's home directory.
func expandHome(path string) string {
	if len(path) < 2 || path[:2] != "~/" {
		return path
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(homeDir, path[2:])
}
