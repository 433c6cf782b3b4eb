package app

import (
	"fmt"
	"os"
	"path/filepath"
)

// Environment variables that relocate complib's files.
const (
	EnvConfigPath = "COMPLIB_CONFIG_PATH"
	EnvHome       = "COMPLIB_HOME"
)

// Defaults holds the default file locations.
type Defaults struct {
	ConfigPath string
	BaseDir    string
	LogDir     string
}

// GetDefaults returns application default paths, checking environment variables first.
// Environment variables:
//   - COMPLIB_CONFIG_PATH: config file location (default: ~/.config/complib.toml)
//   - COMPLIB_HOME: base directory for complib data (default: ~/.local/share/complib)
func GetDefaults() (*Defaults, error) {
	configPath, err := envOrHome(EnvConfigPath, ".config", "complib.toml")
	if err != nil {
		return nil, err
	}
	baseDir, err := envOrHome(EnvHome, ".local", "share", "complib")
	if err != nil {
		return nil, err
	}
	return &Defaults{
		ConfigPath: configPath,
		BaseDir:    baseDir,
		LogDir:     filepath.Join(baseDir, "log"),
	}, nil
}

func envOrHome(env string, elem ...string) (string, error) {
	if path := os.Getenv(env); path != "" {
		return path, nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(append([]string{homeDir}, elem...)...), nil
}
