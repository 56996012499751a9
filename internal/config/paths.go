package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// EnvConfigPath overrides config discovery when set.
const EnvConfigPath = "ARRBOT_CONFIG"

const systemPath = "/etc/arrbot/config.toml"

//go:embed default_config.toml
var defaultConfig string

// DefaultPath is $XDG_CONFIG_HOME/arrbot/config.toml, or ./config.toml
// when no home directory can be determined.
func DefaultPath() string {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "config.toml"
		}
		base = filepath.Join(home, ".config")
	}
	return filepath.Join(base, "arrbot", "config.toml")
}

// Discover returns the first config file found, checking $ARRBOT_CONFIG,
// then ./config.toml, DefaultPath and /etc/arrbot/config.toml in turn.
func Discover() (string, error) {
	if p := os.Getenv(EnvConfigPath); p != "" {
		if _, err := os.Stat(p); err != nil {
			return "", fmt.Errorf("%s=%s: %w", EnvConfigPath, p, err)
		}
		return p, nil
	}

	candidates := []string{"config.toml", DefaultPath(), systemPath}
	for _, p := range candidates {
		if fileExists(p) {
			return p, nil
		}
	}
	return "", fmt.Errorf("no config file in %s", strings.Join(candidates, ", "))
}

// WriteDefault writes the commented example config to path, creating
// parent directories. An existing file is never replaced.
func WriteDefault(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0600)
	if errors.Is(err, fs.ErrExist) {
		return fmt.Errorf("%s already exists", path)
	}
	if err != nil {
		return err
	}
	if _, err := f.WriteString(defaultConfig); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
