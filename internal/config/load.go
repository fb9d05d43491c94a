package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"
)

// EnvConfigPath names the environment variable that points at a config file
// when --config is not given.
const EnvConfigPath = "GAZEMAP_CONFIG"

// FileName is the config file looked up in the working and user config dirs.
const FileName = "gazemap.yaml"

// Load builds the configuration: defaults, then the first config file found,
// then CLI flags. The result is validated.
func Load() (*Config, error) {
	cfg := Default()

	if path := resolveConfigPath(); path != "" {
		if err := loadFromFile(cfg, path); err != nil {
			return nil, fmt.Errorf("loading config from %s: %w", path, err)
		}
	}

	applyFlags(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// resolveConfigPath picks --config, then $GAZEMAP_CONFIG, then the first
// existing standard location.
func resolveConfigPath() string {
	if path := ConfigPath(); path != "" {
		return path
	}
	if path := os.Getenv(EnvConfigPath); path != "" {
		return path
	}
	for _, path := range []string{FileName, filepath.Join(ConfigDir(), FileName)} {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// ConfigDir returns the OS-appropriate config directory.
func ConfigDir() string {
	switch runtime.GOOS {
	case "darwin":
		home, _ := os.UserHomeDir()
		return filepath.Join(home, "Library", "Application Support", "GazeMap")
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "GazeMap")
	default:
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, "gazemap")
		}
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", "gazemap")
	}
}

// loadFromFile merges a YAML file over cfg. Unknown keys are errors so a
// misspelt setting does not silently fall back to its default.
func loadFromFile(cfg *Config, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}
