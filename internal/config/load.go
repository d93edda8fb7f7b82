package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"
)

// EnvConfigPath names the environment variable that points at a config file
// when --config is not given.
const EnvConfigPath = "LODTOOL_CONFIG"

const fileName = "lodtool.yaml"

// Load builds the effective configuration: defaults, then the first config
// file found, then command-line flags, then validation.
func Load() (*Config, error) {
	cfg := Default()

	path, explicit := resolvePath()
	if path != "" {
		err := loadFromFile(cfg, path)
		switch {
		case err == nil:
		case !explicit && errors.Is(err, fs.ErrNotExist):
			// A discovered file vanished between lookup and read.
		default:
			return nil, fmt.Errorf("loading config from %s: %w", path, err)
		}
	}

	applyFlags(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// resolvePath returns the config file to read and whether the user named it.
// A named file must exist; discovered locations are only used when present.
func resolvePath() (path string, explicit bool) {
	if p := ConfigPath(); p != "" {
		return p, true
	}
	if p := os.Getenv(EnvConfigPath); p != "" {
		return p, true
	}
	for _, p := range []string{fileName, filepath.Join(ConfigDir(), fileName)} {
		if info, err := os.Stat(p); err == nil && !info.IsDir() {
			return p, false
		}
	}
	return "", false
}

// ConfigDir returns the OS-appropriate config directory.
func ConfigDir() string {
	switch runtime.GOOS {
	case "darwin":
		home, _ := os.UserHomeDir()
		return filepath.Join(home, "Library", "Application Support", "MeshLOD")
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "MeshLOD")
	default: // Linux and others
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, "meshlod")
		}
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", "meshlod")
	}
}

// loadFromFile merges a YAML file over cfg. Keys the config does not define
// are rejected so typos do not silently fall back to defaults. An empty file
// changes nothing.
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
