// Package appconfig manages application configuration and runtime file paths.
package appconfig

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// SSHConfig controls how ssh is invoked.
type SSHConfig struct {
	// StrictHostKeyChecking is passed through as an ssh -o value.
	// Defaults to "no", matching the historical behavior of sshgo.
	StrictHostKeyChecking string `yaml:"strict_host_key_checking"`
}

// RDPConfig controls how the RDP client is invoked.
type RDPConfig struct {
	// Client forces a specific client binary ("xfreerdp" or "rdesktop").
	// Empty means autodetect, preferring xfreerdp.
	Client string `yaml:"client"`
}

// UIConfig contains menu display settings.
type UIConfig struct {
	MinColumnWidth int `yaml:"min_column_width"`
}

// Config holds application-level configuration.
type Config struct {
	SSH SSHConfig `yaml:"ssh"`
	RDP RDPConfig `yaml:"rdp"`
	UI  UIConfig  `yaml:"ui"`
}

// Default returns the default configuration.
func Default() Config {
	return Config{
		SSH: SSHConfig{StrictHostKeyChecking: "no"},
		UI:  UIConfig{MinColumnWidth: 24},
	}
}

// ConfigDir returns the application config directory path.
// Uses XDG_CONFIG_HOME if set, otherwise ~/.config/sshgo.
func ConfigDir() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "sshgo"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home: %w", err)
	}
	return filepath.Join(home, ".config", "sshgo"), nil
}

// StoreFilePath returns the path of the connection store. The
// SSHGO_CONFIG_FILE environment variable overrides the default
// <config dir>/connections.conf location.
func StoreFilePath() (string, error) {
	if p := os.Getenv("SSHGO_CONFIG_FILE"); p != "" {
		return p, nil
	}
	d, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(d, "connections.conf"), nil
}

// Load reads config.yaml from the config directory.
// If the file doesn't exist, creates it with defaults.
func Load() (Config, error) {
	d, err := ConfigDir()
	if err != nil {
		return Config{}, err
	}
	if err := os.MkdirAll(d, 0o700); err != nil {
		return Config{}, err
	}
	path := filepath.Join(d, "config.yaml")
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg := Default()
			if err := Save(cfg); err != nil {
				return cfg, err
			}
			return cfg, nil
		}
		return Config{}, err
	}
	cfg := Default()
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse %s: %w", path, err)
	}
	if cfg.UI.MinColumnWidth <= 0 {
		cfg.UI.MinColumnWidth = 24
	}
	if cfg.SSH.StrictHostKeyChecking == "" {
		cfg.SSH.StrictHostKeyChecking = "no"
	}
	return cfg, nil
}

// Save writes config to config.yaml.
func Save(cfg Config) error {
	d, err := ConfigDir()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(d, 0o700); err != nil {
		return err
	}
	path := filepath.Join(d, "config.yaml")
	b, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o600)
}
