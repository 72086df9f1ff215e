// Package config loads optional per-user defaults for the exporters from
// ~/.config/inizexport/config.yaml. Everything here can be overridden by
// command-line flags; a missing config file just means defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/PIH/iniz-exporters/pkg/logging"
)

const (
	userConfigDir  = ".config/inizexport"
	configFileName = "config.yaml"
)

// Config is the top-level configuration structure.
type Config struct {
	// Locales to extract concept names for.
	Locales []string `yaml:"locales,omitempty"`
	// NameTypes to extract per locale ("full", "short").
	NameTypes []string `yaml:"nameTypes,omitempty"`
	// Docker runs mysql through the openmrs-sdk-mysql container.
	Docker bool `yaml:"docker,omitempty"`
	// OutputDir is where default-named export files land.
	OutputDir string `yaml:"outputDir,omitempty"`
}

// GetDefaultConfig returns the built-in defaults, matching the historical
// exporter behavior.
func GetDefaultConfig() Config {
	return Config{
		Locales:   []string{"en", "es", "fr", "ht"},
		NameTypes: []string{"full", "short"},
		Docker:    true,
		OutputDir: defaultOutputDir(),
	}
}

func defaultOutputDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, "Downloads")
}

// GetDefaultConfigPath returns the per-user config directory.
func GetDefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, userConfigDir)
}

// LoadConfig loads configuration from the given directory, layering the
// config file over the defaults. A missing file is not an error.
func LoadConfig(configPath string) (Config, error) {
	config := GetDefaultConfig()
	if configPath == "" {
		return config, nil
	}

	configFilePath := filepath.Join(configPath, configFileName)
	data, err := os.ReadFile(configFilePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logging.Debug("Config", "No config.yaml found at %s, using defaults", configFilePath)
			return config, nil
		}
		return Config{}, fmt.Errorf("reading config from %s: %w", configFilePath, err)
	}
	if err := yaml.Unmarshal(data, &config); err != nil {
		return Config{}, fmt.Errorf("parsing config from %s: %w", configFilePath, err)
	}
	logging.Debug("Config", "Loaded configuration from %s", configFilePath)
	return config, nil
}
