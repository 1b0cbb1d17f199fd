package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const wellConfigFile = "well.yaml"

// LoadWell loads the well configuration.
// Search order: customPath -> ~/.well/configs/well.yaml -> ./configs/well.yaml -> embedded default
// Files are decoded over the hardcoded defaults so partial files only
// override the fields they name.
func LoadWell(customPath string) (WellConfig, error) {
	// Try custom path first
	if customPath != "" {
		data, err := os.ReadFile(customPath)
		if err != nil {
			return WellConfig{}, fmt.Errorf("failed to read config %s: %w", customPath, err)
		}
		cfg, err := ParseWell(data)
		if err != nil {
			return WellConfig{}, fmt.Errorf("failed to parse config %s: %w", customPath, err)
		}
		return cfg, nil
	}

	// Try user config directory
	if userCfgPath := userConfigPath(wellConfigFile); userCfgPath != "" {
		if data, err := os.ReadFile(userCfgPath); err == nil {
			if cfg, err := ParseWell(data); err == nil {
				return cfg, nil
			}
		}
	}

	// Try local configs directory
	if data, err := os.ReadFile(filepath.Join("configs", wellConfigFile)); err == nil {
		if cfg, err := ParseWell(data); err == nil {
			return cfg, nil
		}
	}

	// Use embedded default YAML
	cfg, err := ParseWell(defaultWellYAML)
	if err != nil {
		return DefaultWellConfig(), nil // Fallback to hardcoded if embed fails
	}
	return cfg, nil
}

// ParseWell decodes YAML over the hardcoded defaults and validates the result.
func ParseWell(data []byte) (WellConfig, error) {
	cfg := DefaultWellConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return WellConfig{}, err
	}
	if err := cfg.Validate(); err != nil {
		return WellConfig{}, err
	}
	return cfg, nil
}

// DefaultYAML returns the embedded default configuration file.
func DefaultYAML() []byte {
	out := make([]byte, len(defaultWellYAML))
	copy(out, defaultWellYAML)
	return out
}

// userConfigPath returns the path to user config file, or empty if home is unavailable.
func userConfigPath(filename string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".well", "configs", filename)
}
