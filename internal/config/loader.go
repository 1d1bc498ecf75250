package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const fileName = "blockparty.yaml"

// Load loads the game configuration.
// Search order: customPath -> ~/.blockparty/configs/blockparty.yaml ->
// ./configs/blockparty.yaml -> embedded default -> hardcoded default.
// Only a custom path is required to exist; the other locations are skipped
// when missing or invalid.
func Load(customPath string) (Config, error) {
	if customPath != "" {
		return LoadFile(customPath)
	}

	if userCfgPath := userConfigPath(fileName); userCfgPath != "" {
		if cfg, err := LoadFile(userCfgPath); err == nil {
			return cfg, nil
		}
	}

	if cfg, err := LoadFile(filepath.Join("configs", fileName)); err == nil {
		return cfg, nil
	}

	if cfg, err := Parse(defaultYAML); err == nil {
		return cfg, nil
	}
	return DefaultConfig(), nil
}

// LoadFile reads and validates a single configuration file.
func LoadFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return Config{}, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML over the hardcoded defaults, so a file only needs the
// keys it changes, then validates the result.
func Parse(data []byte) (Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// userConfigPath returns the path to a user config file, or empty if home is unavailable.
func userConfigPath(filename string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".blockparty", "configs", filename)
}
