package config

import (
	"fmt"

	"github.com/ilyakaznacheev/cleanenv"
)

// YAMLProvider implements ConfigProvider for YAML configuration files.
// Environment variables override values from the file and defaults fill
// whatever neither sets.
type YAMLProvider struct {
	filename string
	config   *ConfigData
}

// NewYAMLProvider creates a new YAML configuration provider
func NewYAMLProvider(filename string) *YAMLProvider {
	return &YAMLProvider{
		filename: filename,
	}
}

// LoadConfig loads the complete configuration from the YAML file
func (y *YAMLProvider) LoadConfig() (*ConfigData, error) {
	if y.config != nil {
		return y.config, nil
	}

	var cfg ConfigData
	if err := cleanenv.ReadConfig(y.filename, &cfg); err != nil {
		return nil, fmt.Errorf("failed to read config from %s: %w", y.filename, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	y.config = &cfg
	return y.config, nil
}

// Close is a no-op for YAML provider
func (y *YAMLProvider) Close() error {
	return nil
}
