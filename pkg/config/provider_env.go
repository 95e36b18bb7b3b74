package config

import (
	"fmt"

	"github.com/ilyakaznacheev/cleanenv"
)

// EnvProvider implements ConfigProvider from environment variables and
// defaults alone, for runs without a config file.
type EnvProvider struct {
	config *ConfigData
}

// NewEnvProvider creates a new environment configuration provider
func NewEnvProvider() *EnvProvider {
	return &EnvProvider{}
}

// LoadConfig reads the environment and applies defaults
func (e *EnvProvider) LoadConfig() (*ConfigData, error) {
	if e.config != nil {
		return e.config, nil
	}

	var cfg ConfigData
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	e.config = &cfg
	return e.config, nil
}

func (e *EnvProvider) Close() error {
	return nil
}
