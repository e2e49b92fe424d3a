package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds all client configuration loaded from environment variables.
// All required fields are validated at startup to ensure fail-fast behavior.
type Config struct {
	// Provider configuration
	ProviderRPCURL string        `env:"PROVIDER_RPC_URL"`
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT" envDefault:"30s"`

	// Contract configuration
	RegistryAddress   string `env:"REGISTRY_ADDRESS"`
	DeedLedgerAddress string `env:"DEED_LEDGER_ADDRESS"`

	// Optional ABI descriptor files; built-in defaults apply when unset.
	RegistryDescriptorPath   string `env:"REGISTRY_DESCRIPTOR_PATH"`
	DeedLedgerDescriptorPath string `env:"DEED_LEDGER_DESCRIPTOR_PATH"`

	// Account watching
	AccountPollInterval time.Duration `env:"ACCOUNT_POLL_INTERVAL" envDefault:"5s"`

	// Logging
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
}

// Load reads configuration from environment variables and validates all
// required fields.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// MustLoad is like Load but panics if configuration is invalid. Useful for
// startup paths where misconfiguration should halt the process.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(fmt.Sprintf("failed to load configuration: %v", err))
	}
	return cfg
}

// Validate checks if the configuration is valid. This is useful for testing
// configuration without loading from env.
func (c *Config) Validate() error {
	var errs []error

	if c.ProviderRPCURL == "" {
		errs = append(errs, fmt.Errorf("PROVIDER_RPC_URL is required"))
	}
	if c.RegistryAddress == "" {
		errs = append(errs, fmt.Errorf("REGISTRY_ADDRESS is required"))
	}
	if c.DeedLedgerAddress == "" {
		errs = append(errs, fmt.Errorf("DEED_LEDGER_ADDRESS is required"))
	}
	if c.RegistryAddress != "" && c.RegistryAddress == c.DeedLedgerAddress {
		errs = append(errs, fmt.Errorf("REGISTRY_ADDRESS and DEED_LEDGER_ADDRESS must be different"))
	}
	if c.RequestTimeout < time.Second {
		errs = append(errs, fmt.Errorf("REQUEST_TIMEOUT must be at least 1 second"))
	}
	if c.AccountPollInterval < time.Second {
		errs = append(errs, fmt.Errorf("ACCOUNT_POLL_INTERVAL must be at least 1 second"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %v", errs)
	}
	return nil
}
