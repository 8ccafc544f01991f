package config

import (
	"fmt"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

// Load reads an optional .env file into the process environment and parses it into Config.
func Load() (*Config, error) {
	// a missing .env is expected in production
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if cfg.Payment.MaxAttempts <= 0 {
		return nil, fmt.Errorf("PAYMENT_MAX_ATTEMPTS must be positive, got %d", cfg.Payment.MaxAttempts)
	}
	if cfg.Payment.PollInterval <= 0 {
		return nil, fmt.Errorf("PAYMENT_POLL_INTERVAL must be positive, got %s", cfg.Payment.PollInterval)
	}
	switch cfg.Session.Driver {
	case "sqlite", "mysql", "redis":
	default:
		return nil, fmt.Errorf("unsupported SESSION_DRIVER %q", cfg.Session.Driver)
	}
	return cfg, nil
}

func (c *Config) Address() string {
	return c.HTTP.Host + ":" + c.HTTP.Port
}
