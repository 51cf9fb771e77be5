package config

import (
	"errors"
	"fmt"

	"graphpipe/internal/models"
)

// Validate checks the fields every command depends on. Commands that
// reach the network additionally require api.key; see RequireAPIKey.
func (c *Config) Validate() error {
	if c.API.BaseURL == "" {
		return errors.New("api.base_url is required")
	}
	if c.Cache.Path == "" {
		return errors.New("cache.path is required")
	}
	if c.Cache.ExpiryHours <= 0 {
		return errors.New("cache.expiry_hours must be a positive integer")
	}
	if c.Ledger.Path == "" {
		return errors.New("ledger.path is required")
	}
	if c.Budget.Limit < 0 {
		return errors.New("budget.limit must not be negative")
	}

	for model, price := range c.Pricing {
		if model == "" {
			return errors.New("pricing contains an empty model name")
		}
		if price.InputPer1K < 0 || price.OutputPer1K < 0 {
			return fmt.Errorf("pricing for model '%s' has negative token cost", model)
		}
	}

	return nil
}

// RequireAPIKey returns an error when no API key was configured via
// config file, environment or .env.
func (c *Config) RequireAPIKey() error {
	if c.API.Key == "" {
		return fmt.Errorf("%w: set OPENAI_API_KEY or api.key in config.yaml", models.ErrMissingAPIKey)
	}
	return nil
}
