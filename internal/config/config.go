package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// DefaultBaseURL is the OpenAI-compatible gateway the pipeline talks to.
const DefaultBaseURL = "https://gptunnel.ru/v1"

// PricingInfo holds cost details per 1K tokens for a specific model.
// Used by the usage ledger when recording calls; the catalog's declared
// costs drive selection, this table drives accounting.
type PricingInfo struct {
	InputPer1K  float64 `mapstructure:"input_per_1k"`
	OutputPer1K float64 `mapstructure:"output_per_1k"`
}

type Config struct {
	API struct {
		BaseURL string `mapstructure:"base_url"`
		Key     string `mapstructure:"key"`
	} `mapstructure:"api"`

	Cache struct {
		Path        string `mapstructure:"path"`
		ExpiryHours int    `mapstructure:"expiry_hours"`
	} `mapstructure:"cache"`

	Ledger struct {
		Path string `mapstructure:"path"`
	} `mapstructure:"ledger"`

	Budget struct {
		Limit           float64 `mapstructure:"limit"`
		RequireApproval bool    `mapstructure:"require_approval"`
		HardStop        bool    `mapstructure:"hard_stop"`
	} `mapstructure:"budget"`

	// Pricing: map[model] = per-1K-token rates. The "default" entry is
	// the conservative fallback for models missing from the table.
	Pricing map[string]PricingInfo `mapstructure:"pricing"`
}

// CacheExpiry returns the configured cache staleness window.
func (c *Config) CacheExpiry() time.Duration {
	return time.Duration(c.Cache.ExpiryHours) * time.Hour
}

// PricingFor returns the accounting rates for a model, falling back to
// the "default" entry (an intentionally expensive rate) when unknown.
func (c *Config) PricingFor(modelID string) PricingInfo {
	if p, ok := c.Pricing[modelID]; ok {
		return p
	}
	return c.Pricing["default"]
}

func LoadConfig() (*Config, error) {
	// Load .env first so OPENAI_API_KEY set there is visible to viper.
	// A missing .env is fine.
	_ = godotenv.Load()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")

	viper.SetDefault("api.base_url", DefaultBaseURL)
	viper.SetDefault("cache.path", "model_cache.json")
	viper.SetDefault("cache.expiry_hours", 24)
	viper.SetDefault("ledger.path", "logs/api_usage_stats.json")
	viper.SetDefault("budget.limit", 1.0)
	viper.SetDefault("budget.require_approval", true)
	viper.SetDefault("budget.hard_stop", false)

	viper.AutomaticEnv()
	// Allow setting the key via env var without a prefix, matching the
	// variable the gateway documentation uses.
	viper.BindEnv("api.key", "OPENAI_API_KEY")
	viper.BindEnv("api.base_url", "OPENAI_API_BASE_URL")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found; proceed on defaults and env vars.
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	if config.Pricing == nil {
		config.Pricing = map[string]PricingInfo{}
	}
	if _, ok := config.Pricing["default"]; !ok {
		// Assume an expensive model when we know nothing.
		config.Pricing["default"] = PricingInfo{InputPer1K: 0.01, OutputPer1K: 0.03}
	}

	return &config, nil
}
