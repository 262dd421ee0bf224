package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server     ServerConfig
	Decoder    DecoderConfig
	Search     SearchConfig
	Cache      CacheConfig
	Confidence ConfidenceConfig
	RateLimit  RateLimitConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Environment    string   `mapstructure:"environment"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// DecoderConfig holds VIN decode service configuration
type DecoderConfig struct {
	BaseURL string `mapstructure:"base_url"`
}

// ProviderConfig describes one external web search provider
type ProviderConfig struct {
	Name    string `mapstructure:"name"`
	BaseURL string `mapstructure:"base_url"`
	APIKey  string `mapstructure:"api_key"`
}

// SearchConfig holds search executor configuration
type SearchConfig struct {
	Providers          []ProviderConfig `mapstructure:"providers"`
	CallTimeout        time.Duration    `mapstructure:"call_timeout"`
	MaxAttempts        int              `mapstructure:"max_attempts"`
	BackoffBase        time.Duration    `mapstructure:"backoff_base"`
	MinUsableResults   int              `mapstructure:"min_usable_results"`
	MaxResultsPerQuery int              `mapstructure:"max_results_per_query"`
}

// CacheConfig holds cache backend configuration
type CacheConfig struct {
	Type     string `mapstructure:"type"` // "memory" or "redis"
	RedisURL string `mapstructure:"redis_url"`
}

// ConfidenceConfig holds the tier confidence bases. These are named tuning
// constants, not control flow: adjusting them never changes which tier runs.
type ConfidenceConfig struct {
	Tier1Base float64 `mapstructure:"tier1_base"`
	Tier2Base float64 `mapstructure:"tier2_base"`
	Tier3Base float64 `mapstructure:"tier3_base"`
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	PerIP int `mapstructure:"per_ip"`
}

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	v := viper.New()

	// Set config name and paths
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/repairlens/")

	// Environment variable settings: nested keys map to underscored names,
	// e.g. cache.type becomes REPAIRLENS_CACHE_TYPE
	v.SetEnvPrefix("REPAIRLENS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Set default values
	setDefaults(v)

	// Read config file (optional - will use env vars if file doesn't exist)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found; using environment variables and defaults
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	// Providers are unwieldy as env vars; allow a single provider to be
	// configured through the environment for container deployments.
	if len(config.Search.Providers) == 0 {
		if base := v.GetString("search.provider_base_url"); base != "" {
			config.Search.Providers = append(config.Search.Providers, ProviderConfig{
				Name:    v.GetString("search.provider_name"),
				BaseURL: base,
				APIKey:  v.GetString("search.provider_api_key"),
			})
		}
	}

	// Validate configuration
	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"*"})

	// Decoder defaults
	v.SetDefault("decoder.base_url", "https://vpic.nhtsa.dot.gov/api")

	// Search defaults
	v.SetDefault("search.call_timeout", "8s")
	v.SetDefault("search.max_attempts", 3)
	v.SetDefault("search.backoff_base", "1s")
	v.SetDefault("search.min_usable_results", 3)
	v.SetDefault("search.max_results_per_query", 10)
	v.SetDefault("search.provider_name", "websearch")

	// Cache defaults
	v.SetDefault("cache.type", "memory")

	// Confidence defaults
	v.SetDefault("confidence.tier1_base", 95.0)
	v.SetDefault("confidence.tier2_base", 80.0)
	v.SetDefault("confidence.tier3_base", 65.0)

	// Rate limit defaults
	v.SetDefault("ratelimit.per_ip", 100)
}

// validate validates the configuration
func validate(config *Config) error {
	if len(config.Search.Providers) == 0 {
		return fmt.Errorf("at least one search provider is required (set REPAIRLENS_SEARCH_PROVIDER_BASE_URL)")
	}
	for i, p := range config.Search.Providers {
		if p.BaseURL == "" {
			return fmt.Errorf("search provider %d has no base_url", i)
		}
	}

	if config.Cache.Type != "memory" && config.Cache.Type != "redis" {
		return fmt.Errorf("cache type must be 'memory' or 'redis', got: %s", config.Cache.Type)
	}

	if config.Cache.Type == "redis" && config.Cache.RedisURL == "" {
		return fmt.Errorf("Redis URL is required when cache type is 'redis'")
	}

	if config.Confidence.Tier1Base < config.Confidence.Tier2Base ||
		config.Confidence.Tier2Base < config.Confidence.Tier3Base {
		return fmt.Errorf("tier confidence bases must be non-increasing from tier 1 to tier 3")
	}

	return nil
}
