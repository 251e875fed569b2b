package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server      ServerConfig
	Produce     ProduceConfig
	Gemini      GeminiConfig
	Cache       CacheConfig
	Aggregation AggregationConfig
	Parser      ParserConfig
	Log         LogConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port            string        `mapstructure:"port"`
	Environment     string        `mapstructure:"environment"`
	AllowedOrigins  []string      `mapstructure:"allowed_origins"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// ProduceConfig holds produce query service configuration
type ProduceConfig struct {
	BaseURL       string        `mapstructure:"base_url"`
	Timeout       time.Duration `mapstructure:"timeout"`
	RatePerSecond float64       `mapstructure:"rate_per_second"`
	Burst         int           `mapstructure:"burst"`
	MaxRetries    int           `mapstructure:"max_retries"`
	ListingLimit  int           `mapstructure:"listing_limit"`
	Debug         bool          `mapstructure:"debug"`
}

// GeminiConfig holds recipe generation configuration
type GeminiConfig struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model"`
}

// CacheConfig holds cache-related configuration
type CacheConfig struct {
	Type            string        `mapstructure:"type"` // "memory" or "none"
	TTL             time.Duration `mapstructure:"ttl"`
	Size            int           `mapstructure:"size"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
}

// AggregationConfig bounds the per-estimate seller lookups
type AggregationConfig struct {
	MaxConcurrency int           `mapstructure:"max_concurrency"`
	Timeout        time.Duration `mapstructure:"timeout"`
}

// ParserConfig controls recipe response parsing
type ParserConfig struct {
	Lenient bool `mapstructure:"lenient"`
}

// LogConfig controls the zap logger
type LogConfig struct {
	Level       string `mapstructure:"level"`
	Development bool   `mapstructure:"development"`
}

// Load loads configuration from a .env file, environment variables and
// config files
func Load() (*Config, error) {
	if err := loadEnvFile(); err != nil {
		return nil, err
	}

	v := viper.New()

	// Set config name and paths
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/farmstand/")

	// FARMSTAND_PRODUCE_BASE_URL -> produce.base_url
	v.SetEnvPrefix("FARMSTAND")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	// Read config file (optional - will use env vars if file doesn't exist)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// loadEnvFile loads variables from ./.env without overriding ones already
// set. A missing file is not an error.
func loadEnvFile() error {
	if err := godotenv.Load(); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("error loading .env file: %w", err)
	}
	return nil
}

// setDefaults sets default configuration values. Every key needs a default
// so that AutomaticEnv can bind it during Unmarshal.
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:3000", "http://localhost:5173"})
	v.SetDefault("server.shutdown_timeout", "10s")

	// Produce query service defaults
	v.SetDefault("produce.base_url", "http://localhost:5000")
	v.SetDefault("produce.timeout", "10s")
	v.SetDefault("produce.rate_per_second", 10)
	v.SetDefault("produce.burst", 10)
	v.SetDefault("produce.max_retries", 3)
	v.SetDefault("produce.listing_limit", 20)
	v.SetDefault("produce.debug", false)

	// Gemini defaults
	v.SetDefault("gemini.api_key", "")
	v.SetDefault("gemini.model", "gemini-2.0-flash")

	// Cache defaults
	v.SetDefault("cache.type", "memory")
	v.SetDefault("cache.ttl", "10m")
	v.SetDefault("cache.size", 1000)
	v.SetDefault("cache.cleanup_interval", "1m")

	// Aggregation defaults
	v.SetDefault("aggregation.max_concurrency", 4)
	v.SetDefault("aggregation.timeout", "30s")

	v.SetDefault("parser.lenient", false)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.development", false)
}

// validate validates the configuration
func validate(config *Config) error {
	if config.Gemini.APIKey == "" {
		return fmt.Errorf("Gemini API key is required (set FARMSTAND_GEMINI_API_KEY)")
	}

	if config.Produce.BaseURL == "" {
		return fmt.Errorf("produce base URL is required (set FARMSTAND_PRODUCE_BASE_URL)")
	}
	u, err := url.Parse(config.Produce.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("produce base URL must be an absolute URL, got: %s", config.Produce.BaseURL)
	}

	if config.Cache.Type != "memory" && config.Cache.Type != "none" {
		return fmt.Errorf("cache type must be 'memory' or 'none', got: %s", config.Cache.Type)
	}

	if config.Cache.Type == "memory" && config.Cache.Size < 1 {
		return fmt.Errorf("cache size must be at least 1, got: %d", config.Cache.Size)
	}

	if config.Aggregation.MaxConcurrency < 1 {
		return fmt.Errorf("aggregation max concurrency must be at least 1, got: %d", config.Aggregation.MaxConcurrency)
	}

	return nil
}
