package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
// API keys are deliberately absent: they arrive with each request.
type Config struct {
	Server      ServerConfig
	Dataset     DatasetConfig
	Scopus      ScopusConfig
	Gemini      GeminiConfig
	Matching    MatchingConfig
	Aggregation AggregationConfig
	Cache       CacheConfig
	RateLimit   RateLimitConfig
	Log         LogConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Environment    string   `mapstructure:"environment"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// DatasetConfig holds the reference data file locations
type DatasetConfig struct {
	CatalogPath    string `mapstructure:"catalog_path"`
	JournalsPath   string `mapstructure:"journals_path"`
	PublishersPath string `mapstructure:"publishers_path"`
}

// ScopusConfig holds Elsevier Serial Title API settings
type ScopusConfig struct {
	BaseURL       string        `mapstructure:"base_url"`
	Timeout       time.Duration `mapstructure:"timeout"`
	RatePerSecond float64       `mapstructure:"rate_per_second"`
	Burst         int           `mapstructure:"burst"`
	Debug         bool          `mapstructure:"debug"`
}

// GeminiConfig holds Gemini generateContent API settings
type GeminiConfig struct {
	BaseURL       string        `mapstructure:"base_url"`
	Model         string        `mapstructure:"model"`
	Timeout       time.Duration `mapstructure:"timeout"`
	RatePerSecond float64       `mapstructure:"rate_per_second"`
	Burst         int           `mapstructure:"burst"`
	Debug         bool          `mapstructure:"debug"`
}

// MatchingConfig holds fuzzy matching configuration
type MatchingConfig struct {
	Floor              float64 `mapstructure:"floor"`
	EditWeight         float64 `mapstructure:"edit_weight"`
	TokenWeight        float64 `mapstructure:"token_weight"`
	TopK               int     `mapstructure:"top_k"`
	EnablePruning      bool    `mapstructure:"enable_pruning"`
	EnableDebugLogging bool    `mapstructure:"enable_debug_logging"`
}

// AggregationConfig holds per-source deadlines and batch concurrency
type AggregationConfig struct {
	IndexingTimeout       time.Duration `mapstructure:"indexing_timeout"`
	ExtractionTimeout     time.Duration `mapstructure:"extraction_timeout"`
	MaxConcurrentJournals int           `mapstructure:"max_concurrent_journals"`
}

// CacheConfig holds evidence cache configuration
type CacheConfig struct {
	Type            string        `mapstructure:"type"` // "memory", "sqlite", "postgres" or "none"
	SQLitePath      string        `mapstructure:"sqlite_path"`
	PostgresURL     string        `mapstructure:"postgres_url"`
	TTL             time.Duration `mapstructure:"ttl"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	PerIP int `mapstructure:"per_ip"` // requests per minute
}

// LogConfig holds logger configuration
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // "text", "json" or "logfmt"
}

// Load loads configuration from a .env file, environment variables and config files
func Load() (*Config, error) {
	if err := loadEnvFile(); err != nil {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	}

	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/jqa/")

	// JQA_MATCHING_FLOOR -> matching.floor
	v.SetEnvPrefix("JQA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	// Config file is optional
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
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

// loadEnvFile loads ./.env if present. Variables already set in the
// environment win over the file.
func loadEnvFile() error {
	err := godotenv.Load()
	if err != nil && errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:3000"})

	v.SetDefault("dataset.catalog_path", "data/scimago_journals.csv")
	v.SetDefault("dataset.journals_path", "data/predatory_journals.txt")
	v.SetDefault("dataset.publishers_path", "data/predatory_publishers.txt")

	v.SetDefault("scopus.base_url", "https://api.elsevier.com")
	v.SetDefault("scopus.timeout", "15s")
	v.SetDefault("scopus.rate_per_second", 2.0)
	v.SetDefault("scopus.burst", 5)
	v.SetDefault("scopus.debug", false)

	v.SetDefault("gemini.base_url", "https://generativelanguage.googleapis.com")
	v.SetDefault("gemini.model", "gemini-2.5-flash")
	v.SetDefault("gemini.timeout", "30s")
	v.SetDefault("gemini.rate_per_second", 1.0)
	v.SetDefault("gemini.burst", 2)
	v.SetDefault("gemini.debug", false)

	v.SetDefault("matching.floor", 0.55)
	v.SetDefault("matching.edit_weight", 0.6)
	v.SetDefault("matching.token_weight", 0.4)
	v.SetDefault("matching.top_k", 5)
	v.SetDefault("matching.enable_pruning", true)
	v.SetDefault("matching.enable_debug_logging", false)

	v.SetDefault("aggregation.indexing_timeout", "10s")
	v.SetDefault("aggregation.extraction_timeout", "30s")
	v.SetDefault("aggregation.max_concurrent_journals", 4)

	v.SetDefault("cache.type", "memory")
	v.SetDefault("cache.sqlite_path", "data/evidence_cache.db")
	v.SetDefault("cache.postgres_url", "")
	v.SetDefault("cache.ttl", "168h") // 7 days
	v.SetDefault("cache.cleanup_interval", "10m")

	v.SetDefault("ratelimit.per_ip", 60)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}

// validate validates the configuration
func validate(config *Config) error {
	if config.Dataset.CatalogPath == "" || config.Dataset.JournalsPath == "" || config.Dataset.PublishersPath == "" {
		return fmt.Errorf("dataset paths are required (catalog, journals, publishers)")
	}

	if config.Matching.Floor <= 0 || config.Matching.Floor > 1 {
		return fmt.Errorf("matching floor must be in (0, 1], got: %v", config.Matching.Floor)
	}
	if config.Matching.EditWeight < 0 || config.Matching.TokenWeight < 0 ||
		config.Matching.EditWeight+config.Matching.TokenWeight == 0 {
		return fmt.Errorf("matching weights must be non-negative with a positive sum")
	}
	if config.Matching.TopK <= 0 {
		return fmt.Errorf("matching top_k must be positive, got: %d", config.Matching.TopK)
	}

	if config.Aggregation.IndexingTimeout <= 0 || config.Aggregation.ExtractionTimeout <= 0 {
		return fmt.Errorf("aggregation timeouts must be positive")
	}
	if config.Aggregation.MaxConcurrentJournals <= 0 {
		return fmt.Errorf("aggregation max_concurrent_journals must be positive")
	}

	switch config.Cache.Type {
	case "memory", "none":
	case "sqlite":
		if config.Cache.SQLitePath == "" {
			return fmt.Errorf("SQLite path is required when cache type is 'sqlite'")
		}
	case "postgres":
		if config.Cache.PostgresURL == "" {
			return fmt.Errorf("Postgres URL is required when cache type is 'postgres'")
		}
	default:
		return fmt.Errorf("cache type must be 'memory', 'sqlite', 'postgres' or 'none', got: %s", config.Cache.Type)
	}

	if config.Cache.CleanupInterval <= 0 {
		return fmt.Errorf("cache cleanup_interval must be positive")
	}

	if config.RateLimit.PerIP <= 0 {
		return fmt.Errorf("ratelimit per_ip must be positive")
	}

	return nil
}
