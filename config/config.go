package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

// Config holds the application configuration
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Catalog   CatalogConfig   `mapstructure:"catalog"`
	Shop      ShopConfig      `mapstructure:"shop"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Feeds     FeedsConfig     `mapstructure:"feeds"`
	Cron      CronConfig      `mapstructure:"cron"`
	Retention RetentionConfig `mapstructure:"retention"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port           int           `mapstructure:"port"`
	Host           string        `mapstructure:"host"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout"`
	AllowedOrigins []string      `mapstructure:"allowed_origins"`
	InternalAPIKey string        `mapstructure:"internal_api_key"`
	// Requests per second and burst for the /internal group
	APIRateLimit float64 `mapstructure:"api_rate_limit"`
	APIBurst     int     `mapstructure:"api_burst"`
}

// DatabaseConfig holds connection settings for the matcher's own tables
type DatabaseConfig struct {
	URL             string        `mapstructure:"url"`
	MaxConnections  int           `mapstructure:"max_connections"`
	MinConnections  int           `mapstructure:"min_connections"`
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"`
	MaxConnIdleTime time.Duration `mapstructure:"max_conn_idle_time"`
}

// CatalogConfig selects where products and specific prices live.
// Driver "postgres" uses the same pool as the matcher tables,
// "prestashop" connects to a shop's MySQL database.
type CatalogConfig struct {
	Driver      string `mapstructure:"driver"`
	DSN         string `mapstructure:"dsn"`
	TablePrefix string `mapstructure:"table_prefix"`
	CountryID   int64  `mapstructure:"country_id"`
	LangID      int64  `mapstructure:"lang_id"`
}

// ShopConfig scopes specific prices to one shop
type ShopConfig struct {
	ID int64 `mapstructure:"id"`
}

// StorageConfig holds feed file storage configuration
type StorageConfig struct {
	Type     string `mapstructure:"type"`
	BasePath string `mapstructure:"base_path"`
}

// FeedsConfig maps competitor names to a feed source
type FeedsConfig struct {
	DefaultSource string            `mapstructure:"default_source"`
	Sources       map[string]string `mapstructure:"sources"`
}

// CronConfig holds in-process scheduling configuration
type CronConfig struct {
	Enabled       bool          `mapstructure:"enabled"`
	Schedule      string        `mapstructure:"schedule"`
	CleanInterval time.Duration `mapstructure:"clean_interval"`
}

// RetentionConfig bounds how much history is kept. Zero disables a limit.
type RetentionConfig struct {
	Interval       time.Duration `mapstructure:"interval"`
	KeepFeeds      int           `mapstructure:"keep_feeds"`
	StatisticsDays int           `mapstructure:"statistics_days"`
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	RequestsPerSecond int `mapstructure:"requests_per_second"`
	MaxRetries        int `mapstructure:"max_retries"`
	InitialBackoffMs  int `mapstructure:"initial_backoff_ms"`
	MaxBackoffMs      int `mapstructure:"max_backoff_ms"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level   string `mapstructure:"level"`
	Format  string `mapstructure:"format"`
	NoColor bool   `mapstructure:"no_color"`
}

// TelemetryConfig holds OpenTelemetry configuration
type TelemetryConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	Endpoint    string `mapstructure:"endpoint"`
	ServiceName string `mapstructure:"service_name"`
}

var globalConfig *Config

// Load loads the configuration from file, .env, and environment variables
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	}

	// .env is optional
	if err := loadEnvFile(); err != nil {
		log.Debug().Err(err).Msg(".env file not loaded")
	}

	v.SetEnvPrefix("PRICE_MATCHER")
	v.AutomaticEnv()
	bindEnvVars(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	globalConfig = &cfg
	return &cfg, nil
}

// loadEnvFile loads the first .env file found without overriding variables
// that are already set in the environment
func loadEnvFile() error {
	for _, dir := range []string{".", "./config"} {
		envFile := filepath.Join(dir, ".env")
		if _, err := os.Stat(envFile); err != nil {
			continue
		}
		if err := godotenv.Load(envFile); err != nil {
			return fmt.Errorf("parse %s: %w", envFile, err)
		}
		return nil
	}
	return fmt.Errorf("no .env file found")
}

// bindEnvVars binds environment variables to config keys
func bindEnvVars(v *viper.Viper) {
	v.BindEnv("database.url", "DATABASE_URL")
	v.BindEnv("catalog.driver", "CATALOG_DRIVER")
	v.BindEnv("catalog.dsn", "CATALOG_DSN")

	v.BindEnv("server.port", "PORT")
	v.BindEnv("server.host", "HOST")
	v.BindEnv("server.internal_api_key", "INTERNAL_API_KEY")

	v.BindEnv("logging.level", "LOG_LEVEL")

	v.BindEnv("storage.base_path", "FEEDS_PATH")

	v.BindEnv("telemetry.endpoint", "OTEL_EXPORTER_OTLP_ENDPOINT")
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 3000)
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 10*time.Minute)
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("server.api_rate_limit", 10.0)
	v.SetDefault("server.api_burst", 20)

	v.SetDefault("database.max_connections", 10)
	v.SetDefault("database.min_connections", 2)
	v.SetDefault("database.max_conn_lifetime", 1*time.Hour)
	v.SetDefault("database.max_conn_idle_time", 30*time.Minute)

	v.SetDefault("catalog.driver", "postgres")
	v.SetDefault("catalog.table_prefix", "ps_")
	v.SetDefault("catalog.country_id", 1)
	v.SetDefault("catalog.lang_id", 1)

	v.SetDefault("shop.id", 1)

	v.SetDefault("storage.type", "local")
	v.SetDefault("storage.base_path", "./data/feeds")

	v.SetDefault("feeds.default_source", "local")

	v.SetDefault("cron.enabled", false)
	v.SetDefault("cron.schedule", "0 3 * * *")
	v.SetDefault("cron.clean_interval", 1*time.Hour)

	v.SetDefault("retention.interval", 24*time.Hour)
	v.SetDefault("retention.keep_feeds", 30)
	v.SetDefault("retention.statistics_days", 365)

	v.SetDefault("rate_limit.requests_per_second", 2)
	v.SetDefault("rate_limit.max_retries", 3)
	v.SetDefault("rate_limit.initial_backoff_ms", 100)
	v.SetDefault("rate_limit.max_backoff_ms", 30000)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.no_color", false)

	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("telemetry.service_name", "price-matcher")
}

// Get returns the global configuration
func Get() *Config {
	return globalConfig
}

// GetDatabaseURL returns the database URL from config or environment
func GetDatabaseURL() string {
	if cfg := Get(); cfg != nil && cfg.Database.URL != "" {
		return cfg.Database.URL
	}
	return os.Getenv("DATABASE_URL")
}

// SourceFor returns the feed source name configured for a competitor
func (c FeedsConfig) SourceFor(competitor string) string {
	// viper lowercases map keys
	if name, ok := c.Sources[strings.ToLower(competitor)]; ok && name != "" {
		return name
	}
	if c.DefaultSource != "" {
		return c.DefaultSource
	}
	return "local"
}
