package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Store drivers
const (
	DriverMongo  = "mongo"
	DriverBadger = "badger"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Store     StoreConfig     `mapstructure:"store"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	Mode            string        `mapstructure:"mode"` // debug, release, test
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	StaticDir       string        `mapstructure:"static_dir"`
}

// StoreConfig contains article store configuration
type StoreConfig struct {
	Driver         string        `mapstructure:"driver"` // mongo, badger
	URI            string        `mapstructure:"uri"`
	Database       string        `mapstructure:"database"`
	Collection     string        `mapstructure:"collection"`
	Path           string        `mapstructure:"path"`
	PoolSize       int           `mapstructure:"pool_size"`
	AcquireTimeout time.Duration `mapstructure:"acquire_timeout"`
	OpTimeout      time.Duration `mapstructure:"op_timeout"`
	FetchRetries   int           `mapstructure:"fetch_retries"`
	RetryBackoff   time.Duration `mapstructure:"retry_backoff"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Format string `mapstructure:"format"` // json, text
}

// RateLimitConfig contains rate limiting configuration
type RateLimitConfig struct {
	RequestsPerMinute int `mapstructure:"requests_per_minute"`
	Burst             int `mapstructure:"burst"`
}

// Load loads configuration from .env files, config file and environment variables.
// Priority: ENV vars > config.yaml > defaults
func Load() (*Config, error) {
	return LoadFrom(viper.New(), "")
}

// LoadFrom loads configuration into v. An explicit configFile replaces the
// search of ./configs and the working directory.
func LoadFrom(v *viper.Viper, configFile string) (*Config, error) {
	// Missing .env files are fine
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
	}

	setDefaults(v)

	v.SetEnvPrefix("BLOGAPI")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || configFile != "" {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default values for configuration
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8000)
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.shutdown_timeout", "10s")
	v.SetDefault("server.static_dir", "./build")

	// Store defaults
	v.SetDefault("store.driver", DriverMongo)
	v.SetDefault("store.uri", "mongodb://localhost:27017")
	v.SetDefault("store.database", "react-blog")
	v.SetDefault("store.collection", "articles")
	v.SetDefault("store.path", "./data/articles")
	v.SetDefault("store.pool_size", 16)
	v.SetDefault("store.acquire_timeout", "5s")
	v.SetDefault("store.op_timeout", "5s")
	v.SetDefault("store.fetch_retries", 2)
	v.SetDefault("store.retry_backoff", "100ms")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	// Rate limit defaults
	v.SetDefault("rate_limit.requests_per_minute", 600)
	v.SetDefault("rate_limit.burst", 60)
}

// validate validates the configuration
func validate(cfg *Config) error {
	switch cfg.Server.Mode {
	case "debug", "release", "test":
	default:
		return fmt.Errorf("server.mode must be 'debug', 'release' or 'test', got: %s", cfg.Server.Mode)
	}

	if cfg.Server.Port < 1 || cfg.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got: %d", cfg.Server.Port)
	}

	switch cfg.Store.Driver {
	case DriverMongo:
		if cfg.Store.URI == "" {
			return fmt.Errorf("store.uri is required for the mongo driver")
		}
		if cfg.Store.Database == "" || cfg.Store.Collection == "" {
			return fmt.Errorf("store.database and store.collection are required for the mongo driver")
		}
	case DriverBadger:
		if cfg.Store.Path == "" {
			return fmt.Errorf("store.path is required for the badger driver")
		}
	default:
		return fmt.Errorf("store.driver must be '%s' or '%s', got: %s", DriverMongo, DriverBadger, cfg.Store.Driver)
	}

	if cfg.Store.PoolSize < 1 {
		return fmt.Errorf("store.pool_size must be at least 1, got: %d", cfg.Store.PoolSize)
	}
	if cfg.Store.FetchRetries < 0 {
		return fmt.Errorf("store.fetch_retries must not be negative, got: %d", cfg.Store.FetchRetries)
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[cfg.Logging.Level] {
		return fmt.Errorf("logging.level must be one of: debug, info, warn, error, got: %s", cfg.Logging.Level)
	}

	if cfg.Logging.Format != "json" && cfg.Logging.Format != "text" {
		return fmt.Errorf("logging.format must be 'json' or 'text', got: %s", cfg.Logging.Format)
	}

	return nil
}

// Redacted returns the store URI with any credentials removed, for logging
func (c StoreConfig) Redacted() string {
	uri := c.URI
	scheme := ""
	if i := strings.Index(uri, "://"); i >= 0 {
		scheme, uri = uri[:i+3], uri[i+3:]
	}
	if at := strings.LastIndex(uri, "@"); at >= 0 {
		uri = "***@" + uri[at+1:]
	}
	return scheme + uri
}
