// Package config loads server configuration from the environment, an
// optional .env file and an optional config file.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the server.
type Config struct {
	Port      string
	LogLevel  string
	LogFormat string

	Storage StorageConfig
	Drafts  DraftsConfig
	Redis   RedisConfig
	OCR     OCRConfig

	JWTSecretKey string

	// MaxRequestBytes caps the size of one RPC request, receipt images
	// included.
	MaxRequestBytes int64
}

// StorageConfig selects the bill store.
type StorageConfig struct {
	Driver      string // sqlite or postgres
	DBPath      string
	DatabaseURL string
}

// DraftsConfig selects where in-progress bills are kept.
type DraftsConfig struct {
	Store string // memory or redis
	TTL   time.Duration
}

type RedisConfig struct {
	Address  string
	Password string
	DB       int
}

// OCRConfig holds the receipt OCR endpoint. Scanning is disabled when APIURL
// is empty.
type OCRConfig struct {
	APIURL   string
	ClientID string
	APIKey   string
	Timeout  time.Duration
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", "8080")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "text")
	v.SetDefault("STORAGE_DRIVER", "sqlite")
	v.SetDefault("DB_PATH", "./data/billsplit.db")
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("DRAFT_STORE", "memory")
	v.SetDefault("DRAFT_TTL", "24h")
	v.SetDefault("REDIS_ADDRESS", "localhost:6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("JWT_SECRET_KEY", "")
	v.SetDefault("OCR_API_URL", "")
	v.SetDefault("OCR_CLIENT_ID", "")
	v.SetDefault("OCR_API_KEY", "")
	v.SetDefault("OCR_TIMEOUT", "30s")
	v.SetDefault("MAX_REQUEST_BYTES", 8<<20)
}

// Load reads configuration. Environment variables win over configFile
// (YAML, optional) which wins over the defaults. A .env file in the working
// directory is loaded into the environment first when present.
func Load(configFile string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{
		Port:      v.GetString("PORT"),
		LogLevel:  strings.ToLower(v.GetString("LOG_LEVEL")),
		LogFormat: strings.ToLower(v.GetString("LOG_FORMAT")),
		Storage: StorageConfig{
			Driver:      strings.ToLower(v.GetString("STORAGE_DRIVER")),
			DBPath:      v.GetString("DB_PATH"),
			DatabaseURL: v.GetString("DATABASE_URL"),
		},
		Drafts: DraftsConfig{
			Store: strings.ToLower(v.GetString("DRAFT_STORE")),
			TTL:   v.GetDuration("DRAFT_TTL"),
		},
		Redis: RedisConfig{
			Address:  v.GetString("REDIS_ADDRESS"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		OCR: OCRConfig{
			APIURL:   v.GetString("OCR_API_URL"),
			ClientID: v.GetString("OCR_CLIENT_ID"),
			APIKey:   v.GetString("OCR_API_KEY"),
			Timeout:  v.GetDuration("OCR_TIMEOUT"),
		},
		JWTSecretKey:    v.GetString("JWT_SECRET_KEY"),
		MaxRequestBytes: v.GetInt64("MAX_REQUEST_BYTES"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the combinations Load cannot default.
func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case "sqlite":
		if c.Storage.DBPath == "" {
			return errors.New("DB_PATH is required for the sqlite driver")
		}
	case "postgres":
		if c.Storage.DatabaseURL == "" {
			return errors.New("DATABASE_URL is required for the postgres driver")
		}
	default:
		return fmt.Errorf("unknown STORAGE_DRIVER %q", c.Storage.Driver)
	}

	switch c.Drafts.Store {
	case "memory", "redis":
	default:
		return fmt.Errorf("unknown DRAFT_STORE %q", c.Drafts.Store)
	}
	if c.Drafts.TTL <= 0 {
		return errors.New("DRAFT_TTL must be positive")
	}

	if c.MaxRequestBytes <= 0 {
		return errors.New("MAX_REQUEST_BYTES must be positive")
	}

	if c.JWTSecretKey == "" {
		return errors.New("JWT_SECRET_KEY is required")
	}
	return nil
}

// LogValue keeps secrets out of startup logs.
func (c *Config) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("port", c.Port),
		slog.String("log_level", c.LogLevel),
		slog.String("storage_driver", c.Storage.Driver),
		slog.String("draft_store", c.Drafts.Store),
		slog.Duration("draft_ttl", c.Drafts.TTL),
		slog.Bool("ocr_enabled", c.OCR.APIURL != ""),
	)
}
