package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	BlobStoreR2    = "r2"
	BlobStoreRedis = "redis"
)

type Config struct {
	Server    ServerConfig
	Logger    LoggerConfig
	Cache     CacheConfig
	BlobStore BlobStoreConfig
	R2        R2Config
	Redis     RedisConfig
	Recorder  RecorderConfig
}

type ServerConfig struct {
	Host               string
	Port               int
	PredictTimeout     time.Duration
	CORSAllowedOrigins []string
}

type LoggerConfig struct {
	Level  string
	Format string
}

type CacheConfig struct {
	Dir         string
	WarmOnStart bool
}

type BlobStoreConfig struct {
	Backend string
}

type R2Config struct {
	AccountID       string
	AccessKeyID     string
	SecretAccessKey string
	Bucket          string
	Namespace       string
	EndpointURL     string
	UsePathStyle    bool
}

// Endpoint returns the configured endpoint or the account's R2 endpoint.
func (c R2Config) Endpoint() string {
	if c.EndpointURL != "" {
		return c.EndpointURL
	}
	return fmt.Sprintf("https://%s.r2.cloudflarestorage.com", c.AccountID)
}

type RedisConfig struct {
	Addr      string
	Password  string
	DB        int
	KeyPrefix string
}

type RecorderConfig struct {
	Enabled     bool
	DatabaseURL string
}

// Load reads configuration from the environment, falling back to a .env file
// in the working directory when one exists.
func Load() (*Config, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("SERVER_HOST", "0.0.0.0")
	v.SetDefault("SERVER_PORT", 8000)
	v.SetDefault("PREDICT_TIMEOUT", "30s")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000,https://reembolsos.fdosmith.dev")
	v.SetDefault("LOGGER_LEVEL", "info")
	v.SetDefault("LOGGER_FORMAT", "json")
	v.SetDefault("MODEL_CACHE_DIR", "/tmp/model_cache")
	v.SetDefault("MODEL_WARM_ON_START", false)
	v.SetDefault("BLOBSTORE_BACKEND", BlobStoreR2)
	v.SetDefault("R2_USE_PATH_STYLE", false)
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("REDIS_KEY_PREFIX", "models:")
	v.SetDefault("RECORDER_ENABLED", false)

	// .env file (optional)
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read .env: %w", err)
		}
	}

	// Env
	v.AutomaticEnv()

	timeout, err := time.ParseDuration(v.GetString("PREDICT_TIMEOUT"))
	if err != nil {
		timeout = 30 * time.Second
	}

	cfg := &Config{
		Server: ServerConfig{
			Host:               v.GetString("SERVER_HOST"),
			Port:               v.GetInt("SERVER_PORT"),
			PredictTimeout:     timeout,
			CORSAllowedOrigins: splitList(v.GetString("CORS_ALLOWED_ORIGINS")),
		},
		Logger: LoggerConfig{
			Level:  v.GetString("LOGGER_LEVEL"),
			Format: v.GetString("LOGGER_FORMAT"),
		},
		Cache: CacheConfig{
			Dir:         v.GetString("MODEL_CACHE_DIR"),
			WarmOnStart: v.GetBool("MODEL_WARM_ON_START"),
		},
		BlobStore: BlobStoreConfig{
			Backend: strings.ToLower(v.GetString("BLOBSTORE_BACKEND")),
		},
		R2: R2Config{
			AccountID:       v.GetString("CLOUDFLARE_ACCOUNT_ID"),
			AccessKeyID:     v.GetString("CLOUDFLARE_R2_ACCESS_KEY_ID"),
			SecretAccessKey: v.GetString("CLOUDFLARE_R2_SECRET_ACCESS_KEY"),
			Bucket:          v.GetString("R2_BUCKET_NAME"),
			Namespace:       v.GetString("R2_NAMESPACE"),
			EndpointURL:     v.GetString("R2_ENDPOINT_URL"),
			UsePathStyle:    v.GetBool("R2_USE_PATH_STYLE"),
		},
		Redis: RedisConfig{
			Addr:      v.GetString("REDIS_ADDR"),
			Password:  v.GetString("REDIS_PASSWORD"),
			DB:        v.GetInt("REDIS_DB"),
			KeyPrefix: v.GetString("REDIS_KEY_PREFIX"),
		},
		Recorder: RecorderConfig{
			Enabled:     v.GetBool("RECORDER_ENABLED"),
			DatabaseURL: v.GetString("DATABASE_URL"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Recorder.Enabled && c.Recorder.DatabaseURL == "" {
		return errors.New("DATABASE_URL is required when RECORDER_ENABLED is set")
	}
	if c.Cache.Dir == "" {
		return errors.New("MODEL_CACHE_DIR must not be empty")
	}
	return nil
}

// ValidateBlobStore checks the settings of the selected blob store backend.
// Load does not call it, so commands that only touch the local cache run
// without remote credentials.
func (c *Config) ValidateBlobStore() error {
	switch c.BlobStore.Backend {
	case BlobStoreR2:
		if c.R2.Bucket == "" {
			return errors.New("R2_BUCKET_NAME is required for the r2 blob store")
		}
		if c.R2.AccountID == "" && c.R2.EndpointURL == "" {
			return errors.New("CLOUDFLARE_ACCOUNT_ID or R2_ENDPOINT_URL is required for the r2 blob store")
		}
	case BlobStoreRedis:
		if c.Redis.Addr == "" {
			return errors.New("REDIS_ADDR is required for the redis blob store")
		}
	default:
		return fmt.Errorf("unsupported BLOBSTORE_BACKEND %q", c.BlobStore.Backend)
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
