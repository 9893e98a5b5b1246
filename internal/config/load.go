package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable, e.g. BOOKING_AUTH_JWT_SECRET.
const EnvPrefix = "BOOKING"

// ErrRedisURLRequired is returned when the redis token backend is selected
// without a redis URL.
var ErrRedisURLRequired = errors.New("redis.url is required when tokens.backend is redis")

// setDefaults registers every key so that AutomaticEnv can override it
// during Unmarshal.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("server.log_format", "json")
	v.SetDefault("server.read_header_timeout", "5s")
	v.SetDefault("server.shutdown_timeout", "10s")

	v.SetDefault("database.url", "")
	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", "5m")
	v.SetDefault("database.migrate_on_start", true)

	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.access_token_lifetime", "10h")
	v.SetDefault("auth.refresh_token_lifetime", "168h")
	v.SetDefault("auth.clock_skew", "0s")
	v.SetDefault("auth.bcrypt_cost", 10)
	v.SetDefault("auth.permission_cache_size", 256)
	v.SetDefault("auth.permission_cache_ttl", "30s")

	v.SetDefault("tokens.backend", TokenBackendPostgres)
	v.SetDefault("tokens.prune_schedule", "@every 1h")

	v.SetDefault("redis.url", "")
	v.SetDefault("redis.key_prefix", "booking:")

	v.SetDefault("rate_limit.login_per_second", 1.0)
	v.SetDefault("rate_limit.login_burst", 5)
	v.SetDefault("rate_limit.tracked_clients", 10000)
	v.SetDefault("rate_limit.trusted_proxies", []string{})
}

// Load configuration from a .env file, environment variables, and an
// optional config.yaml in the working directory. Environment variables
// (prefixed with BOOKING_) take precedence over the config file.
// Returns a populated Config or an error if loading or validation fails.
func Load() (*Config, error) {
	// .env only fills variables that are not already set.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks struct tags and the cross-field rules tags cannot express.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	if c.Tokens.Backend == TokenBackendRedis && c.Redis.URL == "" {
		return fmt.Errorf("config validation failed: %w", ErrRedisURLRequired)
	}
	return nil
}
