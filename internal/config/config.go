package config

import "time"

// Token store backends.
const (
	TokenBackendPostgres = "postgres"
	TokenBackendRedis    = "redis"
)

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server    ServerConfig     `mapstructure:"server"     validate:"required"`
	Database  DatabaseConfig   `mapstructure:"database"   validate:"required"`
	Auth      AuthConfig       `mapstructure:"auth"       validate:"required"`
	Tokens    TokenStoreConfig `mapstructure:"tokens"     validate:"required"`
	Redis     RedisConfig      `mapstructure:"redis"`
	RateLimit RateLimitConfig  `mapstructure:"rate_limit"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port              int           `mapstructure:"port"                validate:"required,gt=0,lt=65536"`
	LogLevel          string        `mapstructure:"log_level"           validate:"required,oneof=debug info warn error"`
	LogFormat         string        `mapstructure:"log_format"          validate:"omitempty,oneof=json text"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout" validate:"gt=0"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdown_timeout"    validate:"gt=0"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL             string        `mapstructure:"url"               validate:"required,url"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"    validate:"gt=0"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"    validate:"gte=0"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime" validate:"gte=0"`
	MigrateOnStart  bool          `mapstructure:"migrate_on_start"`
}

// AuthConfig contains all authentication and authorization settings.
type AuthConfig struct {
	JWTSecret            string        `mapstructure:"jwt_secret"             validate:"required,min=32"`
	AccessTokenLifetime  time.Duration `mapstructure:"access_token_lifetime"  validate:"gt=0"`
	RefreshTokenLifetime time.Duration `mapstructure:"refresh_token_lifetime" validate:"gt=0"`
	ClockSkew            time.Duration `mapstructure:"clock_skew"             validate:"gte=0"`
	BcryptCost           int           `mapstructure:"bcrypt_cost"            validate:"gte=4,lte=31"`
	PermissionCacheSize  int           `mapstructure:"permission_cache_size"  validate:"gte=0"`
	PermissionCacheTTL   time.Duration `mapstructure:"permission_cache_ttl"   validate:"gte=0"`
}

// TokenStoreConfig selects where refresh tokens and revocation records live.
type TokenStoreConfig struct {
	Backend       string `mapstructure:"backend"        validate:"required,oneof=postgres redis"`
	PruneSchedule string `mapstructure:"prune_schedule" validate:"required"`
}

// RedisConfig is only required when Tokens.Backend is "redis".
type RedisConfig struct {
	URL       string `mapstructure:"url"        validate:"omitempty,url"`
	KeyPrefix string `mapstructure:"key_prefix"`
}

// RateLimitConfig throttles sign-in attempts per client IP. A zero rate
// disables the limiter. X-Forwarded-For is only honoured for requests
// arriving from a TrustedProxies network.
type RateLimitConfig struct {
	LoginPerSecond float64  `mapstructure:"login_per_second" validate:"gte=0"`
	LoginBurst     int      `mapstructure:"login_burst"      validate:"gte=0"`
	TrackedClients int      `mapstructure:"tracked_clients"  validate:"gte=0"`
	TrustedProxies []string `mapstructure:"trusted_proxies"  validate:"dive,cidr"`
}
