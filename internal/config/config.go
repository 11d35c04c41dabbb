package config

import (
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// ErrMissingJWTSecret is returned by Load when JWT_SECRET is unset. The
// server treats it as fatal before opening any listener.
var ErrMissingJWTSecret = errors.New("JWT_SECRET is required")

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type Config struct {
	Port               string        `mapstructure:"PORT"`
	Env                string        `mapstructure:"ENV"`
	JWTSecret          string        `mapstructure:"JWT_SECRET"`
	JWTIssuer          string        `mapstructure:"JWT_ISSUER"`
	TokenTTL           time.Duration `mapstructure:"TOKEN_TTL"`
	StorageDriver      string        `mapstructure:"STORAGE_DRIVER"`
	DatabaseURL        string        `mapstructure:"DATABASE_URL"`
	SQLiteDSN          string        `mapstructure:"SQLITE_DSN"`
	DBMaxConns         int32         `mapstructure:"DB_MAX_CONNS"`
	DBMinConns         int32         `mapstructure:"DB_MIN_CONNS"`
	RedisURL           string        `mapstructure:"REDIS_URL"`
	AMQPURL            string        `mapstructure:"AMQP_URL"`
	AMQPQueue          string        `mapstructure:"AMQP_QUEUE"`
	CORSOrigins        []string      `mapstructure:"CORS_ORIGINS"`
	TrustedProxies     []string      `mapstructure:"TRUSTED_PROXIES"`
	RateLimitRPS       float64       `mapstructure:"RATE_LIMIT_RPS"`
	RateLimitBurst     int           `mapstructure:"RATE_LIMIT_BURST"`
	AuthRateLimitRPS   float64       `mapstructure:"AUTH_RATE_LIMIT_RPS"`
	AuthRateLimitBurst int           `mapstructure:"AUTH_RATE_LIMIT_BURST"`
	RequestTimeout     time.Duration `mapstructure:"REQUEST_TIMEOUT"`
	BodyLimit          string        `mapstructure:"BODY_LIMIT"`
	HSTSMaxAge         time.Duration `mapstructure:"HSTS_MAX_AGE"`
}

var keys = []string{
	"PORT", "ENV", "JWT_SECRET", "JWT_ISSUER", "TOKEN_TTL",
	"STORAGE_DRIVER", "DATABASE_URL", "SQLITE_DSN", "DB_MAX_CONNS", "DB_MIN_CONNS",
	"REDIS_URL", "AMQP_URL", "AMQP_QUEUE", "CORS_ORIGINS", "TRUSTED_PROXIES",
	"RATE_LIMIT_RPS", "RATE_LIMIT_BURST", "AUTH_RATE_LIMIT_RPS", "AUTH_RATE_LIMIT_BURST",
	"REQUEST_TIMEOUT", "BODY_LIMIT", "HSTS_MAX_AGE",
}

// Load reads configuration from the environment and an optional .env file.
// A missing JWT_SECRET yields ErrMissingJWTSecret; other problems are
// reported by Validate.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()

	v.SetDefault("PORT", "5000")
	v.SetDefault("ENV", "development")
	v.SetDefault("JWT_ISSUER", "medbook")
	v.SetDefault("TOKEN_TTL", "24h")
	v.SetDefault("STORAGE_DRIVER", DriverPostgres)
	v.SetDefault("SQLITE_DSN", "file:medbook.db?_foreign_keys=on")
	v.SetDefault("DB_MAX_CONNS", 10)
	v.SetDefault("DB_MIN_CONNS", 2)
	v.SetDefault("AMQP_QUEUE", "appointment-events")
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000")
	v.SetDefault("RATE_LIMIT_RPS", 50)
	v.SetDefault("RATE_LIMIT_BURST", 100)
	v.SetDefault("AUTH_RATE_LIMIT_RPS", 1)
	v.SetDefault("AUTH_RATE_LIMIT_BURST", 5)
	v.SetDefault("REQUEST_TIMEOUT", "30s")
	v.SetDefault("BODY_LIMIT", "1M")
	v.SetDefault("HSTS_MAX_AGE", "8760h")

	for _, k := range keys {
		_ = v.BindEnv(k)
	}

	// .env is optional
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	cfg.CORSOrigins = splitList(cfg.CORSOrigins)
	cfg.TrustedProxies = splitList(cfg.TrustedProxies)

	if cfg.JWTSecret == "" {
		return nil, ErrMissingJWTSecret
	}

	return cfg, nil
}

// splitList normalizes a list read from a comma-separated env value.
func splitList(v []string) []string {
	var out []string
	for _, entry := range v {
		for _, item := range strings.Split(entry, ",") {
			if item = strings.TrimSpace(item); item != "" {
				out = append(out, item)
			}
		}
	}
	return out
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// Validate checks settings that depend on each other.
func (c *Config) Validate() error {
	switch c.StorageDriver {
	case DriverPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required when STORAGE_DRIVER is %q", DriverPostgres)
		}
	case DriverSQLite:
		if c.SQLiteDSN == "" {
			return fmt.Errorf("SQLITE_DSN is required when STORAGE_DRIVER is %q", DriverSQLite)
		}
	default:
		return fmt.Errorf("STORAGE_DRIVER must be %q or %q, got %q", DriverPostgres, DriverSQLite, c.StorageDriver)
	}

	if c.TokenTTL <= 0 {
		return fmt.Errorf("TOKEN_TTL must be positive, got %s", c.TokenTTL)
	}
	for _, cidr := range c.TrustedProxies {
		if _, _, err := net.ParseCIDR(cidr); err != nil {
			return fmt.Errorf("TRUSTED_PROXIES: %q is not a CIDR range", cidr)
		}
	}
	if c.DBMinConns > c.DBMaxConns {
		return fmt.Errorf("DB_MIN_CONNS (%d) must not exceed DB_MAX_CONNS (%d)", c.DBMinConns, c.DBMaxConns)
	}
	return nil
}
