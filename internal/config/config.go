// Package config loads server configuration from environment variables.
package config

import (
	"errors"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds runtime configuration for the API server.
type Config struct {
	AppEnv   string `envconfig:"APP_ENV" default:"development"`
	AppPort  string `envconfig:"APP_PORT" default:"8080"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	// MetaDatabaseURL connects to the system database holding the company
	// registry and pending signups.
	MetaDatabaseURL string `envconfig:"META_DATABASE_URL" required:"true"`

	// Company database credentials and pool limits.
	TenantDBUser          string        `envconfig:"TENANT_DB_USER" required:"true"`
	TenantDBPassword      string        `envconfig:"TENANT_DB_PASSWORD" required:"true"`
	TenantDBSSLMode       string        `envconfig:"TENANT_DB_SSLMODE" default:"disable"`
	TenantMaxPools        int           `envconfig:"TENANT_MAX_POOLS" default:"100"`
	TenantMaxConnsPerPool int           `envconfig:"TENANT_MAX_CONNS_PER_POOL" default:"10"`
	TenantPoolIdleTimeout time.Duration `envconfig:"TENANT_POOL_IDLE_TIMEOUT" default:"30m"`
	PrewarmPools          bool          `envconfig:"PREWARM_POOLS" default:"false"`

	JWTSecret string `envconfig:"JWT_SECRET" required:"true"`

	// RedisAddr enables the report snapshot cache when set.
	RedisAddr      string        `envconfig:"REDIS_ADDR"`
	ReportCacheTTL time.Duration `envconfig:"REPORT_CACHE_TTL" default:"5m"`

	// GotenbergURL enables PDF export when set.
	GotenbergURL string `envconfig:"GOTENBERG_URL"`

	// Payment provider for the checkout funnel.
	PaymentProviderURL string `envconfig:"PAYMENT_PROVIDER_URL" default:"http://127.0.0.1:4100"`
	PaymentAccessToken string `envconfig:"PAYMENT_ACCESS_TOKEN"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if cfg.JWTSecret == "change-me" {
		return nil, errors.New("JWT_SECRET must not use the placeholder value")
	}
	return &cfg, nil
}

// IsDevelopment returns true when the application runs in development.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}
