package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "SOLESTORE"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

type Config struct {
	App     AppConfig
	Gateway GatewayConfig
	JWT     JWTConfig
	DB      DBConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"SOLESTORE_APP_ENV" required:"true"`
	Port         string `envconfig:"SOLESTORE_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"SOLESTORE_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"SOLESTORE_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

// GatewayConfig points the storefront core at the remote
// catalog/inventory gateway.
type GatewayConfig struct {
	BaseURL        string        `envconfig:"SOLESTORE_GATEWAY_BASE_URL" required:"true"`
	RequestTimeout time.Duration `envconfig:"SOLESTORE_GATEWAY_REQUEST_TIMEOUT" default:"10s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"SOLESTORE_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"SOLESTORE_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"SOLESTORE_JWT_EXPIRATION_MINUTES" default:"60"`
}

// DBConfig configures the dev gateway's embedded sqlite store.
type DBConfig struct {
	Path string `envconfig:"SOLESTORE_DB_PATH" default:"solestore.db"`
	Seed bool   `envconfig:"SOLESTORE_DB_SEED" default:"true"`
}
