package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const EnvPrefix = ""

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

type Config struct {
	App       AppConfig
	API       APIConfig
	Poll      PollConfig
	Store     StoreConfig
	DevServer DevServerConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"TIFFINO_APP_ENV" default:"dev"`
	LogLevel     string `envconfig:"TIFFINO_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"TIFFINO_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

// APIConfig points the client at the platform backend. Timeout zero means
// the transport default; the client configures no retries.
type APIConfig struct {
	BaseURL        string `envconfig:"TIFFINO_API_BASE_URL" required:"true"`
	TimeoutSeconds int    `envconfig:"TIFFINO_API_TIMEOUT_SECONDS" default:"0"`
}

func (a APIConfig) Timeout() time.Duration {
	if a.TimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.TimeoutSeconds) * time.Second
}

// PollConfig governs the order-tracking poll loop.
type PollConfig struct {
	IntervalMS int `envconfig:"TIFFINO_POLL_INTERVAL_MS" default:"4000"`
}

func (p PollConfig) Interval() time.Duration {
	if p.IntervalMS <= 0 {
		return 4 * time.Second
	}
	return time.Duration(p.IntervalMS) * time.Millisecond
}

// StoreConfig locates the durable local store, the Go analogue of the
// browser's localStorage.
type StoreConfig struct {
	Path string `envconfig:"TIFFINO_STORE_PATH" default:"tiffino.db"`
}

// DevServerConfig configures the local development backend.
type DevServerConfig struct {
	Port                 string `envconfig:"TIFFINO_DEVSERVER_PORT" default:"9090"`
	DBPath               string `envconfig:"TIFFINO_DEVSERVER_DB_PATH" default:"devserver.db"`
	JWTSecret            string `envconfig:"TIFFINO_DEVSERVER_JWT_SECRET" default:"dev-only-secret"`
	JWTIssuer            string `envconfig:"TIFFINO_DEVSERVER_JWT_ISSUER" default:"tiffino-devserver"`
	JWTExpirationMinutes int    `envconfig:"TIFFINO_DEVSERVER_JWT_EXPIRATION_MINUTES" default:"1440"`
	SeedEmail            string `envconfig:"TIFFINO_DEVSERVER_SEED_EMAIL" default:"dev@tiffino.local"`
	SeedPassword         string `envconfig:"TIFFINO_DEVSERVER_SEED_PASSWORD" default:"devpass123"`
}

func (d DevServerConfig) Addr() string {
	port := strings.TrimSpace(d.Port)
	if port == "" {
		port = "9090"
	}
	return ":" + strings.TrimPrefix(port, ":")
}
