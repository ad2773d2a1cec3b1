package config

import (
	"fmt"
	"time"
)

const (
	EnvDev   = "dev"
	EnvProd  = "prod"
	EnvLocal = "local"
)

const (
	StorageDriverMemory   = "memory"
	StorageDriverFile     = "file"
	StorageDriverSQLite   = "sqlite"
	StorageDriverPostgres = "postgres"
)

const (
	AuthProviderMock  = "mock"
	AuthProviderLocal = "local"
)

type Config struct {
	Env      string         `yaml:"env" env:"ENV" env-default:"prod"`
	LogLevel string         `yaml:"log_level" env:"LOG_LEVEL"`
	Storage  StorageConfig  `yaml:"storage"`
	Postgres PostgresConfig `yaml:"postgres"`
	HTTP     HTTPConfig     `yaml:"http"`
	Auth     AuthConfig     `yaml:"auth"`
}

type StorageConfig struct {
	Driver string `yaml:"driver" env:"STORAGE_DRIVER" env-default:"file"`
	// Dir holds the .taskrabbit directory, the home directory is used when empty.
	Dir        string `yaml:"dir" env:"STORAGE_DIR"`
	SQLitePath string `yaml:"sqlite_path" env:"STORAGE_SQLITE_PATH"`
	Namespace  string `yaml:"namespace" env:"STORAGE_NAMESPACE" env-default:"default"`
}

type PostgresConfig struct {
	Host           string        `yaml:"host" env:"POSTGRES_HOST" env-default:"localhost"`
	Port           int           `yaml:"port" env:"POSTGRES_PORT" env-default:"5432"`
	Username       string        `yaml:"username" env:"POSTGRES_USERNAME" env-default:"postgres"`
	Password       string        `yaml:"password" env:"POSTGRES_PASSWORD"`
	Database       string        `yaml:"database" env:"POSTGRES_DATABASE" env-default:"taskrabbit"`
	SSLMode        string        `yaml:"ssl_mode" env:"POSTGRES_SSL_MODE" env-default:"disable"`
	ConnectTimeout time.Duration `yaml:"connect_timeout" env:"POSTGRES_CONNECT_TIMEOUT" env-default:"10s"`
	PingTimeout    time.Duration `yaml:"ping_timeout" env:"POSTGRES_PING_TIMEOUT" env-default:"10s"`
}

type HTTPConfig struct {
	Host            string        `yaml:"host" env:"HTTP_HOST" env-default:"127.0.0.1"`
	Port            string        `yaml:"port" env:"HTTP_PORT" env-default:"8080"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"HTTP_SHUTDOWN_TIMEOUT" env-default:"5s"`
}

type AuthConfig struct {
	// Provider is either "mock", which accepts any credentials and must
	// only be used for development, or "local".
	Provider    string        `yaml:"provider" env:"AUTH_PROVIDER" env-default:"mock"`
	MockLatency time.Duration `yaml:"mock_latency" env:"AUTH_MOCK_LATENCY" env-default:"1s"`
	Issuer      string        `yaml:"issuer" env:"JWT_ISSUER" env-default:"taskrabbit"`
	SigningKey  string        `yaml:"signing_key" env:"JWT_SIGNING_KEY" env-default:"taskrabbit-insecure-dev-key"`
	TokenTTL    time.Duration `yaml:"token_ttl" env:"JWT_TOKEN_TTL" env-default:"24h"`
}

func (c *Config) Validate() error {
	switch c.Env {
	case EnvDev, EnvProd, EnvLocal:
	default:
		return fmt.Errorf("unknown env: %s", c.Env)
	}

	switch c.Storage.Driver {
	case StorageDriverMemory, StorageDriverFile, StorageDriverSQLite, StorageDriverPostgres:
	default:
		return fmt.Errorf("unknown storage driver: %s", c.Storage.Driver)
	}

	switch c.Auth.Provider {
	case AuthProviderMock, AuthProviderLocal:
	default:
		return fmt.Errorf("unknown auth provider: %s", c.Auth.Provider)
	}

	if c.Auth.SigningKey == "" {
		return fmt.Errorf("jwt signing key is empty")
	}
	if c.Auth.TokenTTL <= 0 {
		return fmt.Errorf("invalid jwt token ttl: %s", c.Auth.TokenTTL)
	}
	return nil
}
