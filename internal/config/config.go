package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config aggregates all runtime settings.
type Config struct {
	App       AppConfig       `envPrefix:"GUARD_"`
	HTTP      HTTPConfig      `envPrefix:"GUARD_HTTP_"`
	Database  DatabaseConfig  `envPrefix:"GUARD_DB_"`
	Redis     RedisConfig     `envPrefix:"GUARD_REDIS_"`
	Token     TokenConfig     `envPrefix:"GUARD_TOKEN_"`
	Security  SecurityConfig  `envPrefix:"GUARD_SECURITY_"`
	Importer  ImporterConfig  `envPrefix:"GUARD_IMPORT_"`
	Assistant AssistantConfig `envPrefix:"GUARD_ASSISTANT_"`
	Lookup    LookupConfig    `envPrefix:"GUARD_LOOKUP_"`
}

type AppConfig struct {
	Environment string `env:"ENV" envDefault:"development"`
	ServiceName string `env:"SERVICE_NAME" envDefault:"base-security-service"`
}

type HTTPConfig struct {
	Host              string        `env:"HOST" envDefault:"0.0.0.0"`
	Port              int           `env:"PORT" envDefault:"4180"`
	ReadTimeout       time.Duration `env:"READ_TIMEOUT" envDefault:"5s"`
	WriteTimeout      time.Duration `env:"WRITE_TIMEOUT" envDefault:"30s"`
	IdleTimeout       time.Duration `env:"IDLE_TIMEOUT" envDefault:"120s"`
	ReadHeaderTimeout time.Duration `env:"READ_HEADER_TIMEOUT" envDefault:"5s"`
	ShutdownTimeout   time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"25s"`
}

type DatabaseConfig struct {
	URL             string        `env:"URL"`
	MaxOpenConns    int           `env:"MAX_OPEN_CONNS" envDefault:"20"`
	MaxIdleConns    int           `env:"MAX_IDLE_CONNS" envDefault:"5"`
	ConnMaxLifetime time.Duration `env:"CONN_MAX_LIFETIME" envDefault:"30m"`
	RunMigrations   bool          `env:"RUN_MIGRATIONS" envDefault:"true"`
}

type RedisConfig struct {
	Addr      string `env:"ADDR" envDefault:"127.0.0.1:6379"`
	Password  string `env:"PASSWORD"`
	DB        int    `env:"DB" envDefault:"0"`
	EnableTLS bool   `env:"ENABLE_TLS" envDefault:"false"`
	Namespace string `env:"NAMESPACE" envDefault:"guard"`
}

type TokenConfig struct {
	Issuer          string        `env:"ISSUER" envDefault:"https://guardiao.intraer.local"`
	Audience        string        `env:"AUDIENCE" envDefault:"guardiao"`
	PrivateKeyPath  string        `env:"PRIVATE_KEY_PATH"`
	PublicKeyPath   string        `env:"PUBLIC_KEY_PATH"`
	AccessTokenTTL  time.Duration `env:"ACCESS_TTL" envDefault:"15m"`
	RefreshTokenTTL time.Duration `env:"REFRESH_TTL" envDefault:"720h"`
}

type SecurityConfig struct {
	PasswordMinLength int    `env:"PASSWORD_MIN_LENGTH" envDefault:"10"`
	Argon2Time        uint32 `env:"ARGON2_TIME" envDefault:"3"`
	Argon2Memory      uint32 `env:"ARGON2_MEMORY" envDefault:"65536"`
	Argon2Threads     uint8  `env:"ARGON2_THREADS" envDefault:"2"`
	Argon2KeyLength   uint32 `env:"ARGON2_KEY_LENGTH" envDefault:"32"`
}

type ImporterConfig struct {
	BatchSize int `env:"BATCH_SIZE" envDefault:"100"`
}

type AssistantConfig struct {
	Enabled bool          `env:"ENABLED" envDefault:"false"`
	BaseURL string        `env:"BASE_URL"`
	APIKey  string        `env:"API_KEY"`
	Model   string        `env:"MODEL" envDefault:"gemini-1.5-flash"`
	Timeout time.Duration `env:"TIMEOUT" envDefault:"30s"`
}

type LookupConfig struct {
	DebounceDelay time.Duration `env:"DEBOUNCE_DELAY" envDefault:"800ms"`
	CacheTTL      time.Duration `env:"CACHE_TTL" envDefault:"10m"`
}

// Load parses environment variables into Config and performs validation.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if cfg.Database.URL == "" {
		return nil, fmt.Errorf("GUARD_DB_URL is required")
	}
	if cfg.Token.PrivateKeyPath == "" || cfg.Token.PublicKeyPath == "" {
		return nil, fmt.Errorf("GUARD_TOKEN_PRIVATE_KEY_PATH and GUARD_TOKEN_PUBLIC_KEY_PATH are required")
	}
	if cfg.Importer.BatchSize <= 0 {
		return nil, fmt.Errorf("GUARD_IMPORT_BATCH_SIZE must be positive")
	}
	if cfg.Assistant.Enabled && cfg.Assistant.BaseURL == "" {
		return nil, fmt.Errorf("GUARD_ASSISTANT_BASE_URL is required when the assistant is enabled")
	}

	return cfg, nil
}
