package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	_ "github.com/joho/godotenv/autoload"
)

const (
	EnvDev   = "dev"
	EnvProd  = "prod"
	EnvLocal = "local"
)

type Config struct {
	Env             string `yaml:"env" env:"TICK_ENV" env-default:"local"`
	LogLevel        string `yaml:"log_level" env:"TICK_LOG_LEVEL" env-default:"info"`
	DefaultTimeZone string `yaml:"default_time_zone" env:"TICK_DEFAULT_TIMEZONE" env-default:"UTC"`

	Database DatabaseConfig `yaml:"database"`
	HTTP     HTTPConfig     `yaml:"http"`
	Auth     AuthConfig     `yaml:"auth"`
	User     UserConfig     `yaml:"user"`
}

type DatabaseConfig struct {
	Driver   string `yaml:"driver" env:"TICK_DB_DRIVER" env-default:"sqlite"`
	DSN      string `yaml:"dsn" env:"TICK_DB_DSN"`
	LogLevel string `yaml:"log_level" env:"TICK_DB_LOG_LEVEL" env-default:"silent"`
}

type HTTPConfig struct {
	Host            string        `yaml:"host" env:"TICK_HTTP_HOST" env-default:"0.0.0.0"`
	Port            string        `yaml:"port" env:"TICK_HTTP_PORT" env-default:"8080"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"TICK_HTTP_SHUTDOWN_TIMEOUT" env-default:"5s"`
}

type AuthConfig struct {
	SigningKey string        `yaml:"signing_key" env:"TICK_AUTH_SIGNING_KEY"`
	Issuer     string        `yaml:"issuer" env:"TICK_AUTH_ISSUER" env-default:"tick"`
	TokenTTL   time.Duration `yaml:"token_ttl" env:"TICK_AUTH_TOKEN_TTL" env-default:"720h"`
}

// UserConfig names the account the CLI acts as.
type UserConfig struct {
	Email string `yaml:"email" env:"TICK_USER" env-default:"me@localhost"`
}

// Load reads configuration from the YAML file at path, with environment
// variables taking precedence. An empty path, or a path that does not
// exist, reads the environment only.
func Load(path string) (*Config, error) {
	cfg := new(Config)

	if path == "" {
		if err := cleanenv.ReadEnv(cfg); err != nil {
			return nil, fmt.Errorf("failed to read env: %w", err)
		}
		return cfg.validated()
	}

	if err := cleanenv.ReadConfig(path, cfg); err != nil {
		var pe *os.PathError
		if !errors.As(err, &pe) {
			return nil, fmt.Errorf("failed to read config %q: %w", path, err)
		}
		if err := cleanenv.ReadEnv(cfg); err != nil {
			return nil, fmt.Errorf("failed to read env: %w", err)
		}
	}

	return cfg.validated()
}

func (c *Config) validated() (*Config, error) {
	switch c.Env {
	case EnvDev, EnvProd, EnvLocal:
	default:
		return nil, fmt.Errorf("unknown env: %s", c.Env)
	}
	if _, err := time.LoadLocation(c.DefaultTimeZone); err != nil {
		return nil, fmt.Errorf("invalid default time zone %q: %w", c.DefaultTimeZone, err)
	}
	return c, nil
}
