package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const modeProduction = "production"

type Config struct {
	Port            string        `env:"PORT"                 envDefault:"3000"`
	DatabaseURL     string        `env:"DATABASE_URL,required,notEmpty"`
	Mode            string        `env:"APP_ENV"`
	NodeEnv         string        `env:"NODE_ENV"             envDefault:"development"`
	DBMaxConns      int32         `env:"DB_MAX_CONNS"         envDefault:"10"`
	DBQueryTimeout  time.Duration `env:"DB_QUERY_TIMEOUT"     envDefault:"10s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT"     envDefault:"10s"`
	AllowedOrigins  []string      `env:"CORS_ALLOWED_ORIGINS" envDefault:"*" envSeparator:","`
}

// Load reads an optional .env file from the working directory and then the
// process environment. Variables already set in the environment win.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	return Parse()
}

func Parse() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if cfg.DBMaxConns <= 0 {
		return Config{}, fmt.Errorf("parse env: DB_MAX_CONNS must be positive, got %d", cfg.DBMaxConns)
	}
	return cfg, nil
}

// Deployment returns the effective deployment mode. APP_ENV takes precedence
// over NODE_ENV so existing deployments keep working unchanged.
func (c Config) Deployment() string {
	if c.Mode != "" {
		return strings.ToLower(c.Mode)
	}
	return strings.ToLower(c.NodeEnv)
}

func (c Config) Production() bool {
	return c.Deployment() == modeProduction
}

func (c Config) Addr() string {
	return ":" + c.Port
}
