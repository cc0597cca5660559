package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Config holds all runtime settings, read from the environment.
type Config struct {
	Env        string   `env:"APP_ENV" envDefault:"production"`
	LogLevel   int      `env:"LOG_LEVEL" envDefault:"0"`
	AdminEmail string   `env:"ADMIN_EMAIL"`
	HTTP       HTTP     `envPrefix:"HTTP_"`
	DB         DBConfig `envPrefix:"DB_"`
	JWT        JWT      `envPrefix:"JWT_"`
	Security   Security `envPrefix:"SECURITY_"`
}

// HTTP contains HTTP server parameters.
type HTTP struct {
	Port            string        `env:"PORT" envDefault:"8080"`
	APIVersion      string        `env:"API_VERSION" envDefault:"v1"`
	CORSOrigin      string        `env:"CORS_ORIGIN" envDefault:"*"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"5s"`
	RateLimitWindow time.Duration `env:"RATE_LIMIT_WINDOW" envDefault:"15m"`
	// 0 disables per-IP rate limiting.
	RateLimitMax int `env:"RATE_LIMIT_MAX" envDefault:"100"`
}

// JWT contains token signing parameters. Access and refresh tokens are
// signed with different secrets.
type JWT struct {
	Secret        string        `env:"SECRET,required,notEmpty"`
	RefreshSecret string        `env:"REFRESH_SECRET,required,notEmpty"`
	AccessTTL     time.Duration `env:"ACCESS_TTL" envDefault:"1h"`
	RefreshTTL    time.Duration `env:"REFRESH_TTL" envDefault:"720h"`
}

// Security contains password hashing parameters.
type Security struct {
	BcryptCost int `env:"BCRYPT_COST" envDefault:"12"`
}

// Load parses the environment into a Config.
func Load() (*Config, error) {
	cfg := Config{}
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if cfg.HTTP.RateLimitMax < 0 || (cfg.HTTP.RateLimitMax > 0 && cfg.HTTP.RateLimitWindow <= 0) {
		return nil, fmt.Errorf("HTTP_RATE_LIMIT_MAX must be non-negative and HTTP_RATE_LIMIT_WINDOW positive")
	}
	if cfg.JWT.Secret == cfg.JWT.RefreshSecret {
		return nil, fmt.Errorf("JWT_SECRET and JWT_REFRESH_SECRET must differ")
	}
	return &cfg, nil
}

// IsDevelopment reports whether error details may be exposed to clients.
func (c *Config) IsDevelopment() bool {
	return c.Env == EnvDevelopment
}
