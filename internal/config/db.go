package config

import (
	"context"
	"embed"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrations embed.FS

// DBConfig holds database connection parameters
type DBConfig struct {
	Host          string        `env:"HOST" envDefault:"localhost"`
	Port          string        `env:"PORT" envDefault:"5432"`
	User          string        `env:"USER" envDefault:"postgres"`
	Password      string        `env:"PASSWORD"`
	Name          string        `env:"NAME" envDefault:"ecommerce"`
	SSLMode       string        `env:"SSLMODE" envDefault:"disable"`
	MaxRetries    int           `env:"MAX_RETRIES" envDefault:"5"`
	RetryInterval time.Duration `env:"RETRY_INTERVAL" envDefault:"5s"`
}

// DSN renders the connection string understood by pgx.
func (c DBConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode)
}

// ConnectDB establishes a connection to the PostgreSQL database
func ConnectDB(ctx context.Context, cfg DBConfig, log *slog.Logger) (*pgxpool.Pool, error) {
	var pool *pgxpool.Pool
	var err error

	attempts := cfg.MaxRetries
	if attempts < 1 {
		attempts = 1
	}

	for i := 0; i < attempts; i++ {
		pool, err = pgxpool.New(ctx, cfg.DSN())
		if err == nil {
			err = pool.Ping(ctx)
			if err == nil {
				log.Info("connected to postgres", "host", cfg.Host, "db", cfg.Name)
				return pool, nil
			}
			pool.Close()
		}
		log.Warn("database connection failed", "attempt", i+1, "max", attempts, "error", err, "retry_in", cfg.RetryInterval)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(cfg.RetryInterval):
		}
	}
	return nil, fmt.Errorf("unable to connect to database after %d attempts: %w", attempts, err)
}

// AutoMigrate applies the embedded goose migrations.
func AutoMigrate(ctx context.Context, pool *pgxpool.Pool) error {
	db := stdlib.OpenDBFromPool(pool)
	defer db.Close()

	goose.SetBaseFS(migrations)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("unable to set migration dialect: %w", err)
	}
	if err := goose.UpContext(ctx, db, "migrations"); err != nil {
		return fmt.Errorf("unable to apply migrations: %w", err)
	}
	return nil
}
