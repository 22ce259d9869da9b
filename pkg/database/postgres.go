package database

import (
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/noah-isme/civic-report-api/pkg/config"
)

// NewPostgres returns a configured PostgreSQL pool. DB_ENV=supabase uses the hosted
// connection string, anything else the discrete DB_* parameters.
func NewPostgres(cfg config.DatabaseConfig) (*sqlx.DB, error) {
	dsn, err := DSN(cfg)
	if err != nil {
		return nil, err
	}

	db, err := sqlx.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}

	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}

	db.SetConnMaxLifetime(1 * time.Hour)
	db.SetConnMaxIdleTime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}

// DSN resolves the connection string for the configured environment.
func DSN(cfg config.DatabaseConfig) (string, error) {
	if cfg.Env == config.DBEnvSupabase {
		if cfg.URL == "" {
			return "", fmt.Errorf("SUPABASE_DB_URL is required when DB_ENV=%s", config.DBEnvSupabase)
		}
		return cfg.URL, nil
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host,
		cfg.Port,
		cfg.User,
		cfg.Password,
		cfg.Name,
		cfg.SSLMode,
	), nil
}
