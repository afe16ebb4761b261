package config

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// NewDB opens a Postgres connection pool through the pgx stdlib driver and
// verifies connectivity before returning.
func NewDB(dsn string, maxOpenConns, maxIdleConns int, maxIdleTime string) (*sql.DB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("empty postgres DSN")
	}

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(maxOpenConns)
	db.SetMaxIdleConns(maxIdleConns)

	idle, err := time.ParseDuration(maxIdleTime)
	if err != nil {
		idle = 15 * time.Minute
	}
	db.SetConnMaxIdleTime(idle)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}

// PostgresDSN assembles a connection string from the POSTGRES_* environment
// variables.
func PostgresDSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		GetString("POSTGRES_USER", "postgres"),
		GetString("POSTGRES_PASSWORD", "postgres"),
		GetString("POSTGRES_HOST", "localhost"),
		GetString("POSTGRES_PORT", "5432"),
		GetString("POSTGRES_DB", "directory"),
		GetString("POSTGRES_SSLMODE", "disable"),
	)
}
