// Package sqlstore persists comparison sessions through sqlx. Queries are
// written with '?' placeholders and rebound per driver, so the same code runs
// against PostgreSQL (pgx) and SQLite (modernc).
package sqlstore

import (
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"tradelens/internal/config"
)

// driverNames maps config driver names to database/sql driver names.
var driverNames = map[string]string{
	"postgres": "pgx",
	"sqlite":   "sqlite",
}

func init() {
	sqlx.BindDriver("sqlite", sqlx.QUESTION)
}

// NewDB opens a connection pool for the configured driver.
func NewDB(cfg *config.DBConfig) (*sqlx.DB, error) {
	driver, ok := driverNames[cfg.Driver]
	if !ok {
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
	db, err := sqlx.Connect(driver, cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("connecting to %s: %w", cfg.Driver, err)
	}
	if cfg.Driver == "sqlite" {
		// one writer at a time
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(cfg.MaxOpen)
		db.SetMaxIdleConns(cfg.MaxIdle)
	}
	return db, nil
}
