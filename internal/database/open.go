package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

// Config selects the engine and the location of the database.
type Config struct {
	Engine Engine
	// Path is the SQLite database file.
	Path string
	// URL is the PostgreSQL connection string.
	URL string
}

// Open opens and verifies a database connection and returns it together
// with the engine's dialect.
//
// SQLite pools are limited to a single connection: SQLite only supports one
// writer at a time and the session pragmas apply per connection.
func Open(ctx context.Context, cfg Config) (*sql.DB, Dialect, error) {
	dialect, err := DialectFor(cfg.Engine)
	if err != nil {
		return nil, nil, err
	}

	driver, dsn := "sqlite3", cfg.Path
	if cfg.Engine == EnginePostgres {
		driver, dsn = "postgres", cfg.URL
	}
	if dsn == "" {
		return nil, nil, fmt.Errorf("no location configured for %s database", cfg.Engine)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if cfg.Engine == EngineSQLite {
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
	}

	if err := applyPragmas(ctx, db, dialect); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("failed to apply pragmas: %w", err)
	}

	slog.Debug("database opened", "engine", cfg.Engine, "path", cfg.Path)
	return db, dialect, nil
}

func applyPragmas(ctx context.Context, db *sql.DB, d Dialect) error {
	for _, pragma := range d.SessionPragmas() {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}
	return nil
}
