// Package migration creates databases at the latest schema version and
// carries older databases forward one version at a time.
//
// A migration runs in a single transaction with foreign keys disabled, so a
// failure at any step leaves the database at its original version.
package migration

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/roach88/brewdb/internal/database"
)

// LatestVersion is the schema version Create writes.
const LatestVersion = 11

var (
	// ErrInvalidRange is returned for backward, no-op or out-of-range
	// migration requests. No SQL has been issued when it is returned.
	ErrInvalidRange = errors.New("invalid migration range")

	// ErrUnknownVersion is returned when the stored version is unreadable.
	ErrUnknownVersion = errors.New("unknown schema version")
)

// TableCreator creates the tables of one entity type.
type TableCreator interface {
	TableName() string
	CreateTables(ctx context.Context, q database.Querier) error
	AddTableConstraints(ctx context.Context, q database.Querier) error
}

// Helper creates and upgrades the schema of one database.
type Helper struct {
	db      *sql.DB
	dialect database.Dialect
}

func NewHelper(db *sql.DB, d database.Dialect) *Helper {
	return &Helper{db: db, dialect: d}
}

// Create builds a fresh database at LatestVersion from the given tables.
// Every table is created before any foreign key column is added.
func (h *Helper) Create(ctx context.Context, tables ...TableCreator) error {
	tx, err := database.Begin(ctx, h.db, h.dialect)
	if err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	defer tx.Rollback()

	for _, t := range tables {
		if err := t.CreateTables(ctx, tx); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
	}
	for _, t := range tables {
		if err := t.AddTableConstraints(ctx, tx); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
	}

	settings := []Query{
		{SQL: settingsTable(typesOf(h.dialect), "settings")},
		{SQL: "INSERT INTO settings (id, version, repopulatechildrenonnextstart) VALUES (1, ?, 0)", Args: []any{LatestVersion}},
	}
	if err := ExecuteQueries(ctx, tx, h.dialect, settings); err != nil {
		return fmt.Errorf("create schema: settings: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	slog.Info("schema created", "version", LatestVersion, "tables", len(tables))
	return nil
}

// CreateLegacy builds an empty database at an older schema version by
// creating the oldest known schema and migrating it forward, all in one
// transaction.
func (h *Helper) CreateLegacy(ctx context.Context, version int) error {
	if version < 1 || version > LatestVersion {
		return fmt.Errorf("%w: no schema version %d", ErrInvalidRange, version)
	}

	tx, err := database.Begin(ctx, h.db, h.dialect, database.DisableForeignKeys)
	if err != nil {
		return fmt.Errorf("create legacy schema: %w", err)
	}
	defer tx.Rollback()

	if err := ExecuteQueries(ctx, tx, h.dialect, schemaV1(h.dialect)); err != nil {
		return fmt.Errorf("create legacy schema: %w", err)
	}
	if err := h.migrateRange(ctx, tx, 1, version); err != nil {
		return fmt.Errorf("create legacy schema: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("create legacy schema: %w", err)
	}
	slog.Info("legacy schema created", "version", version)
	return nil
}

// CurrentVersion reads the stored schema version. It returns -1 with an
// error when the version cannot be determined.
func (h *Helper) CurrentVersion(ctx context.Context) (int, error) {
	var raw sql.NullString
	err := h.db.QueryRowContext(ctx, "SELECT version FROM settings WHERE id = 1").Scan(&raw)
	if err != nil {
		slog.Error("failed to read schema version", "error", err)
		return -1, fmt.Errorf("read schema version: %w", err)
	}
	if !raw.Valid {
		return -1, fmt.Errorf("%w: NULL", ErrUnknownVersion)
	}

	value := strings.TrimSpace(raw.String)
	if v, err := strconv.Atoi(value); err == nil {
		return v, nil
	}
	if v, ok := legacyVersions[value]; ok {
		return v, nil
	}
	slog.Error("unrecognised schema version", "version", value)
	return -1, fmt.Errorf("%w: %q", ErrUnknownVersion, value)
}

// Migrate carries the database from oldVersion to newVersion. Either every
// step is applied or none is.
func (h *Helper) Migrate(ctx context.Context, oldVersion, newVersion int) error {
	if oldVersion >= newVersion {
		slog.Error("refusing backward migration", "from", oldVersion, "to", newVersion)
		return fmt.Errorf("%w: %d to %d is not forward", ErrInvalidRange, oldVersion, newVersion)
	}
	if oldVersion < 1 || newVersion > LatestVersion {
		slog.Error("refusing migration outside known versions", "from", oldVersion, "to", newVersion, "latest", LatestVersion)
		return fmt.Errorf("%w: %d to %d outside 1..%d", ErrInvalidRange, oldVersion, newVersion, LatestVersion)
	}

	tx, err := database.Begin(ctx, h.db, h.dialect, database.DisableForeignKeys)
	if err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	defer tx.Rollback()

	if err := h.migrateRange(ctx, tx, oldVersion, newVersion); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	slog.Info("schema migrated", "from", oldVersion, "to", newVersion)
	return nil
}

// migrateRange applies every step from oldVersion up to newVersion inside tx.
func (h *Helper) migrateRange(ctx context.Context, tx *database.Transaction, oldVersion, newVersion int) error {
	for v := oldVersion; v < newVersion; v++ {
		if err := h.migrateNext(ctx, tx, v); err != nil {
			slog.Error("migration step failed, rolling back", "from", oldVersion, "to", newVersion, "step", v, "tx", tx.ID())
			return fmt.Errorf("migrate %d to %d: %w", v, v+1, err)
		}
		slog.Debug("migration step applied", "version", v+1, "tx", tx.ID())
	}
	return nil
}

// migrateNext applies the single step from oldVersion to oldVersion+1.
// Steps up to version 4 write the version themselves.
func (h *Helper) migrateNext(ctx context.Context, q database.Querier, oldVersion int) error {
	s, ok := steps[oldVersion]
	if !ok {
		return fmt.Errorf("%w: no step from %d", ErrUnknownVersion, oldVersion)
	}
	if err := ExecuteQueries(ctx, q, h.dialect, s(h.dialect)); err != nil {
		return err
	}
	if oldVersion <= 3 {
		return nil
	}
	return ExecuteQueries(ctx, q, h.dialect, []Query{
		{SQL: "UPDATE settings SET version = ? WHERE id = 1", Args: []any{oldVersion + 1}},
	})
}

// UpgradeToLatest migrates the database to LatestVersion if it is older.
func (h *Helper) UpgradeToLatest(ctx context.Context) (from int, err error) {
	from, err = h.CurrentVersion(ctx)
	if err != nil {
		return from, err
	}
	if from > LatestVersion {
		return from, fmt.Errorf("%w: database version %d is newer than %d", ErrInvalidRange, from, LatestVersion)
	}
	if from == LatestVersion {
		return from, nil
	}
	return from, h.Migrate(ctx, from, LatestVersion)
}
