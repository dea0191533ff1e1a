package cli

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/roach88/brewdb/internal/database"
	"github.com/roach88/brewdb/internal/migration"
	"github.com/roach88/brewdb/internal/model"
)

// errSchemaOutdated is returned when the database is older than the
// current schema and auto_migrate is off.
var errSchemaOutdated = errors.New("schema is out of date")

// session is one open database with its schema helper and object stores.
type session struct {
	db       *sql.DB
	dialect  database.Dialect
	helper   *migration.Helper
	registry *model.Registry
}

// openSession opens the configured database without touching its schema.
func openSession(ctx context.Context, opts *RootOptions) (*session, error) {
	db, dialect, err := database.Open(ctx, opts.Config.Database())
	if err != nil {
		return nil, err
	}
	reg, err := model.NewRegistry(db, dialect)
	if err != nil {
		db.Close()
		return nil, err
	}
	return &session{
		db:       db,
		dialect:  dialect,
		helper:   migration.NewHelper(db, dialect),
		registry: reg,
	}, nil
}

// openLoaded opens the database, brings its schema to the latest version
// when configured to, and loads every object store.
func openLoaded(ctx context.Context, opts *RootOptions) (*session, error) {
	s, err := openSession(ctx, opts)
	if err != nil {
		return nil, err
	}
	if err := s.prepare(ctx, opts.Config.AutoMigrate); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

// prepare refuses databases written by a newer release. Older ones are
// upgraded when autoMigrate is set and refused otherwise.
func (s *session) prepare(ctx context.Context, autoMigrate bool) error {
	if autoMigrate {
		from, err := s.helper.UpgradeToLatest(ctx)
		if err != nil {
			return err
		}
		if from < migration.LatestVersion {
			slog.Info("database upgraded on open", "from", from, "to", migration.LatestVersion)
		}
		return s.registry.LoadAll(ctx)
	}

	version, err := s.helper.CurrentVersion(ctx)
	if err != nil {
		return err
	}
	switch {
	case version > migration.LatestVersion:
		return fmt.Errorf("%w: database version %d is newer than %d", migration.ErrInvalidRange, version, migration.LatestVersion)
	case version < migration.LatestVersion:
		return fmt.Errorf("%w: version %d, current is %d", errSchemaOutdated, version, migration.LatestVersion)
	}
	return s.registry.LoadAll(ctx)
}

// tables returns the stores as schema creators.
func (s *session) tables() []migration.TableCreator {
	stores := s.registry.Stores()
	out := make([]migration.TableCreator, 0, len(stores))
	for _, st := range stores {
		out = append(out, st)
	}
	return out
}

func (s *session) Close() {
	if err := s.db.Close(); err != nil {
		slog.Error("error closing database", "error", err)
	}
}
