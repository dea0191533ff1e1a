package objectstore

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"github.com/roach88/brewdb/internal/database"
	"github.com/roach88/brewdb/internal/invariant"
	"github.com/roach88/brewdb/internal/schema"
)

// CreateTables creates the primary table and every junction table, without
// their foreign key columns.
func (s *Store[T]) CreateTables(ctx context.Context, q database.Querier) error {
	for _, stmt := range s.mapping.Table.CreateTableStatements(s.dialect) {
		if _, err := s.exec(ctx, q, stmt); err != nil {
			return fmt.Errorf("create tables %s: %w", s.TableName(), err)
		}
	}
	return nil
}

// AddTableConstraints adds the foreign key columns skipped by CreateTables.
// It must only run once the tables of every store exist.
func (s *Store[T]) AddTableConstraints(ctx context.Context, q database.Querier) error {
	for _, stmt := range s.mapping.Table.ForeignKeyStatements(s.dialect) {
		if _, err := s.exec(ctx, q, stmt); err != nil {
			return fmt.Errorf("add constraints %s: %w", s.TableName(), err)
		}
	}
	return nil
}

// LoadAll replaces the cache with every row of the primary table and fills
// the junction-backed properties.
func (s *Store[T]) LoadAll(ctx context.Context) error {
	table := s.mapping.Table
	query := fmt.Sprintf("SELECT %s FROM %s", strings.Join(table.Columns(), ", "), table.Name)

	rows, err := s.query(ctx, s.db, query)
	if err != nil {
		return fmt.Errorf("load %s: %w", table.Name, err)
	}
	defer rows.Close()

	loaded := make(map[int]T)
	pk := table.PrimaryKey()
	for rows.Next() {
		raw := make([]any, len(table.Fields))
		dest := make([]any, len(table.Fields))
		for i := range raw {
			dest[i] = &raw[i]
		}
		if err := rows.Scan(dest...); err != nil {
			return fmt.Errorf("load %s: scan: %w", table.Name, err)
		}

		bundle, err := s.toBundle(raw)
		if err != nil {
			invariant.Violation("unreadable row", "table", table.Name, "error", err)
			continue
		}

		id := bundle.Int(pk.Property)
		if _, dup := loaded[id]; dup {
			invariant.Violation("duplicate primary key", "table", table.Name, "id", id)
			continue
		}
		loaded[id] = s.mapping.New(bundle)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("load %s: iterate: %w", table.Name, err)
	}
	rows.Close()

	for _, j := range table.Junctions {
		if err := s.loadJunction(ctx, j, loaded); err != nil {
			return fmt.Errorf("load %s: %w", table.Name, err)
		}
	}

	s.mu.Lock()
	s.cache = loaded
	s.mu.Unlock()

	slog.Debug("objects loaded", "table", table.Name, "count", len(loaded))
	return nil
}

func (s *Store[T]) toBundle(raw []any) (Bundle, error) {
	fields := s.mapping.Table.Fields
	bundle := make(Bundle, len(fields))
	for i, f := range fields {
		v, err := fromColumn(f, raw[i])
		if err != nil {
			return nil, err
		}
		bundle[f.Property] = v
	}
	return bundle, nil
}

func (s *Store[T]) loadJunction(ctx context.Context, j schema.Junction, loaded map[int]T) error {
	query := fmt.Sprintf("SELECT %s, %s FROM %s ORDER BY %s, %s",
		j.ThisKeyColumn, j.OtherKeyColumn, j.Table, j.ThisKeyColumn, j.OrderBy())

	rows, err := s.query(ctx, s.db, query)
	if err != nil {
		return fmt.Errorf("junction %s: %w", j.Table, err)
	}
	defer rows.Close()

	var order []int
	grouped := make(map[int][]int)
	for rows.Next() {
		var this, other sql.NullInt64
		if err := rows.Scan(&this, &other); err != nil {
			return fmt.Errorf("junction %s: scan: %w", j.Table, err)
		}
		if !this.Valid || !other.Valid {
			slog.Warn("skipping junction row with NULL key", "junction", j.Table)
			continue
		}
		key := int(this.Int64)
		if _, seen := grouped[key]; !seen {
			order = append(order, key)
		}
		grouped[key] = append(grouped[key], int(other.Int64))
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("junction %s: iterate: %w", j.Table, err)
	}

	set := s.mapping.Links[j.Property].Set
	for _, key := range order {
		obj, ok := loaded[key]
		if !ok {
			slog.Warn("junction row references missing object", "junction", j.Table, "table", s.TableName(), "id", key)
			continue
		}
		ids := grouped[key]
		if j.Cardinality == schema.AtMostOne && len(ids) > 1 {
			invariant.Violation("several rows for single-valued junction", "junction", j.Table, "id", key, "count", len(ids))
			ids = ids[:1]
		}
		set(obj, ids)
	}
	return nil
}
