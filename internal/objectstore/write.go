package objectstore

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/roach88/brewdb/internal/database"
	"github.com/roach88/brewdb/internal/invariant"
	"github.com/roach88/brewdb/internal/schema"
)

// Insert writes obj as a new row, assigns the database key to it, writes
// its junction rows and caches it. On failure obj keeps its previous key.
// Objects that already have a key are rejected; use InsertOrUpdate.
func (s *Store[T]) Insert(ctx context.Context, obj T) (T, error) {
	table := s.mapping.Table
	prevKey := obj.Key()
	if prevKey > 0 {
		invariant.Violation("insert of an object that already has a key", "table", table.Name, "id", prevKey)
		return obj, fmt.Errorf("insert %s %d: %w", table.Name, prevKey, ErrAlreadyPersisted)
	}

	tx, err := database.Begin(ctx, s.db, s.dialect)
	if err != nil {
		return obj, fmt.Errorf("insert %s: %w", table.Name, err)
	}
	defer tx.Rollback()

	id, err := s.insertRow(ctx, tx, obj)
	if err != nil {
		return obj, fmt.Errorf("insert %s: %w", table.Name, err)
	}
	obj.SetKey(id)

	for _, j := range table.Junctions {
		if err := s.insertJunctionRows(ctx, tx, j, obj); err != nil {
			obj.SetKey(prevKey)
			return obj, fmt.Errorf("insert %s: %w", table.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		obj.SetKey(prevKey)
		return obj, fmt.Errorf("insert %s: %w", table.Name, err)
	}

	s.mu.Lock()
	s.cache[id] = obj
	s.mu.Unlock()

	slog.Debug("object inserted", "table", table.Name, "id", id)
	s.emit(Event[T]{Kind: EventInserted, Key: id, Object: obj})
	return obj, nil
}

func (s *Store[T]) insertRow(ctx context.Context, q database.Querier, obj T) (int, error) {
	table := s.mapping.Table
	fields := table.Fields[1:]

	cols := make([]string, len(fields))
	marks := make([]string, len(fields))
	args := make([]any, len(fields))
	for i, f := range fields {
		v, err := s.bindValue(f, obj)
		if err != nil {
			return 0, err
		}
		cols[i] = f.Column
		marks[i] = "?"
		args[i] = v
	}

	pk := table.PrimaryKey().Column
	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", table.Name, strings.Join(cols, ", "), strings.Join(marks, ", "))

	if returning := s.dialect.ReturningID(pk); returning != "" {
		query = database.Rebind(s.dialect, query+returning)
		var id int64
		if err := q.QueryRowContext(ctx, query, args...).Scan(&id); err != nil {
			slog.Error("sql statement failed", "table", table.Name, "sql", query, "error", err)
			return 0, err
		}
		return s.checkKey(id)
	}

	res, err := s.exec(ctx, q, query, args...)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}
	return s.checkKey(id)
}

func (s *Store[T]) checkKey(id int64) (int, error) {
	if !invariant.Check(id > 0, "database assigned a non-positive key", "table", s.TableName(), "id", id) {
		return 0, fmt.Errorf("%w: assigned key %d", ErrBadValue, id)
	}
	return int(id), nil
}

// Update writes every non-key field of obj and resynchronises its junction
// tables.
func (s *Store[T]) Update(ctx context.Context, obj T) error {
	table := s.mapping.Table
	id := obj.Key()
	if id <= 0 {
		return fmt.Errorf("update %s: %w", table.Name, ErrNotPersisted)
	}

	fields := table.Fields[1:]
	sets := make([]string, len(fields))
	args := make([]any, 0, len(fields)+1)
	for i, f := range fields {
		v, err := s.bindValue(f, obj)
		if err != nil {
			return fmt.Errorf("update %s: %w", table.Name, err)
		}
		sets[i] = f.Column + " = ?"
		args = append(args, v)
	}
	args = append(args, id)
	query := fmt.Sprintf("UPDATE %s SET %s WHERE %s = ?", table.Name, strings.Join(sets, ", "), table.PrimaryKey().Column)

	tx, err := database.Begin(ctx, s.db, s.dialect)
	if err != nil {
		return fmt.Errorf("update %s: %w", table.Name, err)
	}
	defer tx.Rollback()

	res, err := s.exec(ctx, tx, query, args...)
	if err != nil {
		return fmt.Errorf("update %s: %w", table.Name, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("update %s %d: %w", table.Name, id, ErrNotFound)
	}

	for _, j := range table.Junctions {
		if err := s.replaceJunctionRows(ctx, tx, j, obj); err != nil {
			return fmt.Errorf("update %s: %w", table.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("update %s: %w", table.Name, err)
	}

	s.remember(id, obj)
	return nil
}

// UpdateProperty writes a single field, or resynchronises a single
// junction table, for obj.
func (s *Store[T]) UpdateProperty(ctx context.Context, obj T, property string) error {
	table := s.mapping.Table
	id := obj.Key()
	if id <= 0 {
		return fmt.Errorf("update %s.%s: %w", table.Name, property, ErrNotPersisted)
	}

	field, isField := table.Field(property)
	junction, isJunction := table.Junction(property)
	if isField && field.Property == table.PrimaryKey().Property {
		isField = false
	}
	if !isField && !isJunction {
		invariant.Violation("update of unknown property", "table", table.Name, "property", property)
		return fmt.Errorf("update %s.%s: %w", table.Name, property, ErrUnknownProperty)
	}

	tx, err := database.Begin(ctx, s.db, s.dialect)
	if err != nil {
		return fmt.Errorf("update %s.%s: %w", table.Name, property, err)
	}
	defer tx.Rollback()

	if isField {
		v, err := s.bindValue(field, obj)
		if err != nil {
			return fmt.Errorf("update %s.%s: %w", table.Name, property, err)
		}
		query := fmt.Sprintf("UPDATE %s SET %s = ? WHERE %s = ?", table.Name, field.Column, table.PrimaryKey().Column)
		res, err := s.exec(ctx, tx, query, v, id)
		if err != nil {
			return fmt.Errorf("update %s.%s: %w", table.Name, property, err)
		}
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			return fmt.Errorf("update %s.%s %d: %w", table.Name, property, id, ErrNotFound)
		}
	} else if err := s.replaceJunctionRows(ctx, tx, junction, obj); err != nil {
		return fmt.Errorf("update %s.%s: %w", table.Name, property, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("update %s.%s: %w", table.Name, property, err)
	}

	s.remember(id, obj)
	s.emit(Event[T]{Kind: EventPropertyChanged, Key: id, Property: property, Object: obj})
	return nil
}

// InsertOrUpdate inserts obj when it has no key yet and updates it
// otherwise.
func (s *Store[T]) InsertOrUpdate(ctx context.Context, obj T) (T, error) {
	if obj.Key() > 0 {
		return obj, s.Update(ctx, obj)
	}
	return s.Insert(ctx, obj)
}

// SoftDelete evicts id from the cache without touching the database. The
// row is expected to have been flagged deleted already.
func (s *Store[T]) SoftDelete(id int) {
	s.mu.Lock()
	obj, ok := s.cache[id]
	delete(s.cache, id)
	s.mu.Unlock()

	if !ok {
		slog.Warn("soft delete of uncached object", "table", s.TableName(), "id", id)
		return
	}
	s.emit(Event[T]{Kind: EventDeleted, Key: id, Object: obj})
}

// HardDelete removes the row and all of its junction rows, then evicts it.
func (s *Store[T]) HardDelete(ctx context.Context, id int) error {
	table := s.mapping.Table

	tx, err := database.Begin(ctx, s.db, s.dialect)
	if err != nil {
		return fmt.Errorf("delete %s: %w", table.Name, err)
	}
	defer tx.Rollback()

	for _, j := range table.Junctions {
		if err := s.deleteJunctionRows(ctx, tx, j, id); err != nil {
			return fmt.Errorf("delete %s: %w", table.Name, err)
		}
	}
	query := fmt.Sprintf("DELETE FROM %s WHERE %s = ?", table.Name, table.PrimaryKey().Column)
	if _, err := s.exec(ctx, tx, query, id); err != nil {
		return fmt.Errorf("delete %s: %w", table.Name, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("delete %s: %w", table.Name, err)
	}

	s.mu.Lock()
	obj, ok := s.cache[id]
	delete(s.cache, id)
	s.mu.Unlock()

	if ok {
		s.emit(Event[T]{Kind: EventDeleted, Key: id, Object: obj})
	}
	return nil
}

// remember caches obj under id, keeping one instance per key.
func (s *Store[T]) remember(id int, obj T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cached, ok := s.cache[id]; ok && any(cached) != any(obj) {
		invariant.Violation("second instance written for cached key", "table", s.TableName(), "id", id)
	}
	s.cache[id] = obj
}

func (s *Store[T]) bindValue(f schema.Field, obj T) (any, error) {
	v, err := toColumn(f, s.mapping.Fields[f.Property](obj))
	if err != nil {
		invariant.Violation("unbindable value", "table", s.TableName(), "property", f.Property, "error", err)
		return nil, err
	}
	return v, nil
}

func (s *Store[T]) replaceJunctionRows(ctx context.Context, q database.Querier, j schema.Junction, obj T) error {
	if err := s.deleteJunctionRows(ctx, q, j, obj.Key()); err != nil {
		return err
	}
	return s.insertJunctionRows(ctx, q, j, obj)
}

func (s *Store[T]) deleteJunctionRows(ctx context.Context, q database.Querier, j schema.Junction, id int) error {
	query := fmt.Sprintf("DELETE FROM %s WHERE %s = ?", j.Table, j.ThisKeyColumn)
	if _, err := s.exec(ctx, q, query, id); err != nil {
		return fmt.Errorf("junction %s: %w", j.Table, err)
	}
	return nil
}

func (s *Store[T]) insertJunctionRows(ctx context.Context, q database.Querier, j schema.Junction, obj T) error {
	ids := s.mapping.Links[j.Property].Get(obj)
	if j.Cardinality == schema.AtMostOne && len(ids) > 1 {
		invariant.Violation("several values for single-valued junction", "junction", j.Table, "count", len(ids))
		ids = ids[:1]
	}

	query := fmt.Sprintf("INSERT INTO %s (%s, %s) VALUES (?, ?)", j.Table, j.ThisKeyColumn, j.OtherKeyColumn)
	if j.OrderColumn != "" {
		query = fmt.Sprintf("INSERT INTO %s (%s, %s, %s) VALUES (?, ?, ?)", j.Table, j.ThisKeyColumn, j.OtherKeyColumn, j.OrderColumn)
	}

	position := 0
	for _, other := range ids {
		if other <= 0 {
			continue
		}
		position++
		args := []any{obj.Key(), other}
		if j.OrderColumn != "" {
			args = append(args, position)
		}
		if _, err := s.exec(ctx, q, query, args...); err != nil {
			return fmt.Errorf("junction %s: %w", j.Table, err)
		}
	}
	return nil
}
