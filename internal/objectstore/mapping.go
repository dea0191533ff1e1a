package objectstore

import (
	"errors"
	"fmt"
	"time"

	"github.com/roach88/brewdb/internal/schema"
)

var (
	// ErrNotFound is returned when no row or cached object has the key.
	ErrNotFound = errors.New("object not found")

	// ErrUnknownProperty is returned by UpdateProperty for a property that
	// is neither a field nor a junction of the table.
	ErrUnknownProperty = errors.New("unknown property")

	// ErrNotPersisted is returned by Update for objects without a key.
	ErrNotPersisted = errors.New("object has not been inserted")

	// ErrAlreadyPersisted is returned by Insert for objects that already
	// have a key.
	ErrAlreadyPersisted = errors.New("object has already been inserted")

	// ErrBadValue is returned when a value does not fit its field type.
	ErrBadValue = errors.New("value does not match field type")
)

// Entity is implemented by every persisted type.
type Entity interface {
	// Key is the primary key, or <= 0 before the first insert.
	Key() int
	SetKey(id int)
}

// Bundle carries the values of one row keyed by property name. Enum values
// are already converted to their int form.
type Bundle map[string]any

func (b Bundle) Int(property string) int {
	v, _ := b[property].(int)
	return v
}

func (b Bundle) Float(property string) float64 {
	v, _ := b[property].(float64)
	return v
}

func (b Bundle) String(property string) string {
	v, _ := b[property].(string)
	return v
}

func (b Bundle) Bool(property string) bool {
	v, _ := b[property].(bool)
	return v
}

func (b Bundle) Time(property string) time.Time {
	v, _ := b[property].(time.Time)
	return v
}

// Link reads and writes a junction-backed property. For AtMostOne
// junctions the slice holds zero or one key.
type Link[T Entity] struct {
	Get func(T) []int
	Set func(T, []int)
}

// Mapping binds a table descriptor to the accessors of T.
type Mapping[T Entity] struct {
	Table *schema.Table
	// New builds an object from a loaded row.
	New func(Bundle) T
	// Fields holds a getter for every non-key property. Enum getters
	// return int.
	Fields map[string]func(T) any
	// Links holds the accessors of every junction property.
	Links map[string]Link[T]
}

func (m *Mapping[T]) validate() error {
	if m.Table == nil {
		return errors.New("mapping has no table")
	}
	if err := m.Table.Validate(); err != nil {
		return err
	}
	if m.New == nil {
		return fmt.Errorf("table %s: mapping has no constructor", m.Table.Name)
	}
	for _, f := range m.Table.Fields[1:] {
		if m.Fields[f.Property] == nil {
			return fmt.Errorf("table %s: no getter for %s", m.Table.Name, f.Property)
		}
	}
	for _, j := range m.Table.Junctions {
		l, ok := m.Links[j.Property]
		if !ok || l.Get == nil || l.Set == nil {
			return fmt.Errorf("table %s: no accessors for %s", m.Table.Name, j.Property)
		}
	}
	return nil
}
