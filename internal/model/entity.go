// Package model holds the persisted brewing entities and the table
// descriptors that map them onto the database.
//
// Every entity embeds NamedEntity, which carries the primary key and the
// name, deleted and display columns shared by all tables. Relations are
// held as keys; resolve them through the Registry.
package model

import (
	"github.com/roach88/brewdb/internal/objectstore"
	"github.com/roach88/brewdb/internal/schema"
)

// Property names shared by every table.
const (
	PropKey     = "id"
	PropName    = "name"
	PropFolder  = "folder"
	PropDeleted = "deleted"
	PropDisplay = "display"
)

// NamedEntity is the state common to every persisted entity.
type NamedEntity struct {
	id      int
	Name    string
	Deleted bool
	Display bool
}

// Key is the primary key, or 0 before the first insert.
func (n *NamedEntity) Key() int { return n.id }

// SetKey is called by the store once the database has assigned a key.
func (n *NamedEntity) SetKey(id int) { n.id = id }

func (n *NamedEntity) named() *NamedEntity { return n }

type namedEntity interface {
	objectstore.Entity
	named() *NamedEntity
}

func newNamed(name string) NamedEntity {
	return NamedEntity{Name: name, Display: true}
}

func namedFromBundle(b objectstore.Bundle) NamedEntity {
	return NamedEntity{
		id:      b.Int(PropKey),
		Name:    b.String(PropName),
		Deleted: b.Bool(PropDeleted),
		Display: b.Bool(PropDisplay),
	}
}

// withNamed adds the getters of the shared columns to getters.
func withNamed[T namedEntity](getters map[string]func(T) any) map[string]func(T) any {
	getters[PropName] = func(o T) any { return o.named().Name }
	getters[PropDeleted] = func(o T) any { return o.named().Deleted }
	getters[PropDisplay] = func(o T) any { return o.named().Display }
	return getters
}

func keyField() schema.Field {
	return schema.Field{Property: PropKey, Column: "id", Type: schema.Int}
}

func nameField() schema.Field {
	return schema.Field{Property: PropName, Column: "name", Type: schema.String}
}

func folderField() schema.Field {
	return schema.Field{Property: PropFolder, Column: "folder", Type: schema.String}
}

// flagFields are the trailing soft-delete columns of every table.
func flagFields() []schema.Field {
	return []schema.Field{
		{Property: PropDeleted, Column: "deleted", Type: schema.Bool},
		{Property: PropDisplay, Column: "display", Type: schema.Bool},
	}
}

func foreignKey(property, column, table string) schema.Field {
	return schema.Field{
		Property:   property,
		Column:     column,
		Type:       schema.Int,
		ForeignKey: &schema.ForeignKey{Table: table, Column: "id"},
	}
}

func fields(fs ...schema.Field) []schema.Field {
	out := append([]schema.Field{keyField()}, fs...)
	return append(out, flagFields()...)
}
