package schema

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/roach88/brewdb/internal/database"
)

// FieldType is the semantic type of a persisted property.
type FieldType int

const (
	Bool FieldType = iota
	Int
	UInt
	Double
	String
	Date
	// Enum properties are held as int in memory and stored as strings.
	Enum
)

func (t FieldType) String() string {
	switch t {
	case Bool:
		return "bool"
	case Int:
		return "int"
	case UInt:
		return "uint"
	case Double:
		return "double"
	case String:
		return "string"
	case Date:
		return "date"
	case Enum:
		return "enum"
	default:
		return "FieldType(" + strconv.Itoa(int(t)) + ")"
	}
}

// ColumnType is the storage type used for t.
func (t FieldType) ColumnType() database.ColumnType {
	switch t {
	case Bool:
		return database.Bool
	case Int:
		return database.Int
	case UInt:
		return database.UInt
	case Double:
		return database.Double
	case Date:
		return database.Date
	default:
		return database.String
	}
}

// ForeignKey names the column a field references.
type ForeignKey struct {
	Table  string
	Column string
}

// Field describes one column of a primary table.
type Field struct {
	Property   string
	Column     string
	Type       FieldType
	Enum       *EnumMapping
	ForeignKey *ForeignKey
}

// IsForeignKey reports whether the column references another table.
func (f Field) IsForeignKey() bool { return f.ForeignKey != nil }

// Cardinality of a junction-backed property.
type Cardinality int

const (
	AtMostOne Cardinality = iota
	Many
)

// Junction describes an association stored in its own table rather than as
// a column of the owning table.
type Junction struct {
	Table          string
	ThisKeyColumn  string
	OtherKeyColumn string
	// OrderColumn, when set, holds the 1-based position of each row.
	OrderColumn string
	// OtherTable is referenced by OtherKeyColumn.
	OtherTable string
	// OtherTableColumn defaults to "id".
	OtherTableColumn string
	Property         string
	Cardinality      Cardinality
}

// OtherTableKey is the column OtherKeyColumn references.
func (j Junction) OtherTableKey() string {
	if j.OtherTableColumn != "" {
		return j.OtherTableColumn
	}
	return "id"
}

// OrderBy is the column rows for one owner are sorted on.
func (j Junction) OrderBy() string {
	if j.OrderColumn != "" {
		return j.OrderColumn
	}
	return j.OtherKeyColumn
}

// Table describes how one entity type is persisted. The first field is
// always the integer primary key, assigned by the database on insert.
type Table struct {
	Name      string
	Fields    []Field
	Junctions []Junction
}

// PrimaryKey returns the first field.
func (t *Table) PrimaryKey() Field { return t.Fields[0] }

// Field looks up a field by property name.
func (t *Table) Field(property string) (Field, bool) {
	for _, f := range t.Fields {
		if f.Property == property {
			return f, true
		}
	}
	return Field{}, false
}

// Junction looks up a junction by the property it backs.
func (t *Table) Junction(property string) (Junction, bool) {
	for _, j := range t.Junctions {
		if j.Property == property {
			return j, true
		}
	}
	return Junction{}, false
}

// Columns returns every column name in field order.
func (t *Table) Columns() []string {
	cols := make([]string, len(t.Fields))
	for i, f := range t.Fields {
		cols[i] = f.Column
	}
	return cols
}

// Validate checks the structural rules every descriptor must follow.
func (t *Table) Validate() error {
	if t.Name == "" {
		return errors.New("table has no name")
	}
	if len(t.Fields) == 0 {
		return fmt.Errorf("table %s: no fields", t.Name)
	}
	pk := t.Fields[0]
	if pk.Type != Int && pk.Type != UInt {
		return fmt.Errorf("table %s: primary key %s must be an integer, got %s", t.Name, pk.Column, pk.Type)
	}
	if pk.IsForeignKey() {
		return fmt.Errorf("table %s: primary key %s cannot be a foreign key", t.Name, pk.Column)
	}

	properties := make(map[string]bool)
	columns := make(map[string]bool)
	for _, f := range t.Fields {
		if f.Property == "" || f.Column == "" {
			return fmt.Errorf("table %s: field with empty property or column", t.Name)
		}
		if properties[f.Property] {
			return fmt.Errorf("table %s: duplicate property %s", t.Name, f.Property)
		}
		if columns[f.Column] {
			return fmt.Errorf("table %s: duplicate column %s", t.Name, f.Column)
		}
		properties[f.Property] = true
		columns[f.Column] = true

		if f.Type == Enum && f.Enum == nil {
			return fmt.Errorf("table %s: enum field %s has no mapping", t.Name, f.Property)
		}
		if f.Type != Enum && f.Enum != nil {
			return fmt.Errorf("table %s: non-enum field %s has a mapping", t.Name, f.Property)
		}
		if f.IsForeignKey() {
			if f.Type != Int && f.Type != UInt {
				return fmt.Errorf("table %s: foreign key %s must be an integer", t.Name, f.Column)
			}
			if f.ForeignKey.Table == "" || f.ForeignKey.Column == "" {
				return fmt.Errorf("table %s: foreign key %s has no target", t.Name, f.Column)
			}
		}
	}

	for _, j := range t.Junctions {
		if j.Table == "" || j.ThisKeyColumn == "" || j.OtherKeyColumn == "" || j.OtherTable == "" {
			return fmt.Errorf("table %s: incomplete junction for %s", t.Name, j.Property)
		}
		if j.Property == "" {
			return fmt.Errorf("table %s: junction %s backs no property", t.Name, j.Table)
		}
		if properties[j.Property] {
			return fmt.Errorf("table %s: duplicate property %s", t.Name, j.Property)
		}
		properties[j.Property] = true
	}
	return nil
}
