package schema

import (
	"fmt"
	"strings"

	"github.com/roach88/brewdb/internal/database"
)

// JunctionKeyColumn is the surrogate key of every junction table.
const JunctionKeyColumn = "id"

// CreateTableStatements returns the CREATE TABLE for the primary table
// followed by one per junction table.
//
// Foreign key columns are left out: SQLite cannot add a constraint to an
// existing column, so they are added with their constraint by
// ForeignKeyStatements once every table exists.
func (t *Table) CreateTableStatements(d database.Dialect) []string {
	stmts := make([]string, 0, 1+len(t.Junctions))

	cols := []string{t.PrimaryKey().Column + " " + d.PrimaryKeyDeclaration()}
	for _, f := range t.Fields[1:] {
		if f.IsForeignKey() {
			continue
		}
		cols = append(cols, f.Column+" "+d.TypeName(f.Type.ColumnType()))
	}
	stmts = append(stmts, fmt.Sprintf("CREATE TABLE %s (%s)", t.Name, strings.Join(cols, ", ")))

	for _, j := range t.Junctions {
		cols := []string{JunctionKeyColumn + " " + d.PrimaryKeyDeclaration()}
		if j.OrderColumn != "" {
			cols = append(cols, j.OrderColumn+" "+d.TypeName(database.Int))
		}
		stmts = append(stmts, fmt.Sprintf("CREATE TABLE %s (%s)", j.Table, strings.Join(cols, ", ")))
	}
	return stmts
}

// ForeignKeyStatements adds every foreign key column skipped by
// CreateTableStatements, including both key columns of each junction.
// They must only run once all tables have been created.
func (t *Table) ForeignKeyStatements(d database.Dialect) []string {
	var stmts []string
	for _, f := range t.Fields[1:] {
		if !f.IsForeignKey() {
			continue
		}
		stmts = append(stmts, database.FormatAddForeignKeyColumn(d, t.Name, f.Column, f.ForeignKey.Table, f.ForeignKey.Column))
	}
	pk := t.PrimaryKey().Column
	for _, j := range t.Junctions {
		stmts = append(stmts,
			database.FormatAddForeignKeyColumn(d, j.Table, j.ThisKeyColumn, t.Name, pk),
			database.FormatAddForeignKeyColumn(d, j.Table, j.OtherKeyColumn, j.OtherTable, j.OtherTableKey()),
		)
	}
	return stmts
}
