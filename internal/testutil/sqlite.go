// Package testutil holds database helpers shared by package tests.
package testutil

import (
	"context"
	"database/sql"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/brewdb/internal/database"
)

// OpenSQLite opens an empty SQLite database in a temp dir. It is closed
// when the test ends.
func OpenSQLite(t testing.TB) (*sql.DB, database.Dialect) {
	t.Helper()
	db, d, err := database.Open(context.Background(), database.Config{
		Engine: database.EngineSQLite,
		Path:   filepath.Join(t.TempDir(), "brew.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, d
}

// Tables lists the user tables of a SQLite database, sorted.
func Tables(t testing.TB, db *sql.DB) []string {
	t.Helper()
	rows, err := db.Query("SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%' ORDER BY name")
	require.NoError(t, err)
	defer rows.Close()

	var tables []string
	for rows.Next() {
		var name string
		require.NoError(t, rows.Scan(&name))
		tables = append(tables, name)
	}
	require.NoError(t, rows.Err())
	return tables
}

// Columns lists the columns of one table, sorted.
func Columns(t testing.TB, db *sql.DB, table string) []string {
	t.Helper()
	rows, err := db.Query("PRAGMA table_info(" + table + ")")
	require.NoError(t, err)
	defer rows.Close()

	var cols []string
	for rows.Next() {
		var (
			cid     int
			name    string
			typ     string
			notNull int
			dflt    sql.NullString
			pk      int
		)
		require.NoError(t, rows.Scan(&cid, &name, &typ, &notNull, &dflt, &pk))
		cols = append(cols, name)
	}
	require.NoError(t, rows.Err())
	sort.Strings(cols)
	return cols
}

// SchemaOf maps every table to its sorted columns.
func SchemaOf(t testing.TB, db *sql.DB) map[string][]string {
	t.Helper()
	out := make(map[string][]string)
	for _, table := range Tables(t, db) {
		out[table] = Columns(t, db, table)
	}
	return out
}
