package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenSQLite_ForeignKeysOn(t *testing.T) {
	db, d := OpenSQLite(t)
	assert.Equal(t, "sqlite", string(d.Engine()))

	var fk int
	require.NoError(t, db.QueryRow("PRAGMA foreign_keys").Scan(&fk))
	assert.Equal(t, 1, fk)
}

func TestSchemaOf(t *testing.T) {
	db, _ := OpenSQLite(t)
	assert.Empty(t, SchemaOf(t, db))

	_, err := db.Exec("CREATE TABLE hop (id INTEGER PRIMARY KEY, name TEXT, alpha REAL)")
	require.NoError(t, err)
	_, err = db.Exec("CREATE TABLE boil (id INTEGER PRIMARY KEY, pre_boil_size REAL)")
	require.NoError(t, err)

	assert.Equal(t, []string{"boil", "hop"}, Tables(t, db))
	assert.Equal(t, map[string][]string{
		"boil": {"id", "pre_boil_size"},
		"hop":  {"alpha", "id", "name"},
	}, SchemaOf(t, db))
}
