package database

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// openTestDB opens a fresh SQLite database in a temp dir.
func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, _, err := Open(context.Background(), Config{
		Engine: EngineSQLite,
		Path:   filepath.Join(t.TempDir(), "test.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func foreignKeysEnabled(t *testing.T, db *sql.DB) bool {
	t.Helper()
	var v int
	require.NoError(t, db.QueryRow("PRAGMA foreign_keys").Scan(&v))
	return v == 1
}

func createParentChild(t *testing.T, db *sql.DB) {
	t.Helper()
	_, err := db.Exec(`CREATE TABLE parent (id INTEGER PRIMARY KEY AUTOINCREMENT, name TEXT)`)
	require.NoError(t, err)
	_, err = db.Exec(`CREATE TABLE child (id INTEGER PRIMARY KEY AUTOINCREMENT, parent_id INTEGER REFERENCES parent(id))`)
	require.NoError(t, err)
}

func TestDialectFor(t *testing.T) {
	d, err := DialectFor(EngineSQLite)
	require.NoError(t, err)
	assert.Equal(t, EngineSQLite, d.Engine())

	d, err = DialectFor(EnginePostgres)
	require.NoError(t, err)
	assert.Equal(t, EnginePostgres, d.Engine())

	_, err = DialectFor("mysql")
	assert.Error(t, err)
}

func TestDialect_TypeNames(t *testing.T) {
	tests := []struct {
		typ      ColumnType
		sqlite   string
		postgres string
	}{
		{Bool, "BOOLEAN", "BOOLEAN"},
		{Int, "INTEGER", "INTEGER"},
		{UInt, "INTEGER", "INTEGER"},
		{Double, "REAL", "DOUBLE PRECISION"},
		{String, "TEXT", "TEXT"},
		{Date, "DATE", "DATE"},
	}
	for _, tt := range tests {
		t.Run(tt.typ.String(), func(t *testing.T) {
			assert.Equal(t, tt.sqlite, SQLite{}.TypeName(tt.typ))
			assert.Equal(t, tt.postgres, Postgres{}.TypeName(tt.typ))
		})
	}
}

func TestFormatAddForeignKeyColumn(t *testing.T) {
	got := FormatAddForeignKeyColumn(SQLite{}, "recipe", "mash_id", "mash", "id")
	assert.Equal(t, "ALTER TABLE recipe ADD COLUMN mash_id INTEGER REFERENCES mash(id)", got)

	got = FormatAddForeignKeyColumn(Postgres{}, "recipe", "mash_id", "mash", "id")
	assert.Equal(t, "ALTER TABLE recipe ADD COLUMN mash_id INTEGER REFERENCES mash(id) DEFERRABLE INITIALLY DEFERRED", got)
}

func TestRebind(t *testing.T) {
	q := "UPDATE hop SET name = ?, notes = 'why?' WHERE id = ?"
	assert.Equal(t, q, Rebind(SQLite{}, q))
	assert.Equal(t, "UPDATE hop SET name = $1, notes = 'why?' WHERE id = $2", Rebind(Postgres{}, q))
}

func TestOpen_AppliesPragmas(t *testing.T) {
	db := openTestDB(t)

	assert.True(t, foreignKeysEnabled(t, db))

	var mode string
	require.NoError(t, db.QueryRow("PRAGMA locking_mode").Scan(&mode))
	assert.Equal(t, "exclusive", mode)

	var syncMode int
	require.NoError(t, db.QueryRow("PRAGMA synchronous").Scan(&syncMode))
	assert.Equal(t, 0, syncMode)
}

func TestOpen_MissingLocation(t *testing.T) {
	_, _, err := Open(context.Background(), Config{Engine: EngineSQLite})
	assert.Error(t, err)

	_, _, err = Open(context.Background(), Config{Engine: EnginePostgres})
	assert.Error(t, err)
}

func TestOpen_InvalidPath(t *testing.T) {
	_, _, err := Open(context.Background(), Config{
		Engine: EngineSQLite,
		Path:   "/nonexistent/dir/test.db",
	})
	assert.Error(t, err)
}

func TestTransaction_Commit(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	createParentChild(t, db)

	tx, err := Begin(ctx, db, SQLite{})
	require.NoError(t, err)
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `INSERT INTO parent (name) VALUES (?)`, "a")
	require.NoError(t, err)
	require.NoError(t, tx.Commit())
	assert.True(t, tx.Committed())
	assert.NotEmpty(t, tx.ID())

	// Rollback after commit is a no-op
	require.NoError(t, tx.Rollback())
	assert.ErrorIs(t, tx.Commit(), ErrTxDone)

	var count int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM parent`).Scan(&count))
	assert.Equal(t, 1, count)
}

func TestTransaction_RollbackWithoutCommit(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	createParentChild(t, db)

	func() {
		tx, err := Begin(ctx, db, SQLite{})
		require.NoError(t, err)
		defer tx.Rollback()

		_, err = tx.ExecContext(ctx, `INSERT INTO parent (name) VALUES (?)`, "a")
		require.NoError(t, err)
	}()

	var count int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM parent`).Scan(&count))
	assert.Equal(t, 0, count)
}

func TestTransaction_ForeignKeysEnforcedByDefault(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	createParentChild(t, db)

	tx, err := Begin(ctx, db, SQLite{})
	require.NoError(t, err)
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `INSERT INTO child (parent_id) VALUES (?)`, 42)
	assert.Error(t, err, "dangling reference must be rejected")
}

func TestTransaction_DisableForeignKeys(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	createParentChild(t, db)

	tx, err := Begin(ctx, db, SQLite{}, DisableForeignKeys)
	require.NoError(t, err)
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `INSERT INTO child (parent_id) VALUES (?)`, 42)
	require.NoError(t, err)
	require.NoError(t, tx.Commit())

	assert.True(t, foreignKeysEnabled(t, db), "enforcement restored after commit")
}

func TestTransaction_DisableForeignKeysRestoredOnRollback(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)

	tx, err := Begin(ctx, db, SQLite{}, DisableForeignKeys)
	require.NoError(t, err)
	require.NoError(t, tx.Rollback())

	assert.True(t, foreignKeysEnabled(t, db))
}

func TestTransaction_StatementOrder(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("SET session_replication_role = replica").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectBegin()
	mock.ExpectRollback()
	mock.ExpectExec("SET session_replication_role = DEFAULT").WillReturnResult(sqlmock.NewResult(0, 0))

	tx, err := Begin(context.Background(), db, Postgres{}, DisableForeignKeys)
	require.NoError(t, err)
	require.NoError(t, tx.Rollback())

	assert.NoError(t, mock.ExpectationsWereMet())
}
