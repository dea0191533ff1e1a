package database

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
)

// Engine identifies a supported database engine.
type Engine string

const (
	EngineSQLite   Engine = "sqlite"
	EnginePostgres Engine = "postgres"
)

// ColumnType is the storage type of a column, independent of engine.
type ColumnType int

const (
	Bool ColumnType = iota
	Int
	UInt
	Double
	String
	Date
)

func (t ColumnType) String() string {
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
	default:
		return "ColumnType(" + strconv.Itoa(int(t)) + ")"
	}
}

// Querier is the subset of database/sql shared by *sql.DB, *sql.Conn,
// *sql.Tx and *Transaction.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Dialect supplies the engine-specific pieces of SQL.
type Dialect interface {
	Engine() Engine

	// TypeName returns the native type used to declare a column of type t.
	TypeName(t ColumnType) string

	// PrimaryKeyDeclaration is the type and constraint of an auto-assigned
	// integer primary key column.
	PrimaryKeyDeclaration() string

	// AddForeignKeyColumnTemplate uses %1 (table), %2 (column),
	// %3 (referenced table) and %4 (referenced column).
	AddForeignKeyColumnTemplate() string

	// SetForeignKeysEnabled must be issued outside any transaction.
	SetForeignKeysEnabled(ctx context.Context, q Querier, enabled bool) error

	// Placeholder returns the bind marker for the n-th (1-based) argument.
	Placeholder(n int) string

	// ReturningID is appended to an INSERT to read back the key column.
	// Empty when the driver reports it through sql.Result.LastInsertId.
	ReturningID(column string) string

	// SessionPragmas run once on every new connection.
	SessionPragmas() []string
}

// DialectFor returns the dialect of the named engine.
func DialectFor(engine Engine) (Dialect, error) {
	switch engine {
	case EngineSQLite:
		return SQLite{}, nil
	case EnginePostgres:
		return Postgres{}, nil
	default:
		return nil, fmt.Errorf("unsupported database engine %q", engine)
	}
}

// FormatAddForeignKeyColumn fills the dialect's add-foreign-key template.
func FormatAddForeignKeyColumn(d Dialect, table, column, refTable, refColumn string) string {
	r := strings.NewReplacer("%1", table, "%2", column, "%3", refTable, "%4", refColumn)
	return r.Replace(d.AddForeignKeyColumnTemplate())
}

// Rebind rewrites '?' markers into the dialect's placeholders. Markers
// inside single-quoted literals are left alone.
func Rebind(d Dialect, query string) string {
	if d.Placeholder(1) == "?" {
		return query
	}
	var sb strings.Builder
	sb.Grow(len(query) + 8)
	n := 0
	inQuote := false
	for i := 0; i < len(query); i++ {
		c := query[i]
		switch {
		case c == '\'':
			inQuote = !inQuote
			sb.WriteByte(c)
		case c == '?' && !inQuote:
			n++
			sb.WriteString(d.Placeholder(n))
		default:
			sb.WriteByte(c)
		}
	}
	return sb.String()
}

// SQLite is the dialect of github.com/mattn/go-sqlite3.
type SQLite struct{}

func (SQLite) Engine() Engine { return EngineSQLite }

func (SQLite) TypeName(t ColumnType) string {
	switch t {
	case Bool:
		return "BOOLEAN"
	case Int, UInt:
		return "INTEGER"
	case Double:
		return "REAL"
	case Date:
		return "DATE"
	default:
		return "TEXT"
	}
}

func (SQLite) PrimaryKeyDeclaration() string { return "INTEGER PRIMARY KEY AUTOINCREMENT" }

func (SQLite) AddForeignKeyColumnTemplate() string {
	return "ALTER TABLE %1 ADD COLUMN %2 INTEGER REFERENCES %3(%4)"
}

func (SQLite) SetForeignKeysEnabled(ctx context.Context, q Querier, enabled bool) error {
	stmt := "PRAGMA foreign_keys = OFF"
	if enabled {
		stmt = "PRAGMA foreign_keys = ON"
	}
	if _, err := q.ExecContext(ctx, stmt); err != nil {
		return fmt.Errorf("failed to execute %q: %w", stmt, err)
	}
	return nil
}

func (SQLite) Placeholder(int) string { return "?" }

func (SQLite) ReturningID(string) string { return "" }

func (SQLite) SessionPragmas() []string {
	return []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA locking_mode = EXCLUSIVE",
		"PRAGMA synchronous = OFF",
	}
}

// Postgres is the dialect of github.com/lib/pq.
type Postgres struct{}

func (Postgres) Engine() Engine { return EnginePostgres }

func (Postgres) TypeName(t ColumnType) string {
	switch t {
	case Bool:
		return "BOOLEAN"
	case Int, UInt:
		return "INTEGER"
	case Double:
		return "DOUBLE PRECISION"
	case Date:
		return "DATE"
	default:
		return "TEXT"
	}
}

func (Postgres) PrimaryKeyDeclaration() string { return "SERIAL PRIMARY KEY" }

func (Postgres) AddForeignKeyColumnTemplate() string {
	return "ALTER TABLE %1 ADD COLUMN %2 INTEGER REFERENCES %3(%4) DEFERRABLE INITIALLY DEFERRED"
}

// SetForeignKeysEnabled switches replication role, which stops the
// referential integrity triggers from firing for this session.
func (Postgres) SetForeignKeysEnabled(ctx context.Context, q Querier, enabled bool) error {
	stmt := "SET session_replication_role = replica"
	if enabled {
		stmt = "SET session_replication_role = DEFAULT"
	}
	if _, err := q.ExecContext(ctx, stmt); err != nil {
		return fmt.Errorf("failed to execute %q: %w", stmt, err)
	}
	return nil
}

func (Postgres) Placeholder(n int) string { return "$" + strconv.Itoa(n) }

func (Postgres) ReturningID(column string) string { return " RETURNING " + column }

func (Postgres) SessionPragmas() []string { return nil }
