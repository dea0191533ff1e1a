// Package database provides connections, SQL dialects and the scoped
// transaction guard used by the object store and the schema helper.
//
// Two engines are supported:
//   - SQLite via github.com/mattn/go-sqlite3
//   - PostgreSQL via github.com/lib/pq
//
// # Dialect
//
// A Dialect hides the engine-specific SQL: native column type names, the
// primary key declaration, the "add a foreign key column" template, bind
// placeholders and the statement that toggles foreign key enforcement.
//
// # Session configuration (SQLite)
//
//   - foreign_keys=ON: Enforce referential integrity
//   - locking_mode=EXCLUSIVE: Single process owns the file
//   - synchronous=OFF: Writes are not fsync'd
//
// SQLite pools are pinned to one connection so the pragmas above hold for
// every statement issued through the *sql.DB.
//
// # Transactions
//
// Begin returns a Transaction pinned to one connection. Callers defer
// Rollback and call Commit on success:
//
//	tx, err := database.Begin(ctx, db, dialect, database.DisableForeignKeys)
//	if err != nil {
//	    return err
//	}
//	defer tx.Rollback()
//	...
//	return tx.Commit()
//
// With DisableForeignKeys, enforcement is switched off before BEGIN and
// switched back on after the transaction ends, because SQLite ignores
// PRAGMA foreign_keys inside a transaction.
package database
