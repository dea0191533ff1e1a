package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
)

// TxOption alters how a Transaction is begun.
type TxOption int

const (
	// DisableForeignKeys turns enforcement off before BEGIN and back on
	// after COMMIT or ROLLBACK.
	DisableForeignKeys TxOption = 1 << iota
)

// ErrTxDone is returned by Commit once the transaction has finished.
var ErrTxDone = errors.New("transaction already finished")

// Transaction is a scoped guard around one database transaction.
//
// It moves from begun to either committed or rolled back, exactly once.
// Rollback is safe to defer: after a Commit it does nothing.
type Transaction struct {
	id      string
	ctx     context.Context
	conn    *sql.Conn
	tx      *sql.Tx
	dialect Dialect

	restoreForeignKeys bool
	done               bool
	committed          bool
}

// Begin pins a connection from db and starts a transaction on it.
func Begin(ctx context.Context, db *sql.DB, d Dialect, opts ...TxOption) (*Transaction, error) {
	var flags TxOption
	for _, o := range opts {
		flags |= o
	}

	conn, err := db.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: acquire connection: %w", err)
	}

	t := &Transaction{
		id:      uuid.Must(uuid.NewV7()).String(),
		ctx:     context.WithoutCancel(ctx),
		conn:    conn,
		dialect: d,
	}

	if flags&DisableForeignKeys != 0 {
		if err := d.SetForeignKeysEnabled(ctx, conn, false); err != nil {
			conn.Close()
			return nil, fmt.Errorf("begin tx: disable foreign keys: %w", err)
		}
		t.restoreForeignKeys = true
	}

	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		t.release()
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	t.tx = tx

	slog.Debug("transaction begun", "tx", t.id, "foreign_keys_disabled", t.restoreForeignKeys)
	return t, nil
}

// ID is the label used for this transaction in log output.
func (t *Transaction) ID() string { return t.id }

// Committed reports whether Commit succeeded.
func (t *Transaction) Committed() bool { return t.committed }

// Commit commits the transaction. It may be called once.
func (t *Transaction) Commit() error {
	if t.done {
		return ErrTxDone
	}
	t.done = true
	err := t.tx.Commit()
	t.release()
	if err != nil {
		slog.Error("transaction commit failed", "tx", t.id, "error", err)
		return fmt.Errorf("commit tx: %w", err)
	}
	t.committed = true
	slog.Debug("transaction committed", "tx", t.id)
	return nil
}

// Rollback aborts the transaction unless it has already finished.
func (t *Transaction) Rollback() error {
	if t.done {
		return nil
	}
	t.done = true
	err := t.tx.Rollback()
	t.release()
	if err != nil && !errors.Is(err, sql.ErrTxDone) {
		slog.Error("transaction rollback failed", "tx", t.id, "error", err)
		return fmt.Errorf("rollback tx: %w", err)
	}
	slog.Debug("transaction rolled back", "tx", t.id)
	return nil
}

// release restores foreign key enforcement and returns the connection.
func (t *Transaction) release() {
	if t.restoreForeignKeys {
		if err := t.dialect.SetForeignKeysEnabled(t.ctx, t.conn, true); err != nil {
			slog.Error("failed to re-enable foreign keys", "tx", t.id, "error", err)
		}
		t.restoreForeignKeys = false
	}
	if err := t.conn.Close(); err != nil {
		slog.Warn("failed to release connection", "tx", t.id, "error", err)
	}
}

func (t *Transaction) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return t.tx.ExecContext(ctx, query, args...)
}

func (t *Transaction) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return t.tx.QueryContext(ctx, query, args...)
}

func (t *Transaction) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	return t.tx.QueryRowContext(ctx, query, args...)
}
