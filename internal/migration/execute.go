package migration

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/roach88/brewdb/internal/database"
)

// Query is one statement of a migration step.
type Query struct {
	SQL  string
	Args []any
	// OnlyIfPriorHadResults skips the statement unless the most recent
	// SELECT that ran returned at least one row. Skipped statements and
	// other statements leave that state untouched, so several dependent
	// statements can follow one check.
	OnlyIfPriorHadResults bool
}

// ExecuteQueries runs queries in order and stops at the first failure.
// SQL is written with ? placeholders and rebound for the dialect.
func ExecuteQueries(ctx context.Context, q database.Querier, d database.Dialect, queries []Query) error {
	priorHadResults := false
	for i, query := range queries {
		if query.OnlyIfPriorHadResults && !priorHadResults {
			slog.Debug("skipping conditional migration query", "index", i, "sql", query.SQL)
			continue
		}

		stmt := database.Rebind(d, query.SQL)
		if !isSelect(stmt) {
			if _, err := q.ExecContext(ctx, stmt, query.Args...); err != nil {
				slog.Error("migration query failed", "index", i, "sql", stmt, "error", err)
				return fmt.Errorf("query %d: %w", i, err)
			}
			continue
		}

		hadResults, err := selectHasRows(ctx, q, stmt, query.Args)
		if err != nil {
			slog.Error("migration query failed", "index", i, "sql", stmt, "error", err)
			return fmt.Errorf("query %d: %w", i, err)
		}
		priorHadResults = hadResults
	}
	return nil
}

func selectHasRows(ctx context.Context, q database.Querier, stmt string, args []any) (bool, error) {
	rows, err := q.QueryContext(ctx, stmt, args...)
	if err != nil {
		return false, err
	}
	defer rows.Close()
	has := rows.Next()
	if err := rows.Err(); err != nil {
		return false, err
	}
	return has, nil
}

func isSelect(stmt string) bool {
	fields := strings.Fields(stmt)
	return len(fields) > 0 && strings.EqualFold(fields[0], "SELECT")
}
