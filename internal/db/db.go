// Package db provides shared pgx helpers for bulk record loads and upserts.
package db

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rotisserie/eris"
)

// Pool is the subset of pgxpool.Pool used by the store layer. pgxmock's
// PgxPoolIface satisfies it too, which keeps the stores unit-testable.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error)
}

// CopyFrom bulk-inserts rows into a table using the PostgreSQL COPY
// protocol, the fastest path for loading a full unified record set.
func CopyFrom(ctx context.Context, pool Pool, table string, columns []string, rows [][]any) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	n, err := pool.CopyFrom(ctx, pgx.Identifier{table}, columns, pgx.CopyFromRows(rows))
	if err != nil {
		return 0, eris.Wrapf(err, "db: COPY INTO %s", table)
	}
	return n, nil
}

// UpsertSQL builds an INSERT ... ON CONFLICT DO UPDATE statement with
// positional placeholders for one row. updateCols defaults to every
// non-conflict column.
func UpsertSQL(table string, columns, conflictKeys, updateCols []string) (string, error) {
	if len(columns) == 0 {
		return "", eris.New("db: upsert: no columns specified")
	}
	if len(conflictKeys) == 0 {
		return "", eris.New("db: upsert: no conflict keys specified")
	}

	if updateCols == nil {
		conflictSet := make(map[string]bool, len(conflictKeys))
		for _, k := range conflictKeys {
			conflictSet[k] = true
		}
		for _, c := range columns {
			if !conflictSet[c] {
				updateCols = append(updateCols, c)
			}
		}
	}

	placeholders := make([]string, len(columns))
	for i := range columns {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}
	sets := make([]string, len(updateCols))
	for i, c := range updateCols {
		sets[i] = fmt.Sprintf("%s = EXCLUDED.%s", c, c)
	}

	return fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s) ON CONFLICT (%s) DO UPDATE SET %s",
		table,
		strings.Join(columns, ", "),
		strings.Join(placeholders, ", "),
		strings.Join(conflictKeys, ", "),
		strings.Join(sets, ", "),
	), nil
}
