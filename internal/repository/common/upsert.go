package common

import (
	"context"
	"fmt"
	"strings"
)

// Upsert inserts one full row keyed by its primary-key column, replacing the
// row atomically when the key already exists. All three analysis record kinds
// share this primitive; callers pass the key column first in columns/values.
func Upsert(ctx context.Context, pool Pool, table string, keyColumn string, columns []string, values []any) error {
	if len(columns) == 0 || len(columns) != len(values) {
		return fmt.Errorf("upsert into %s: %d columns for %d values", table, len(columns), len(values))
	}

	sql := BuildUpsertSQL(table, keyColumn, columns)
	if _, err := pool.Exec(ctx, sql, values...); err != nil {
		return HandlePostgreSQLError(err, fmt.Sprintf("failed to upsert into %s", table))
	}
	return nil
}

// BuildUpsertSQL renders the INSERT ... ON CONFLICT statement for one table.
// Split out so tests can assert the generated SQL without a database.
func BuildUpsertSQL(table string, keyColumn string, columns []string) string {
	placeholders := make([]string, len(columns))
	for i := range columns {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}

	assignments := make([]string, 0, len(columns)-1)
	for _, col := range columns {
		if col == keyColumn {
			continue
		}
		assignments = append(assignments, fmt.Sprintf("%s = EXCLUDED.%s", col, col))
	}

	return fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s) ON CONFLICT (%s) DO UPDATE SET %s",
		table,
		strings.Join(columns, ", "),
		strings.Join(placeholders, ", "),
		keyColumn,
		strings.Join(assignments, ", "),
	)
}
