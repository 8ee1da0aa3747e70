package importer

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
)

// destination.go is the only place destination-table SQL is built. All
// identifiers pass through quoteIdentifier; column names always come
// from live introspection, never from client input.

// Columns returns the live column list of a table in ordinal order.
// The result is re-read on every preview and every commit; it is never
// cached, because the destination schema can drift between calls.
func Columns(ctx context.Context, db DBTX, table string) ([]string, error) {
	rows, err := db.Query(ctx, `
		SELECT column_name
		FROM information_schema.columns
		WHERE table_schema = 'public' AND table_name = $1
		ORDER BY ordinal_position`, table)
	if err != nil {
		return nil, fmt.Errorf("query columns of %s: %w", table, err)
	}
	defer rows.Close()

	var cols []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan column name: %w", err)
		}
		cols = append(cols, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read columns of %s: %w", table, err)
	}
	return cols, nil
}

// EnsureDestination creates the canonical destination table when it
// does not exist yet. Column names are the snake_case forms of the
// expected schema, so the normalizer maps them without configuration.
func EnsureDestination(ctx context.Context, db DBTX, table string) error {
	ddl := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			person_id      TEXT,
			start_date     DATE,
			end_date       DATE,
			m_risk_factors TEXT,
			gender         TEXT,
			age            DOUBLE PRECISION,
			mna            DOUBLE PRECISION,
			bmi            DOUBLE PRECISION,
			weight         DOUBLE PRECISION
		)`, quoteIdentifier(table))
	if _, err := db.Exec(ctx, ddl); err != nil {
		return fmt.Errorf("ensure destination table %s: %w", table, err)
	}
	return nil
}

// truncateTable removes every row from a table.
func truncateTable(ctx context.Context, db DBTX, table string) error {
	if _, err := db.Exec(ctx, "TRUNCATE TABLE "+quoteIdentifier(table)); err != nil {
		return fmt.Errorf("truncate %s: %w", table, err)
	}
	return nil
}

// bulkInsert copies canonical rows into table using the mapped
// destination column names. COPY is a single statement, so a failure
// inserts nothing from this call.
func bulkInsert(ctx context.Context, db DBTX, table string, columns []string, rows []CanonicalRow) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	src := pgx.CopyFromSlice(len(rows), func(i int) ([]any, error) {
		return rows[i].Values(), nil
	})
	return db.CopyFrom(ctx, pgx.Identifier{table}, columns, src)
}

// quoteIdentifier quotes a SQL identifier, doubling embedded quotes.
func quoteIdentifier(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
