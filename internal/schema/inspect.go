package schema

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"db-sink/internal/dialect"
)

// Querier is satisfied by *sql.DB, *sql.Conn and *sql.Tx.
type Querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// Inspect lists the existing columns of table using the dialect's metadata
// query. An empty result means the table does not exist.
func Inspect(ctx context.Context, q Querier, d dialect.Dialect, table dialect.TableID) ([]Column, error) {
	query, args := d.ColumnsQuery(table)
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query columns of %s: %w", table, err)
	}
	defer rows.Close()

	var cols []Column
	for rows.Next() {
		var name, dataType, nullable sql.NullString
		if err := rows.Scan(&name, &dataType, &nullable); err != nil {
			return nil, fmt.Errorf("failed to scan column of %s: %w", table, err)
		}
		if !name.Valid {
			continue
		}
		n := strings.ToUpper(strings.TrimSpace(nullable.String))
		cols = append(cols, Column{
			Name:       name.String,
			DataType:   dataType.String,
			IsNullable: n == "YES" || n == "Y" || n == "TRUE" || n == "1",
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating columns of %s: %w", table, err)
	}
	return cols, nil
}

// MissingFields returns the fields with no existing column, in field order.
// Names are compared case-insensitively since Oracle reports them upper-cased.
func MissingFields(fields []dialect.Field, existing []Column) []dialect.Field {
	have := make(map[string]bool, len(existing))
	for _, c := range existing {
		have[strings.ToUpper(c.Name)] = true
	}
	var missing []dialect.Field
	for _, f := range fields {
		if !have[strings.ToUpper(f.Name)] {
			missing = append(missing, f)
		}
	}
	return missing
}
