package dialect

import "fmt"

// GridDBDialect targets GridDB's SQL interface. GridDB has a small type
// system, so every logical type is stored as TIMESTAMP and every integral
// type as INTEGER. ALTER TABLE accepts a single column per statement.
type GridDBDialect struct {
	*Generic
}

// NewGridDBDialect creates the GridDB dialect from the connector configuration.
func NewGridDBDialect(cfg Config) *GridDBDialect {
	d := &GridDBDialect{}
	d.Generic = NewGeneric(cfg,
		WithName("GridDB"),
		WithIdentifierRules(IdentifierRules{Delimiter: ".", LeadingQuote: "`", TrailingQuote: "`"}),
		WithCurrentTimestampQuery("SELECT NOW()"),
		WithTypeMapper(d),
	)
	return d
}

func (d *GridDBDialect) SQLType(f Field) (string, error) {
	if lt, ok := f.Logical(); ok {
		switch lt {
		case Decimal, Date, Time, Timestamp:
			return "TIMESTAMP", nil
		}
	}
	switch f.Type {
	case Boolean, Int8, Int16, Int32, Int64:
		return "INTEGER", nil
	case Float32, Float64:
		return "REAL", nil
	case String:
		return "TEXT", nil
	case Bytes:
		return "BLOB", nil
	default:
		return d.Generic.SQLType(f)
	}
}

// BuildAlterTable emits one ALTER TABLE statement per field, in input order.
func (d *GridDBDialect) BuildAlterTable(table TableID, fields []Field) ([]string, error) {
	queries := make([]string, 0, len(fields))
	for _, f := range fields {
		q, err := d.Generic.BuildAlterTable(table, []Field{f})
		if err != nil {
			return nil, err
		}
		queries = append(queries, q...)
	}
	return queries, nil
}

// BuildUpsertStatement emits a plain INSERT: GridDB has no conflict clause.
func (d *GridDBDialect) BuildUpsertStatement(table TableID, keys, nonKeys []ColumnID) (string, error) {
	n := len(keys) + len(nonKeys)
	if n == 0 {
		return "", fmt.Errorf("upsert into %s: %w", table, ErrNoColumns)
	}
	b := d.ExpressionBuilder()
	b.Append("INSERT INTO ").AppendTable(table).Append("(")
	AppendList[ColumnID](b).DelimitedBy(",").TransformedBy(ColumnNames()).Of(keys, nonKeys)
	b.Append(") VALUES(")
	b.AppendMultiple(",", "?", n)
	b.Append(")")
	return b.String(), nil
}

// ColumnsQuery reads the "#columns" metatable. NULLABLE is a BOOL.
func (d *GridDBDialect) ColumnsQuery(table TableID) (string, []any) {
	return `SELECT COLUMN_NAME, TYPE_NAME, NULLABLE FROM "#columns" WHERE TABLE_NAME = ? ORDER BY ORDINAL_POSITION`,
		[]any{table.Name}
}
