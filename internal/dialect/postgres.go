package dialect

import (
	"fmt"
)

type PostgresDialect struct {
	*Generic
}

// NewPostgresDialect creates the PostgreSQL dialect. Parameters are numbered
// ($1, $2, ...) and unqualified tables live in "public".
func NewPostgresDialect(cfg Config) *PostgresDialect {
	d := &PostgresDialect{}
	d.Generic = NewGeneric(cfg,
		WithName("PostgreSQL"),
		WithDefaultSchema("public"),
		WithPlaceholder(d.Placeholder),
		WithTypeMapper(d),
	)
	return d
}

func (d *PostgresDialect) Placeholder(index int) string {
	return fmt.Sprintf("$%d", index)
}

func (d *PostgresDialect) SQLType(f Field) (string, error) {
	if _, ok := f.Logical(); ok {
		return d.Generic.SQLType(f)
	}
	switch f.Type {
	case Int8:
		return "SMALLINT", nil
	case Float32:
		return "REAL", nil
	case Float64:
		return "DOUBLE PRECISION", nil
	case Bytes:
		return "BYTEA", nil
	default:
		return d.Generic.SQLType(f)
	}
}

// BuildUpsertStatement uses INSERT ... ON CONFLICT on the key columns.
func (d *PostgresDialect) BuildUpsertStatement(table TableID, keys, nonKeys []ColumnID) (string, error) {
	insert, err := d.BuildInsertStatement(table, keys, nonKeys)
	if err != nil || len(keys) == 0 {
		return insert, err
	}
	b := d.ExpressionBuilder()
	b.Append(insert).Append(" ON CONFLICT (")
	AppendList[ColumnID](b).TransformedBy(ColumnNames()).Of(keys)
	if len(nonKeys) == 0 {
		b.Append(") DO NOTHING")
		return b.String(), nil
	}
	b.Append(") DO UPDATE SET ")
	AppendList[ColumnID](b).TransformedBy(ColumnAssignments("%[1]s=EXCLUDED.%[1]s")).Of(nonKeys)
	return b.String(), nil
}
