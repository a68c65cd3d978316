package dialect

import (
	"fmt"
)

type MSSQLDialect struct {
	*Generic
}

// NewMSSQLDialect creates the SQL Server dialect. go-mssqldb binds positional
// arguments to @p1, @p2, ... and unqualified tables live in "dbo".
func NewMSSQLDialect(cfg Config) *MSSQLDialect {
	d := &MSSQLDialect{}
	d.Generic = NewGeneric(cfg,
		WithName("SqlServer"),
		WithIdentifierRules(IdentifierRules{Delimiter: ".", LeadingQuote: "[", TrailingQuote: "]"}),
		WithDefaultSchema("dbo"),
		WithPlaceholder(d.Placeholder),
		WithTypeMapper(d),
	)
	return d
}

func (d *MSSQLDialect) Placeholder(index int) string {
	return fmt.Sprintf("@p%d", index)
}

func (d *MSSQLDialect) SQLType(f Field) (string, error) {
	if lt, ok := f.Logical(); ok {
		switch lt {
		case Decimal:
			return fmt.Sprintf("DECIMAL(38,%d)", f.Scale), nil
		case Date:
			return "DATE", nil
		case Time:
			return "TIME", nil
		case Timestamp:
			return "DATETIME2", nil
		}
	}
	switch f.Type {
	case Boolean:
		return "BIT", nil
	case Float32:
		return "REAL", nil
	case Float64:
		return "FLOAT", nil
	case String:
		// index keys are limited to 900 bytes
		if f.PrimaryKey {
			return "VARCHAR(900)", nil
		}
		return "VARCHAR(MAX)", nil
	case Bytes:
		if f.PrimaryKey {
			return "VARBINARY(900)", nil
		}
		return "VARBINARY(MAX)", nil
	default:
		return d.Generic.SQLType(f)
	}
}

// BuildAlterTable uses T-SQL's form, which names ADD only once.
func (d *MSSQLDialect) BuildAlterTable(table TableID, fields []Field) ([]string, error) {
	if len(fields) == 0 {
		return []string{}, nil
	}
	b := d.ExpressionBuilder()
	b.Append("ALTER TABLE ").AppendTable(table).Append(" ADD ")
	if err := d.WriteColumnSpecs(b, fields, "", ","); err != nil {
		return nil, err
	}
	return []string{b.String()}, nil
}

// BuildUpsertStatement uses MERGE with HOLDLOCK so concurrent writers of the
// same key serialize instead of racing to insert.
func (d *MSSQLDialect) BuildUpsertStatement(table TableID, keys, nonKeys []ColumnID) (string, error) {
	if len(keys) == 0 {
		return d.BuildInsertStatement(table, keys, nonKeys)
	}
	b := d.ExpressionBuilder()
	b.Append("MERGE INTO ").AppendTable(table).Append(" WITH (HOLDLOCK) AS target USING (SELECT ")
	i := 0
	AppendList[ColumnID](b).
		DelimitedBy(", ").
		TransformedBy(func(b *ExpressionBuilder, c ColumnID) {
			i++
			b.Append(d.Placeholder(i)).Append(" AS ").AppendColumn(c)
		}).
		Of(keys, nonKeys)
	b.Append(") AS incoming ON (")
	AppendList[ColumnID](b).
		DelimitedBy(" AND ").
		TransformedBy(ColumnAssignments("target.%[1]s=incoming.%[1]s")).
		Of(keys)
	b.Append(")")
	if len(nonKeys) > 0 {
		b.Append(" WHEN MATCHED THEN UPDATE SET ")
		AppendList[ColumnID](b).TransformedBy(ColumnAssignments("%[1]s=incoming.%[1]s")).Of(nonKeys)
	}
	b.Append(" WHEN NOT MATCHED THEN INSERT (")
	AppendList[ColumnID](b).TransformedBy(ColumnNames()).Of(keys, nonKeys)
	b.Append(") VALUES (")
	AppendList[ColumnID](b).TransformedBy(ColumnNamesWithPrefix("incoming.")).Of(keys, nonKeys)
	b.Append(");")
	return b.String(), nil
}
