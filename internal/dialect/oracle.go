package dialect

import (
	"fmt"
)

type OracleDialect struct {
	*Generic
}

// NewOracleDialect creates the Oracle dialect.
func NewOracleDialect(cfg Config) *OracleDialect {
	d := &OracleDialect{}
	d.Generic = NewGeneric(cfg,
		WithName("Oracle"),
		WithPlaceholder(d.Placeholder),
		WithCurrentTimestampQuery("SELECT CURRENT_TIMESTAMP FROM dual"),
		WithTypeMapper(d),
	)
	return d
}

func (d *OracleDialect) Placeholder(index int) string {
	// Oracle uses :1, :2, etc. (1-based index)
	return fmt.Sprintf(":%d", index)
}

func (d *OracleDialect) SQLType(f Field) (string, error) {
	if lt, ok := f.Logical(); ok {
		switch lt {
		case Decimal:
			return fmt.Sprintf("NUMBER(*,%d)", f.Scale), nil
		case Date, Time:
			return "DATE", nil
		case Timestamp:
			return "TIMESTAMP", nil
		}
	}
	switch f.Type {
	case Boolean:
		return "NUMBER(1,0)", nil
	case Int8:
		return "NUMBER(3,0)", nil
	case Int16:
		return "NUMBER(5,0)", nil
	case Int32:
		return "NUMBER(10,0)", nil
	case Int64:
		return "NUMBER(19,0)", nil
	case Float32:
		return "BINARY_FLOAT", nil
	case Float64:
		return "BINARY_DOUBLE", nil
	case String:
		if f.PrimaryKey {
			return "VARCHAR2(4000)", nil
		}
		return "CLOB", nil
	case Bytes:
		return "BLOB", nil
	default:
		return d.Generic.SQLType(f)
	}
}

// BuildAlterTable uses Oracle's parenthesized ADD list.
func (d *OracleDialect) BuildAlterTable(table TableID, fields []Field) ([]string, error) {
	if len(fields) == 0 {
		return []string{}, nil
	}
	b := d.ExpressionBuilder()
	b.Append("ALTER TABLE ").AppendTable(table).Append(" ADD(")
	if err := d.WriteColumnSpecs(b, fields, "", ","); err != nil {
		return nil, err
	}
	b.Append(")")
	return []string{b.String()}, nil
}

// BuildUpsertStatement uses MERGE with a single-row source selected from dual.
func (d *OracleDialect) BuildUpsertStatement(table TableID, keys, nonKeys []ColumnID) (string, error) {
	if len(keys) == 0 {
		return d.BuildInsertStatement(table, keys, nonKeys)
	}
	qualified := func(b *ExpressionBuilder, c ColumnID) {
		b.AppendTable(table).Append(".").AppendColumn(c)
	}
	b := d.ExpressionBuilder()
	b.Append("MERGE INTO ").AppendTable(table).Append(" USING (SELECT ")
	i := 0
	AppendList[ColumnID](b).
		TransformedBy(func(b *ExpressionBuilder, c ColumnID) {
			i++
			b.Append(d.Placeholder(i)).Append(" ").AppendColumn(c)
		}).
		Of(keys, nonKeys)
	b.Append(" FROM dual) incoming ON(")
	AppendList[ColumnID](b).
		DelimitedBy(" AND ").
		TransformedBy(func(b *ExpressionBuilder, c ColumnID) {
			qualified(b, c)
			b.Append("=incoming.").AppendColumn(c)
		}).
		Of(keys)
	b.Append(")")
	if len(nonKeys) > 0 {
		b.Append(" WHEN MATCHED THEN UPDATE SET ")
		AppendList[ColumnID](b).
			TransformedBy(func(b *ExpressionBuilder, c ColumnID) {
				qualified(b, c)
				b.Append("=incoming.").AppendColumn(c)
			}).
			Of(nonKeys)
	}
	b.Append(" WHEN NOT MATCHED THEN INSERT(")
	AppendList[ColumnID](b).TransformedBy(qualified).Of(keys, nonKeys)
	b.Append(") VALUES(")
	AppendList[ColumnID](b).TransformedBy(ColumnNamesWithPrefix("incoming.")).Of(keys, nonKeys)
	b.Append(")")
	return b.String(), nil
}

// ColumnsQuery reads the data dictionary; NULLABLE is reported as Y or N.
func (d *OracleDialect) ColumnsQuery(table TableID) (string, []any) {
	if table.Schema == "" {
		return `SELECT COLUMN_NAME, DATA_TYPE, NULLABLE FROM USER_TAB_COLUMNS WHERE TABLE_NAME = :1 ORDER BY COLUMN_ID`,
			[]any{table.Name}
	}
	return `SELECT COLUMN_NAME, DATA_TYPE, NULLABLE FROM ALL_TAB_COLUMNS WHERE TABLE_NAME = :1 AND OWNER = :2 ORDER BY COLUMN_ID`,
		[]any{table.Name, table.Schema}
}
