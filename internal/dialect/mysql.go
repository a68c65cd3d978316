package dialect

import (
	"fmt"
)

// MysqlDialect targets MySQL and MariaDB.
type MysqlDialect struct {
	*Generic
}

// NewMysqlDialect creates the MySQL dialect.
func NewMysqlDialect(cfg Config) *MysqlDialect {
	d := &MysqlDialect{}
	d.Generic = NewGeneric(cfg,
		WithName("MySQL"),
		WithIdentifierRules(IdentifierRules{Delimiter: ".", LeadingQuote: "`", TrailingQuote: "`"}),
		WithTypeMapper(d),
	)
	return d
}

func (d *MysqlDialect) SQLType(f Field) (string, error) {
	if lt, ok := f.Logical(); ok {
		switch lt {
		case Decimal:
			return fmt.Sprintf("DECIMAL(65,%d)", f.Scale), nil
		case Date:
			return "DATE", nil
		case Time:
			return "TIME(3)", nil
		case Timestamp:
			return "DATETIME(3)", nil
		}
	}
	switch f.Type {
	case Boolean, Int8:
		return "TINYINT", nil
	case Float32:
		return "FLOAT", nil
	case String:
		// TEXT cannot be part of a primary key without a prefix length.
		if f.PrimaryKey {
			return "VARCHAR(256)", nil
		}
		return "TEXT", nil
	case Bytes:
		if f.PrimaryKey {
			return "VARBINARY(1024)", nil
		}
		return "BLOB", nil
	default:
		return d.Generic.SQLType(f)
	}
}

// BuildUpsertStatement uses INSERT ... ON DUPLICATE KEY UPDATE. With no
// non-key columns the keys are assigned to themselves so the statement stays
// a no-op on conflict.
func (d *MysqlDialect) BuildUpsertStatement(table TableID, keys, nonKeys []ColumnID) (string, error) {
	insert, err := d.BuildInsertStatement(table, keys, nonKeys)
	if err != nil || len(keys) == 0 {
		return insert, err
	}
	update := nonKeys
	if len(update) == 0 {
		update = keys
	}
	b := d.ExpressionBuilder()
	b.Append(insert).Append(" ON DUPLICATE KEY UPDATE ")
	AppendList[ColumnID](b).TransformedBy(ColumnAssignments("%[1]s=VALUES(%[1]s)")).Of(update)
	return b.String(), nil
}

func (d *MysqlDialect) ColumnsQuery(table TableID) (string, []any) {
	if table.Schema == "" {
		return `SELECT COLUMN_NAME, DATA_TYPE, IS_NULLABLE FROM information_schema.COLUMNS WHERE TABLE_SCHEMA = DATABASE() AND TABLE_NAME = ? ORDER BY ORDINAL_POSITION`,
			[]any{table.Name}
	}
	return `SELECT COLUMN_NAME, DATA_TYPE, IS_NULLABLE FROM information_schema.COLUMNS WHERE TABLE_SCHEMA = ? AND TABLE_NAME = ? ORDER BY ORDINAL_POSITION`,
		[]any{table.Schema, table.Name}
}
