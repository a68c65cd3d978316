package dialect

import (
	"fmt"
)

// TypeMapper maps a field to a SQL column type.
type TypeMapper interface {
	SQLType(f Field) (string, error)
}

// LogicalBinder binds values of logical types.
type LogicalBinder interface {
	BindLogical(p ParamSetter, index int, f Field, value any) (BindResult, error)
}

// Generic implements every Dialect operation in ANSI SQL terms. Variants embed
// *Generic and install themselves as its TypeMapper and LogicalBinder, so the
// shared statement builders pick up the variant's type names and binding.
type Generic struct {
	name          string
	rules         IdentifierRules
	quote         QuoteMode
	defaultSchema string
	placeholder   func(int) string
	timestampSQL  string
	types         TypeMapper
	logical       LogicalBinder
}

// Option configures a Generic dialect.
type Option func(*Generic)

// WithName sets the dialect name.
func WithName(name string) Option {
	return func(g *Generic) { g.name = name }
}

// WithIdentifierRules sets the quoting rules.
func WithIdentifierRules(r IdentifierRules) Option {
	return func(g *Generic) { g.rules = r }
}

// WithDefaultSchema sets the schema used when a TableID has none.
func WithDefaultSchema(schema string) Option {
	return func(g *Generic) { g.defaultSchema = schema }
}

// WithPlaceholder sets the parameter placeholder format.
func WithPlaceholder(fn func(int) string) Option {
	return func(g *Generic) { g.placeholder = fn }
}

// WithCurrentTimestampQuery sets the query returning the database clock.
func WithCurrentTimestampQuery(q string) Option {
	return func(g *Generic) { g.timestampSQL = q }
}

// WithTypeMapper overrides type mapping for the shared builders.
func WithTypeMapper(m TypeMapper) Option {
	return func(g *Generic) { g.types = m }
}

// WithLogicalBinder overrides logical-value binding.
func WithLogicalBinder(b LogicalBinder) Option {
	return func(g *Generic) { g.logical = b }
}

// NewGeneric returns the ANSI dialect.
func NewGeneric(cfg Config, opts ...Option) *Generic {
	g := &Generic{
		name:         "Generic",
		rules:        DefaultIdentifierRules,
		quote:        cfg.QuoteIdentifiers,
		placeholder:  func(int) string { return "?" },
		timestampSQL: "SELECT CURRENT_TIMESTAMP",
	}
	if g.quote == "" {
		g.quote = QuoteAlways
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.types == nil {
		g.types = g
	}
	if g.logical == nil {
		g.logical = g
	}
	return g
}

func (g *Generic) Name() string { return g.name }

func (g *Generic) IdentifierRules() IdentifierRules { return g.rules }

func (g *Generic) ExpressionBuilder() *ExpressionBuilder {
	return NewExpressionBuilder(g.rules, g.quote)
}

func (g *Generic) Placeholder(index int) string { return g.placeholder(index) }

func (g *Generic) DefaultSchema() string { return g.defaultSchema }

func (g *Generic) CurrentTimestampQuery() string { return g.timestampSQL }

// SQLType returns the ANSI type for a field. Variants call it for every type
// their own table does not cover.
func (g *Generic) SQLType(f Field) (string, error) {
	if lt, ok := f.Logical(); ok {
		switch lt {
		case Decimal:
			return "DECIMAL", nil
		case Date:
			return "DATE", nil
		case Time:
			return "TIME", nil
		case Timestamp:
			return "TIMESTAMP", nil
		}
	}
	switch f.Type {
	case Boolean:
		return "BOOLEAN", nil
	case Int8:
		return "TINYINT", nil
	case Int16:
		return "SMALLINT", nil
	case Int32:
		return "INT", nil
	case Int64:
		return "BIGINT", nil
	case Float32:
		return "FLOAT", nil
	case Float64:
		return "DOUBLE", nil
	case String:
		return "TEXT", nil
	case Bytes:
		return "BLOB", nil
	case Struct, Array, Map:
		return "", g.unsupported(f)
	default:
		return "", g.unsupported(f)
	}
}

func (g *Generic) unsupported(f Field) error {
	typ := f.Type.String()
	if f.LogicalName != "" {
		typ = f.LogicalName + " (" + typ + ")"
	}
	return &UnsupportedTypeError{Dialect: g.name, Field: f.Name, Type: typ}
}

// WriteColumnSpec writes "name TYPE NULL|NOT NULL".
func (g *Generic) WriteColumnSpec(b *ExpressionBuilder, f Field) error {
	typ, err := g.types.SQLType(f)
	if err != nil {
		return err
	}
	b.AppendIdentifier(f.Name).Append(" ").Append(typ)
	if f.Optional {
		b.Append(" NULL")
	} else {
		b.Append(" NOT NULL")
	}
	return nil
}

// WriteColumnSpecs writes the column specs of fields separated by delim, each
// preceded by prefix.
func (g *Generic) WriteColumnSpecs(b *ExpressionBuilder, fields []Field, prefix, delim string) error {
	for i, f := range fields {
		if i > 0 {
			b.Append(delim)
		}
		b.Append(prefix)
		if err := g.WriteColumnSpec(b, f); err != nil {
			return err
		}
	}
	return nil
}

// BuildCreateTable renders CREATE TABLE with a primary key clause for the key fields.
func (g *Generic) BuildCreateTable(table TableID, fields []Field) (string, error) {
	if len(fields) == 0 {
		return "", fmt.Errorf("create table %s: %w", table, ErrNoColumns)
	}
	b := g.ExpressionBuilder()
	b.Append("CREATE TABLE ").AppendTable(table).Append("(")
	if err := g.WriteColumnSpecs(b, fields, "", ","); err != nil {
		return "", err
	}
	var pk []Field
	for _, f := range fields {
		if f.PrimaryKey {
			pk = append(pk, f)
		}
	}
	if len(pk) > 0 {
		b.Append(",PRIMARY KEY(")
		AppendList[Field](b).TransformedBy(FieldNames()).Of(pk)
		b.Append(")")
	}
	b.Append(")")
	return b.String(), nil
}

// BuildAlterTable adds all fields in a single ALTER TABLE statement.
func (g *Generic) BuildAlterTable(table TableID, fields []Field) ([]string, error) {
	if len(fields) == 0 {
		return []string{}, nil
	}
	b := g.ExpressionBuilder()
	b.Append("ALTER TABLE ").AppendTable(table).Append(" ")
	if err := g.WriteColumnSpecs(b, fields, "ADD ", ","); err != nil {
		return nil, err
	}
	return []string{b.String()}, nil
}

// BuildInsertStatement renders a plain INSERT with keys first, then non-keys.
func (g *Generic) BuildInsertStatement(table TableID, keys, nonKeys []ColumnID) (string, error) {
	n := len(keys) + len(nonKeys)
	if n == 0 {
		return "", fmt.Errorf("insert into %s: %w", table, ErrNoColumns)
	}
	b := g.ExpressionBuilder()
	b.Append("INSERT INTO ").AppendTable(table).Append("(")
	AppendList[ColumnID](b).TransformedBy(ColumnNames()).Of(keys, nonKeys)
	b.Append(") VALUES(")
	b.AppendPlaceholders(",", n, 1, g.placeholder)
	b.Append(")")
	return b.String(), nil
}

// BuildUpsertStatement has no portable ANSI form, so the generic dialect
// emits a plain INSERT. It is not idempotent: re-running it for an existing
// key fails or duplicates the row, depending on the table's constraints.
func (g *Generic) BuildUpsertStatement(table TableID, keys, nonKeys []ColumnID) (string, error) {
	return g.BuildInsertStatement(table, keys, nonKeys)
}

// BuildDeleteStatement renders DELETE ... WHERE k1 = ? AND k2 = ?.
func (g *Generic) BuildDeleteStatement(table TableID, keys []ColumnID) (string, error) {
	if len(keys) == 0 {
		return "", fmt.Errorf("delete from %s: %w", table, ErrNoKeyColumns)
	}
	b := g.ExpressionBuilder()
	b.Append("DELETE FROM ").AppendTable(table).Append(" WHERE ")
	i := 0
	AppendList[ColumnID](b).
		DelimitedBy(" AND ").
		TransformedBy(func(b *ExpressionBuilder, c ColumnID) {
			i++
			b.AppendColumn(c).Append(" = ").Append(g.placeholder(i))
		}).
		Of(keys)
	return b.String(), nil
}

// ColumnsQuery returns an information_schema query listing the table's
// columns as (column_name, data_type, is_nullable) rows.
func (g *Generic) ColumnsQuery(table TableID) (string, []any) {
	query := "SELECT column_name, data_type, is_nullable FROM information_schema.columns WHERE table_name = " + g.placeholder(1)
	args := []any{table.Name}
	schema := table.Schema
	if schema == "" {
		schema = g.defaultSchema
	}
	if schema != "" {
		query += " AND table_schema = " + g.placeholder(2)
		args = append(args, schema)
	}
	return query + " ORDER BY ordinal_position", args
}
