package dialect_test

import (
	"testing"

	"db-sink/internal/dialect"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

func TestExpressionBuilder_AppendTable(t *testing.T) {
	tests := []struct {
		name  string
		table dialect.TableID
		mode  dialect.QuoteMode
		want  string
	}{
		{"bare", dialect.NewTableID("t"), dialect.QuoteAlways, `"t"`},
		{"schema", dialect.TableID{Schema: "s", Name: "t"}, dialect.QuoteAlways, `"s"."t"`},
		{"catalog and schema", dialect.TableID{Catalog: "c", Schema: "s", Name: "t"}, dialect.QuoteAlways, `"c"."s"."t"`},
		{"never quoted", dialect.TableID{Schema: "s", Name: "t"}, dialect.QuoteNever, `s.t`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := dialect.NewExpressionBuilder(dialect.DefaultIdentifierRules, tt.mode)
			assert.Equal(t, tt.want, b.AppendTable(tt.table).String())
		})
	}
}

func TestExpressionBuilder_QuoteEscaping(t *testing.T) {
	b := dialect.NewExpressionBuilder(dialect.DefaultIdentifierRules, dialect.QuoteAlways)
	b.AppendIdentifier(`we"ird`)
	assert.Equal(t, pq.QuoteIdentifier(`we"ird`), b.String())

	brackets := dialect.IdentifierRules{Delimiter: ".", LeadingQuote: "[", TrailingQuote: "]"}
	assert.Equal(t, "[a]]b]", brackets.Quote("a]b"))
	assert.Equal(t, "[dbo].[t]", brackets.QuoteQualified("dbo", "t"))
}

func TestExpressionBuilder_AppendList(t *testing.T) {
	table := dialect.NewTableID("t")
	keys := dialect.Columns(table, "k1", "k2")
	nonKeys := dialect.Columns(table, "n1")

	t.Run("column names across lists keep order", func(t *testing.T) {
		b := dialect.NewExpressionBuilder(dialect.DefaultIdentifierRules, dialect.QuoteNever)
		dialect.AppendList[dialect.ColumnID](b).
			DelimitedBy(",").
			TransformedBy(dialect.ColumnNames()).
			Of(keys, nonKeys)
		assert.Equal(t, "k1,k2,n1", b.String())
	})

	t.Run("default transform quotes columns", func(t *testing.T) {
		b := dialect.NewExpressionBuilder(dialect.DefaultIdentifierRules, dialect.QuoteAlways)
		dialect.AppendList[dialect.ColumnID](b).Of(keys)
		assert.Equal(t, `"k1","k2"`, b.String())
	})

	t.Run("strings are literal", func(t *testing.T) {
		b := dialect.NewExpressionBuilder(dialect.DefaultIdentifierRules, dialect.QuoteAlways)
		dialect.AppendList[string](b).DelimitedBy(" | ").Of([]string{"a", "b"}, nil, []string{"c"})
		assert.Equal(t, "a | b | c", b.String())
	})

	t.Run("assignments", func(t *testing.T) {
		b := dialect.NewExpressionBuilder(dialect.DefaultIdentifierRules, dialect.QuoteAlways)
		dialect.AppendList[dialect.ColumnID](b).
			TransformedBy(dialect.ColumnAssignments("%[1]s=EXCLUDED.%[1]s")).
			Of(nonKeys)
		assert.Equal(t, `"n1"=EXCLUDED."n1"`, b.String())
	})

	t.Run("empty lists write nothing", func(t *testing.T) {
		b := dialect.NewExpressionBuilder(dialect.DefaultIdentifierRules, dialect.QuoteAlways)
		dialect.AppendList[dialect.ColumnID](b).Of(nil, []dialect.ColumnID{})
		assert.Empty(t, b.String())
	})
}

func TestExpressionBuilder_Placeholders(t *testing.T) {
	b := dialect.NewExpressionBuilder(dialect.DefaultIdentifierRules, dialect.QuoteAlways)
	assert.Equal(t, "?,?,?", b.AppendMultiple(",", "?", 3).String())

	b = dialect.NewExpressionBuilder(dialect.DefaultIdentifierRules, dialect.QuoteAlways)
	assert.Empty(t, b.AppendMultiple(",", "?", 0).String())

	b = dialect.NewExpressionBuilder(dialect.DefaultIdentifierRules, dialect.QuoteAlways)
	pg := dialect.NewPostgresDialect(dialect.Config{})
	assert.Equal(t, "$3, $4", b.AppendPlaceholders(", ", 2, 3, pg.Placeholder).String())
}

func TestParseQuoteMode(t *testing.T) {
	m, err := dialect.ParseQuoteMode("")
	assert.NoError(t, err)
	assert.Equal(t, dialect.QuoteAlways, m)

	m, err = dialect.ParseQuoteMode(" NEVER ")
	assert.NoError(t, err)
	assert.Equal(t, dialect.QuoteNever, m)

	_, err = dialect.ParseQuoteMode("sometimes")
	assert.Error(t, err)
}
