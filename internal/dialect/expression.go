package dialect

import (
	"fmt"
	"strings"
)

// ExpressionBuilder accumulates SQL text. Identifiers are quoted according to
// the builder's IdentifierRules; values are never written, only placeholders.
type ExpressionBuilder struct {
	rules IdentifierRules
	quote bool
	sb    strings.Builder
}

// NewExpressionBuilder returns an empty builder for the given rules.
func NewExpressionBuilder(rules IdentifierRules, mode QuoteMode) *ExpressionBuilder {
	return &ExpressionBuilder{rules: rules, quote: mode != QuoteNever}
}

// Append writes literal SQL text.
func (b *ExpressionBuilder) Append(s string) *ExpressionBuilder {
	b.sb.WriteString(s)
	return b
}

// Appendf writes formatted literal SQL text.
func (b *ExpressionBuilder) Appendf(format string, args ...any) *ExpressionBuilder {
	fmt.Fprintf(&b.sb, format, args...)
	return b
}

// AppendIdentifier writes a single, possibly quoted, name segment.
func (b *ExpressionBuilder) AppendIdentifier(name string) *ExpressionBuilder {
	if b.quote {
		b.sb.WriteString(b.rules.Quote(name))
	} else {
		b.sb.WriteString(name)
	}
	return b
}

// AppendTable writes the qualified table name.
func (b *ExpressionBuilder) AppendTable(t TableID) *ExpressionBuilder {
	for i, seg := range t.Segments() {
		if i > 0 {
			b.sb.WriteString(b.rules.Delimiter)
		}
		b.AppendIdentifier(seg)
	}
	return b
}

// AppendColumn writes the column name without its table qualifier.
func (b *ExpressionBuilder) AppendColumn(c ColumnID) *ExpressionBuilder {
	return b.AppendIdentifier(c.Name)
}

// AppendMultiple writes n copies of s separated by delim, e.g. "?,?,?".
func (b *ExpressionBuilder) AppendMultiple(delim, s string, n int) *ExpressionBuilder {
	for i := 0; i < n; i++ {
		if i > 0 {
			b.sb.WriteString(delim)
		}
		b.sb.WriteString(s)
	}
	return b
}

// AppendPlaceholders writes n placeholders numbered from start, e.g. "$1,$2".
func (b *ExpressionBuilder) AppendPlaceholders(delim string, n, start int, placeholder func(int) string) *ExpressionBuilder {
	for i := 0; i < n; i++ {
		if i > 0 {
			b.sb.WriteString(delim)
		}
		b.sb.WriteString(placeholder(start + i))
	}
	return b
}

// appendValue is the default list transform.
func (b *ExpressionBuilder) appendValue(v any) {
	switch x := v.(type) {
	case TableID:
		b.AppendTable(x)
	case ColumnID:
		b.AppendColumn(x)
	case Field:
		b.AppendIdentifier(x.Name)
	case string:
		b.sb.WriteString(x)
	case fmt.Stringer:
		b.sb.WriteString(x.String())
	default:
		fmt.Fprint(&b.sb, x)
	}
}

func (b *ExpressionBuilder) String() string {
	return b.sb.String()
}

// Transform renders one list item into the builder.
type Transform[T any] func(b *ExpressionBuilder, item T)

// ListBuilder renders one or more slices as a single delimited list.
type ListBuilder[T any] struct {
	b         *ExpressionBuilder
	delim     string
	transform Transform[T]
}

// AppendList starts a list on b. The default delimiter is "," and items are
// written with the builder's default rendering for their type.
func AppendList[T any](b *ExpressionBuilder) *ListBuilder[T] {
	return &ListBuilder[T]{
		b:     b,
		delim: ",",
		transform: func(b *ExpressionBuilder, item T) {
			b.appendValue(item)
		},
	}
}

// DelimitedBy sets the separator between items.
func (l *ListBuilder[T]) DelimitedBy(delim string) *ListBuilder[T] {
	l.delim = delim
	return l
}

// TransformedBy sets how each item is rendered.
func (l *ListBuilder[T]) TransformedBy(t Transform[T]) *ListBuilder[T] {
	l.transform = t
	return l
}

// Of renders the items of all lists in order and returns the builder.
func (l *ListBuilder[T]) Of(lists ...[]T) *ExpressionBuilder {
	first := true
	for _, list := range lists {
		for _, item := range list {
			if !first {
				l.b.sb.WriteString(l.delim)
			}
			first = false
			l.transform(l.b, item)
		}
	}
	return l.b
}

// ColumnNames renders each column as its quoted name.
func ColumnNames() Transform[ColumnID] {
	return func(b *ExpressionBuilder, c ColumnID) {
		b.AppendColumn(c)
	}
}

// ColumnNamesWithPrefix renders each column as prefix followed by its name,
// e.g. "target." + name.
func ColumnNamesWithPrefix(prefix string) Transform[ColumnID] {
	return func(b *ExpressionBuilder, c ColumnID) {
		b.Append(prefix).AppendColumn(c)
	}
}

// ColumnAssignments renders each column through format, where every %[1]s is
// replaced by the quoted column name, e.g. "%[1]s=EXCLUDED.%[1]s".
func ColumnAssignments(format string) Transform[ColumnID] {
	return func(b *ExpressionBuilder, c ColumnID) {
		name := NewExpressionBuilder(b.rules, b.mode()).AppendColumn(c).String()
		b.Appendf(format, name)
	}
}

// FieldNames renders each field as its quoted name.
func FieldNames() Transform[Field] {
	return func(b *ExpressionBuilder, f Field) {
		b.AppendIdentifier(f.Name)
	}
}

func (b *ExpressionBuilder) mode() QuoteMode {
	if b.quote {
		return QuoteAlways
	}
	return QuoteNever
}
