package dialect

import "fmt"

// Dialect abstracts database-specific SQL generation and parameter binding.
// Implementations are immutable after construction and safe for concurrent use.
type Dialect interface {
	Name() string
	IdentifierRules() IdentifierRules
	ExpressionBuilder() *ExpressionBuilder

	// Type Mapping
	SQLType(f Field) (string, error)

	// Binding
	BindLogical(p ParamSetter, index int, f Field, value any) (BindResult, error)
	BindField(p ParamSetter, index int, f Field, value any) error
	DecodeValue(f Field, raw any) (any, error)

	// Statement Generation
	BuildCreateTable(table TableID, fields []Field) (string, error)
	BuildAlterTable(table TableID, fields []Field) ([]string, error)
	BuildInsertStatement(table TableID, keys, nonKeys []ColumnID) (string, error)
	BuildUpsertStatement(table TableID, keys, nonKeys []ColumnID) (string, error)
	BuildDeleteStatement(table TableID, keys []ColumnID) (string, error)

	// Metadata Queries
	ColumnsQuery(table TableID) (string, []any)
	CurrentTimestampQuery() string

	// Helpers
	Placeholder(index int) string // Returns ?, $1, :1, @p1, etc. (1-based)
	DefaultSchema() string
}

// BindResult tells the caller whether a logical binder consumed the value.
type BindResult int

const (
	// NotHandled means the caller should fall back to primitive binding.
	NotHandled BindResult = iota
	// Handled means the value was bound.
	Handled
)

func (r BindResult) String() string {
	if r == Handled {
		return "handled"
	}
	return "not handled"
}

// ParamSetter receives values for the 1-based parameter slots of a prepared
// statement. It is owned by a single caller at a time.
type ParamSetter interface {
	SetParam(index int, value any) error
}

// Args is a slice-backed ParamSetter whose values can be passed straight to
// (*sql.Stmt).ExecContext.
type Args []any

// NewArgs returns Args with room for n parameters.
func NewArgs(n int) *Args {
	a := make(Args, n)
	return &a
}

// SetParam stores value at the 1-based index, growing the slice as needed.
func (a *Args) SetParam(index int, value any) error {
	if index < 1 {
		return fmt.Errorf("parameter index %d out of range (indexes start at 1)", index)
	}
	for len(*a) < index {
		*a = append(*a, nil)
	}
	(*a)[index-1] = value
	return nil
}

// Values returns the bound values in parameter order.
func (a *Args) Values() []any {
	return *a
}

// Reset clears all slots so the Args can be reused for the next row.
func (a *Args) Reset() {
	for i := range *a {
		(*a)[i] = nil
	}
}
