package dialect

import (
	"fmt"
	"strings"
)

// PrimitiveType is the physical type of a record field.
type PrimitiveType int

const (
	Boolean PrimitiveType = iota
	Int8
	Int16
	Int32
	Int64
	Float32
	Float64
	String
	Bytes
	Struct
	Array
	Map
)

var primitiveNames = [...]string{
	Boolean: "BOOLEAN",
	Int8:    "INT8",
	Int16:   "INT16",
	Int32:   "INT32",
	Int64:   "INT64",
	Float32: "FLOAT32",
	Float64: "FLOAT64",
	String:  "STRING",
	Bytes:   "BYTES",
	Struct:  "STRUCT",
	Array:   "ARRAY",
	Map:     "MAP",
}

func (t PrimitiveType) String() string {
	if t < 0 || int(t) >= len(primitiveNames) {
		return fmt.Sprintf("PrimitiveType(%d)", int(t))
	}
	return primitiveNames[t]
}

// ParsePrimitiveType looks up a primitive type by name, ignoring case.
func ParsePrimitiveType(name string) (PrimitiveType, error) {
	for i, n := range primitiveNames {
		if strings.EqualFold(n, name) {
			return PrimitiveType(i), nil
		}
	}
	return 0, fmt.Errorf("unknown primitive type %q", name)
}

// LogicalType refines a primitive type with temporal or decimal semantics.
type LogicalType int

const (
	Decimal LogicalType = iota
	Date
	Time
	Timestamp
)

// Logical type names as carried by record schemas.
const (
	DecimalLogicalName   = "org.apache.kafka.connect.data.Decimal"
	DateLogicalName      = "org.apache.kafka.connect.data.Date"
	TimeLogicalName      = "org.apache.kafka.connect.data.Time"
	TimestampLogicalName = "org.apache.kafka.connect.data.Timestamp"
)

func (t LogicalType) String() string {
	switch t {
	case Decimal:
		return "DECIMAL"
	case Date:
		return "DATE"
	case Time:
		return "TIME"
	case Timestamp:
		return "TIMESTAMP"
	default:
		return fmt.Sprintf("LogicalType(%d)", int(t))
	}
}

// LogicalTypeOf reports the logical type for a schema name. Unknown or empty
// names report false so that callers fall through to the primitive type.
func LogicalTypeOf(name string) (LogicalType, bool) {
	switch name {
	case DecimalLogicalName:
		return Decimal, true
	case DateLogicalName:
		return Date, true
	case TimeLogicalName:
		return Time, true
	case TimestampLogicalName:
		return Timestamp, true
	default:
		return 0, false
	}
}

// Field describes one record field to be persisted.
type Field struct {
	Name        string
	LogicalName string // empty when the field has no logical type
	Type        PrimitiveType
	PrimaryKey  bool
	Optional    bool
	Scale       int // decimal scale
}

// Logical returns the recognized logical type of the field, if any.
func (f Field) Logical() (LogicalType, bool) {
	if f.LogicalName == "" {
		return 0, false
	}
	return LogicalTypeOf(f.LogicalName)
}

// TableID is a possibly qualified table reference.
type TableID struct {
	Catalog string
	Schema  string
	Name    string
}

// NewTableID returns a TableID for an unqualified table name.
func NewTableID(name string) TableID {
	return TableID{Name: name}
}

// Segments returns the non-empty name parts, outermost first.
func (t TableID) Segments() []string {
	parts := make([]string, 0, 3)
	if t.Catalog != "" {
		parts = append(parts, t.Catalog)
	}
	if t.Schema != "" {
		parts = append(parts, t.Schema)
	}
	return append(parts, t.Name)
}

func (t TableID) String() string {
	return strings.Join(t.Segments(), ".")
}

// ColumnID is a column of a table.
type ColumnID struct {
	Table TableID
	Name  string
}

// Columns returns a ColumnID for each name, in order.
func Columns(table TableID, names ...string) []ColumnID {
	cols := make([]ColumnID, len(names))
	for i, n := range names {
		cols[i] = ColumnID{Table: table, Name: n}
	}
	return cols
}

func (c ColumnID) String() string {
	if c.Table.Name == "" {
		return c.Name
	}
	return c.Table.String() + "." + c.Name
}
