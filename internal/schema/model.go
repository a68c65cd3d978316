package schema

import (
	"errors"
	"fmt"
	"strings"

	"db-sink/internal/dialect"
)

var (
	ErrNoFields       = errors.New("table has no fields")
	ErrDuplicateField = errors.New("duplicate field")
)

// Table is a sink table as declared in the configuration file.
type Table struct {
	Name      string      `mapstructure:"name"`
	Schema    string      `mapstructure:"schema"`
	Catalog   string      `mapstructure:"catalog"`
	DependsOn []string    `mapstructure:"depends_on"`
	Fields    []FieldSpec `mapstructure:"fields"`
}

// FieldSpec is the configured form of a record field.
type FieldSpec struct {
	Name     string `mapstructure:"name"`
	Type     string `mapstructure:"type"`    // int32, string, bytes, ...
	Logical  string `mapstructure:"logical"` // decimal, date, time, timestamp or a full logical name
	Key      bool   `mapstructure:"key"`
	Optional bool   `mapstructure:"optional"`
	Scale    int    `mapstructure:"scale"`
}

// Column is an existing database column as reported by Inspect.
type Column struct {
	Name       string
	DataType   string
	IsNullable bool
}

var logicalAliases = map[string]string{
	"decimal":   dialect.DecimalLogicalName,
	"date":      dialect.DateLogicalName,
	"time":      dialect.TimeLogicalName,
	"timestamp": dialect.TimestampLogicalName,
}

// physical type used when a logical field omits its type
var logicalDefaults = map[dialect.LogicalType]dialect.PrimitiveType{
	dialect.Decimal:   dialect.Bytes,
	dialect.Date:      dialect.Int32,
	dialect.Time:      dialect.Int32,
	dialect.Timestamp: dialect.Int64,
}

// ToField converts the configured field into a dialect field.
func (s FieldSpec) ToField() (dialect.Field, error) {
	if strings.TrimSpace(s.Name) == "" {
		return dialect.Field{}, errors.New("field name is empty")
	}
	f := dialect.Field{
		Name:       s.Name,
		PrimaryKey: s.Key,
		Optional:   s.Optional,
		Scale:      s.Scale,
	}

	if s.Logical != "" {
		name := s.Logical
		if full, ok := logicalAliases[strings.ToLower(name)]; ok {
			name = full
		}
		f.LogicalName = name
	}

	if s.Type == "" {
		lt, ok := f.Logical()
		if !ok {
			return dialect.Field{}, fmt.Errorf("field %q: type is required", s.Name)
		}
		f.Type = logicalDefaults[lt]
	} else {
		t, err := dialect.ParsePrimitiveType(s.Type)
		if err != nil {
			return dialect.Field{}, fmt.Errorf("field %q: %w", s.Name, err)
		}
		f.Type = t
	}

	if lt, ok := f.Logical(); ok && lt == dialect.Decimal && f.Scale < 0 {
		return dialect.Field{}, fmt.Errorf("field %q: negative decimal scale %d", s.Name, f.Scale)
	}
	if f.PrimaryKey && f.Optional {
		return dialect.Field{}, fmt.Errorf("field %q: key fields cannot be optional", s.Name)
	}
	return f, nil
}

// ID returns the qualified table identifier.
func (t *Table) ID() dialect.TableID {
	return dialect.TableID{Catalog: t.Catalog, Schema: t.Schema, Name: t.Name}
}

// DialectFields converts and validates all field specs, in declaration order.
func (t *Table) DialectFields() ([]dialect.Field, error) {
	if len(t.Fields) == 0 {
		return nil, fmt.Errorf("table %s: %w", t.Name, ErrNoFields)
	}
	seen := make(map[string]bool, len(t.Fields))
	fields := make([]dialect.Field, 0, len(t.Fields))
	for _, spec := range t.Fields {
		f, err := spec.ToField()
		if err != nil {
			return nil, fmt.Errorf("table %s: %w", t.Name, err)
		}
		key := strings.ToUpper(f.Name)
		if seen[key] {
			return nil, fmt.Errorf("table %s: %w %q", t.Name, ErrDuplicateField, f.Name)
		}
		seen[key] = true
		fields = append(fields, f)
	}
	return fields, nil
}

// Layout is a table's fields split the way statements and binding need them.
type Layout struct {
	Table   dialect.TableID
	Keys    []dialect.ColumnID
	NonKeys []dialect.ColumnID
	Fields  []dialect.Field // keys first, then non-keys; matches placeholder order
}

// Split validates the table and orders its fields keys first.
func (t *Table) Split() (*Layout, error) {
	fields, err := t.DialectFields()
	if err != nil {
		return nil, err
	}
	l := &Layout{Table: t.ID()}
	var nonKeyFields []dialect.Field
	for _, f := range fields {
		if f.PrimaryKey {
			l.Keys = append(l.Keys, dialect.ColumnID{Table: l.Table, Name: f.Name})
			l.Fields = append(l.Fields, f)
		} else {
			l.NonKeys = append(l.NonKeys, dialect.ColumnID{Table: l.Table, Name: f.Name})
			nonKeyFields = append(nonKeyFields, f)
		}
	}
	l.Fields = append(l.Fields, nonKeyFields...)
	return l, nil
}
