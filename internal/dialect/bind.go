package dialect

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-sql/civil"
	"github.com/shopspring/decimal"
)

var errNullRequired = errors.New("null value for required field")

// BindField binds value into slot index. Nulls are allowed only for optional
// fields. Logical types go through the dialect's LogicalBinder first; values
// it does not handle are bound by their primitive type.
func (g *Generic) BindField(p ParamSetter, index int, f Field, value any) error {
	if value == nil {
		if !f.Optional {
			return &BindError{Index: index, Field: f.Name, Err: errNullRequired}
		}
		return setParam(p, index, f, nil)
	}
	res, err := g.logical.BindLogical(p, index, f, value)
	if err != nil {
		return err
	}
	if res == Handled {
		return nil
	}
	return g.bindPrimitive(p, index, f, value)
}

// BindLogical binds DATE, TIME, TIMESTAMP and DECIMAL values. Temporal values
// keep their instant: dates and times are taken from the UTC clock.
func (g *Generic) BindLogical(p ParamSetter, index int, f Field, value any) (BindResult, error) {
	lt, ok := f.Logical()
	if !ok {
		return NotHandled, nil
	}
	var (
		bound any
		err   error
	)
	switch lt {
	case Date:
		bound, err = DateValue(value)
	case Time:
		bound, err = TimeValue(value)
	case Timestamp:
		bound, err = TimestampValue(value)
	case Decimal:
		bound, err = DecimalValue(value)
	default:
		return NotHandled, nil
	}
	if err != nil {
		return NotHandled, &BindError{Index: index, Field: f.Name, Value: value, Err: err}
	}
	if err := setParam(p, index, f, bound); err != nil {
		return NotHandled, err
	}
	return Handled, nil
}

func (g *Generic) bindPrimitive(p ParamSetter, index int, f Field, value any) error {
	var ok bool
	switch f.Type {
	case Boolean:
		_, ok = value.(bool)
	case Int8:
		_, ok = value.(int8)
	case Int16:
		_, ok = value.(int16)
	case Int32:
		_, ok = value.(int32)
	case Int64:
		_, ok = value.(int64)
	case Float32:
		_, ok = value.(float32)
	case Float64:
		_, ok = value.(float64)
	case String:
		_, ok = value.(string)
	case Bytes:
		_, ok = value.([]byte)
	case Struct, Array, Map:
		return &BindError{Index: index, Field: f.Name, Value: value, Err: g.unsupported(f)}
	default:
		return &BindError{Index: index, Field: f.Name, Value: value, Err: g.unsupported(f)}
	}
	if !ok {
		return &BindError{
			Index: index,
			Field: f.Name,
			Value: value,
			Err:   fmt.Errorf("%s field requires a %s value", f.Type, goTypeFor(f.Type)),
		}
	}
	return setParam(p, index, f, value)
}

func setParam(p ParamSetter, index int, f Field, value any) error {
	if err := p.SetParam(index, value); err != nil {
		return &BindError{Index: index, Field: f.Name, Value: value, Err: err}
	}
	return nil
}

func goTypeFor(t PrimitiveType) string {
	switch t {
	case Boolean:
		return "bool"
	case Int8:
		return "int8"
	case Int16:
		return "int16"
	case Int32:
		return "int32"
	case Int64:
		return "int64"
	case Float32:
		return "float32"
	case Float64:
		return "float64"
	case String:
		return "string"
	case Bytes:
		return "[]byte"
	default:
		return "supported"
	}
}

// DateValue returns midnight UTC of the value's UTC calendar date.
func DateValue(v any) (time.Time, error) {
	switch x := v.(type) {
	case time.Time:
		return civil.DateOf(x.UTC()).In(time.UTC), nil
	case civil.Date:
		return x.In(time.UTC), nil
	default:
		return time.Time{}, fmt.Errorf("DATE requires time.Time or civil.Date, got %T", v)
	}
}

// TimeValue returns the value's UTC clock time on 1970-01-01 UTC.
func TimeValue(v any) (time.Time, error) {
	var t civil.Time
	switch x := v.(type) {
	case time.Time:
		t = civil.TimeOf(x.UTC())
	case civil.Time:
		t = x
	default:
		return time.Time{}, fmt.Errorf("TIME requires time.Time or civil.Time, got %T", v)
	}
	return civil.DateTime{Date: epochDate, Time: t}.In(time.UTC), nil
}

// TimestampValue returns the same instant in UTC.
func TimestampValue(v any) (time.Time, error) {
	x, ok := v.(time.Time)
	if !ok {
		return time.Time{}, fmt.Errorf("TIMESTAMP requires time.Time, got %T", v)
	}
	return x.UTC(), nil
}

// DecimalValue accepts decimal.Decimal or a non-nil *decimal.Decimal.
func DecimalValue(v any) (decimal.Decimal, error) {
	switch x := v.(type) {
	case decimal.Decimal:
		return x, nil
	case *decimal.Decimal:
		if x != nil {
			return *x, nil
		}
	}
	return decimal.Decimal{}, fmt.Errorf("DECIMAL requires decimal.Decimal, got %T", v)
}

var epochDate = civil.Date{Year: 1970, Month: time.January, Day: 1}
