package dialect

import (
	"fmt"
	"strings"
	"time"

	"github.com/golang-sql/civil"
	"github.com/shopspring/decimal"
)

// timestampLayouts are tried in order when a driver returns temporal columns as text.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02",
}

// DecodeValue converts a value read back from a column into the Go value of
// the field's logical type: civil.Date, civil.Time, time.Time (UTC) or
// decimal.Decimal. Non-logical values are returned unchanged.
func (g *Generic) DecodeValue(f Field, raw any) (any, error) {
	lt, ok := f.Logical()
	if !ok || raw == nil {
		return raw, nil
	}
	if b, isBytes := raw.([]byte); isBytes {
		raw = string(b)
	}
	switch lt {
	case Date:
		// A bare date is already a calendar date. Anything longer is an
		// instant and is read in UTC.
		if s, isStr := raw.(string); isStr && len(s) == len("2006-01-02") {
			d, err := civil.ParseDate(s)
			if err != nil {
				return nil, fmt.Errorf("decode %s: %w", f.Name, err)
			}
			return d, nil
		}
		t, err := decodeTime(f, raw)
		if err != nil {
			return nil, err
		}
		return civil.DateOf(t), nil
	case Time:
		if s, isStr := raw.(string); isStr {
			if t, err := civil.ParseTime(s); err == nil {
				return t, nil
			}
		}
		t, err := decodeTime(f, raw)
		if err != nil {
			return nil, err
		}
		return civil.TimeOf(t), nil
	case Timestamp:
		return decodeTime(f, raw)
	case Decimal:
		switch x := raw.(type) {
		case string:
			d, err := decimal.NewFromString(strings.TrimSpace(x))
			if err != nil {
				return nil, fmt.Errorf("decode %s: %w", f.Name, err)
			}
			return d, nil
		case float64:
			return decimal.NewFromFloat(x), nil
		case int64:
			return decimal.NewFromInt(x), nil
		case decimal.Decimal:
			return x, nil
		}
		return nil, fmt.Errorf("decode %s: cannot read DECIMAL from %T", f.Name, raw)
	default:
		return raw, nil
	}
}

// decodeTime reads a temporal column as a UTC instant.
func decodeTime(f Field, raw any) (time.Time, error) {
	switch x := raw.(type) {
	case time.Time:
		return x.UTC(), nil
	case string:
		for _, layout := range timestampLayouts {
			if t, err := time.Parse(layout, x); err == nil {
				return t.UTC(), nil
			}
		}
		return time.Time{}, fmt.Errorf("decode %s: unrecognized time %q", f.Name, x)
	default:
		return time.Time{}, fmt.Errorf("decode %s: cannot read time from %T", f.Name, raw)
	}
}
