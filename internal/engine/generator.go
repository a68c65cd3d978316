package engine

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"db-sink/internal/dialect"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/golang-sql/civil"
	"github.com/shopspring/decimal"
)

// abbreviations maps column-name tokens to the value hints they stand for.
var abbreviations = map[string]string{
	"nm": "name", "name": "name", "first": "name", "last": "name",
	"mail": "email", "email": "email",
	"tel": "phone", "hp": "phone", "ph": "phone", "phone": "phone", "mobile": "phone",
	"addr": "address", "address": "address", "st": "address", "street": "address",
	"city": "city", "loc": "city",
	"zip": "zipcode", "post": "zipcode", "postal": "zipcode",
	"country": "country",
	"company": "company", "biz": "company",
	"url": "url", "ip": "ip",
	"title": "title", "tit": "title", "subj": "title", "subject": "title",
	"desc": "text", "msg": "text", "txt": "text", "comment": "text", "content": "text",
	"yn": "yesno", "flg": "yesno", "flag": "yesno",
}

// hintFor guesses what a column holds from its name. Id columns get no hint.
func hintFor(column string) string {
	tokens := strings.FieldsFunc(strings.ToLower(column), func(r rune) bool {
		return r == '_' || r == '-' || r == ' '
	})
	if n := len(tokens); n > 0 && (tokens[n-1] == "id" || tokens[n-1] == "no") {
		return ""
	}
	for _, tok := range tokens {
		if h, ok := abbreviations[tok]; ok {
			return h
		}
	}
	return ""
}

// Generator produces synthetic records for a table layout.
type Generator struct {
	faker *gofakeit.Faker
	seq   int
}

// NewGenerator returns a generator; seed 0 picks a random seed.
func NewGenerator(seed int64) *Generator {
	return &Generator{faker: gofakeit.New(seed)}
}

// ErrKeySpaceExhausted is returned when the key fields cannot take another
// distinct value.
var ErrKeySpaceExhausted = errors.New("key space exhausted")

// Records generates n records. Key fields are derived from a running sequence,
// so records stay distinct on their key for as long as the widest key field
// has room. Asking for more than that fails before anything is generated.
func (g *Generator) Records(fields []dialect.Field, n int) ([]Record, error) {
	if limit, bounded := KeyCapacity(fields); bounded && g.seq+n > limit {
		return nil, fmt.Errorf("%w: %d records requested, %d distinct keys left",
			ErrKeySpaceExhausted, n, max(limit-g.seq, 0))
	}
	out := make([]Record, 0, n)
	for range n {
		out = append(out, g.Record(fields))
	}
	return out, nil
}

// KeyCapacity reports how many records fields can key distinctly. Every key
// field follows the same sequence, so the key tuple repeats only once the
// widest field does.
func KeyCapacity(fields []dialect.Field) (int, bool) {
	limit, keyed := 0, false
	for _, f := range fields {
		if !f.PrimaryKey {
			continue
		}
		keyed = true
		c, bounded := fieldCapacity(f)
		if !bounded {
			return 0, false
		}
		limit = max(limit, c)
	}
	return limit, keyed
}

func fieldCapacity(f dialect.Field) (int, bool) {
	if lt, ok := f.Logical(); ok {
		if lt == dialect.Time {
			return 24 * 60 * 60, true
		}
		return 0, false
	}
	switch f.Type {
	case dialect.Boolean:
		return 2, true
	case dialect.Int8:
		return 1 << 8, true
	case dialect.Int16:
		return 1 << 16, true
	case dialect.Float32:
		return 1 << 24, true
	default:
		return 0, false
	}
}

// Record generates the next record.
func (g *Generator) Record(fields []dialect.Field) Record {
	g.seq++
	rec := make(Record, len(fields))
	for _, f := range fields {
		rec[f.Name] = g.Value(f, g.seq)
	}
	return rec
}

// Value generates a value for f that BindField accepts. Optional fields are
// occasionally NULL.
func (g *Generator) Value(f dialect.Field, seq int) any {
	if f.PrimaryKey {
		return keyValue(f, seq)
	}
	if f.Optional && g.faker.Number(1, 10) == 1 {
		return nil
	}

	if lt, ok := f.Logical(); ok {
		switch lt {
		case dialect.Date:
			return civil.DateOf(g.faker.DateRange(time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC), time.Now()))
		case dialect.Time:
			return civil.TimeOf(g.faker.Date())
		case dialect.Timestamp:
			return g.faker.DateRange(time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC), time.Now()).UTC()
		case dialect.Decimal:
			return decimal.NewFromFloat(g.faker.Float64Range(0, 100000)).Round(int32(f.Scale))
		}
	}

	switch f.Type {
	case dialect.Boolean:
		return g.faker.Bool()
	case dialect.Int8:
		return int8(g.faker.Number(0, 127))
	case dialect.Int16:
		return int16(g.faker.Number(0, 32767))
	case dialect.Int32:
		return int32(g.faker.Number(0, 1000000))
	case dialect.Int64:
		return int64(g.faker.Number(0, 1000000000))
	case dialect.Float32:
		return g.faker.Float32Range(0, 10000)
	case dialect.Float64:
		return g.faker.Float64Range(0, 10000)
	case dialect.String:
		return g.text(f.Name)
	case dialect.Bytes:
		return []byte(g.faker.LetterN(16))
	default:
		return nil
	}
}

func (g *Generator) text(column string) string {
	switch hintFor(column) {
	case "name":
		return g.faker.Name()
	case "email":
		return g.faker.Email()
	case "phone":
		return g.faker.Phone()
	case "address":
		return g.faker.Street()
	case "city":
		return g.faker.City()
	case "zipcode":
		return g.faker.Zip()
	case "country":
		return g.faker.Country()
	case "company":
		return g.faker.Company()
	case "url":
		return g.faker.URL()
	case "ip":
		return g.faker.IPv4Address()
	case "title":
		return g.faker.Sentence(3)
	case "text":
		return g.faker.Sentence(10)
	case "yesno":
		if g.faker.Bool() {
			return "Y"
		}
		return "N"
	default:
		return g.faker.Word()
	}
}

func keyValue(f dialect.Field, seq int) any {
	if lt, ok := f.Logical(); ok {
		switch lt {
		case dialect.Date:
			return civil.Date{Year: 1970, Month: time.January, Day: 1}.AddDays(seq)
		case dialect.Time:
			return civil.TimeOf(time.Unix(int64(seq), 0).UTC())
		case dialect.Timestamp:
			return time.Unix(int64(seq), 0).UTC()
		case dialect.Decimal:
			return decimal.NewFromInt(int64(seq))
		}
	}
	switch f.Type {
	case dialect.Int8:
		return int8(seq)
	case dialect.Int16:
		return int16(seq)
	case dialect.Int32:
		return int32(seq)
	case dialect.Int64:
		return int64(seq)
	case dialect.Float32:
		return float32(seq)
	case dialect.Float64:
		return float64(seq)
	case dialect.Bytes:
		return []byte(fmt.Sprintf("%s-%08d", f.Name, seq))
	case dialect.Boolean:
		return seq%2 == 1
	default:
		return fmt.Sprintf("%s-%08d", f.Name, seq)
	}
}
