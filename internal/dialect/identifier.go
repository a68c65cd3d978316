package dialect

import (
	"fmt"
	"strings"
)

// IdentifierRules holds the quoting characters and the delimiter used between
// the segments of a qualified name.
type IdentifierRules struct {
	Delimiter     string
	LeadingQuote  string
	TrailingQuote string
}

// DefaultIdentifierRules are the ANSI rules: double quotes, dot delimiter.
var DefaultIdentifierRules = IdentifierRules{Delimiter: ".", LeadingQuote: `"`, TrailingQuote: `"`}

// Quote wraps a single name segment. An embedded trailing quote is doubled.
func (r IdentifierRules) Quote(name string) string {
	if r.TrailingQuote != "" {
		name = strings.ReplaceAll(name, r.TrailingQuote, r.TrailingQuote+r.TrailingQuote)
	}
	return r.LeadingQuote + name + r.TrailingQuote
}

// QuoteQualified quotes every segment and joins them with the delimiter.
func (r IdentifierRules) QuoteQualified(segments ...string) string {
	quoted := make([]string, len(segments))
	for i, s := range segments {
		quoted[i] = r.Quote(s)
	}
	return strings.Join(quoted, r.Delimiter)
}

// QuoteMode controls whether identifiers are quoted in generated SQL.
type QuoteMode string

const (
	QuoteAlways QuoteMode = "always"
	QuoteNever  QuoteMode = "never"
)

// ParseQuoteMode accepts "always", "never" or an empty string (always).
func ParseQuoteMode(s string) (QuoteMode, error) {
	switch QuoteMode(strings.ToLower(strings.TrimSpace(s))) {
	case "", QuoteAlways:
		return QuoteAlways, nil
	case QuoteNever:
		return QuoteNever, nil
	default:
		return "", fmt.Errorf("invalid quote mode %q (want %q or %q)", s, QuoteAlways, QuoteNever)
	}
}

// Config carries the connector options a dialect reads at construction.
type Config struct {
	QuoteIdentifiers QuoteMode `mapstructure:"quote_identifiers"`
}
