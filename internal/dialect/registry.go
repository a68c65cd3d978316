package dialect

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
)

// Provider creates a dialect for the connection subprotocols it claims.
type Provider interface {
	Name() string
	Subprotocols() []string
	Create(cfg Config) Dialect
}

type provider struct {
	name         string
	subprotocols []string
	create       func(Config) Dialect
}

// NewProvider returns a Provider backed by a constructor function.
func NewProvider(name string, create func(Config) Dialect, subprotocols ...string) Provider {
	return &provider{name: name, subprotocols: subprotocols, create: create}
}

func (p *provider) Name() string              { return p.name }
func (p *provider) Subprotocols() []string    { return append([]string(nil), p.subprotocols...) }
func (p *provider) Create(cfg Config) Dialect { return p.create(cfg) }

// Registry maps connection subprotocols to dialect providers. It is filled at
// start-up and only read afterwards; each subprotocol has exactly one owner.
type Registry struct {
	mu            sync.RWMutex
	bySubprotocol map[string]Provider
	logger        *slog.Logger
}

// NewRegistry returns an empty registry. A nil logger discards output.
func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Registry{
		bySubprotocol: make(map[string]Provider),
		logger:        logger,
	}
}

// NewDefaultRegistry returns a registry holding the built-in dialects.
func NewDefaultRegistry(logger *slog.Logger) *Registry {
	r := NewRegistry(logger)
	for _, p := range BuiltinProviders() {
		if err := r.Register(p); err != nil {
			// built-in subprotocols are distinct
			panic(err)
		}
	}
	return r
}

// BuiltinProviders lists the dialects shipped with this package.
func BuiltinProviders() []Provider {
	return []Provider{
		NewProvider("GridDBDialect", func(c Config) Dialect { return NewGridDBDialect(c) }, "gs"),
		NewProvider("MysqlDialect", func(c Config) Dialect { return NewMysqlDialect(c) }, "mysql", "mariadb"),
		NewProvider("PostgresDialect", func(c Config) Dialect { return NewPostgresDialect(c) }, "postgresql", "postgres"),
		NewProvider("MSSQLDialect", func(c Config) Dialect { return NewMSSQLDialect(c) }, "sqlserver", "jtds"),
		NewProvider("OracleDialect", func(c Config) Dialect { return NewOracleDialect(c) }, "oracle"),
	}
}

// Register adds p under each of its subprotocols. The registration fails as
// a whole, leaving the registry unchanged, if any subprotocol is empty or
// already taken.
func (r *Registry) Register(p Provider) error {
	keys := p.Subprotocols()
	if len(keys) == 0 {
		return fmt.Errorf("register %s: no subprotocols", p.Name())
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	seen := make(map[string]bool, len(keys))
	for _, k := range keys {
		if k == "" {
			return fmt.Errorf("register %s: empty subprotocol", p.Name())
		}
		if owner, ok := r.bySubprotocol[k]; ok || seen[k] {
			name := p.Name()
			if ok {
				name = owner.Name()
			}
			return fmt.Errorf("register %s: %q owned by %s: %w", p.Name(), k, name, ErrDuplicateSubprotocol)
		}
		seen[k] = true
	}
	for _, k := range keys {
		r.bySubprotocol[k] = p
	}
	r.logger.Debug("registered dialect", slog.String("dialect", p.Name()), slog.Any("subprotocols", keys))
	return nil
}

// ParseSubprotocol extracts the engine token of a connection URL. An optional
// "jdbc:" prefix is skipped; the token ends at the next ':'.
//
//	jdbc:gs://host:41999/cluster -> gs
//	jdbc:oracle:thin:@host:1521  -> oracle
//	postgres://user@host/db      -> postgres
func ParseSubprotocol(url string) (string, error) {
	rest := strings.TrimPrefix(strings.TrimSpace(url), "jdbc:")
	i := strings.IndexByte(rest, ':')
	if i <= 0 {
		return "", fmt.Errorf("%w: %q has no subprotocol", ErrInvalidURL, url)
	}
	return rest[:i], nil
}

// Resolve returns the provider registered for the URL's subprotocol. Lookup
// is exact and case-sensitive.
func (r *Registry) Resolve(url string) (Provider, error) {
	sub, err := ParseSubprotocol(url)
	if err != nil {
		return nil, err
	}
	r.mu.RLock()
	p, ok := r.bySubprotocol[sub]
	r.mu.RUnlock()
	if !ok {
		return nil, &NoDialectError{URL: url, Subprotocol: sub, Available: r.Subprotocols()}
	}
	return p, nil
}

// Create resolves the URL and builds its dialect.
func (r *Registry) Create(url string, cfg Config) (Dialect, error) {
	p, err := r.Resolve(url)
	if err != nil {
		return nil, err
	}
	return p.Create(cfg), nil
}

// CreateOrGeneric builds the URL's dialect, falling back to the generic ANSI
// dialect when none matches.
func (r *Registry) CreateOrGeneric(url string, cfg Config) Dialect {
	d, err := r.Create(url, cfg)
	if err != nil {
		r.logger.Warn("using generic dialect", slog.String("url", url), slog.Any("error", err))
		return NewGeneric(cfg)
	}
	r.logger.Debug("resolved dialect", slog.String("dialect", d.Name()))
	return d
}

// Subprotocols returns all registered subprotocols (sorted).
func (r *Registry) Subprotocols() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	keys := make([]string, 0, len(r.bySubprotocol))
	for k := range r.bySubprotocol {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Providers returns the names of all registered providers (sorted).
func (r *Registry) Providers() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	seen := make(map[string]bool)
	names := make([]string, 0, len(r.bySubprotocol))
	for _, p := range r.bySubprotocol {
		if !seen[p.Name()] {
			seen[p.Name()] = true
			names = append(names, p.Name())
		}
	}
	sort.Strings(names)
	return names
}

// Ensure interface implementation
var _ Dialect = (*Generic)(nil)
var _ Dialect = (*GridDBDialect)(nil)
var _ Dialect = (*MysqlDialect)(nil)
var _ Dialect = (*PostgresDialect)(nil)
var _ Dialect = (*MSSQLDialect)(nil)
var _ Dialect = (*OracleDialect)(nil)
