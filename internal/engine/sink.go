package engine

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"db-sink/internal/dialect"
	"db-sink/internal/schema"
)

var (
	// ErrTableMissing is returned when a table does not exist and auto-create is off.
	ErrTableMissing = errors.New("table does not exist")

	// ErrCannotEvolve is returned when existing columns lack configured fields
	// that cannot, or may not, be added.
	ErrCannotEvolve = errors.New("table cannot be evolved")
)

// InsertMode selects the DML used by Write.
type InsertMode string

const (
	InsertModeUpsert InsertMode = "upsert"
	InsertModeInsert InsertMode = "insert"
)

// ParseInsertMode accepts "upsert", "insert" or an empty string (upsert).
func ParseInsertMode(s string) (InsertMode, error) {
	switch InsertMode(strings.ToLower(strings.TrimSpace(s))) {
	case "", InsertModeUpsert:
		return InsertModeUpsert, nil
	case InsertModeInsert:
		return InsertModeInsert, nil
	default:
		return "", fmt.Errorf("invalid insert mode %q", s)
	}
}

const defaultBatchSize = 500

// Options controls how tables are prepared and written.
type Options struct {
	InsertMode InsertMode `mapstructure:"insert_mode"`
	AutoCreate bool       `mapstructure:"auto_create"`
	AutoEvolve bool       `mapstructure:"auto_evolve"`
	BatchSize  int        `mapstructure:"batch_size"`
}

// Record is one row keyed by field name. Missing keys bind as NULL.
type Record map[string]any

// Result summarizes a Write.
type Result struct {
	Table   string
	Target  int
	Written int
}

// Evolution describes what Prepare changed.
type Evolution struct {
	Table      dialect.TableID
	Created    bool
	Added      []string
	Statements []string
}

// Sink writes records into tables through a dialect.
type Sink struct {
	db      *sql.DB
	dialect dialect.Dialect
	logger  *slog.Logger
	opts    Options
}

// NewSink returns a sink. A nil logger discards output.
func NewSink(db *sql.DB, d dialect.Dialect, opts Options, logger *slog.Logger) *Sink {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if opts.InsertMode == "" {
		opts.InsertMode = InsertModeUpsert
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = defaultBatchSize
	}
	return &Sink{db: db, dialect: d, logger: logger, opts: opts}
}

// Prepare makes the database table match the configured one: it creates a
// missing table and adds missing optional columns, depending on Options.
func (s *Sink) Prepare(ctx context.Context, t *schema.Table) (*Evolution, error) {
	fields, err := t.DialectFields()
	if err != nil {
		return nil, err
	}
	id := t.ID()
	ev := &Evolution{Table: id}

	existing, err := schema.Inspect(ctx, s.db, s.dialect, id)
	if err != nil {
		return nil, err
	}

	if len(existing) == 0 {
		if !s.opts.AutoCreate {
			return nil, fmt.Errorf("%s: %w", id, ErrTableMissing)
		}
		stmt, err := s.dialect.BuildCreateTable(id, fields)
		if err != nil {
			return nil, err
		}
		if err := s.exec(ctx, stmt); err != nil {
			return nil, err
		}
		s.logger.Info("created table", slog.String("table", id.String()), slog.Int("columns", len(fields)))
		ev.Created = true
		ev.Statements = []string{stmt}
		return ev, nil
	}

	missing := schema.MissingFields(fields, existing)
	if len(missing) == 0 {
		return ev, nil
	}
	for _, f := range missing {
		if !f.Optional {
			return nil, fmt.Errorf("%s: required field %q has no column: %w", id, f.Name, ErrCannotEvolve)
		}
	}
	if !s.opts.AutoEvolve {
		return nil, fmt.Errorf("%s: %d missing columns and auto-evolve is off: %w", id, len(missing), ErrCannotEvolve)
	}

	stmts, err := s.dialect.BuildAlterTable(id, missing)
	if err != nil {
		return nil, err
	}
	for _, stmt := range stmts {
		if err := s.exec(ctx, stmt); err != nil {
			return nil, err
		}
	}
	for _, f := range missing {
		ev.Added = append(ev.Added, f.Name)
	}
	ev.Statements = stmts
	s.logger.Info("altered table", slog.String("table", id.String()), slog.Any("added", ev.Added))
	return ev, nil
}

func (s *Sink) exec(ctx context.Context, stmt string) error {
	s.logger.Debug("exec", slog.String("sql", stmt))
	if _, err := s.db.ExecContext(ctx, stmt); err != nil {
		return fmt.Errorf("failed to execute %q: %w", stmt, err)
	}
	return nil
}

// Statement returns the DML Write uses for the table.
func (s *Sink) Statement(l *schema.Layout) (string, error) {
	if s.opts.InsertMode == InsertModeInsert {
		return s.dialect.BuildInsertStatement(l.Table, l.Keys, l.NonKeys)
	}
	return s.dialect.BuildUpsertStatement(l.Table, l.Keys, l.NonKeys)
}

// Write binds and executes records in batches of Options.BatchSize, one
// transaction per batch. A failing record rolls back its batch and stops the
// write; Result.Written counts committed records only. onProgress, if set,
// is called after every executed record.
func (s *Sink) Write(ctx context.Context, t *schema.Table, records []Record, onProgress func()) (Result, error) {
	res := Result{Table: t.Name, Target: len(records)}
	layout, err := t.Split()
	if err != nil {
		return res, err
	}
	query, err := s.Statement(layout)
	if err != nil {
		return res, err
	}
	s.logger.Debug("write", slog.String("table", t.Name), slog.String("sql", query), slog.Int("records", len(records)))

	args := dialect.NewArgs(len(layout.Fields))
	for start := 0; start < len(records); start += s.opts.BatchSize {
		end := min(start+s.opts.BatchSize, len(records))
		if err := s.writeBatch(ctx, query, layout, records[start:end], args, start, onProgress); err != nil {
			return res, err
		}
		res.Written = end
	}
	return res, nil
}

func (s *Sink) writeBatch(ctx context.Context, query string, l *schema.Layout, batch []Record, args *dialect.Args, offset int, onProgress func()) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				s.logger.Warn("rollback failed", slog.Any("error", rbErr))
			}
		}
	}()

	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to prepare %q: %w", query, err)
	}
	defer stmt.Close()

	for i, rec := range batch {
		args.Reset()
		for j, f := range l.Fields {
			if err := s.dialect.BindField(args, j+1, f, rec[f.Name]); err != nil {
				return fmt.Errorf("record %d: %w", offset+i, err)
			}
		}
		if _, err := stmt.ExecContext(ctx, args.Values()...); err != nil {
			return fmt.Errorf("record %d: %w", offset+i, err)
		}
		if onProgress != nil {
			onProgress()
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	return nil
}

// Now reads the database clock.
func (s *Sink) Now(ctx context.Context) (any, error) {
	var now any
	if err := s.db.QueryRowContext(ctx, s.dialect.CurrentTimestampQuery()).Scan(&now); err != nil {
		return nil, fmt.Errorf("failed to read database time: %w", err)
	}
	return now, nil
}
