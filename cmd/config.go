package cmd

import (
	"fmt"
	"strings"

	"db-sink/internal/dialect"
	"db-sink/internal/engine"
	"db-sink/internal/schema"

	"github.com/spf13/viper"
)

type DBConfig struct {
	Name   string `mapstructure:"name"`
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`
	URL    string `mapstructure:"url"`
	Active bool   `mapstructure:"active"`
}

// DialectURL is the URL whose subprotocol selects the dialect. Without an
// explicit url the driver name is used, e.g. "postgres:".
func (c *DBConfig) DialectURL() string {
	if c.URL != "" {
		return c.URL
	}
	return c.Driver + ":"
}

// GetActiveDBConfig returns the currently active database configuration.
// The --url flag overrides its url.
func GetActiveDBConfig() (*DBConfig, error) {
	var configs []DBConfig

	if err := viper.UnmarshalKey("databases", &configs); err != nil {
		return nil, fmt.Errorf("failed to parse databases config: %w", err)
	}

	var activeConfig *DBConfig
	count := 0

	for i := range configs {
		if configs[i].Active {
			activeConfig = &configs[i]
			count++
		}
	}

	if count == 0 {
		if dbURL != "" {
			return &DBConfig{Name: "cli", URL: dbURL, Active: true}, nil
		}
		return nil, fmt.Errorf("no active database found in config (set active: true)")
	}
	if count > 1 {
		return nil, fmt.Errorf("multiple active databases found (only one can be active)")
	}

	if dbURL != "" {
		activeConfig.URL = dbURL
	}
	return activeConfig, nil
}

// LoadDialectConfig reads the dialect section.
func LoadDialectConfig() (dialect.Config, error) {
	var cfg dialect.Config
	if err := viper.UnmarshalKey("dialect", &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse dialect config: %w", err)
	}
	mode, err := dialect.ParseQuoteMode(string(cfg.QuoteIdentifiers))
	if err != nil {
		return cfg, err
	}
	cfg.QuoteIdentifiers = mode
	return cfg, nil
}

// LoadSinkOptions reads the sink section.
func LoadSinkOptions() (engine.Options, error) {
	var opts engine.Options
	if err := viper.UnmarshalKey("sink", &opts); err != nil {
		return opts, fmt.Errorf("failed to parse sink config: %w", err)
	}
	mode, err := engine.ParseInsertMode(string(opts.InsertMode))
	if err != nil {
		return opts, err
	}
	opts.InsertMode = mode
	return opts, nil
}

// LoadTables reads the configured tables in dependency order. A non-empty
// filter keeps only the named tables.
func LoadTables(filter []string) ([]*schema.Table, error) {
	var tables []*schema.Table
	if err := viper.UnmarshalKey("tables", &tables); err != nil {
		return nil, fmt.Errorf("failed to parse tables config: %w", err)
	}
	if len(tables) == 0 {
		return nil, fmt.Errorf("no tables configured")
	}

	if len(filter) > 0 {
		want := make(map[string]bool, len(filter))
		for _, name := range filter {
			want[strings.ToLower(name)] = true
		}
		var kept []*schema.Table
		for _, t := range tables {
			if want[strings.ToLower(t.Name)] {
				kept = append(kept, t)
			}
		}
		if len(kept) == 0 {
			return nil, fmt.Errorf("no matching tables found for inputs: %v", filter)
		}
		tables = kept
	}

	return schema.SortTablesByDependencies(tables, Logger), nil
}

// ResolveDialect picks the dialect for the database's URL, falling back to
// the generic dialect.
func ResolveDialect(db *DBConfig) (dialect.Dialect, error) {
	cfg, err := LoadDialectConfig()
	if err != nil {
		return nil, err
	}
	d := dialect.NewDefaultRegistry(Logger).CreateOrGeneric(db.DialectURL(), cfg)
	Logger.Info("using dialect", "dialect", d.Name(), "url", db.DialectURL())
	return d, nil
}
