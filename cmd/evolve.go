package cmd

import (
	"context"
	"fmt"

	"db-sink/internal/engine"
	"db-sink/internal/schema"

	"github.com/spf13/cobra"
)

var evolveTables []string

var evolveCmd = &cobra.Command{
	Use:   "evolve",
	Short: "Create missing tables and add missing columns",
	RunE: func(cmd *cobra.Command, args []string) error {
		config, err := GetActiveDBConfig()
		if err != nil {
			return err
		}
		d, err := ResolveDialect(config)
		if err != nil {
			return err
		}
		opts, err := LoadSinkOptions()
		if err != nil {
			return err
		}
		opts.AutoCreate, _ = cmd.Flags().GetBool("auto-create")
		opts.AutoEvolve, _ = cmd.Flags().GetBool("auto-evolve")
		tables, err := LoadTables(evolveTables)
		if err != nil {
			return err
		}

		db, err := openDatabase(config)
		if err != nil {
			return err
		}
		defer db.Close()

		sink := engine.NewSink(db, d, opts, Logger)
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		if now, err := sink.Now(ctx); err == nil {
			fmt.Printf("Database time: %v\n", now)
		}
		return evolveTablesInOrder(ctx, sink, tables)
	},
}

func init() {
	RootCmd.AddCommand(evolveCmd)
	evolveCmd.Flags().StringSliceVarP(&evolveTables, "tables", "t", []string{}, "Specific tables to evolve (comma-separated)")
	evolveCmd.Flags().Bool("auto-create", true, "Create tables that do not exist")
	evolveCmd.Flags().Bool("auto-evolve", true, "Add missing optional columns")
}

func evolveTablesInOrder(ctx context.Context, sink *engine.Sink, tables []*schema.Table) error {
	for i, t := range tables {
		ev, err := sink.Prepare(ctx, t)
		if err != nil {
			return err
		}
		status := "up to date"
		switch {
		case ev.Created:
			status = "created"
		case len(ev.Added) > 0:
			status = fmt.Sprintf("added %v", ev.Added)
		}
		fmt.Printf("[%02d/%02d] %-20s : %s\n", i+1, len(tables), t.Name, status)
		for _, stmt := range ev.Statements {
			fmt.Printf("    └ %s\n", stmt)
		}
	}
	return nil
}
