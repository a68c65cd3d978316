package cmd

import (
	"fmt"
	"io"

	"db-sink/internal/dialect"
	"db-sink/internal/engine"
	"db-sink/internal/schema"

	"github.com/spf13/cobra"
)

var planTables []string

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Print the SQL the sink would run, without connecting",
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
		tables, err := LoadTables(planTables)
		if err != nil {
			return err
		}
		return writePlan(cmd.OutOrStdout(), d, tables, opts)
	},
}

func init() {
	RootCmd.AddCommand(planCmd)
	planCmd.Flags().StringSliceVarP(&planTables, "tables", "t", []string{}, "Specific tables to plan (comma-separated)")
}

func writePlan(w io.Writer, d dialect.Dialect, tables []*schema.Table, opts engine.Options) error {
	fmt.Fprintf(w, "Dialect: %s\n", d.Name())
	for i, t := range tables {
		layout, err := t.Split()
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "\n[%02d] %s (Dependencies: %v)\n", i+1, layout.Table, t.DependsOn)
		for _, f := range layout.Fields {
			typ, err := d.SQLType(f)
			if err != nil {
				return err
			}
			key := ""
			if f.PrimaryKey {
				key = " KEY"
			}
			fmt.Fprintf(w, "  %-20s %-10s -> %s%s\n", f.Name, f.Type, typ, key)
		}

		create, err := d.BuildCreateTable(layout.Table, layout.Fields)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "  create: %s\n", create)

		var dml string
		if opts.InsertMode == engine.InsertModeInsert {
			dml, err = d.BuildInsertStatement(layout.Table, layout.Keys, layout.NonKeys)
		} else {
			dml, err = d.BuildUpsertStatement(layout.Table, layout.Keys, layout.NonKeys)
		}
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "  write:  %s\n", dml)

		if len(layout.Keys) > 0 {
			del, err := d.BuildDeleteStatement(layout.Table, layout.Keys)
			if err != nil {
				return err
			}
			fmt.Fprintf(w, "  delete: %s\n", del)
		}
	}
	return nil
}
