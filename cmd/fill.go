package cmd

import (
	"context"
	"fmt"
	"time"

	"db-sink/internal/engine"
	"db-sink/internal/schema"

	"github.com/gosuri/uiprogress"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	count      int
	seed       int64
	dryRun     bool
	fillTables []string
)

var fillCmd = &cobra.Command{
	Use:   "fill",
	Short: "Fill the configured tables with generated records",
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
		if bs, _ := cmd.Flags().GetInt("batch-size"); bs > 0 {
			opts.BatchSize = bs
		}
		targetTables, err := LoadTables(fillTables)
		if err != nil {
			return err
		}

		// Flag > Config > Default
		targetCount := viper.GetInt("settings.default_count")
		if count > 0 {
			targetCount = count
		}

		if dryRun {
			fmt.Printf("[SIMULATION] Dry-Run Mode Active: No data will be written.\n\n")
			return writePlan(cmd.OutOrStdout(), d, targetTables, opts)
		}

		db, err := openDatabase(config)
		if err != nil {
			return err
		}
		defer db.Close()

		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		sink := engine.NewSink(db, d, opts, Logger)
		gen := engine.NewGenerator(seed)

		Logger.Info("starting fill", "count", targetCount, "tables", len(targetTables), "mode", opts.InsertMode)
		start := time.Now()

		uiprogress.Start()
		var results []engine.Result
		var failures []error
		for _, t := range targetTables {
			res, err := fillOne(ctx, sink, gen, t, targetCount)
			if err != nil {
				Logger.Error("table failed", "table", t.Name, "error", err)
			}
			results = append(results, res)
			failures = append(failures, err)
		}
		uiprogress.Stop()

		printSummary(results, failures)
		Logger.Info("fill done", "elapsed", time.Since(start).String())

		for _, err := range failures {
			if err != nil {
				return fmt.Errorf("fill finished with errors")
			}
		}
		return nil
	},
}

func init() {
	RootCmd.AddCommand(fillCmd)

	fillCmd.Flags().IntVar(&count, "count", 0, "Number of records to generate per table (overrides config)")
	fillCmd.Flags().Int64Var(&seed, "seed", 0, "Random seed for generated values (0 picks one)")
	fillCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Print the statements without writing to DB")
	fillCmd.Flags().StringSliceVarP(&fillTables, "tables", "t", []string{}, "Specific tables to fill (comma-separated)")
	fillCmd.Flags().Int("batch-size", 0, "Records per transaction (overrides sink.batch_size)")

	viper.BindPFlag("settings.default_count", fillCmd.Flags().Lookup("count"))
	viper.SetDefault("settings.default_count", 100)
}

// fillOne prepares one table and writes n generated records into it.
func fillOne(ctx context.Context, sink *engine.Sink, gen *engine.Generator, t *schema.Table, n int) (engine.Result, error) {
	res := engine.Result{Table: t.Name, Target: n}
	if _, err := sink.Prepare(ctx, t); err != nil {
		return res, err
	}
	layout, err := t.Split()
	if err != nil {
		return res, err
	}
	records, err := gen.Records(layout.Fields, n)
	if err != nil {
		return res, fmt.Errorf("table %s: %w", t.Name, err)
	}

	bar := uiprogress.AddBar(n).AppendCompleted().PrependElapsed()
	bar.PrependFunc(func(b *uiprogress.Bar) string {
		return fmt.Sprintf("%-16s", t.Name)
	})
	return sink.Write(ctx, t, records, func() { bar.Incr() })
}

func printSummary(results []engine.Result, failures []error) {
	fmt.Println("\n📊 Summary Report (Dependency Order):")
	total := 0
	for i, r := range results {
		icon := "✓"
		status := "OK"
		if failures[i] != nil {
			icon = "!"
			status = "FAILED"
		} else if r.Written < r.Target {
			icon = "!"
			status = "MISSING DATA"
		}
		fmt.Printf("[%s] [%02d/%02d] %-20s : %d rows (Target: %d) - %s\n",
			icon, i+1, len(results), r.Table, r.Written, r.Target, status)
		if failures[i] != nil {
			fmt.Printf("    └ Error: %v\n", failures[i])
		}
		total += r.Written
	}
	fmt.Println("--------------------------------------------------")
	fmt.Printf("Total Rows Written: %d\n", total)
}
