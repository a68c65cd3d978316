package cmd

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile  string
	dbURL    string
	logLevel string

	// Logger is configured from log.level before any command runs.
	Logger = slog.New(slog.DiscardHandler)
)

var RootCmd = &cobra.Command{
	Use:   "db-sink",
	Short: "Write records into SQL databases through per-engine dialects",
	Long: `
     _ _                _       _
  __| | |__        ___(_)_ __ | | __
 / _' | '_ \ _____/ __| | '_ \| |/ /
| (_| | |_) |_____\__ \ | | | |   <
 \__,_|_.__/      |___/_|_| |_|_|\_\

DB SINK - dialect-aware table creation, evolution and upserts
`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logger, err := newLogger(viper.GetString("log.level"))
		if err != nil {
			return err
		}
		Logger = logger
		return nil
	},
}

func Execute() {
	if err := RootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	RootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./db-sink.yaml)")
	RootCmd.PersistentFlags().StringVar(&dbURL, "url", "", "connection URL selecting the dialect (overrides the active database's url)")
	RootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error")

	viper.BindPFlag("log.level", RootCmd.PersistentFlags().Lookup("log-level"))
	viper.SetDefault("log.level", "warn")
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		// executable directory first, then the working directory
		if ex, err := os.Executable(); err == nil {
			viper.AddConfigPath(filepath.Dir(ex))
		}
		viper.AddConfigPath(".")

		viper.SetConfigName("db-sink")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("DBSINK")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func newLogger(level string) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})), nil
}

// openDatabase connects to the active database.
func openDatabase(cfg *DBConfig) (*sql.DB, error) {
	if cfg.Driver == "" || cfg.DSN == "" {
		return nil, fmt.Errorf("database %q needs both driver and dsn", cfg.Name)
	}
	db, err := sql.Open(cfg.Driver, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open db: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to db: %w", err)
	}
	fmt.Printf("Connected to %s (%s)\n", cfg.Name, cfg.Driver)
	return db, nil
}
