package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/rebeliceyang/lazyfacet/internal/config"
	"github.com/rebeliceyang/lazyfacet/internal/logging"
	"github.com/rebeliceyang/lazyfacet/internal/obs"
	"github.com/rebeliceyang/lazyfacet/internal/presets"
	"github.com/rebeliceyang/lazyfacet/internal/query"
	"github.com/rebeliceyang/lazyfacet/internal/source"
	"github.com/rebeliceyang/lazyfacet/internal/storage"
)

var (
	// Global flags
	cfgFile     string
	verbose     bool
	recordsGlob string

	cfg     *config.Config
	logger  *zap.Logger
	metrics *obs.Metrics
)

var rootCmd = &cobra.Command{
	Use:   "lazyfacet",
	Short: "Faceted filtering, search, sort and grouping over record sets",
	Long: `lazyfacet loads records from JSON, YAML, CSV or XLSX files (or a
PostgreSQL query) and lets you filter, search, sort and group them from the
terminal, a script or an HTTP API. Saved views are kept as presets.

Run without a subcommand to open the interactive browser.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		if cfgFile != "" {
			cfg, err = config.LoadFile(cfgFile)
		} else {
			cfg, err = config.Load()
		}
		if err != nil {
			return err
		}

		if verbose {
			cfg.Logging.Level = zapcore.DebugLevel.String()
		}
		if cmd.Name() == "tui" || cmd == cmd.Root() {
			redirectLogs(cfg)
		}

		logger, err = logging.New(cfg.Logging)
		if err != nil {
			return err
		}
		if cfg.Metrics.Enabled {
			metrics = obs.NewMetrics()
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: runTUI,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "Config file (default: user config dir, then ./config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVarP(&recordsGlob, "records", "r", "", "Record files to load, e.g. 'data/**/*.json' (default: general.records)")

	rootCmd.AddCommand(queryCmd)
	rootCmd.AddCommand(presetsCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(tuiCmd)
	rootCmd.AddCommand(fieldsCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// redirectLogs keeps log lines off the terminal while the TUI owns it
func redirectLogs(cfg *config.Config) {
	if cfg.Logging.Output != "stderr" && cfg.Logging.Output != "stdout" && cfg.Logging.Output != "" {
		return
	}
	dir, err := config.GetConfigPath()
	if err != nil {
		cfg.Logging.Level = zapcore.FatalLevel.String()
		return
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		cfg.Logging.Level = zapcore.FatalLevel.String()
		return
	}
	cfg.Logging.Output = filepath.Join(dir, "lazyfacet.log")
}

func newEngine() *query.Engine {
	return query.NewEngine(query.WithLogger(logger), query.WithMetrics(metrics))
}

// loadRecords reads records from --records, general.records or the
// configured PostgreSQL query, in that order
func loadRecords(ctx context.Context) ([]source.Record, error) {
	pattern := recordsGlob
	if pattern == "" {
		pattern = cfg.General.Records
	}
	if pattern != "" {
		records, err := source.LoadFiles(pattern)
		if err != nil {
			return nil, err
		}
		logger.Debug("records loaded", zap.String("pattern", pattern), zap.Int("count", len(records)))
		return records, nil
	}

	if cfg.General.PostgresDSN != "" {
		if cfg.General.PostgresQuery == "" {
			return nil, fmt.Errorf("general.postgres_query is required with general.postgres_dsn")
		}
		pg, err := source.NewPostgres(ctx, cfg.General.PostgresDSN)
		if err != nil {
			return nil, err
		}
		defer pg.Close()

		records, err := pg.Load(ctx, cfg.General.PostgresQuery)
		if err != nil {
			return nil, err
		}
		logger.Debug("records loaded from postgres", zap.Int("count", len(records)))
		return records, nil
	}

	return nil, fmt.Errorf("no records to load: pass --records or set general.records")
}

// openStore opens the configured preset backend. The returned close func
// releases backend connections.
func openStore() (*presets.Store, func(), error) {
	backend, err := storage.Open(cfg.Storage)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open preset storage: %w", err)
	}

	opts := []presets.Option{presets.WithLogger(logger), presets.WithMetrics(metrics)}
	if cfg.Storage.SeedSystem {
		opts = append(opts, presets.WithSystemPresets(presets.DefaultSystemPresets()...))
	}

	store := presets.NewStore(backend, opts...)
	closeFn := func() {
		if err := storage.Close(backend); err != nil {
			logger.Warn("failed to close preset storage", zap.Error(err))
		}
	}
	return store, closeFn, nil
}
