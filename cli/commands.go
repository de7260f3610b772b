package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	gateway "github.com/hivewatch/beedash/apigateway"
	"github.com/hivewatch/beedash/aggregate"
	"github.com/hivewatch/beedash/cache"
	"github.com/hivewatch/beedash/colony"
	"github.com/hivewatch/beedash/dashboard"
	"github.com/hivewatch/beedash/export"
	"github.com/hivewatch/beedash/settings"
	"github.com/hivewatch/beedash/store"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

type rootOptions struct {
	configPath string
	dataPath   string
	source     string
	dbPath     string
}

type queryOptions struct {
	year   int
	states []string
	period string
}

func (o *queryOptions) bind(cmd *cobra.Command) {
	cmd.Flags().IntVar(&o.year, "year", 0, "Year to aggregate (default: first year in the dataset)")
	cmd.Flags().StringSliceVar(&o.states, "state", nil, "State name or code, repeatable or comma separated")
	cmd.Flags().StringVar(&o.period, "period", "", "Time period for the lost-by-state view, e.g. Q1")
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:           "beedash",
		Short:         "Bee colony dashboard",
		Long:          "Serve, summarize and export bee colony population and loss statistics.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "Path to config.yaml")
	root.PersistentFlags().StringVar(&opts.dataPath, "data", "", "Colony CSV file (overrides data_path)")
	root.PersistentFlags().StringVar(&opts.source, "source", "", "Record source: csv or sql (overrides data_source)")
	root.PersistentFlags().StringVar(&opts.dbPath, "db", "", "SQLite snapshot database (overrides db_path)")

	root.AddCommand(newServeCmd(opts))
	root.AddCommand(newImportCmd(opts))
	root.AddCommand(newSummaryCmd(opts))
	root.AddCommand(newRenderCmd(opts))
	root.AddCommand(newExportCmd(opts))
	return root
}

// setup loads the config, applies flag overrides and defaults, validates it
// and configures logging.
func setup(opts *rootOptions) (settings.Config, error) {
	cfg, path, err := loadConfig(opts.configPath)
	if err != nil {
		return cfg, err
	}
	if opts.dataPath != "" {
		cfg.DataPath = opts.dataPath
	}
	if opts.source != "" {
		cfg.DataSource = opts.source
	}
	if opts.dbPath != "" {
		cfg.DatabasePath = opts.dbPath
	}
	cfg.Defaults()
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	configureLogger(cfg)
	if path != "" {
		logrusLogger.WithField("path", path).Debug("loaded config")
	}
	return cfg, nil
}

func newServeCmd(opts *rootOptions) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the dashboard over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := setup(opts)
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.ListenAddr = addr
			}

			ds, err := loadDataset(cfg)
			if err != nil {
				logrusLogger.Fatalf("error loading colonies: %v", err)
			}
			logrusLogger.WithFields(map[string]interface{}{
				"source":  ds.Source(),
				"records": ds.Len(),
				"years":   ds.Years(),
			}).Info("dataset loaded")

			shutdownTracing := initOTel(cmd.Context(), cfg, logrusLogger)
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), otelShutdownTimeout)
				defer cancel()
				if err := shutdownTracing(ctx); err != nil {
					logrusLogger.WithError(err).Warn("otel shutdown failed")
				}
			}()

			metrics := gateway.NewMetrics()
			metrics.DatasetRecords.Set(float64(ds.Len()))

			var chartCache cache.Cache = cache.Nop{}
			if cfg.RedisAddr != "" {
				rc := cache.Dial(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.CacheTTL(), logrusLogger)
				defer rc.Close()
				chartCache = rc
			}

			app := GetMainEngine(&dashboard.Service{
				Dataset: ds,
				Config:  cfg,
				Logger:  logrusLogger,
				Cache:   chartCache,
				Metrics: metrics,
			})

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			errc := make(chan error, 1)
			go func() {
				logrusLogger.WithField("addr", cfg.ListenAddr).Info("listening")
				errc <- app.Listen(cfg.ListenAddr)
			}()

			select {
			case err := <-errc:
				return err
			case <-ctx.Done():
			}
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			return app.ShutdownWithContext(shutdownCtx)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (overrides listen_addr)")
	return cmd
}

func newImportCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "import",
		Short: "Load the colony CSV into the SQL snapshot store",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := setup(opts)
			if err != nil {
				return err
			}
			ds, err := colony.LoadFile(cfg.DataPath)
			if err != nil {
				return err
			}

			db, err := store.OpenFromConfig(cfg.DatabaseURL, cfg.DatabasePath, cfg.DatabaseDriver)
			if err != nil {
				return fmt.Errorf("open snapshot db: %w", err)
			}
			defer db.Close()

			ctx, cancel := context.WithTimeout(cmd.Context(), storeTimeout)
			defer cancel()
			if err := store.Migrate(ctx, db); err != nil {
				return fmt.Errorf("migrate snapshot db: %w", err)
			}
			snap, err := store.New(db).ReplaceColonies(ctx, ds)
			if err != nil {
				return err
			}
			version, err := store.SchemaVersion(ctx, db)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d records from %s (snapshot %d, fingerprint %s, schema v%d)\n",
				snap.RecordCount, snap.Source, snap.ID, snap.Fingerprint, version)
			return nil
		},
	}
}

// queryCommand builds a command that loads the dataset and runs fn on the
// resolved query.
func queryCommand(opts *rootOptions, use, short string, fn func(cmd *cobra.Command, ds *colony.Dataset, q aggregate.Query) error) (*cobra.Command, *queryOptions) {
	qo := &queryOptions{}
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := setup(opts)
			if err != nil {
				return err
			}
			ds, err := loadDataset(cfg)
			if err != nil {
				return err
			}
			return fn(cmd, ds, resolveQuery(cfg, ds, qo.year, qo.states, qo.period))
		},
	}
	qo.bind(cmd)
	return cmd, qo
}

func newSummaryCmd(opts *rootOptions) *cobra.Command {
	cmd, _ := queryCommand(opts, "summary", "Print the aggregated views as tables",
		func(cmd *cobra.Command, ds *colony.Dataset, q aggregate.Query) error {
			_, err := fmt.Fprint(cmd.OutOrStdout(), summaryTables(aggregate.Compute(ds, q)))
			return err
		})
	return cmd
}

func newRenderCmd(opts *rootOptions) *cobra.Command {
	var out string
	cmd, _ := queryCommand(opts, "render", "Write every chart as an SVG file",
		func(cmd *cobra.Command, ds *colony.Dataset, q aggregate.Query) error {
			if err := os.MkdirAll(out, 0o755); err != nil {
				return err
			}
			for _, name := range dashboard.ChartNames() {
				path := filepath.Join(out, name+".svg")
				if err := writeChart(path, name, ds, q); err != nil {
					return fmt.Errorf("render %s: %w", name, err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), path)
			}
			return nil
		})
	cmd.Flags().StringVar(&out, "out", "charts", "Output directory")
	return cmd
}

func writeChart(path, name string, ds *colony.Dataset, q aggregate.Query) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return dashboard.RenderChart(f, name, ds, q)
}

func newExportCmd(opts *rootOptions) *cobra.Command {
	var out string
	cmd, _ := queryCommand(opts, "export", "Write the aggregated views to an xlsx workbook",
		func(cmd *cobra.Command, ds *colony.Dataset, q aggregate.Query) error {
			if out == "" {
				return errors.New("--out is required")
			}
			if err := export.SaveAs(out, aggregate.Compute(ds, q)); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		})
	cmd.Flags().StringVar(&out, "out", "", "Output .xlsx file")
	return cmd
}
