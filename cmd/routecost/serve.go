package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"mercator-hq/routecost/pkg/cli"
	"mercator-hq/routecost/pkg/config"
	"mercator-hq/routecost/pkg/format"
	"mercator-hq/routecost/pkg/history/retention"
	"mercator-hq/routecost/pkg/history/storage"
	"mercator-hq/routecost/pkg/routers"
	"mercator-hq/routecost/pkg/server"
	"mercator-hq/routecost/pkg/service"
	"mercator-hq/routecost/pkg/telemetry/health"
	"mercator-hq/routecost/pkg/telemetry/logging"
	"mercator-hq/routecost/pkg/telemetry/metrics"
	"mercator-hq/routecost/pkg/telemetry/tracing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
)

type serveFlags struct {
	listenAddress string
	logLevel      string
	dryRun        bool
}

func newServeCmd(opts *globalOptions) *cobra.Command {
	var flags serveFlags

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the cost estimation API server",
		Long: `Start the HTTP API server with the specified configuration.

The server exposes the estimate, compare, batch, quote, equivalents, models
and history operations under /v1, plus /health, /ready and the Prometheus
metrics endpoint. SIGHUP reloads the configuration file; with
server.watch_config the file is also reloaded when it changes. A reload
that fails validation keeps the running catalog.

Examples:
  # Start with built-in defaults
  routecost serve

  # Start with custom config
  routecost serve --config /etc/routecost/config.yaml

  # Override listen address
  routecost serve --listen 0.0.0.0:8090

  # Validate config without starting server
  routecost serve --dry-run`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, opts, flags)
		},
	}

	cmd.Flags().StringVarP(&flags.listenAddress, "listen", "l", "", "override listen address")
	cmd.Flags().StringVar(&flags.logLevel, "log-level", "", "override log level (debug, info, warn, error)")
	cmd.Flags().BoolVar(&flags.dryRun, "dry-run", false, "validate config without starting server")
	return cmd
}

func runServe(cmd *cobra.Command, opts *globalOptions, flags serveFlags) error {
	out := cmd.OutOrStdout()

	if err := config.Initialize(opts.configFile); err != nil {
		return cli.NewConfigError("", fmt.Sprintf("failed to load config: %v", err))
	}
	cfg := config.MustGetConfig()

	if flags.listenAddress != "" {
		cfg.Server.ListenAddress = flags.listenAddress
	}
	if flags.logLevel != "" {
		cfg.Telemetry.Logging.Level = flags.logLevel
	}

	logCfg := logging.FromConfig(cfg.Telemetry.Logging)
	logCfg.Writer = cmd.ErrOrStderr()
	logger, err := logging.New(logCfg)
	if err != nil {
		return cli.NewConfigError("telemetry.logging", err.Error())
	}
	logger.SetDefault()

	if flags.dryRun {
		if _, err := service.New(cfg); err != nil {
			return cli.NewConfigError("", err.Error())
		}
		fmt.Fprintln(out, "✓ Configuration valid")
		return nil
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, registry)

	tracer, err := tracing.New(&cfg.Telemetry.Tracing)
	if err != nil {
		return fmt.Errorf("failed to initialize tracing: %w", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tracer.Shutdown(ctx); err != nil {
			slog.Warn("failed to flush traces", "error", err)
		}
	}()

	checker := health.New(0)
	checker.SetVersion(Version)

	svcOpts := []service.Option{
		service.WithMetrics(collector),
		service.WithTracer(tracer),
		service.WithLogger(logger.WithComponent("service").Slog()),
	}

	var store storage.Storage
	if cfg.History.Enabled {
		slog.Info("initializing history store", "backend", cfg.History.Backend)
		store, err = storage.New(&cfg.History)
		if err != nil {
			return fmt.Errorf("failed to open history store: %w", err)
		}
		defer store.Close()
		svcOpts = append(svcOpts, service.WithStore(store))
		checker.RegisterCheck("history", store.Ping)
	}

	svc, err := service.New(cfg, svcOpts...)
	if err != nil {
		return cli.NewConfigError("", err.Error())
	}
	checker.RegisterCheck("catalog", func(context.Context) error {
		if svc.Catalog().Len() == 0 {
			return errors.New("catalog is empty")
		}
		return nil
	})

	config.Subscribe(func(next *config.Config) {
		if err := svc.Apply(next); err != nil {
			slog.Error("rejected configuration reload", "error", err)
		}
	})

	ctx, stop := cli.SetupSignalHandler()
	defer stop()

	if store != nil && cfg.History.Retention.PruneSchedule != "" {
		pruner := retention.NewPruner(store, retention.FromConfig(cfg.History.Retention),
			retention.WithOnPruned(collector.RecordHistoryPruned))
		if err := pruner.Start(ctx); err != nil {
			slog.Warn("failed to start retention scheduler", "error", err)
		} else {
			defer pruner.Stop()
			if next := pruner.NextPruning(); next != nil {
				slog.Debug("history retention scheduler started", "next_pruning", next)
			}
		}
	}

	if cfg.Server.WatchConfig && opts.configFile != "" {
		w, err := config.NewWatcher(opts.configFile, 0, logger.WithComponent("config.watcher").Slog())
		if err != nil {
			slog.Warn("config watching disabled", "error", err)
		} else {
			defer w.Stop()
			go func() {
				if err := w.Watch(ctx); err != nil && !errors.Is(err, context.Canceled) {
					slog.Warn("config watcher stopped", "error", err)
				}
			}()
		}
	}

	go reloadOnSignal(ctx, opts.configFile)

	srv, err := server.NewServer(cfg, svc,
		server.WithMetrics(collector),
		server.WithHealth(checker),
		server.WithTracer(tracer),
		server.WithLogger(logger.WithComponent("server").Slog()),
	)
	if err != nil {
		return err
	}

	printBanner(cmd, cfg, svc)

	if err := srv.Start(ctx); err != nil {
		return cli.NewCommandError("serve", err)
	}
	fmt.Fprintln(out, "✓ Server stopped")
	return nil
}

// reloadOnSignal reloads the configuration on SIGHUP until ctx ends.
func reloadOnSignal(ctx context.Context, path string) {
	sig := cli.ReloadSignal()
	for {
		select {
		case <-ctx.Done():
			return
		case <-sig:
			slog.Info("reloading configuration", "path", path)
			if err := config.ReloadConfig(path); err != nil {
				slog.Error("configuration reload failed", "error", err)
			}
		}
	}
}

func printBanner(cmd *cobra.Command, cfg *config.Config, svc *service.Service) {
	out := cmd.OutOrStdout()
	path := svc.RouterPath()
	fmt.Fprintf(out, "routecost %s\n", Version)
	fmt.Fprintf(out, "✓ Catalog loaded (%d models)\n", svc.Catalog().Len())
	fmt.Fprintf(out, "✓ Router path: %d routers, commission %s\n",
		len(path.Enabled()), format.Percent(routers.CommissionRate(path)))
	if cfg.History.Enabled {
		fmt.Fprintf(out, "✓ History store: %s\n", cfg.History.Backend)
	}
	fmt.Fprintf(out, "✓ Listening on %s\n", cfg.Server.ListenAddress)
	fmt.Fprintf(out, "✓ Metrics endpoint: http://%s%s\n", cfg.Server.ListenAddress, cfg.Telemetry.Metrics.Path)
	fmt.Fprintln(out, "\nPress Ctrl+C to stop")
}
