package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"mercator-hq/routecost/pkg/cli"
	"mercator-hq/routecost/pkg/format"
	"mercator-hq/routecost/pkg/history/export"
	"mercator-hq/routecost/pkg/history/retention"
	"mercator-hq/routecost/pkg/history/storage"

	"github.com/spf13/cobra"
)

type historyFilterFlags struct {
	model  string
	since  string
	until  string
	limit  int
	offset int
}

func (h *historyFilterFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&h.model, "model", "", "only runs of this model")
	cmd.Flags().StringVar(&h.since, "since", "", "only runs recorded at or after this RFC 3339 time")
	cmd.Flags().StringVar(&h.until, "until", "", "only runs recorded before this RFC 3339 time")
}

func (h *historyFilterFlags) bindPaging(cmd *cobra.Command, defaultLimit int) {
	cmd.Flags().IntVar(&h.limit, "limit", defaultLimit, "maximum runs (0 for all)")
	cmd.Flags().IntVar(&h.offset, "offset", 0, "runs to skip")
}

func (h *historyFilterFlags) filter() (storage.Filter, error) {
	f := storage.Filter{ModelID: h.model, Limit: h.limit, Offset: h.offset}
	for _, b := range []struct {
		name string
		raw  string
		dst  **time.Time
	}{
		{"since", h.since, &f.Since},
		{"until", h.until, &f.Until},
	} {
		if b.raw == "" {
			continue
		}
		t, err := time.Parse(time.RFC3339, b.raw)
		if err != nil {
			return f, fmt.Errorf("invalid --%s: %w", b.name, err)
		}
		*b.dst = &t
	}
	return f, f.Validate()
}

func newHistoryCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Query and prune recorded runs",
	}
	cmd.AddCommand(
		newHistoryListCmd(opts),
		newHistorySummaryCmd(opts),
		newHistoryPruneCmd(opts),
		newHistoryExportCmd(opts),
	)
	return cmd
}

func newHistoryListCmd(opts *globalOptions) *cobra.Command {
	var flags historyFilterFlags

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recorded runs, most recent first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			filter, err := flags.filter()
			if err != nil {
				return err
			}
			svc, _, closeFn, err := openService(opts, true)
			if err != nil {
				return err
			}
			defer closeFn()

			records, err := svc.History(commandContext(cmd), filter)
			if err != nil {
				return err
			}
			return render(cmd.OutOrStdout(), opts, records, cli.RecordsTable(records))
		},
	}

	flags.bind(cmd)
	flags.bindPaging(cmd, 20)
	return cmd
}

func newHistorySummaryCmd(opts *globalOptions) *cobra.Command {
	var flags historyFilterFlags

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Show cumulative cost, commission and energy of recorded runs",
		Long: `Aggregate recorded runs overall and per model: totals, commission share,
cost per request and energy.

Examples:
  routecost history summary
  routecost history summary --since 2026-01-01T00:00:00Z --model gpt-4o`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			filter, err := flags.filter()
			if err != nil {
				return err
			}
			svc, _, closeFn, err := openService(opts, true)
			if err != nil {
				return err
			}
			defer closeFn()

			summary, err := svc.Summarize(commandContext(cmd), filter)
			if err != nil {
				return err
			}
			return render(cmd.OutOrStdout(), opts, summary, cli.SummaryTable(summary))
		},
	}

	flags.bind(cmd)
	return cmd
}

func newHistoryPruneCmd(opts *globalOptions) *cobra.Command {
	var (
		days       int
		maxRecords int64
	)

	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete runs outside the retention policy now",
		Long: `Apply the configured retention policy immediately. --days and --max-records
override the configured values for this run.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts.configFile)
			if err != nil {
				return err
			}
			if !cfg.History.Enabled {
				return fmt.Errorf("history is disabled in configuration")
			}

			store, err := storage.New(&cfg.History)
			if err != nil {
				return err
			}
			defer store.Close()

			rcfg := retention.FromConfig(cfg.History.Retention)
			if cmd.Flags().Changed("days") {
				rcfg.RetentionDays = days
			}
			if cmd.Flags().Changed("max-records") {
				rcfg.MaxRecords = maxRecords
			}

			deleted, err := retention.NewPruner(store, rcfg).Prune(commandContext(cmd))
			if err != nil {
				return err
			}
			remaining, err := store.Count(commandContext(cmd), storage.Filter{})
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "✓ Pruned %s runs (%s remaining)\n", format.Count(deleted), format.Count(remaining))
			return nil
		},
	}

	cmd.Flags().IntVar(&days, "days", 0, "delete runs older than this many days (0 keeps all)")
	cmd.Flags().Int64Var(&maxRecords, "max-records", 0, "keep at most this many runs (0 for no cap)")
	return cmd
}

func newHistoryExportCmd(opts *globalOptions) *cobra.Command {
	var (
		flags        historyFilterFlags
		exportFormat string
		file         string
		noHeader     bool
		pretty       bool
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export recorded runs as CSV or JSON",
		Long: `Stream recorded runs, most recent first, to stdout or a file. --limit 0
exports every matching run.

Examples:
  routecost history export --format csv --file runs.csv
  routecost history export --format json --model gpt-4o --since 2026-01-01T00:00:00Z`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			filter, err := flags.filter()
			if err != nil {
				return err
			}
			if exportFormat != "csv" && exportFormat != "json" {
				return fmt.Errorf("unsupported export format %q (want csv or json)", exportFormat)
			}

			cfg, err := loadConfig(opts.configFile)
			if err != nil {
				return err
			}
			if !cfg.History.Enabled {
				return fmt.Errorf("history is disabled in configuration")
			}
			store, err := storage.New(&cfg.History)
			if err != nil {
				return err
			}
			defer store.Close()

			var w io.Writer = cmd.OutOrStdout()
			if file != "" {
				f, err := os.Create(file)
				if err != nil {
					return err
				}
				defer f.Close()
				w = f
			}

			ctx := commandContext(cmd)
			records, errc := export.Stream(ctx, store, filter, 0)
			if exportFormat == "csv" {
				err = export.NewCSVExporter(!noHeader).ExportStream(ctx, records, w)
			} else {
				err = export.NewJSONExporter(pretty).ExportStream(ctx, records, w)
			}
			if err != nil {
				for range records {
				}
				return err
			}
			return <-errc
		},
	}

	flags.bind(cmd)
	flags.bindPaging(cmd, 0)
	cmd.Flags().StringVar(&exportFormat, "format", "csv", "export format: csv, json")
	cmd.Flags().StringVarP(&file, "file", "f", "", "write to this file instead of stdout")
	cmd.Flags().BoolVar(&noHeader, "no-header", false, "omit the CSV header row")
	cmd.Flags().BoolVar(&pretty, "pretty", false, "indent JSON output")
	return cmd
}
