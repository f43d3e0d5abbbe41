package main

import (
	"fmt"
	"strconv"

	"mercator-hq/routecost/pkg/cli"

	"github.com/spf13/cobra"
)

func newEstimateCmd(opts *globalOptions) *cobra.Command {
	var (
		usage    usageFlags
		noRecord bool
	)

	cmd := &cobra.Command{
		Use:   "estimate MODEL",
		Short: "Estimate the cost of a workload on one model",
		Long: `Estimate the full cost of a workload on one catalog model.

Usage figures are per request; --requests scales them. Unless --no-routers or
--router is given, the configured router path applies. The run is recorded
in history when history is enabled.

Examples:
  routecost estimate gpt-4o --input-tokens 1200 --output-tokens 300 -n 50000
  routecost estimate claude-3-haiku --input-tokens 800 --cache-hit-rate 0.6 --batch
  routecost estimate gpt-4o --input-tokens 1000 --router openrouter=0.05 -o json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := usage.request()
			if err != nil {
				return err
			}
			svc, _, closeFn, err := openService(opts, !noRecord)
			if err != nil {
				return err
			}
			defer closeFn()

			res, err := svc.Estimate(commandContext(cmd), args[0], req)
			if err != nil {
				return err
			}
			return render(cmd.OutOrStdout(), opts, res, cli.EstimateTables(res))
		},
	}

	usage.bind(cmd)
	cmd.Flags().BoolVar(&noRecord, "no-record", false, "do not record the run in history")
	return cmd
}

func newCompareCmd(opts *globalOptions) *cobra.Command {
	var usage usageFlags

	cmd := &cobra.Command{
		Use:   "compare [MODEL...]",
		Short: "Rank models by total cost for one workload",
		Long: `Evaluate one workload against several models and rank them cheapest first.
Without arguments every catalog model is compared. Comparisons are not
recorded in history.

Examples:
  routecost compare --input-tokens 1200 --output-tokens 300 -n 1000
  routecost compare gpt-4o gpt-4o-mini --input-tokens 500 -o csv`,
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := usage.request()
			if err != nil {
				return err
			}
			svc, _, closeFn, err := openService(opts, false)
			if err != nil {
				return err
			}
			defer closeFn()

			results, err := svc.Compare(commandContext(cmd), args, req)
			if err != nil {
				return err
			}
			return render(cmd.OutOrStdout(), opts, results, cli.CompareTable(results))
		},
	}

	usage.bind(cmd)
	return cmd
}

func newQuoteCmd(opts *globalOptions) *cobra.Command {
	var (
		routerFlags []string
		noRouters   bool
	)

	cmd := &cobra.Command{
		Use:   "quote MODEL TOKENS",
		Short: "Price a token count with the simple per-1K rate plus commission",
		Long: `Price a flat token count at the model's single per-1K rate, honoring its
minimum billable tokens, then add router commission.

Examples:
  routecost quote gpt-4o 25000
  routecost quote gpt-4o 25000 --router gateway=0.03 --router reseller=0.05`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			tokens, err := strconv.ParseFloat(args[1], 64)
			if err != nil {
				return fmt.Errorf("invalid token count %q: %w", args[1], err)
			}

			u := usageFlags{routers: routerFlags, noRouters: noRouters}
			req, err := u.request()
			if err != nil {
				return err
			}

			svc, _, closeFn, err := openService(opts, false)
			if err != nil {
				return err
			}
			defer closeFn()

			q, err := svc.QuoteWithPath(commandContext(cmd), args[0], tokens, req.Routers)
			if err != nil {
				return err
			}
			return render(cmd.OutOrStdout(), opts, q, cli.QuoteTable(q))
		},
	}

	cmd.Flags().StringArrayVar(&routerFlags, "router", nil, "router fee as id=fraction, repeatable (replaces the configured path)")
	cmd.Flags().BoolVar(&noRouters, "no-routers", false, "price without any router commission")
	cmd.MarkFlagsMutuallyExclusive("router", "no-routers")
	return cmd
}

func newEquivalentsCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "equivalents ENERGY_WH",
		Short: "Convert watt-hours into CO2e and everyday equivalents",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			wh, err := strconv.ParseFloat(args[0], 64)
			if err != nil {
				return fmt.Errorf("invalid energy %q: %w", args[0], err)
			}

			svc, _, closeFn, err := openService(opts, false)
			if err != nil {
				return err
			}
			defer closeFn()

			out, err := svc.Equivalents(commandContext(cmd), wh)
			if err != nil {
				return err
			}
			return render(cmd.OutOrStdout(), opts, out, cli.EquivalentsTable(out))
		},
	}
}

func newModelsCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "models",
		Short: "List catalog models and the configured router path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, _, closeFn, err := openService(opts, false)
			if err != nil {
				return err
			}
			defer closeFn()

			models := svc.Catalog().Models()
			path := svc.RouterPath()
			raw := map[string]any{"models": models, "routers": path}
			return render(cmd.OutOrStdout(), opts, raw, cli.ModelsTable(models, path))
		},
	}
}
