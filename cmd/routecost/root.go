package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"mercator-hq/routecost/pkg/cli"
	"mercator-hq/routecost/pkg/config"
	"mercator-hq/routecost/pkg/telemetry/logging"

	"github.com/spf13/cobra"
)

// globalOptions are the persistent flags shared by every command.
type globalOptions struct {
	configFile string
	verbose    bool
	output     string
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:   "routecost",
		Short: "routecost - LLM cost and energy estimation",
		Long: `routecost prices LLM workloads against a model catalog and a chain of
routing intermediaries, each taking a commission.

For every estimate it reports:
  - A cost breakdown with batch discounts, cache savings and retry penalties
  - Router commission on top of the base cost
  - Per-unit costs and hourly to annual projections
  - Energy use with CO2e and everyday equivalents
  - Optimization opportunities and risk flags

Without --config the built-in catalog and defaults are used.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if _, err := cli.ParseFormat(opts.output); err != nil {
				return err
			}
			return setupCLILogging(cmd.ErrOrStderr(), opts.verbose)
		},
	}

	rootCmd.PersistentFlags().StringVarP(&opts.configFile, "config", "c", "", "config file path (defaults are used when empty)")
	rootCmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVarP(&opts.output, "output", "o", "text", "output format: text, json, yaml, csv")

	rootCmd.AddCommand(
		newEstimateCmd(opts),
		newCompareCmd(opts),
		newBatchCmd(opts),
		newQuoteCmd(opts),
		newEquivalentsCmd(opts),
		newModelsCmd(opts),
		newHistoryCmd(opts),
		newServeCmd(opts),
		newValidateCmd(opts),
		newVersionCmd(),
	)

	return rootCmd
}

// setupCLILogging logs to stderr in text format. One-shot commands stay
// quiet below warn unless --verbose is set. serve replaces this with the
// configured logger.
func setupCLILogging(w io.Writer, verbose bool) error {
	level := "warn"
	if verbose {
		level = "debug"
	}
	logger, err := logging.New(logging.Config{Level: level, Format: string(logging.FormatText), Writer: w})
	if err != nil {
		return err
	}
	logger.SetDefault()
	return nil
}

// loadConfig loads the configuration file, or defaults when path is empty.
func loadConfig(path string) (*config.Config, error) {
	cfg, err := config.LoadConfigWithEnvOverrides(path)
	if err != nil {
		return nil, cli.NewConfigError("", err.Error())
	}
	return cfg, nil
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		code := cli.ExitCode(err)
		slog.Debug("command failed", "exit_code", code)
		return code
	}
	return cli.ExitOK
}
