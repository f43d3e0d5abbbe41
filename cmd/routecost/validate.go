package main

import (
	"fmt"

	"mercator-hq/routecost/pkg/cli"
	"mercator-hq/routecost/pkg/format"
	"mercator-hq/routecost/pkg/routers"

	"github.com/spf13/cobra"
)

// validationSummary describes a configuration that loaded cleanly.
type validationSummary struct {
	Valid          bool    `json:"valid" yaml:"valid"`
	Models         int     `json:"models" yaml:"models"`
	Routers        int     `json:"routers" yaml:"routers"`
	CommissionRate float64 `json:"commission_rate" yaml:"commission_rate"`
	CommissionCap  bool    `json:"commission_capped" yaml:"commission_capped"`
	History        string  `json:"history" yaml:"history"`
	ListenAddress  string  `json:"listen_address" yaml:"listen_address"`
}

func newValidateCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate a configuration file",
		Long: `Load and validate the configuration, including environment overrides, and
build the catalog and router path exactly as serve would.

Examples:
  routecost validate --config config.yaml
  routecost validate -c config.yaml -o json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, cfg, closeFn, err := openService(opts, false)
			if err != nil {
				return err
			}
			defer closeFn()

			path := svc.RouterPath()
			summary := validationSummary{
				Valid:          true,
				Models:         svc.Catalog().Len(),
				Routers:        len(path.Enabled()),
				CommissionRate: routers.CommissionRate(path),
				CommissionCap:  path.Capped(),
				History:        "disabled",
				ListenAddress:  cfg.Server.ListenAddress,
			}
			if cfg.History.Enabled {
				summary.History = cfg.History.Backend
			}

			t := cli.Table{Title: "✓ Configuration valid", Headers: []string{"SETTING", "VALUE"}}
			t.AddRow("models", fmt.Sprint(summary.Models))
			t.AddRow("routers", fmt.Sprint(summary.Routers))
			rate := format.Percent(summary.CommissionRate)
			if summary.CommissionCap {
				rate += " (capped)"
			}
			t.AddRow("commission", rate)
			t.AddRow("history", summary.History)
			t.AddRow("listen", summary.ListenAddress)

			return render(cmd.OutOrStdout(), opts, summary, t)
		},
	}
	return cmd
}
