package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"mercator-hq/routecost/pkg/cli"
	"mercator-hq/routecost/pkg/engine"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// batchFile is the on-disk batch format. A bare list of items is also
// accepted. JSON is valid YAML, so both encodings load.
type batchFile struct {
	Items []engine.BatchItem `yaml:"items"`
}

func loadBatchFile(r io.Reader) ([]engine.BatchItem, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, errors.New("batch file is empty")
	}

	if data[0] == '[' || data[0] == '-' {
		var items []engine.BatchItem
		if err := yaml.Unmarshal(data, &items); err != nil {
			return nil, fmt.Errorf("failed to parse batch items: %w", err)
		}
		return items, nil
	}

	var f batchFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("failed to parse batch file: %w", err)
	}
	return f.Items, nil
}

func newBatchCmd(opts *globalOptions) *cobra.Command {
	var (
		noRecord  bool
		progress  bool
		chunkSize int
	)

	cmd := &cobra.Command{
		Use:   "batch FILE",
		Short: "Evaluate a file of heterogeneous workloads",
		Long: `Evaluate every item of a YAML or JSON batch file. Results keep the input
order. Use "-" to read the file from stdin.

File format:

  items:
    - model: gpt-4o
      request:
        input_tokens: 1200
        output_tokens: 300
        requests_count: 5000
    - model: claude-3-haiku
      request:
        input_tokens: 800
        requests_count: 20000
        batch_processing: true
        routers: []

The whole batch fails on the first invalid item.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var in io.Reader = cmd.InOrStdin()
			if args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return err
				}
				defer f.Close()
				in = f
			}

			items, err := loadBatchFile(in)
			if err != nil {
				return err
			}
			for i, item := range items {
				if item.ModelID == "" {
					return fmt.Errorf("items[%d]: model is required", i)
				}
			}

			svc, _, closeFn, err := openService(opts, !noRecord)
			if err != nil {
				return err
			}
			defer closeFn()

			if chunkSize <= 0 || !progress {
				chunkSize = len(items)
			}

			var reporter cli.ProgressReporter
			if progress {
				reporter = cli.NewProgressReporter(cmd.ErrOrStderr(), "Evaluating")
				reporter.Start(int64(len(items)))
			}

			results := make([]*engine.Result, 0, len(items))
			for start := 0; start < len(items); start += chunkSize {
				end := min(start+chunkSize, len(items))
				chunk, err := svc.Batch(commandContext(cmd), items[start:end])
				if err != nil {
					if reporter != nil {
						reporter.Error(err)
					}
					return fmt.Errorf("items[%d:%d]: %w", start, end, err)
				}
				results = append(results, chunk...)
				if reporter != nil {
					reporter.Update(int64(len(results)))
				}
			}
			if reporter != nil {
				reporter.Finish()
			}

			return render(cmd.OutOrStdout(), opts, results, cli.BatchTable(results))
		},
	}

	cmd.Flags().BoolVar(&noRecord, "no-record", false, "do not record runs in history")
	cmd.Flags().BoolVar(&progress, "progress", false, "report progress on stderr")
	cmd.Flags().IntVar(&chunkSize, "chunk-size", 100, "items evaluated per progress step")
	return cmd
}
