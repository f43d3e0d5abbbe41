/*
Package cli provides command-line utilities for the routecost command.

Output Formatting:

Results can be printed as aligned text tables, JSON, YAML or CSV:

	formatter := cli.NewFormatter(cli.FormatText)
	if err := formatter.FormatTo(os.Stdout, cli.EstimateTable(result)); err != nil {
		return err
	}

Structured formats (JSON, YAML) encode the value they are given, so commands
pass raw results to them and Tables to the text and CSV formatters.

Progress Reporting:

Long batch runs report progress to stderr:

	progress := cli.NewProgressReporter(os.Stderr, "Evaluating")
	progress.Start(int64(len(items)))
	progress.Update(done)
	progress.Finish()

Signal Handling:

	ctx, stop := cli.SetupSignalHandler()
	defer stop()

Exit Codes:

ExitCode maps command errors to process exit codes so scripts can tell
invalid input from unknown models and broken configuration.
*/
package cli
