package export

import (
	"context"
	"encoding/csv"
	"io"
	"strconv"
	"time"

	"mercator-hq/routecost/pkg/history"
)

// flushEvery is how many rows the CSV writer buffers in streaming mode.
const flushEvery = 100

// CSVExporter exports run records to CSV format.
type CSVExporter struct {
	// IncludeHeader includes a header row with column names.
	IncludeHeader bool
}

// NewCSVExporter creates a new CSV exporter.
func NewCSVExporter(includeHeader bool) *CSVExporter {
	return &CSVExporter{IncludeHeader: includeHeader}
}

// Header returns the CSV column names.
func Header() []string {
	return []string{
		"id", "recorded_at", "model_id", "requests",
		"input_tokens", "output_tokens", "total_tokens",
		"base_cost", "commission", "total_cost",
		"energy_wh", "co2e_kg",
	}
}

// Export writes records to w in CSV format.
func (e *CSVExporter) Export(ctx context.Context, records []history.RunRecord, w io.Writer) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	ch := make(chan history.RunRecord)
	go func() {
		defer close(ch)
		for _, r := range records {
			select {
			case ch <- r:
			case <-ctx.Done():
				return
			}
		}
	}()
	return e.ExportStream(ctx, ch, w)
}

// ExportStream writes records from ch until it is closed or ctx ends.
// Rows are flushed periodically.
func (e *CSVExporter) ExportStream(ctx context.Context, ch <-chan history.RunRecord, w io.Writer) error {
	writer := csv.NewWriter(w)

	if e.IncludeHeader {
		if err := writer.Write(Header()); err != nil {
			return NewExportError("csv", 0, err)
		}
	}

	count := 0
	for {
		select {
		case <-ctx.Done():
			writer.Flush()
			return ctx.Err()

		case record, ok := <-ch:
			if !ok {
				writer.Flush()
				if err := writer.Error(); err != nil {
					return NewExportError("csv", count, err)
				}
				return nil
			}

			if err := writer.Write(recordToRow(record)); err != nil {
				return NewExportError("csv", count, err)
			}
			count++

			if count%flushEvery == 0 {
				writer.Flush()
				if err := writer.Error(); err != nil {
					return NewExportError("csv", count, err)
				}
			}
		}
	}
}

func recordToRow(r history.RunRecord) []string {
	num := func(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }

	recorded := ""
	if !r.RecordedAt.IsZero() {
		recorded = r.RecordedAt.UTC().Format(time.RFC3339)
	}

	return []string{
		r.ID,
		recorded,
		r.ModelID,
		strconv.FormatInt(r.Requests, 10),
		num(r.InputTokens),
		num(r.OutputTokens),
		num(r.TotalTokens),
		num(r.BaseCost),
		num(r.Commission),
		num(r.TotalCost),
		num(r.EnergyWh),
		num(r.CO2eKg),
	}
}
