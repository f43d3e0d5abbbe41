package export

import (
	"context"
	"encoding/json"
	"io"

	"mercator-hq/routecost/pkg/history"
)

// JSONExporter exports run records as a JSON array.
type JSONExporter struct {
	// Pretty enables pretty-printing with indentation.
	Pretty bool
}

// NewJSONExporter creates a new JSON exporter.
func NewJSONExporter(pretty bool) *JSONExporter {
	return &JSONExporter{Pretty: pretty}
}

// Export writes records to w. An empty slice produces "[]".
func (e *JSONExporter) Export(ctx context.Context, records []history.RunRecord, w io.Writer) error {
	if records == nil {
		records = []history.RunRecord{}
	}

	var (
		data []byte
		err  error
	)
	if e.Pretty {
		data, err = json.MarshalIndent(records, "", "  ")
	} else {
		data, err = json.Marshal(records)
	}
	if err != nil {
		return NewExportError("json", 0, err)
	}

	if _, err := w.Write(data); err != nil {
		return NewExportError("json", 0, err)
	}
	return nil
}

// ExportStream writes records from ch as one JSON array, element by
// element, until ch is closed or ctx ends.
func (e *JSONExporter) ExportStream(ctx context.Context, ch <-chan history.RunRecord, w io.Writer) error {
	if _, err := io.WriteString(w, "["); err != nil {
		return NewExportError("json", 0, err)
	}

	count := 0
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case record, ok := <-ch:
			if !ok {
				if _, err := io.WriteString(w, "]"); err != nil {
					return NewExportError("json", count, err)
				}
				return nil
			}

			if count > 0 {
				sep := ","
				if e.Pretty {
					sep = ",\n"
				}
				if _, err := io.WriteString(w, sep); err != nil {
					return NewExportError("json", count, err)
				}
			}

			data, err := e.serialize(record)
			if err != nil {
				return NewExportError("json", count, err)
			}
			if _, err := w.Write(data); err != nil {
				return NewExportError("json", count, err)
			}
			count++
		}
	}
}

func (e *JSONExporter) serialize(record history.RunRecord) ([]byte, error) {
	if e.Pretty {
		return json.MarshalIndent(record, "  ", "  ")
	}
	return json.Marshal(record)
}
