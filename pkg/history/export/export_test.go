package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"mercator-hq/routecost/pkg/history"
	"mercator-hq/routecost/pkg/history/storage"
)

var base = time.Date(2026, 1, 15, 10, 30, 0, 0, time.UTC)

func testRecord(i int) history.RunRecord {
	return history.RunRecord{
		ID:           fmt.Sprintf("run-%d", i),
		RecordedAt:   base.Add(time.Duration(i) * time.Minute),
		ModelID:      "gpt-4o",
		Requests:     10,
		InputTokens:  1000,
		OutputTokens: 250,
		TotalTokens:  12500,
		BaseCost:     0.5,
		Commission:   0.025,
		TotalCost:    0.525,
		EnergyWh:     36.25,
		CO2eKg:       0.0145,
	}
}

func seededStore(t *testing.T, n int) *storage.MemoryStorage {
	t.Helper()
	store := storage.NewMemoryStorage()
	t.Cleanup(func() { store.Close() })
	for i := 0; i < n; i++ {
		r := testRecord(i)
		if err := store.Store(context.Background(), &r); err != nil {
			t.Fatalf("Store() error = %v", err)
		}
	}
	return store
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestCSVExporter_EmptyRecords(t *testing.T) {
	var buf bytes.Buffer

	if err := NewCSVExporter(true).Export(context.Background(), nil, &buf); err != nil {
		t.Fatalf("Export() failed: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Errorf("Expected 1 line (header), got %d", len(lines))
	}
	if !strings.HasPrefix(buf.String(), "id,recorded_at,model_id") {
		t.Errorf("unexpected header: %q", lines[0])
	}
}

func TestCSVExporter_Records(t *testing.T) {
	var buf bytes.Buffer
	records := []history.RunRecord{testRecord(0), testRecord(1)}

	if err := NewCSVExporter(true).Export(context.Background(), records, &buf); err != nil {
		t.Fatalf("Export() failed: %v", err)
	}

	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("output is not valid CSV: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("Expected 3 rows, got %d", len(rows))
	}
	want := []string{"run-0", "2026-01-15T10:30:00Z", "gpt-4o", "10", "1000", "250", "12500", "0.5", "0.025", "0.525", "36.25", "0.0145"}
	for i, cell := range want {
		if rows[1][i] != cell {
			t.Errorf("column %s = %q, want %q", rows[0][i], rows[1][i], cell)
		}
	}
}

func TestCSVExporter_NoHeader(t *testing.T) {
	var buf bytes.Buffer

	if err := NewCSVExporter(false).Export(context.Background(), []history.RunRecord{testRecord(3)}, &buf); err != nil {
		t.Fatalf("Export() failed: %v", err)
	}
	if !strings.HasPrefix(buf.String(), "run-3,") {
		t.Errorf("expected data row first, got %q", buf.String())
	}
}

func TestJSONExporter(t *testing.T) {
	tests := []struct {
		name    string
		records []history.RunRecord
		pretty  bool
		want    int
	}{
		{name: "empty", records: nil, want: 0},
		{name: "single record stays an array", records: []history.RunRecord{testRecord(0)}, want: 1},
		{name: "pretty", records: []history.RunRecord{testRecord(0), testRecord(1)}, pretty: true, want: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := NewJSONExporter(tt.pretty).Export(context.Background(), tt.records, &buf); err != nil {
				t.Fatalf("Export() failed: %v", err)
			}

			var got []history.RunRecord
			if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
				t.Fatalf("invalid JSON: %v\n%s", err, buf.String())
			}
			if len(got) != tt.want {
				t.Errorf("len = %d, want %d", len(got), tt.want)
			}
			if tt.pretty && !strings.Contains(buf.String(), "\n  ") {
				t.Error("expected indented output")
			}
		})
	}
}

func TestStream(t *testing.T) {
	store := seededStore(t, 7)

	tests := []struct {
		name     string
		filter   storage.Filter
		pageSize int
		wantIDs  []string
	}{
		{
			name:     "all records across pages",
			pageSize: 3,
			wantIDs:  []string{"run-6", "run-5", "run-4", "run-3", "run-2", "run-1", "run-0"},
		},
		{
			name:     "limit smaller than page",
			filter:   storage.Filter{Limit: 2},
			pageSize: 5,
			wantIDs:  []string{"run-6", "run-5"},
		},
		{
			name:     "limit spanning pages with offset",
			filter:   storage.Filter{Limit: 4, Offset: 1},
			pageSize: 3,
			wantIDs:  []string{"run-5", "run-4", "run-3", "run-2"},
		},
		{
			name:    "default page size",
			filter:  storage.Filter{Since: ptr(base.Add(5 * time.Minute))},
			wantIDs: []string{"run-6", "run-5"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records, errc := Stream(context.Background(), store, tt.filter, tt.pageSize)

			var got []string
			for r := range records {
				got = append(got, r.ID)
			}
			if err := <-errc; err != nil {
				t.Fatalf("Stream() error = %v", err)
			}
			if strings.Join(got, ",") != strings.Join(tt.wantIDs, ",") {
				t.Errorf("ids = %v, want %v", got, tt.wantIDs)
			}
		})
	}
}

func TestStream_StorageError(t *testing.T) {
	store := storage.NewMemoryStorage()
	store.Close()

	records, errc := Stream(context.Background(), store, storage.Filter{}, 10)
	for range records {
	}
	if err := <-errc; !errors.Is(err, storage.ErrClosed) {
		t.Errorf("Stream() error = %v, want ErrClosed", err)
	}
}

func TestExportStream_CSV(t *testing.T) {
	store := seededStore(t, 250)
	var buf bytes.Buffer

	records, errc := Stream(context.Background(), store, storage.Filter{}, 100)
	if err := NewCSVExporter(true).ExportStream(context.Background(), records, &buf); err != nil {
		t.Fatalf("ExportStream() failed: %v", err)
	}
	if err := <-errc; err != nil {
		t.Fatalf("Stream() error = %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 251 {
		t.Errorf("Expected 251 lines, got %d", len(lines))
	}
}

func TestExportStream_JSON(t *testing.T) {
	store := seededStore(t, 3)
	var buf bytes.Buffer

	records, errc := Stream(context.Background(), store, storage.Filter{}, 2)
	if err := NewJSONExporter(false).ExportStream(context.Background(), records, &buf); err != nil {
		t.Fatalf("ExportStream() failed: %v", err)
	}
	if err := <-errc; err != nil {
		t.Fatalf("Stream() error = %v", err)
	}

	var got []history.RunRecord
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, buf.String())
	}
	if len(got) != 3 || got[0].ID != "run-2" {
		t.Errorf("got %d records, first %q", len(got), got[0].ID)
	}
}

func TestExportStream_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ch := make(chan history.RunRecord)
	if err := NewJSONExporter(false).ExportStream(ctx, ch, &bytes.Buffer{}); !errors.Is(err, context.Canceled) {
		t.Errorf("ExportStream() error = %v, want context.Canceled", err)
	}
}

func TestExport_WriterError(t *testing.T) {
	records := []history.RunRecord{testRecord(0)}

	for name, exp := range map[string]interface {
		Export(context.Context, []history.RunRecord, io.Writer) error
	}{
		"csv":  NewCSVExporter(true),
		"json": NewJSONExporter(false),
	} {
		t.Run(name, func(t *testing.T) {
			err := exp.Export(context.Background(), records, failingWriter{})
			var exportErr *ExportError
			if !errors.As(err, &exportErr) {
				t.Fatalf("Export() error = %v, want *ExportError", err)
			}
			if exportErr.Format != name {
				t.Errorf("Format = %q, want %q", exportErr.Format, name)
			}
		})
	}
}

func ptr[T any](v T) *T { return &v }
