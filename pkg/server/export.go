package server

import (
	"net/http"

	"mercator-hq/routecost/pkg/history/export"
	"mercator-hq/routecost/pkg/service"
)

// handleHistoryExport streams every matching run record as CSV (default)
// or JSON. Errors after the first byte can only be logged.
func (s *Server) handleHistoryExport(w http.ResponseWriter, r *http.Request) {
	filter, ok := s.parseFilter(w, r, false)
	if !ok {
		return
	}

	format := r.URL.Query().Get("format")
	if format == "" {
		format = "csv"
	}
	if format != "csv" && format != "json" {
		writeError(w, http.StatusBadRequest, errorTypeInvalidRequest, "format must be csv or json", "format")
		return
	}

	store := s.svc.Store()
	if store == nil {
		writeServiceError(w, service.ErrHistoryDisabled)
		return
	}

	ctx := r.Context()
	records, errc := export.Stream(ctx, store, filter, 0)

	var err error
	switch format {
	case "json":
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Content-Disposition", `attachment; filename="history.json"`)
		err = export.NewJSONExporter(false).ExportStream(ctx, records, w)
	default:
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", `attachment; filename="history.csv"`)
		err = export.NewCSVExporter(true).ExportStream(ctx, records, w)
	}
	if err != nil {
		for range records {
		}
	}
	if streamErr := <-errc; err == nil {
		err = streamErr
	}
	if err != nil {
		s.logger.ErrorContext(ctx, "history export failed", "format", format, "error", err)
	}
}
