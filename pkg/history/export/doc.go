// Package export writes run records as CSV or JSON.
//
// Both exporters accept either a slice of records or a channel, so large
// histories can be streamed from storage page by page:
//
//	records, errc := export.Stream(ctx, store, storage.Filter{ModelID: "gpt-4o"}, 500)
//	if err := export.NewCSVExporter(true).ExportStream(ctx, records, os.Stdout); err != nil {
//	    return err
//	}
//	if err := <-errc; err != nil {
//	    return err
//	}
//
// CSV columns follow the RunRecord fields in declaration order with times
// in RFC 3339. JSON output is always an array.
//
// Failures are returned as *ExportError carrying the format and the number
// of records written before the failure.
package export
