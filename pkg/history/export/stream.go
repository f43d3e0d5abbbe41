package export

import (
	"context"

	"mercator-hq/routecost/pkg/history"
	"mercator-hq/routecost/pkg/history/storage"
)

// DefaultPageSize is the page size Stream uses when given zero.
const DefaultPageSize = 500

// Stream pages through store and sends every record matching filter, most
// recent first. filter.Limit caps the total sent and filter.Offset skips
// leading records. The record channel closes when done; the error channel
// then yields nil or the first storage error.
func Stream(ctx context.Context, store storage.Storage, filter storage.Filter, pageSize int) (<-chan history.RunRecord, <-chan error) {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}

	out := make(chan history.RunRecord)
	errc := make(chan error, 1)

	go func() {
		defer close(errc)
		defer close(out)

		remaining := filter.Limit
		page := filter
		for {
			page.Limit = pageSize
			if remaining > 0 && remaining < pageSize {
				page.Limit = remaining
			}

			records, err := store.List(ctx, page)
			if err != nil {
				errc <- err
				return
			}
			for _, r := range records {
				select {
				case out <- r:
				case <-ctx.Done():
					errc <- ctx.Err()
					return
				}
			}

			if remaining > 0 {
				remaining -= len(records)
				if remaining <= 0 {
					return
				}
			}
			if len(records) < page.Limit {
				return
			}
			page.Offset += len(records)
		}
	}()

	return out, errc
}
