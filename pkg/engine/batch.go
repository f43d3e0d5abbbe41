package engine

import (
	"context"
	"fmt"
	"sort"

	"golang.org/x/sync/errgroup"

	"mercator-hq/routecost/pkg/catalog"
	"mercator-hq/routecost/pkg/sustain"
)

// CompareModels evaluates req against each of modelIDs (every catalog model
// when modelIDs is empty) and returns the results sorted ascending by total
// cost. Ties keep catalog iteration order.
func (e *Engine) CompareModels(ctx context.Context, cat *catalog.Catalog, modelIDs []string, req UsageRequest, a sustain.Assumptions) ([]*Result, error) {
	if len(modelIDs) == 0 {
		modelIDs = cat.IDs()
	}

	items := make([]BatchItem, len(modelIDs))
	for i, id := range modelIDs {
		items[i] = BatchItem{ModelID: id, Request: req}
	}

	results, err := e.CalculateBatch(ctx, cat, items, a)
	if err != nil {
		return nil, err
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Total() != results[j].Total() {
			return results[i].Total() < results[j].Total()
		}
		return cat.Position(results[i].ModelID) < cat.Position(results[j].ModelID)
	})

	return results, nil
}

// CalculateBatch evaluates items independently and returns results in input
// order. The first failing item cancels the rest and its error is returned.
func (e *Engine) CalculateBatch(ctx context.Context, cat *catalog.Catalog, items []BatchItem, a sustain.Assumptions) ([]*Result, error) {
	results := make([]*Result, len(items))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.opts.Workers)

	for i, item := range items {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res, err := e.Evaluate(cat, item.ModelID, item.Request, a)
			if err != nil {
				return fmt.Errorf("batch item %d (%s): %w", i, item.ModelID, err)
			}
			results[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return results, nil
}
