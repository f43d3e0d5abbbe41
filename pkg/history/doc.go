// Package history folds past run records into cumulative metrics.
//
// Run records are produced by whoever executes estimates (the service layer
// when recording is enabled, or any external writer) and persisted by
// package history/storage. Aggregation itself is pure: an empty record set is
// the valid "no history yet" state and yields zero sums and zero ratios.
//
//	records, _ := store.List(ctx, storage.Filter{})
//	m := history.Aggregate(records)
//	fmt.Printf("%d runs, $%.2f total, %.4f Wh/token\n", m.Runs, m.TotalCost, m.EnergyPerToken)
package history
