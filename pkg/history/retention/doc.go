// Package retention prunes old run records from a history store.
//
// A Pruner applies two rules in order: records older than RetentionDays
// are deleted, then the oldest records beyond MaxRecords are deleted.
// Either rule is disabled by a zero value. The Scheduler runs the pruner
// on a standard five-field cron expression (robfig/cron).
//
//	pruner := retention.NewPruner(store, &retention.Config{
//	    RetentionDays: 90,
//	    PruneSchedule: "0 3 * * *",
//	})
//	if err := pruner.Start(ctx); err != nil {
//	    return err
//	}
//	defer pruner.Stop()
package retention
