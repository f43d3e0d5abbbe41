// Package storage persists history.RunRecords.
//
// Two backends implement Storage:
//   - SQLiteStorage: database/sql through sqlx, using either the pure-Go
//     modernc.org/sqlite driver ("sqlite") or mattn/go-sqlite3 ("sqlite3")
//   - MemoryStorage: an in-process slice, for tests and ephemeral servers
//
// List always returns records most recent first. Retention is expressed
// through DeleteBefore (age) and DeleteOldest (count), which
// history/retention drives on a cron schedule.
//
// All errors returned by backends are *StorageError values naming the
// backend and operation.
package storage
