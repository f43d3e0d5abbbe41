package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"mercator-hq/routecost/pkg/config"
	"mercator-hq/routecost/pkg/history"
)

// Storage is a persistent store of run records.
type Storage interface {
	// Store persists a run record. IDs must be unique.
	Store(ctx context.Context, record *history.RunRecord) error

	// List returns records matching filter, most recent first.
	List(ctx context.Context, filter Filter) ([]history.RunRecord, error)

	// Count returns the number of records matching filter.
	// Limit and Offset are ignored.
	Count(ctx context.Context, filter Filter) (int64, error)

	// DeleteBefore removes records recorded strictly before cutoff.
	DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error)

	// DeleteOldest removes the oldest records so that at most keep remain.
	DeleteOldest(ctx context.Context, keep int64) (int64, error)

	// Ping verifies the backend is reachable.
	Ping(ctx context.Context) error

	// Backend names the implementation ("sqlite", "memory").
	Backend() string

	// Close releases resources. Further calls return ErrClosed.
	Close() error
}

// Filter narrows List and Count.
type Filter struct {
	// ModelID restricts results to one model when non-empty.
	ModelID string

	// Since and Until bound RecordedAt: Since inclusive, Until exclusive.
	Since *time.Time
	Until *time.Time

	// Limit caps the number of records returned. 0 means no limit.
	Limit int

	// Offset skips records after ordering.
	Offset int
}

// Validate reports malformed filters.
func (f Filter) Validate() error {
	if f.Limit < 0 {
		return fmt.Errorf("limit must be non-negative, got %d", f.Limit)
	}
	if f.Offset < 0 {
		return fmt.Errorf("offset must be non-negative, got %d", f.Offset)
	}
	if f.Since != nil && f.Until != nil && !f.Until.After(*f.Since) {
		return errors.New("until must be after since")
	}
	return nil
}

func (f Filter) matches(r *history.RunRecord) bool {
	if f.ModelID != "" && r.ModelID != f.ModelID {
		return false
	}
	if f.Since != nil && r.RecordedAt.Before(*f.Since) {
		return false
	}
	if f.Until != nil && !r.RecordedAt.Before(*f.Until) {
		return false
	}
	return true
}

// New opens the backend selected by cfg.Backend.
func New(cfg *config.HistoryConfig) (Storage, error) {
	switch cfg.Backend {
	case "sqlite":
		return NewSQLiteStorage(&SQLiteConfig{
			Path:         cfg.SQLite.Path,
			Driver:       cfg.SQLite.Driver,
			MaxOpenConns: cfg.SQLite.MaxOpenConns,
			MaxIdleConns: cfg.SQLite.MaxIdleConns,
			WALMode:      cfg.SQLite.WALMode,
			BusyTimeout:  cfg.SQLite.BusyTimeout,
		})
	case "memory":
		return NewMemoryStorage(), nil
	default:
		return nil, NewStorageError(cfg.Backend, "open", fmt.Errorf("unsupported backend %q", cfg.Backend))
	}
}
