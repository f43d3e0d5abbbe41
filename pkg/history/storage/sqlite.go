package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	_ "modernc.org/sqlite"

	"mercator-hq/routecost/pkg/history"
)

const sqliteBackend = "sqlite"

// Supported database/sql driver names.
const (
	DriverModernc = "sqlite"  // modernc.org/sqlite, pure Go
	DriverMattn   = "sqlite3" // github.com/mattn/go-sqlite3, cgo
)

// SQLiteConfig contains configuration for the SQLite storage backend.
type SQLiteConfig struct {
	// Path is the database file path. Parent directories are created.
	Path string

	// Driver is DriverModernc or DriverMattn.
	// Default: DriverModernc
	Driver string

	// MaxOpenConns is the maximum number of open connections to the database.
	// Default: 10
	MaxOpenConns int

	// MaxIdleConns is the maximum number of idle connections.
	// Default: 5
	MaxIdleConns int

	// WALMode enables Write-Ahead Logging mode for better concurrency.
	WALMode bool

	// BusyTimeout is the duration to wait when the database is locked.
	// Default: 5 seconds
	BusyTimeout time.Duration
}

// DefaultSQLiteConfig returns the default SQLite configuration.
func DefaultSQLiteConfig() *SQLiteConfig {
	return &SQLiteConfig{
		Path:         "data/history.db",
		Driver:       DriverModernc,
		MaxOpenConns: 10,
		MaxIdleConns: 5,
		WALMode:      true,
		BusyTimeout:  5 * time.Second,
	}
}

// SQLiteStorage implements Storage on SQLite through sqlx.
type SQLiteStorage struct {
	db     *sqlx.DB
	config SQLiteConfig
	logger *slog.Logger

	mu     sync.RWMutex
	closed bool
}

// runRow is the database shape of a RunRecord.
type runRow struct {
	ID           string  `db:"id"`
	RecordedAt   int64   `db:"recorded_at"`
	ModelID      string  `db:"model_id"`
	Requests     int64   `db:"requests"`
	InputTokens  float64 `db:"input_tokens"`
	OutputTokens float64 `db:"output_tokens"`
	TotalTokens  float64 `db:"total_tokens"`
	BaseCost     float64 `db:"base_cost"`
	Commission   float64 `db:"commission"`
	TotalCost    float64 `db:"total_cost"`
	EnergyWh     float64 `db:"energy_wh"`
	CO2eKg       float64 `db:"co2e_kg"`
}

func toRow(r *history.RunRecord) runRow {
	return runRow{
		ID:           r.ID,
		RecordedAt:   r.RecordedAt.UnixNano(),
		ModelID:      r.ModelID,
		Requests:     r.Requests,
		InputTokens:  r.InputTokens,
		OutputTokens: r.OutputTokens,
		TotalTokens:  r.TotalTokens,
		BaseCost:     r.BaseCost,
		Commission:   r.Commission,
		TotalCost:    r.TotalCost,
		EnergyWh:     r.EnergyWh,
		CO2eKg:       r.CO2eKg,
	}
}

func (row runRow) record() history.RunRecord {
	return history.RunRecord{
		ID:           row.ID,
		RecordedAt:   time.Unix(0, row.RecordedAt).UTC(),
		ModelID:      row.ModelID,
		Requests:     row.Requests,
		InputTokens:  row.InputTokens,
		OutputTokens: row.OutputTokens,
		TotalTokens:  row.TotalTokens,
		BaseCost:     row.BaseCost,
		Commission:   row.Commission,
		TotalCost:    row.TotalCost,
		EnergyWh:     row.EnergyWh,
		CO2eKg:       row.CO2eKg,
	}
}

// NewSQLiteStorage opens (creating if needed) a SQLite history database.
func NewSQLiteStorage(cfg *SQLiteConfig) (*SQLiteStorage, error) {
	if cfg == nil {
		cfg = DefaultSQLiteConfig()
	}
	c := *cfg
	if c.Driver == "" {
		c.Driver = DriverModernc
	}
	if c.MaxOpenConns <= 0 {
		c.MaxOpenConns = 10
	}
	if c.MaxIdleConns <= 0 {
		c.MaxIdleConns = 5
	}
	if c.BusyTimeout <= 0 {
		c.BusyTimeout = 5 * time.Second
	}

	logger := slog.Default().With("component", "history.storage.sqlite")

	if dir := filepath.Dir(c.Path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, NewStorageError(sqliteBackend, "open", err)
		}
	}

	dsn, err := buildDSN(&c)
	if err != nil {
		return nil, NewStorageError(sqliteBackend, "open", err)
	}

	db, err := sqlx.Open(c.Driver, dsn)
	if err != nil {
		return nil, NewStorageError(sqliteBackend, "open", err)
	}
	db.SetMaxOpenConns(c.MaxOpenConns)
	db.SetMaxIdleConns(c.MaxIdleConns)

	s := &SQLiteStorage{
		db:     db,
		config: c,
		logger: logger,
	}

	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}

	logger.Info("SQLite storage initialized",
		"path", c.Path,
		"driver", c.Driver,
		"wal_mode", c.WALMode,
		"max_open_conns", c.MaxOpenConns,
	)

	return s, nil
}

// buildDSN encodes the busy timeout and journal mode as connection
// parameters so every pooled connection gets them.
func buildDSN(c *SQLiteConfig) (string, error) {
	if c.Path == "" {
		return "", errors.New("database path is required")
	}

	busyMs := c.BusyTimeout.Milliseconds()
	q := url.Values{}
	switch c.Driver {
	case DriverModernc:
		q.Add("_pragma", fmt.Sprintf("busy_timeout(%d)", busyMs))
		if c.WALMode {
			q.Add("_pragma", "journal_mode(WAL)")
		}
	case DriverMattn:
		q.Set("_busy_timeout", fmt.Sprintf("%d", busyMs))
		if c.WALMode {
			q.Set("_journal_mode", "WAL")
		}
	default:
		return "", fmt.Errorf("unsupported driver %q", c.Driver)
	}

	return "file:" + c.Path + "?" + q.Encode(), nil
}

// initialize creates the schema and verifies the schema version.
func (s *SQLiteStorage) initialize() error {
	if _, err := s.db.Exec(Schema); err != nil {
		return NewStorageError(sqliteBackend, "create_schema", err)
	}

	if _, err := s.db.Exec(InsertSchemaVersion, SchemaVersion); err != nil {
		return NewStorageError(sqliteBackend, "insert_schema_version", err)
	}

	var version int
	if err := s.db.Get(&version, GetSchemaVersion); err != nil && !errors.Is(err, sql.ErrNoRows) {
		return NewStorageError(sqliteBackend, "get_schema_version", err)
	}
	if version != SchemaVersion {
		return NewStorageError(sqliteBackend, "schema_version_mismatch",
			fmt.Errorf("expected schema version %d, got %d", SchemaVersion, version))
	}

	s.logger.Debug("schema version verified", "version", version)
	return nil
}

func (s *SQLiteStorage) checkOpen(op string) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return NewStorageError(sqliteBackend, op, ErrClosed)
	}
	return nil
}

// Store inserts a run record.
func (s *SQLiteStorage) Store(ctx context.Context, record *history.RunRecord) error {
	if err := s.checkOpen("store"); err != nil {
		return err
	}

	if _, err := s.db.NamedExecContext(ctx, insertRecord, toRow(record)); err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			err = fmt.Errorf("%w: %v", ErrDuplicateID, err)
		}
		return NewStorageError(sqliteBackend, "store", err)
	}
	return nil
}

// List returns matching records, most recent first.
func (s *SQLiteStorage) List(ctx context.Context, filter Filter) ([]history.RunRecord, error) {
	if err := filter.Validate(); err != nil {
		return nil, NewStorageError(sqliteBackend, "list", err)
	}
	if err := s.checkOpen("list"); err != nil {
		return nil, err
	}

	where, args := buildWhereClause(filter)
	query := selectColumns + where + " ORDER BY recorded_at DESC, seq DESC"
	if filter.Limit > 0 || filter.Offset > 0 {
		limit := filter.Limit
		if limit == 0 {
			limit = -1
		}
		query += " LIMIT ? OFFSET ?"
		args = append(args, limit, filter.Offset)
	}

	var rows []runRow
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, NewStorageError(sqliteBackend, "list", err)
	}

	out := make([]history.RunRecord, len(rows))
	for i, row := range rows {
		out[i] = row.record()
	}
	return out, nil
}

// Count returns the number of matching records.
func (s *SQLiteStorage) Count(ctx context.Context, filter Filter) (int64, error) {
	if err := s.checkOpen("count"); err != nil {
		return 0, err
	}

	where, args := buildWhereClause(filter)
	var n int64
	if err := s.db.GetContext(ctx, &n, "SELECT COUNT(*) FROM run_records"+where, args...); err != nil {
		return 0, NewStorageError(sqliteBackend, "count", err)
	}
	return n, nil
}

// DeleteBefore removes records recorded before cutoff.
func (s *SQLiteStorage) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	if err := s.checkOpen("delete_before"); err != nil {
		return 0, err
	}

	res, err := s.db.ExecContext(ctx, "DELETE FROM run_records WHERE recorded_at < ?", cutoff.UnixNano())
	if err != nil {
		return 0, NewStorageError(sqliteBackend, "delete_before", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, NewStorageError(sqliteBackend, "delete_before", err)
	}
	return n, nil
}

// DeleteOldest removes the oldest records beyond keep.
func (s *SQLiteStorage) DeleteOldest(ctx context.Context, keep int64) (int64, error) {
	if err := s.checkOpen("delete_oldest"); err != nil {
		return 0, err
	}
	if keep < 0 {
		keep = 0
	}

	res, err := s.db.ExecContext(ctx, deleteOldest, keep)
	if err != nil {
		return 0, NewStorageError(sqliteBackend, "delete_oldest", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, NewStorageError(sqliteBackend, "delete_oldest", err)
	}
	return n, nil
}

// Ping checks the database connection.
func (s *SQLiteStorage) Ping(ctx context.Context) error {
	if err := s.checkOpen("ping"); err != nil {
		return err
	}
	if err := s.db.PingContext(ctx); err != nil {
		return NewStorageError(sqliteBackend, "ping", err)
	}
	return nil
}

// Backend returns "sqlite".
func (s *SQLiteStorage) Backend() string {
	return sqliteBackend
}

// Close closes the database. It is safe to call more than once.
func (s *SQLiteStorage) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true

	if err := s.db.Close(); err != nil {
		return NewStorageError(sqliteBackend, "close", err)
	}
	s.logger.Debug("SQLite storage closed", "path", s.config.Path)
	return nil
}

func buildWhereClause(filter Filter) (string, []any) {
	var conds []string
	var args []any

	if filter.ModelID != "" {
		conds = append(conds, "model_id = ?")
		args = append(args, filter.ModelID)
	}
	if filter.Since != nil {
		conds = append(conds, "recorded_at >= ?")
		args = append(args, filter.Since.UnixNano())
	}
	if filter.Until != nil {
		conds = append(conds, "recorded_at < ?")
		args = append(args, filter.Until.UnixNano())
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}
