package storage

// SchemaVersion is the current database schema version.
const SchemaVersion = 1

// Schema creates the run record tables. recorded_at is stored as Unix
// nanoseconds so both SQLite drivers round-trip it identically.
const Schema = `
CREATE TABLE IF NOT EXISTS run_records (
    seq INTEGER PRIMARY KEY AUTOINCREMENT,
    id TEXT NOT NULL UNIQUE,
    recorded_at INTEGER NOT NULL,
    model_id TEXT NOT NULL,
    requests INTEGER NOT NULL,
    input_tokens REAL NOT NULL,
    output_tokens REAL NOT NULL,
    total_tokens REAL NOT NULL,
    base_cost REAL NOT NULL,
    commission REAL NOT NULL,
    total_cost REAL NOT NULL,
    energy_wh REAL NOT NULL,
    co2e_kg REAL NOT NULL
);

CREATE TABLE IF NOT EXISTS schema_version (
    version INTEGER PRIMARY KEY,
    applied_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_run_records_recorded_at ON run_records(recorded_at);
CREATE INDEX IF NOT EXISTS idx_run_records_model_id ON run_records(model_id);
`

// InsertSchemaVersion records the schema version.
const InsertSchemaVersion = `
INSERT INTO schema_version (version, applied_at)
VALUES (?, datetime('now'))
ON CONFLICT(version) DO NOTHING;
`

// GetSchemaVersion retrieves the newest schema version.
const GetSchemaVersion = `
SELECT version FROM schema_version ORDER BY version DESC LIMIT 1;
`

const insertRecord = `
INSERT INTO run_records (
    id, recorded_at, model_id, requests,
    input_tokens, output_tokens, total_tokens,
    base_cost, commission, total_cost,
    energy_wh, co2e_kg
) VALUES (
    :id, :recorded_at, :model_id, :requests,
    :input_tokens, :output_tokens, :total_tokens,
    :base_cost, :commission, :total_cost,
    :energy_wh, :co2e_kg
)`

const selectColumns = `
SELECT id, recorded_at, model_id, requests,
       input_tokens, output_tokens, total_tokens,
       base_cost, commission, total_cost,
       energy_wh, co2e_kg
FROM run_records`

// deleteOldest keeps the newest rows; LIMIT -1 means no limit in SQLite.
const deleteOldest = `
DELETE FROM run_records WHERE seq IN (
    SELECT seq FROM run_records
    ORDER BY recorded_at DESC, seq DESC
    LIMIT -1 OFFSET ?
)`
