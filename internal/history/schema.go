// Package history keeps a SQLite record of budget runs and of every
// transaction each run augmented.
package history

const schema = `
CREATE TABLE IF NOT EXISTS runs (
    id TEXT PRIMARY KEY,
    journal TEXT NOT NULL,
    since TEXT NOT NULL DEFAULT '',
    dry_run INTEGER NOT NULL,
    started_at TEXT NOT NULL,
    finished_at TEXT NOT NULL,
    scanned INTEGER NOT NULL,
    augmented INTEGER NOT NULL,
    splits_added INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_runs_started
    ON runs(started_at);

CREATE TABLE IF NOT EXISTS run_transactions (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
    tx_date TEXT NOT NULL,
    description TEXT NOT NULL,
    file TEXT NOT NULL,
    line INTEGER NOT NULL,
    splits INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_run_transactions_run
    ON run_transactions(run_id);
`
