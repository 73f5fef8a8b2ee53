package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

const timeLayout = time.RFC3339Nano

type Run struct {
	ID          string
	Journal     string
	Since       string
	DryRun      bool
	StartedAt   time.Time
	FinishedAt  time.Time
	Scanned     int
	Augmented   int
	SplitsAdded int
	// Recent leaves Transactions empty.
	Transactions []Transaction
}

type Transaction struct {
	Date        string
	Description string
	File        string
	Line        int
	Splits      int
}

// NewRun starts a run record with a fresh ID.
func NewRun(journal string, started time.Time) Run {
	return Run{
		ID:        uuid.NewString(),
		Journal:   journal,
		StartedAt: started,
	}
}

type DB struct {
	db   *sql.DB
	path string
}

// Open opens or creates the history database at path.
func Open(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create history directory: %w", err)
	}

	db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?_foreign_keys=on&_journal_mode=WAL", path))
	if err != nil {
		return nil, fmt.Errorf("open history: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping history: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("initialize history schema: %w", err)
	}

	return &DB{db: db, path: path}, nil
}

func (d *DB) Close() error {
	return d.db.Close()
}

func (d *DB) Path() string {
	return d.path
}

// Record stores a run and its transactions atomically.
func (d *DB) Record(ctx context.Context, run Run) error {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs (id, journal, since, dry_run, started_at, finished_at, scanned, augmented, splits_added)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID,
		run.Journal,
		run.Since,
		run.DryRun,
		run.StartedAt.UTC().Format(timeLayout),
		run.FinishedAt.UTC().Format(timeLayout),
		run.Scanned,
		run.Augmented,
		run.SplitsAdded,
	)
	if err != nil {
		return fmt.Errorf("insert run %s: %w", run.ID, err)
	}

	for _, t := range run.Transactions {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO run_transactions (run_id, tx_date, description, file, line, splits)
			VALUES (?, ?, ?, ?, ?, ?)`,
			run.ID, t.Date, t.Description, t.File, t.Line, t.Splits,
		)
		if err != nil {
			return fmt.Errorf("insert transaction of run %s: %w", run.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit run %s: %w", run.ID, err)
	}
	return nil
}

// Recent returns up to limit runs, newest first, without their
// transactions.
func (d *DB) Recent(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := d.db.QueryContext(ctx, `
		SELECT id, journal, since, dry_run, started_at, finished_at, scanned, augmented, splits_added
		FROM runs
		ORDER BY started_at DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			run               Run
			started, finished string
		)
		if err := rows.Scan(
			&run.ID,
			&run.Journal,
			&run.Since,
			&run.DryRun,
			&started,
			&finished,
			&run.Scanned,
			&run.Augmented,
			&run.SplitsAdded,
		); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		if run.StartedAt, err = time.Parse(timeLayout, started); err != nil {
			return nil, fmt.Errorf("run %s: %w", run.ID, err)
		}
		if run.FinishedAt, err = time.Parse(timeLayout, finished); err != nil {
			return nil, fmt.Errorf("run %s: %w", run.ID, err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// Transactions returns the transactions a run augmented, in the order
// they were recorded.
func (d *DB) Transactions(ctx context.Context, runID string) ([]Transaction, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT tx_date, description, file, line, splits
		FROM run_transactions
		WHERE run_id = ?
		ORDER BY id`, runID)
	if err != nil {
		return nil, fmt.Errorf("query transactions of run %s: %w", runID, err)
	}
	defer rows.Close()

	var result []Transaction
	for rows.Next() {
		var t Transaction
		if err := rows.Scan(&t.Date, &t.Description, &t.File, &t.Line, &t.Splits); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		result = append(result, t)
	}
	return result, rows.Err()
}
