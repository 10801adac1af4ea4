// Package provenance records diagnostic runs in SQLite: which expression was
// analyzed, against which context pool, with what verdict, so past reports
// can be listed and re-inspected.
package provenance

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// #region schema
const schema = `
CREATE TABLE IF NOT EXISTS diagnostic_runs (
	run_id        TEXT PRIMARY KEY,
	expression_id TEXT NOT NULL,
	pool_id       TEXT,
	verdict       TEXT NOT NULL,
	report_json   TEXT,
	duration_ms   INTEGER NOT NULL,
	created_at    TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_runs_expression ON diagnostic_runs(expression_id, created_at);
`

// #endregion schema

// #region types

// Run is one recorded diagnostic run.
type Run struct {
	RunID        string
	ExpressionID string
	PoolID       string
	Verdict      string
	ReportJSON   string
	Duration     time.Duration
	CreatedAt    time.Time
}

// Log persists diagnostic runs.
type Log struct {
	db *sql.DB
}

// #endregion types

// #region constructor

// NewLog opens a SQLite database and runs migrations.
func NewLog(dbPath string) (*Log, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Log{db: db}, nil
}

// Close closes the underlying database connection.
func (l *Log) Close() error {
	return l.db.Close()
}

// #endregion constructor

// #region record

// Record writes one run entry. A missing run ID gets a fresh UUID; a zero
// creation time gets the current time. Returns the run ID.
func (l *Log) Record(r Run) (string, error) {
	if r.RunID == "" {
		r.RunID = uuid.New().String()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}

	_, err := l.db.Exec(
		`INSERT INTO diagnostic_runs (run_id, expression_id, pool_id, verdict, report_json, duration_ms, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		r.RunID,
		r.ExpressionID,
		nullIfEmpty(r.PoolID),
		r.Verdict,
		nullIfEmpty(r.ReportJSON),
		r.Duration.Milliseconds(),
		r.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return "", fmt.Errorf("record run: %w", err)
	}
	return r.RunID, nil
}

// #endregion record

// #region query

// Get retrieves a run by ID.
func (l *Log) Get(runID string) (Run, error) {
	row := l.db.QueryRow(
		`SELECT run_id, expression_id, pool_id, verdict, report_json, duration_ms, created_at
		 FROM diagnostic_runs WHERE run_id = ?`, runID,
	)
	return scanRun(row.Scan)
}

// List returns the most recent runs, optionally filtered by expression ID.
func (l *Log) List(expressionID string, limit int) ([]Run, error) {
	query := `SELECT run_id, expression_id, pool_id, verdict, report_json, duration_ms, created_at
	          FROM diagnostic_runs`
	args := []interface{}{}
	if expressionID != "" {
		query += ` WHERE expression_id = ?`
		args = append(args, expressionID)
	}
	query += ` ORDER BY created_at DESC LIMIT ?`
	args = append(args, limit)

	rows, err := l.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		r, err := scanRun(rows.Scan)
		if err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

func scanRun(scan func(...interface{}) error) (Run, error) {
	var r Run
	var poolID, reportJSON sql.NullString
	var durationMs int64
	var createdStr string

	if err := scan(&r.RunID, &r.ExpressionID, &poolID, &r.Verdict, &reportJSON, &durationMs, &createdStr); err != nil {
		return Run{}, fmt.Errorf("scan run: %w", err)
	}
	if poolID.Valid {
		r.PoolID = poolID.String
	}
	if reportJSON.Valid {
		r.ReportJSON = reportJSON.String
	}
	r.Duration = time.Duration(durationMs) * time.Millisecond
	r.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdStr)
	return r, nil
}

func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

// #endregion query
