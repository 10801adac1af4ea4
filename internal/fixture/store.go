package fixture

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/narrateworks/character-engine/go-diagnostics/internal/snapshot"
)

// #region schema
const schema = `
CREATE TABLE IF NOT EXISTS context_pools (
	pool_id     TEXT PRIMARY KEY,
	description TEXT,
	created_at  TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS contexts (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	pool_id       TEXT NOT NULL,
	seq           INTEGER NOT NULL,
	frame_json    TEXT NOT NULL,
	previous_json TEXT,
	FOREIGN KEY (pool_id) REFERENCES context_pools(pool_id)
);

CREATE INDEX IF NOT EXISTS idx_contexts_pool ON contexts(pool_id, seq);
`

// #endregion schema

// #region store

// PoolInfo describes one stored context pool.
type PoolInfo struct {
	PoolID      string
	Description string
	CreatedAt   time.Time
	Size        int
}

// ContextStore persists sampled context pools in SQLite so diagnostic runs
// can reuse the exact same population.
type ContextStore struct {
	db *sql.DB
}

// NewContextStore opens a SQLite database and runs migrations.
func NewContextStore(dbPath string) (*ContextStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		return nil, fmt.Errorf("pragma fk: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &ContextStore{db: db}, nil
}

// Close closes the underlying database connection.
func (s *ContextStore) Close() error {
	return s.db.Close()
}

// DB returns the underlying *sql.DB for use by other packages.
func (s *ContextStore) DB() *sql.DB {
	return s.db
}

// #endregion store

// #region save-pool

// SavePool persists a context pool atomically, returning its pool ID.
// An empty poolID gets a fresh UUID.
func (s *ContextStore) SavePool(poolID, description string, snaps []snapshot.Snapshot) (string, error) {
	if poolID == "" {
		poolID = uuid.New().String()
	}
	now := time.Now().UTC()

	tx, err := s.db.Begin()
	if err != nil {
		return "", fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		`INSERT INTO context_pools (pool_id, description, created_at) VALUES (?, ?, ?)`,
		poolID, description, now.Format(time.RFC3339Nano),
	)
	if err != nil {
		return "", fmt.Errorf("insert pool: %w", err)
	}

	stmt, err := tx.Prepare(
		`INSERT INTO contexts (pool_id, seq, frame_json, previous_json) VALUES (?, ?, ?, ?)`,
	)
	if err != nil {
		return "", fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, snap := range snaps {
		frameJSON, err := json.Marshal(fromFrame(snap.Frame))
		if err != nil {
			return "", fmt.Errorf("marshal frame %d: %w", i, err)
		}
		var prevPtr interface{}
		if snap.Previous != nil {
			prevJSON, err := json.Marshal(fromFrame(*snap.Previous))
			if err != nil {
				return "", fmt.Errorf("marshal previous frame %d: %w", i, err)
			}
			prevPtr = string(prevJSON)
		}
		if _, err := stmt.Exec(poolID, i, string(frameJSON), prevPtr); err != nil {
			return "", fmt.Errorf("insert context %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit: %w", err)
	}
	return poolID, nil
}

// #endregion save-pool

// #region load-pool

// LoadPool reads a pool's contexts back in insertion order.
func (s *ContextStore) LoadPool(poolID string) ([]snapshot.Snapshot, error) {
	rows, err := s.db.Query(
		`SELECT frame_json, previous_json FROM contexts WHERE pool_id = ? ORDER BY seq`, poolID,
	)
	if err != nil {
		return nil, fmt.Errorf("load pool %s: %w", poolID, err)
	}
	defer rows.Close()

	var snaps []snapshot.Snapshot
	for rows.Next() {
		var frameJSON string
		var prevJSON sql.NullString
		if err := rows.Scan(&frameJSON, &prevJSON); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}

		var ff FixtureFrame
		if err := json.Unmarshal([]byte(frameJSON), &ff); err != nil {
			return nil, fmt.Errorf("unmarshal frame: %w", err)
		}
		snap := snapshot.Snapshot{Frame: ff.toFrame()}

		if prevJSON.Valid {
			var pf FixtureFrame
			if err := json.Unmarshal([]byte(prevJSON.String), &pf); err != nil {
				return nil, fmt.Errorf("unmarshal previous frame: %w", err)
			}
			prev := pf.toFrame()
			snap.Previous = &prev
		}
		snaps = append(snaps, snap)
	}
	return snaps, rows.Err()
}

// ListPools returns the most recent pools with their sizes.
func (s *ContextStore) ListPools(limit int) ([]PoolInfo, error) {
	rows, err := s.db.Query(
		`SELECT p.pool_id, p.description, p.created_at, COUNT(c.id)
		 FROM context_pools p LEFT JOIN contexts c ON c.pool_id = p.pool_id
		 GROUP BY p.pool_id ORDER BY p.created_at DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list pools: %w", err)
	}
	defer rows.Close()

	var pools []PoolInfo
	for rows.Next() {
		var info PoolInfo
		var createdStr string
		var desc sql.NullString
		if err := rows.Scan(&info.PoolID, &desc, &createdStr, &info.Size); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		if desc.Valid {
			info.Description = desc.String
		}
		info.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdStr)
		pools = append(pools, info)
	}
	return pools, rows.Err()
}

// #endregion load-pool
