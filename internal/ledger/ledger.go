// SPDX-License-Identifier: MIT

// Package ledger keeps a SQLite record of perturbation trials so repeated
// runs can be compared after the fact.
package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite" // pure go sqlite driver
)

// DefaultPath is used when Open receives an empty path.
const DefaultPath = "odsynth.db"

// ErrClosed is returned by operations on a closed Ledger.
var ErrClosed = errors.New("ledger: closed")

// Trial is one perturb → solve round.
type Trial struct {
	ID          int64
	StartedAt   time.Time
	Kind        string // noise distribution
	Seed        uint64
	Stream      uint64 // trial index within a seeded batch
	Selected    int    // perturbed entries
	TotalDemand float64
	TSTT        float64
	WeightedVC  float64 // NaN when the network had no capacities
	DemandPath  string
}

// Ledger is safe for concurrent use.
type Ledger struct {
	mu   sync.Mutex
	db   *sql.DB
	path string
}

// Open creates (if needed) and opens the ledger database at path.
func Open(path string) (*Ledger, error) {
	if path == "" {
		path = DefaultPath
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil && !errors.Is(err, os.ErrExist) {
		return nil, fmt.Errorf("ledger: create dirs: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("ledger: open sqlite: %w", err)
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS trials (
		id           INTEGER PRIMARY KEY AUTOINCREMENT,
		started_at   INTEGER NOT NULL,
		kind         TEXT    NOT NULL,
		seed         INTEGER NOT NULL,
		stream       INTEGER NOT NULL,
		selected     INTEGER NOT NULL,
		total_demand REAL    NOT NULL,
		tstt         REAL    NOT NULL,
		weighted_vc  REAL,
		demand_path  TEXT    NOT NULL
	)`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ledger: create trials table: %w", err)
	}
	return &Ledger{db: db, path: path}, nil
}

// Path returns the database file location.
func (l *Ledger) Path() string { return l.path }

// Record stores t and returns its assigned id. StartedAt defaults to now.
func (l *Ledger) Record(ctx context.Context, t Trial) (int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.db == nil {
		return 0, ErrClosed
	}
	if t.StartedAt.IsZero() {
		t.StartedAt = time.Now()
	}
	var vc sql.NullFloat64
	if !math.IsNaN(t.WeightedVC) {
		vc = sql.NullFloat64{Float64: t.WeightedVC, Valid: true}
	}

	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("ledger: begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO trials (started_at, kind, seed, stream, selected, total_demand, tstt, weighted_vc, demand_path)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.StartedAt.UnixNano(), t.Kind, int64(t.Seed), int64(t.Stream), t.Selected, t.TotalDemand, t.TSTT, vc, t.DemandPath)
	if err != nil {
		return 0, fmt.Errorf("ledger: insert trial: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("ledger: trial id: %w", err)
	}
	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("ledger: commit: %w", err)
	}
	return id, nil
}

// List returns trials in insertion order, optionally filtered by kind
// ("" means all). limit ≤ 0 means no limit.
func (l *Ledger) List(ctx context.Context, kind string, limit int) ([]Trial, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.db == nil {
		return nil, ErrClosed
	}
	if limit <= 0 {
		limit = -1
	}
	rows, err := l.db.QueryContext(ctx,
		`SELECT id, started_at, kind, seed, stream, selected, total_demand, tstt, weighted_vc, demand_path
		 FROM trials WHERE (? = '' OR kind = ?) ORDER BY id LIMIT ?`, kind, kind, limit)
	if err != nil {
		return nil, fmt.Errorf("ledger: select trials: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []Trial
	for rows.Next() {
		var (
			t       Trial
			started int64
			seed    int64
			stream  int64
			vc      sql.NullFloat64
		)
		if err := rows.Scan(&t.ID, &started, &t.Kind, &seed, &stream, &t.Selected, &t.TotalDemand, &t.TSTT, &vc, &t.DemandPath); err != nil {
			return nil, fmt.Errorf("ledger: scan: %w", err)
		}
		t.StartedAt = time.Unix(0, started)
		t.Seed = uint64(seed)
		t.Stream = uint64(stream)
		t.WeightedVC = math.NaN()
		if vc.Valid {
			t.WeightedVC = vc.Float64
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ledger: rows: %w", err)
	}
	return out, nil
}

// Close releases the database. Further calls return ErrClosed.
func (l *Ledger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.db == nil {
		return nil
	}
	err := l.db.Close()
	l.db = nil
	return err
}
