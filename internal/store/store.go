// Package store persists demux results to a local SQLite database so runs
// can be compared across lots.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/dkoosis/ptrmux/pkg/demux"
)

// Store writes runs and their measurements.
type Store struct {
	db   *sql.DB
	path string
}

// Run is one persisted demux pass.
type Run struct {
	ID        string
	Source    string
	Policy    string
	CreatedAt time.Time
	Events    int
	Coords    int
	Values    int
	Halted    bool
}

// Measurement is one (test, coordinate, value) row.
type Measurement struct {
	Test  string
	X, Y  int
	Value float64
}

// Open creates or opens the database at path, creating parent directories.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create store directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}

	s := &Store{db: db, path: path}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return s, nil
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

func (s *Store) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		source TEXT NOT NULL,
		policy TEXT NOT NULL,
		created_at TEXT NOT NULL,
		events INTEGER NOT NULL,
		coords INTEGER NOT NULL,
		halted INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS measurements (
		run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
		test TEXT NOT NULL,
		x INTEGER NOT NULL,
		y INTEGER NOT NULL,
		value REAL,
		PRIMARY KEY (run_id, test, x, y)
	);

	CREATE INDEX IF NOT EXISTS idx_runs_source ON runs(source);
	CREATE INDEX IF NOT EXISTS idx_measurements_test ON measurements(test);
	`
	_, err := s.db.Exec(schema)
	return err
}

// SaveRun stores res under a new run ID and returns the ID. The whole run is
// written in one transaction.
func (s *Store) SaveRun(ctx context.Context, source string, policy demux.Policy, res demux.Result) (string, error) {
	id := uuid.New().String()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (id, source, policy, created_at, events, coords, halted) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, source, string(policy), time.Now().UTC().Format(time.RFC3339), res.Events, res.Coords, res.Stats.Halted,
	)
	if err != nil {
		return "", fmt.Errorf("insert run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO measurements (run_id, test, x, y, value) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return "", fmt.Errorf("prepare: %w", err)
	}
	defer stmt.Close()

	for _, name := range res.Table.Names() {
		for c, v := range res.Table[name] {
			if _, err := stmt.ExecContext(ctx, id, name, c.X, c.Y, v); err != nil {
				return "", fmt.Errorf("insert measurement %s (%d,%d): %w", name, c.X, c.Y, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit: %w", err)
	}
	return id, nil
}

// Runs lists stored runs, newest first.
func (s *Store) Runs(ctx context.Context) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT r.id, r.source, r.policy, r.created_at, r.events, r.coords, r.halted,
			(SELECT COUNT(*) FROM measurements m WHERE m.run_id = r.id)
		FROM runs r
		ORDER BY r.created_at DESC, r.rowid DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var created string
		if err := rows.Scan(&r.ID, &r.Source, &r.Policy, &created, &r.Events, &r.Coords, &r.Halted, &r.Values); err != nil {
			return nil, err
		}
		r.CreatedAt, _ = time.Parse(time.RFC3339, created)
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// Measurements returns a run's rows ordered by test, then (Y, X).
func (s *Store) Measurements(ctx context.Context, runID string) ([]Measurement, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT test, x, y, value FROM measurements WHERE run_id = ? ORDER BY test, y, x`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Measurement
	for rows.Next() {
		var m Measurement
		var v sql.NullFloat64
		if err := rows.Scan(&m.Test, &m.X, &m.Y, &v); err != nil {
			return nil, err
		}
		// SQLite has no NaN; the driver stores it as NULL.
		m.Value = math.NaN()
		if v.Valid {
			m.Value = v.Float64
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// Table rebuilds a run's measurement table.
func (s *Store) Table(ctx context.Context, runID string) (demux.Table, error) {
	ms, err := s.Measurements(ctx, runID)
	if err != nil {
		return nil, err
	}
	t := demux.NewTable()
	for _, m := range ms {
		t.Set(m.Test, demux.Coord{X: m.X, Y: m.Y}, m.Value)
	}
	return t, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}
