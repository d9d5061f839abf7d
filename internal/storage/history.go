package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/MPA2620/DSML-Final-Project/internal/experiment"
)

const historySchema = `
CREATE TABLE IF NOT EXISTS results (
	id              INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id          TEXT NOT NULL,
	recorded_at     TEXT NOT NULL,
	seed            INTEGER NOT NULL,
	graph_size      INTEGER NOT NULL,
	solver          TEXT NOT NULL,
	cut_value       REAL NOT NULL,
	cut_weight      REAL NOT NULL,
	elapsed_seconds REAL NOT NULL,
	error           TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_results_size_solver ON results(graph_size, solver);
`

// History keeps every comparison row ever recorded so that runs can be
// compared across invocations.
type History struct {
	db *sql.DB
}

// HistoryRow is one stored result.
type HistoryRow struct {
	RunID          string
	RecordedAt     time.Time
	Seed           int64
	GraphSize      int
	Solver         string
	CutValue       float64
	CutWeight      float64
	ElapsedSeconds float64
	Error          string
}

// OpenHistory opens or creates the database at path. ":memory:" works for tests.
func OpenHistory(ctx context.Context, path string) (*History, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, historySchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize history schema: %w", err)
	}
	return &History{db: db}, nil
}

func (h *History) Close() error {
	return h.db.Close()
}

// Record stores rows under runID in a single transaction.
func (h *History) Record(ctx context.Context, runID string, seed int64, rows []experiment.Row) error {
	tx, err := h.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO results (run_id, recorded_at, seed, graph_size, solver, cut_value, cut_weight, elapsed_seconds, error)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	now := time.Now().UTC().Format(time.RFC3339Nano)
	for _, r := range rows {
		if _, err := stmt.ExecContext(ctx, runID, now, seed, r.GraphSize, r.Solver,
			r.CutValue, r.CutWeight, r.ElapsedSeconds, r.ErrString()); err != nil {
			return fmt.Errorf("record %s/%d: %w", r.Solver, r.GraphSize, err)
		}
	}
	return tx.Commit()
}

// Rows returns stored results, newest first. An empty solver matches all.
func (h *History) Rows(ctx context.Context, solver string, limit int) ([]HistoryRow, error) {
	query := `SELECT run_id, recorded_at, seed, graph_size, solver, cut_value, cut_weight, elapsed_seconds, error
		FROM results WHERE (? = '' OR solver = ?) ORDER BY id DESC`
	args := []any{solver, solver}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := h.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []HistoryRow
	for rows.Next() {
		r, err := scanHistoryRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Best returns the highest successful cut ever recorded for a solver on
// graphs of the given size.
func (h *History) Best(ctx context.Context, solver string, graphSize int) (*HistoryRow, error) {
	row := h.db.QueryRowContext(ctx, `
		SELECT run_id, recorded_at, seed, graph_size, solver, cut_value, cut_weight, elapsed_seconds, error
		FROM results WHERE solver = ? AND graph_size = ? AND error = ''
		ORDER BY cut_value DESC, id ASC LIMIT 1`, solver, graphSize)

	r, err := scanHistoryRow(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanHistoryRow(s scanner) (HistoryRow, error) {
	var r HistoryRow
	var recorded string
	if err := s.Scan(&r.RunID, &recorded, &r.Seed, &r.GraphSize, &r.Solver,
		&r.CutValue, &r.CutWeight, &r.ElapsedSeconds, &r.Error); err != nil {
		return r, err
	}
	t, err := time.Parse(time.RFC3339Nano, recorded)
	if err != nil {
		return r, fmt.Errorf("parse recorded_at %q: %w", recorded, err)
	}
	r.RecordedAt = t
	return r, nil
}
