// Package store handles SQLite persistence of comparison runs.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fromsuu/plant-quarantine-sampling-analysis/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// Store wraps SQLite access for run history.
type Store struct {
	db *sql.DB
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id INTEGER PRIMARY KEY,
			run_at TEXT NOT NULL,
			groups_count INTEGER NOT NULL,
			iterations INTEGER NOT NULL,
			samples_per_trial INTEGER NOT NULL,
			seed INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS run_results (
			run_id INTEGER NOT NULL,
			strategy TEXT NOT NULL,
			position INTEGER NOT NULL,
			rank INTEGER NOT NULL,
			avg_uniformity REAL NOT NULL,
			result_stability REAL NOT NULL,
			chi_square REAL NOT NULL,
			uniform INTEGER NOT NULL,
			duration_ms INTEGER NOT NULL,
			PRIMARY KEY (run_id, strategy)
		);`,
		`CREATE TABLE IF NOT EXISTS run_trials (
			run_id INTEGER NOT NULL,
			strategy TEXT NOT NULL,
			trial INTEGER NOT NULL,
			deviation REAL NOT NULL,
			PRIMARY KEY (run_id, strategy, trial)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_runs_run_at ON runs(run_at);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// InsertRun stores a completed comparison run with its per-strategy results
// and per-trial deviations.
func (s *Store) InsertRun(ctx context.Context, cfg model.RunConfig, result model.ComparisonResult) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO runs (run_at, groups_count, iterations, samples_per_trial, seed)
		 VALUES (?, ?, ?, ?, ?)`,
		result.RunAt.Format(time.RFC3339Nano),
		cfg.Groups,
		result.Iterations,
		cfg.SamplesPerTrial,
		cfg.Seed,
	)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}

	ranks := make(map[string]int, len(result.Ranked))
	for i, r := range result.Ranked {
		ranks[r.Strategy] = i + 1
	}

	resultStmt, err := tx.PrepareContext(ctx,
		`INSERT INTO run_results (run_id, strategy, position, rank, avg_uniformity, result_stability, chi_square, uniform, duration_ms)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, err
	}
	defer func() {
		if cerr := resultStmt.Close(); cerr != nil {
			// Best-effort statement close.
			_ = cerr
		}
	}()
	trialStmt, err := tx.PrepareContext(ctx,
		`INSERT INTO run_trials (run_id, strategy, trial, deviation)
		 VALUES (?, ?, ?, ?)`)
	if err != nil {
		return 0, err
	}
	defer func() {
		if cerr := trialStmt.Close(); cerr != nil {
			// Best-effort statement close.
			_ = cerr
		}
	}()

	for pos, r := range result.Results {
		uniform := 0
		if r.Uniform {
			uniform = 1
		}
		if _, err = resultStmt.ExecContext(ctx, id, r.Strategy, pos, ranks[r.Strategy],
			r.AverageUniformity, r.ResultStability, r.ChiSquare, uniform,
			r.Duration.Milliseconds()); err != nil {
			return 0, err
		}
		for trial, dev := range r.TrialDeviations {
			if _, err = trialStmt.ExecContext(ctx, id, r.Strategy, trial+1, dev); err != nil {
				return 0, err
			}
		}
	}

	if err = tx.Commit(); err != nil {
		return 0, err
	}
	return id, nil
}

// ListRuns returns the most recent runs, newest first.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]model.RunSummary, error) {
	if limit <= 0 {
		limit = -1 // SQLite: no limit
	}
	query := `SELECT r.id, r.run_at, r.groups_count, r.iterations, r.samples_per_trial,
			COALESCE((SELECT strategy FROM run_results WHERE run_id = r.id AND rank = 1), '')
		FROM runs r
		ORDER BY r.run_at DESC
		LIMIT ?`
	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var runs []model.RunSummary
	for rows.Next() {
		var run model.RunSummary
		var runAt string
		if err := rows.Scan(&run.RunID, &runAt, &run.Groups, &run.Iterations, &run.SamplesPerTrial, &run.Winner); err != nil {
			return nil, err
		}
		parsed, err := time.Parse(time.RFC3339Nano, runAt)
		if err != nil {
			return nil, err
		}
		run.RunAt = parsed
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return runs, nil
}

// GetRun loads one run with all results and trial deviations. id 0 selects
// the most recent run.
func (s *Store) GetRun(ctx context.Context, id int64) (model.StoredRun, error) {
	if id == 0 {
		row := s.db.QueryRowContext(ctx, `SELECT id FROM runs ORDER BY run_at DESC LIMIT 1`)
		if err := row.Scan(&id); err != nil {
			if err == sql.ErrNoRows {
				return model.StoredRun{}, fmt.Errorf("no stored runs")
			}
			return model.StoredRun{}, err
		}
	}

	var run model.StoredRun
	var runAt string
	row := s.db.QueryRowContext(ctx,
		`SELECT id, run_at, groups_count, iterations, samples_per_trial, seed FROM runs WHERE id = ?`, id)
	if err := row.Scan(&run.RunID, &runAt, &run.Config.Groups, &run.Config.Iterations,
		&run.Config.SamplesPerTrial, &run.Config.Seed); err != nil {
		if err == sql.ErrNoRows {
			return model.StoredRun{}, fmt.Errorf("run %d not found", id)
		}
		return model.StoredRun{}, err
	}
	parsed, err := time.Parse(time.RFC3339Nano, runAt)
	if err != nil {
		return model.StoredRun{}, err
	}
	run.Result.RunAt = parsed
	run.Result.Iterations = run.Config.Iterations

	results, ranked, err := s.loadResults(ctx, id)
	if err != nil {
		return model.StoredRun{}, err
	}
	run.Result.Results = results
	run.Result.Ranked = ranked
	return run, nil
}

func (s *Store) loadResults(ctx context.Context, runID int64) (results, ranked []model.AnalysisResult, err error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT strategy, position, rank, avg_uniformity, result_stability, chi_square, uniform, duration_ms
		 FROM run_results WHERE run_id = ? ORDER BY position ASC`, runID)
	if err != nil {
		return nil, nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	type positioned struct {
		result model.AnalysisResult
		rank   int
	}
	var loaded []positioned
	for rows.Next() {
		var p positioned
		var position, uniform int
		var durationMs int64
		if err := rows.Scan(&p.result.Strategy, &position, &p.rank,
			&p.result.AverageUniformity, &p.result.ResultStability,
			&p.result.ChiSquare, &uniform, &durationMs); err != nil {
			return nil, nil, err
		}
		p.result.Uniform = uniform != 0
		p.result.Duration = time.Duration(durationMs) * time.Millisecond
		loaded = append(loaded, p)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, err
	}

	for i := range loaded {
		devs, err := s.loadTrials(ctx, runID, loaded[i].result.Strategy)
		if err != nil {
			return nil, nil, err
		}
		loaded[i].result.TrialDeviations = devs
	}

	results = make([]model.AnalysisResult, len(loaded))
	ranked = make([]model.AnalysisResult, len(loaded))
	for i, p := range loaded {
		results[i] = p.result
		if p.rank >= 1 && p.rank <= len(loaded) {
			ranked[p.rank-1] = p.result
		}
	}
	return results, ranked, nil
}

func (s *Store) loadTrials(ctx context.Context, runID int64, strategy string) ([]float64, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT deviation FROM run_trials WHERE run_id = ? AND strategy = ? ORDER BY trial ASC`,
		runID, strategy)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var devs []float64
	for rows.Next() {
		var dev float64
		if err := rows.Scan(&dev); err != nil {
			return nil, err
		}
		devs = append(devs, dev)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return devs, nil
}
