// Package db persists labeled segmentation runs in a local sqlite database.
// Persistence is a boundary concern: the segmentation core never touches
// this package.
package db

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/banshee-data/cycle.report/internal/phase"
)

// DB wraps the sqlite handle for labeled-run storage.
type DB struct {
	*sql.DB
}

// Open opens (or creates) the sqlite database at path and brings the
// schema up to date.
func Open(path string) (*DB, error) {
	sqlDB, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db := &DB{sqlDB}
	if err := db.MigrateUp(); err != nil {
		sqlDB.Close()
		return nil, err
	}
	return db, nil
}

// Run is one stored segmentation run.
type Run struct {
	RunID           string
	Source          string
	CreatedAt       time.Time
	Samples         int
	DurationSeconds float64
	SmoothingWindow int
	SmoothingOrder  int
	PhaseCounts     map[phase.Phase]int
}

// RecordRun stores the run summary and every labeled sample in one
// transaction. A failed insert leaves no partial run behind.
func (db *DB) RecordRun(run Run, lt *phase.LabeledTrace) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO runs (
			run_id, source, created_at, samples, duration_seconds,
			smoothing_window, smoothing_order,
			idle_count, washing_count, rinse_count, spin_count
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.RunID, run.Source, run.CreatedAt.UTC(), run.Samples, run.DurationSeconds,
		run.SmoothingWindow, run.SmoothingOrder,
		run.PhaseCounts[phase.PhaseIdle], run.PhaseCounts[phase.PhaseWashing],
		run.PhaseCounts[phase.PhaseRinse], run.PhaseCounts[phase.PhaseSpin],
	)
	if err != nil {
		return fmt.Errorf("failed to insert run %s: %w", run.RunID, err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO labeled_samples (run_id, idx, time_seconds, power, power_smooth, phase)
		VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare sample insert: %w", err)
	}
	defer stmt.Close()

	for i := 0; i < lt.Len(); i++ {
		_, err = stmt.Exec(run.RunID, i,
			lt.Samples[i].TimeSeconds, lt.Samples[i].Power,
			lt.Smoothed[i], string(lt.Phases[i]))
		if err != nil {
			return fmt.Errorf("failed to insert sample %d: %w", i, err)
		}
	}

	return tx.Commit()
}

// ListRuns returns all stored runs, newest first.
func (db *DB) ListRuns() ([]Run, error) {
	rows, err := db.Query(`
		SELECT run_id, source, created_at, samples, duration_seconds,
		       smoothing_window, smoothing_order,
		       idle_count, washing_count, rinse_count, spin_count
		FROM runs ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var run Run
		var idle, washing, rinse, spin int
		err := rows.Scan(&run.RunID, &run.Source, &run.CreatedAt,
			&run.Samples, &run.DurationSeconds,
			&run.SmoothingWindow, &run.SmoothingOrder,
			&idle, &washing, &rinse, &spin)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		run.PhaseCounts = map[phase.Phase]int{
			phase.PhaseIdle:    idle,
			phase.PhaseWashing: washing,
			phase.PhaseRinse:   rinse,
			phase.PhaseSpin:    spin,
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// RunPhases returns the stored phase sequence of one run in sample order.
func (db *DB) RunPhases(runID string) ([]phase.Phase, error) {
	rows, err := db.Query(`
		SELECT phase FROM labeled_samples WHERE run_id = ? ORDER BY idx`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query samples for run %s: %w", runID, err)
	}
	defer rows.Close()

	var phases []phase.Phase
	for rows.Next() {
		var label string
		if err := rows.Scan(&label); err != nil {
			return nil, fmt.Errorf("failed to scan sample: %w", err)
		}
		phases = append(phases, phase.Phase(label))
	}
	return phases, rows.Err()
}
