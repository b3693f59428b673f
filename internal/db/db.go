// Package db persists discharge runs in SQLite: one row per run with its
// site metadata, per-quantile discharge values, and the per-point flux
// profile behind them. NaN values are stored as NULL and surfaced as NaN on
// the way back out.
package db

import (
	"database/sql"
	"fmt"
	"math"
	"time"

	_ "modernc.org/sqlite"
)

type DB struct {
	*sql.DB
}

// NewDB opens (or creates) the results database at path and ensures the
// base schema exists. Use ":memory:" for an ephemeral store in tests.
func NewDB(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS runs (
			run_id            TEXT PRIMARY KEY,
			site              TEXT,
			angle_mode        TEXT,
			h_a               DOUBLE,
			v_corr            DOUBLE,
			num_points        BIGINT,
			num_timesteps     BIGINT,
			created_at        TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		);
		CREATE TABLE IF NOT EXISTS discharges (
			run_id            TEXT,
			quantile          DOUBLE,
			flow              DOUBLE,
			flow_nofill       DOUBLE,
			FOREIGN KEY(run_id) REFERENCES runs(run_id)
		);
		CREATE TABLE IF NOT EXISTS point_flux (
			run_id            TEXT,
			quantile          DOUBLE,
			point_idx         BIGINT,
			s                 DOUBLE,
			v_eff             DOUBLE,
			q                 DOUBLE,
			q_nofill          DOUBLE,
			FOREIGN KEY(run_id) REFERENCES runs(run_id)
		);
	`)
	if err != nil {
		return nil, err
	}

	return &DB{db}, nil
}

// DischargeRun is the metadata row for one pipeline execution.
type DischargeRun struct {
	RunID        string    `json:"run_id"`
	Site         string    `json:"site"`
	AngleMode    string    `json:"angle_mode"`
	HA           float64   `json:"h_a"`
	VCorr        float64   `json:"v_corr"`
	NumPoints    int       `json:"num_points"`
	NumTimesteps int       `json:"num_timesteps"`
	CreatedAt    time.Time `json:"created_at"`
}

// Discharge is one per-quantile result of a run, in m3/s.
type Discharge struct {
	RunID      string  `json:"run_id"`
	Quantile   float64 `json:"quantile"`
	Flow       float64 `json:"flow"`
	FlowNoFill float64 `json:"flow_nofill"`
}

// PointFlux is the per-point breakdown behind a discharge value. NaN fields
// mark points the pipeline could not resolve.
type PointFlux struct {
	RunID    string  `json:"run_id"`
	Quantile float64 `json:"quantile"`
	PointIdx int     `json:"point_idx"`
	S        float64 `json:"s"`
	VEff     float64 `json:"v_eff"`
	Q        float64 `json:"q"`
	QNoFill  float64 `json:"q_nofill"`
}

// RecordRun inserts the run metadata row.
func (db *DB) RecordRun(run *DischargeRun) error {
	_, err := db.Exec(`
		INSERT INTO runs (run_id, site, angle_mode, h_a, v_corr, num_points, num_timesteps)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, run.RunID, run.Site, run.AngleMode, run.HA, run.VCorr, run.NumPoints, run.NumTimesteps)
	if err != nil {
		return fmt.Errorf("failed to record run: %w", err)
	}
	return nil
}

// RecordDischarges inserts the per-quantile discharge rows of a run.
func (db *DB) RecordDischarges(discharges []Discharge) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`INSERT INTO discharges (run_id, quantile, flow, flow_nofill) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare discharge insert: %w", err)
	}
	defer stmt.Close()

	for _, d := range discharges {
		if _, err := stmt.Exec(d.RunID, d.Quantile, nullFloat(d.Flow), nullFloat(d.FlowNoFill)); err != nil {
			return fmt.Errorf("failed to record discharge: %w", err)
		}
	}
	return tx.Commit()
}

// RecordPointFlux inserts the per-point flux rows of a run.
func (db *DB) RecordPointFlux(flux []PointFlux) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO point_flux (run_id, quantile, point_idx, s, v_eff, q, q_nofill)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare point flux insert: %w", err)
	}
	defer stmt.Close()

	for _, p := range flux {
		_, err := stmt.Exec(p.RunID, p.Quantile, p.PointIdx,
			nullFloat(p.S), nullFloat(p.VEff), nullFloat(p.Q), nullFloat(p.QNoFill))
		if err != nil {
			return fmt.Errorf("failed to record point flux: %w", err)
		}
	}
	return tx.Commit()
}

// GetRun retrieves a run's metadata by ID.
func (db *DB) GetRun(runID string) (*DischargeRun, error) {
	var run DischargeRun
	err := db.QueryRow(`
		SELECT run_id, site, angle_mode, h_a, v_corr, num_points, num_timesteps, created_at
		FROM runs WHERE run_id = ?
	`, runID).Scan(&run.RunID, &run.Site, &run.AngleMode, &run.HA, &run.VCorr,
		&run.NumPoints, &run.NumTimesteps, &run.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("run %s not found", runID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	return &run, nil
}

// ListRuns returns run metadata for a site, newest first. An empty site
// lists every run.
func (db *DB) ListRuns(site string, limit int) ([]DischargeRun, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `
		SELECT run_id, site, angle_mode, h_a, v_corr, num_points, num_timesteps, created_at
		FROM runs
	`
	args := []interface{}{}
	if site != "" {
		query += ` WHERE site = ?`
		args = append(args, site)
	}
	query += ` ORDER BY created_at DESC LIMIT ?`
	args = append(args, limit)

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []DischargeRun
	for rows.Next() {
		var run DischargeRun
		if err := rows.Scan(&run.RunID, &run.Site, &run.AngleMode, &run.HA, &run.VCorr,
			&run.NumPoints, &run.NumTimesteps, &run.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// GetDischarges returns the per-quantile results of a run in ascending
// quantile order.
func (db *DB) GetDischarges(runID string) ([]Discharge, error) {
	rows, err := db.Query(`
		SELECT run_id, quantile, flow, flow_nofill
		FROM discharges WHERE run_id = ? ORDER BY quantile
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to get discharges: %w", err)
	}
	defer rows.Close()

	var out []Discharge
	for rows.Next() {
		var d Discharge
		var flow, flowNoFill sql.NullFloat64
		if err := rows.Scan(&d.RunID, &d.Quantile, &flow, &flowNoFill); err != nil {
			return nil, fmt.Errorf("failed to scan discharge: %w", err)
		}
		d.Flow = floatOrNaN(flow)
		d.FlowNoFill = floatOrNaN(flowNoFill)
		out = append(out, d)
	}
	return out, rows.Err()
}

// GetPointFlux returns the per-point breakdown of a run at one quantile, in
// point order.
func (db *DB) GetPointFlux(runID string, quantile float64) ([]PointFlux, error) {
	rows, err := db.Query(`
		SELECT run_id, quantile, point_idx, s, v_eff, q, q_nofill
		FROM point_flux WHERE run_id = ? AND quantile = ? ORDER BY point_idx
	`, runID, quantile)
	if err != nil {
		return nil, fmt.Errorf("failed to get point flux: %w", err)
	}
	defer rows.Close()

	var out []PointFlux
	for rows.Next() {
		var p PointFlux
		var s, vEff, q, qNoFill sql.NullFloat64
		if err := rows.Scan(&p.RunID, &p.Quantile, &p.PointIdx, &s, &vEff, &q, &qNoFill); err != nil {
			return nil, fmt.Errorf("failed to scan point flux: %w", err)
		}
		p.S = floatOrNaN(s)
		p.VEff = floatOrNaN(vEff)
		p.Q = floatOrNaN(q)
		p.QNoFill = floatOrNaN(qNoFill)
		out = append(out, p)
	}
	return out, rows.Err()
}

func nullFloat(v float64) sql.NullFloat64 {
	if math.IsNaN(v) {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: v, Valid: true}
}

func floatOrNaN(v sql.NullFloat64) float64 {
	if !v.Valid {
		return math.NaN()
	}
	return v.Float64
}
