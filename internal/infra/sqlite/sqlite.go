// Package sqlite implements the Run Store (SPEC_FULL §4.10) against a
// pure-Go SQLite driver, persisting completed engine runs and their
// statistics.
package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/mansurdincer/loomsched/internal/domain"
)

// DB wraps a SQLite connection and implements domain.RunStore.
type DB struct {
	db *sql.DB
}

// Open connects to the SQLite database at path (use ":memory:" for an
// ephemeral store) and applies migrations.
func Open(path string) (*DB, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	conn.SetMaxOpenConns(1) // modernc.org/sqlite serializes writers anyway

	db := &DB{db: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return db, nil
}

// Close releases the underlying connection.
func (db *DB) Close() error {
	return db.db.Close()
}

// migrations returns the schema migration statements, executed in order
// and safe to re-run (§9 "idempotent migrations").
func migrations() []string {
	return []string{
		`CREATE TABLE IF NOT EXISTS runs (
			run_id       TEXT PRIMARY KEY,
			created_at   TEXT NOT NULL,
			config_json  TEXT NOT NULL,
			schedules_json TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_created ON runs(created_at)`,

		`CREATE TABLE IF NOT EXISTS generation_stats (
			run_id       TEXT NOT NULL,
			generation   INTEGER NOT NULL,
			best         REAL NOT NULL,
			avg          REAL NOT NULL,
			wall_seconds REAL NOT NULL,
			PRIMARY KEY (run_id, generation)
		)`,

		`CREATE TABLE IF NOT EXISTS setup_tallies (
			run_id  TEXT PRIMARY KEY,
			variant INTEGER NOT NULL DEFAULT 0,
			ulak    INTEGER NOT NULL DEFAULT 0,
			team    INTEGER NOT NULL DEFAULT 0
		)`,

		`CREATE TABLE IF NOT EXISTS machine_loads (
			run_id      TEXT NOT NULL,
			machine_id  INTEGER NOT NULL,
			total_hours REAL NOT NULL,
			item_count  INTEGER NOT NULL,
			setup_count INTEGER NOT NULL,
			PRIMARY KEY (run_id, machine_id)
		)`,
	}
}

func (db *DB) migrate() error {
	for _, stmt := range migrations() {
		if _, err := db.db.Exec(stmt); err != nil {
			return fmt.Errorf("exec migration: %w", err)
		}
	}
	return nil
}

// SaveRun persists a completed run and all of its statistics inside a
// single transaction.
func (db *DB) SaveRun(run domain.RunResult) error {
	configJSON, err := json.Marshal(run.Config)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	schedulesJSON, err := json.Marshal(run.Schedules)
	if err != nil {
		return fmt.Errorf("marshal schedules: %w", err)
	}

	tx, err := db.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO runs (run_id, created_at, config_json, schedules_json)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(run_id) DO UPDATE SET
			created_at     = excluded.created_at,
			config_json    = excluded.config_json,
			schedules_json = excluded.schedules_json
	`, run.RunID, run.CreatedAt.UTC().Format(time.RFC3339), string(configJSON), string(schedulesJSON))
	if err != nil {
		return fmt.Errorf("upsert run: %w", err)
	}

	for _, g := range run.Stats.Generations {
		_, err = tx.Exec(`
			INSERT INTO generation_stats (run_id, generation, best, avg, wall_seconds)
			VALUES (?, ?, ?, ?, ?)
			ON CONFLICT(run_id, generation) DO UPDATE SET
				best = excluded.best, avg = excluded.avg, wall_seconds = excluded.wall_seconds
		`, run.RunID, g.Generation, g.Best, g.Avg, g.WallSeconds)
		if err != nil {
			return fmt.Errorf("upsert generation stat: %w", err)
		}
	}

	tally := run.Stats.TypeChanges
	_, err = tx.Exec(`
		INSERT INTO setup_tallies (run_id, variant, ulak, team)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(run_id) DO UPDATE SET variant = excluded.variant, ulak = excluded.ulak, team = excluded.team
	`, run.RunID, tally.Variant, tally.Ulak, tally.Team)
	if err != nil {
		return fmt.Errorf("upsert setup tally: %w", err)
	}

	for _, l := range run.Stats.MachineLoads {
		_, err = tx.Exec(`
			INSERT INTO machine_loads (run_id, machine_id, total_hours, item_count, setup_count)
			VALUES (?, ?, ?, ?, ?)
			ON CONFLICT(run_id, machine_id) DO UPDATE SET
				total_hours = excluded.total_hours, item_count = excluded.item_count, setup_count = excluded.setup_count
		`, run.RunID, l.MachineID, l.TotalHours, l.ItemCount, l.SetupCount)
		if err != nil {
			return fmt.Errorf("upsert machine load: %w", err)
		}
	}

	return tx.Commit()
}

// LatestRun returns the most recently created run, or nil if the store
// is empty.
func (db *DB) LatestRun() (*domain.RunResult, error) {
	var runID string
	err := db.db.QueryRow(`SELECT run_id FROM runs ORDER BY created_at DESC LIMIT 1`).Scan(&runID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query latest run: %w", err)
	}
	return db.GetRun(runID)
}

// GetRun loads one run and its statistics by ID.
func (db *DB) GetRun(runID string) (*domain.RunResult, error) {
	var createdAtStr, configJSON, schedulesJSON string
	err := db.db.QueryRow(`
		SELECT created_at, config_json, schedules_json FROM runs WHERE run_id = ?
	`, runID).Scan(&createdAtStr, &configJSON, &schedulesJSON)
	if err == sql.ErrNoRows {
		return nil, domain.ErrUnknownRun
	}
	if err != nil {
		return nil, fmt.Errorf("query run: %w", err)
	}

	run := &domain.RunResult{RunID: runID}
	run.CreatedAt, err = time.Parse(time.RFC3339, createdAtStr)
	if err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	if err := json.Unmarshal([]byte(configJSON), &run.Config); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := json.Unmarshal([]byte(schedulesJSON), &run.Schedules); err != nil {
		return nil, fmt.Errorf("unmarshal schedules: %w", err)
	}

	rows, err := db.db.Query(`
		SELECT generation, best, avg, wall_seconds FROM generation_stats
		WHERE run_id = ? ORDER BY generation
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query generation stats: %w", err)
	}
	for rows.Next() {
		var g domain.GenerationStat
		if err := rows.Scan(&g.Generation, &g.Best, &g.Avg, &g.WallSeconds); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan generation stat: %w", err)
		}
		run.Stats.Generations = append(run.Stats.Generations, g)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	err = db.db.QueryRow(`
		SELECT variant, ulak, team FROM setup_tallies WHERE run_id = ?
	`, runID).Scan(&run.Stats.TypeChanges.Variant, &run.Stats.TypeChanges.Ulak, &run.Stats.TypeChanges.Team)
	if err != nil && err != sql.ErrNoRows {
		return nil, fmt.Errorf("query setup tally: %w", err)
	}

	loadRows, err := db.db.Query(`
		SELECT machine_id, total_hours, item_count, setup_count FROM machine_loads
		WHERE run_id = ? ORDER BY machine_id
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query machine loads: %w", err)
	}
	defer loadRows.Close()
	for loadRows.Next() {
		var l domain.MachineLoad
		if err := loadRows.Scan(&l.MachineID, &l.TotalHours, &l.ItemCount, &l.SetupCount); err != nil {
			return nil, fmt.Errorf("scan machine load: %w", err)
		}
		run.Stats.MachineLoads = append(run.Stats.MachineLoads, l)
	}
	if err := loadRows.Err(); err != nil {
		return nil, err
	}

	return run, nil
}
