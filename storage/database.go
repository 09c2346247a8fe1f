// Package storage provides data persistence using SQLite for the
// dashboard snapshot tool. It keeps a history of capture runs so
// repeated snapshots of the same dashboard can be audited later.
package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/sazid/dashsnap/logger"
	_ "modernc.org/sqlite"
)

// Database wraps SQLite database operations
type Database struct {
	db     *sql.DB
	logger *logger.Logger
}

// CaptureRun represents one recorded capture run
type CaptureRun struct {
	ID             int64     `json:"id"`
	URL            string    `json:"url"`
	OutputPath     string    `json:"output_path"`
	LoginPerformed bool      `json:"login_performed"`
	Status         string    `json:"status"` // success, failure
	Error          string    `json:"error,omitempty"`
	StartedAt      time.Time `json:"started_at"`
	DurationMS     int64     `json:"duration_ms"`
}

// DailyStats tracks capture activity for a single day
type DailyStats struct {
	Date      string `json:"date"`
	Runs      int    `json:"runs"`
	Successes int    `json:"successes"`
	Failures  int    `json:"failures"`
}

// NewDatabase creates a new database connection
func NewDatabase(dbPath string, log *logger.Logger) (*Database, error) {
	// Ensure directory exists
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	database := &Database{
		db:     db,
		logger: log.WithModule("storage"),
	}

	// Initialize schema
	if err := database.initSchema(); err != nil {
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	database.logger.Info("Database initialized successfully")
	return database, nil
}

// initSchema creates the database tables if they don't exist
func (d *Database) initSchema() error {
	schema := `
	-- Capture runs table
	CREATE TABLE IF NOT EXISTS capture_runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		url TEXT NOT NULL,
		output_path TEXT NOT NULL,
		login_performed BOOLEAN DEFAULT 0,
		status TEXT NOT NULL,
		error TEXT,
		started_at DATETIME NOT NULL,
		duration_ms INTEGER DEFAULT 0
	);

	-- Create indexes
	CREATE INDEX IF NOT EXISTS idx_capture_runs_started_at ON capture_runs(started_at);
	CREATE INDEX IF NOT EXISTS idx_capture_runs_status ON capture_runs(status);
	`

	_, err := d.db.Exec(schema)
	return err
}

// Close closes the database connection
func (d *Database) Close() error {
	return d.db.Close()
}

// RecordRun saves a capture run record
func (d *Database) RecordRun(run *CaptureRun) (int64, error) {
	query := `
		INSERT INTO capture_runs (url, output_path, login_performed, status, error, started_at, duration_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	result, err := d.db.Exec(query,
		run.URL, run.OutputPath, run.LoginPerformed, run.Status, run.Error,
		run.StartedAt, run.DurationMS,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to record capture run: %w", err)
	}

	id, _ := result.LastInsertId()
	d.logger.WithFields(map[string]interface{}{
		"url":    run.URL,
		"status": run.Status,
	}).Debug("Capture run recorded")

	return id, nil
}

// RecentRuns retrieves the most recent capture runs, newest first
func (d *Database) RecentRuns(limit int) ([]*CaptureRun, error) {
	query := `
		SELECT id, url, output_path, login_performed, status, COALESCE(error, ''), started_at, duration_ms
		FROM capture_runs ORDER BY started_at DESC, id DESC LIMIT ?
	`

	rows, err := d.db.Query(query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []*CaptureRun
	for rows.Next() {
		run := &CaptureRun{}
		err := rows.Scan(
			&run.ID, &run.URL, &run.OutputPath, &run.LoginPerformed,
			&run.Status, &run.Error, &run.StartedAt, &run.DurationMS,
		)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}

	return runs, rows.Err()
}

// LastRun retrieves the most recent capture run, or nil if none exist
func (d *Database) LastRun() (*CaptureRun, error) {
	runs, err := d.RecentRuns(1)
	if err != nil {
		return nil, err
	}
	if len(runs) == 0 {
		return nil, nil
	}
	return runs[0], nil
}

// GetTodayStats returns capture statistics for today
func (d *Database) GetTodayStats() (*DailyStats, error) {
	today := time.Now().Format("2006-01-02")

	query := `
		SELECT
			COUNT(*),
			COALESCE(SUM(CASE WHEN status = 'success' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN status = 'failure' THEN 1 ELSE 0 END), 0)
		FROM capture_runs
		WHERE DATE(started_at) = DATE('now')
	`

	stats := &DailyStats{Date: today}
	err := d.db.QueryRow(query).Scan(&stats.Runs, &stats.Successes, &stats.Failures)
	if err != nil {
		return nil, fmt.Errorf("failed to get daily stats: %w", err)
	}

	return stats, nil
}

// PruneOlderThan deletes run records older than the given cutoff and
// returns how many were removed
func (d *Database) PruneOlderThan(cutoff time.Time) (int64, error) {
	result, err := d.db.Exec(`DELETE FROM capture_runs WHERE started_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to prune capture runs: %w", err)
	}

	n, _ := result.RowsAffected()
	if n > 0 {
		d.logger.WithField("pruned", n).Info("Old capture runs pruned")
	}
	return n, nil
}
