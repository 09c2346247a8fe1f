// Package storage - Tests for capture-run history persistence
package storage

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/sazid/dashsnap/logger"
)

func testDatabase(t *testing.T) *Database {
	t.Helper()

	log, err := logger.New(logger.Config{Level: "error"})
	if err != nil {
		t.Fatalf("Failed to create logger: %v", err)
	}

	db, err := NewDatabase(filepath.Join(t.TempDir(), "history.db"), log)
	if err != nil {
		t.Fatalf("Failed to create database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	return db
}

func TestRecordAndRecentRuns(t *testing.T) {
	db := testDatabase(t)

	base := time.Now().Add(-time.Minute)
	runs := []*CaptureRun{
		{
			URL:        "http://localhost:3001",
			OutputPath: "/tmp/a.png",
			Status:     "success",
			StartedAt:  base,
			DurationMS: 4200,
		},
		{
			URL:            "http://localhost:3001",
			OutputPath:     "/tmp/b.png",
			LoginPerformed: true,
			Status:         "failure",
			Error:          "marker timeout",
			StartedAt:      base.Add(30 * time.Second),
			DurationMS:     12000,
		},
	}

	for _, run := range runs {
		id, err := db.RecordRun(run)
		if err != nil {
			t.Fatalf("RecordRun failed: %v", err)
		}
		if id == 0 {
			t.Error("RecordRun should return a non-zero id")
		}
	}

	recent, err := db.RecentRuns(10)
	if err != nil {
		t.Fatalf("RecentRuns failed: %v", err)
	}

	if len(recent) != 2 {
		t.Fatalf("Expected 2 runs, got %d", len(recent))
	}

	// Newest first
	if recent[0].Status != "failure" {
		t.Errorf("Expected newest run first, got status %s", recent[0].Status)
	}
	if !recent[0].LoginPerformed {
		t.Error("Login flag should round-trip")
	}
	if recent[0].Error != "marker timeout" {
		t.Errorf("Error text should round-trip, got %q", recent[0].Error)
	}
	if recent[1].Error != "" {
		t.Errorf("Successful run should have empty error, got %q", recent[1].Error)
	}
}

func TestLastRun(t *testing.T) {
	db := testDatabase(t)

	// Empty history
	run, err := db.LastRun()
	if err != nil {
		t.Fatalf("LastRun failed: %v", err)
	}
	if run != nil {
		t.Error("LastRun should be nil for empty history")
	}

	if _, err := db.RecordRun(&CaptureRun{
		URL:        "http://localhost:3001",
		OutputPath: "/tmp/a.png",
		Status:     "success",
		StartedAt:  time.Now(),
	}); err != nil {
		t.Fatalf("RecordRun failed: %v", err)
	}

	run, err = db.LastRun()
	if err != nil {
		t.Fatalf("LastRun failed: %v", err)
	}
	if run == nil {
		t.Fatal("LastRun should return the recorded run")
	}
	if run.OutputPath != "/tmp/a.png" {
		t.Errorf("Unexpected output path %s", run.OutputPath)
	}
}

func TestGetTodayStats(t *testing.T) {
	db := testDatabase(t)

	now := time.Now()
	for _, status := range []string{"success", "success", "failure"} {
		if _, err := db.RecordRun(&CaptureRun{
			URL:        "http://localhost:3001",
			OutputPath: "/tmp/a.png",
			Status:     status,
			StartedAt:  now,
		}); err != nil {
			t.Fatalf("RecordRun failed: %v", err)
		}
	}

	stats, err := db.GetTodayStats()
	if err != nil {
		t.Fatalf("GetTodayStats failed: %v", err)
	}

	if stats.Runs != 3 {
		t.Errorf("Expected 3 runs today, got %d", stats.Runs)
	}
	if stats.Successes != 2 {
		t.Errorf("Expected 2 successes, got %d", stats.Successes)
	}
	if stats.Failures != 1 {
		t.Errorf("Expected 1 failure, got %d", stats.Failures)
	}
}

func TestPruneOlderThan(t *testing.T) {
	db := testDatabase(t)

	old := time.Now().Add(-48 * time.Hour)
	recent := time.Now()

	for _, startedAt := range []time.Time{old, recent} {
		if _, err := db.RecordRun(&CaptureRun{
			URL:        "http://localhost:3001",
			OutputPath: "/tmp/a.png",
			Status:     "success",
			StartedAt:  startedAt,
		}); err != nil {
			t.Fatalf("RecordRun failed: %v", err)
		}
	}

	pruned, err := db.PruneOlderThan(time.Now().Add(-24 * time.Hour))
	if err != nil {
		t.Fatalf("PruneOlderThan failed: %v", err)
	}
	if pruned != 1 {
		t.Errorf("Expected 1 pruned run, got %d", pruned)
	}

	remaining, err := db.RecentRuns(10)
	if err != nil {
		t.Fatalf("RecentRuns failed: %v", err)
	}
	if len(remaining) != 1 {
		t.Errorf("Expected 1 remaining run, got %d", len(remaining))
	}
}
