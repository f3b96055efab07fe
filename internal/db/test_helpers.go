package db

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/lakfel/fittsStudy/internal/timeutil"
)

// newTestDB creates a migrated database in a per-test temp directory.
func newTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := NewDB(filepath.Join(t.TempDir(), "results.db"))
	if err != nil {
		t.Fatalf("NewDB failed: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// testClock returns a mock clock at a fixed instant.
func testClock() *timeutil.MockClock {
	return timeutil.NewMockClock(time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC))
}

// insertTestRun records a run with the given id.
func insertTestRun(t *testing.T, db *DB, runID string) *AnalysisRun {
	t.Helper()

	run := &AnalysisRun{RunID: runID, Source: "positions.csv"}
	if err := NewAnalysisRunStore(db.DB, testClock()).InsertRun(run); err != nil {
		t.Fatalf("InsertRun failed: %v", err)
	}
	return run
}
