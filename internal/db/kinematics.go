package db

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/lakfel/fittsStudy/internal/submovement"
)

// Trace is a stored kinematic trace.
type Trace struct {
	Filtered bool                          `json:"filtered"`
	Samples  []submovement.KinematicSample `json:"samples"`
}

// KinematicsStore persists per-trial kinematic traces so plots and phase
// lookups can be served without re-running the analysis.
type KinematicsStore struct {
	db *sql.DB
}

// NewKinematicsStore creates a kinematics store.
func NewKinematicsStore(db *sql.DB) *KinematicsStore {
	return &KinematicsStore{db: db}
}

// InsertTrace stores a trial's trace, replacing any previous one. The trial
// must already be recorded through SegmentStore.
func (s *KinematicsStore) InsertTrace(runID, trialID string, trace Trace) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if err := insertTrace(tx, runID, trialID, trace); err != nil {
		return err
	}
	return tx.Commit()
}

func insertTrace(tx *sql.Tx, runID, trialID string, trace Trace) error {
	if _, err := tx.Exec(`DELETE FROM trial_traces WHERE run_id = ? AND trial_id = ?`, runID, trialID); err != nil {
		return fmt.Errorf("clear trace for trial %s: %w", trialID, err)
	}
	if _, err := tx.Exec(`INSERT INTO trial_traces (run_id, trial_id, filtered, samples) VALUES (?, ?, ?, ?)`,
		runID, trialID, trace.Filtered, len(trace.Samples)); err != nil {
		return fmt.Errorf("insert trace for trial %s: %w", trialID, err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO kinematic_samples (run_id, trial_id, idx, t, x, y, v, a, imputed, segment_id, gap_boundary, gap_fill)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare sample insert: %w", err)
	}
	defer stmt.Close()

	for i, k := range trace.Samples {
		if _, err := stmt.Exec(runID, trialID, i, k.T, k.X, k.Y, k.V, k.A,
			k.Imputed, k.SegmentID, k.GapBoundary, string(k.GapFill)); err != nil {
			return fmt.Errorf("insert sample %d of trial %s: %w", i, trialID, err)
		}
	}
	return nil
}

// GetTrace returns a trial's stored trace.
func (s *KinematicsStore) GetTrace(runID, trialID string) (*Trace, error) {
	var trace Trace
	var n int
	err := s.db.QueryRow(`SELECT filtered, samples FROM trial_traces WHERE run_id = ? AND trial_id = ?`,
		runID, trialID).Scan(&trace.Filtered, &n)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("trace for trial %s in run %s: %w", trialID, runID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("query trace: %w", err)
	}

	rows, err := s.db.Query(`
		SELECT t, x, y, v, a, imputed, segment_id, gap_boundary, gap_fill
		FROM kinematic_samples
		WHERE run_id = ? AND trial_id = ?
		ORDER BY idx`, runID, trialID)
	if err != nil {
		return nil, fmt.Errorf("query samples: %w", err)
	}
	defer rows.Close()

	trace.Samples = make([]submovement.KinematicSample, 0, n)
	for rows.Next() {
		var k submovement.KinematicSample
		var fill string
		if err := rows.Scan(&k.T, &k.X, &k.Y, &k.V, &k.A, &k.Imputed, &k.SegmentID, &k.GapBoundary, &fill); err != nil {
			return nil, fmt.Errorf("scan sample: %w", err)
		}
		k.GapFill = submovement.GapFill(fill)
		trace.Samples = append(trace.Samples, k)
	}
	return &trace, rows.Err()
}
