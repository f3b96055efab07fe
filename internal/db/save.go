package db

import (
	"fmt"

	"github.com/lakfel/fittsStudy/internal/batch"
	"github.com/lakfel/fittsStudy/internal/monitoring"
)

// SaveBatch persists every trial of a batch result under runID, then marks
// the run completed. The run must already exist (see AnalysisRunStore).
// All trials are written in a single transaction.
func (db *DB) SaveBatch(runID string, res *batch.Result) error {
	if err := db.saveTrials(runID, res); err != nil {
		if cerr := db.Runs().CompleteRun(runID, 0, 0, err); cerr != nil {
			monitoring.Logf("[db] failed to mark run %s failed: %v", runID, cerr)
		}
		return err
	}
	return db.Runs().CompleteRun(runID, len(res.Trials), res.SegmentCount(), nil)
}

func (db *DB) saveTrials(runID string, res *batch.Result) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	for _, tr := range res.Trials {
		if err := insertTrialSegments(tx, runID, tr.TrialID, tr.ParticipantID, tr.Analysis.Segments); err != nil {
			return err
		}
		trace := Trace{Filtered: tr.Analysis.Filtered, Samples: tr.Analysis.Kinematics}
		if err := insertTrace(tx, runID, tr.TrialID, trace); err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit run %s: %w", runID, err)
	}
	monitoring.Logf("[db] saved run %s: %d trials, %d segments", runID, len(res.Trials), res.SegmentCount())
	return nil
}
