package db

import (
	"database/sql"
	"fmt"

	"github.com/lakfel/fittsStudy/internal/submovement"
)

// TrialRecord lists one analysed trial of a run.
type TrialRecord struct {
	RunID         string `json:"run_id"`
	TrialID       string `json:"trial_id"`
	ParticipantID string `json:"participant_id,omitempty"`
	SegmentCount  int    `json:"segment_count"`
}

// SegmentStore persists detected segments per trial.
type SegmentStore struct {
	db *sql.DB
}

// NewSegmentStore creates a segment store.
func NewSegmentStore(db *sql.DB) *SegmentStore {
	return &SegmentStore{db: db}
}

// InsertTrialSegments records a trial and its segments in one transaction.
// Re-inserting a trial replaces its previous segments.
func (s *SegmentStore) InsertTrialSegments(runID, trialID, participantID string, segs []submovement.Segment) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if err := insertTrialSegments(tx, runID, trialID, participantID, segs); err != nil {
		return err
	}
	return tx.Commit()
}

func insertTrialSegments(tx *sql.Tx, runID, trialID, participantID string, segs []submovement.Segment) error {
	if _, err := tx.Exec(`
		INSERT INTO run_trials (run_id, trial_id, participant_id, segment_count)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (run_id, trial_id) DO UPDATE SET
			participant_id = excluded.participant_id,
			segment_count = excluded.segment_count`,
		runID, trialID, participantID, len(segs),
	); err != nil {
		return fmt.Errorf("insert trial %s: %w", trialID, err)
	}
	if _, err := tx.Exec(`DELETE FROM segments WHERE run_id = ? AND trial_id = ?`, runID, trialID); err != nil {
		return fmt.Errorf("clear segments for trial %s: %w", trialID, err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO segments (run_id, trial_id, seq, start_idx, end_idx, t_start, t_end, duration_ms, type, v_peak)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare segment insert: %w", err)
	}
	defer stmt.Close()

	for i, seg := range segs {
		if _, err := stmt.Exec(runID, trialID, i, seg.StartIdx, seg.EndIdx, seg.TStart, seg.TEnd,
			seg.DurationMs, string(seg.Type), seg.VPeak); err != nil {
			return fmt.Errorf("insert segment %d of trial %s: %w", i, trialID, err)
		}
	}
	return nil
}

// ListSegments returns a trial's segments in time order. A trial recorded
// with no segments yields an empty slice; an unknown trial yields
// ErrNotFound.
func (s *SegmentStore) ListSegments(runID, trialID string) ([]submovement.Segment, error) {
	var exists int
	err := s.db.QueryRow(`SELECT 1 FROM run_trials WHERE run_id = ? AND trial_id = ?`, runID, trialID).Scan(&exists)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("trial %s in run %s: %w", trialID, runID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("query trial: %w", err)
	}

	rows, err := s.db.Query(`
		SELECT start_idx, end_idx, t_start, t_end, duration_ms, type, v_peak
		FROM segments
		WHERE run_id = ? AND trial_id = ?
		ORDER BY seq`, runID, trialID)
	if err != nil {
		return nil, fmt.Errorf("query segments: %w", err)
	}
	defer rows.Close()

	segs := []submovement.Segment{}
	for rows.Next() {
		var seg submovement.Segment
		var typ string
		if err := rows.Scan(&seg.StartIdx, &seg.EndIdx, &seg.TStart, &seg.TEnd, &seg.DurationMs, &typ, &seg.VPeak); err != nil {
			return nil, fmt.Errorf("scan segment: %w", err)
		}
		seg.Type = submovement.MovementType(typ)
		segs = append(segs, seg)
	}
	return segs, rows.Err()
}

// ListTrials returns the trials of a run ordered by trial id.
func (s *SegmentStore) ListTrials(runID string) ([]TrialRecord, error) {
	rows, err := s.db.Query(`
		SELECT run_id, trial_id, participant_id, segment_count
		FROM run_trials
		WHERE run_id = ?
		ORDER BY trial_id`, runID)
	if err != nil {
		return nil, fmt.Errorf("query trials: %w", err)
	}
	defer rows.Close()

	trials := []TrialRecord{}
	for rows.Next() {
		var tr TrialRecord
		if err := rows.Scan(&tr.RunID, &tr.TrialID, &tr.ParticipantID, &tr.SegmentCount); err != nil {
			return nil, fmt.Errorf("scan trial: %w", err)
		}
		trials = append(trials, tr)
	}
	return trials, rows.Err()
}

// CountByType returns the number of segments of each type in a run.
func (s *SegmentStore) CountByType(runID string) (map[submovement.MovementType]int, error) {
	rows, err := s.db.Query(`SELECT type, COUNT(*) FROM segments WHERE run_id = ? GROUP BY type`, runID)
	if err != nil {
		return nil, fmt.Errorf("query segment types: %w", err)
	}
	defer rows.Close()

	counts := make(map[submovement.MovementType]int)
	for rows.Next() {
		var typ string
		var n int
		if err := rows.Scan(&typ, &n); err != nil {
			return nil, fmt.Errorf("scan segment type: %w", err)
		}
		counts[submovement.MovementType(typ)] = n
	}
	return counts, rows.Err()
}
