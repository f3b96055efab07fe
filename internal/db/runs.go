package db

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/lakfel/fittsStudy/internal/timeutil"
)

// ErrNotFound is returned when a run, trial or trace does not exist.
var ErrNotFound = errors.New("not found")

// Run status values.
const (
	RunStatusRunning   = "running"
	RunStatusCompleted = "completed"
	RunStatusFailed    = "failed"
)

// AnalysisRun records one batch analysis: its input, parameters and outcome.
type AnalysisRun struct {
	RunID        string          `json:"run_id"`
	Source       string          `json:"source"`
	ParamsJSON   json.RawMessage `json:"params_json,omitempty"`
	Status       string          `json:"status"`
	TrialCount   int             `json:"trial_count"`
	SegmentCount int             `json:"segment_count"`
	ErrorMessage string          `json:"error_message,omitempty"`
	CreatedAt    int64           `json:"created_at"`
	CompletedAt  int64           `json:"completed_at,omitempty"`
}

// AnalysisRunStore persists analysis runs.
type AnalysisRunStore struct {
	db    *sql.DB
	clock timeutil.Clock
}

// NewAnalysisRunStore creates a run store. Timestamps are taken from clock
// in Unix nanoseconds.
func NewAnalysisRunStore(db *sql.DB, clock timeutil.Clock) *AnalysisRunStore {
	return &AnalysisRunStore{db: db, clock: clock}
}

// InsertRun persists a new run in the running state. If RunID is empty a
// UUID is generated; the run is updated in place.
func (s *AnalysisRunStore) InsertRun(run *AnalysisRun) error {
	if run.RunID == "" {
		run.RunID = uuid.New().String()
	}
	if run.CreatedAt == 0 {
		run.CreatedAt = s.clock.Now().UnixNano()
	}
	run.Status = RunStatusRunning

	var params interface{}
	if len(run.ParamsJSON) > 0 {
		params = string(run.ParamsJSON)
	}

	return retryOnBusy(s.clock, func() error {
		_, err := s.db.Exec(`
			INSERT INTO analysis_runs (run_id, source, params_json, status, created_at)
			VALUES (?, ?, ?, ?, ?)`,
			run.RunID, run.Source, params, run.Status, run.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("insert run %s: %w", run.RunID, err)
		}
		return nil
	})
}

// CompleteRun marks a run finished with its final counts. A non-nil runErr
// marks it failed and records the message.
func (s *AnalysisRunStore) CompleteRun(runID string, trialCount, segmentCount int, runErr error) error {
	status := RunStatusCompleted
	var msg interface{}
	if runErr != nil {
		status = RunStatusFailed
		msg = runErr.Error()
	}
	completed := s.clock.Now().UnixNano()

	return retryOnBusy(s.clock, func() error {
		res, err := s.db.Exec(`
			UPDATE analysis_runs
			SET status = ?, trial_count = ?, segment_count = ?, error_message = ?, completed_at = ?
			WHERE run_id = ?`,
			status, trialCount, segmentCount, msg, completed, runID,
		)
		if err != nil {
			return fmt.Errorf("complete run %s: %w", runID, err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return fmt.Errorf("run %s: %w", runID, ErrNotFound)
		}
		return nil
	})
}

const runColumns = `run_id, source, params_json, status, trial_count, segment_count,
	error_message, created_at, completed_at`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRun(row rowScanner) (*AnalysisRun, error) {
	var (
		r         AnalysisRun
		params    sql.NullString
		msg       sql.NullString
		completed sql.NullInt64
	)
	if err := row.Scan(&r.RunID, &r.Source, &params, &r.Status, &r.TrialCount, &r.SegmentCount,
		&msg, &r.CreatedAt, &completed); err != nil {
		return nil, err
	}
	if params.Valid {
		r.ParamsJSON = json.RawMessage(params.String)
	}
	r.ErrorMessage = msg.String
	r.CompletedAt = completed.Int64
	return &r, nil
}

// GetRun returns a run by id.
func (s *AnalysisRunStore) GetRun(runID string) (*AnalysisRun, error) {
	r, err := scanRun(s.db.QueryRow(`SELECT `+runColumns+` FROM analysis_runs WHERE run_id = ?`, runID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("run %s: %w", runID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("scan run: %w", err)
	}
	return r, nil
}

// ListRuns returns the most recent runs first. limit <= 0 returns all runs.
func (s *AnalysisRunStore) ListRuns(limit int) ([]*AnalysisRun, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.Query(`SELECT `+runColumns+` FROM analysis_runs
		ORDER BY created_at DESC, run_id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	runs := []*AnalysisRun{}
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}
