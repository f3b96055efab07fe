// Package positions loads per-trial cursor positions from the study exports
// and groups them into the sequences the analysis consumes.
package positions

import (
	"errors"
	"sort"

	"github.com/lakfel/fittsStudy/internal/submovement"
)

// ErrMissingColumns is returned when an input table lacks a required column
// or a trial document lacks its id.
var ErrMissingColumns = errors.New("missing required columns")

// ErrNonFinite is returned when a t, x or y value parses as NaN or an infinity.
var ErrNonFinite = errors.New("non-finite value")

// SourceCursorPositions is the trial document field positions are taken from.
const SourceCursorPositions = "cursorPositions"

// Row is one flattened cursor position. T is in ms, X and Y in px.
type Row struct {
	TrialID       string  `json:"trial_id"`
	ParticipantID string  `json:"participant_id,omitempty"`
	T             float64 `json:"t"`
	X             float64 `json:"x"`
	Y             float64 `json:"y"`
	Source        string  `json:"source,omitempty"`
}

// Trial is the position sequence for one trial, in input order.
type Trial struct {
	ID            string
	ParticipantID string
	Samples       []submovement.RawSample
}

// GroupByTrial collects rows by trial id. Trials are returned sorted by id;
// the participant id is taken from the first row that carries one.
func GroupByTrial(rows []Row) []Trial {
	index := make(map[string]int)
	var trials []Trial
	for _, r := range rows {
		i, ok := index[r.TrialID]
		if !ok {
			i = len(trials)
			index[r.TrialID] = i
			trials = append(trials, Trial{ID: r.TrialID})
		}
		tr := &trials[i]
		if tr.ParticipantID == "" {
			tr.ParticipantID = r.ParticipantID
		}
		tr.Samples = append(tr.Samples, submovement.RawSample{T: r.T, X: r.X, Y: r.Y})
	}
	sort.SliceStable(trials, func(a, b int) bool { return trials[a].ID < trials[b].ID })
	return trials
}
