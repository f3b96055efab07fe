package positions

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/lakfel/fittsStudy/internal/monitoring"
)

// trialDocument is the subset of an exported trial document the flattener
// reads. Other fields are ignored.
type trialDocument struct {
	DocID           string          `json:"__doc_id"`
	ParticipantID   string          `json:"participantId"`
	CursorPositions json.RawMessage `json:"cursorPositions"`
}

type cursorPosition struct {
	Time *float64 `json:"time"`
	X    *float64 `json:"x"`
	Y    *float64 `json:"y"`
}

// FlattenTrials reads a JSON array of trial documents and explodes each
// document's cursorPositions list into rows. Documents whose cursorPositions
// is absent or not a list contribute no rows; positions missing time, x or y
// are skipped. A document without __doc_id fails with ErrMissingColumns.
func FlattenTrials(r io.Reader) ([]Row, error) {
	var docs []trialDocument
	if err := json.NewDecoder(r).Decode(&docs); err != nil {
		return nil, fmt.Errorf("failed to decode trial documents: %w", err)
	}

	var rows []Row
	for i, doc := range docs {
		if doc.DocID == "" {
			return nil, fmt.Errorf("%w: trial document %d has no __doc_id", ErrMissingColumns, i)
		}

		var points []cursorPosition
		if len(doc.CursorPositions) == 0 || json.Unmarshal(doc.CursorPositions, &points) != nil {
			monitoring.Debugf("[positions] trial %s has no %s list", doc.DocID, SourceCursorPositions)
			continue
		}

		skipped := 0
		for _, p := range points {
			if p.Time == nil || p.X == nil || p.Y == nil {
				skipped++
				continue
			}
			rows = append(rows, Row{
				TrialID:       doc.DocID,
				ParticipantID: doc.ParticipantID,
				T:             *p.Time,
				X:             *p.X,
				Y:             *p.Y,
				Source:        SourceCursorPositions,
			})
		}
		if skipped > 0 {
			monitoring.Debugf("[positions] trial %s: skipped %d incomplete positions", doc.DocID, skipped)
		}
	}
	return rows, nil
}
