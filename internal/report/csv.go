package report

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/lakfel/fittsStudy/internal/batch"
)

// SegmentsHeader is the column order of the segment table.
var SegmentsHeader = []string{
	"trial_id", "start_idx", "end_idx", "t_start", "t_end", "duration_ms", "type", "v_peak_px_per_ms",
}

// WriteSegmentsCSV writes one row per segment across all trials, in trial
// then time order. Trials without segments contribute no rows.
func WriteSegmentsCSV(w io.Writer, results []batch.TrialResult) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(SegmentsHeader); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, tr := range results {
		if tr.Analysis == nil {
			continue
		}
		for _, seg := range tr.Analysis.Segments {
			row := []string{
				tr.TrialID,
				fmt.Sprintf("%d", seg.StartIdx),
				fmt.Sprintf("%d", seg.EndIdx),
				fmt.Sprintf("%.3f", seg.TStart),
				fmt.Sprintf("%.3f", seg.TEnd),
				fmt.Sprintf("%.3f", seg.DurationMs),
				string(seg.Type),
				fmt.Sprintf("%.6f", seg.VPeak),
			}
			if err := cw.Write(row); err != nil {
				return fmt.Errorf("failed to write segment row: %w", err)
			}
		}
	}
	cw.Flush()
	return cw.Error()
}
