package batch

import (
	"gonum.org/v1/gonum/stat"

	"github.com/lakfel/fittsStudy/internal/submovement"
)

// Summary holds aggregate statistics for a batch run.
type Summary struct {
	Trials             int `json:"trials"`
	TrialsWithSegments int `json:"trials_with_segments"`
	Segments           int `json:"segments"`
	// UnfilteredTrials counts trials analysed without the low-pass filter.
	UnfilteredTrials int `json:"unfiltered_trials"`

	ByType map[submovement.MovementType]int `json:"by_type"`

	SegmentsPerTrialMean   float64 `json:"segments_per_trial_mean"`
	SegmentsPerTrialStdDev float64 `json:"segments_per_trial_stddev"`
	PeakSpeedMean          float64 `json:"peak_speed_mean_px_per_ms"`
	PeakSpeedStdDev        float64 `json:"peak_speed_stddev_px_per_ms"`
	DurationMeanMs         float64 `json:"duration_mean_ms"`
}

// Summarize computes aggregate statistics over trial results. Standard
// deviations are sample deviations and are 0 with fewer than two values.
func Summarize(results []TrialResult) Summary {
	s := Summary{
		Trials: len(results),
		ByType: make(map[submovement.MovementType]int),
	}
	if len(results) == 0 {
		return s
	}

	perTrial := make([]float64, 0, len(results))
	var peaks, durations []float64
	for _, r := range results {
		if r.Analysis == nil {
			continue
		}
		if !r.Analysis.Filtered {
			s.UnfilteredTrials++
		}
		n := len(r.Analysis.Segments)
		perTrial = append(perTrial, float64(n))
		if n > 0 {
			s.TrialsWithSegments++
		}
		for _, seg := range r.Analysis.Segments {
			s.ByType[seg.Type]++
			peaks = append(peaks, seg.VPeak)
			durations = append(durations, seg.DurationMs)
		}
	}
	s.Segments = len(peaks)

	s.SegmentsPerTrialMean, s.SegmentsPerTrialStdDev = meanStdDev(perTrial)
	s.PeakSpeedMean, s.PeakSpeedStdDev = meanStdDev(peaks)
	s.DurationMeanMs, _ = meanStdDev(durations)
	return s
}

func meanStdDev(x []float64) (mean, std float64) {
	switch len(x) {
	case 0:
		return 0, 0
	case 1:
		return x[0], 0
	}
	return stat.MeanStdDev(x, nil)
}
