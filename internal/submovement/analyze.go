package submovement

import (
	"errors"
	"fmt"

	"github.com/lakfel/fittsStudy/internal/monitoring"
)

// ErrNonFiniteSample is returned by Analyze when a raw sample has a NaN or
// infinite time or position.
var ErrNonFiniteSample = errors.New("non-finite sample")

// Analyze runs the full pipeline on one trial: sort, resample, low-pass filter,
// kinematics, detection and merging.
//
// Filtering is best-effort. When the trace is too short for the filter, the
// unfiltered grid is used and Analysis.Filtered is false. Analyze fails on
// invalid configuration or a non-finite sample; empty or single-sample input
// yields trivial results.
func Analyze(samples []RawSample, rc ResampleConfig, thr Thresholds) (*Analysis, error) {
	if err := rc.Validate(); err != nil {
		return nil, err
	}
	if err := thr.Validate(); err != nil {
		return nil, err
	}
	for i, s := range samples {
		if !s.finite() {
			return nil, fmt.Errorf("%w: sample %d (t=%g, x=%g, y=%g)", ErrNonFiniteSample, i, s.T, s.X, s.Y)
		}
	}

	if len(samples) == 0 {
		return &Analysis{
			Kinematics: []KinematicSample{},
			Segments:   []Segment{},
		}, nil
	}

	grid := Resample(samples, rc)

	filtered := false
	if rc.FilterEnabled() {
		smoothed, err := Smooth(grid, rc)
		if err != nil {
			monitoring.Debugf("[submovement] filter skipped for %d-sample trace: %v", len(grid), err)
		} else {
			grid = smoothed
			filtered = true
		}
	}

	kin := ComputeKinematics(grid, rc.DtMs, rc.SmoothWindow)
	segs := Merge(kin, Detect(kin, thr, rc.DtMs), thr)

	return &Analysis{
		Kinematics: kin,
		Segments:   segs,
		Filtered:   filtered,
	}, nil
}

// AnalyzeDefault runs Analyze with DefaultResampleConfig and DefaultThresholds.
func AnalyzeDefault(samples []RawSample) (*Analysis, error) {
	return Analyze(samples, DefaultResampleConfig(), DefaultThresholds())
}
