package submovement

import (
	"errors"
	"fmt"
)

// ErrInvalidConfig is returned by Analyze when thresholds or resample
// settings violate their invariants.
var ErrInvalidConfig = errors.New("invalid submovement config")

// Thresholds controls detection and merging. Speeds are px/ms, durations ms.
type Thresholds struct {
	SlowSpeedMin      float64 `json:"slow_speed_min"`
	SlowMinDurationMs float64 `json:"slow_min_duration_ms"`
	FastSpeedMin      float64 `json:"fast_speed_min"`
	FastMinDurationMs float64 `json:"fast_min_duration_ms"`

	// EpsilonSpeed is the speed at or below which the cursor counts as at rest.
	EpsilonSpeed float64 `json:"epsilon_speed"`
	// AccelSignFlipEnd closes a segment once acceleration has changed sign
	// this many times.
	AccelSignFlipEnd int `json:"accel_sign_flip_end"`

	MergeMidpointRatio float64 `json:"merge_midpoint_ratio"`
	MergeMaxGapMs      float64 `json:"merge_max_gap_ms"`
}

// DefaultThresholds returns the study defaults: 50 px/s for 60 ms (slow) and
// 350 px/s for 20 ms (rapid).
func DefaultThresholds() Thresholds {
	return Thresholds{
		SlowSpeedMin:       0.05,
		SlowMinDurationMs:  60,
		FastSpeedMin:       0.35,
		FastMinDurationMs:  20,
		EpsilonSpeed:       1e-6,
		AccelSignFlipEnd:   2,
		MergeMidpointRatio: 0.90,
		MergeMaxGapMs:      40,
	}
}

// Validate reports the first violated invariant.
func (t Thresholds) Validate() error {
	switch {
	case t.SlowSpeedMin < 0:
		return fmt.Errorf("%w: slow_speed_min must be >= 0, got %g", ErrInvalidConfig, t.SlowSpeedMin)
	case t.FastSpeedMin <= t.SlowSpeedMin:
		return fmt.Errorf("%w: fast_speed_min (%g) must exceed slow_speed_min (%g)", ErrInvalidConfig, t.FastSpeedMin, t.SlowSpeedMin)
	case t.SlowMinDurationMs <= 0:
		return fmt.Errorf("%w: slow_min_duration_ms must be > 0, got %g", ErrInvalidConfig, t.SlowMinDurationMs)
	case t.FastMinDurationMs <= 0:
		return fmt.Errorf("%w: fast_min_duration_ms must be > 0, got %g", ErrInvalidConfig, t.FastMinDurationMs)
	case t.MergeMaxGapMs <= 0:
		return fmt.Errorf("%w: merge_max_gap_ms must be > 0, got %g", ErrInvalidConfig, t.MergeMaxGapMs)
	case t.EpsilonSpeed < 0:
		return fmt.Errorf("%w: epsilon_speed must be >= 0, got %g", ErrInvalidConfig, t.EpsilonSpeed)
	case t.AccelSignFlipEnd < 1:
		return fmt.Errorf("%w: accel_sign_flip_end must be >= 1, got %d", ErrInvalidConfig, t.AccelSignFlipEnd)
	case t.MergeMidpointRatio <= 0:
		return fmt.Errorf("%w: merge_midpoint_ratio must be > 0, got %g", ErrInvalidConfig, t.MergeMidpointRatio)
	}
	return nil
}

// ResampleConfig controls the uniform grid, the low-pass filter and the
// kinematic smoother.
type ResampleConfig struct {
	DtMs float64 `json:"dt_ms"`
	// SmoothWindow is the centered moving-average width in samples; 1 disables it.
	SmoothWindow int `json:"smooth_window"`
	// GapMs is the raw sampling gap above which interpolation is not allowed
	// to bridge.
	GapMs float64 `json:"gap_ms"`

	FilterOrder int `json:"filter_order"`
	// CutoffHz <= 0 disables the low-pass filter.
	CutoffHz float64 `json:"cutoff_hz"`
}

// DefaultResampleConfig returns a 10 ms grid, a 5-sample smoother, a 60 ms gap
// threshold and a 4th-order 10 Hz filter.
func DefaultResampleConfig() ResampleConfig {
	return ResampleConfig{
		DtMs:         10,
		SmoothWindow: 5,
		GapMs:        60,
		FilterOrder:  4,
		CutoffHz:     10,
	}
}

// SampleRateHz is the grid's sampling frequency.
func (c ResampleConfig) SampleRateHz() float64 {
	return 1000 / c.DtMs
}

// FilterEnabled reports whether the low-pass stage runs.
func (c ResampleConfig) FilterEnabled() bool {
	return c.CutoffHz > 0
}

// Validate reports the first violated invariant.
func (c ResampleConfig) Validate() error {
	switch {
	case c.DtMs <= 0:
		return fmt.Errorf("%w: dt_ms must be > 0, got %g", ErrInvalidConfig, c.DtMs)
	case c.SmoothWindow < 1:
		return fmt.Errorf("%w: smooth_window must be >= 1, got %d", ErrInvalidConfig, c.SmoothWindow)
	case c.GapMs <= 0:
		return fmt.Errorf("%w: gap_ms must be > 0, got %g", ErrInvalidConfig, c.GapMs)
	}
	if c.FilterEnabled() {
		if c.FilterOrder < 1 {
			return fmt.Errorf("%w: filter_order must be >= 1, got %d", ErrInvalidConfig, c.FilterOrder)
		}
		if nyq := c.SampleRateHz() / 2; c.CutoffHz >= nyq {
			return fmt.Errorf("%w: cutoff_hz %g must be below the %g Hz Nyquist rate", ErrInvalidConfig, c.CutoffHz, nyq)
		}
	}
	return nil
}
