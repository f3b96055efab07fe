// Package submovement segments a single pointing trial's cursor trajectory
// into ballistic ("rapid") and corrective ("slow") submovements.
//
// Analysis runs in fixed stages: uniform resampling with gap-aware
// interpolation, zero-phase low-pass filtering, finite-difference kinematics,
// threshold detection, and a single merge sweep. Every call is independent and
// owns its buffers, so trials can be analysed concurrently by the caller.
package submovement

// RawSample is one recorded cursor position. T is in milliseconds, X and Y in
// pixels.
type RawSample struct {
	T float64 `json:"t"`
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// GapFill records how a grid point outside every continuity segment got its
// position.
type GapFill string

const (
	GapFillNone     GapFill = "none"
	GapFillForward  GapFill = "forward"
	GapFillBackward GapFill = "backward"
)

// UniformSample is one row of the fixed-step grid.
type UniformSample struct {
	T float64 `json:"t"`
	X float64 `json:"x"`
	Y float64 `json:"y"`

	// Imputed is false only where the grid time matches a raw timestamp.
	Imputed bool `json:"imputed"`
	// SegmentID is the continuity segment (count of gaps crossed so far).
	SegmentID   int     `json:"segment_id"`
	GapBoundary bool    `json:"gap_boundary"`
	GapFill     GapFill `json:"gap_fill"`
}

// KinematicSample extends a grid row with speed (px/ms) and acceleration
// (px/ms²).
type KinematicSample struct {
	UniformSample
	V float64 `json:"v"`
	A float64 `json:"a"`
}

// MovementType labels a segment. Merged segments of different types carry a
// "+"-joined union such as "rapid+slow".
type MovementType string

const (
	Rapid MovementType = "rapid"
	Slow  MovementType = "slow"
	Pause MovementType = "pause"
)

// Union returns the label for a segment formed by merging t with o.
func (t MovementType) Union(o MovementType) MovementType {
	if t == o {
		return t
	}
	return t + "+" + o
}

// Segment is one detected submovement. StartIdx and EndIdx are inclusive
// indices into the kinematic trace.
type Segment struct {
	StartIdx   int          `json:"start_idx"`
	EndIdx     int          `json:"end_idx"`
	TStart     float64      `json:"t_start"`
	TEnd       float64      `json:"t_end"`
	DurationMs float64      `json:"duration_ms"`
	Type       MovementType `json:"type"`
	VPeak      float64      `json:"v_peak_px_per_ms"`
}

// Len returns the number of grid samples covered by the segment.
func (s Segment) Len() int { return s.EndIdx - s.StartIdx + 1 }

// Analysis is the result of analysing one trial.
type Analysis struct {
	Kinematics []KinematicSample `json:"kinematics"`
	Segments   []Segment         `json:"segments"`
	// Filtered is false when the low-pass filter was disabled or the trace
	// was too short for it.
	Filtered bool `json:"filtered"`
}
