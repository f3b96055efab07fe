package submovement

import "strings"

// PhaseAt returns the type of the first segment whose [TStart, TEnd] contains
// t, or Pause when the cursor was in no segment at that time. Used to label
// events such as the click that ended a trial.
func PhaseAt(segs []Segment, t float64) MovementType {
	for _, s := range segs {
		if s.TStart <= t && t <= s.TEnd {
			return s.Type
		}
	}
	return Pause
}

// CollapsePhase folds any label containing rapid (including merged unions)
// into Rapid; other labels are returned unchanged.
func CollapsePhase(p MovementType) MovementType {
	if strings.Contains(string(p), string(Rapid)) {
		return Rapid
	}
	return p
}
