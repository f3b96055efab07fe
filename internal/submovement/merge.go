package submovement

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// Merge makes one left-to-right sweep over segs (sorted by StartIdx) and joins
// adjacent pairs whose speed dip looks like a single bell-shaped profile.
//
// For a pair separated by at most thr.MergeMaxGapMs the speed at the grid
// sample nearest the midpoint between the two peaks is compared with the
// straight line between the peaks. If it reaches thr.MergeMidpointRatio of
// that line, b is folded into a. A merged segment is not tested again against
// the next one.
func Merge(trace []KinematicSample, segs []Segment, thr Thresholds) []Segment {
	out := make([]Segment, 0, len(segs))
	for k := 0; k < len(segs); {
		a := segs[k]
		if k+1 < len(segs) {
			b := segs[k+1]
			if b.TStart-a.TEnd <= thr.MergeMaxGapMs && continuousProfile(trace, a, b, thr.MergeMidpointRatio) {
				out = append(out, join(trace, a, b))
				k += 2
				continue
			}
		}
		out = append(out, a)
		k++
	}
	return out
}

func continuousProfile(trace []KinematicSample, a, b Segment, ratio float64) bool {
	ia, ib := peakIndex(trace, a), peakIndex(trace, b)
	tA, vA := trace[ia].T, trace[ia].V
	tB, vB := trace[ib].T, trace[ib].V

	tMid := (tA + tB) / 2
	var expected float64
	if tA != tB {
		expected = vA + (vB-vA)*((tMid-tA)/(tB-tA))
	} else {
		expected = math.Max(vA, vB)
	}

	observed := trace[nearestIndex(trace, tMid)].V
	return observed >= ratio*expected
}

func join(trace []KinematicSample, a, b Segment) Segment {
	a.EndIdx = b.EndIdx
	a.TEnd = b.TEnd
	a.DurationMs = a.TEnd - a.TStart
	a.VPeak = peakSpeed(trace, a.StartIdx, a.EndIdx)
	a.Type = a.Type.Union(b.Type)
	return a
}

// peakIndex returns the trace index of the first maximum speed within s.
func peakIndex(trace []KinematicSample, s Segment) int {
	return s.StartIdx + floats.MaxIdx(speeds(trace[s.StartIdx:s.EndIdx+1]))
}

func peakSpeed(trace []KinematicSample, start, end int) float64 {
	return floats.Max(speeds(trace[start : end+1]))
}

// nearestIndex returns the first grid index whose time is closest to t.
func nearestIndex(trace []KinematicSample, t float64) int {
	best, bestDist := 0, math.Inf(1)
	for i, k := range trace {
		if d := math.Abs(k.T - t); d < bestDist {
			best, bestDist = i, d
		}
	}
	return best
}

func speeds(trace []KinematicSample) []float64 {
	v := make([]float64, len(trace))
	for i, k := range trace {
		v[i] = k.V
	}
	return v
}
