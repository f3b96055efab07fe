package submovement

import (
	"math"
	"slices"
)

// gridEps absorbs float error when placing grid points and matching them to
// raw timestamps.
const gridEps = 1e-9

// continuitySegment is a maximal run of raw samples with no delta above GapMs.
type continuitySegment struct {
	id      int
	samples []RawSample // sorted, duplicate timestamps collapsed (last wins)
}

func (s continuitySegment) tStart() float64 { return s.samples[0].T }
func (s continuitySegment) tEnd() float64   { return s.samples[len(s.samples)-1].T }

// SortSamples returns a copy of samples stable-sorted by time.
func SortSamples(samples []RawSample) []RawSample {
	sorted := slices.Clone(samples)
	slices.SortStableFunc(sorted, func(a, b RawSample) int {
		switch {
		case a.T < b.T:
			return -1
		case a.T > b.T:
			return 1
		}
		return 0
	})
	return sorted
}

// Resample places the trajectory on a uniform grid starting at t0 with step
// cfg.DtMs. Interpolation never crosses a raw gap longer than cfg.GapMs; grid
// points outside every continuity segment are forward-filled, then
// backward-filled.
//
// When several raw samples share a timestamp the last one (in input order)
// defines the position at that time. Samples with a NaN or infinite field are
// dropped.
func Resample(samples []RawSample, cfg ResampleConfig) []UniformSample {
	sorted := SortSamples(finiteSamples(samples))
	if len(sorted) == 0 {
		return []UniformSample{}
	}
	if sorted[0].T > 0 {
		sorted = append([]RawSample{{T: 0, X: sorted[0].X, Y: sorted[0].Y}}, sorted...)
	}

	segs := splitContinuity(sorted, cfg.GapMs)

	t0, tN := sorted[0].T, sorted[len(sorted)-1].T
	n := int(math.Floor((tN-t0)/cfg.DtMs+gridEps)) + 1

	out := make([]UniformSample, n)
	assigned := make([]bool, n)
	for i := range out {
		out[i].T = t0 + float64(i)*cfg.DtMs
		out[i].GapFill = GapFillNone
	}

	// first/last grid index covered by each segment, -1 if none
	type span struct{ first, last int }
	spans := make([]span, 0, len(segs))

	for _, seg := range segs {
		lo := max(0, int(math.Ceil((seg.tStart()-t0)/cfg.DtMs-gridEps)))
		hi := min(n-1, int(math.Floor((seg.tEnd()-t0)/cfg.DtMs+gridEps)))
		if lo > hi {
			continue
		}
		interpolateSegment(out[lo:hi+1], seg)
		for i := lo; i <= hi; i++ {
			out[i].SegmentID = seg.id
			assigned[i] = true
		}
		spans = append(spans, span{lo, hi})
	}

	// Both sides of every gap; the trial start is never a boundary.
	for k := 1; k < len(spans); k++ {
		if prev := spans[k-1].last; prev > 0 {
			out[prev].GapBoundary = true
		}
		out[spans[k].first].GapBoundary = true
	}

	fillUnassigned(out, assigned)
	return out
}

func (s RawSample) finite() bool {
	for _, v := range [...]float64{s.T, s.X, s.Y} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func finiteSamples(samples []RawSample) []RawSample {
	return slices.DeleteFunc(slices.Clone(samples), func(s RawSample) bool { return !s.finite() })
}

// splitContinuity cuts sorted samples wherever consecutive timestamps differ by
// more than gapMs. Segment ids are the number of gaps crossed so far.
func splitContinuity(sorted []RawSample, gapMs float64) []continuitySegment {
	var segs []continuitySegment
	cur := continuitySegment{id: 0}
	for i, s := range sorted {
		if i > 0 && s.T-sorted[i-1].T > gapMs {
			segs = append(segs, cur)
			cur = continuitySegment{id: cur.id + 1}
		}
		if last := len(cur.samples) - 1; last >= 0 && cur.samples[last].T == s.T {
			cur.samples[last] = s
			continue
		}
		cur.samples = append(cur.samples, s)
	}
	return append(segs, cur)
}

// interpolateSegment fills rows (whose times lie within the segment) by linear
// interpolation over the segment's raw samples.
func interpolateSegment(rows []UniformSample, seg continuitySegment) {
	raw := seg.samples
	j := 0
	for i := range rows {
		t := rows[i].T
		for j < len(raw)-1 && raw[j+1].T <= t+gridEps {
			j++
		}
		p := raw[j]
		if math.Abs(t-p.T) <= gridEps || j == len(raw)-1 {
			rows[i].X, rows[i].Y = p.X, p.Y
			rows[i].Imputed = math.Abs(t-p.T) > gridEps
			continue
		}
		q := raw[j+1]
		f := (t - p.T) / (q.T - p.T)
		f = math.Max(0, math.Min(1, f))
		rows[i].X = p.X + (q.X-p.X)*f
		rows[i].Y = p.Y + (q.Y-p.Y)*f
		rows[i].Imputed = true
	}
}

// fillUnassigned propagates the last assigned row forward, then the first
// assigned row backward into any leading rows.
func fillUnassigned(out []UniformSample, assigned []bool) {
	last := -1
	for i := range out {
		if assigned[i] {
			last = i
			continue
		}
		if last < 0 {
			continue
		}
		fillFrom(&out[i], out[last], GapFillForward)
	}

	next := -1
	for i := len(out) - 1; i >= 0; i-- {
		if assigned[i] {
			next = i
			continue
		}
		if out[i].GapFill != GapFillNone || next < 0 {
			continue
		}
		fillFrom(&out[i], out[next], GapFillBackward)
	}
}

func fillFrom(dst *UniformSample, src UniformSample, how GapFill) {
	dst.X, dst.Y = src.X, src.Y
	dst.SegmentID = src.SegmentID
	dst.Imputed = true
	dst.GapFill = how
}
