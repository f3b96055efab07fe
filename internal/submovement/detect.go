package submovement

import (
	"math"
	"slices"
)

// pass is one movement-type detection sweep.
type pass struct {
	typ      MovementType
	speedMin float64
	minDurMs float64
}

// run is an inclusive index range of consecutive eligible samples.
type run struct{ start, end int }

func (r run) len() int { return r.end - r.start + 1 }

// Detect finds rapid and slow submovements in a kinematic trace.
//
// The rapid pass runs first and claims every sample of its surviving runs;
// the slow pass only considers unclaimed samples. Within a run, segments grow
// from the run start until the cursor comes to rest or acceleration has flipped
// sign thr.AccelSignFlipEnd times. The sample that stops growth is excluded and
// scanning resumes after it, so a run can yield several segments. The result
// is sorted by StartIdx.
func Detect(trace []KinematicSample, thr Thresholds, dtMs float64) []Segment {
	segs := []Segment{}
	if len(trace) == 0 {
		return segs
	}

	passes := []pass{
		{typ: Rapid, speedMin: thr.FastSpeedMin, minDurMs: thr.FastMinDurationMs},
		{typ: Slow, speedMin: thr.SlowSpeedMin, minDurMs: thr.SlowMinDurationMs},
	}

	claimed := make([]bool, len(trace))
	for _, p := range passes {
		minLen := minSamples(p.minDurMs, dtMs)
		var surviving []run
		for _, r := range eligibleRuns(trace, claimed, p.speedMin) {
			if r.len() < minLen {
				continue
			}
			surviving = append(surviving, r)
			segs = append(segs, growSegments(trace, r, p.typ, minLen, thr)...)
		}
		// claimed is only updated between passes
		for _, r := range surviving {
			for i := r.start; i <= r.end; i++ {
				claimed[i] = true
			}
		}
	}

	slices.SortStableFunc(segs, func(a, b Segment) int { return a.StartIdx - b.StartIdx })
	return segs
}

// minSamples converts a minimum duration to a sample count, ceil(ms/dt).
func minSamples(durMs, dtMs float64) int {
	return max(1, int(math.Ceil(durMs/dtMs-gridEps)))
}

// eligibleRuns collapses the mask V >= speedMin && !claimed into maximal runs.
func eligibleRuns(trace []KinematicSample, claimed []bool, speedMin float64) []run {
	var runs []run
	start := -1
	for i, k := range trace {
		ok := k.V >= speedMin && !claimed[i]
		switch {
		case ok && start < 0:
			start = i
		case !ok && start >= 0:
			runs = append(runs, run{start, i - 1})
			start = -1
		}
	}
	if start >= 0 {
		runs = append(runs, run{start, len(trace) - 1})
	}
	return runs
}

// growSegments walks one surviving run and emits every segment that still
// meets minLen once closed.
func growSegments(trace []KinematicSample, r run, typ MovementType, minLen int, thr Thresholds) []Segment {
	var out []Segment
	start := r.start
	for start <= r.end {
		g := newGrowth(trace[start].A)
		end, next := r.end, r.end+1
		for i := start + 1; i <= r.end; i++ {
			if g.observe(trace[i].V, trace[i].A, thr) == stateClosed {
				end, next = i-1, i+1
				break
			}
		}
		if end-start+1 >= minLen {
			out = append(out, newSegment(trace, start, end, typ))
		}
		start = next
	}
	return out
}

func newSegment(trace []KinematicSample, start, end int, typ MovementType) Segment {
	s := Segment{
		StartIdx: start,
		EndIdx:   end,
		TStart:   trace[start].T,
		TEnd:     trace[end].T,
		Type:     typ,
	}
	s.DurationMs = s.TEnd - s.TStart
	s.VPeak = peakSpeed(trace, start, end)
	return s
}

type growthState int

const (
	stateGrowing growthState = iota
	stateClosed
)

// growth tracks one segment while it grows. Both stop rules are evaluated on
// every sample independently of each other.
type growth struct {
	state    growthState
	lastSign float64 // last non-zero acceleration sign, 0 if none yet
	flips    int
}

func newGrowth(a0 float64) *growth {
	return &growth{state: stateGrowing, lastSign: sign(a0)}
}

func (g *growth) observe(v, a float64, thr Thresholds) growthState {
	if g.state == stateClosed {
		return g.state
	}

	atRest := v <= thr.EpsilonSpeed

	flipLimit := false
	if s := sign(a); s != 0 {
		if g.lastSign != 0 && s != g.lastSign {
			g.flips++
			flipLimit = g.flips >= thr.AccelSignFlipEnd
		}
		g.lastSign = s
	}

	if atRest || flipLimit {
		g.state = stateClosed
	}
	return g.state
}

func sign(x float64) float64 {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	}
	return 0
}
