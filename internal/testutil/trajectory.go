package testutil

import (
	"math/rand/v2"
	"slices"

	"github.com/lakfel/fittsStudy/internal/submovement"
)

// MinimumJerkReach samples a straight horizontal reach from x0 to x1 with a
// minimum-jerk (bell-shaped speed) profile. Samples run from startMs to
// startMs+durMs inclusive, stepMs apart. Peak speed is 1.875*|x1-x0|/durMs.
func MinimumJerkReach(startMs, durMs, x0, x1, y, stepMs float64) []submovement.RawSample {
	n := int(durMs/stepMs + 0.5)
	out := make([]submovement.RawSample, 0, n+1)
	for i := 0; i <= n; i++ {
		tau := float64(i) / float64(n)
		s := tau * tau * tau * (10 - 15*tau + 6*tau*tau)
		out = append(out, submovement.RawSample{
			T: startMs + float64(i)*stepMs,
			X: x0 + (x1-x0)*s,
			Y: y,
		})
	}
	return out
}

// Hold samples a stationary cursor.
func Hold(startMs, durMs, x, y, stepMs float64) []submovement.RawSample {
	n := int(durMs/stepMs + 0.5)
	out := make([]submovement.RawSample, 0, n+1)
	for i := 0; i <= n; i++ {
		out = append(out, submovement.RawSample{T: startMs + float64(i)*stepMs, X: x, Y: y})
	}
	return out
}

// ConstantVelocity samples motion along x at speedPxPerMs.
func ConstantVelocity(startMs, durMs, x0, y, speedPxPerMs, stepMs float64) []submovement.RawSample {
	n := int(durMs/stepMs + 0.5)
	out := make([]submovement.RawSample, 0, n+1)
	for i := 0; i <= n; i++ {
		dt := float64(i) * stepMs
		out = append(out, submovement.RawSample{T: startMs + dt, X: x0 + speedPxPerMs*dt, Y: y})
	}
	return out
}

// Concat joins trajectory pieces, dropping a leading sample of a piece when it
// repeats the previous piece's last timestamp.
func Concat(parts ...[]submovement.RawSample) []submovement.RawSample {
	var out []submovement.RawSample
	for _, p := range parts {
		if len(out) > 0 && len(p) > 0 && p[0].T == out[len(out)-1].T {
			p = p[1:]
		}
		out = append(out, p...)
	}
	return out
}

// TwoPhaseReach is a ballistic 300 px reach over 400 ms, a 200 ms dwell, and a
// 20 px corrective adjustment over 320 ms, sampled every 8 ms. With the
// default thresholds it contains one rapid and one slow submovement.
func TwoPhaseReach() []submovement.RawSample {
	return Concat(
		MinimumJerkReach(0, 400, 0, 300, 0, 8),
		Hold(400, 208, 300, 0, 8),
		MinimumJerkReach(608, 320, 300, 320, 0, 8),
		Hold(928, 200, 320, 0, 8),
	)
}

// Shuffle returns a deterministic permutation of samples.
func Shuffle(samples []submovement.RawSample, seed uint64) []submovement.RawSample {
	out := slices.Clone(samples)
	r := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	r.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	return out
}
