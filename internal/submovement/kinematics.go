package submovement

import "math"

// ComputeKinematics derives speed and acceleration on a uniform grid.
//
// Speed is the finite-difference displacement over dtMs, with the first sample
// fixed at 0, then smoothed by a centered moving average of the given window.
// Acceleration is the difference of the smoothed speed over dtMs, smoothed the
// same way. A window of 1 or less disables smoothing. The first sample's
// acceleration is 0 only before smoothing; the centered mean blends in its
// neighbours, so A of the first output sample is generally non-zero.
func ComputeKinematics(samples []UniformSample, dtMs float64, window int) []KinematicSample {
	n := len(samples)
	out := make([]KinematicSample, n)
	if n == 0 {
		return out
	}

	vRaw := make([]float64, n)
	for i := 1; i < n; i++ {
		dx := samples[i].X - samples[i-1].X
		dy := samples[i].Y - samples[i-1].Y
		vRaw[i] = math.Hypot(dx, dy) / dtMs
	}
	v := centeredMean(vRaw, window)

	aRaw := make([]float64, n)
	for i := 1; i < n; i++ {
		aRaw[i] = (v[i] - v[i-1]) / dtMs
	}
	a := centeredMean(aRaw, window)

	for i := range out {
		out[i] = KinematicSample{UniformSample: samples[i], V: v[i], A: a[i]}
	}
	return out
}

// centeredMean averages x over [i-w/2, i+(w-1)/2], clipped to the slice, so
// edge windows average whatever samples exist.
func centeredMean(x []float64, w int) []float64 {
	out := make([]float64, len(x))
	if w <= 1 {
		copy(out, x)
		return out
	}
	for i := range x {
		lo := max(0, i-w/2)
		hi := min(len(x)-1, i+(w-1)/2)
		var sum float64
		for j := lo; j <= hi; j++ {
			sum += x[j]
		}
		out[i] = sum / float64(hi-lo+1)
	}
	return out
}
