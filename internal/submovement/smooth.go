package submovement

import (
	"slices"

	"github.com/lakfel/fittsStudy/internal/dsp"
)

// Smooth low-pass filters the X and Y channels of a uniform grid with a
// zero-phase Butterworth filter sampled at 1000/cfg.DtMs Hz. It returns a new
// slice; samples is not modified.
//
// Traces too short for the filter padding return an error wrapping
// dsp.ErrTraceTooShort. Callers are expected to continue unfiltered.
func Smooth(samples []UniformSample, cfg ResampleConfig) ([]UniformSample, error) {
	coeffs, err := dsp.Butterworth(cfg.FilterOrder, cfg.CutoffHz, cfg.SampleRateHz())
	if err != nil {
		return nil, err
	}

	xs := make([]float64, len(samples))
	ys := make([]float64, len(samples))
	for i, s := range samples {
		xs[i], ys[i] = s.X, s.Y
	}

	fx, err := dsp.FiltFilt(coeffs, xs)
	if err != nil {
		return nil, err
	}
	fy, err := dsp.FiltFilt(coeffs, ys)
	if err != nil {
		return nil, err
	}

	out := slices.Clone(samples)
	for i := range out {
		out[i].X, out[i].Y = fx[i], fy[i]
	}
	return out, nil
}
