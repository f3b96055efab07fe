// Package dsp implements the digital filtering used to clean cursor traces
// before differentiation.
//
// Filters are described by transfer-function coefficients (B, A) with A[0]
// normalised to 1.
package dsp

import (
	"errors"
	"fmt"
	"math"
	"math/cmplx"
)

var (
	// ErrInvalidDesign is returned when filter design parameters are out of range.
	ErrInvalidDesign = errors.New("invalid filter design")

	// ErrTraceTooShort is returned by FiltFilt when the input is not longer
	// than the padding the zero-phase filter needs.
	ErrTraceTooShort = errors.New("trace too short to filter")
)

// Coefficients holds a digital IIR filter in transfer-function form.
type Coefficients struct {
	B []float64
	A []float64
}

// Order returns the filter order.
func (c Coefficients) Order() int {
	return max(len(c.A), len(c.B)) - 1
}

// PadLen returns the odd-extension length FiltFilt applies on each side.
func (c Coefficients) PadLen() int {
	return 3 * max(len(c.A), len(c.B))
}

// Butterworth designs a low-pass Butterworth filter of the given order with a
// -3 dB cutoff at cutoffHz for a signal sampled at sampleHz.
//
// The design goes through the analog prototype, a pre-warped bilinear
// transform and pole/zero expansion, so the result matches the textbook digital Butterworth design.
func Butterworth(order int, cutoffHz, sampleHz float64) (Coefficients, error) {
	if order < 1 {
		return Coefficients{}, fmt.Errorf("%w: order must be >= 1, got %d", ErrInvalidDesign, order)
	}
	if sampleHz <= 0 {
		return Coefficients{}, fmt.Errorf("%w: sample rate must be positive, got %g", ErrInvalidDesign, sampleHz)
	}
	nyquist := sampleHz / 2
	if cutoffHz <= 0 || cutoffHz >= nyquist {
		return Coefficients{}, fmt.Errorf("%w: cutoff %g Hz must be in (0, %g)", ErrInvalidDesign, cutoffHz, nyquist)
	}
	wn := cutoffHz / nyquist

	// Analog prototype poles on the unit circle, left half plane.
	poles := make([]complex128, order)
	for i := range poles {
		m := float64(-order + 1 + 2*i)
		poles[i] = -cmplx.Exp(complex(0, math.Pi*m/float64(2*order)))
	}

	// Pre-warp for the bilinear transform (normalised fs = 2).
	const fs2 = 4.0
	warped := fs2 * math.Tan(math.Pi*wn/2)
	gain := complex(math.Pow(warped, float64(order)), 0)
	for i := range poles {
		poles[i] *= complex(warped, 0)
	}

	// Bilinear transform. All zeros land on z = -1.
	den := complex(1, 0)
	zPoles := make([]complex128, order)
	for i, p := range poles {
		zPoles[i] = (complex(fs2, 0) + p) / (complex(fs2, 0) - p)
		den *= complex(fs2, 0) - p
	}
	k := real(gain / den)

	zeros := make([]complex128, order)
	for i := range zeros {
		zeros[i] = -1
	}

	bc := polyFromRoots(zeros)
	ac := polyFromRoots(zPoles)

	b := make([]float64, len(bc))
	a := make([]float64, len(ac))
	for i := range bc {
		b[i] = k * real(bc[i])
	}
	for i := range ac {
		a[i] = real(ac[i])
	}
	return Coefficients{B: b, A: a}, nil
}

// polyFromRoots expands prod(x - r) into descending-power coefficients.
func polyFromRoots(roots []complex128) []complex128 {
	c := []complex128{1}
	for _, r := range roots {
		next := make([]complex128, len(c)+1)
		for i, v := range c {
			next[i] += v
			next[i+1] -= v * r
		}
		c = next
	}
	return c
}
