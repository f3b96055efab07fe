package dsp

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Filter applies the IIR filter once in the forward direction, starting from
// internal state zi (nil means rest). It returns the output and the final state.
func Filter(c Coefficients, x, zi []float64) ([]float64, []float64) {
	b, a := normalise(c)
	n := len(a)
	z := make([]float64, n-1)
	copy(z, zi)

	y := make([]float64, len(x))
	for i, xi := range x {
		yi := b[0]*xi + at(z, 0)
		for j := 0; j < n-2; j++ {
			z[j] = b[j+1]*xi + z[j+1] - a[j+1]*yi
		}
		if n > 1 {
			z[n-2] = b[n-1]*xi - a[n-1]*yi
		}
		y[i] = yi
	}
	return y, z
}

// SteadyState returns the initial filter state that corresponds to the
// steady-state response to a unit step, so a constant input produces a
// constant output from the first sample.
func SteadyState(c Coefficients) ([]float64, error) {
	b, a := normalise(c)
	n := len(a)
	if n < 2 {
		return nil, nil
	}

	// (I - companion(a)^T) zi = b[1:] - a[1:]*b[0]
	m := mat.NewDense(n-1, n-1, nil)
	for i := 0; i < n-1; i++ {
		m.Set(i, i, 1)
	}
	for i := 0; i < n-1; i++ {
		// first row of the companion matrix becomes the first column of its transpose
		m.Set(i, 0, m.At(i, 0)+a[i+1])
	}
	for i := 1; i < n-1; i++ {
		m.Set(i-1, i, m.At(i-1, i)-1)
	}

	rhs := mat.NewVecDense(n-1, nil)
	for i := 0; i < n-1; i++ {
		rhs.SetVec(i, b[i+1]-a[i+1]*b[0])
	}

	var zi mat.VecDense
	if err := zi.SolveVec(m, rhs); err != nil {
		return nil, fmt.Errorf("%w: steady state: %v", ErrInvalidDesign, err)
	}
	return zi.RawVector().Data, nil
}

// FiltFilt runs the filter forward and then backward over x, which cancels the
// phase response. The signal is padded at both ends by odd reflection of
// c.PadLen() samples, and each pass starts from the scaled steady state.
//
// Inputs that are not longer than the pad return ErrTraceTooShort.
func FiltFilt(c Coefficients, x []float64) ([]float64, error) {
	edge := c.PadLen()
	if len(x) <= edge {
		return nil, fmt.Errorf("%w: need more than %d samples, got %d", ErrTraceTooShort, edge, len(x))
	}

	zi, err := SteadyState(c)
	if err != nil {
		return nil, err
	}

	ext := oddExtend(x, edge)

	z0 := scaled(zi, ext[0])
	y, _ := Filter(c, ext, z0)

	floats.Reverse(y)
	z0 = scaled(zi, y[0])
	y, _ = Filter(c, y, z0)
	floats.Reverse(y)

	out := make([]float64, len(x))
	copy(out, y[edge:edge+len(x)])
	return out, nil
}

// oddExtend reflects x about its end points: 2*x[0]-x[edge..1] and
// 2*x[n-1]-x[n-2..n-1-edge].
func oddExtend(x []float64, edge int) []float64 {
	n := len(x)
	ext := make([]float64, 0, n+2*edge)
	for i := edge; i >= 1; i-- {
		ext = append(ext, 2*x[0]-x[i])
	}
	ext = append(ext, x...)
	for i := n - 2; i >= n-1-edge; i-- {
		ext = append(ext, 2*x[n-1]-x[i])
	}
	return ext
}

func normalise(c Coefficients) ([]float64, []float64) {
	n := max(len(c.A), len(c.B))
	b := make([]float64, n)
	a := make([]float64, n)
	copy(b, c.B)
	copy(a, c.A)
	if a[0] != 1 && a[0] != 0 {
		a0 := a[0]
		floats.Scale(1/a0, b)
		floats.Scale(1/a0, a)
	}
	return b, a
}

func scaled(v []float64, s float64) []float64 {
	out := make([]float64, len(v))
	copy(out, v)
	floats.Scale(s, out)
	return out
}

func at(v []float64, i int) float64 {
	if i < len(v) {
		return v[i]
	}
	return 0
}
