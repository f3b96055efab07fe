package submovement

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func raw(pts ...[3]float64) []RawSample {
	out := make([]RawSample, len(pts))
	for i, p := range pts {
		out[i] = RawSample{T: p[0], X: p[1], Y: p[2]}
	}
	return out
}

func TestResample_ThreeSampleScenario(t *testing.T) {
	t.Parallel()

	got := Resample(raw([3]float64{0, 0, 0}, [3]float64{50, 10, 0}, [3]float64{100, 20, 0}), DefaultResampleConfig())
	require.Len(t, got, 11)

	for i, s := range got {
		assert.Equal(t, float64(i*10), s.T)
		assert.InDelta(t, float64(i)*2, s.X, 1e-9, "x at %v", s.T)
		assert.Equal(t, 0.0, s.Y)
		assert.Equal(t, 0, s.SegmentID)
		assert.False(t, s.GapBoundary)
		assert.Equal(t, GapFillNone, s.GapFill)

		exact := s.T == 0 || s.T == 50 || s.T == 100
		assert.Equal(t, !exact, s.Imputed, "imputed at %v", s.T)
	}
}

func TestResample_Empty(t *testing.T) {
	t.Parallel()

	got := Resample(nil, DefaultResampleConfig())
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestResample_DropsNonFinite(t *testing.T) {
	t.Parallel()

	in := raw(
		[3]float64{0, 0, 0},
		[3]float64{math.Inf(1), 1, 1},
		[3]float64{10, math.NaN(), 1},
		[3]float64{15, 1, math.Inf(-1)},
		[3]float64{20, 2, 0},
	)
	got := Resample(in, DefaultResampleConfig())
	require.Len(t, got, 3)
	for i, s := range got {
		assert.Equal(t, float64(i*10), s.T)
		assert.InDelta(t, float64(i), s.X, 1e-9)
		assert.Equal(t, 0.0, s.Y)
		assert.Equal(t, 0, s.SegmentID)
	}

	assert.Empty(t, Resample(raw([3]float64{math.NaN(), 0, 0}), DefaultResampleConfig()))
}

func TestResample_SingleSampleAtZero(t *testing.T) {
	t.Parallel()

	got := Resample(raw([3]float64{0, 3, 4}), DefaultResampleConfig())
	require.Len(t, got, 1)
	assert.Equal(t, UniformSample{T: 0, X: 3, Y: 4, GapFill: GapFillNone}, got[0])
}

func TestResample_SynthesisesTrialStart(t *testing.T) {
	t.Parallel()

	got := Resample(raw([3]float64{30, 5, 5}, [3]float64{40, 6, 5}), DefaultResampleConfig())
	require.Len(t, got, 5)

	assert.Equal(t, 0.0, got[0].T)
	assert.False(t, got[0].Imputed)
	for _, s := range got[:4] {
		assert.InDelta(t, 5.0, s.X, 1e-12)
		assert.InDelta(t, 5.0, s.Y, 1e-12)
	}
	assert.True(t, got[1].Imputed)
	assert.False(t, got[3].Imputed)
	assert.InDelta(t, 6.0, got[4].X, 1e-12)
}

func TestResample_UnsortedInput(t *testing.T) {
	t.Parallel()

	sorted := raw([3]float64{0, 0, 0}, [3]float64{20, 4, 2}, [3]float64{40, 8, 4})
	shuffled := raw([3]float64{40, 8, 4}, [3]float64{0, 0, 0}, [3]float64{20, 4, 2})

	assert.Equal(t, Resample(sorted, DefaultResampleConfig()), Resample(shuffled, DefaultResampleConfig()))
}

func TestResample_DuplicateTimestampsLastWins(t *testing.T) {
	t.Parallel()

	got := Resample(raw(
		[3]float64{0, 0, 0},
		[3]float64{10, 5, 0},
		[3]float64{10, 7, 0},
		[3]float64{20, 9, 0},
	), DefaultResampleConfig())
	require.Len(t, got, 3)
	assert.Equal(t, 7.0, got[1].X)
	assert.False(t, got[1].Imputed)
}

func TestResample_GapsAreNotBridged(t *testing.T) {
	t.Parallel()

	got := Resample(raw(
		[3]float64{0, 0, 0},
		[3]float64{10, 1, 0},
		[3]float64{20, 2, 0},
		[3]float64{200, 50, 0},
		[3]float64{210, 51, 0},
	), DefaultResampleConfig())
	require.Len(t, got, 22)

	for i := 3; i <= 19; i++ {
		assert.Equal(t, 2.0, got[i].X, "gap row %d holds the last position", i)
		assert.Equal(t, 0, got[i].SegmentID)
		assert.True(t, got[i].Imputed)
		assert.Equal(t, GapFillForward, got[i].GapFill)
	}
	assert.Equal(t, 50.0, got[20].X)
	assert.Equal(t, 1, got[20].SegmentID)
	assert.False(t, got[20].Imputed)
	assert.Equal(t, GapFillNone, got[21].GapFill)

	var boundaries []int
	for i, s := range got {
		if s.GapBoundary {
			boundaries = append(boundaries, i)
		}
	}
	assert.Equal(t, []int{2, 20}, boundaries)
}

func TestResample_TrialStartNeverBoundary(t *testing.T) {
	t.Parallel()

	// The synthesised t=0 sample is separated from the only real sample by a gap.
	got := Resample(raw([3]float64{500, 3, 4}), DefaultResampleConfig())
	require.Len(t, got, 51)

	assert.False(t, got[0].GapBoundary)
	assert.True(t, got[50].GapBoundary)
	assert.Equal(t, 1, got[50].SegmentID)
	for _, s := range got {
		assert.Equal(t, 3.0, s.X)
		assert.Equal(t, 4.0, s.Y)
	}
}

func TestResample_GridProperties(t *testing.T) {
	t.Parallel()

	// irregular timing with one long dropout
	var samples []RawSample
	tm := 3.0
	for i := 0; i < 80; i++ {
		samples = append(samples, RawSample{T: tm, X: math.Sin(tm / 100), Y: math.Cos(tm / 120)})
		tm += 7 + float64(i%5)
		if i == 40 {
			tm += 150
		}
	}

	cfg := DefaultResampleConfig()
	got := Resample(samples, cfg)
	require.NotEmpty(t, got)

	last := samples[len(samples)-1].T
	for i, s := range got {
		assert.InDelta(t, float64(i)*cfg.DtMs, s.T, 1e-9)
		assert.LessOrEqual(t, s.T, last+1e-9)
		assert.False(t, math.IsNaN(s.X) || math.IsNaN(s.Y), "row %d", i)
	}
	assert.Greater(t, got[len(got)-1].T+cfg.DtMs, last)
}
