package testutil

import (
	"math"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lakfel/fittsStudy/internal/submovement"
)

func TestServe(t *testing.T) {
	t.Parallel()

	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
		w.Write([]byte(r.Method + " " + r.URL.Path + " " + r.RemoteAddr))
	})
	rec := Serve(h, http.MethodPost, "/runs")
	AssertStatusCode(t, rec.Code, http.StatusAccepted)
	assert.Equal(t, "POST /runs 127.0.0.1:40000", rec.Body.String())
}

func TestNewTestRequest(t *testing.T) {
	t.Parallel()

	req := NewTestRequest(http.MethodGet, "/runs/r1/trials?limit=3")
	assert.Equal(t, http.MethodGet, req.Method)
	assert.Equal(t, "/runs/r1/trials", req.URL.Path)
	assert.Equal(t, "3", req.URL.Query().Get("limit"))
}

func TestDecodeJSON(t *testing.T) {
	t.Parallel()

	rec := NewTestRecorder()
	rec.WriteString(`{"phase": "rapid"}`)

	var got map[string]string
	DecodeJSON(t, rec, &got)
	assert.Equal(t, "rapid", got["phase"])
}

func TestMinimumJerkReach(t *testing.T) {
	t.Parallel()

	s := MinimumJerkReach(100, 400, 0, 300, 7, 8)
	require.Len(t, s, 51)
	assert.Equal(t, submovement.RawSample{T: 100, X: 0, Y: 7}, s[0])
	assert.Equal(t, 500.0, s[50].T)
	assert.InDelta(t, 300, s[50].X, 1e-9)
	assert.InDelta(t, 150, s[25].X, 1e-9)

	// Fastest step is at the midpoint: 1.875 * 300 / 400 px/ms.
	peak := 0.0
	for i := 1; i < len(s); i++ {
		peak = math.Max(peak, (s[i].X-s[i-1].X)/(s[i].T-s[i-1].T))
	}
	assert.InDelta(t, 1.875*300/400, peak, 0.01)
}

func TestHoldAndConstantVelocity(t *testing.T) {
	t.Parallel()

	h := Hold(0, 40, 5, 6, 10)
	require.Len(t, h, 5)
	for _, p := range h {
		assert.Equal(t, 5.0, p.X)
		assert.Equal(t, 6.0, p.Y)
	}

	c := ConstantVelocity(10, 100, 20, 0, 0.5, 10)
	require.Len(t, c, 11)
	assert.Equal(t, 110.0, c[10].T)
	assert.Equal(t, 70.0, c[10].X)
}

func TestConcat(t *testing.T) {
	t.Parallel()

	got := Concat(Hold(0, 20, 0, 0, 10), Hold(20, 20, 1, 0, 10), nil, Hold(50, 0, 2, 0, 10))
	want := []submovement.RawSample{
		{T: 0}, {T: 10}, {T: 20},
		{T: 30, X: 1}, {T: 40, X: 1},
		{T: 50, X: 2},
	}
	assert.Equal(t, want, got)
}

func TestTwoPhaseReach(t *testing.T) {
	t.Parallel()

	s := TwoPhaseReach()
	require.Len(t, s, 142)
	assert.Equal(t, 0.0, s[0].T)
	assert.Equal(t, 1128.0, s[len(s)-1].T)
	assert.InDelta(t, 320, s[len(s)-1].X, 1e-9)
	for i := 1; i < len(s); i++ {
		require.Greater(t, s[i].T, s[i-1].T, "sample %d", i)
	}
}

func TestShuffle(t *testing.T) {
	t.Parallel()

	in := TwoPhaseReach()
	a, b := Shuffle(in, 7), Shuffle(in, 7)
	assert.Equal(t, a, b)
	assert.NotEqual(t, in, a)
	assert.ElementsMatch(t, in, a)
	assert.Equal(t, 0.0, in[0].T, "input must not be modified")
}
