package api

import (
	"bytes"
	"context"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lakfel/fittsStudy/internal/batch"
	"github.com/lakfel/fittsStudy/internal/db"
	"github.com/lakfel/fittsStudy/internal/positions"
	"github.com/lakfel/fittsStudy/internal/submovement"
	"github.com/lakfel/fittsStudy/internal/testutil"
)

const testRunID = "run-1"

// setupTestServer returns a server over a database holding one completed
// run of two trials, plus the batch result that was saved.
func setupTestServer(t *testing.T) (*Server, *batch.Result) {
	t.Helper()

	dbInst, err := db.NewDB(filepath.Join(t.TempDir(), "results.db"))
	require.NoError(t, err)
	t.Cleanup(func() { dbInst.Close() })

	require.NoError(t, dbInst.Runs().InsertRun(&db.AnalysisRun{RunID: testRunID, Source: "positions.csv"}))

	trials := []positions.Trial{
		{ID: "t1", ParticipantID: "p1", Samples: testutil.TwoPhaseReach()},
		{ID: "t2", ParticipantID: "p1", Samples: testutil.TwoPhaseReach()},
	}
	res, err := batch.Run(context.Background(), trials, submovement.DefaultResampleConfig(), submovement.DefaultThresholds(), batch.Options{Workers: 1})
	require.NoError(t, err)
	require.NoError(t, dbInst.SaveBatch(testRunID, res))

	return NewServer(dbInst), res
}

func TestListRuns(t *testing.T) {
	s, res := setupTestServer(t)

	rec := testutil.Serve(s.ServeMux(), http.MethodGet, "/runs")
	testutil.AssertStatusCode(t, rec.Code, http.StatusOK)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var runs []db.AnalysisRun
	testutil.DecodeJSON(t, rec, &runs)
	require.Len(t, runs, 1)
	assert.Equal(t, testRunID, runs[0].RunID)
	assert.Equal(t, db.RunStatusCompleted, runs[0].Status)
	assert.Equal(t, 2, runs[0].TrialCount)
	assert.Equal(t, res.SegmentCount(), runs[0].SegmentCount)
}

func TestListRuns_InvalidLimit(t *testing.T) {
	s, _ := setupTestServer(t)

	for _, q := range []string{"0", "-3", "abc"} {
		rec := testutil.Serve(s.ServeMux(), http.MethodGet, "/runs?limit="+q)
		testutil.AssertStatusCode(t, rec.Code, http.StatusBadRequest)
	}
}

func TestListRuns_MethodNotAllowed(t *testing.T) {
	s, _ := setupTestServer(t)

	rec := testutil.Serve(s.ServeMux(), http.MethodPost, "/runs")
	testutil.AssertStatusCode(t, rec.Code, http.StatusMethodNotAllowed)
}

func TestShowRun(t *testing.T) {
	s, res := setupTestServer(t)

	rec := testutil.Serve(s.ServeMux(), http.MethodGet, "/runs/"+testRunID)
	testutil.AssertStatusCode(t, rec.Code, http.StatusOK)

	var got struct {
		RunID          string         `json:"run_id"`
		Status         string         `json:"status"`
		SegmentsByType map[string]int `json:"segments_by_type"`
	}
	testutil.DecodeJSON(t, rec, &got)
	assert.Equal(t, testRunID, got.RunID)
	assert.Equal(t, db.RunStatusCompleted, got.Status)

	want := make(map[string]int)
	for _, tr := range res.Trials {
		for _, seg := range tr.Analysis.Segments {
			want[string(seg.Type)]++
		}
	}
	assert.Equal(t, want, got.SegmentsByType)
}

func TestNotFound(t *testing.T) {
	s, _ := setupTestServer(t)

	paths := []string{
		"/runs/missing",
		"/runs/missing/trials",
		"/runs/" + testRunID + "/trials/missing/segments",
		"/runs/" + testRunID + "/trials/missing/trace",
		"/runs/" + testRunID + "/trials/missing/chart",
		"/runs/" + testRunID + "/trials/missing/phase?t=10",
	}
	for _, p := range paths {
		t.Run(p, func(t *testing.T) {
			rec := testutil.Serve(s.ServeMux(), http.MethodGet, p)
			testutil.AssertStatusCode(t, rec.Code, http.StatusNotFound)

			var body map[string]string
			testutil.DecodeJSON(t, rec, &body)
			assert.Contains(t, body["error"], "not found")
		})
	}
}

func TestListTrials(t *testing.T) {
	s, res := setupTestServer(t)

	rec := testutil.Serve(s.ServeMux(), http.MethodGet, "/runs/"+testRunID+"/trials")
	testutil.AssertStatusCode(t, rec.Code, http.StatusOK)

	var trials []db.TrialRecord
	testutil.DecodeJSON(t, rec, &trials)
	require.Len(t, trials, 2)
	for i, tr := range trials {
		assert.Equal(t, res.Trials[i].TrialID, tr.TrialID)
		assert.Equal(t, "p1", tr.ParticipantID)
		assert.Equal(t, len(res.Trials[i].Analysis.Segments), tr.SegmentCount)
	}
}

func TestListSegments(t *testing.T) {
	s, res := setupTestServer(t)

	rec := testutil.Serve(s.ServeMux(), http.MethodGet, "/runs/"+testRunID+"/trials/t1/segments")
	testutil.AssertStatusCode(t, rec.Code, http.StatusOK)

	var segs []submovement.Segment
	testutil.DecodeJSON(t, rec, &segs)
	assert.Equal(t, res.Trials[0].Analysis.Segments, segs)
}

func TestShowTrace(t *testing.T) {
	s, res := setupTestServer(t)

	rec := testutil.Serve(s.ServeMux(), http.MethodGet, "/runs/"+testRunID+"/trials/t2/trace")
	testutil.AssertStatusCode(t, rec.Code, http.StatusOK)

	var trace db.Trace
	testutil.DecodeJSON(t, rec, &trace)
	assert.Equal(t, res.Trials[1].Analysis.Filtered, trace.Filtered)
	assert.Equal(t, res.Trials[1].Analysis.Kinematics, trace.Samples)
}

func TestShowChart(t *testing.T) {
	s, _ := setupTestServer(t)

	rec := testutil.Serve(s.ServeMux(), http.MethodGet, "/runs/"+testRunID+"/trials/t1/chart")
	testutil.AssertStatusCode(t, rec.Code, http.StatusOK)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
	body := rec.Body.String()
	assert.Contains(t, body, "<html>")
	assert.Contains(t, body, "Trial t1")
	assert.Contains(t, body, "speed")
}

func TestShowPhase(t *testing.T) {
	s, res := setupTestServer(t)
	segs := res.Trials[0].Analysis.Segments
	require.NotEmpty(t, segs)
	first := segs[0]
	mid := (first.TStart + first.TEnd) / 2

	tests := []struct {
		name      string
		query     string
		phase     submovement.MovementType
		collapsed submovement.MovementType
	}{
		{"inside first segment", formatT(mid), first.Type, submovement.CollapsePhase(first.Type)},
		{"before any segment", "-1", submovement.Pause, submovement.Pause},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := testutil.Serve(s.ServeMux(), http.MethodGet, "/runs/"+testRunID+"/trials/t1/phase?t="+tt.query)
			testutil.AssertStatusCode(t, rec.Code, http.StatusOK)

			var got PhaseResponse
			testutil.DecodeJSON(t, rec, &got)
			assert.Equal(t, "t1", got.TrialID)
			assert.Equal(t, tt.phase, got.Phase)
			assert.Equal(t, tt.collapsed, got.Collapsed)
		})
	}
}

func TestShowPhase_BadParameter(t *testing.T) {
	s, _ := setupTestServer(t)

	for _, q := range []string{"", "?t=", "?t=soon"} {
		rec := testutil.Serve(s.ServeMux(), http.MethodGet, "/runs/"+testRunID+"/trials/t1/phase"+q)
		testutil.AssertStatusCode(t, rec.Code, http.StatusBadRequest)
	}
}

func TestLoggingMiddleware(t *testing.T) {
	var buf bytes.Buffer
	log.SetOutput(&buf)
	t.Cleanup(func() { log.SetOutput(os.Stderr) })

	h := LoggingMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	rec := testutil.NewTestRecorder()
	h.ServeHTTP(rec, testutil.NewTestRequest(http.MethodGet, "/runs?limit=5"))

	testutil.AssertStatusCode(t, rec.Code, http.StatusTeapot)
	out := buf.String()
	assert.Contains(t, out, "GET")
	assert.Contains(t, out, "/runs?limit=5")
	assert.Contains(t, out, statusCodeColor(http.StatusTeapot))
}

func TestStatusCodeColor(t *testing.T) {
	tests := []struct {
		code int
		want string
	}{
		{200, colorBoldGreen + "200" + colorReset},
		{304, colorYellow + "304" + colorReset},
		{404, colorBoldRed + "404" + colorReset},
		{500, colorBoldRed + "500" + colorReset},
		{101, "101"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, statusCodeColor(tt.code))
	}
}

func formatT(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
