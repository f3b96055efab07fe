// Package api serves stored analysis runs over HTTP for the viewer.
package api

import (
	"bytes"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/lakfel/fittsStudy/internal/db"
	"github.com/lakfel/fittsStudy/internal/httputil"
	"github.com/lakfel/fittsStudy/internal/report"
	"github.com/lakfel/fittsStudy/internal/submovement"
)

// ANSI escape codes used by the request log.
const (
	colorCyan      = "\033[36m"
	colorReset     = "\033[0m"
	colorYellow    = "\033[33m"
	colorBoldGreen = "\033[1;32m"
	colorBoldRed   = "\033[1;31m"
)

// defaultRunLimit caps GET /runs when no limit is given.
const defaultRunLimit = 50

// Server exposes runs, trials, segments, charts and phase lookups from a
// results database.
type Server struct {
	db *db.DB
}

func NewServer(db *db.DB) *Server {
	return &Server{db: db}
}

type loggingResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (lrw *loggingResponseWriter) WriteHeader(code int) {
	lrw.statusCode = code
	lrw.ResponseWriter.WriteHeader(code)
}

func (lrw *loggingResponseWriter) Flush() {
	if flusher, ok := lrw.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}

func statusCodeColor(statusCode int) string {
	switch {
	case statusCode >= 200 && statusCode < 300:
		return colorBoldGreen + strconv.Itoa(statusCode) + colorReset
	case statusCode >= 300 && statusCode < 400:
		return colorYellow + strconv.Itoa(statusCode) + colorReset
	case statusCode >= 400:
		return colorBoldRed + strconv.Itoa(statusCode) + colorReset
	default:
		return strconv.Itoa(statusCode)
	}
}

// LoggingMiddleware logs method, path, query, status, and duration
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		lrw := &loggingResponseWriter{w, http.StatusOK}
		next.ServeHTTP(lrw, r)
		log.Printf(
			"[%s] %s %s%s%s %vms",
			statusCodeColor(lrw.statusCode), r.Method,
			colorCyan, r.RequestURI, colorReset,
			float64(time.Since(start).Nanoseconds())/1e6,
		)
	})
}

func (s *Server) ServeMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /runs", s.listRuns)
	mux.HandleFunc("GET /runs/{run}", s.showRun)
	mux.HandleFunc("GET /runs/{run}/trials", s.listTrials)
	mux.HandleFunc("GET /runs/{run}/trials/{trial}/segments", s.listSegments)
	mux.HandleFunc("GET /runs/{run}/trials/{trial}/trace", s.showTrace)
	mux.HandleFunc("GET /runs/{run}/trials/{trial}/chart", s.showChart)
	mux.HandleFunc("GET /runs/{run}/trials/{trial}/phase", s.showPhase)
	return mux
}

// writeStoreError maps a store error onto a JSON error response.
func writeStoreError(w http.ResponseWriter, what string, err error) {
	if errors.Is(err, db.ErrNotFound) {
		httputil.NotFound(w, err.Error())
		return
	}
	httputil.InternalServerError(w, fmt.Sprintf("Failed to retrieve %s: %v", what, err))
}

func (s *Server) listRuns(w http.ResponseWriter, r *http.Request) {
	limit := defaultRunLimit
	if l := r.URL.Query().Get("limit"); l != "" {
		n, err := strconv.Atoi(l)
		if err != nil || n < 1 {
			httputil.BadRequest(w, "Invalid 'limit' parameter")
			return
		}
		limit = n
	}

	runs, err := s.db.Runs().ListRuns(limit)
	if err != nil {
		writeStoreError(w, "runs", err)
		return
	}
	httputil.WriteJSONOK(w, runs)
}

// runSummary is a run plus its per-type segment counts.
type runSummary struct {
	*db.AnalysisRun
	SegmentsByType map[submovement.MovementType]int `json:"segments_by_type"`
}

func (s *Server) showRun(w http.ResponseWriter, r *http.Request) {
	runID := r.PathValue("run")
	run, err := s.db.Runs().GetRun(runID)
	if err != nil {
		writeStoreError(w, "run", err)
		return
	}
	counts, err := s.db.Segments().CountByType(runID)
	if err != nil {
		writeStoreError(w, "segment counts", err)
		return
	}
	httputil.WriteJSONOK(w, runSummary{AnalysisRun: run, SegmentsByType: counts})
}

func (s *Server) listTrials(w http.ResponseWriter, r *http.Request) {
	runID := r.PathValue("run")
	if _, err := s.db.Runs().GetRun(runID); err != nil {
		writeStoreError(w, "run", err)
		return
	}
	trials, err := s.db.Segments().ListTrials(runID)
	if err != nil {
		writeStoreError(w, "trials", err)
		return
	}
	httputil.WriteJSONOK(w, trials)
}

func (s *Server) listSegments(w http.ResponseWriter, r *http.Request) {
	segs, err := s.db.Segments().ListSegments(r.PathValue("run"), r.PathValue("trial"))
	if err != nil {
		writeStoreError(w, "segments", err)
		return
	}
	httputil.WriteJSONOK(w, segs)
}

func (s *Server) showTrace(w http.ResponseWriter, r *http.Request) {
	trace, err := s.db.Kinematics().GetTrace(r.PathValue("run"), r.PathValue("trial"))
	if err != nil {
		writeStoreError(w, "trace", err)
		return
	}
	httputil.WriteJSONOK(w, trace)
}

func (s *Server) showChart(w http.ResponseWriter, r *http.Request) {
	runID, trialID := r.PathValue("run"), r.PathValue("trial")
	segs, err := s.db.Segments().ListSegments(runID, trialID)
	if err != nil {
		writeStoreError(w, "segments", err)
		return
	}
	trace, err := s.db.Kinematics().GetTrace(runID, trialID)
	if err != nil {
		writeStoreError(w, "trace", err)
		return
	}

	// Render into a buffer so a failure can still produce a JSON error.
	var buf bytes.Buffer
	if err := report.RenderTrialChart(&buf, trialID, trace.Samples, segs); err != nil {
		httputil.InternalServerError(w, fmt.Sprintf("Failed to render chart: %v", err))
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if _, err := buf.WriteTo(w); err != nil {
		log.Printf("failed to write chart: %v", err)
	}
}

// PhaseResponse is the movement phase of a trial at one instant.
type PhaseResponse struct {
	TrialID string                   `json:"trial_id"`
	T       float64                  `json:"t"`
	Phase   submovement.MovementType `json:"phase"`
	// Collapsed folds merged labels containing rapid into rapid.
	Collapsed submovement.MovementType `json:"collapsed"`
}

func (s *Server) showPhase(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("t")
	if raw == "" {
		httputil.BadRequest(w, "Missing 't' parameter")
		return
	}
	t, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		httputil.BadRequest(w, "Invalid 't' parameter")
		return
	}

	trialID := r.PathValue("trial")
	segs, err := s.db.Segments().ListSegments(r.PathValue("run"), trialID)
	if err != nil {
		writeStoreError(w, "segments", err)
		return
	}
	phase := submovement.PhaseAt(segs, t)
	httputil.WriteJSONOK(w, PhaseResponse{
		TrialID:   trialID,
		T:         t,
		Phase:     phase,
		Collapsed: submovement.CollapsePhase(phase),
	})
}
