package main

import (
	"context"
	"net/http"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lakfel/fittsStudy/internal/db"
	"github.com/lakfel/fittsStudy/internal/testutil"
)

func newTestDB(t *testing.T) *db.DB {
	t.Helper()
	database, err := db.NewDB(filepath.Join(t.TempDir(), "results.db"))
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })
	require.NoError(t, database.Runs().InsertRun(&db.AnalysisRun{RunID: "run-1", Source: "positions.csv"}))
	return database
}

func TestNewHandler(t *testing.T) {
	h := newHandler(newTestDB(t))

	tests := []struct {
		path string
		want int
	}{
		{"/api/runs", http.StatusOK},
		{"/api/runs/run-1/trials", http.StatusOK},
		{"/api/runs/absent", http.StatusNotFound},
		{"/runs", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := testutil.Serve(h, http.MethodGet, tt.path)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestNewHandler_Debug(t *testing.T) {
	h := newHandler(newTestDB(t))

	rec := testutil.Serve(h, http.MethodGet, "/debug/")
	assert.NotEqual(t, http.StatusNotFound, rec.Code)
}

func TestServe_Shutdown(t *testing.T) {
	server := &http.Server{Addr: "127.0.0.1:0", Handler: http.NotFoundHandler()}
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- serve(ctx, server) }()
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("serve did not return after cancel")
	}
}

func TestServe_ListenError(t *testing.T) {
	server := &http.Server{Addr: "127.0.0.1:-1"}
	assert.Error(t, serve(context.Background(), server))
}
