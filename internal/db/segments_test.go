package db

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lakfel/fittsStudy/internal/submovement"
)

var testSegments = []submovement.Segment{
	{StartIdx: 7, EndIdx: 34, TStart: 70, TEnd: 340, DurationMs: 270, Type: submovement.Rapid, VPeak: 1.389},
	{StartIdx: 68, EndIdx: 86, TStart: 680, TEnd: 860, DurationMs: 180, Type: submovement.Slow, VPeak: 0.115},
}

func TestSegmentStore(t *testing.T) {
	db := newTestDB(t)
	insertTestRun(t, db, "run-1")
	store := db.Segments()

	require.NoError(t, store.InsertTrialSegments("run-1", "trial-b", "p1", testSegments))
	require.NoError(t, store.InsertTrialSegments("run-1", "trial-a", "p2", nil))

	got, err := store.ListSegments("run-1", "trial-b")
	require.NoError(t, err)
	if diff := cmp.Diff(testSegments, got); diff != "" {
		t.Errorf("ListSegments() mismatch (-want +got):\n%s", diff)
	}

	got, err = store.ListSegments("run-1", "trial-a")
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)

	trials, err := store.ListTrials("run-1")
	require.NoError(t, err)
	assert.Equal(t, []TrialRecord{
		{RunID: "run-1", TrialID: "trial-a", ParticipantID: "p2", SegmentCount: 0},
		{RunID: "run-1", TrialID: "trial-b", ParticipantID: "p1", SegmentCount: 2},
	}, trials)

	counts, err := store.CountByType("run-1")
	require.NoError(t, err)
	assert.Equal(t, map[submovement.MovementType]int{submovement.Rapid: 1, submovement.Slow: 1}, counts)
}

func TestSegmentStore_Replace(t *testing.T) {
	db := newTestDB(t)
	insertTestRun(t, db, "run-1")
	store := db.Segments()

	require.NoError(t, store.InsertTrialSegments("run-1", "t", "p1", testSegments))
	merged := []submovement.Segment{{StartIdx: 7, EndIdx: 86, TStart: 70, TEnd: 860, DurationMs: 790, Type: "rapid+slow", VPeak: 1.389}}
	require.NoError(t, store.InsertTrialSegments("run-1", "t", "p1", merged))

	got, err := store.ListSegments("run-1", "t")
	require.NoError(t, err)
	assert.Equal(t, merged, got)

	trials, err := store.ListTrials("run-1")
	require.NoError(t, err)
	require.Len(t, trials, 1)
	assert.Equal(t, 1, trials[0].SegmentCount)
}

func TestSegmentStore_Errors(t *testing.T) {
	db := newTestDB(t)
	store := db.Segments()

	// Foreign keys reject trials of unknown runs.
	assert.Error(t, store.InsertTrialSegments("no-run", "t", "", testSegments))

	_, err := store.ListSegments("no-run", "t")
	assert.True(t, errors.Is(err, ErrNotFound))

	trials, err := store.ListTrials("no-run")
	require.NoError(t, err)
	assert.Empty(t, trials)
}
