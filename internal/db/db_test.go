package db

import (
	"math"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := NewDB(filepath.Join(t.TempDir(), "results.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestRecordAndGetRun(t *testing.T) {
	db := newTestDB(t)

	run := &DischargeRun{
		RunID:        uuid.NewString(),
		Site:         "ngwerere",
		AngleMode:    "global",
		HA:           0.12,
		VCorr:        0.9,
		NumPoints:    25,
		NumTimesteps: 125,
	}
	require.NoError(t, db.RecordRun(run))

	got, err := db.GetRun(run.RunID)
	require.NoError(t, err)
	assert.Equal(t, "ngwerere", got.Site)
	assert.Equal(t, "global", got.AngleMode)
	assert.Equal(t, 0.9, got.VCorr)
	assert.Equal(t, 25, got.NumPoints)
	assert.Equal(t, 125, got.NumTimesteps)
	assert.False(t, got.CreatedAt.IsZero(), "CreatedAt should be set by the database")

	_, err = db.GetRun("no-such-run")
	assert.Error(t, err)
}

func TestRecordDischargesRoundTripsNaN(t *testing.T) {
	db := newTestDB(t)

	runID := uuid.NewString()
	require.NoError(t, db.RecordRun(&DischargeRun{RunID: runID, Site: "test"}))

	in := []Discharge{
		{RunID: runID, Quantile: 0.5, Flow: 8.0, FlowNoFill: 6.0},
		{RunID: runID, Quantile: 0.95, Flow: math.NaN(), FlowNoFill: 9.5},
	}
	require.NoError(t, db.RecordDischarges(in))

	out, err := db.GetDischarges(runID)
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, 0.5, out[0].Quantile)
	assert.Equal(t, 8.0, out[0].Flow)
	assert.True(t, math.IsNaN(out[1].Flow), "NaN flow should round-trip via NULL")
	assert.Equal(t, 9.5, out[1].FlowNoFill)
}

func TestRecordPointFlux(t *testing.T) {
	db := newTestDB(t)

	runID := uuid.NewString()
	require.NoError(t, db.RecordRun(&DischargeRun{RunID: runID, Site: "test"}))

	in := []PointFlux{
		{RunID: runID, Quantile: 0.5, PointIdx: 0, S: 0, VEff: 1.0, Q: 2.0, QNoFill: 2.0},
		{RunID: runID, Quantile: 0.5, PointIdx: 1, S: 1, VEff: math.NaN(), Q: math.NaN(), QNoFill: math.NaN()},
		{RunID: runID, Quantile: 0.95, PointIdx: 0, S: 0, VEff: 1.4, Q: 2.8, QNoFill: 2.8},
	}
	require.NoError(t, db.RecordPointFlux(in))

	out, err := db.GetPointFlux(runID, 0.5)
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, 2.0, out[0].Q)
	assert.True(t, math.IsNaN(out[1].Q), "gap point q should come back as NaN")
	assert.True(t, math.IsNaN(out[1].VEff), "gap point v_eff should come back as NaN")
}

func TestListRuns(t *testing.T) {
	db := newTestDB(t)

	for _, site := range []string{"a", "a", "b"} {
		require.NoError(t, db.RecordRun(&DischargeRun{RunID: uuid.NewString(), Site: site}))
	}

	all, err := db.ListRuns("", 10)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	siteA, err := db.ListRuns("a", 10)
	require.NoError(t, err)
	assert.Len(t, siteA, 2)
}
