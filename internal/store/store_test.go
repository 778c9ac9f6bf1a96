package store

import (
	"context"
	"math"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkoosis/ptrmux/pkg/demux"
)

func openTemp(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "nested", "runs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func sampleResult() demux.Result {
	table := demux.NewTable()
	table.Set("VDD", demux.Coord{X: 1, Y: 1}, 1.25)
	table.Set("VDD", demux.Coord{X: 2, Y: 1}, 1.5)
	table.Set("IDD", demux.Coord{X: 1, Y: 1}, 0.003)
	return demux.Result{
		Table:  table,
		Stats:  demux.PassStats{Blocks: 2, Halted: true},
		Events: 3,
		Coords: 2,
	}
}

func TestSaveRun_RoundTripsTable(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()
	res := sampleResult()

	id, err := s.SaveRun(ctx, "lot1.stdf", demux.Sequential, res)
	require.NoError(t, err)
	assert.Len(t, id, 36)

	got, err := s.Table(ctx, id)
	require.NoError(t, err)
	if diff := cmp.Diff(res.Table, got); diff != "" {
		t.Errorf("table mismatch (-want +got):\n%s", diff)
	}
}

func TestMeasurements_OrderedByTestThenCoord(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()

	id, err := s.SaveRun(ctx, "lot1.stdf", demux.Sequential, sampleResult())
	require.NoError(t, err)

	ms, err := s.Measurements(ctx, id)
	require.NoError(t, err)
	want := []Measurement{
		{Test: "IDD", X: 1, Y: 1, Value: 0.003},
		{Test: "VDD", X: 1, Y: 1, Value: 1.25},
		{Test: "VDD", X: 2, Y: 1, Value: 1.5},
	}
	assert.Equal(t, want, ms)
}

func TestRuns_ListsEachSave(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()

	first, err := s.SaveRun(ctx, "a.stdf", demux.Sequential, sampleResult())
	require.NoError(t, err)
	second, err := s.SaveRun(ctx, "b.ndjson", demux.RoundRobin, demux.Result{Table: demux.NewTable()})
	require.NoError(t, err)
	assert.NotEqual(t, first, second)

	runs, err := s.Runs(ctx)
	require.NoError(t, err)
	require.Len(t, runs, 2)

	byID := map[string]Run{}
	for _, r := range runs {
		byID[r.ID] = r
	}
	assert.Equal(t, "a.stdf", byID[first].Source)
	assert.Equal(t, 3, byID[first].Values)
	assert.True(t, byID[first].Halted)
	assert.Equal(t, string(demux.RoundRobin), byID[second].Policy)
	assert.Equal(t, 0, byID[second].Values)
	assert.False(t, byID[second].CreatedAt.IsZero())
}

func TestOpen_ReopensExistingDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs.db")
	s, err := Open(path)
	require.NoError(t, err)
	id, err := s.SaveRun(context.Background(), "x", demux.Sequential, sampleResult())
	require.NoError(t, err)
	require.NoError(t, s.Close())

	again, err := Open(path)
	require.NoError(t, err)
	defer again.Close()
	assert.Equal(t, path, again.Path())

	ms, err := again.Measurements(context.Background(), id)
	require.NoError(t, err)
	assert.Len(t, ms, 3)
}

func TestTable_ReadsNullAsNaN(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()
	table := demux.NewTable()
	table.Set("T1", demux.Coord{X: 1, Y: 2}, math.NaN())
	table.Set("T1", demux.Coord{X: 2, Y: 2}, 0.5)

	id, err := s.SaveRun(ctx, "lot1.stdf", demux.Sequential, demux.Result{Table: table, Events: 2, Coords: 2})
	require.NoError(t, err)

	got, err := s.Table(ctx, id)
	require.NoError(t, err)
	v, ok := got.Get("T1", demux.Coord{X: 1, Y: 2})
	require.True(t, ok)
	assert.True(t, math.IsNaN(v), "got %v, want NaN", v)
	v, ok = got.Get("T1", demux.Coord{X: 2, Y: 2})
	require.True(t, ok)
	assert.Equal(t, 0.5, v)
}
