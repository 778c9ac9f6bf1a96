package demux

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ptrs builds parametric events from labels with values 10, 11, ...
func ptrs(labels ...string) []ParametricEvent {
	out := make([]ParametricEvent, len(labels))
	for i, l := range labels {
		out[i] = ParametricEvent{Position: i, Label: l, Result: float64(10 + i), HasResult: true}
	}
	return out
}

func prrs(coords ...Coord) []CompletionEvent {
	out := make([]CompletionEvent, len(coords))
	for i, c := range coords {
		out[i] = CompletionEvent{Position: i, X: c.X, Y: c.Y}
	}
	return out
}

func TestConsume_SequentialScenario(t *testing.T) {
	events := ptrs("1 T1", "1 T1", "2 T2", "2 T2")
	completions := prrs(Coord{0, 0}, Coord{1, 0})

	got := Consume(Names(events), events, completions, Cursor{}, []string{"T1", "T2"}, 2, Sequential)

	want := Table{
		"T1": {{0, 0}: 10, {1, 0}: 11},
		"T2": {{0, 0}: 12, {1, 0}: 13},
	}
	if diff := cmp.Diff(want, got.Delta); diff != "" {
		t.Errorf("table mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, 1, got.Blocks)
	assert.Equal(t, 4, got.Consumed)
	assert.Equal(t, 2, got.Coords)
	assert.False(t, got.Halted)
}

func TestConsume_StopsAtMismatchingBlock(t *testing.T) {
	events := ptrs("T1", "T2", "T1", "T2", "T1", "T3")
	completions := prrs(Coord{0, 0}, Coord{1, 0}, Coord{2, 0})

	got := Consume(Names(events), events, completions, Cursor{}, []string{"T1", "T2"}, 1, Sequential)

	assert.Equal(t, 2, got.Blocks)
	assert.Equal(t, 4, got.Consumed)
	assert.Equal(t, 2, got.Coords)
	assert.False(t, got.Halted)
	_, written := got.Delta.Get("T1", Coord{2, 0})
	assert.False(t, written, "mismatching block must not be written")
}

func TestConsume_SequentialHaltsOnShortage(t *testing.T) {
	events := ptrs("T1", "T1", "T2", "T2", "T1", "T1", "T2", "T2")
	completions := prrs(Coord{0, 0}, Coord{1, 0}, Coord{2, 0})

	got := Consume(Names(events), events, completions, Cursor{}, []string{"T1", "T2"}, 2, Sequential)

	assert.True(t, got.Halted)
	assert.Equal(t, 1, got.Blocks)
	assert.Equal(t, 4, got.Consumed)
	assert.Equal(t, 2, got.Coords)
	_, written := got.Delta.Get("T1", Coord{2, 0})
	assert.False(t, written, "truncated block must not be partially written")
}

func TestConsume_RoundRobinWrapsAround(t *testing.T) {
	events := ptrs("T1", "T1", "T2", "T2")
	completions := prrs(Coord{0, 0}, Coord{1, 0}, Coord{2, 0})

	got := Consume(Names(events), events, completions, Cursor{Coord: 2}, []string{"T1", "T2"}, 2, RoundRobin)

	// Consumption order k=0..3 draws coordinates 2, 0, 1, 2.
	want := Table{
		"T1": {{2, 0}: 10, {0, 0}: 11},
		"T2": {{1, 0}: 12, {2, 0}: 13},
	}
	if diff := cmp.Diff(want, got.Delta); diff != "" {
		t.Errorf("table mismatch (-want +got):\n%s", diff)
	}
	assert.False(t, got.Halted)
	assert.Equal(t, 4, got.Coords)
}

func TestConsume_SkipsMissingResults(t *testing.T) {
	events := ptrs("T1", "T2")
	events[1].HasResult = false
	completions := prrs(Coord{5, 5})

	got := Consume(Names(events), events, completions, Cursor{}, []string{"T1", "T2"}, 1, Sequential)

	assert.Equal(t, 2, got.Consumed)
	assert.Equal(t, Table{"T1": {{5, 5}: 10}}, got.Delta)
}

func TestConsume_LastWriteWinsWithinPass(t *testing.T) {
	events := ptrs("T1", "T1")
	completions := prrs(Coord{0, 0})

	// Two m=1 blocks of [T1] both land on (0,0) under round robin.
	got := Consume(Names(events), events, completions, Cursor{}, []string{"T1"}, 1, RoundRobin)

	require.Equal(t, 2, got.Blocks)
	v, ok := got.Delta.Get("T1", Coord{0, 0})
	assert.True(t, ok)
	assert.Equal(t, 11.0, v)
}

func TestConsume_NoCompletionsHalts(t *testing.T) {
	events := ptrs("T1")
	got := Consume(Names(events), events, nil, Cursor{}, []string{"T1"}, 1, RoundRobin)
	assert.True(t, got.Halted)
	assert.Zero(t, got.Consumed)
}

func TestParsePolicy(t *testing.T) {
	tests := []struct {
		in      string
		want    Policy
		wantErr bool
	}{
		{"", Sequential, false},
		{"sequential", Sequential, false},
		{"Round-Robin", RoundRobin, false},
		{"rr", RoundRobin, false},
		{"roundrobin", RoundRobin, false},
		{"random", "", true},
	}
	for _, tt := range tests {
		got, err := ParsePolicy(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		assert.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}
