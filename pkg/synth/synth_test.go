package synth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkoosis/ptrmux/pkg/demux"
)

func TestGenerate_Layout(t *testing.T) {
	layout := Layout{Tests: []string{"T1", "T2"}, Multiple: 2, Coords: Grid(4, 2)}
	ev, err := Generate(layout)
	require.NoError(t, err)

	labels := make([]string, len(ev.Parametric))
	for i, p := range ev.Parametric {
		labels[i] = p.Label
	}
	assert.Equal(t, []string{
		"100 T1", "100 T1", "101 T2", "101 T2",
		"100 T1", "100 T1", "101 T2", "101 T2",
	}, labels)

	require.Len(t, ev.Completions, 4)
	assert.Equal(t, demux.Coord{X: 1, Y: 1}, ev.Completions[3].Coord())

	// Each block's completions follow its parametric events.
	assert.Greater(t, ev.Completions[0].Position, ev.Parametric[3].Position)
	assert.Less(t, ev.Completions[1].Position, ev.Parametric[4].Position)

	// Slot r of test i in block b holds coordinate b*m+r.
	assert.Equal(t, DefaultValue(1, 3), ev.Parametric[7].Result)
}

func TestExpected(t *testing.T) {
	layout := Layout{Tests: []string{"A"}, Multiple: 1, Coords: Grid(3, 3)}
	want := demux.Table{"A": {{X: 0, Y: 0}: 0.25, {X: 1, Y: 0}: 1.25, {X: 2, Y: 0}: 2.25}}
	assert.Equal(t, want, Expected(layout))
}

func TestSpec_Validate(t *testing.T) {
	tests := []struct {
		name string
		layout Layout
	}{
		{"no tests", Layout{Multiple: 1, Coords: Grid(1, 1)}},
		{"duplicate", Layout{Tests: []string{"A", "A"}, Multiple: 1, Coords: Grid(1, 1)}},
		{"zero multiple", Layout{Tests: []string{"A"}, Coords: Grid(1, 1)}},
		{"no coords", Layout{Tests: []string{"A"}, Multiple: 1}},
		{"ragged coords", Layout{Tests: []string{"A"}, Multiple: 2, Coords: Grid(3, 3)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, tt.layout.Validate())
			_, err := Generate(tt.layout)
			assert.Error(t, err)
		})
	}
}

func TestGrid(t *testing.T) {
	assert.Equal(t, []demux.Coord{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 0, Y: 1}}, Grid(3, 2))
	assert.Len(t, Grid(2, 0), 2)
}
