package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkoosis/ptrmux/pkg/demux"
)

func TestCompute(t *testing.T) {
	table := demux.Table{
		"VDD": {{X: 1, Y: 0}: 3, {X: 0, Y: 1}: 5, {X: 0, Y: 0}: 1},
		"IDD": {{X: 0, Y: 0}: -2},
		"NIL": {},
	}

	got := Compute(table)
	require.Len(t, got, 3)
	assert.Equal(t, []string{"IDD", "NIL", "VDD"}, []string{got[0].Name, got[1].Name, got[2].Name})

	vdd := got[2]
	assert.Equal(t, 3, vdd.Count)
	assert.Equal(t, 1.0, vdd.Min)
	assert.Equal(t, 5.0, vdd.Max)
	assert.Equal(t, 3.0, vdd.Mean)
	assert.Equal(t, 4.0, vdd.Spread())
	assert.Equal(t, []demux.Coord{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 0, Y: 1}}, vdd.Coords)
	assert.Equal(t, []float64{1, 3, 5}, vdd.Values)

	assert.Zero(t, got[1].Count)
	assert.Nil(t, got[1].Coords)
}

func TestComputeTotals(t *testing.T) {
	table := demux.Table{
		"A": {{X: 0, Y: 0}: 1, {X: 1, Y: 0}: 2},
		"B": {{X: 1, Y: 0}: 3, {X: 2, Y: 0}: 4},
		"C": {},
	}
	totals := ComputeTotals(table, Compute(table))
	assert.Equal(t, Stats{Tests: 3, Coords: 3, Values: 4, Empty: 1}, totals)
}

func TestSortCoords(t *testing.T) {
	cs := []demux.Coord{{X: 2, Y: 1}, {X: -1, Y: 1}, {X: 5, Y: -3}}
	SortCoords(cs)
	assert.Equal(t, []demux.Coord{{X: 5, Y: -3}, {X: -1, Y: 1}, {X: 2, Y: 1}}, cs)
}
