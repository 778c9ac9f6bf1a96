// Package stats summarises demultiplexed measurement tables.
package stats

import (
	"math"
	"sort"

	"github.com/dkoosis/ptrmux/pkg/demux"
)

// TestStats holds the distribution of one test's values.
type TestStats struct {
	Name   string
	Count  int
	Min    float64
	Max    float64
	Mean   float64
	Coords []demux.Coord // ordered by (Y, X)
	Values []float64     // aligned with Coords
}

// Spread returns Max - Min.
func (s TestStats) Spread() float64 {
	return s.Max - s.Min
}

// Stats holds aggregate counts across all tests.
type Stats struct {
	Tests  int
	Coords int // distinct coordinates with at least one value
	Values int
	Empty  int // tests with no values
}

// Compute returns per-test statistics sorted by name.
func Compute(t demux.Table) []TestStats {
	out := make([]TestStats, 0, len(t))
	for _, name := range t.Names() {
		out = append(out, summarize(name, t[name]))
	}
	return out
}

// ComputeTotals aggregates statistics from per-test results.
func ComputeTotals(t demux.Table, tests []TestStats) Stats {
	s := Stats{Tests: len(tests)}
	coords := make(map[demux.Coord]struct{})
	for _, row := range t {
		for c := range row {
			coords[c] = struct{}{}
		}
	}
	s.Coords = len(coords)
	for _, ts := range tests {
		s.Values += ts.Count
		if ts.Count == 0 {
			s.Empty++
		}
	}
	return s
}

func summarize(name string, row map[demux.Coord]float64) TestStats {
	ts := TestStats{Name: name, Count: len(row)}
	if len(row) == 0 {
		return ts
	}
	ts.Coords = make([]demux.Coord, 0, len(row))
	for c := range row {
		ts.Coords = append(ts.Coords, c)
	}
	SortCoords(ts.Coords)

	ts.Min, ts.Max = math.Inf(1), math.Inf(-1)
	ts.Values = make([]float64, len(ts.Coords))
	var sum float64
	for i, c := range ts.Coords {
		v := row[c]
		ts.Values[i] = v
		sum += v
		if v < ts.Min {
			ts.Min = v
		}
		if v > ts.Max {
			ts.Max = v
		}
	}
	ts.Mean = sum / float64(len(row))
	return ts
}

// SortCoords orders coordinates row-major: by Y, then X.
func SortCoords(cs []demux.Coord) {
	sort.Slice(cs, func(i, j int) bool {
		if cs[i].Y != cs[j].Y {
			return cs[i].Y < cs[j].Y
		}
		return cs[i].X < cs[j].X
	})
}
