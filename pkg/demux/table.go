package demux

import "sort"

// Table maps a test name to the latest value observed at each coordinate.
// A later Set for the same key replaces the earlier value.
type Table map[string]map[Coord]float64

// NewTable returns an empty table.
func NewTable() Table {
	return make(Table)
}

// Set records v for name at c, overwriting any earlier value.
func (t Table) Set(name string, c Coord, v float64) {
	row, ok := t[name]
	if !ok {
		row = make(map[Coord]float64)
		t[name] = row
	}
	row[c] = v
}

// Get returns the value for name at c.
func (t Table) Get(name string, c Coord) (float64, bool) {
	v, ok := t[name][c]
	return v, ok
}

// Merge applies every entry of delta to t, last write wins.
func (t Table) Merge(delta Table) {
	for name, row := range delta {
		for c, v := range row {
			t.Set(name, c, v)
		}
	}
}

// Export returns a deep copy as a plain map of maps.
func (t Table) Export() map[string]map[Coord]float64 {
	out := make(map[string]map[Coord]float64, len(t))
	for name, row := range t {
		cp := make(map[Coord]float64, len(row))
		for c, v := range row {
			cp[c] = v
		}
		out[name] = cp
	}
	return out
}

// Names returns the test names in lexical order.
func (t Table) Names() []string {
	names := make([]string, 0, len(t))
	for name := range t {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the total number of stored values.
func (t Table) Len() int {
	var n int
	for _, row := range t {
		n += len(row)
	}
	return n
}
