// Package demux reconstructs per-test, per-coordinate measurement tables from
// a flat stream of parametric test events and part completion events.
//
// The stream carries no site or repetition metadata. The repetition multiple
// of each block is inferred from the order and names of the events alone.
package demux

// ParametricEvent is one measured test result, in stream order.
type ParametricEvent struct {
	Position  int     // ordinal of the record in the source log
	Label     string  // free text such as "123 T7"
	Result    float64 // valid only when HasResult is set
	HasResult bool
}

// CompletionEvent marks the end of testing one physical unit.
type CompletionEvent struct {
	Position int
	X        int
	Y        int
}

// Coord is a die-grid coordinate in tester units.
type Coord struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Coord returns the coordinate carried by the completion.
func (c CompletionEvent) Coord() Coord {
	return Coord{X: c.X, Y: c.Y}
}

// Events bundles the two decoded sequences of one test log.
type Events struct {
	Parametric  []ParametricEvent
	Completions []CompletionEvent
}

// Empty reports whether either sequence has no events.
func (e Events) Empty() bool {
	return len(e.Parametric) == 0 || len(e.Completions) == 0
}

// Cursor is the position of a demultiplex pass in both sequences.
type Cursor struct {
	Param int // next parametric event to inspect
	Coord int // next completion to assign
}
