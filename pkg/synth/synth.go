// Package synth lays out synthetic event streams with a known base pattern,
// repetition multiple and coordinate list, for fixtures and round-trip checks.
package synth

import (
	"errors"
	"fmt"

	"github.com/dkoosis/ptrmux/pkg/demux"
)

// Layout describes a synthetic stream.
type Layout struct {
	Tests    []string      // base pattern, no duplicates
	Multiple int           // slots per base test in each block
	Coords   []demux.Coord // one per tested unit; len must divide by Multiple
	// Value returns the measurement of test i at coordinate k. Nil uses
	// DefaultValue.
	Value func(test, coord int) float64
}

// DefaultValue gives every (test, coordinate) pair a distinct value.
func DefaultValue(test, coord int) float64 {
	return float64(test*1000+coord) + 0.25
}

// Validate reports a malformed layout.
func (s Layout) Validate() error {
	if len(s.Tests) == 0 {
		return errors.New("synth: no tests")
	}
	seen := make(map[string]bool, len(s.Tests))
	for _, t := range s.Tests {
		if seen[t] {
			return fmt.Errorf("synth: duplicate test %q", t)
		}
		seen[t] = true
	}
	if s.Multiple < 1 {
		return fmt.Errorf("synth: multiple %d < 1", s.Multiple)
	}
	if len(s.Coords) == 0 || len(s.Coords)%s.Multiple != 0 {
		return fmt.Errorf("synth: %d coords is not a positive multiple of %d", len(s.Coords), s.Multiple)
	}
	return nil
}

// Grid returns n coordinates filled row by row, width columns wide.
func Grid(n, width int) []demux.Coord {
	if width < 1 {
		width = 1
	}
	out := make([]demux.Coord, n)
	for i := range out {
		out[i] = demux.Coord{X: i % width, Y: i / width}
	}
	return out
}

// Label is the raw label written for test i, e.g. "100 T1".
func Label(i int, name string) string {
	return fmt.Sprintf("%d %s", 100+i, name)
}

// Generate builds the stream. Each block holds len(Tests)*Multiple
// parametric events, test-major, followed by its Multiple completions.
func Generate(s Layout) (demux.Events, error) {
	if err := s.Validate(); err != nil {
		return demux.Events{}, err
	}
	value := s.Value
	if value == nil {
		value = DefaultValue
	}

	var ev demux.Events
	pos := 0
	for base := 0; base < len(s.Coords); base += s.Multiple {
		for i, name := range s.Tests {
			for r := 0; r < s.Multiple; r++ {
				ev.Parametric = append(ev.Parametric, demux.ParametricEvent{
					Position:  pos,
					Label:     Label(i, name),
					Result:    value(i, base+r),
					HasResult: true,
				})
				pos++
			}
		}
		for r := 0; r < s.Multiple; r++ {
			c := s.Coords[base+r]
			ev.Completions = append(ev.Completions, demux.CompletionEvent{Position: pos, X: c.X, Y: c.Y})
			pos++
		}
	}
	return ev, nil
}

// Expected returns the table a correct sequential demultiplex must produce.
func Expected(s Layout) demux.Table {
	value := s.Value
	if value == nil {
		value = DefaultValue
	}
	t := demux.NewTable()
	for i, name := range s.Tests {
		for k, c := range s.Coords {
			t.Set(name, c, value(i, k))
		}
	}
	return t
}
