package demux

import (
	"fmt"
	"strings"
)

// Policy selects how consumed events are attributed to completions.
type Policy string

const (
	// Sequential maps repeat slot r of every base test in a block to the r-th
	// completion from the cursor. A block with too few completions left ends
	// the pass.
	Sequential Policy = "sequential"

	// RoundRobin maps the k-th consumed event to completion
	// (cursor + k) mod len(completions), reusing coordinates once they run out.
	RoundRobin Policy = "round-robin"
)

// ParsePolicy resolves a policy name. The empty string selects Sequential.
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", string(Sequential):
		return Sequential, nil
	case string(RoundRobin), "roundrobin", "rr":
		return RoundRobin, nil
	default:
		return "", fmt.Errorf("unknown policy %q (expected sequential or round-robin)", s)
	}
}

// Consumption is the outcome of consuming blocks at one cursor.
type Consumption struct {
	Blocks   int   // whole blocks consumed
	Consumed int   // parametric events consumed
	Coords   int   // completions used
	Halted   bool  // the pass must stop here
	Delta    Table // values written by the consumed blocks
}

// Consume walks whole blocks of len(pattern)*multiple events from cur while
// they keep matching pattern. A mismatching block is neither consumed nor
// written. names must be Names(events).
func Consume(names []string, events []ParametricEvent, completions []CompletionEvent,
	cur Cursor, pattern []string, multiple int, policy Policy) Consumption {
	out := Consumption{Delta: NewTable()}
	if len(pattern) == 0 || multiple < 1 {
		return out
	}
	if len(completions) == 0 {
		out.Halted = true
		return out
	}

	blockSize := len(pattern) * multiple
	for {
		pos := cur.Param + out.Consumed
		if !blockMatches(names, pos, pattern, multiple) {
			return out
		}

		coord := cur.Coord + out.Coords
		switch policy {
		case RoundRobin:
			k := 0
			for i, name := range pattern {
				for r := 0; r < multiple; r++ {
					ev := events[pos+i*multiple+r]
					c := completions[(coord+k)%len(completions)].Coord()
					k++
					if ev.HasResult {
						out.Delta.Set(name, c, ev.Result)
					}
				}
			}
			out.Coords += blockSize
		default:
			if coord+multiple > len(completions) {
				out.Halted = true
				return out
			}
			for i, name := range pattern {
				for r := 0; r < multiple; r++ {
					ev := events[pos+i*multiple+r]
					if ev.HasResult {
						out.Delta.Set(name, completions[coord+r].Coord(), ev.Result)
					}
				}
			}
			out.Coords += multiple
		}

		out.Consumed += blockSize
		out.Blocks++
	}
}
