// Package eventjson reads and writes decoded test-log events as NDJSON,
// one record per line:
//
//	{"kind":"ptr","label":"123 T1","result":1.25}
//	{"kind":"prr","x":3,"y":-1}
package eventjson

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/dkoosis/ptrmux/pkg/demux"
)

// Record kinds.
const (
	KindPTR = "ptr"
	KindPRR = "prr"
)

// Line is a single NDJSON record.
type Line struct {
	Kind   string   `json:"kind"`
	Label  string   `json:"label,omitempty"`
	Result *float64 `json:"result,omitempty"`
	X      *int     `json:"x,omitempty"`
	Y      *int     `json:"y,omitempty"`
}

// ParseStream parses NDJSON events from r. Position counts accepted records
// across both kinds. Returns the events, the number of malformed lines
// skipped, and any read error.
func ParseStream(r io.Reader) (demux.Events, int, error) {
	var ev demux.Events
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var malformed, pos int
	for scanner.Scan() {
		raw := scanner.Bytes()
		if len(raw) == 0 {
			continue
		}
		var line Line
		if err := json.Unmarshal(raw, &line); err != nil {
			malformed++
			continue
		}
		switch line.Kind {
		case KindPTR:
			pe := demux.ParametricEvent{Position: pos, Label: line.Label}
			if line.Result != nil {
				pe.Result, pe.HasResult = *line.Result, true
			}
			ev.Parametric = append(ev.Parametric, pe)
		case KindPRR:
			if line.X == nil || line.Y == nil {
				malformed++
				continue
			}
			ev.Completions = append(ev.Completions, demux.CompletionEvent{Position: pos, X: *line.X, Y: *line.Y})
		default:
			malformed++
			continue
		}
		pos++
	}
	if err := scanner.Err(); err != nil {
		return ev, malformed, fmt.Errorf("scanning events: %w", err)
	}
	return ev, malformed, nil
}

// positioned pairs a line with its stream position for interleaving.
type positioned struct {
	pos  int
	line Line
}

// Write encodes ev as NDJSON, interleaving both sequences by Position.
func Write(w io.Writer, ev demux.Events) error {
	lines := make([]positioned, 0, len(ev.Parametric)+len(ev.Completions))
	for _, pe := range ev.Parametric {
		l := Line{Kind: KindPTR, Label: pe.Label}
		if pe.HasResult {
			v := pe.Result
			l.Result = &v
		}
		lines = append(lines, positioned{pe.Position, l})
	}
	for _, ce := range ev.Completions {
		x, y := ce.X, ce.Y
		lines = append(lines, positioned{ce.Position, Line{Kind: KindPRR, X: &x, Y: &y}})
	}
	sort.SliceStable(lines, func(i, j int) bool { return lines[i].pos < lines[j].pos })

	bw := bufio.NewWriter(w)
	enc := json.NewEncoder(bw)
	for _, l := range lines {
		if err := enc.Encode(l.line); err != nil {
			return fmt.Errorf("encoding event: %w", err)
		}
	}
	return bw.Flush()
}

// ParseBytes is a convenience for parsing from a byte slice.
func ParseBytes(data []byte) (demux.Events, int, error) {
	return ParseStream(bytes.NewReader(data))
}
