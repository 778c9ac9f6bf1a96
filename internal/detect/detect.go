// Package detect sniffs input to determine the event log format.
package detect

import (
	"encoding/json"
)

// Format represents a recognized input format.
type Format int

const (
	Unknown   Format = iota
	STDF             // binary STDF V4, starts with a FAR record
	EventJSON        // NDJSON ptr/prr event stream
)

func (f Format) String() string {
	switch f {
	case STDF:
		return "stdf"
	case EventJSON:
		return "eventjson"
	default:
		return "unknown"
	}
}

// Sniff examines the first bytes of input to determine format.
// Input must contain at least the first record or line.
func Sniff(data []byte) Format {
	if isFAR(data) {
		return STDF
	}

	// Trim leading whitespace
	for len(data) > 0 && (data[0] == ' ' || data[0] == '\t' || data[0] == '\n' || data[0] == '\r') {
		data = data[1:]
	}
	if len(data) == 0 || data[0] != '{' {
		return Unknown
	}
	if isEventJSON(data) {
		return EventJSON
	}
	return Unknown
}

// isFAR checks for a FAR header (REC_TYP 0, REC_SUB 10) with REC_LEN 2 in
// either byte order.
func isFAR(data []byte) bool {
	if len(data) < 4 || data[2] != 0 || data[3] != 10 {
		return false
	}
	return (data[0] == 2 && data[1] == 0) || (data[0] == 0 && data[1] == 2)
}

func isEventJSON(data []byte) bool {
	// Find first complete line
	end := 0
	for end < len(data) && data[end] != '\n' {
		end++
	}

	var probe struct {
		Kind string `json:"kind"`
	}
	if err := json.Unmarshal(data[:end], &probe); err != nil {
		return false
	}
	return probe.Kind == "ptr" || probe.Kind == "prr"
}
