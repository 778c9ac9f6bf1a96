package demux

import "strings"

// UnknownName is the canonical name of an event with no usable label.
const UnknownName = "Unknown"

// TestName returns the canonical test name of e. A nil event maps to
// UnknownName.
func TestName(e *ParametricEvent) string {
	if e == nil {
		return UnknownName
	}
	return CanonicalName(e.Label)
}

// CanonicalName derives a test name from a raw label: the second
// whitespace-separated token when there are two or more, else the only token.
// Labels like "123 T1" and "T1" both yield "T1".
func CanonicalName(label string) string {
	fields := strings.Fields(label)
	switch len(fields) {
	case 0:
		return UnknownName
	case 1:
		return fields[0]
	default:
		return fields[1]
	}
}

// Names computes the canonical name of every event, in order.
func Names(events []ParametricEvent) []string {
	names := make([]string, len(events))
	for i := range events {
		names[i] = CanonicalName(events[i].Label)
	}
	return names
}
