// Package pattern defines the semantic data types for ptrmux reports.
// Patterns are pure data; renderers decide presentation.
package pattern

// PatternType identifies the kind of visualization pattern.
type PatternType string

const (
	PatternTypeSummary     PatternType = "summary"
	PatternTypeLeaderboard PatternType = "leaderboard"
	PatternTypeStatsTable  PatternType = "stats-table"
	PatternTypeSparkline   PatternType = "sparkline"
	PatternTypeCoordSample PatternType = "coord-sample"
	PatternTypeError       PatternType = "error"
)

// Pattern is the interface all visualization patterns implement.
// Patterns hold data; renderers decide how to present it.
type Pattern interface {
	Type() PatternType
}

// Error reports a file that could not be decoded.
type Error struct {
	Source  string `json:"source"`
	Message string `json:"message"`
}

func (e *Error) Type() PatternType { return PatternTypeError }
