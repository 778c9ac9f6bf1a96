package pattern

// SummaryKind identifies the scope of a summary for renderer dispatch.
type SummaryKind string

const (
	SummaryKindFile  SummaryKind = "file"
	SummaryKindBatch SummaryKind = "batch"
)

// Summary represents high-level metrics and counts.
type Summary struct {
	Label   string        `json:"label"`
	Kind    SummaryKind   `json:"kind"`
	Source  string        `json:"source,omitempty"`
	Metrics []SummaryItem `json:"metrics"`
}

// SummaryItem is a single metric in a summary.
type SummaryItem struct {
	Label string `json:"label"` // e.g., "Tests", "Coordinates", "Skipped"
	Value string `json:"value"` // formatted value
	Kind  string `json:"kind"`  // success, error, warning or info
}

func (s *Summary) Type() PatternType { return PatternTypeSummary }
