package pattern

// Sparkline represents a word-sized trend graphic using Unicode blocks.
// For a test, Values run in row-major coordinate order.
type Sparkline struct {
	Label  string    `json:"label"`
	Values []float64 `json:"values"`
	Min    float64   `json:"min"` // Min == Max == 0 auto-detects
	Max    float64   `json:"max"`
}

func (s *Sparkline) Type() PatternType { return PatternTypeSparkline }
