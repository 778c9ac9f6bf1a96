package pattern

// CoordSample shows the first few coordinates of one test with their values.
type CoordSample struct {
	Test   string       `json:"test"`
	Total  int          `json:"total"` // coordinates before sampling
	Points []CoordPoint `json:"points"`
}

// CoordPoint is one sampled coordinate.
type CoordPoint struct {
	X     int    `json:"x"`
	Y     int    `json:"y"`
	Value string `json:"value"`
}

func (c *CoordSample) Type() PatternType { return PatternTypeCoordSample }
