package pattern

// StatsTable lists the value distribution of every demultiplexed test.
type StatsTable struct {
	Label  string     `json:"label"`
	Source string     `json:"source,omitempty"`
	Rows   []StatsRow `json:"rows"`
}

// StatsRow is one test's distribution. Values are pre-formatted.
type StatsRow struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
	Min   string `json:"min"`
	Max   string `json:"max"`
	Mean  string `json:"mean"`
}

func (t *StatsTable) Type() PatternType { return PatternTypeStatsTable }
