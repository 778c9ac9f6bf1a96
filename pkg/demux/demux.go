package demux

import "go.uber.org/zap"

// Defaults for the detection bounds. Testers rarely interleave more than
// eight ways.
const (
	DefaultMaxLookahead = 32
	DefaultMaxMultiple  = 8
)

// Options tunes a demultiplex pass. Zero values fall back to the defaults.
type Options struct {
	MaxLookahead int    // events inspected by base pattern detection
	MaxMultiple  int    // largest repetition multiple tried
	Policy       Policy // coordinate attribution
	Logger       *zap.Logger
}

// DefaultOptions returns the documented defaults with the Sequential policy.
func DefaultOptions() Options {
	return Options{
		MaxLookahead: DefaultMaxLookahead,
		MaxMultiple:  DefaultMaxMultiple,
		Policy:       Sequential,
	}
}

func (o Options) withDefaults() Options {
	if o.MaxLookahead <= 0 {
		o.MaxLookahead = DefaultMaxLookahead
	}
	if o.MaxMultiple <= 0 {
		o.MaxMultiple = DefaultMaxMultiple
	}
	if o.Policy == "" {
		o.Policy = Sequential
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	return o
}

// Step is the outcome of one detect-and-consume iteration.
type Step struct {
	From     Cursor
	Cursor   Cursor // where the next step starts
	Pattern  []string
	Multiple int
	Detected bool // Multiple validated rather than defaulted to 1
	Blocks   int
	Consumed int
	Skipped  bool // nothing consumed, position advanced by one
	Halted   bool // the pass ends after this step
	Delta    Table
}

// PassStats counts what a full pass did.
type PassStats struct {
	Steps      int         `json:"steps"`
	Blocks     int         `json:"blocks"`
	Consumed   int         `json:"consumed"`
	Skipped    int         `json:"skipped"`
	CoordsUsed int         `json:"coords_used"` // completion draws; RoundRobin may wrap past Coords
	Halted     bool        `json:"halted"`
	Multiples  map[int]int `json:"multiples"` // blocks consumed per multiple
}

// Result is the table produced by a pass plus how it got there.
type Result struct {
	Table  Table
	Stats  PassStats
	Cursor Cursor
	Events int // parametric events in the input
	Coords int // completions in the input
}

// Demuxer holds the immutable inputs of one pass.
type Demuxer struct {
	events      []ParametricEvent
	completions []CompletionEvent
	names       []string
	opts        Options
}

// New prepares a pass over ev. Canonical names are computed once here.
func New(ev Events, opts Options) *Demuxer {
	return &Demuxer{
		events:      ev.Parametric,
		completions: ev.Completions,
		names:       Names(ev.Parametric),
		opts:        opts.withDefaults(),
	}
}

// Done reports whether c has reached the end of the parametric sequence.
func (d *Demuxer) Done(c Cursor) bool {
	return c.Param >= len(d.events)
}

// Step runs one detect-and-consume iteration from c. It does not mutate d;
// the returned Delta holds the values written by this step only.
func (d *Demuxer) Step(c Cursor) Step {
	st := Step{From: c, Cursor: c, Multiple: 1}
	if d.Done(c) {
		return st
	}
	log := d.opts.Logger

	st.Pattern = DetectBasePattern(d.names, c.Param, d.opts.MaxLookahead)
	if len(st.Pattern) == 0 {
		st.Skipped = true
		st.Cursor.Param++
		return st
	}
	st.Multiple, st.Detected = DetectMultiple(d.names, c.Param, st.Pattern, d.opts.MaxMultiple)

	cons := Consume(d.names, d.events, d.completions, c, st.Pattern, st.Multiple, d.opts.Policy)
	st.Delta = cons.Delta
	st.Blocks = cons.Blocks
	st.Consumed = cons.Consumed
	st.Halted = cons.Halted
	st.Cursor = Cursor{Param: c.Param + cons.Consumed, Coord: c.Coord + cons.Coords}

	switch {
	case cons.Blocks > 0:
		log.Debug("consumed blocks",
			zap.Int("pos", c.Param),
			zap.Strings("pattern", st.Pattern),
			zap.Int("multiple", st.Multiple),
			zap.Int("blocks", cons.Blocks))
	case !cons.Halted:
		st.Skipped = true
		st.Cursor.Param++
		log.Debug("no block matched, skipping event",
			zap.Int("pos", c.Param),
			zap.Strings("pattern", st.Pattern),
			zap.Int("multiple", st.Multiple))
	}
	if cons.Halted {
		log.Debug("completions exhausted, ending pass",
			zap.Int("pos", st.Cursor.Param),
			zap.Int("coord", st.Cursor.Coord),
			zap.Int("completions", len(d.completions)))
	}
	return st
}

// Run iterates Step from the start until the parametric sequence is exhausted
// or a step halts, merging every delta into one table.
func (d *Demuxer) Run() Result {
	res := Result{
		Table:  NewTable(),
		Events: len(d.events),
		Coords: len(d.completions),
		Stats:  PassStats{Multiples: make(map[int]int)},
	}
	if (Events{Parametric: d.events, Completions: d.completions}).Empty() {
		return res
	}

	var cur Cursor
	for !d.Done(cur) {
		st := d.Step(cur)
		res.Stats.Steps++
		res.Table.Merge(st.Delta)
		res.Stats.Blocks += st.Blocks
		res.Stats.Consumed += st.Consumed
		if st.Blocks > 0 {
			res.Stats.Multiples[st.Multiple] += st.Blocks
		}
		if st.Skipped {
			res.Stats.Skipped++
		}
		res.Stats.CoordsUsed += st.Cursor.Coord - st.From.Coord
		cur = st.Cursor
		if st.Halted {
			res.Stats.Halted = true
			break
		}
	}
	res.Cursor = cur

	d.opts.Logger.Debug("demux pass complete",
		zap.Int("events", len(d.events)),
		zap.Int("completions", len(d.completions)),
		zap.Int("tests", len(res.Table)),
		zap.Int("steps", res.Stats.Steps),
		zap.Int("skipped", res.Stats.Skipped),
		zap.Bool("halted", res.Stats.Halted))
	return res
}

// Run demultiplexes ev with opts in a single call.
func Run(ev Events, opts Options) Result {
	return New(ev, opts).Run()
}
