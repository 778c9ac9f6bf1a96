package mapper

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/dkoosis/ptrmux/pkg/demux"
	"github.com/dkoosis/ptrmux/pkg/pattern"
	"github.com/dkoosis/ptrmux/pkg/stats"
)

const (
	kindSuccess = "success"
	kindError   = "error"
	kindWarning = "warning"
	kindInfo    = "info"
)

// Options controls how much detail the patterns carry.
type Options struct {
	SampleCoords int  // coordinates listed per test; 0 disables samples
	Top          int  // leaderboard size; 0 disables the leaderboard
	Sparklines   bool // one sparkline per leaderboard entry
}

// DefaultOptions lists ten coordinates per test and the five widest tests.
func DefaultOptions() Options {
	return Options{SampleCoords: 10, Top: 5, Sparklines: true}
}

var printer = message.NewPrinter(language.English)

// FromResult converts one file's demux result into patterns.
// Returns: Summary + StatsTable + Leaderboard (+ Sparklines) + CoordSamples.
func FromResult(source string, res demux.Result, opts Options) []pattern.Pattern {
	tests := stats.Compute(res.Table)
	totals := stats.ComputeTotals(res.Table, tests)

	patterns := []pattern.Pattern{fileSummary(source, res, totals)}
	if len(tests) == 0 {
		return patterns
	}

	patterns = append(patterns, statsTable(source, tests))

	if opts.Top > 0 && len(tests) > 1 {
		lb := spreadLeaderboard(tests, opts.Top)
		patterns = append(patterns, lb)
		if opts.Sparklines {
			byName := make(map[string]stats.TestStats, len(tests))
			for _, ts := range tests {
				byName[ts.Name] = ts
			}
			for _, item := range lb.Items {
				ts := byName[item.Name]
				patterns = append(patterns, &pattern.Sparkline{Label: ts.Name, Values: finite(ts.Values)})
			}
		}
	}

	if opts.SampleCoords > 0 {
		for _, ts := range tests {
			patterns = append(patterns, coordSample(ts, opts.SampleCoords))
		}
	}
	return patterns
}

func fileSummary(source string, res demux.Result, totals stats.Stats) *pattern.Summary {
	var metrics []pattern.SummaryItem

	testKind := kindSuccess
	if totals.Tests == 0 {
		testKind = kindWarning
	}
	metrics = append(metrics,
		pattern.SummaryItem{Label: "Tests", Value: printer.Sprintf("%d", totals.Tests), Kind: testKind},
		pattern.SummaryItem{
			Label: "Coordinates",
			Value: printer.Sprintf("%d of %d completions", totals.Coords, res.Coords),
			Kind:  kindInfo,
		},
		pattern.SummaryItem{Label: "Values", Value: printer.Sprintf("%d", totals.Values), Kind: kindInfo},
	)

	if res.Stats.Blocks > 0 {
		metrics = append(metrics, pattern.SummaryItem{
			Label: "Blocks", Value: formatBlocks(res.Stats), Kind: kindInfo,
		})
	}
	if res.Stats.Skipped > 0 {
		metrics = append(metrics, pattern.SummaryItem{
			Label: "Skipped",
			Value: printer.Sprintf("%d of %d events", res.Stats.Skipped, res.Events),
			Kind:  kindWarning,
		})
	}
	if res.Stats.Halted {
		metrics = append(metrics, pattern.SummaryItem{
			Label: "Halted",
			Value: printer.Sprintf("completions exhausted at event %d", res.Cursor.Param),
			Kind:  kindWarning,
		})
	}

	label := printer.Sprintf("DEMUX %d tests × %d coords", totals.Tests, totals.Coords)
	if source != "" {
		label += " (" + source + ")"
	}
	if res.Events == 0 || res.Coords == 0 {
		label = "DEMUX no events"
		if source != "" {
			label += " (" + source + ")"
		}
	}

	return &pattern.Summary{
		Label:   label,
		Kind:    pattern.SummaryKindFile,
		Source:  source,
		Metrics: metrics,
	}
}

// formatBlocks renders "12 (x2: 10, x1: 2)", largest multiple first.
func formatBlocks(s demux.PassStats) string {
	multiples := make([]int, 0, len(s.Multiples))
	for m := range s.Multiples {
		multiples = append(multiples, m)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(multiples)))

	parts := make([]string, 0, len(multiples))
	for _, m := range multiples {
		parts = append(parts, printer.Sprintf("x%d: %d", m, s.Multiples[m]))
	}
	out := printer.Sprintf("%d", s.Blocks)
	if len(parts) > 0 {
		out += " (" + strings.Join(parts, ", ") + ")"
	}
	return out
}

func statsTable(source string, tests []stats.TestStats) *pattern.StatsTable {
	rows := make([]pattern.StatsRow, 0, len(tests))
	for _, ts := range tests {
		row := pattern.StatsRow{Name: ts.Name, Count: ts.Count}
		if ts.Count > 0 {
			row.Min = FormatValue(ts.Min)
			row.Max = FormatValue(ts.Max)
			row.Mean = FormatValue(ts.Mean)
		}
		rows = append(rows, row)
	}
	return &pattern.StatsTable{
		Label:  fmt.Sprintf("Tests (%d)", len(tests)),
		Source: source,
		Rows:   rows,
	}
}

func spreadLeaderboard(tests []stats.TestStats, top int) *pattern.Leaderboard {
	sorted := make([]stats.TestStats, 0, len(tests))
	for _, ts := range tests {
		if ts.Count > 0 && isFinite(ts.Spread()) {
			sorted = append(sorted, ts)
		}
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Spread() > sorted[j].Spread()
	})

	total := len(sorted)
	if len(sorted) > top {
		sorted = sorted[:top]
	}
	items := make([]pattern.LeaderboardItem, 0, len(sorted))
	for i, ts := range sorted {
		items = append(items, pattern.LeaderboardItem{
			Name:   ts.Name,
			Metric: FormatValue(ts.Spread()),
			Value:  ts.Spread(),
			Rank:   i + 1,
		})
	}
	return &pattern.Leaderboard{
		Label:      "Widest spread",
		MetricName: "Spread",
		Items:      items,
		TotalCount: total,
		ShowRank:   true,
	}
}

func coordSample(ts stats.TestStats, n int) *pattern.CoordSample {
	if n > len(ts.Coords) {
		n = len(ts.Coords)
	}
	points := make([]pattern.CoordPoint, 0, n)
	for i := 0; i < n; i++ {
		points = append(points, pattern.CoordPoint{
			X:     ts.Coords[i].X,
			Y:     ts.Coords[i].Y,
			Value: FormatValue(ts.Values[i]),
		})
	}
	return &pattern.CoordSample{Test: ts.Name, Total: ts.Count, Points: points}
}

// FormatValue prints v with nine significant digits, enough to round-trip
// an STDF R4 result.
func FormatValue(v float64) string {
	return strconv.FormatFloat(v, 'g', 9, 64)
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// finite drops NaN and infinite values, which JSON cannot carry.
func finite(values []float64) []float64 {
	out := make([]float64, 0, len(values))
	for _, v := range values {
		if isFinite(v) {
			out = append(out, v)
		}
	}
	return out
}
