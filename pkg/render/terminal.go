package render

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/dkoosis/ptrmux/pkg/pattern"
)

const maxNameWidth = 40

// Terminal renders patterns as styled terminal output via lipgloss.
type Terminal struct {
	theme Theme
	width int
}

// NewTerminal creates a terminal renderer with the given theme.
func NewTerminal(theme Theme, width int) *Terminal {
	if width <= 0 {
		width = 80
	}
	return &Terminal{theme: theme, width: width}
}

// Render formats all patterns for terminal display.
func (t *Terminal) Render(patterns []pattern.Pattern) string {
	var sections []string
	for _, p := range patterns {
		s := t.renderOne(p)
		if s != "" {
			sections = append(sections, s)
		}
	}
	return strings.Join(sections, "\n")
}

func (t *Terminal) renderOne(p pattern.Pattern) string {
	switch v := p.(type) {
	case *pattern.Summary:
		return t.renderSummary(v)
	case *pattern.Leaderboard:
		return t.renderLeaderboard(v)
	case *pattern.StatsTable:
		return t.renderStatsTable(v)
	case *pattern.Sparkline:
		return t.renderSparkline(v)
	case *pattern.CoordSample:
		return t.renderCoordSample(v)
	case *pattern.Error:
		return t.renderError(v)
	default:
		return ""
	}
}

func (t *Terminal) renderSummary(s *pattern.Summary) string {
	var sb strings.Builder
	if s.Label != "" {
		sb.WriteString(t.theme.Bold.Render(s.Label))
		sb.WriteString("\n")
	}
	for _, m := range s.Metrics {
		sb.WriteString("  ")
		icon, style := t.iconStyle(m.Kind)
		sb.WriteString(style.Render(icon + " " + m.Label + ": " + m.Value))
		sb.WriteString("\n")
	}
	return sb.String()
}

func (t *Terminal) renderLeaderboard(l *pattern.Leaderboard) string {
	if len(l.Items) == 0 {
		return ""
	}
	var sb strings.Builder
	if l.Label != "" {
		header := l.Label
		if l.TotalCount > len(l.Items) {
			header += fmt.Sprintf(" (top %d of %d)", len(l.Items), l.TotalCount)
		}
		sb.WriteString(t.theme.Bold.Render(header))
		sb.WriteString("\n")
	}

	maxName, maxMetric := 0, 0
	for _, item := range l.Items {
		maxName = max(maxName, runewidth.StringWidth(item.Name))
		maxMetric = max(maxMetric, runewidth.StringWidth(item.Metric))
	}
	maxName = min(maxName, maxNameWidth)

	for _, item := range l.Items {
		sb.WriteString("  ")
		if l.ShowRank {
			sb.WriteString(t.theme.Muted.Render(fmt.Sprintf("%2d. ", item.Rank)))
		}
		sb.WriteString(t.theme.Primary.Render(padRight(truncate(item.Name, maxName), maxName)))
		sb.WriteString("  ")
		sb.WriteString(t.theme.Warning.Render(padLeft(item.Metric, maxMetric)))
		sb.WriteString("\n")
	}
	return sb.String()
}

func (t *Terminal) renderStatsTable(st *pattern.StatsTable) string {
	if len(st.Rows) == 0 {
		return ""
	}
	var sb strings.Builder
	if st.Label != "" {
		sb.WriteString(t.theme.Bold.Render(st.Label))
		sb.WriteString("\n")
	}

	headers := [5]string{"test", "n", "min", "max", "mean"}
	widths := [5]int{}
	for i, h := range headers {
		widths[i] = runewidth.StringWidth(h)
	}
	cells := make([][5]string, 0, len(st.Rows))
	for _, r := range st.Rows {
		c := [5]string{r.Name, fmt.Sprintf("%d", r.Count), r.Min, r.Max, r.Mean}
		for i := range c {
			widths[i] = max(widths[i], runewidth.StringWidth(c[i]))
		}
		cells = append(cells, c)
	}
	widths[0] = min(widths[0], maxNameWidth)

	sb.WriteString("  ")
	sb.WriteString(t.theme.Muted.Render(t.row(headers, widths)))
	sb.WriteString("\n")
	for i, c := range cells {
		sb.WriteString("  ")
		icon, style := t.theme.Icons.Pass, t.theme.Success
		if st.Rows[i].Count == 0 {
			icon, style = t.theme.Icons.Warn, t.theme.Warning
		}
		sb.WriteString(style.Render(icon))
		sb.WriteString(" ")
		sb.WriteString(padRight(truncate(c[0], widths[0]), widths[0]))
		for j := 1; j < len(c); j++ {
			sb.WriteString("  ")
			sb.WriteString(t.theme.Value.Render(padLeft(c[j], widths[j])))
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// row lays out a header line, leaving room for the status icon column.
func (t *Terminal) row(c [5]string, widths [5]int) string {
	iconWidth := runewidth.StringWidth(t.theme.Icons.Pass) + 1
	var sb strings.Builder
	sb.WriteString(strings.Repeat(" ", iconWidth))
	sb.WriteString(padRight(c[0], widths[0]))
	for j := 1; j < len(c); j++ {
		sb.WriteString("  ")
		sb.WriteString(padLeft(c[j], widths[j]))
	}
	return sb.String()
}

func (t *Terminal) renderSparkline(s *pattern.Sparkline) string {
	if len(s.Values) == 0 {
		return ""
	}
	var sb strings.Builder
	if s.Label != "" {
		sb.WriteString(t.theme.Primary.Render(s.Label + ": "))
	}

	// Leave room for the label and trailing value.
	budget := t.width - runewidth.StringWidth(s.Label) - 20
	values := downsample(s.Values, max(budget, 8))
	sb.WriteString(t.theme.Success.Render(Spark(values, s.Min, s.Max)))

	latest := s.Values[len(s.Values)-1]
	sb.WriteString(t.theme.Muted.Render(fmt.Sprintf(" %d pts, last %.4g", len(s.Values), latest)))
	sb.WriteString("\n")
	return sb.String()
}

func (t *Terminal) renderCoordSample(c *pattern.CoordSample) string {
	if len(c.Points) == 0 {
		return ""
	}
	var sb strings.Builder
	header := fmt.Sprintf("%s (%d coords)", c.Test, c.Total)
	if c.Total > len(c.Points) {
		header = fmt.Sprintf("%s (first %d of %d coords)", c.Test, len(c.Points), c.Total)
	}
	sb.WriteString(t.theme.Bold.Render(header))
	sb.WriteString("\n")

	coords := make([]string, len(c.Points))
	maxCoord := 0
	for i, p := range c.Points {
		coords[i] = fmt.Sprintf("(%d, %d)", p.X, p.Y)
		maxCoord = max(maxCoord, len(coords[i]))
	}
	for i, p := range c.Points {
		sb.WriteString("  ")
		sb.WriteString(t.theme.Muted.Render(padRight(coords[i], maxCoord)))
		sb.WriteString(" " + t.theme.Icons.Arrow + " ")
		sb.WriteString(t.theme.Value.Render(p.Value))
		sb.WriteString("\n")
	}
	return sb.String()
}

func (t *Terminal) renderError(e *pattern.Error) string {
	var sb strings.Builder
	sb.WriteString(t.theme.Error.Render(t.theme.Icons.Fail + " " + e.Source))
	sb.WriteString("\n    ")
	sb.WriteString(t.theme.Muted.Render(e.Message))
	sb.WriteString("\n")
	return sb.String()
}

func (t *Terminal) iconStyle(kind string) (string, lipgloss.Style) {
	switch kind {
	case "success":
		return t.theme.Icons.Pass, t.theme.Success
	case "error":
		return t.theme.Icons.Fail, t.theme.Error
	case "warning":
		return t.theme.Icons.Warn, t.theme.Warning
	default:
		return t.theme.Icons.Info, t.theme.Primary
	}
}

// Spark draws values as Unicode block characters. Min == Max == 0 scales to
// the data.
func Spark(values []float64, minVal, maxVal float64) string {
	if len(values) == 0 {
		return ""
	}
	if minVal == 0 && maxVal == 0 {
		minVal, maxVal = values[0], values[0]
		for _, v := range values {
			minVal = min(minVal, v)
			maxVal = max(maxVal, v)
		}
	}
	valueRange := maxVal - minVal
	if valueRange == 0 {
		valueRange = 1
	}

	blocks := []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}
	var spark strings.Builder
	for _, v := range values {
		idx := int((v - minVal) / valueRange * 7)
		idx = max(0, min(idx, 7))
		spark.WriteRune(blocks[idx])
	}
	return spark.String()
}

// downsample averages values into at most n buckets.
func downsample(values []float64, n int) []float64 {
	if len(values) <= n {
		return values
	}
	out := make([]float64, n)
	for i := range out {
		lo := i * len(values) / n
		hi := (i + 1) * len(values) / n
		var sum float64
		for _, v := range values[lo:hi] {
			sum += v
		}
		out[i] = sum / float64(hi-lo)
	}
	return out
}

func truncate(s string, width int) string {
	if runewidth.StringWidth(s) <= width {
		return s
	}
	return runewidth.Truncate(s, width, "...")
}

func padRight(s string, width int) string {
	return runewidth.FillRight(s, width)
}

func padLeft(s string, width int) string {
	return runewidth.FillLeft(s, width)
}
