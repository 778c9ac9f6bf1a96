package render

import (
	"fmt"
	"strings"

	"github.com/dkoosis/ptrmux/pkg/pattern"
)

// LLM renders patterns as terse plain text optimized for AI consumption.
// Zero ANSI codes, one fact per line, SCOPE line first.
type LLM struct{}

// NewLLM creates an LLM renderer.
func NewLLM() *LLM {
	return &LLM{}
}

// Render formats all patterns for LLM consumption. Patterns are emitted in
// input order; the mapper already orders them.
func (l *LLM) Render(patterns []pattern.Pattern) string {
	var sb strings.Builder
	for _, p := range patterns {
		switch v := p.(type) {
		case *pattern.Summary:
			l.renderSummary(&sb, v)
		case *pattern.StatsTable:
			l.renderStatsTable(&sb, v)
		case *pattern.Leaderboard:
			l.renderLeaderboard(&sb, v)
		case *pattern.Sparkline:
			// Sparklines carry no information a model can read.
		case *pattern.CoordSample:
			l.renderCoordSample(&sb, v)
		case *pattern.Error:
			sb.WriteString(fmt.Sprintf("ERROR %s: %s\n", v.Source, v.Message))
		}
	}
	return sb.String()
}

func (l *LLM) renderSummary(sb *strings.Builder, s *pattern.Summary) {
	if sb.Len() > 0 {
		sb.WriteString("\n")
	}
	sb.WriteString("SCOPE: " + s.Label + "\n")
	for _, m := range s.Metrics {
		prefix := "  "
		switch m.Kind {
		case "error":
			prefix = "  ERR "
		case "warning":
			prefix = "  WARN "
		}
		sb.WriteString(prefix + m.Label + ": " + m.Value + "\n")
	}
}

func (l *LLM) renderStatsTable(sb *strings.Builder, t *pattern.StatsTable) {
	sb.WriteString("\n" + t.Label + "\n")
	for _, r := range t.Rows {
		if r.Count == 0 {
			sb.WriteString(fmt.Sprintf("  %s n=0\n", r.Name))
			continue
		}
		sb.WriteString(fmt.Sprintf("  %s n=%d min=%s max=%s mean=%s\n", r.Name, r.Count, r.Min, r.Max, r.Mean))
	}
}

func (l *LLM) renderLeaderboard(sb *strings.Builder, lb *pattern.Leaderboard) {
	if len(lb.Items) == 0 {
		return
	}
	sb.WriteString("\n" + lb.Label + "\n")
	for _, item := range lb.Items {
		sb.WriteString(fmt.Sprintf("  %d. %s %s=%s\n", item.Rank, item.Name, strings.ToLower(lb.MetricName), item.Metric))
	}
}

func (l *LLM) renderCoordSample(sb *strings.Builder, c *pattern.CoordSample) {
	if len(c.Points) == 0 {
		return
	}
	sb.WriteString(fmt.Sprintf("\nCOORDS %s (%d/%d)\n", c.Test, len(c.Points), c.Total))
	for _, p := range c.Points {
		sb.WriteString(fmt.Sprintf("  (%d,%d) %s\n", p.X, p.Y, p.Value))
	}
}
