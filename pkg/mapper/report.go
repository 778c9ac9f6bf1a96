package mapper

import (
	"github.com/dkoosis/ptrmux/pkg/demux"
	"github.com/dkoosis/ptrmux/pkg/pattern"
)

// FileOutcome is the result of processing one input file. Exactly one of
// Result and Err is set.
type FileOutcome struct {
	Source string
	Result *demux.Result
	Err    error
}

// FromBatch converts several file outcomes into patterns. A single outcome
// maps like FromResult; several are preceded by a batch summary. Decode
// failures become Error patterns rather than hiding the other files.
func FromBatch(outcomes []FileOutcome, opts Options) []pattern.Pattern {
	if len(outcomes) == 1 {
		return fromOutcome(outcomes[0], opts)
	}

	patterns := make([]pattern.Pattern, 0, len(outcomes)*4+1)
	items := make([]pattern.SummaryItem, 0, len(outcomes))
	var failed, halted int
	for _, o := range outcomes {
		item := pattern.SummaryItem{Label: o.Source}
		switch {
		case o.Err != nil:
			failed++
			item.Value, item.Kind = "decode failed", kindError
		case o.Result.Stats.Halted:
			halted++
			item.Value = printer.Sprintf("%d tests, halted", len(o.Result.Table))
			item.Kind = kindWarning
		default:
			item.Value = printer.Sprintf("%d tests × %d values", len(o.Result.Table), o.Result.Table.Len())
			item.Kind = kindSuccess
		}
		items = append(items, item)
	}

	label := printer.Sprintf("BATCH %d files", len(outcomes))
	switch {
	case failed > 0:
		label += printer.Sprintf(" — %d failed", failed)
	case halted > 0:
		label += printer.Sprintf(" — %d halted", halted)
	default:
		label += " — all demultiplexed"
	}
	patterns = append(patterns, &pattern.Summary{
		Label:   label,
		Kind:    pattern.SummaryKindBatch,
		Metrics: items,
	})

	for _, o := range outcomes {
		patterns = append(patterns, fromOutcome(o, opts)...)
	}
	return patterns
}

func fromOutcome(o FileOutcome, opts Options) []pattern.Pattern {
	if o.Err != nil {
		return []pattern.Pattern{&pattern.Error{Source: o.Source, Message: o.Err.Error()}}
	}
	return FromResult(o.Source, *o.Result, opts)
}

// HasErrors reports whether any pattern is an Error.
func HasErrors(patterns []pattern.Pattern) bool {
	for _, p := range patterns {
		if _, ok := p.(*pattern.Error); ok {
			return true
		}
	}
	return false
}
