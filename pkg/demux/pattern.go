package demux

// DetectBasePattern infers the distinct test names making up one nominal cycle
// starting at names[start].
//
// Scanning stops at the first name that returns to an earlier entry, or after
// lookahead events. A name equal to the one immediately before it extends the
// current run, so a block laid out as T1 T1 T2 T2 yields [T1 T2].
// The result is empty only when start is at or past the end. A lookahead
// below 1 scans to the end of names.
func DetectBasePattern(names []string, start, lookahead int) []string {
	if start < 0 || start >= len(names) {
		return nil
	}
	end := len(names)
	if lookahead >= 1 && lookahead < end-start {
		end = start + lookahead
	}

	pattern := make([]string, 0, 8)
	seen := make(map[string]struct{}, 8)
	for i := start; i < end; i++ {
		name := names[i]
		if _, ok := seen[name]; ok {
			if i > start && name == names[i-1] {
				continue
			}
			break
		}
		seen[name] = struct{}{}
		pattern = append(pattern, name)
	}
	return pattern
}
