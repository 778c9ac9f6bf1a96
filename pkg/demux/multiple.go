package demux

// DetectMultiple returns how many consecutive slots each base test occupies
// in the blocks starting at names[start].
//
// Candidates are tried from maxMultiple down to 1 and the first that
// validates wins: data laid out at multiple m also satisfies smaller
// hypotheses over a prefix, so the larger reading must be tried first.
// When nothing validates it returns (1, false).
func DetectMultiple(names []string, start int, pattern []string, maxMultiple int) (int, bool) {
	if len(pattern) == 0 {
		return 1, false
	}
	for m := maxMultiple; m >= 1; m-- {
		if validMultiple(names, start, pattern, m) {
			return m, true
		}
	}
	return 1, false
}

// validMultiple checks that two consecutive cycles of pattern, each base name
// repeated m times, appear at start. Fewer than 2*N*m remaining names is a
// rejection.
func validMultiple(names []string, start int, pattern []string, m int) bool {
	n := len(pattern)
	cycle := n * m
	if start < 0 || start+2*cycle > len(names) {
		return false
	}
	for c := 0; c < 2; c++ {
		if !blockMatches(names, start+c*cycle, pattern, m) {
			return false
		}
	}
	return true
}

// blockMatches reports whether one block of pattern at multiple m sits at
// pos. A block running past the end does not match.
func blockMatches(names []string, pos int, pattern []string, m int) bool {
	if pos < 0 || pos+len(pattern)*m > len(names) {
		return false
	}
	for i, want := range pattern {
		for r := 0; r < m; r++ {
			if names[pos+i*m+r] != want {
				return false
			}
		}
	}
	return true
}
