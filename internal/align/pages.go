package align

// CandidatePages returns the ordered list of source page indices to
// search for a field on the given target page. The same index always
// comes first when valid; the configured offsets follow in priority
// order. Out-of-range and duplicate indices are skipped.
func CandidatePages(targetPage, sourcePageCount int, offsets []int) []int {
	if sourcePageCount <= 0 {
		return nil
	}

	candidates := make([]int, 0, len(offsets)+1)
	seen := make(map[int]bool, len(offsets)+1)

	add := func(idx int) {
		if idx < 0 || idx >= sourcePageCount || seen[idx] {
			return
		}
		seen[idx] = true
		candidates = append(candidates, idx)
	}

	add(targetPage)
	for _, off := range offsets {
		add(targetPage + off)
	}

	return candidates
}
