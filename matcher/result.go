package matcher

// Status describes the outcome for a single page pair or singleton.
type Status string

const (
	StatusMatched        Status = "matched"
	StatusUnmatchedLeft  Status = "unmatched_left"
	StatusUnmatchedRight Status = "unmatched_right"
)

// MatchResult is the outcome for one page pair or one unmatched page.
// A matched result has both indices set; an unmatched result has exactly
// the corresponding index set.
type MatchResult struct {
	LeftIndex    *int    `json:"left_index"`
	RightIndex   *int    `json:"right_index"`
	Status       Status  `json:"status"`
	Similarity   float64 `json:"similarity"`
	HashDistance int     `json:"hash_distance"`
	IsManual     bool    `json:"is_manual"`
}

// HasDifference reports whether the pair should be reviewed. Unmatched
// pages always count as differing.
func (m MatchResult) HasDifference() bool {
	if m.Status != StatusMatched {
		return true
	}
	return m.Similarity < 0.99
}

// MatchedPair is a convenience view of a matched result.
type MatchedPair struct {
	LeftIndex  int
	RightIndex int
	Similarity float64
}

// MatchingResult is the complete output of one matching run.
type MatchingResult struct {
	Matches        []MatchResult `json:"matches"`
	LeftUnmatched  []int         `json:"left_unmatched"`
	RightUnmatched []int         `json:"right_unmatched"`
}

// MatchForLeft returns the result referencing the given left page index.
func (r *MatchingResult) MatchForLeft(leftIndex int) *MatchResult {
	for i := range r.Matches {
		if r.Matches[i].LeftIndex != nil && *r.Matches[i].LeftIndex == leftIndex {
			return &r.Matches[i]
		}
	}
	return nil
}

// MatchForRight returns the result referencing the given right page index.
func (r *MatchingResult) MatchForRight(rightIndex int) *MatchResult {
	for i := range r.Matches {
		if r.Matches[i].RightIndex != nil && *r.Matches[i].RightIndex == rightIndex {
			return &r.Matches[i]
		}
	}
	return nil
}

// MatchedPairs returns all matched (left, right, similarity) triples.
func (r *MatchingResult) MatchedPairs() []MatchedPair {
	var pairs []MatchedPair
	for _, m := range r.Matches {
		if m.Status == StatusMatched && m.LeftIndex != nil && m.RightIndex != nil {
			pairs = append(pairs, MatchedPair{
				LeftIndex:  *m.LeftIndex,
				RightIndex: *m.RightIndex,
				Similarity: m.Similarity,
			})
		}
	}
	return pairs
}

// SetManualMatch sets or updates a match by hand. Any existing result
// referencing either index is removed first. With both indices given the
// new result is a matched pair (similarity forced to 1.0 until a diff
// pass recalculates it); with one index given the page is pinned as
// unmatched on its side.
func (r *MatchingResult) SetManualMatch(leftIndex, rightIndex *int) {
	kept := r.Matches[:0]
	for _, m := range r.Matches {
		if leftIndex != nil && m.LeftIndex != nil && *m.LeftIndex == *leftIndex {
			continue
		}
		if rightIndex != nil && m.RightIndex != nil && *m.RightIndex == *rightIndex {
			continue
		}
		kept = append(kept, m)
	}
	r.Matches = kept

	if leftIndex != nil {
		r.LeftUnmatched = discardIndex(r.LeftUnmatched, *leftIndex)
	}
	if rightIndex != nil {
		r.RightUnmatched = discardIndex(r.RightUnmatched, *rightIndex)
	}

	switch {
	case leftIndex != nil && rightIndex != nil:
		r.Matches = append(r.Matches, MatchResult{
			LeftIndex:  leftIndex,
			RightIndex: rightIndex,
			Status:     StatusMatched,
			Similarity: 1.0,
			IsManual:   true,
		})
	case leftIndex != nil:
		r.LeftUnmatched = insertIndex(r.LeftUnmatched, *leftIndex)
		r.Matches = append(r.Matches, MatchResult{
			LeftIndex: leftIndex,
			Status:    StatusUnmatchedLeft,
			IsManual:  true,
		})
	case rightIndex != nil:
		r.RightUnmatched = insertIndex(r.RightUnmatched, *rightIndex)
		r.Matches = append(r.Matches, MatchResult{
			RightIndex: rightIndex,
			Status:     StatusUnmatchedRight,
			IsManual:   true,
		})
	}
}

// RemoveManualMatch deletes the result pairing the given indices, but
// only if it is marked manual. Automatic matches are left alone.
func (r *MatchingResult) RemoveManualMatch(leftIndex, rightIndex int) {
	kept := r.Matches[:0]
	for _, m := range r.Matches {
		if m.IsManual &&
			m.LeftIndex != nil && *m.LeftIndex == leftIndex &&
			m.RightIndex != nil && *m.RightIndex == rightIndex {
			continue
		}
		kept = append(kept, m)
	}
	r.Matches = kept
}

// discardIndex removes v from a sorted index slice if present.
func discardIndex(s []int, v int) []int {
	for i, x := range s {
		if x == v {
			return append(s[:i], s[i+1:]...)
		}
	}
	return s
}

// insertIndex adds v to a sorted index slice, keeping it sorted and
// duplicate-free.
func insertIndex(s []int, v int) []int {
	for i, x := range s {
		if x == v {
			return s
		}
		if x > v {
			s = append(s, 0)
			copy(s[i+1:], s[i:])
			s[i] = v
			return s
		}
	}
	return append(s, v)
}
