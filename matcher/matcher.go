package matcher

import (
	"math"
	"sort"

	"doccompare/fingerprint"
	"doccompare/logging"
)

// noMatchCost is the sentinel cost for pairs with no candidate. It is
// several orders of magnitude above any real cost (max hash distance 256
// plus the position penalty), so the solver only picks a sentinel cell
// when the padding forces it; those assignments are discarded.
const noMatchCost = 1e9

// ProgressFunc reports coarse progress for UI feedback. It may be called
// from any goroutine and must not mutate matcher state.
type ProgressFunc func(current, total int, message string)

// Config holds the tunables for one matching run.
type Config struct {
	// PHashThreshold is the maximum Hamming distance for candidate pairs.
	PHashThreshold int

	// PositionWeight scales the penalty for matches that cross the
	// documents' relative position. The default 0.1 works well for
	// typical documents; very long documents may need a smaller value
	// as positional drift compounds.
	PositionWeight float64
}

// DefaultConfig returns the standard matcher configuration.
func DefaultConfig() Config {
	return Config{
		PHashThreshold: 20,
		PositionWeight: 0.1,
	}
}

// Matcher pairs pages between two documents using perceptual hashes and
// optimal assignment.
type Matcher struct {
	cfg Config
}

// New creates a Matcher with the given configuration.
func New(cfg Config) *Matcher {
	return &Matcher{cfg: cfg}
}

// Match pairs the two page sequences, given their fingerprints in page
// order. Fingerprints must already be computed (see
// document.EnsureFingerprints); Match never computes hashes itself. A nil
// entry means the page's hash could not be computed, and that page
// surfaces as unmatched. The result is deterministic for fixed inputs.
func (m *Matcher) Match(left, right []*fingerprint.Fingerprint, progress ProgressFunc) *MatchingResult {
	nLeft := len(left)
	nRight := len(right)

	if nLeft == 0 || nRight == 0 {
		return emptyDocumentsResult(nLeft, nRight)
	}

	if progress != nil {
		progress(0, nLeft*nRight, "Computing similarity matrix...")
	}

	candidates := buildCandidates(left, right, m.cfg.PHashThreshold, progress)
	logging.DebugLog("Candidate pairs within threshold %d: %d of %d",
		m.cfg.PHashThreshold, len(candidates), nLeft*nRight)

	if progress != nil {
		progress(nLeft*nRight, nLeft*nRight, "Running assignment...")
	}

	return m.solve(candidates, nLeft, nRight)
}

// emptyDocumentsResult handles the degenerate case where one or both
// documents have no pages: every page on the non-empty side is unmatched.
func emptyDocumentsResult(nLeft, nRight int) *MatchingResult {
	result := &MatchingResult{}

	for i := 0; i < nLeft; i++ {
		idx := i
		result.LeftUnmatched = append(result.LeftUnmatched, idx)
		result.Matches = append(result.Matches, MatchResult{
			LeftIndex: &idx,
			Status:    StatusUnmatchedLeft,
		})
	}

	for j := 0; j < nRight; j++ {
		idx := j
		result.RightUnmatched = append(result.RightUnmatched, idx)
		result.Matches = append(result.Matches, MatchResult{
			RightIndex: &idx,
			Status:     StatusUnmatchedRight,
		})
	}

	return result
}

// solve runs the assignment over a padded square cost matrix and converts
// the raw assignment into a MatchingResult.
func (m *Matcher) solve(candidates map[pagePair]candidate, nLeft, nRight int) *MatchingResult {
	n := nLeft
	if nRight > n {
		n = nRight
	}

	cost := make([][]float64, n)
	for i := range cost {
		cost[i] = make([]float64, n)
		for j := range cost[i] {
			cost[i][j] = noMatchCost
		}
	}

	for pair, cand := range candidates {
		// Position penalty: prefer matches that keep relative order.
		posDiff := math.Abs(float64(pair.left)/float64(nLeft) - float64(pair.right)/float64(nRight))
		penalty := posDiff * m.cfg.PositionWeight * float64(fingerprint.BitLength)
		cost[pair.left][pair.right] = float64(cand.distance) + penalty
	}

	assignment := solveAssignment(cost)

	result := &MatchingResult{}
	matchedLeft := make(map[int]bool)
	matchedRight := make(map[int]bool)

	for i, j := range assignment {
		if i >= nLeft || j >= nRight || cost[i][j] >= noMatchCost {
			continue
		}
		cand := candidates[pagePair{i, j}]
		li, ri := i, j
		result.Matches = append(result.Matches, MatchResult{
			LeftIndex:    &li,
			RightIndex:   &ri,
			Status:       StatusMatched,
			Similarity:   cand.similarity,
			HashDistance: cand.distance,
		})
		matchedLeft[i] = true
		matchedRight[j] = true
	}

	for i := 0; i < nLeft; i++ {
		if !matchedLeft[i] {
			idx := i
			result.LeftUnmatched = append(result.LeftUnmatched, idx)
			result.Matches = append(result.Matches, MatchResult{
				LeftIndex: &idx,
				Status:    StatusUnmatchedLeft,
			})
		}
	}

	for j := 0; j < nRight; j++ {
		if !matchedRight[j] {
			idx := j
			result.RightUnmatched = append(result.RightUnmatched, idx)
			result.Matches = append(result.Matches, MatchResult{
				RightIndex: &idx,
				Status:     StatusUnmatchedRight,
			})
		}
	}

	sortMatches(result.Matches, nLeft, nRight)
	return result
}

// sortMatches orders results by left index ascending; unmatched-right
// entries sort after all left-indexed entries, ordered by right index.
func sortMatches(matches []MatchResult, nLeft, nRight int) {
	key := func(m MatchResult) (int, int) {
		first := nLeft
		if m.LeftIndex != nil {
			first = *m.LeftIndex
		} else if m.RightIndex != nil {
			first = nLeft + *m.RightIndex
		}
		second := nRight
		if m.RightIndex != nil {
			second = *m.RightIndex
		}
		return first, second
	}

	sort.SliceStable(matches, func(a, b int) bool {
		a1, a2 := key(matches[a])
		b1, b2 := key(matches[b])
		if a1 != b1 {
			return a1 < b1
		}
		return a2 < b2
	})
}
