package matcher

import "doccompare/fingerprint"

// pagePair identifies a (left, right) page index pair.
type pagePair struct {
	left  int
	right int
}

// candidate holds the hash distance and derived similarity for a pair.
type candidate struct {
	distance   int
	similarity float64
}

// buildCandidates computes the Hamming distance for every page pair and
// keeps only those at or below the threshold. Pairs with a missing
// fingerprint on either side are skipped; such pages end up unmatched.
func buildCandidates(
	left, right []*fingerprint.Fingerprint,
	threshold int,
	progress ProgressFunc,
) map[pagePair]candidate {
	candidates := make(map[pagePair]candidate)
	total := len(left) * len(right)
	count := 0

	for i, lf := range left {
		for j, rf := range right {
			count++
			if progress != nil && count%100 == 0 {
				progress(count, total, "Computing similarities...")
			}

			if lf == nil || rf == nil {
				continue
			}

			distance := fingerprint.Distance(lf, rf)
			if distance <= threshold {
				similarity := 1.0 - float64(distance)/float64(fingerprint.BitLength)
				if similarity < 0 {
					similarity = 0
				}
				candidates[pagePair{i, j}] = candidate{distance: distance, similarity: similarity}
			}
		}
	}

	return candidates
}
