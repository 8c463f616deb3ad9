package comparator

import (
	"image"

	"gocv.io/x/gocv"

	"doccompare/logging"
	"doccompare/matcher"
)

// SSIM computes a simplified structural similarity score between two
// images, 1.0 for identical and 0.0 for completely different. It is
// slower than fingerprint distance but less sensitive to global shifts
// in brightness.
func SSIM(img1, img2 gocv.Mat) float64 {
	if img1.Empty() || img2.Empty() || img1.Rows() == 0 || img1.Cols() == 0 ||
		img2.Rows() == 0 || img2.Cols() == 0 {
		return 0.0
	}

	grayA := toGray(img1)
	defer grayA.Close()
	grayB := toGray(img2)
	defer grayB.Close()

	// Compare at the smaller of the two sizes.
	width := grayA.Cols()
	if grayB.Cols() < width {
		width = grayB.Cols()
	}
	height := grayA.Rows()
	if grayB.Rows() < height {
		height = grayB.Rows()
	}

	a := gocv.NewMat()
	defer a.Close()
	gocv.Resize(grayA, &a, image.Point{X: width, Y: height}, 0, 0, gocv.InterpolationLinear)

	b := gocv.NewMat()
	defer b.Close()
	gocv.Resize(grayB, &b, image.Point{X: width, Y: height}, 0, 0, gocv.InterpolationLinear)

	diff := gocv.NewMat()
	defer diff.Close()
	gocv.AbsDiff(a, b, &diff)

	mean := gocv.NewMat()
	stdDev := gocv.NewMat()
	defer mean.Close()
	defer stdDev.Close()
	gocv.MeanStdDev(diff, &mean, &stdDev)

	if mean.Empty() {
		return 0.0
	}

	meanDiff := mean.GetDoubleAt(0, 0)
	if meanDiff > 255.0 {
		return 0.0
	}

	return 1.0 - (meanDiff / 255.0)
}

// RefineSimilarity recomputes the similarity of every matched pair in
// result using SSIM, replacing the fingerprint-derived score in place.
// Pages with a missing image are left untouched.
func RefineSimilarity(result *matcher.MatchingResult, leftPages, rightPages []gocv.Mat, progress matcher.ProgressFunc) {
	var matched []*matcher.MatchResult
	for i := range result.Matches {
		if result.Matches[i].Status == matcher.StatusMatched {
			matched = append(matched, &result.Matches[i])
		}
	}

	total := len(matched)
	for idx, m := range matched {
		if progress != nil {
			progress(idx+1, total, "Computing SSIM...")
		}
		if m.LeftIndex == nil || m.RightIndex == nil {
			continue
		}
		li, ri := *m.LeftIndex, *m.RightIndex
		if li < 0 || li >= len(leftPages) || ri < 0 || ri >= len(rightPages) {
			continue
		}
		if leftPages[li].Empty() || rightPages[ri].Empty() {
			continue
		}
		m.Similarity = SSIM(leftPages[li], rightPages[ri])
	}

	logging.DebugLog("Refined %d matched pairs with SSIM", total)
}
