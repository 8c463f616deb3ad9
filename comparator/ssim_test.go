package comparator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"

	"doccompare/matcher"
)

func TestSSIMIdenticalImages(t *testing.T) {
	img := solidPage(100, 100, 200)
	defer img.Close()

	assert.Equal(t, 1.0, SSIM(img, img))
}

func TestSSIMOppositeImages(t *testing.T) {
	white := solidPage(100, 100, 255)
	defer white.Close()
	black := solidPage(100, 100, 0)
	defer black.Close()

	assert.Equal(t, 0.0, SSIM(white, black))
}

func TestSSIMPartialDifference(t *testing.T) {
	a := solidPage(100, 100, 255)
	defer a.Close()
	b := solidPage(100, 100, 128)
	defer b.Close()

	score := SSIM(a, b)
	assert.Greater(t, score, 0.0)
	assert.Less(t, score, 1.0)
}

func TestSSIMEmptyImage(t *testing.T) {
	img := solidPage(100, 100, 255)
	defer img.Close()
	empty := gocv.NewMat()
	defer empty.Close()

	assert.Equal(t, 0.0, SSIM(empty, img))
	assert.Equal(t, 0.0, SSIM(img, empty))
}

func TestSSIMMismatchedSizes(t *testing.T) {
	a := solidPage(100, 100, 200)
	defer a.Close()
	b := solidPage(50, 80, 200)
	defer b.Close()

	assert.Equal(t, 1.0, SSIM(a, b))
}

func TestRefineSimilarityUpdatesMatchedPairs(t *testing.T) {
	left := solidPage(100, 100, 255)
	defer left.Close()
	right := solidPage(100, 100, 0)
	defer right.Close()

	li, ri := 0, 0
	result := &matcher.MatchingResult{
		Matches: []matcher.MatchResult{
			{LeftIndex: &li, RightIndex: &ri, Status: matcher.StatusMatched, Similarity: 0.9},
		},
	}

	var calls int
	RefineSimilarity(result, []gocv.Mat{left}, []gocv.Mat{right},
		func(current, total int, message string) { calls++ })

	require.Len(t, result.Matches, 1)
	assert.Equal(t, 0.0, result.Matches[0].Similarity)
	assert.Equal(t, 1, calls)
}

func TestRefineSimilaritySkipsUnmatched(t *testing.T) {
	left := solidPage(100, 100, 255)
	defer left.Close()

	li := 0
	result := &matcher.MatchingResult{
		Matches: []matcher.MatchResult{
			{LeftIndex: &li, Status: matcher.StatusUnmatchedLeft, Similarity: 0.0},
		},
		LeftUnmatched: []int{0},
	}

	RefineSimilarity(result, []gocv.Mat{left}, nil, nil)

	assert.Equal(t, 0.0, result.Matches[0].Similarity)
	assert.Equal(t, matcher.StatusUnmatchedLeft, result.Matches[0].Status)
}

func TestRefineSimilaritySkipsMissingImages(t *testing.T) {
	left := solidPage(100, 100, 255)
	defer left.Close()
	empty := gocv.NewMat()
	defer empty.Close()

	li, ri := 0, 0
	result := &matcher.MatchingResult{
		Matches: []matcher.MatchResult{
			{LeftIndex: &li, RightIndex: &ri, Status: matcher.StatusMatched, Similarity: 0.9},
		},
	}

	RefineSimilarity(result, []gocv.Mat{left}, []gocv.Mat{empty}, nil)

	assert.Equal(t, 0.9, result.Matches[0].Similarity)
}
