package export

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"

	"doccompare/comparator"
	"doccompare/document"
	"doccompare/exclusion"
	"doccompare/matcher"
)

func intPtr(v int) *int { return &v }

func testDoc(path string, pageValues ...float64) *document.Document {
	doc := &document.Document{Path: path}
	for i, v := range pageValues {
		img := gocv.NewMatWithSizeFromScalar(
			gocv.NewScalar(v, v, v, 0),
			120, 160, gocv.MatTypeCV8UC3,
		)
		doc.Pages = append(doc.Pages, &document.Page{Index: i, Image: img})
	}
	return doc
}

func TestWriteHTML(t *testing.T) {
	left := testDoc("/docs/left", 255, 200)
	defer left.Close()
	right := testDoc("/docs/right", 255, 120, 60)
	defer right.Close()

	result := &matcher.MatchingResult{
		Matches: []matcher.MatchResult{
			{LeftIndex: intPtr(0), RightIndex: intPtr(0), Status: matcher.StatusMatched, Similarity: 1.0},
			{LeftIndex: intPtr(1), RightIndex: intPtr(1), Status: matcher.StatusMatched, Similarity: 0.9, HashDistance: 24},
			{RightIndex: intPtr(2), Status: matcher.StatusUnmatchedRight},
		},
		RightUnmatched: []int{2},
	}

	c := comparator.New(comparator.DefaultConfig())
	diff, err := c.Compare(left.Pages[1].Image, right.Pages[1].Image, nil)
	require.NoError(t, err)
	defer diff.Close()

	diffs := map[[2]int]*comparator.DiffResult{{1, 1}: diff}

	var zones exclusion.ZoneSet
	zones.Add(exclusion.PresetFooter())

	outPath := filepath.Join(t.TempDir(), "report.html")
	cfg := DefaultConfig()
	cfg.IncludeIdentical = true

	require.NoError(t, WriteHTML(cfg, left, right, result, diffs, &zones, outPath))

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)
	html := string(data)

	assert.Contains(t, html, cfg.Title)
	assert.Contains(t, html, "/docs/left")
	assert.Contains(t, html, "Pages with Differences")
	assert.Contains(t, html, "Pages Only in Right Document")
	assert.Contains(t, html, "Identical Pages")
	assert.Contains(t, html, "Footer")
	assert.Contains(t, html, "data:image/png;base64,")
}

func TestWriteHTMLWithoutThumbnails(t *testing.T) {
	left := testDoc("/docs/left", 128)
	defer left.Close()
	right := testDoc("/docs/right", 128)
	defer right.Close()

	result := &matcher.MatchingResult{
		Matches: []matcher.MatchResult{
			{LeftIndex: intPtr(0), RightIndex: intPtr(0), Status: matcher.StatusMatched, Similarity: 1.0},
		},
	}

	outPath := filepath.Join(t.TempDir(), "report.html")
	cfg := DefaultConfig()
	cfg.IncludeThumbnails = false

	require.NoError(t, WriteHTML(cfg, left, right, result, nil, nil, outPath))

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.False(t, strings.Contains(string(data), "base64"))
}
