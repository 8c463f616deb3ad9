package comparator

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"

	"doccompare/exclusion"
)

// solidPage builds a single-channel image filled with the given value.
func solidPage(width, height int, value float64) gocv.Mat {
	return gocv.NewMatWithSizeFromScalar(
		gocv.NewScalar(value, 0, 0, 0),
		height, width, gocv.MatTypeCV8U,
	)
}

// paintBlock fills a rectangle of the image with the given value.
func paintBlock(m gocv.Mat, rect image.Rectangle, value float64) {
	region := m.Region(rect)
	region.SetTo(gocv.NewScalar(value, 0, 0, 0))
	region.Close()
}

func TestCompareIdenticalImages(t *testing.T) {
	img := solidPage(200, 200, 128)
	defer img.Close()

	c := New(DefaultConfig())
	result, err := c.Compare(img, img, nil)
	require.NoError(t, err)
	defer result.Close()

	assert.Equal(t, 0.0, result.DiffScore)
	assert.Empty(t, result.Regions)
	assert.False(t, result.HasDifferences())
}

func TestCompareDetectsRegion(t *testing.T) {
	a := solidPage(200, 200, 255)
	defer a.Close()
	b := solidPage(200, 200, 255)
	defer b.Close()
	paintBlock(b, image.Rect(50, 50, 100, 100), 0)

	c := New(DefaultConfig())
	result, err := c.Compare(a, b, nil)
	require.NoError(t, err)
	defer result.Close()

	assert.True(t, result.HasDifferences())
	assert.Greater(t, result.DiffScore, 0.0)
	require.Len(t, result.Regions, 1)

	region := result.Regions[0]
	assert.Equal(t, 50, region.X)
	assert.Equal(t, 50, region.Y)
	assert.Equal(t, 50, region.Width)
	assert.Equal(t, 50, region.Height)
	assert.Greater(t, region.Area, 0)
	assert.Greater(t, region.Intensity, 0.0)
	assert.LessOrEqual(t, region.Intensity, 1.0)
}

func TestCompareExclusionZoneSuppression(t *testing.T) {
	a := solidPage(200, 200, 255)
	defer a.Close()
	b := solidPage(200, 200, 255)
	defer b.Close()
	paintBlock(b, image.Rect(50, 50, 100, 100), 0)

	c := New(DefaultConfig())

	unmasked, err := c.Compare(a, b, nil)
	require.NoError(t, err)
	defer unmasked.Close()
	assert.Greater(t, unmasked.DiffScore, 0.0)

	zone, err := exclusion.NewZone(0.25, 0.25, 0.25, 0.25, "diff area", exclusion.SideBoth)
	require.NoError(t, err)

	masked, err := c.Compare(a, b, []exclusion.Zone{zone})
	require.NoError(t, err)
	defer masked.Close()

	assert.Equal(t, 0.0, masked.DiffScore)
	assert.Empty(t, masked.Regions)
	assert.False(t, masked.HasDifferences())
}

func TestCompareDisabledZoneIgnored(t *testing.T) {
	a := solidPage(200, 200, 255)
	defer a.Close()
	b := solidPage(200, 200, 255)
	defer b.Close()
	paintBlock(b, image.Rect(50, 50, 100, 100), 0)

	zone, err := exclusion.NewZone(0.25, 0.25, 0.25, 0.25, "disabled", exclusion.SideBoth)
	require.NoError(t, err)
	zone.Enabled = false

	c := New(DefaultConfig())
	result, err := c.Compare(a, b, []exclusion.Zone{zone})
	require.NoError(t, err)
	defer result.Close()

	assert.Greater(t, result.DiffScore, 0.0)
}

func TestCompareMinRegionAreaFilter(t *testing.T) {
	a := solidPage(200, 200, 255)
	defer a.Close()
	b := solidPage(200, 200, 255)
	defer b.Close()
	// A 5x5 cluster is well below the default minimum area of 100
	paintBlock(b, image.Rect(10, 10, 15, 15), 0)

	c := New(DefaultConfig())
	result, err := c.Compare(a, b, nil)
	require.NoError(t, err)
	defer result.Close()

	assert.Empty(t, result.Regions)
	assert.Greater(t, result.DiffScore, 0.0)
}

func TestCompareDirectionIndependentScore(t *testing.T) {
	a := solidPage(200, 200, 255)
	defer a.Close()
	b := solidPage(200, 200, 255)
	defer b.Close()
	paintBlock(b, image.Rect(20, 30, 90, 120), 0)

	c := New(DefaultConfig())
	forward, err := c.Compare(a, b, nil)
	require.NoError(t, err)
	defer forward.Close()
	backward, err := c.Compare(b, a, nil)
	require.NoError(t, err)
	defer backward.Close()

	assert.Equal(t, forward.DiffScore, backward.DiffScore)
	assert.Equal(t, forward.Regions, backward.Regions)
}

func TestCompareMismatchedSizes(t *testing.T) {
	a := solidPage(100, 100, 255)
	defer a.Close()
	b := solidPage(200, 150, 255)
	defer b.Close()

	c := New(DefaultConfig())
	result, err := c.Compare(a, b, nil)
	require.NoError(t, err)
	defer result.Close()

	// Neither image is downscaled: the common size is the element-wise max
	assert.Equal(t, 200, result.DiffImage.Cols())
	assert.Equal(t, 150, result.DiffImage.Rows())
	assert.Equal(t, 200, result.HighlightImage.Cols())
}

func TestCompareEmptyImage(t *testing.T) {
	empty := gocv.NewMat()
	defer empty.Close()
	img := solidPage(50, 50, 128)
	defer img.Close()

	c := New(DefaultConfig())
	_, err := c.Compare(empty, img, nil)
	assert.ErrorIs(t, err, ErrInvalidImage)

	_, err = c.Compare(img, empty, nil)
	assert.ErrorIs(t, err, ErrInvalidImage)
}

func TestSideBySideDimensions(t *testing.T) {
	left := solidPage(100, 200, 128)
	defer left.Close()
	right := solidPage(150, 100, 64)
	defer right.Close()

	combined, err := SideBySide(left, right, 10)
	require.NoError(t, err)
	defer combined.Close()

	assert.Equal(t, 200, combined.Rows())
	// Right image is scaled up to height 200, doubling its width
	assert.Equal(t, 100+10+300, combined.Cols())
	assert.Equal(t, 3, combined.Channels())
}

func TestSideBySideEmptyInput(t *testing.T) {
	empty := gocv.NewMat()
	defer empty.Close()
	img := solidPage(50, 50, 128)
	defer img.Close()

	_, err := SideBySide(empty, img, 10)
	assert.ErrorIs(t, err, ErrInvalidImage)
}
