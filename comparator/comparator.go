package comparator

import (
	"errors"
	"image"
	"image/color"

	"gocv.io/x/gocv"

	"doccompare/exclusion"
	"doccompare/logging"
)

// ErrInvalidImage is returned when an empty image is passed to Compare.
// This is a programming error, not a transient fault; there is no retry.
var ErrInvalidImage = errors.New("invalid or empty image")

// DiffRegion is a rectangular area of difference in pixel space of the
// compared images.
type DiffRegion struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`

	// Area is the pixel area of the contributing contour.
	Area int `json:"area"`

	// Intensity is the mean normalized difference within the rectangle.
	Intensity float64 `json:"intensity"`
}

// Rect returns the region as an image.Rectangle.
func (r DiffRegion) Rect() image.Rectangle {
	return image.Rect(r.X, r.Y, r.X+r.Width, r.Y+r.Height)
}

// DiffResult is the output of one pairwise image comparison. The caller
// owns the Mats and must call Close when done.
type DiffResult struct {
	// DiffScore is the fraction of pixels exceeding the difference
	// threshold, 0.0 to 1.0.
	DiffScore float64

	Regions []DiffRegion

	// DiffImage is the masked grayscale difference map.
	DiffImage gocv.Mat

	// HighlightImage is the first input with regions overlaid. Comparing
	// (A,B) draws onto A's pixels; callers wanting both directions call
	// Compare twice with arguments swapped.
	HighlightImage gocv.Mat
}

// HasDifferences reports whether the pair differs meaningfully: either
// the global score exceeds 1% or at least one region survived the area
// filter. The two conditions are independently sufficient.
func (r *DiffResult) HasDifferences() bool {
	return r.DiffScore > 0.01 || len(r.Regions) > 0
}

// DiffCount returns the number of difference regions.
func (r *DiffResult) DiffCount() int {
	return len(r.Regions)
}

// Close releases the result's image buffers.
func (r *DiffResult) Close() {
	if !r.DiffImage.Empty() {
		r.DiffImage.Close()
	}
	if !r.HighlightImage.Empty() {
		r.HighlightImage.Close()
	}
}

// Config holds the comparison tunables.
type Config struct {
	// Threshold is the per-pixel difference cutoff (0-255). The default
	// of 30 absorbs minor rendering differences.
	Threshold int

	// MinRegionArea filters out contours below this pixel area,
	// removing rendering noise.
	MinRegionArea int

	// HighlightColor is the overlay color for difference regions.
	HighlightColor color.RGBA

	// HighlightAlpha is the opacity of the overlay fill (0.0-1.0).
	HighlightAlpha float64
}

// DefaultConfig returns the standard comparison configuration.
func DefaultConfig() Config {
	return Config{
		Threshold:      30,
		MinRegionArea:  100,
		HighlightColor: color.RGBA{R: 255, G: 0, B: 0, A: 255},
		HighlightAlpha: 0.5,
	}
}

// Comparator compares two page images and highlights their differences.
type Comparator struct {
	cfg Config
}

// New creates a Comparator with the given configuration.
func New(cfg Config) *Comparator {
	return &Comparator{cfg: cfg}
}

// Compare finds the visual differences between two images, ignoring the
// given exclusion zones. Zones must already be filtered for the side
// being compared (see exclusion.ZoneSet.ZonesFor); disabled zones are
// skipped here as well.
func (c *Comparator) Compare(img1, img2 gocv.Mat, zones []exclusion.Zone) (*DiffResult, error) {
	if img1.Empty() || img2.Empty() {
		return nil, ErrInvalidImage
	}

	// Resize both to the element-wise maximum so neither image is ever
	// downscaled.
	width := img1.Cols()
	if img2.Cols() > width {
		width = img2.Cols()
	}
	height := img1.Rows()
	if img2.Rows() > height {
		height = img2.Rows()
	}

	a := resizeTo(img1, width, height)
	defer a.Close()
	b := resizeTo(img2, width, height)
	defer b.Close()

	grayA := toGray(a)
	defer grayA.Close()
	grayB := toGray(b)
	defer grayB.Close()

	diff := gocv.NewMat()
	gocv.AbsDiff(grayA, grayB, &diff)

	// Zero out exclusion zones so they can never contribute to the
	// score or region detection.
	bounds := image.Rect(0, 0, width, height)
	for _, z := range zones {
		if !z.Enabled {
			continue
		}
		rect := z.ToRect(width, height).Intersect(bounds)
		if rect.Empty() {
			continue
		}
		region := diff.Region(rect)
		region.SetTo(gocv.NewScalar(0, 0, 0, 0))
		region.Close()
	}

	thresh := gocv.NewMat()
	defer thresh.Close()
	gocv.Threshold(diff, &thresh, float32(c.cfg.Threshold), 255, gocv.ThresholdBinary)

	regions := c.extractRegions(diff, thresh)

	totalPixels := width * height
	diffPixels := gocv.CountNonZero(thresh)
	diffScore := 0.0
	if totalPixels > 0 {
		diffScore = float64(diffPixels) / float64(totalPixels)
	}

	logging.DebugLog("Compared %dx%d images: score=%.4f regions=%d", width, height, diffScore, len(regions))

	highlight := c.drawHighlights(a, regions)

	return &DiffResult{
		DiffScore:      diffScore,
		Regions:        regions,
		DiffImage:      diff,
		HighlightImage: highlight,
	}, nil
}

// extractRegions finds external contours of the binary mask and keeps
// those at or above the minimum area, with the mean intensity sampled
// from the raw difference map.
func (c *Comparator) extractRegions(diff, thresh gocv.Mat) []DiffRegion {
	contours := gocv.FindContours(thresh, gocv.RetrievalExternal, gocv.ChainApproxSimple)
	defer contours.Close()

	var regions []DiffRegion
	for i := 0; i < contours.Size(); i++ {
		contour := contours.At(i)
		area := gocv.ContourArea(contour)
		if area < float64(c.cfg.MinRegionArea) {
			continue
		}

		rect := gocv.BoundingRect(contour)
		roi := diff.Region(rect)
		mean := roi.Mean()
		roi.Close()

		regions = append(regions, DiffRegion{
			X:         rect.Min.X,
			Y:         rect.Min.Y,
			Width:     rect.Dx(),
			Height:    rect.Dy(),
			Area:      int(area),
			Intensity: mean.Val1 / 255.0,
		})
	}

	return regions
}

// drawHighlights returns a copy of base with each region filled
// semi-transparently and outlined.
func (c *Comparator) drawHighlights(base gocv.Mat, regions []DiffRegion) gocv.Mat {
	out := base.Clone()
	fillScalar := gocv.NewScalar(
		float64(c.cfg.HighlightColor.B),
		float64(c.cfg.HighlightColor.G),
		float64(c.cfg.HighlightColor.R),
		0,
	)

	for _, region := range regions {
		rect := region.Rect()

		roi := out.Region(rect)
		fill := gocv.NewMatWithSizeFromScalar(fillScalar, roi.Rows(), roi.Cols(), roi.Type())
		blended := gocv.NewMat()
		gocv.AddWeighted(roi, 1.0-c.cfg.HighlightAlpha, fill, c.cfg.HighlightAlpha, 0, &blended)
		blended.CopyTo(&roi)
		blended.Close()
		fill.Close()
		roi.Close()

		gocv.Rectangle(&out, rect, c.cfg.HighlightColor, 2)
	}

	return out
}

// resizeTo returns a new Mat of the requested size, resampling with
// Lanczos when the source differs.
func resizeTo(src gocv.Mat, width, height int) gocv.Mat {
	if src.Cols() == width && src.Rows() == height {
		return src.Clone()
	}
	dst := gocv.NewMat()
	gocv.Resize(src, &dst, image.Point{X: width, Y: height}, 0, 0, gocv.InterpolationLanczos4)
	return dst
}

// toGray returns a single-channel copy of src.
func toGray(src gocv.Mat) gocv.Mat {
	dst := gocv.NewMat()
	if src.Channels() == 1 {
		src.CopyTo(&dst)
		return dst
	}
	gocv.CvtColor(src, &dst, gocv.ColorBGRToGray)
	return dst
}
