package comparator

import (
	"image"

	"gocv.io/x/gocv"
)

// SideBySide composes two images horizontally on a white canvas with a
// gap between them, scaling both to the larger height. Intended for
// report thumbnails; pass a DiffResult's HighlightImage as the right
// image to show annotated differences.
func SideBySide(left, right gocv.Mat, gap int) (gocv.Mat, error) {
	if left.Empty() || right.Empty() {
		return gocv.NewMat(), ErrInvalidImage
	}

	l := toBGR(left)
	defer l.Close()
	r := toBGR(right)
	defer r.Close()

	maxHeight := l.Rows()
	if r.Rows() > maxHeight {
		maxHeight = r.Rows()
	}

	ls := scaleToHeight(l, maxHeight)
	defer ls.Close()
	rs := scaleToHeight(r, maxHeight)
	defer rs.Close()

	totalWidth := ls.Cols() + gap + rs.Cols()
	canvas := gocv.NewMatWithSizeFromScalar(
		gocv.NewScalar(255, 255, 255, 0),
		maxHeight, totalWidth, gocv.MatTypeCV8UC3,
	)

	leftROI := canvas.Region(image.Rect(0, 0, ls.Cols(), ls.Rows()))
	ls.CopyTo(&leftROI)
	leftROI.Close()

	rightROI := canvas.Region(image.Rect(ls.Cols()+gap, 0, totalWidth, rs.Rows()))
	rs.CopyTo(&rightROI)
	rightROI.Close()

	return canvas, nil
}

// scaleToHeight resizes src to the given height preserving aspect ratio.
func scaleToHeight(src gocv.Mat, height int) gocv.Mat {
	if src.Rows() == height {
		return src.Clone()
	}
	ratio := float64(height) / float64(src.Rows())
	width := int(float64(src.Cols()) * ratio)
	if width < 1 {
		width = 1
	}
	dst := gocv.NewMat()
	gocv.Resize(src, &dst, image.Point{X: width, Y: height}, 0, 0, gocv.InterpolationLanczos4)
	return dst
}

// toBGR returns a three-channel copy of src.
func toBGR(src gocv.Mat) gocv.Mat {
	dst := gocv.NewMat()
	if src.Channels() == 3 {
		src.CopyTo(&dst)
		return dst
	}
	gocv.CvtColor(src, &dst, gocv.ColorGrayToBGR)
	return dst
}
