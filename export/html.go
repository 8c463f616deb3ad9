package export

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"html/template"
	"image"
	"image/png"
	"os"
	"time"

	"gocv.io/x/gocv"
	"golang.org/x/image/draw"

	"doccompare/comparator"
	"doccompare/document"
	"doccompare/exclusion"
	"doccompare/logging"
	"doccompare/matcher"
)

// Config controls report generation.
type Config struct {
	Title              string
	IncludeIdentical   bool
	IncludeThumbnails  bool
	ThumbnailWidth     int
	ShowExclusionZones bool
}

// DefaultConfig returns the standard report configuration.
func DefaultConfig() Config {
	return Config{
		Title:              "Document Comparison Report",
		IncludeIdentical:   false,
		IncludeThumbnails:  true,
		ThumbnailWidth:     400,
		ShowExclusionZones: true,
	}
}

type pairView struct {
	LeftIndex  int
	RightIndex int
	Similarity float64
	DiffScore  float64
	Regions    int
	Manual     bool
	Thumbnail  template.URL
}

type singleView struct {
	Index     int
	Thumbnail template.URL
}

type zoneView struct {
	Name      string
	AppliesTo string
	Area      string
}

type reportView struct {
	Title          string
	Generated      string
	LeftPath       string
	LeftPages      int
	RightPath      string
	RightPages     int
	Differing      []pairView
	Identical      []pairView
	ShowIdentical  bool
	UnmatchedLeft  []singleView
	UnmatchedRight []singleView
	Zones          []zoneView
}

// WriteHTML renders the comparison report to an HTML file. The diffs map
// is keyed by {leftIndex, rightIndex}; pairs without an entry are listed
// without a score.
func WriteHTML(
	cfg Config,
	left, right *document.Document,
	result *matcher.MatchingResult,
	diffs map[[2]int]*comparator.DiffResult,
	zones *exclusion.ZoneSet,
	outPath string,
) error {
	view := reportView{
		Title:         cfg.Title,
		Generated:     time.Now().Format("2006-01-02 15:04:05"),
		LeftPath:      left.Path,
		LeftPages:     left.PageCount(),
		RightPath:     right.Path,
		RightPages:    right.PageCount(),
		ShowIdentical: cfg.IncludeIdentical,
	}

	for _, m := range result.Matches {
		switch m.Status {
		case matcher.StatusMatched:
			pv := pairView{
				LeftIndex:  *m.LeftIndex,
				RightIndex: *m.RightIndex,
				Similarity: m.Similarity,
				Manual:     m.IsManual,
			}
			diff := diffs[[2]int{*m.LeftIndex, *m.RightIndex}]
			hasDiff := m.HasDifference()
			if diff != nil {
				pv.DiffScore = diff.DiffScore
				pv.Regions = diff.DiffCount()
				hasDiff = diff.HasDifferences()
			}
			if cfg.IncludeThumbnails {
				pv.Thumbnail = pairThumbnail(cfg, left, diff, *m.LeftIndex, *m.RightIndex, right)
			}
			if hasDiff {
				view.Differing = append(view.Differing, pv)
			} else {
				view.Identical = append(view.Identical, pv)
			}
		case matcher.StatusUnmatchedLeft:
			sv := singleView{Index: *m.LeftIndex}
			if cfg.IncludeThumbnails {
				sv.Thumbnail = pageThumbnail(cfg, left, *m.LeftIndex)
			}
			view.UnmatchedLeft = append(view.UnmatchedLeft, sv)
		case matcher.StatusUnmatchedRight:
			sv := singleView{Index: *m.RightIndex}
			if cfg.IncludeThumbnails {
				sv.Thumbnail = pageThumbnail(cfg, right, *m.RightIndex)
			}
			view.UnmatchedRight = append(view.UnmatchedRight, sv)
		}
	}

	if cfg.ShowExclusionZones && zones != nil {
		for _, z := range zones.Zones {
			if !z.Enabled {
				continue
			}
			view.Zones = append(view.Zones, zoneView{
				Name:      z.Name,
				AppliesTo: string(z.AppliesTo),
				Area:      fmt.Sprintf("%.0f%% x %.0f%%", z.Width*100, z.Height*100),
			})
		}
	}

	tmpl, err := template.New("report").Parse(reportTemplate)
	if err != nil {
		return fmt.Errorf("cannot parse report template: %v", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, view); err != nil {
		return fmt.Errorf("cannot render report: %v", err)
	}

	return os.WriteFile(outPath, buf.Bytes(), 0644)
}

// pairThumbnail builds a side-by-side composite of the left page and the
// highlighted diff (falling back to the right page image).
func pairThumbnail(cfg Config, left *document.Document, diff *comparator.DiffResult, li, ri int, right *document.Document) template.URL {
	if li >= left.PageCount() || ri >= right.PageCount() {
		return ""
	}

	rightSide := right.Pages[ri].Image
	if diff != nil && !diff.HighlightImage.Empty() {
		rightSide = diff.HighlightImage
	}

	combined, err := comparator.SideBySide(left.Pages[li].Image, rightSide, 10)
	if err != nil {
		logging.LogWarning("Cannot compose report thumbnail for pair (%d,%d): %v", li, ri, err)
		return ""
	}
	defer combined.Close()

	return encodeThumbnail(combined, cfg.ThumbnailWidth)
}

func pageThumbnail(cfg Config, doc *document.Document, index int) template.URL {
	if index >= doc.PageCount() || doc.Pages[index].Image.Empty() {
		return ""
	}
	return encodeThumbnail(doc.Pages[index].Image, cfg.ThumbnailWidth)
}

// encodeThumbnail downscales a Mat to the given width and returns it as
// a base64 PNG data URL.
func encodeThumbnail(m gocv.Mat, maxWidth int) template.URL {
	img, err := m.ToImage()
	if err != nil {
		logging.LogWarning("Cannot convert image for report: %v", err)
		return ""
	}

	img = downscale(img, maxWidth)

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		logging.LogWarning("Cannot encode report thumbnail: %v", err)
		return ""
	}

	return template.URL("data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()))
}

// downscale resizes img to at most maxWidth, preserving aspect ratio.
// Images already narrow enough are returned unchanged.
func downscale(img image.Image, maxWidth int) image.Image {
	bounds := img.Bounds()
	if bounds.Dx() <= maxWidth || maxWidth <= 0 {
		return img
	}

	ratio := float64(maxWidth) / float64(bounds.Dx())
	height := int(float64(bounds.Dy()) * ratio)
	if height < 1 {
		height = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, maxWidth, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
	return dst
}
