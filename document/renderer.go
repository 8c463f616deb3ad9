package document

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"gocv.io/x/gocv"

	"doccompare/logging"
)

// Renderer produces the ordered page images for a document. Actual
// rasterization (PDF, slide decks) happens outside this module; the
// default implementation reads a directory of already-rendered page
// images.
type Renderer interface {
	Render(path string) ([]gocv.Mat, error)
}

// DirRenderer loads page images from a directory, ordered by the numeric
// suffix in each file name (page_0.png, page_1.png, ...) with a name
// fallback for files without one.
type DirRenderer struct{}

var pageNumberPattern = regexp.MustCompile(`(\d+)\D*$`)

// Render reads every supported image in the directory as one page.
// Unreadable files are logged and kept as empty pages so page indices
// stay aligned; such pages end up unmatched rather than failing the run.
func (DirRenderer) Render(dir string) ([]gocv.Mat, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("cannot read page directory: %w", err)
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".png", ".jpg", ".jpeg", ".bmp", ".tif", ".tiff":
			files = append(files, e.Name())
		}
	}

	if len(files) == 0 {
		return nil, fmt.Errorf("no page images found in %s", dir)
	}

	sortPageFiles(files)

	pages := make([]gocv.Mat, 0, len(files))
	for i, name := range files {
		img := gocv.IMRead(filepath.Join(dir, name), gocv.IMReadColor)
		if img.Empty() {
			logging.LogWarning("Unreadable page image %s (page %d), keeping placeholder", name, i)
		}
		pages = append(pages, img)
	}

	return pages, nil
}

// sortPageFiles orders file names by their trailing page number, falling
// back to lexical order for names without one.
func sortPageFiles(files []string) {
	sort.SliceStable(files, func(i, j int) bool {
		ni, oki := pageNumber(files[i])
		nj, okj := pageNumber(files[j])
		if oki && okj && ni != nj {
			return ni < nj
		}
		if oki != okj {
			return oki
		}
		return files[i] < files[j]
	})
}

func pageNumber(name string) (int, bool) {
	base := strings.TrimSuffix(name, filepath.Ext(name))
	m := pageNumberPattern.FindStringSubmatch(base)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return n, true
}

// Load renders a document, consulting the cache first when one is
// provided. Cache failures are never fatal; the renderer is the source
// of truth.
func Load(r Renderer, path string, cache *Cache) (*Document, error) {
	if cache != nil {
		if pages, ok := cache.Lookup(path); ok {
			logging.DebugLog("Loaded %d cached pages for %s", len(pages), path)
			return &Document{Path: path, Pages: pages}, nil
		}
	}

	mats, err := r.Render(path)
	if err != nil {
		return nil, err
	}

	pages := make([]*Page, len(mats))
	for i, m := range mats {
		pages[i] = &Page{Index: i, Image: m}
	}

	doc := &Document{Path: path, Pages: pages}

	if cache != nil {
		if err := cache.Store(path, pages); err != nil {
			logging.LogWarning("Failed to cache pages for %s: %v", path, err)
		}
	}

	return doc, nil
}
