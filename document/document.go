package document

import (
	"sync"

	"gocv.io/x/gocv"

	"doccompare/fingerprint"
	"doccompare/logging"
)

// Page is one rendered page of a document. The fingerprint is computed
// lazily by EnsureFingerprints and cached; it stays nil if the page
// image is unusable.
type Page struct {
	Index       int
	Image       gocv.Mat
	Fingerprint *fingerprint.Fingerprint
}

// Document is an ordered collection of rendered pages.
type Document struct {
	Path  string
	Pages []*Page
}

// PageCount returns the number of pages.
func (d *Document) PageCount() int {
	return len(d.Pages)
}

// Close releases all page images.
func (d *Document) Close() {
	for _, p := range d.Pages {
		if !p.Image.Empty() {
			p.Image.Close()
		}
	}
}

// Fingerprints returns the pages' fingerprints in page order. Entries
// are nil for pages whose hash could not be computed.
func Fingerprints(pages []*Page) []*fingerprint.Fingerprint {
	fps := make([]*fingerprint.Fingerprint, len(pages))
	for i, p := range pages {
		fps[i] = p.Fingerprint
	}
	return fps
}

// EnsureFingerprints computes missing fingerprints across a worker pool.
// Each page writes only its own fingerprint slot, so no locking is
// needed beyond the final join. Per-page failures are logged and the
// fingerprint left nil; the page will surface as unmatched instead of
// aborting the batch.
func EnsureFingerprints(source string, pages []*Page, workers int) {
	if workers < 1 {
		workers = 1
	}

	var wg sync.WaitGroup
	semaphore := make(chan struct{}, workers)

	for _, p := range pages {
		if p.Fingerprint != nil {
			continue
		}

		wg.Add(1)
		semaphore <- struct{}{}

		go func(page *Page) {
			defer wg.Done()
			defer func() { <-semaphore }()

			fp, err := fingerprint.Compute(page.Image)
			if err != nil {
				logging.LogPageProcessed(source, page.Index, false, err.Error())
				return
			}
			page.Fingerprint = fp
			logging.LogPageProcessed(source, page.Index, true, "")
		}(p)
	}

	wg.Wait()
}
