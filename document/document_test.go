package document

import (
	"image"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"
)

func testPage(index int, seed uint8) *Page {
	img := gocv.NewMatWithSizeFromScalar(
		gocv.NewScalar(float64(seed), 0, 0, 0),
		64, 64, gocv.MatTypeCV8U,
	)
	// Break the uniformity so fingerprints differ between pages
	x := int(seed) % 32
	region := img.Region(image.Rect(x, x, x+16, x+16))
	region.SetTo(gocv.NewScalar(255, 0, 0, 0))
	region.Close()
	return &Page{Index: index, Image: img}
}

func TestEnsureFingerprints(t *testing.T) {
	pages := []*Page{testPage(0, 10), testPage(1, 60), testPage(2, 120)}
	defer func() {
		for _, p := range pages {
			p.Image.Close()
		}
	}()

	EnsureFingerprints("test.pdf", pages, 2)

	for i, p := range pages {
		assert.NotNil(t, p.Fingerprint, "page %d", i)
	}

	fps := Fingerprints(pages)
	require.Len(t, fps, 3)
	for _, fp := range fps {
		assert.NotNil(t, fp)
	}
}

func TestEnsureFingerprintsDegradesOnBadPage(t *testing.T) {
	good := testPage(0, 42)
	bad := &Page{Index: 1, Image: gocv.NewMat()} // unreadable page
	defer good.Image.Close()
	defer bad.Image.Close()

	pages := []*Page{good, bad}
	EnsureFingerprints("test.pdf", pages, 4)

	assert.NotNil(t, good.Fingerprint)
	assert.Nil(t, bad.Fingerprint)

	fps := Fingerprints(pages)
	assert.NotNil(t, fps[0])
	assert.Nil(t, fps[1])
}

func TestEnsureFingerprintsSkipsComputed(t *testing.T) {
	p := testPage(0, 99)
	defer p.Image.Close()

	EnsureFingerprints("test.pdf", []*Page{p}, 1)
	first := p.Fingerprint
	require.NotNil(t, first)

	EnsureFingerprints("test.pdf", []*Page{p}, 1)
	assert.Same(t, first, p.Fingerprint)
}

func TestSortPageFiles(t *testing.T) {
	files := []string{
		"page_10.png",
		"page_2.png",
		"page_1.png",
		"cover.png",
		"slide03.jpg",
	}
	sortPageFiles(files)
	assert.Equal(t, []string{
		"page_1.png",
		"page_2.png",
		"slide03.jpg",
		"page_10.png",
		"cover.png",
	}, files)
}

func TestCacheRoundTrip(t *testing.T) {
	dir := t.TempDir()
	cachePath := filepath.Join(dir, "cache.db")

	cache, err := OpenCache(cachePath)
	require.NoError(t, err)
	defer cache.Close()

	// Any stat-able path works as a cache key; reuse the database file
	sourcePath := cachePath

	pages := []*Page{testPage(0, 20), testPage(1, 80)}
	defer func() {
		for _, p := range pages {
			p.Image.Close()
		}
	}()
	EnsureFingerprints(sourcePath, pages, 2)

	require.NoError(t, cache.Store(sourcePath, pages))

	loaded, ok := cache.Lookup(sourcePath)
	require.True(t, ok)
	require.Len(t, loaded, 2)
	defer func() {
		for _, p := range loaded {
			p.Image.Close()
		}
	}()

	for i, p := range loaded {
		assert.Equal(t, i, p.Index)
		assert.False(t, p.Image.Empty())
		require.NotNil(t, p.Fingerprint)
		assert.Equal(t, pages[i].Fingerprint.String(), p.Fingerprint.String())
	}
}

func TestCacheLookupMissing(t *testing.T) {
	dir := t.TempDir()
	cache, err := OpenCache(filepath.Join(dir, "cache.db"))
	require.NoError(t, err)
	defer cache.Close()

	_, ok := cache.Lookup(filepath.Join(dir, "missing"))
	assert.False(t, ok)
}
