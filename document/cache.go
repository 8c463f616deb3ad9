package document

import (
	"database/sql"
	"fmt"
	"os"
	"time"

	"gocv.io/x/gocv"

	"doccompare/fingerprint"
	"doccompare/logging"

	_ "github.com/mattn/go-sqlite3"
)

// Cache stores rendered page images and fingerprints in a sqlite
// database so a document reload skips rasterization. Entries are keyed
// by source path plus modification time and size; a changed source
// invalidates its entry. The cache is an explicit handle with an
// open/close lifecycle, passed into Load by the caller.
type Cache struct {
	db *sql.DB
}

// OpenCache opens (creating if needed) a page cache at the given path.
func OpenCache(dbPath string) (*Cache, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}

	createTableSQL := `
	CREATE TABLE IF NOT EXISTS documents (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		path TEXT NOT NULL,
		mtime INTEGER NOT NULL,
		size INTEGER NOT NULL,
		page_count INTEGER NOT NULL,
		cached_at TEXT,
		UNIQUE(path)
	);
	CREATE TABLE IF NOT EXISTS pages (
		document_id INTEGER NOT NULL,
		page_index INTEGER NOT NULL,
		png BLOB NOT NULL,
		fingerprint TEXT,
		PRIMARY KEY(document_id, page_index)
	);
	CREATE INDEX IF NOT EXISTS idx_documents_path ON documents(path);`

	if _, err := db.Exec(createTableSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("error creating cache schema: %v", err)
	}

	return &Cache{db: db}, nil
}

// Close releases the cache database handle.
func (c *Cache) Close() error {
	return c.db.Close()
}

// Lookup returns the cached pages for a source path, or false if the
// source is absent, stale, or unreadable.
func (c *Cache) Lookup(path string) ([]*Page, bool) {
	mtime, size, err := statKey(path)
	if err != nil {
		return nil, false
	}

	var docID int64
	var pageCount int
	err = c.db.QueryRow(
		"SELECT id, page_count FROM documents WHERE path = ? AND mtime = ? AND size = ?",
		path, mtime, size,
	).Scan(&docID, &pageCount)
	if err != nil {
		return nil, false
	}

	rows, err := c.db.Query(
		"SELECT page_index, png, fingerprint FROM pages WHERE document_id = ? ORDER BY page_index",
		docID,
	)
	if err != nil {
		return nil, false
	}
	defer rows.Close()

	var pages []*Page
	for rows.Next() {
		var index int
		var png []byte
		var fpHex sql.NullString
		if err := rows.Scan(&index, &png, &fpHex); err != nil {
			logging.LogWarning("Corrupt cache row for %s: %v", path, err)
			return nil, false
		}

		img, err := gocv.IMDecode(png, gocv.IMReadColor)
		if err != nil || img.Empty() {
			logging.LogWarning("Cannot decode cached page %d of %s", index, path)
			return nil, false
		}

		page := &Page{Index: index, Image: img}
		if fpHex.Valid && fpHex.String != "" {
			if fp, err := fingerprint.Parse(fpHex.String); err == nil {
				page.Fingerprint = fp
			}
		}
		pages = append(pages, page)
	}

	if len(pages) != pageCount {
		return nil, false
	}
	return pages, true
}

// Store replaces the cache entry for a source path with the given pages.
func (c *Cache) Store(path string, pages []*Page) error {
	mtime, size, err := statKey(path)
	if err != nil {
		return err
	}

	tx, err := c.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	// Drop any stale entry for this path
	var oldID int64
	if err := tx.QueryRow("SELECT id FROM documents WHERE path = ?", path).Scan(&oldID); err == nil {
		if _, err := tx.Exec("DELETE FROM pages WHERE document_id = ?", oldID); err != nil {
			return err
		}
		if _, err := tx.Exec("DELETE FROM documents WHERE id = ?", oldID); err != nil {
			return err
		}
	}

	res, err := tx.Exec(
		"INSERT INTO documents (path, mtime, size, page_count, cached_at) VALUES (?, ?, ?, ?, ?)",
		path, mtime, size, len(pages), time.Now().Format(time.RFC3339),
	)
	if err != nil {
		return err
	}
	docID, err := res.LastInsertId()
	if err != nil {
		return err
	}

	for _, p := range pages {
		if p.Image.Empty() {
			continue
		}
		buf, err := gocv.IMEncode(gocv.PNGFileExt, p.Image)
		if err != nil {
			return fmt.Errorf("cannot encode page %d: %v", p.Index, err)
		}
		fpHex := ""
		if p.Fingerprint != nil {
			fpHex = p.Fingerprint.String()
		}
		_, err = tx.Exec(
			"INSERT INTO pages (document_id, page_index, png, fingerprint) VALUES (?, ?, ?, ?)",
			docID, p.Index, buf.GetBytes(), fpHex,
		)
		buf.Close()
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// StoreFingerprints persists computed fingerprints for an already cached
// document, so the next load skips hashing too.
func (c *Cache) StoreFingerprints(path string, pages []*Page) error {
	var docID int64
	if err := c.db.QueryRow("SELECT id FROM documents WHERE path = ?", path).Scan(&docID); err != nil {
		return fmt.Errorf("document not cached: %v", err)
	}

	for _, p := range pages {
		if p.Fingerprint == nil {
			continue
		}
		_, err := c.db.Exec(
			"UPDATE pages SET fingerprint = ? WHERE document_id = ? AND page_index = ?",
			p.Fingerprint.String(), docID, p.Index,
		)
		if err != nil {
			return err
		}
	}
	return nil
}

func statKey(path string) (int64, int64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, 0, err
	}
	return info.ModTime().UnixNano(), info.Size(), nil
}
