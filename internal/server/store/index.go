package store

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

const indexSchemaSQL = `
CREATE TABLE IF NOT EXISTS contents (
	cid TEXT PRIMARY KEY,
	key TEXT NOT NULL,
	etag TEXT NOT NULL,
	size INTEGER NOT NULL,
	created_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_contents_key ON contents(key);
`

// ContentIndex maps content identifiers to their object keys so the gateway
// can resolve a CID without listing the bucket.
type ContentIndex struct {
	db *sqlx.DB
}

func newContentIndex(db *sqlx.DB) (*ContentIndex, error) {
	idx := &ContentIndex{db: db}
	if _, err := db.Exec(indexSchemaSQL); err != nil {
		return nil, fmt.Errorf("failed to initialize content index: %w", err)
	}

	return idx, nil
}

// Get retrieves content info by CID
func (ci *ContentIndex) Get(cid string) (*Content, bool) {
	var content Content
	err := ci.db.Get(&content, "SELECT cid, key, etag, size, created_at FROM contents WHERE cid = ?", cid)
	if err != nil {
		return nil, false
	}

	return &content, true
}

// Set adds or updates a content row
func (ci *ContentIndex) Set(content *Content) error {
	_, err := ci.db.Exec(
		`INSERT OR REPLACE INTO contents (cid, key, etag, size, created_at) VALUES (?, ?, ?, ?, ?)`,
		content.CID, content.Key, content.ETag, content.Size, content.CreatedAt,
	)
	return err
}

// Remove deletes a content row
func (ci *ContentIndex) Remove(cid string) error {
	_, err := ci.db.Exec("DELETE FROM contents WHERE cid = ?", cid)
	return err
}

// List returns all indexed contents
func (ci *ContentIndex) List() ([]*Content, error) {
	var contents []*Content
	err := ci.db.Select(&contents, "SELECT cid, key, etag, size, created_at FROM contents")
	if err != nil {
		return nil, fmt.Errorf("failed to list contents: %w", err)
	}

	return contents, nil
}
