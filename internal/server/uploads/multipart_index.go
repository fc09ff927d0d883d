package uploads

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

// Multipart upload statuses. Transitions are monotonic:
// active -> completed or active -> aborted, both terminal.
const (
	StatusActive    = "active"
	StatusCompleted = "completed"
	StatusAborted   = "aborted"
)

const multipartSchemaSQL = `
CREATE TABLE IF NOT EXISTS multipart_uploads (
	upload_id TEXT PRIMARY KEY,
	store_upload_id TEXT NOT NULL,
	s3_key TEXT NOT NULL,
	file_name TEXT NOT NULL,
	total_parts INTEGER NOT NULL,
	status TEXT NOT NULL DEFAULT 'active',
	created_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS multipart_upload_parts (
	upload_id TEXT NOT NULL,
	part_number INTEGER NOT NULL,
	etag TEXT NOT NULL,
	size INTEGER NOT NULL,
	PRIMARY KEY (upload_id, part_number)
);

CREATE INDEX IF NOT EXISTS idx_multipart_uploads_status ON multipart_uploads(status);
`

// MultipartUpload is the persisted bookkeeping row of one client-driven
// multipart upload; it survives server-process and client restarts.
type MultipartUpload struct {
	UploadID      string `db:"upload_id"`
	StoreUploadID string `db:"store_upload_id"`
	S3Key         string `db:"s3_key"`
	FileName      string `db:"file_name"`
	TotalParts    int    `db:"total_parts"`
	Status        string `db:"status"`
	CreatedAt     string `db:"created_at"`
}

// MultipartPart records a part accepted by the store.
type MultipartPart struct {
	UploadID   string `db:"upload_id"`
	PartNumber int    `db:"part_number"`
	ETag       string `db:"etag"`
	Size       int64  `db:"size"`
}

// MultipartIndex persists multipart bookkeeping in SQLite.
type MultipartIndex struct {
	db *sqlx.DB
}

func newMultipartIndex(db *sqlx.DB) (*MultipartIndex, error) {
	idx := &MultipartIndex{db: db}
	if _, err := db.Exec(multipartSchemaSQL); err != nil {
		return nil, fmt.Errorf("failed to initialize multipart index: %w", err)
	}
	return idx, nil
}

func (mi *MultipartIndex) CreateUpload(u *MultipartUpload) error {
	_, err := mi.db.Exec(
		`INSERT INTO multipart_uploads (upload_id, store_upload_id, s3_key, file_name, total_parts, status, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		u.UploadID, u.StoreUploadID, u.S3Key, u.FileName, u.TotalParts, u.Status, u.CreatedAt,
	)
	return err
}

func (mi *MultipartIndex) GetUpload(uploadID string) (*MultipartUpload, bool) {
	var u MultipartUpload
	err := mi.db.Get(&u,
		`SELECT upload_id, store_upload_id, s3_key, file_name, total_parts, status, created_at
		 FROM multipart_uploads WHERE upload_id = ?`, uploadID)
	if err != nil {
		return nil, false
	}
	return &u, true
}

// SetStatus transitions an upload from one status to another. The equality
// filter on the current status is the guard against concurrent writers; it
// reports whether this caller won the transition.
func (mi *MultipartIndex) SetStatus(uploadID, from, to string) (bool, error) {
	res, err := mi.db.Exec(
		`UPDATE multipart_uploads SET status = ? WHERE upload_id = ? AND status = ?`,
		to, uploadID, from,
	)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// InsertPart records a part. The first persisted row for a
// (upload_id, part_number) pair wins; a concurrent duplicate is ignored and
// reported as such so the caller can read the winner back.
func (mi *MultipartIndex) InsertPart(p *MultipartPart) (bool, error) {
	res, err := mi.db.Exec(
		`INSERT OR IGNORE INTO multipart_upload_parts (upload_id, part_number, etag, size) VALUES (?, ?, ?, ?)`,
		p.UploadID, p.PartNumber, p.ETag, p.Size,
	)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (mi *MultipartIndex) GetPart(uploadID string, partNumber int) (*MultipartPart, bool) {
	var p MultipartPart
	err := mi.db.Get(&p,
		`SELECT upload_id, part_number, etag, size FROM multipart_upload_parts
		 WHERE upload_id = ? AND part_number = ?`, uploadID, partNumber)
	if err != nil {
		return nil, false
	}
	return &p, true
}

func (mi *MultipartIndex) ListParts(uploadID string) ([]*MultipartPart, error) {
	var parts []*MultipartPart
	err := mi.db.Select(&parts,
		`SELECT upload_id, part_number, etag, size FROM multipart_upload_parts
		 WHERE upload_id = ? ORDER BY part_number`, uploadID)
	if err != nil {
		return nil, fmt.Errorf("failed to list parts: %w", err)
	}
	return parts, nil
}

func (mi *MultipartIndex) DeleteParts(uploadID string) error {
	_, err := mi.db.Exec(`DELETE FROM multipart_upload_parts WHERE upload_id = ?`, uploadID)
	return err
}
