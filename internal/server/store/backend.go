package store

import (
	"context"
	"io"
	"time"
)

// Backend defines the object storage operations the ingestion pipeline needs:
// single-shot puts plus the part-wise multipart upload primitives. Implemented
// by S3Backend; tests substitute in-memory fakes.
type Backend interface {
	// PutObject uploads a single object to storage
	PutObject(ctx context.Context, params *PutObjectParams) (*PutObjectResponse, error)

	// CreateMultipart starts a store-side multipart upload for key and
	// returns its upload id
	CreateMultipart(ctx context.Context, key string) (string, error)

	// UploadPart uploads one part of a multipart upload and returns its etag
	UploadPart(ctx context.Context, params *UploadPartParams) (string, error)

	// CompleteMultipart finalizes a multipart upload from its recorded parts
	CompleteMultipart(ctx context.Context, params *CompleteMultipartParams) (*PutObjectResponse, error)

	// AbortMultipart cancels an in-progress multipart upload
	AbortMultipart(ctx context.Context, key string, uploadID string) error

	// DeleteObject removes an object from storage, returns true if successful
	DeleteObject(ctx context.Context, key string) (bool, error)
}

// ===================================================================================================

type PutObjectParams struct {
	Key  string
	Size int64
	Body io.Reader
}

type PutObjectResponse struct {
	Key          string
	ETag         string
	Size         int64
	LastModified time.Time
}

// ===================================================================================================

type UploadPartParams struct {
	Key        string
	UploadID   string
	PartNumber int
	Size       int64
	Body       io.Reader
}

type CompletedPart struct {
	PartNumber int
	ETag       string
}

type CompleteMultipartParams struct {
	Key      string
	UploadID string
	Parts    []*CompletedPart

	// Size is the summed size of all parts, carried through to the response
	// because the store's completion call does not report it.
	Size int64
}

// ===================================================================================================

// Content describes a stored object addressable through the gateway.
type Content struct {
	CID       string `json:"cid" db:"cid"`
	Key       string `json:"key" db:"key"`
	ETag      string `json:"etag" db:"etag"`
	Size      int64  `json:"size" db:"size"`
	CreatedAt string `json:"createdAt" db:"created_at"`
}
