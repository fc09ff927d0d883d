package store

import (
	"bytes"
	"context"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
)

// StoreService fronts the object store backend and keeps the content index
// in sync with every successful put.
type StoreService struct {
	backend Backend
	index   *ContentIndex
	config  *Config
}

func NewStoreService(cfg *Config, db *sqlx.DB) (*StoreService, error) {
	return NewStoreServiceWithBackend(NewS3BackendWithConfig(cfg), cfg, db)
}

// NewStoreServiceWithBackend wires an explicit backend; tests use it with
// in-memory fakes.
func NewStoreServiceWithBackend(backend Backend, cfg *Config, db *sqlx.DB) (*StoreService, error) {
	index, err := newContentIndex(db)
	if err != nil {
		return nil, err
	}

	return &StoreService{
		backend: backend,
		index:   index,
		config:  cfg,
	}, nil
}

// Backend returns the underlying store backend instance
func (s *StoreService) Backend() Backend {
	return s.backend
}

// Index returns the content index
func (s *StoreService) Index() *ContentIndex {
	return s.index
}

// GatewayURL builds the retrieval URL for a CID.
func (s *StoreService) GatewayURL(cid string) string {
	return s.config.GatewayFor(cid)
}

// PutContent stores data content-addressed: the CID is computed over the
// bytes as given, the object lands at the CID-derived key and the index is
// updated. Putting the same bytes twice is a no-op at the store level (same
// key, same content).
func (s *StoreService) PutContent(ctx context.Context, data []byte) (*Content, error) {
	cid := ComputeCID(data)
	key := ContentKey(cid)

	resp, err := s.backend.PutObject(ctx, &PutObjectParams{
		Key:  key,
		Size: int64(len(data)),
		Body: bytes.NewReader(data),
	})
	if err != nil {
		return nil, err
	}

	content := &Content{
		CID:       cid,
		Key:       key,
		ETag:      resp.ETag,
		Size:      resp.Size,
		CreatedAt: resp.LastModified.Format(time.RFC3339),
	}

	if err := s.index.Set(content); err != nil {
		// the object is durably stored; a stale index is an operational
		// concern, not a request failure
		slog.Warn("content index update failed", "cid", cid, "key", key, "error", err)
	}

	return content, nil
}

// CompleteMultipart finalizes a multipart object and registers it in the
// index. The store's composite ETag becomes the content identifier, since
// the full byte stream never passes through this process.
func (s *StoreService) CompleteMultipart(ctx context.Context, params *CompleteMultipartParams) (*Content, error) {
	resp, err := s.backend.CompleteMultipart(ctx, params)
	if err != nil {
		return nil, err
	}

	content := &Content{
		CID:       resp.ETag,
		Key:       resp.Key,
		ETag:      resp.ETag,
		Size:      resp.Size,
		CreatedAt: resp.LastModified.Format(time.RFC3339),
	}

	if err := s.index.Set(content); err != nil {
		slog.Warn("content index update failed", "cid", content.CID, "key", content.Key, "error", err)
	}

	return content, nil
}
