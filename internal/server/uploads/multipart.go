package uploads

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/mintgate/mediavault/internal/server/store"
)

var (
	ErrUploadNotFound = errors.New("upload not found")
	ErrPartOutOfRange = errors.New("part number out of range")
)

// StatusError reports an operation attempted against an upload whose status
// forbids it, e.g. uploading a part to an aborted upload.
type StatusError struct {
	UploadID string
	Status   string
	Wanted   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("upload %s is %s, expected %s", e.UploadID, e.Status, e.Wanted)
}

// IncompleteError reports a completion attempt with parts still missing.
type IncompleteError struct {
	UploadID   string
	Present    []int
	TotalParts int
}

func (e *IncompleteError) Error() string {
	return fmt.Sprintf("upload %s has %d of %d parts", e.UploadID, len(e.Present), e.TotalParts)
}

type InitiateParams struct {
	FileName   string
	TotalParts int
}

type InitiateResult struct {
	UploadID string `json:"uploadId"`
	Key      string `json:"key"`
}

type UploadPartParams struct {
	UploadID   string
	PartNumber int
	Payload    []byte
}

type UploadPartResult struct {
	PartNumber int    `json:"partNumber"`
	ETag       string `json:"etag"`
}

type CompleteResult struct {
	CID  string `json:"cid"`
	URL  string `json:"url"`
	Size int64  `json:"size"`
}

type MultipartStatus struct {
	UploadID   string `json:"uploadId"`
	FileName   string `json:"fileName"`
	Status     string `json:"status"`
	TotalParts int    `json:"totalParts"`
	Present    []int  `json:"presentParts"`
}

// MultipartService drives client-paced multipart uploads. Part bytes flow
// straight to the store backend; only bookkeeping lands in SQLite, which is
// what lets an upload resume across server restarts.
type MultipartService struct {
	store  *store.StoreService
	index  *MultipartIndex
	config *Config
}

func NewMultipartService(storeSvc *store.StoreService, db *sqlx.DB, config *Config) (*MultipartService, error) {
	index, err := newMultipartIndex(db)
	if err != nil {
		return nil, err
	}
	return &MultipartService{
		store:  storeSvc,
		index:  index,
		config: config,
	}, nil
}

// Initiate opens a multipart upload with the store and persists an active
// bookkeeping row under a fresh upload id.
func (m *MultipartService) Initiate(ctx context.Context, params *InitiateParams) (*InitiateResult, error) {
	if params.TotalParts < 1 {
		return nil, fmt.Errorf("%w: total parts must be positive, got %d", ErrPartOutOfRange, params.TotalParts)
	}
	if params.TotalParts > m.config.MaxParts {
		return nil, fmt.Errorf("%w: %d parts declared, at most %d allowed", ErrPartOutOfRange, params.TotalParts, m.config.MaxParts)
	}

	uploadID := uuid.NewString()
	key := store.MultipartKey(uploadID, params.FileName)

	storeUploadID, err := m.store.Backend().CreateMultipart(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("failed to create multipart upload: %w", err)
	}

	err = m.index.CreateUpload(&MultipartUpload{
		UploadID:      uploadID,
		StoreUploadID: storeUploadID,
		S3Key:         key,
		FileName:      params.FileName,
		TotalParts:    params.TotalParts,
		Status:        StatusActive,
		CreatedAt:     time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		// the store-side upload would leak otherwise
		if abortErr := m.store.Backend().AbortMultipart(ctx, key, storeUploadID); abortErr != nil {
			slog.Warn("failed to abort orphaned multipart upload", "key", key, "error", abortErr)
		}
		return nil, fmt.Errorf("failed to persist multipart upload: %w", err)
	}

	slog.Info("multipart upload initiated",
		"uploadId", uploadID,
		"file", params.FileName,
		"totalParts", params.TotalParts,
	)

	return &InitiateResult{UploadID: uploadID, Key: key}, nil
}

// UploadPart sends one part to the store. Retrying a part already on record
// answers with the stored etag without contacting the store again, so clients
// recover from a lost response by resending.
func (m *MultipartService) UploadPart(ctx context.Context, params *UploadPartParams) (*UploadPartResult, error) {
	upload, ok := m.index.GetUpload(params.UploadID)
	if !ok {
		return nil, ErrUploadNotFound
	}
	if upload.Status != StatusActive {
		return nil, &StatusError{UploadID: upload.UploadID, Status: upload.Status, Wanted: StatusActive}
	}
	if params.PartNumber < 1 || params.PartNumber > upload.TotalParts {
		return nil, fmt.Errorf("%w: part %d of %d", ErrPartOutOfRange, params.PartNumber, upload.TotalParts)
	}

	if part, ok := m.index.GetPart(upload.UploadID, params.PartNumber); ok {
		return &UploadPartResult{PartNumber: part.PartNumber, ETag: part.ETag}, nil
	}

	etag, err := m.store.Backend().UploadPart(ctx, &store.UploadPartParams{
		Key:        upload.S3Key,
		UploadID:   upload.StoreUploadID,
		PartNumber: params.PartNumber,
		Size:       int64(len(params.Payload)),
		Body:       bytes.NewReader(params.Payload),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upload part %d: %w", params.PartNumber, err)
	}

	inserted, err := m.index.InsertPart(&MultipartPart{
		UploadID:   upload.UploadID,
		PartNumber: params.PartNumber,
		ETag:       etag,
		Size:       int64(len(params.Payload)),
	})
	if err != nil {
		// the store accepted the bytes; surfacing a failure now would make
		// the client re-send a part the store already holds
		slog.Warn("failed to persist part record",
			"uploadId", upload.UploadID,
			"part", params.PartNumber,
			"error", err,
		)
		return &UploadPartResult{PartNumber: params.PartNumber, ETag: etag}, nil
	}
	if !inserted {
		// lost a race against a concurrent duplicate; the first persisted
		// record wins
		if part, ok := m.index.GetPart(upload.UploadID, params.PartNumber); ok {
			return &UploadPartResult{PartNumber: part.PartNumber, ETag: part.ETag}, nil
		}
	}

	return &UploadPartResult{PartNumber: params.PartNumber, ETag: etag}, nil
}

// Complete finalizes the upload. All declared parts must be on record; a
// shortfall fails without state change, reporting which parts are present.
func (m *MultipartService) Complete(ctx context.Context, uploadID string) (*CompleteResult, error) {
	upload, ok := m.index.GetUpload(uploadID)
	if !ok {
		return nil, ErrUploadNotFound
	}
	if upload.Status != StatusActive {
		return nil, &StatusError{UploadID: upload.UploadID, Status: upload.Status, Wanted: StatusActive}
	}

	parts, err := m.index.ListParts(uploadID)
	if err != nil {
		return nil, err
	}
	if len(parts) != upload.TotalParts {
		present := make([]int, 0, len(parts))
		for _, p := range parts {
			present = append(present, p.PartNumber)
		}
		return nil, &IncompleteError{UploadID: uploadID, Present: present, TotalParts: upload.TotalParts}
	}

	completed := make([]*store.CompletedPart, 0, len(parts))
	var size int64
	for _, p := range parts {
		completed = append(completed, &store.CompletedPart{PartNumber: p.PartNumber, ETag: p.ETag})
		size += p.Size
	}

	content, err := m.store.CompleteMultipart(ctx, &store.CompleteMultipartParams{
		Key:      upload.S3Key,
		UploadID: upload.StoreUploadID,
		Parts:    completed,
		Size:     size,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to complete multipart upload: %w", err)
	}

	if _, err := m.index.SetStatus(uploadID, StatusActive, StatusCompleted); err != nil {
		slog.Warn("failed to mark upload completed", "uploadId", uploadID, "error", err)
	}

	slog.Info("multipart upload completed",
		"uploadId", uploadID,
		"cid", content.CID,
		"parts", upload.TotalParts,
		"size", size,
	)

	return &CompleteResult{
		CID:  content.CID,
		URL:  m.store.GatewayURL(content.CID),
		Size: content.Size,
	}, nil
}

// Abort cancels an active upload. The store-side abort is best effort; the
// local transition to aborted always happens, so a retried abort is a no-op
// and a completed upload cannot be aborted.
func (m *MultipartService) Abort(ctx context.Context, uploadID string) error {
	upload, ok := m.index.GetUpload(uploadID)
	if !ok {
		return ErrUploadNotFound
	}
	switch upload.Status {
	case StatusCompleted:
		return &StatusError{UploadID: upload.UploadID, Status: upload.Status, Wanted: StatusActive}
	case StatusAborted:
		return nil
	}

	if err := m.store.Backend().AbortMultipart(ctx, upload.S3Key, upload.StoreUploadID); err != nil {
		slog.Warn("store-side abort failed", "uploadId", uploadID, "key", upload.S3Key, "error", err)
	}

	if _, err := m.index.SetStatus(uploadID, StatusActive, StatusAborted); err != nil {
		return fmt.Errorf("failed to mark upload aborted: %w", err)
	}
	if err := m.index.DeleteParts(uploadID); err != nil {
		slog.Warn("failed to delete part records", "uploadId", uploadID, "error", err)
	}

	slog.Info("multipart upload aborted", "uploadId", uploadID)
	return nil
}

// Status reports which parts the server holds so a client can resume after a
// crash on either side.
func (m *MultipartService) Status(uploadID string) (*MultipartStatus, error) {
	upload, ok := m.index.GetUpload(uploadID)
	if !ok {
		return nil, ErrUploadNotFound
	}

	parts, err := m.index.ListParts(uploadID)
	if err != nil {
		return nil, err
	}
	present := make([]int, 0, len(parts))
	for _, p := range parts {
		present = append(present, p.PartNumber)
	}

	return &MultipartStatus{
		UploadID:   upload.UploadID,
		FileName:   upload.FileName,
		Status:     upload.Status,
		TotalParts: upload.TotalParts,
		Present:    present,
	}, nil
}
