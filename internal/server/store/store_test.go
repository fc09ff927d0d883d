package store

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memBackend struct {
	objects map[string][]byte
}

func (m *memBackend) PutObject(ctx context.Context, params *PutObjectParams) (*PutObjectResponse, error) {
	data, err := io.ReadAll(params.Body)
	if err != nil {
		return nil, err
	}
	m.objects[params.Key] = data
	return &PutObjectResponse{
		Key:          params.Key,
		ETag:         "etag-" + params.Key,
		Size:         int64(len(data)),
		LastModified: time.Now(),
	}, nil
}

func (m *memBackend) CreateMultipart(ctx context.Context, key string) (string, error) {
	return "mem-upload", nil
}

func (m *memBackend) UploadPart(ctx context.Context, params *UploadPartParams) (string, error) {
	return "mem-etag", nil
}

func (m *memBackend) CompleteMultipart(ctx context.Context, params *CompleteMultipartParams) (*PutObjectResponse, error) {
	return &PutObjectResponse{
		Key:          params.Key,
		ETag:         "composite-etag",
		Size:         params.Size,
		LastModified: time.Now(),
	}, nil
}

func (m *memBackend) AbortMultipart(ctx context.Context, key string, uploadID string) error {
	return nil
}

func (m *memBackend) DeleteObject(ctx context.Context, key string) (bool, error) {
	delete(m.objects, key)
	return true, nil
}

func newTestService(t *testing.T) (*StoreService, *memBackend) {
	t.Helper()

	db, err := sqlx.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	backend := &memBackend{objects: map[string][]byte{}}
	cfg := &Config{
		BucketName: "b",
		Region:     "us-east-1",
		AccessKey:  "k",
		SecretKey:  "s",
		GatewayURL: "https://gateway.test/",
	}
	svc, err := NewStoreServiceWithBackend(backend, cfg, db)
	require.NoError(t, err)
	return svc, backend
}

func TestPutContentIndexesUnderCID(t *testing.T) {
	svc, backend := newTestService(t)

	data := []byte("some stored bytes")
	content, err := svc.PutContent(context.Background(), data)
	require.NoError(t, err)

	assert.Equal(t, ComputeCID(data), content.CID)
	assert.Equal(t, ContentKey(content.CID), content.Key)
	assert.Equal(t, int64(len(data)), content.Size)
	assert.Equal(t, data, backend.objects[content.Key])

	indexed, ok := svc.Index().Get(content.CID)
	require.True(t, ok)
	assert.Equal(t, content.Key, indexed.Key)
}

func TestPutContentIsIdempotentPerBytes(t *testing.T) {
	svc, backend := newTestService(t)

	first, err := svc.PutContent(context.Background(), []byte("dup"))
	require.NoError(t, err)
	second, err := svc.PutContent(context.Background(), []byte("dup"))
	require.NoError(t, err)

	assert.Equal(t, first.CID, second.CID)
	assert.Equal(t, first.Key, second.Key)
	assert.Len(t, backend.objects, 1)
}

func TestGatewayURL(t *testing.T) {
	svc, _ := newTestService(t)
	// trailing slash on the configured base does not double up
	assert.Equal(t, "https://gateway.test/abc123", svc.GatewayURL("abc123"))
}

func TestCompleteMultipartAdoptsETagAsCID(t *testing.T) {
	svc, _ := newTestService(t)

	content, err := svc.CompleteMultipart(context.Background(), &CompleteMultipartParams{
		Key:      "multipart/u1/file.bin",
		UploadID: "mem-upload",
		Parts:    []*CompletedPart{{PartNumber: 1, ETag: "e1"}},
		Size:     42,
	})
	require.NoError(t, err)

	assert.Equal(t, "composite-etag", content.CID)
	assert.Equal(t, int64(42), content.Size)

	indexed, ok := svc.Index().Get(content.CID)
	require.True(t, ok)
	assert.Equal(t, "multipart/u1/file.bin", indexed.Key)
}
