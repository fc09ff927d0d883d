package uploads

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"

	"github.com/mintgate/mediavault/internal/server/store"
)

// fakeBackend is an in-memory store.Backend that tracks call counts so tests
// can assert idempotent paths never reach the store.
type fakeBackend struct {
	mu        sync.Mutex
	objects   map[string][]byte
	uploads   map[string]*fakeMultipartUpload
	nextID    int
	partCalls int
}

type fakeMultipartUpload struct {
	key     string
	parts   map[int][]byte
	aborted bool
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		objects: make(map[string][]byte),
		uploads: make(map[string]*fakeMultipartUpload),
	}
}

func (f *fakeBackend) PutObject(ctx context.Context, params *store.PutObjectParams) (*store.PutObjectResponse, error) {
	data, err := io.ReadAll(params.Body)
	if err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[params.Key] = data

	sum := sha256.Sum256(data)
	return &store.PutObjectResponse{
		Key:          params.Key,
		ETag:         hex.EncodeToString(sum[:8]),
		Size:         int64(len(data)),
		LastModified: time.Now(),
	}, nil
}

func (f *fakeBackend) CreateMultipart(ctx context.Context, key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.nextID++
	id := fmt.Sprintf("store-upload-%d", f.nextID)
	f.uploads[id] = &fakeMultipartUpload{
		key:   key,
		parts: make(map[int][]byte),
	}
	return id, nil
}

func (f *fakeBackend) UploadPart(ctx context.Context, params *store.UploadPartParams) (string, error) {
	data, err := io.ReadAll(params.Body)
	if err != nil {
		return "", err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.partCalls++

	up, ok := f.uploads[params.UploadID]
	if !ok || up.aborted {
		return "", fmt.Errorf("no such upload %s", params.UploadID)
	}
	up.parts[params.PartNumber] = data

	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:8]), nil
}

func (f *fakeBackend) CompleteMultipart(ctx context.Context, params *store.CompleteMultipartParams) (*store.PutObjectResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	up, ok := f.uploads[params.UploadID]
	if !ok || up.aborted {
		return nil, fmt.Errorf("no such upload %s", params.UploadID)
	}

	numbers := make([]int, 0, len(up.parts))
	for n := range up.parts {
		numbers = append(numbers, n)
	}
	sort.Ints(numbers)

	var assembled []byte
	for _, n := range numbers {
		assembled = append(assembled, up.parts[n]...)
	}
	f.objects[up.key] = assembled
	delete(f.uploads, params.UploadID)

	sum := sha256.Sum256(assembled)
	return &store.PutObjectResponse{
		Key:          up.key,
		ETag:         hex.EncodeToString(sum[:8]) + fmt.Sprintf("-%d", len(params.Parts)),
		Size:         params.Size,
		LastModified: time.Now(),
	}, nil
}

func (f *fakeBackend) AbortMultipart(ctx context.Context, key string, uploadID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if up, ok := f.uploads[uploadID]; ok {
		up.aborted = true
		up.parts = make(map[int][]byte)
	}
	return nil
}

func (f *fakeBackend) DeleteObject(ctx context.Context, key string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	_, ok := f.objects[key]
	delete(f.objects, key)
	return ok, nil
}

func (f *fakeBackend) object(key string) ([]byte, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.objects[key]
	return data, ok
}

var _ store.Backend = (*fakeBackend)(nil)

func newTestDB(t *testing.T) *sqlx.DB {
	t.Helper()

	db, err := sqlx.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func newTestStore(t *testing.T) (*store.StoreService, *fakeBackend) {
	t.Helper()

	backend := newFakeBackend()
	cfg := &store.Config{
		BucketName: "test-bucket",
		Region:     "us-east-1",
		AccessKey:  "test-access",
		SecretKey:  "test-secret",
		GatewayURL: "https://gateway.test",
	}
	svc, err := store.NewStoreServiceWithBackend(backend, cfg, newTestDB(t))
	require.NoError(t, err)
	return svc, backend
}
