package uploads

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestMultipart(t *testing.T) (*MultipartService, *fakeBackend) {
	t.Helper()

	storeSvc, backend := newTestStore(t)
	svc, err := NewMultipartService(storeSvc, newTestDB(t), DefaultConfig())
	require.NoError(t, err)
	return svc, backend
}

func TestMultipartHappyPath(t *testing.T) {
	svc, backend := newTestMultipart(t)
	ctx := context.Background()

	init, err := svc.Initiate(ctx, &InitiateParams{FileName: "big.mp4", TotalParts: 3})
	require.NoError(t, err)
	require.NotEmpty(t, init.UploadID)

	payloads := [][]byte{[]byte("part-one-"), []byte("part-two-"), []byte("part-three")}
	for i, payload := range payloads {
		res, err := svc.UploadPart(ctx, &UploadPartParams{
			UploadID:   init.UploadID,
			PartNumber: i + 1,
			Payload:    payload,
		})
		require.NoError(t, err)
		assert.Equal(t, i+1, res.PartNumber)
		assert.NotEmpty(t, res.ETag)
	}

	done, err := svc.Complete(ctx, init.UploadID)
	require.NoError(t, err)
	assert.NotEmpty(t, done.CID)
	assert.Equal(t, "https://gateway.test/"+done.CID, done.URL)
	assert.Equal(t, int64(len("part-one-part-two-part-three")), done.Size)

	data, ok := backend.object(init.Key)
	require.True(t, ok)
	assert.Equal(t, []byte("part-one-part-two-part-three"), data)

	status, err := svc.Status(init.UploadID)
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, status.Status)
}

func TestInitiateBoundsDeclaredParts(t *testing.T) {
	storeSvc, _ := newTestStore(t)
	cfg := DefaultConfig()
	cfg.MaxParts = 4
	svc, err := NewMultipartService(storeSvc, newTestDB(t), cfg)
	require.NoError(t, err)
	ctx := context.Background()

	_, err = svc.Initiate(ctx, &InitiateParams{FileName: "f", TotalParts: 5})
	assert.ErrorIs(t, err, ErrPartOutOfRange)
	_, err = svc.Initiate(ctx, &InitiateParams{FileName: "f", TotalParts: 0})
	assert.ErrorIs(t, err, ErrPartOutOfRange)

	_, err = svc.Initiate(ctx, &InitiateParams{FileName: "f", TotalParts: 4})
	require.NoError(t, err)
}

func TestUploadPartRetryReturnsRecordedETag(t *testing.T) {
	svc, backend := newTestMultipart(t)
	ctx := context.Background()

	init, err := svc.Initiate(ctx, &InitiateParams{FileName: "f", TotalParts: 2})
	require.NoError(t, err)

	first, err := svc.UploadPart(ctx, &UploadPartParams{UploadID: init.UploadID, PartNumber: 1, Payload: []byte("bytes")})
	require.NoError(t, err)
	callsAfterFirst := backend.partCalls

	// a retry after a lost response answers from the record, not the store
	second, err := svc.UploadPart(ctx, &UploadPartParams{UploadID: init.UploadID, PartNumber: 1, Payload: []byte("bytes")})
	require.NoError(t, err)
	assert.Equal(t, first.ETag, second.ETag)
	assert.Equal(t, callsAfterFirst, backend.partCalls)
}

func TestUploadPartValidation(t *testing.T) {
	svc, _ := newTestMultipart(t)
	ctx := context.Background()

	_, err := svc.UploadPart(ctx, &UploadPartParams{UploadID: "missing", PartNumber: 1, Payload: []byte("x")})
	assert.ErrorIs(t, err, ErrUploadNotFound)

	init, err := svc.Initiate(ctx, &InitiateParams{FileName: "f", TotalParts: 2})
	require.NoError(t, err)

	_, err = svc.UploadPart(ctx, &UploadPartParams{UploadID: init.UploadID, PartNumber: 0, Payload: []byte("x")})
	assert.ErrorIs(t, err, ErrPartOutOfRange)
	_, err = svc.UploadPart(ctx, &UploadPartParams{UploadID: init.UploadID, PartNumber: 3, Payload: []byte("x")})
	assert.ErrorIs(t, err, ErrPartOutOfRange)
}

func TestCompleteWithMissingParts(t *testing.T) {
	svc, _ := newTestMultipart(t)
	ctx := context.Background()

	init, err := svc.Initiate(ctx, &InitiateParams{FileName: "f", TotalParts: 3})
	require.NoError(t, err)

	for _, n := range []int{1, 3} {
		_, err := svc.UploadPart(ctx, &UploadPartParams{UploadID: init.UploadID, PartNumber: n, Payload: []byte("x")})
		require.NoError(t, err)
	}

	_, err = svc.Complete(ctx, init.UploadID)
	var incomplete *IncompleteError
	require.ErrorAs(t, err, &incomplete)
	assert.Equal(t, []int{1, 3}, incomplete.Present)
	assert.Equal(t, 3, incomplete.TotalParts)

	// the failed completion changed nothing; filling the gap succeeds
	_, err = svc.UploadPart(ctx, &UploadPartParams{UploadID: init.UploadID, PartNumber: 2, Payload: []byte("y")})
	require.NoError(t, err)
	_, err = svc.Complete(ctx, init.UploadID)
	require.NoError(t, err)
}

func TestAbortLifecycle(t *testing.T) {
	svc, _ := newTestMultipart(t)
	ctx := context.Background()

	init, err := svc.Initiate(ctx, &InitiateParams{FileName: "f", TotalParts: 2})
	require.NoError(t, err)
	_, err = svc.UploadPart(ctx, &UploadPartParams{UploadID: init.UploadID, PartNumber: 1, Payload: []byte("x")})
	require.NoError(t, err)

	require.NoError(t, svc.Abort(ctx, init.UploadID))

	status, err := svc.Status(init.UploadID)
	require.NoError(t, err)
	assert.Equal(t, StatusAborted, status.Status)
	assert.Empty(t, status.Present)

	// abort is idempotent
	require.NoError(t, svc.Abort(ctx, init.UploadID))

	// everything else is shut off
	_, err = svc.UploadPart(ctx, &UploadPartParams{UploadID: init.UploadID, PartNumber: 2, Payload: []byte("y")})
	var statusErr *StatusError
	assert.ErrorAs(t, err, &statusErr)
	_, err = svc.Complete(ctx, init.UploadID)
	assert.ErrorAs(t, err, &statusErr)
}

func TestAbortAfterCompleteRejected(t *testing.T) {
	svc, _ := newTestMultipart(t)
	ctx := context.Background()

	init, err := svc.Initiate(ctx, &InitiateParams{FileName: "f", TotalParts: 1})
	require.NoError(t, err)
	_, err = svc.UploadPart(ctx, &UploadPartParams{UploadID: init.UploadID, PartNumber: 1, Payload: []byte("x")})
	require.NoError(t, err)
	_, err = svc.Complete(ctx, init.UploadID)
	require.NoError(t, err)

	err = svc.Abort(ctx, init.UploadID)
	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, StatusCompleted, statusErr.Status)
}

func TestStatusReportsPresentParts(t *testing.T) {
	svc, _ := newTestMultipart(t)
	ctx := context.Background()

	init, err := svc.Initiate(ctx, &InitiateParams{FileName: "resume.bin", TotalParts: 4})
	require.NoError(t, err)

	for _, n := range []int{2, 4} {
		_, err := svc.UploadPart(ctx, &UploadPartParams{UploadID: init.UploadID, PartNumber: n, Payload: []byte("x")})
		require.NoError(t, err)
	}

	status, err := svc.Status(init.UploadID)
	require.NoError(t, err)
	assert.Equal(t, StatusActive, status.Status)
	assert.Equal(t, 4, status.TotalParts)
	assert.Equal(t, []int{2, 4}, status.Present)
	assert.Equal(t, "resume.bin", status.FileName)

	_, err = svc.Status("missing")
	assert.ErrorIs(t, err, ErrUploadNotFound)
}
