package uploads

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
)

type SubmitChunkParams struct {
	UploadID    string
	FileName    string
	Encrypt     bool
	ChunkIndex  int
	TotalChunks int
	Payload     []byte
}

// SubmitChunkResult is either a progress report (Ingest nil) or, on the
// submission that completed the session, the terminal ingest result.
type SubmitChunkResult struct {
	Received int
	Total    int
	Ingest   *IngestResult
}

// Assembler accepts out-of-order chunks for a logical upload and hands the
// concatenated bytes to the ingestor once every declared chunk is present.
type Assembler struct {
	sessions SessionStore
	ingest   *Ingestor
}

func NewAssembler(sessions SessionStore, ingest *Ingestor) *Assembler {
	return &Assembler{
		sessions: sessions,
		ingest:   ingest,
	}
}

// Submit records one chunk. The first submission for an upload id seeds the
// session; the seed fields of later submissions are ignored. When the last
// chunk arrives the session is taken out of the store (exactly once, before
// the store upload, so neither success nor failure leaves it resident) and
// assembled in index order.
func (a *Assembler) Submit(ctx context.Context, params *SubmitChunkParams) (*SubmitChunkResult, error) {
	seed := SessionSeed{
		FileName:    params.FileName,
		Encrypt:     params.Encrypt,
		TotalChunks: params.TotalChunks,
	}

	progress, err := a.sessions.AddChunk(params.UploadID, seed, params.ChunkIndex, params.Payload)
	if err != nil {
		return nil, err
	}

	if progress.Session == nil {
		return &SubmitChunkResult{
			Received: progress.Received,
			Total:    progress.Total,
		}, nil
	}

	result, err := a.assemble(ctx, progress.Session)
	if err != nil {
		return nil, err
	}

	return &SubmitChunkResult{
		Received: progress.Received,
		Total:    progress.Total,
		Ingest:   result,
	}, nil
}

// Status reports whether a session exists and which chunks have arrived.
func (a *Assembler) Status(uploadID string) (*SessionView, bool) {
	return a.sessions.Get(uploadID)
}

// Cancel removes the in-memory session unconditionally; cancelling a
// non-existent upload is not an error.
func (a *Assembler) Cancel(uploadID string) {
	a.sessions.Delete(uploadID)
}

func (a *Assembler) assemble(ctx context.Context, sess *ChunkSession) (*IngestResult, error) {
	var buf bytes.Buffer
	for i := 0; i < sess.TotalChunks; i++ {
		chunk, ok := sess.Chunks[i]
		if !ok {
			// cannot happen: the store only releases complete sessions
			return nil, fmt.Errorf("missing chunk %d of upload %s", i, sess.UploadID)
		}
		buf.Write(chunk)
	}

	slog.Info("assembling chunked upload",
		"uploadId", sess.UploadID,
		"file", sess.FileName,
		"chunks", sess.TotalChunks,
		"bytes", buf.Len(),
	)

	return a.ingest.Ingest(ctx, &IngestParams{
		Data:     buf.Bytes(),
		FileName: sess.FileName,
		Encrypt:  sess.Encrypt,
	})
}
