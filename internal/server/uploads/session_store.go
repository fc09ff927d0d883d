package uploads

import (
	"errors"
	"sort"
	"sync"
	"time"
)

var (
	ErrChunkIndexOutOfRange = errors.New("chunk index out of range")
)

// ChunkSession is the transient state of one chunked upload, held in server
// memory until every declared chunk has arrived or the reaper evicts it.
type ChunkSession struct {
	UploadID    string
	FileName    string
	Encrypt     bool
	TotalChunks int
	Chunks      map[int][]byte
	CreatedAt   time.Time
}

// SessionSeed carries the immutable fields of a session. The first submission
// for an upload id wins them; later copies are ignored.
type SessionSeed struct {
	FileName    string
	Encrypt     bool
	TotalChunks int
}

// ChunkProgress reports the state of a session after a chunk submission.
// Session is non-nil exactly once: on the submission that completed the
// session, which also removes it from the store.
type ChunkProgress struct {
	Received int
	Total    int
	Session  *ChunkSession
}

// SessionView is a read-only snapshot for status queries.
type SessionView struct {
	FileName    string
	Encrypt     bool
	TotalChunks int
	Received    int
	Indices     []int
	CreatedAt   time.Time
}

// SessionStore holds chunked-upload sessions. The single in-process
// implementation below keeps them in a map; a distributed deployment swaps in
// a shared backend behind the same interface without touching callers.
type SessionStore interface {
	// AddChunk atomically creates the session on first contact (seeded from
	// seed) and records payload at index. When the chunk completes the
	// session, the session is removed from the store and returned in the
	// progress report, so removal happens exactly once even under
	// concurrent submissions.
	AddChunk(id string, seed SessionSeed, index int, payload []byte) (*ChunkProgress, error)

	// Get returns a snapshot of the session, if present.
	Get(id string) (*SessionView, bool)

	// Delete removes the session unconditionally. Deleting an absent
	// session is not an error.
	Delete(id string)

	// Sweep evicts sessions created before cutoff and returns their ids.
	Sweep(cutoff time.Time) []string
}

// MemorySessionStore is the process-local SessionStore. All mutation happens
// under one mutex, which makes the first-writer-wins seed and the
// exactly-once session removal explicit.
type MemorySessionStore struct {
	mu       sync.Mutex
	sessions map[string]*ChunkSession
}

func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{
		sessions: make(map[string]*ChunkSession),
	}
}

func (m *MemorySessionStore) AddChunk(id string, seed SessionSeed, index int, payload []byte) (*ChunkProgress, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	sess, ok := m.sessions[id]
	if !ok {
		if index < 0 || index >= seed.TotalChunks {
			return nil, ErrChunkIndexOutOfRange
		}
		sess = &ChunkSession{
			UploadID:    id,
			FileName:    seed.FileName,
			Encrypt:     seed.Encrypt,
			TotalChunks: seed.TotalChunks,
			Chunks:      make(map[int][]byte, seed.TotalChunks),
			CreatedAt:   time.Now(),
		}
		m.sessions[id] = sess
	}

	// validate against the session's own declared count, not the caller's
	// copy: a bad index rejects this chunk only, the session stays intact
	if index < 0 || index >= sess.TotalChunks {
		return nil, ErrChunkIndexOutOfRange
	}

	// resubmission of an index overwrites; submission is idempotent per index
	sess.Chunks[index] = payload

	progress := &ChunkProgress{
		Received: len(sess.Chunks),
		Total:    sess.TotalChunks,
	}

	if len(sess.Chunks) == sess.TotalChunks {
		delete(m.sessions, id)
		progress.Session = sess
	}

	return progress, nil
}

func (m *MemorySessionStore) Get(id string) (*SessionView, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	sess, ok := m.sessions[id]
	if !ok {
		return nil, false
	}

	indices := make([]int, 0, len(sess.Chunks))
	for idx := range sess.Chunks {
		indices = append(indices, idx)
	}
	sort.Ints(indices)

	return &SessionView{
		FileName:    sess.FileName,
		Encrypt:     sess.Encrypt,
		TotalChunks: sess.TotalChunks,
		Received:    len(sess.Chunks),
		Indices:     indices,
		CreatedAt:   sess.CreatedAt,
	}, true
}

func (m *MemorySessionStore) Delete(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
}

func (m *MemorySessionStore) Sweep(cutoff time.Time) []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	var evicted []string
	for id, sess := range m.sessions {
		if sess.CreatedAt.Before(cutoff) {
			delete(m.sessions, id)
			evicted = append(evicted, id)
		}
	}
	return evicted
}

var _ SessionStore = (*MemorySessionStore)(nil)
