package uploads

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSweepNowEvictsExpiredSessions(t *testing.T) {
	sessions := NewMemorySessionStore()
	seed := SessionSeed{FileName: "f", TotalChunks: 10}

	_, err := sessions.AddChunk("stale", seed, 0, []byte("a"))
	require.NoError(t, err)
	_, err = sessions.AddChunk("fresh", seed, 0, []byte("a"))
	require.NoError(t, err)

	sessions.mu.Lock()
	sessions.sessions["stale"].CreatedAt = time.Now().Add(-3 * time.Hour)
	sessions.mu.Unlock()

	reaper := NewReaper(sessions, &Config{
		SessionTTL:      time.Hour,
		SweepInterval:   time.Minute,
		PreviewMaxBytes: DefaultPreviewMaxBytes,
		MaxParts:        DefaultMaxParts,
	})
	reaper.SweepNow()

	_, ok := sessions.Get("stale")
	assert.False(t, ok)
	_, ok = sessions.Get("fresh")
	assert.True(t, ok)
}
