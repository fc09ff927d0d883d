package uploads

import (
	"context"
	"log/slog"
	"time"
)

// Reaper evicts chunked-upload sessions whose clients went away without
// finishing or cancelling. Without it, abandoned sessions pin their chunk
// buffers in memory forever.
type Reaper struct {
	sessions SessionStore
	ttl      time.Duration
	interval time.Duration
}

func NewReaper(sessions SessionStore, config *Config) *Reaper {
	return &Reaper{
		sessions: sessions,
		ttl:      config.SessionTTL,
		interval: config.SweepInterval,
	}
}

// Start sweeps on a ticker until ctx is cancelled.
func (r *Reaper) Start(ctx context.Context) error {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	slog.Info("session reaper started", "ttl", r.ttl, "interval", r.interval)

	for {
		select {
		case <-ctx.Done():
			slog.Info("session reaper stopped")
			return ctx.Err()
		case <-ticker.C:
			r.SweepNow()
		}
	}
}

// SweepNow evicts every session older than the ttl.
func (r *Reaper) SweepNow() {
	evicted := r.sessions.Sweep(time.Now().Add(-r.ttl))
	if len(evicted) > 0 {
		slog.Info("evicted expired upload sessions", "count", len(evicted), "ids", evicted)
	}
}
