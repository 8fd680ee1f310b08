package services

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/lorrc/logistics-ops-backend/internal/core/ports"
)

// Reaper evicts sessions whose last activity is older than the idle
// threshold. It is the only component allowed to terminate a session that
// did not close itself.
type Reaper struct {
	registry  ports.SessionRegistry
	interval  time.Duration
	idleAfter time.Duration
	logger    *slog.Logger
	now       func() time.Time

	startOnce sync.Once
	stopOnce  sync.Once
	stop      chan struct{}
	done      chan struct{}
}

// ReaperOption customizes a Reaper.
type ReaperOption func(*Reaper)

// WithReaperClock overrides the reaper's clock.
func WithReaperClock(now func() time.Time) ReaperOption {
	return func(r *Reaper) { r.now = now }
}

// NewReaper creates a stopped reaper. interval is the sweep period,
// idleAfter the inactivity threshold.
func NewReaper(registry ports.SessionRegistry, interval, idleAfter time.Duration, logger *slog.Logger, opts ...ReaperOption) *Reaper {
	r := &Reaper{
		registry:  registry,
		interval:  interval,
		idleAfter: idleAfter,
		logger:    logger.With("component", "reaper"),
		now:       time.Now,
		stop:      make(chan struct{}),
		done:      make(chan struct{}),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Start arms the sweep timer. Subsequent calls are no-ops.
func (r *Reaper) Start(ctx context.Context) {
	r.startOnce.Do(func() {
		go r.run(ctx)
	})
}

// Stop disarms the timer and waits for an in-flight sweep to finish.
func (r *Reaper) Stop() {
	r.stopOnce.Do(func() { close(r.stop) })
	<-r.done
}

func (r *Reaper) run(ctx context.Context) {
	defer close(r.done)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.logger.Info("liveness reaper started",
		"sweep_interval", r.interval,
		"idle_threshold", r.idleAfter,
	)

	for {
		select {
		case <-ctx.Done():
			return
		case <-r.stop:
			return
		case <-ticker.C:
			r.Sweep()
		}
	}
}

// Sweep evicts every session idle beyond the threshold. Removal goes through
// the registry, so a session that closed itself concurrently is a no-op.
func (r *Reaper) Sweep() {
	now := r.now()
	for _, snap := range r.registry.Snapshots() {
		idle := now.Sub(snap.LastActivity)
		if idle <= r.idleAfter {
			continue
		}
		r.logger.Info("evicting idle session",
			"session_id", snap.ID,
			"idle", idle,
		)
		r.registry.Remove(snap.ID)
	}
}
