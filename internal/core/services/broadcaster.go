package services

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/lorrc/logistics-ops-backend/internal/core/domain"
	"github.com/lorrc/logistics-ops-backend/internal/core/ports"
	"github.com/lorrc/logistics-ops-backend/internal/infrastructure/logging"
)

// BroadcasterConfig holds the scheduler's timing knobs.
type BroadcasterConfig struct {
	// TickInterval is the fine-grained fan-out period.
	TickInterval time.Duration
	// DashboardEvery pushes the coarse dashboard snapshot every Nth tick.
	// Zero disables the coarse push.
	DashboardEvery int
	// FetchTimeout bounds all snapshot fetches within one tick.
	FetchTimeout time.Duration
}

// DefaultBroadcasterConfig keeps end-to-end staleness at or under 5 seconds
// for the fine-grained stream and 15 seconds for the dashboard snapshot.
func DefaultBroadcasterConfig() BroadcasterConfig {
	return BroadcasterConfig{
		TickInterval:   5 * time.Second,
		DashboardEvery: 3,
		FetchTimeout:   3 * time.Second,
	}
}

// Broadcaster is the periodic fan-out scheduler. On every tick it pulls
// fresh snapshots from the data store, filters them per session, and pushes
// each session's batch through its connection.
//
// The tick loop runs on a single goroutine, so ticks can never overlap: a
// tick that runs long delays the next one instead of racing it, which keeps
// the per-tick session snapshots atomic.
type Broadcaster struct {
	registry ports.SessionRegistry
	source   ports.SnapshotSource
	cfg      BroadcasterConfig
	logger   *slog.Logger

	startOnce sync.Once
	stopOnce  sync.Once
	stop      chan struct{}
	done      chan struct{}
}

// NewBroadcaster creates a stopped (idle) broadcaster.
func NewBroadcaster(registry ports.SessionRegistry, source ports.SnapshotSource, cfg BroadcasterConfig, logger *slog.Logger) *Broadcaster {
	return &Broadcaster{
		registry: registry,
		source:   source,
		cfg:      cfg,
		logger:   logger.With("component", "broadcaster"),
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start arms the tick timer. Subsequent calls are no-ops.
func (b *Broadcaster) Start(ctx context.Context) {
	b.startOnce.Do(func() {
		go b.run(ctx)
	})
}

// Stop disarms the timer and waits for an in-flight tick to finish.
func (b *Broadcaster) Stop() {
	b.stopOnce.Do(func() { close(b.stop) })
	<-b.done
}

func (b *Broadcaster) run(ctx context.Context) {
	defer close(b.done)

	ticker := time.NewTicker(b.cfg.TickInterval)
	defer ticker.Stop()

	b.logger.Info("broadcast scheduler started",
		"tick_interval", b.cfg.TickInterval,
		"dashboard_every", b.cfg.DashboardEvery,
	)

	n := 0
	for {
		select {
		case <-ctx.Done():
			b.logger.Info("broadcast scheduler stopped", "reason", ctx.Err())
			return
		case <-b.stop:
			b.logger.Info("broadcast scheduler stopped", "reason", "stop requested")
			return
		case <-ticker.C:
			n++
			withDashboard := b.cfg.DashboardEvery > 0 && n%b.cfg.DashboardEvery == 0
			b.Tick(ctx, withDashboard)
		}
	}
}

// tickSnapshots holds whatever this tick managed to fetch. A nil slice means
// that source failed and is simply skipped for this tick.
type tickSnapshots struct {
	shipments  []domain.Shipment
	weather    []domain.WeatherAlert
	inventory  []domain.InventoryAlert
	conditions []domain.RegionConditions
	dashboard  *domain.DashboardSnapshot
}

// Tick runs one fan-out pass. Not safe for concurrent use; the run loop is
// the only production caller and serializes invocations.
func (b *Broadcaster) Tick(ctx context.Context, withDashboard bool) {
	defer func() {
		if p := recover(); p != nil {
			logging.LogPanic(b.logger, p)
		}
	}()

	start := time.Now()

	fctx, cancel := context.WithTimeout(ctx, b.cfg.FetchTimeout)
	defer cancel()
	snaps := b.fetch(fctx, withDashboard)

	sessions := b.registry.Snapshots()
	pushed := 0
	for _, sess := range sessions {
		if !sess.Authenticated() {
			continue
		}
		batch := b.buildBatch(snaps, sess, withDashboard)
		if len(batch) == 0 {
			continue
		}
		if b.push(sess, batch) {
			pushed++
		}
	}

	b.logger.Debug("tick complete",
		"sessions", len(sessions),
		"pushed", pushed,
		"duration_ms", time.Since(start).Milliseconds(),
	)
}

// fetch pulls all snapshot sources concurrently. Each source fails
// independently: an error is logged and leaves its slice nil so the rest of
// the tick still goes out.
func (b *Broadcaster) fetch(ctx context.Context, withDashboard bool) tickSnapshots {
	var (
		mu    sync.Mutex
		snaps tickSnapshots
	)

	g := new(errgroup.Group)
	g.Go(func() error {
		s, err := b.source.Shipments(ctx)
		if err != nil {
			b.logger.Warn("shipment snapshot failed, skipping for this tick", "error", err)
			return nil
		}
		mu.Lock()
		snaps.shipments = s
		mu.Unlock()
		return nil
	})
	g.Go(func() error {
		a, err := b.source.WeatherAlerts(ctx)
		if err != nil {
			b.logger.Warn("weather alert snapshot failed, skipping for this tick", "error", err)
			return nil
		}
		mu.Lock()
		snaps.weather = a
		mu.Unlock()
		return nil
	})
	g.Go(func() error {
		a, err := b.source.InventoryAlerts(ctx)
		if err != nil {
			b.logger.Warn("inventory alert snapshot failed, skipping for this tick", "error", err)
			return nil
		}
		mu.Lock()
		snaps.inventory = a
		mu.Unlock()
		return nil
	})
	g.Go(func() error {
		c, err := b.source.RegionConditions(ctx)
		if err != nil {
			b.logger.Warn("region conditions snapshot failed, skipping for this tick", "error", err)
			return nil
		}
		mu.Lock()
		snaps.conditions = c
		mu.Unlock()
		return nil
	})
	if withDashboard {
		g.Go(func() error {
			d, err := b.source.DashboardMetrics(ctx)
			if err != nil {
				b.logger.Warn("dashboard snapshot failed, skipping for this tick", "error", err)
				return nil
			}
			mu.Lock()
			snaps.dashboard = &d
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	return snaps
}

// buildBatch assembles the ordered outbound batch for one session from the
// tick's snapshots. The session snapshot was taken once for this tick, so a
// control message arriving mid-tick cannot produce a half-updated decision.
func (b *Broadcaster) buildBatch(snaps tickSnapshots, sess domain.SessionSnapshot, withDashboard bool) []domain.Message {
	var batch []domain.Message

	for _, s := range snaps.shipments {
		if domain.ShipmentRelevant(s, sess) {
			batch = append(batch, domain.NewDeliveryUpdate(s))
		}
	}
	for _, a := range snaps.weather {
		if domain.WeatherAlertRelevant(a, sess) {
			batch = append(batch, domain.NewWeatherAlert(a))
		}
	}
	for _, a := range snaps.inventory {
		if domain.InventoryAlertRelevant(a, sess) {
			batch = append(batch, domain.NewInventoryAlert(a))
		}
	}

	var conditions []domain.RegionConditions
	for _, c := range snaps.conditions {
		if domain.ConditionsRelevant(c, sess) {
			conditions = append(conditions, c)
		}
	}
	if len(conditions) > 0 {
		batch = append(batch, domain.NewWeatherUpdate(conditions))
		batch = append(batch, domain.NewTrafficUpdate(conditions))
	}

	if withDashboard && snaps.dashboard != nil {
		batch = append(batch, domain.NewDashboardUpdate(*snaps.dashboard))
	}

	return batch
}

// push sends one session's batch. A send error removes the session and
// never propagates; the remaining sessions still get their batches.
func (b *Broadcaster) push(sess domain.SessionSnapshot, batch []domain.Message) bool {
	conn, ok := b.registry.Connection(sess.ID)
	if !ok {
		// Removed between snapshot and push; nothing to do.
		return false
	}

	for _, msg := range batch {
		if err := conn.SendMessage(msg); err != nil {
			b.logger.Warn("push failed, dropping session",
				"session_id", sess.ID,
				"error", err,
			)
			b.registry.Remove(sess.ID)
			return false
		}
	}
	b.registry.Touch(sess.ID)
	return true
}
