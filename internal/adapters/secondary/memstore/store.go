// Package memstore is the volatile, in-memory stand-in for the operations
// data store. The real-time subsystem only ever reads from it; every method
// returns a copy so callers can never mutate shared state.
package memstore

import (
	"context"
	_ "embed"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/lorrc/logistics-ops-backend/internal/core/domain"
	"github.com/lorrc/logistics-ops-backend/internal/core/ports"
)

//go:embed fixtures.yaml
var defaultFixtures []byte

// fixtures is the YAML seed schema.
type fixtures struct {
	Shipments       []domain.Shipment         `yaml:"shipments"`
	WeatherAlerts   []domain.WeatherAlert     `yaml:"weatherAlerts"`
	InventoryAlerts []domain.InventoryAlert   `yaml:"inventoryAlerts"`
	Conditions      []domain.RegionConditions `yaml:"conditions"`
	Dashboard       domain.DashboardSnapshot  `yaml:"dashboard"`
}

// Store holds the mock operational data behind a read/write lock.
type Store struct {
	mu     sync.RWMutex
	data   fixtures
	logger *slog.Logger
}

var _ ports.SnapshotSource = (*Store)(nil)

// New creates a store seeded from the embedded fixtures.
func New(logger *slog.Logger) (*Store, error) {
	return newFromBytes(defaultFixtures, logger)
}

// NewFromFile creates a store seeded from a fixtures file on disk.
func NewFromFile(path string, logger *slog.Logger) (*Store, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixtures: %w", err)
	}
	return newFromBytes(raw, logger)
}

func newFromBytes(raw []byte, logger *slog.Logger) (*Store, error) {
	var data fixtures
	if err := yaml.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("parse fixtures: %w", err)
	}

	s := &Store{
		data:   data,
		logger: logger.With("component", "memstore"),
	}
	s.logger.Info("mock store seeded",
		"shipments", len(data.Shipments),
		"weather_alerts", len(data.WeatherAlerts),
		"inventory_alerts", len(data.InventoryAlerts),
		"regions", len(data.Conditions),
	)
	return s, nil
}

// Ping reports store availability for readiness probes.
func (s *Store) Ping(ctx context.Context) error {
	return ctx.Err()
}

// Shipments returns a snapshot of all current shipments.
func (s *Store) Shipments(ctx context.Context) ([]domain.Shipment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.Shipment(nil), s.data.Shipments...), nil
}

// WeatherAlerts returns a snapshot of all active weather alerts.
func (s *Store) WeatherAlerts(ctx context.Context) ([]domain.WeatherAlert, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.WeatherAlert(nil), s.data.WeatherAlerts...), nil
}

// InventoryAlerts returns a snapshot of all active inventory alerts.
func (s *Store) InventoryAlerts(ctx context.Context) ([]domain.InventoryAlert, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.InventoryAlert(nil), s.data.InventoryAlerts...), nil
}

// RegionConditions returns a snapshot of per-region weather and traffic.
func (s *Store) RegionConditions(ctx context.Context) ([]domain.RegionConditions, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.RegionConditions(nil), s.data.Conditions...), nil
}

// DashboardMetrics returns the coarse dashboard snapshot.
func (s *Store) DashboardMetrics(ctx context.Context) (domain.DashboardSnapshot, error) {
	if err := ctx.Err(); err != nil {
		return domain.DashboardSnapshot{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := domain.DashboardSnapshot{
		Metrics:    make(map[string]float64, len(s.data.Dashboard.Metrics)),
		Alerts:     append([]string(nil), s.data.Dashboard.Alerts...),
		Activities: append([]string(nil), s.data.Dashboard.Activities...),
	}
	for k, v := range s.data.Dashboard.Metrics {
		snap.Metrics[k] = v
	}
	return snap, nil
}
