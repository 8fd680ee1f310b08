package ports

import (
	"context"

	"github.com/google/uuid"
	"github.com/lorrc/logistics-ops-backend/internal/core/domain"
)

// Connection is the transport handle for one client. Implemented by the
// websocket adapter; the core only ever sees this interface.
type Connection interface {
	// SendMessage queues a message for delivery. It returns an error when
	// the connection is closed or its outbound buffer is full; it never
	// blocks on the network.
	SendMessage(msg domain.Message) error
	// Close releases the transport. Safe to call more than once.
	Close() error
}

// SessionRegistry is the single source of truth for session existence and
// attributes. All mutation goes through it; everyone else gets snapshots.
type SessionRegistry interface {
	Register(conn Connection) uuid.UUID
	Authenticate(id uuid.UUID, identity domain.Identity) error
	SetRegions(id uuid.UUID, regions []string) error
	Touch(id uuid.UUID)
	Snapshot(id uuid.UUID) (domain.SessionSnapshot, bool)
	Snapshots() []domain.SessionSnapshot
	Connection(id uuid.UUID) (Connection, bool)
	Remove(id uuid.UUID)
	Len() int
}

// SnapshotSource is the read-only view of the operational data store. Each
// call returns a fresh copy; the subsystem never writes back.
type SnapshotSource interface {
	Shipments(ctx context.Context) ([]domain.Shipment, error)
	WeatherAlerts(ctx context.Context) ([]domain.WeatherAlert, error)
	InventoryAlerts(ctx context.Context) ([]domain.InventoryAlert, error)
	RegionConditions(ctx context.Context) ([]domain.RegionConditions, error)
	DashboardMetrics(ctx context.Context) (domain.DashboardSnapshot, error)
}

// Prediction models the backend understands.
const (
	ModelRoute = "route"
	ModelFlood = "flood"
)

// Prediction is one result from the prediction backend.
type Prediction struct {
	Value      float64
	Confidence float64
}

// Predictor is the opaque, possibly slow, possibly failing prediction
// backend. Callers bound it with a context deadline; no retry is built in.
type Predictor interface {
	Predict(ctx context.Context, model string, features map[string]float64) (Prediction, error)
}

// InsightService synthesizes role-specific insights from a caller-supplied
// context bundle.
type InsightService interface {
	Synthesize(ctx context.Context, role domain.Role, ic domain.InsightContext) ([]domain.Insight, error)
}
