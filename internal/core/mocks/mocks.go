package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/lorrc/logistics-ops-backend/internal/core/domain"
	"github.com/lorrc/logistics-ops-backend/internal/core/ports"
)

// MockConnection is a mock implementation of ports.Connection
type MockConnection struct {
	mock.Mock
}

func NewMockConnection() *MockConnection {
	return &MockConnection{}
}

func (m *MockConnection) SendMessage(msg domain.Message) error {
	args := m.Called(msg)
	return args.Error(0)
}

func (m *MockConnection) Close() error {
	args := m.Called()
	return args.Error(0)
}

// MockSnapshotSource is a mock implementation of ports.SnapshotSource
type MockSnapshotSource struct {
	mock.Mock
}

func NewMockSnapshotSource() *MockSnapshotSource {
	return &MockSnapshotSource{}
}

func (m *MockSnapshotSource) Shipments(ctx context.Context) ([]domain.Shipment, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Shipment), args.Error(1)
}

func (m *MockSnapshotSource) WeatherAlerts(ctx context.Context) ([]domain.WeatherAlert, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.WeatherAlert), args.Error(1)
}

func (m *MockSnapshotSource) InventoryAlerts(ctx context.Context) ([]domain.InventoryAlert, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.InventoryAlert), args.Error(1)
}

func (m *MockSnapshotSource) RegionConditions(ctx context.Context) ([]domain.RegionConditions, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.RegionConditions), args.Error(1)
}

func (m *MockSnapshotSource) DashboardMetrics(ctx context.Context) (domain.DashboardSnapshot, error) {
	args := m.Called(ctx)
	return args.Get(0).(domain.DashboardSnapshot), args.Error(1)
}

// MockPredictor is a mock implementation of ports.Predictor
type MockPredictor struct {
	mock.Mock
}

func NewMockPredictor() *MockPredictor {
	return &MockPredictor{}
}

func (m *MockPredictor) Predict(ctx context.Context, model string, features map[string]float64) (ports.Prediction, error) {
	args := m.Called(ctx, model, features)
	return args.Get(0).(ports.Prediction), args.Error(1)
}

// MockInsightService is a mock implementation of ports.InsightService
type MockInsightService struct {
	mock.Mock
}

func NewMockInsightService() *MockInsightService {
	return &MockInsightService{}
}

func (m *MockInsightService) Synthesize(ctx context.Context, role domain.Role, ic domain.InsightContext) ([]domain.Insight, error) {
	args := m.Called(ctx, role, ic)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Insight), args.Error(1)
}
