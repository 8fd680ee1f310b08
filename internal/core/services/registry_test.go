package services_test

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lorrc/logistics-ops-backend/internal/core/domain"
	apperrors "github.com/lorrc/logistics-ops-backend/internal/core/errors"
	"github.com/lorrc/logistics-ops-backend/internal/core/mocks"
	"github.com/lorrc/logistics-ops-backend/internal/core/services"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestSessionRegistry_Register(t *testing.T) {
	registry := services.NewSessionRegistry(testLogger())
	conn := mocks.NewMockConnection()

	id := registry.Register(conn)

	assert.NotEqual(t, uuid.Nil, id)
	assert.Equal(t, 1, registry.Len())

	snap, ok := registry.Snapshot(id)
	require.True(t, ok)
	assert.False(t, snap.Authenticated())
	assert.Empty(t, snap.Regions)

	got, ok := registry.Connection(id)
	require.True(t, ok)
	assert.Same(t, conn, got)
}

func TestSessionRegistry_Authenticate(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		registry := services.NewSessionRegistry(testLogger())
		id := registry.Register(mocks.NewMockConnection())

		err := registry.Authenticate(id, domain.Identity{
			UserID:   "u-42",
			Username: "priya",
			Role:     domain.RoleDriver,
		})
		require.NoError(t, err)

		snap, ok := registry.Snapshot(id)
		require.True(t, ok)
		assert.True(t, snap.Authenticated())
		assert.Equal(t, domain.RoleDriver, snap.Role())
		assert.Equal(t, "u-42", snap.Identity.UserID)
	})

	t.Run("missing user id", func(t *testing.T) {
		registry := services.NewSessionRegistry(testLogger())
		id := registry.Register(mocks.NewMockConnection())

		err := registry.Authenticate(id, domain.Identity{Role: domain.RoleDriver})
		assert.ErrorIs(t, err, apperrors.ErrUserIDRequired)
	})

	t.Run("missing role", func(t *testing.T) {
		registry := services.NewSessionRegistry(testLogger())
		id := registry.Register(mocks.NewMockConnection())

		err := registry.Authenticate(id, domain.Identity{UserID: "u-42"})
		assert.ErrorIs(t, err, apperrors.ErrRoleRequired)
	})

	t.Run("unknown session", func(t *testing.T) {
		registry := services.NewSessionRegistry(testLogger())

		err := registry.Authenticate(uuid.New(), domain.Identity{UserID: "u-42", Role: domain.RoleDriver})
		assert.ErrorIs(t, err, apperrors.ErrSessionNotFound)
	})
}

func TestSessionRegistry_SetRegions(t *testing.T) {
	registry := services.NewSessionRegistry(testLogger())
	id := registry.Register(mocks.NewMockConnection())

	require.NoError(t, registry.SetRegions(id, []string{"Western Sydney", "Melbourne"}))

	snap, ok := registry.Snapshot(id)
	require.True(t, ok)
	assert.Equal(t, []string{"Western Sydney", "Melbourne"}, snap.Regions)

	t.Run("replaces rather than appends", func(t *testing.T) {
		require.NoError(t, registry.SetRegions(id, []string{"Brisbane"}))

		snap, ok := registry.Snapshot(id)
		require.True(t, ok)
		assert.Equal(t, []string{"Brisbane"}, snap.Regions)
	})

	t.Run("unknown session", func(t *testing.T) {
		err := registry.SetRegions(uuid.New(), []string{"Brisbane"})
		assert.ErrorIs(t, err, apperrors.ErrSessionNotFound)
	})
}

func TestSessionRegistry_Touch(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	registry := services.NewSessionRegistry(testLogger(), services.WithClock(func() time.Time { return now }))
	id := registry.Register(mocks.NewMockConnection())

	now = now.Add(10 * time.Minute)
	registry.Touch(id)

	snap, ok := registry.Snapshot(id)
	require.True(t, ok)
	assert.Equal(t, now, snap.LastActivity)

	// Touching an evicted session must not panic or resurrect it.
	registry.Touch(uuid.New())
	assert.Equal(t, 1, registry.Len())
}

func TestSessionRegistry_Remove(t *testing.T) {
	registry := services.NewSessionRegistry(testLogger())
	conn := mocks.NewMockConnection()
	conn.On("Close").Return(nil).Once()

	id := registry.Register(conn)
	registry.Remove(id)

	assert.Equal(t, 0, registry.Len())
	_, ok := registry.Snapshot(id)
	assert.False(t, ok)

	// Second removal is a no-op; Close is not called again.
	registry.Remove(id)
	conn.AssertExpectations(t)
}

func TestSessionRegistry_SnapshotIsolation(t *testing.T) {
	registry := services.NewSessionRegistry(testLogger())
	id := registry.Register(mocks.NewMockConnection())
	require.NoError(t, registry.Authenticate(id, domain.Identity{UserID: "u-1", Role: domain.RoleWarehouseStaff}))
	require.NoError(t, registry.SetRegions(id, []string{"Melbourne"}))

	snap, ok := registry.Snapshot(id)
	require.True(t, ok)

	// Mutating the copy must not leak back into the registry.
	snap.Regions[0] = "Perth"
	snap.Identity.Role = domain.RoleBusinessOwner

	fresh, ok := registry.Snapshot(id)
	require.True(t, ok)
	assert.Equal(t, []string{"Melbourne"}, fresh.Regions)
	assert.Equal(t, domain.RoleWarehouseStaff, fresh.Role())
}

func TestSessionRegistry_Snapshots(t *testing.T) {
	registry := services.NewSessionRegistry(testLogger())
	a := registry.Register(mocks.NewMockConnection())
	b := registry.Register(mocks.NewMockConnection())

	snaps := registry.Snapshots()
	require.Len(t, snaps, 2)

	ids := []uuid.UUID{snaps[0].ID, snaps[1].ID}
	assert.Contains(t, ids, a)
	assert.Contains(t, ids, b)
}
