package domain_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/lorrc/logistics-ops-backend/internal/core/domain"
)

func snapshot(role domain.Role, regions ...string) domain.SessionSnapshot {
	return domain.SessionSnapshot{
		ID:       uuid.New(),
		Identity: &domain.Identity{UserID: "u-1", Username: "test", Role: role},
		Regions:  regions,
	}
}

func TestShipmentRelevant(t *testing.T) {
	delivered := domain.Shipment{ID: "SHP-1", Status: domain.ShipmentDelivered}
	inTransit := domain.Shipment{ID: "SHP-2", Status: domain.ShipmentInTransit}

	t.Run("driver sees only undelivered shipments", func(t *testing.T) {
		driver := snapshot(domain.RoleDriver)

		assert.False(t, domain.ShipmentRelevant(delivered, driver))
		assert.True(t, domain.ShipmentRelevant(inTransit, driver))
	})

	t.Run("other roles see all shipments", func(t *testing.T) {
		for _, role := range []domain.Role{domain.RoleWarehouseStaff, domain.RoleLogisticsManager, domain.RoleBusinessOwner} {
			snap := snapshot(role)
			assert.True(t, domain.ShipmentRelevant(delivered, snap), "role %s", role)
			assert.True(t, domain.ShipmentRelevant(inTransit, snap), "role %s", role)
		}
	})

	t.Run("unauthenticated session gets nothing", func(t *testing.T) {
		snap := domain.SessionSnapshot{ID: uuid.New()}
		assert.False(t, domain.ShipmentRelevant(inTransit, snap))
	})
}

func TestWeatherAlertRelevant(t *testing.T) {
	tests := []struct {
		name    string
		region  string
		regions []string
		want    bool
	}{
		{"empty interest receives everything", "Melbourne", nil, true},
		{"exact region match", "Western Sydney", []string{"Western Sydney"}, true},
		{"substring match on longer region name", "Western Sydney CBD", []string{"Western Sydney"}, true},
		{"non-matching region excluded", "Melbourne", []string{"Western Sydney"}, false},
		{"any of several subscriptions matches", "Brisbane M1", []string{"Melbourne", "Brisbane"}, true},
		{"matching is case-sensitive", "western sydney", []string{"Western Sydney"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snap := snapshot(domain.RoleLogisticsManager, tt.regions...)
			alert := domain.WeatherAlert{ID: "WX-1", Region: tt.region}
			assert.Equal(t, tt.want, domain.WeatherAlertRelevant(alert, snap))
		})
	}
}

func TestInventoryAlertRelevant(t *testing.T) {
	alert := domain.InventoryAlert{ID: "INV-1", Location: "Western Sydney Warehouse 2"}

	t.Run("gated to warehouse staff and logistics managers", func(t *testing.T) {
		assert.True(t, domain.InventoryAlertRelevant(alert, snapshot(domain.RoleWarehouseStaff)))
		assert.True(t, domain.InventoryAlertRelevant(alert, snapshot(domain.RoleLogisticsManager)))
		assert.False(t, domain.InventoryAlertRelevant(alert, snapshot(domain.RoleDriver)))
		assert.False(t, domain.InventoryAlertRelevant(alert, snapshot(domain.RoleBusinessOwner)))
		assert.False(t, domain.InventoryAlertRelevant(alert, snapshot("auditor")))
	})

	t.Run("region interest still applies", func(t *testing.T) {
		assert.True(t, domain.InventoryAlertRelevant(alert, snapshot(domain.RoleWarehouseStaff, "Western Sydney")))
		assert.False(t, domain.InventoryAlertRelevant(alert, snapshot(domain.RoleWarehouseStaff, "Melbourne")))
	})
}

func TestConditionsRelevant(t *testing.T) {
	conditions := domain.RegionConditions{
		Region:  "Western Sydney",
		Traffic: domain.TrafficConditions{Route: "Western Sydney M4"},
	}

	t.Run("matches on region name", func(t *testing.T) {
		assert.True(t, domain.ConditionsRelevant(conditions, snapshot(domain.RoleDriver, "Western Sydney")))
	})

	t.Run("matches on route name", func(t *testing.T) {
		snap := snapshot(domain.RoleDriver, "M4")
		assert.True(t, domain.ConditionsRelevant(conditions, snap))
	})

	t.Run("excluded when neither matches", func(t *testing.T) {
		assert.False(t, domain.ConditionsRelevant(conditions, snapshot(domain.RoleDriver, "Melbourne")))
	})

	t.Run("empty interest receives everything", func(t *testing.T) {
		assert.True(t, domain.ConditionsRelevant(conditions, snapshot(domain.RoleDriver)))
	})

	t.Run("unauthenticated session gets nothing", func(t *testing.T) {
		assert.False(t, domain.ConditionsRelevant(conditions, domain.SessionSnapshot{ID: uuid.New()}))
	})
}
