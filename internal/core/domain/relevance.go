package domain

import "strings"

// Relevance predicates. Each one is a pure function of (event, session
// snapshot) so a batch of events can be filtered in one pass per session,
// and each predicate can be tested on its own.
//
// Region matching is a case-sensitive substring check on free-form
// region/location/route names. A subscription to "Western Sydney" matches
// "Western Sydney CBD". Loose, but it is the contract the dashboard relies
// on; a structured region-ID scheme would be a breaking change.

// matchesRegion reports whether name contains any subscribed region
// substring. An empty interest set matches everything.
func matchesRegion(name string, regions []string) bool {
	if len(regions) == 0 {
		return true
	}
	for _, r := range regions {
		if strings.Contains(name, r) {
			return true
		}
	}
	return false
}

// ShipmentRelevant decides whether a delivery update reaches a session.
// Drivers only see shipments that are not yet delivered. Every other
// authenticated role sees all shipments; there is deliberately no
// per-driver assignment filter.
func ShipmentRelevant(s Shipment, snap SessionSnapshot) bool {
	if !snap.Authenticated() {
		return false
	}
	if snap.Role() == RoleDriver {
		return s.Status != ShipmentDelivered
	}
	return true
}

// WeatherAlertRelevant decides whether a weather alert reaches a session.
func WeatherAlertRelevant(a WeatherAlert, snap SessionSnapshot) bool {
	if !snap.Authenticated() {
		return false
	}
	return matchesRegion(a.Region, snap.Regions)
}

// InventoryAlertRelevant decides whether an inventory alert reaches a
// session. Only warehouse staff and logistics managers receive them.
func InventoryAlertRelevant(a InventoryAlert, snap SessionSnapshot) bool {
	if !snap.Authenticated() {
		return false
	}
	if r := snap.Role(); r != RoleWarehouseStaff && r != RoleLogisticsManager {
		return false
	}
	return matchesRegion(a.Location, snap.Regions)
}

// ConditionsRelevant decides whether a region's weather/traffic conditions
// reach a session. Either the region name or the route name may match.
func ConditionsRelevant(c RegionConditions, snap SessionSnapshot) bool {
	if !snap.Authenticated() {
		return false
	}
	if len(snap.Regions) == 0 {
		return true
	}
	return matchesRegion(c.Region, snap.Regions) || matchesRegion(c.Traffic.Route, snap.Regions)
}
