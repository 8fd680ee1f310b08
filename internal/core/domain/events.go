package domain

import "time"

// Shipment status values as reported by the data store.
const (
	ShipmentPending   = "pending"
	ShipmentInTransit = "in_transit"
	ShipmentDelayed   = "delayed"
	ShipmentDelivered = "delivered"
)

// Shipment is a point-in-time view of one delivery.
type Shipment struct {
	ID          string    `json:"id" yaml:"id"`
	Status      string    `json:"status" yaml:"status"`
	Origin      string    `json:"origin" yaml:"origin"`
	Destination string    `json:"destination" yaml:"destination"`
	Route       string    `json:"route" yaml:"route"`
	ETA         time.Time `json:"eta" yaml:"eta"`
}

// WeatherAlert is an active weather warning for a region.
type WeatherAlert struct {
	ID       string    `json:"id" yaml:"id"`
	Region   string    `json:"region" yaml:"region"`
	Severity string    `json:"severity" yaml:"severity"`
	Headline string    `json:"headline" yaml:"headline"`
	Issued   time.Time `json:"issued" yaml:"issued"`
}

// InventoryAlert flags a stock level that dropped below its floor.
type InventoryAlert struct {
	ID          string `json:"id" yaml:"id"`
	SKU         string `json:"sku" yaml:"sku"`
	Name        string `json:"name" yaml:"name"`
	Location    string `json:"location" yaml:"location"`
	Quantity    int    `json:"quantity" yaml:"quantity"`
	MinQuantity int    `json:"minQuantity" yaml:"minQuantity"`
}

// WeatherConditions is the current weather for one region.
type WeatherConditions struct {
	TempC     float64 `json:"tempC" yaml:"tempC"`
	Condition string  `json:"condition" yaml:"condition"`
	WindKph   float64 `json:"windKph" yaml:"windKph"`
}

// TrafficConditions is the current traffic state for one route.
type TrafficConditions struct {
	Route           string `json:"route" yaml:"route"`
	CongestionLevel string `json:"congestionLevel" yaml:"congestionLevel"`
	DelayMinutes    int    `json:"delayMinutes" yaml:"delayMinutes"`
}

// RegionConditions bundles weather and traffic for one region, as the
// data store reports them.
type RegionConditions struct {
	Region  string            `json:"region" yaml:"region"`
	Weather WeatherConditions `json:"weather" yaml:"weather"`
	Traffic TrafficConditions `json:"traffic" yaml:"traffic"`
}

// DashboardSnapshot is the coarse dashboard view pushed on the slow cadence.
type DashboardSnapshot struct {
	Metrics    map[string]float64 `json:"metrics" yaml:"metrics"`
	Alerts     []string           `json:"alerts" yaml:"alerts"`
	Activities []string           `json:"activities" yaml:"activities"`
}
