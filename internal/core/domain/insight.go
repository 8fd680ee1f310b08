package domain

// InsightPriority ranks how urgently an insight should be acted on.
type InsightPriority string

const (
	PriorityLow      InsightPriority = "low"
	PriorityMedium   InsightPriority = "medium"
	PriorityHigh     InsightPriority = "high"
	PriorityCritical InsightPriority = "critical"
)

// Insight kinds emitted by the synthesizer.
const (
	InsightRouteOptimization     = "route_optimization"
	InsightWeatherImpact         = "weather_impact"
	InsightInventoryRestock      = "inventory_restock"
	InsightShipmentDelay         = "shipment_delay"
	InsightSupplyChainDisruption = "supply_chain_disruption"
	InsightFleetUtilization      = "fleet_utilization"
	InsightDemandForecast        = "demand_forecast"
	InsightProfitMargin          = "profit_margin"
	InsightCustomerEconomics     = "customer_economics"
)

// Insight is a synthesized, role-specific recommendation. Produced on demand
// for the requesting session only, never persisted.
type Insight struct {
	Kind            string          `json:"kind"`
	Title           string          `json:"title"`
	Description     string          `json:"description"`
	Confidence      float64         `json:"confidence"`
	SuggestedAction string          `json:"suggestedAction"`
	Priority        InsightPriority `json:"priority"`
}

// InsightContext is the caller-supplied bundle a REQUEST_INSIGHTS message
// carries. Every field is optional; the role decides which ones matter.
type InsightContext struct {
	Route             *RouteContext      `json:"route,omitempty"`
	Weather           *WeatherContext    `json:"weather,omitempty"`
	Traffic           *TrafficContext    `json:"traffic,omitempty"`
	Inventory         []InventoryLevel   `json:"inventory,omitempty"`
	IncomingShipments []IncomingShipment `json:"incomingShipments,omitempty"`
	SupplyChain       []NodeHealth       `json:"supplyChain,omitempty"`
	Fleet             []VehicleStatus    `json:"fleet,omitempty"`
	Financial         *FinancialMetrics  `json:"financial,omitempty"`
	Demand            *DemandForecast    `json:"demand,omitempty"`
}

// RouteContext describes the route a driver is about to run.
type RouteContext struct {
	Origin      string  `json:"origin"`
	Destination string  `json:"destination"`
	DistanceKm  float64 `json:"distanceKm"`
	Stops       int     `json:"stops"`
}

// WeatherContext describes local weather near a driver's route.
type WeatherContext struct {
	Region      string  `json:"region"`
	RainfallMm  float64 `json:"rainfallMm"`
	RiverLevelM float64 `json:"riverLevelM"`
}

// TrafficContext describes local traffic near a driver's route.
type TrafficContext struct {
	CongestionLevel string `json:"congestionLevel"`
	DelayMinutes    int    `json:"delayMinutes"`
}

// InventoryLevel is one stock line as the caller sees it.
type InventoryLevel struct {
	SKU         string `json:"sku"`
	Name        string `json:"name"`
	Quantity    int    `json:"quantity"`
	MinQuantity int    `json:"minQuantity"`
}

// IncomingShipment is one inbound shipment as the caller sees it.
type IncomingShipment struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// NodeHealth is the health of one supply-chain node.
type NodeHealth struct {
	Node   string `json:"node"`
	Status string `json:"status"`
}

// NodeDisrupted is the NodeHealth status that counts as a disruption.
const NodeDisrupted = "disrupted"

// VehicleStatus is the state of one fleet vehicle.
type VehicleStatus struct {
	VehicleID string `json:"vehicleId"`
	Status    string `json:"status"`
}

// VehicleIdle is the VehicleStatus status that counts as idle.
const VehicleIdle = "idle"

// FinancialMetrics are the headline business numbers.
type FinancialMetrics struct {
	Profit float64 `json:"profit"`
	Cost   float64 `json:"cost"`
	LTV    float64 `json:"ltv"`
	CAC    float64 `json:"cac"`
}

// DemandForecast compares this week's volume with next week's.
type DemandForecast struct {
	CurrentWeek ForecastPoint `json:"currentWeek"`
	NextWeek    ForecastPoint `json:"nextWeek"`
}

// ForecastPoint is one forecast sample.
type ForecastPoint struct {
	Value float64 `json:"value"`
}
