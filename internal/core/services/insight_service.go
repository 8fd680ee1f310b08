package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/lorrc/logistics-ops-backend/internal/core/domain"
	"github.com/lorrc/logistics-ops-backend/internal/core/ports"
)

// Flood-probability thresholds for the driver weather-impact rule.
const (
	floodAlertThreshold    = 0.3
	floodCriticalThreshold = 0.7
)

// Business-rule thresholds.
const (
	idleFleetThreshold   = 3
	profitMarginFloor    = 0.15
	ltvCacRatioFloor     = 3.0
	restockUrgentCount   = 5
	disruptionGraveCount = 2
)

// InsightService synthesizes role-specific insights on demand. Each role
// branch is independent and order-insensitive; insights come back in rule
// emission order, never re-ranked.
type InsightService struct {
	predictor ports.Predictor
	timeout   time.Duration
	logger    *slog.Logger
}

var _ ports.InsightService = (*InsightService)(nil)

// NewInsightService creates an insight service. timeout bounds each call to
// the prediction backend.
func NewInsightService(predictor ports.Predictor, timeout time.Duration, logger *slog.Logger) *InsightService {
	return &InsightService{
		predictor: predictor,
		timeout:   timeout,
		logger:    logger.With("component", "insight_service"),
	}
}

// Synthesize runs the rules for role over the caller's context bundle.
// An unrecognized role yields no insights and no error; the caller is still
// expected to acknowledge the request explicitly.
func (s *InsightService) Synthesize(ctx context.Context, role domain.Role, ic domain.InsightContext) ([]domain.Insight, error) {
	switch role {
	case domain.RoleDriver:
		return s.driverInsights(ctx, ic), nil
	case domain.RoleWarehouseStaff:
		return warehouseInsights(ic), nil
	case domain.RoleLogisticsManager:
		return managerInsights(ic), nil
	case domain.RoleBusinessOwner:
		return ownerInsights(ic), nil
	default:
		s.logger.Debug("no insight rules for role", "role", role)
		return nil, nil
	}
}

// driverInsights consults the prediction backend twice, independently: a
// route-duration estimate and a flood-probability estimate. A failed call
// omits only its own insight.
func (s *InsightService) driverInsights(ctx context.Context, ic domain.InsightContext) []domain.Insight {
	var out []domain.Insight

	if ic.Route != nil {
		pred, err := s.predict(ctx, ports.ModelRoute, map[string]float64{
			"distance_km": ic.Route.DistanceKm,
			"stops":       float64(ic.Route.Stops),
		})
		if err != nil {
			s.logger.Warn("route prediction unavailable", "error", err)
		} else {
			out = append(out, domain.Insight{
				Kind:  domain.InsightRouteOptimization,
				Title: "Route duration estimate",
				Description: fmt.Sprintf("Estimated %.0f minutes from %s to %s across %d stops.",
					pred.Value, ic.Route.Origin, ic.Route.Destination, ic.Route.Stops),
				Confidence:      pred.Confidence,
				SuggestedAction: "Review stop order before departure",
				Priority:        domain.PriorityMedium,
			})
		}
	}

	if ic.Weather != nil {
		pred, err := s.predict(ctx, ports.ModelFlood, map[string]float64{
			"rainfall_mm":   ic.Weather.RainfallMm,
			"river_level_m": ic.Weather.RiverLevelM,
		})
		if err != nil {
			s.logger.Warn("flood prediction unavailable", "error", err)
		} else if pred.Value > floodAlertThreshold {
			priority := domain.PriorityMedium
			if pred.Value > floodCriticalThreshold {
				priority = domain.PriorityCritical
			}
			out = append(out, domain.Insight{
				Kind:  domain.InsightWeatherImpact,
				Title: "Flood risk on route",
				Description: fmt.Sprintf("Flood probability %.0f%% near %s.",
					pred.Value*100, ic.Weather.Region),
				Confidence:      pred.Value,
				SuggestedAction: "Check road closures and plan an alternate route",
				Priority:        priority,
			})
		}
	}

	return out
}

func (s *InsightService) predict(ctx context.Context, model string, features map[string]float64) (ports.Prediction, error) {
	pctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.predictor.Predict(pctx, model, features)
}

// warehouseInsights is purely rule-based: low-stock lines and delayed
// inbound shipments. No prediction backend involved.
func warehouseInsights(ic domain.InsightContext) []domain.Insight {
	var out []domain.Insight

	low := 0
	for _, lvl := range ic.Inventory {
		if lvl.Quantity < lvl.MinQuantity {
			low++
		}
	}
	if low > 0 {
		priority := domain.PriorityMedium
		if low >= restockUrgentCount {
			priority = domain.PriorityHigh
		}
		out = append(out, domain.Insight{
			Kind:            domain.InsightInventoryRestock,
			Title:           "Stock below minimum",
			Description:     fmt.Sprintf("%d inventory lines are below their minimum quantity.", low),
			Confidence:      0.9,
			SuggestedAction: "Raise restock orders for the flagged SKUs",
			Priority:        priority,
		})
	}

	delayed := 0
	for _, in := range ic.IncomingShipments {
		if in.Status == domain.ShipmentDelayed {
			delayed++
		}
	}
	if delayed > 0 {
		out = append(out, domain.Insight{
			Kind:            domain.InsightShipmentDelay,
			Title:           "Inbound shipments delayed",
			Description:     fmt.Sprintf("%d incoming shipments are running late.", delayed),
			Confidence:      0.85,
			SuggestedAction: "Reschedule receiving dock slots",
			Priority:        domain.PriorityHigh,
		})
	}

	return out
}

// managerInsights covers supply-chain disruption, idle fleet, and the
// demand-forecast comparison. The forecast rule always emits exactly one
// directional insight when a forecast is supplied.
func managerInsights(ic domain.InsightContext) []domain.Insight {
	var out []domain.Insight

	disrupted := 0
	for _, n := range ic.SupplyChain {
		if n.Status == domain.NodeDisrupted {
			disrupted++
		}
	}
	if disrupted > 0 {
		priority := domain.PriorityHigh
		if disrupted > disruptionGraveCount {
			priority = domain.PriorityCritical
		}
		out = append(out, domain.Insight{
			Kind:            domain.InsightSupplyChainDisruption,
			Title:           "Supply chain disruption",
			Description:     fmt.Sprintf("%d supply-chain nodes are disrupted.", disrupted),
			Confidence:      0.9,
			SuggestedAction: "Reroute volume around the affected nodes",
			Priority:        priority,
		})
	}

	idle := 0
	for _, v := range ic.Fleet {
		if v.Status == domain.VehicleIdle {
			idle++
		}
	}
	if idle > idleFleetThreshold {
		out = append(out, domain.Insight{
			Kind:            domain.InsightFleetUtilization,
			Title:           "Fleet under-utilized",
			Description:     fmt.Sprintf("%d vehicles are idle right now.", idle),
			Confidence:      0.8,
			SuggestedAction: "Reassign idle vehicles to pending deliveries",
			Priority:        domain.PriorityMedium,
		})
	}

	if ic.Demand != nil {
		current := ic.Demand.CurrentWeek.Value
		next := ic.Demand.NextWeek.Value
		if next > current {
			out = append(out, domain.Insight{
				Kind:            domain.InsightDemandForecast,
				Title:           "Demand forecast: increase",
				Description:     fmt.Sprintf("Next week's volume (%.0f) is forecast to increase from this week (%.0f).", next, current),
				Confidence:      0.75,
				SuggestedAction: "Schedule extra carrier capacity for next week",
				Priority:        domain.PriorityHigh,
			})
		} else {
			out = append(out, domain.Insight{
				Kind:            domain.InsightDemandForecast,
				Title:           "Demand forecast: decrease",
				Description:     fmt.Sprintf("Next week's volume (%.0f) is forecast to decrease from this week (%.0f).", next, current),
				Confidence:      0.75,
				SuggestedAction: "Trim carrier bookings to match the lower volume",
				Priority:        domain.PriorityMedium,
			})
		}
	}

	return out
}

// ownerInsights checks the headline financials: profit margin and LTV:CAC.
func ownerInsights(ic domain.InsightContext) []domain.Insight {
	if ic.Financial == nil {
		return nil
	}
	var out []domain.Insight
	fin := ic.Financial

	if revenue := fin.Profit + fin.Cost; revenue > 0 {
		margin := fin.Profit / revenue
		if margin < profitMarginFloor {
			out = append(out, domain.Insight{
				Kind:            domain.InsightProfitMargin,
				Title:           "Profit margin below target",
				Description:     fmt.Sprintf("Profit margin is %.1f%%, under the %.0f%% target.", margin*100, profitMarginFloor*100),
				Confidence:      0.9,
				SuggestedAction: "Review route costs and carrier rates",
				Priority:        domain.PriorityHigh,
			})
		}
	}

	if fin.CAC > 0 {
		ratio := fin.LTV / fin.CAC
		if ratio < ltvCacRatioFloor {
			out = append(out, domain.Insight{
				Kind:            domain.InsightCustomerEconomics,
				Title:           "LTV:CAC ratio under 3x",
				Description:     fmt.Sprintf("Customer LTV is only %.1fx acquisition cost.", ratio),
				Confidence:      0.8,
				SuggestedAction: "Revisit acquisition spend or pricing",
				Priority:        domain.PriorityMedium,
			})
		}
	}

	return out
}
