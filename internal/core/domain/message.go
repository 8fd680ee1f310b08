package domain

import "time"

// MessageType enumerates everything the subsystem pushes to a client.
type MessageType string

const (
	MessageSystem          MessageType = "SYSTEM_MESSAGE"
	MessagePong            MessageType = "PONG"
	MessageDeliveryUpdate  MessageType = "DELIVERY_UPDATE"
	MessageWeatherAlert    MessageType = "WEATHER_ALERT"
	MessageInventoryAlert  MessageType = "INVENTORY_ALERT"
	MessageWeatherUpdate   MessageType = "WEATHER_UPDATE"
	MessageTrafficUpdate   MessageType = "TRAFFIC_UPDATE"
	MessageDashboardUpdate MessageType = "DASHBOARD_UPDATE"
	MessageAIInsight       MessageType = "AI_INSIGHT"
)

// Message is the wire envelope for everything pushed to a client.
// Timestamp marshals as RFC 3339.
type Message struct {
	Type      MessageType `json:"type"`
	Payload   any         `json:"payload,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// SystemPayload carries a human-readable notice.
type SystemPayload struct {
	Message string `json:"message"`
}

// DeliveryPayload carries one shipment state change.
type DeliveryPayload struct {
	Shipment Shipment `json:"shipment"`
}

// WeatherAlertPayload carries one weather alert.
type WeatherAlertPayload struct {
	Alert WeatherAlert `json:"alert"`
}

// InventoryAlertPayload carries one inventory alert.
type InventoryAlertPayload struct {
	Alert InventoryAlert `json:"alert"`
}

// ConditionsPayload carries the region conditions relevant to one session.
// The same shape backs both WEATHER_UPDATE and TRAFFIC_UPDATE.
type ConditionsPayload struct {
	Conditions []RegionConditions `json:"conditions"`
}

// DashboardPayload carries the coarse dashboard snapshot.
type DashboardPayload struct {
	Metrics    map[string]float64 `json:"metrics"`
	Alerts     []string           `json:"alerts"`
	Activities []string           `json:"activities"`
}

// InsightPayload carries the reply to a REQUEST_INSIGHTS message. Context is
// always set so the client can tell "nothing found" apart from "pending".
type InsightPayload struct {
	Insights []Insight `json:"insights"`
	Context  string    `json:"context"`
}

// NewSystemMessage builds a SYSTEM_MESSAGE envelope.
func NewSystemMessage(text string) Message {
	return Message{Type: MessageSystem, Payload: SystemPayload{Message: text}, Timestamp: time.Now().UTC()}
}

// NewDeliveryUpdate builds a DELIVERY_UPDATE envelope for one shipment.
func NewDeliveryUpdate(s Shipment) Message {
	return Message{Type: MessageDeliveryUpdate, Payload: DeliveryPayload{Shipment: s}, Timestamp: time.Now().UTC()}
}

// NewWeatherAlert builds a WEATHER_ALERT envelope.
func NewWeatherAlert(a WeatherAlert) Message {
	return Message{Type: MessageWeatherAlert, Payload: WeatherAlertPayload{Alert: a}, Timestamp: time.Now().UTC()}
}

// NewInventoryAlert builds an INVENTORY_ALERT envelope.
func NewInventoryAlert(a InventoryAlert) Message {
	return Message{Type: MessageInventoryAlert, Payload: InventoryAlertPayload{Alert: a}, Timestamp: time.Now().UTC()}
}

// NewWeatherUpdate builds a WEATHER_UPDATE envelope from filtered conditions.
func NewWeatherUpdate(conditions []RegionConditions) Message {
	return Message{Type: MessageWeatherUpdate, Payload: ConditionsPayload{Conditions: conditions}, Timestamp: time.Now().UTC()}
}

// NewTrafficUpdate builds a TRAFFIC_UPDATE envelope from filtered conditions.
func NewTrafficUpdate(conditions []RegionConditions) Message {
	return Message{Type: MessageTrafficUpdate, Payload: ConditionsPayload{Conditions: conditions}, Timestamp: time.Now().UTC()}
}

// NewDashboardUpdate builds a DASHBOARD_UPDATE envelope.
func NewDashboardUpdate(snap DashboardSnapshot) Message {
	return Message{
		Type: MessageDashboardUpdate,
		Payload: DashboardPayload{
			Metrics:    snap.Metrics,
			Alerts:     snap.Alerts,
			Activities: snap.Activities,
		},
		Timestamp: time.Now().UTC(),
	}
}

// NewAIInsight builds an AI_INSIGHT envelope. Insights may be empty; Context
// explains what the synthesizer concluded either way.
func NewAIInsight(insights []Insight, context string) Message {
	if insights == nil {
		insights = []Insight{}
	}
	return Message{
		Type:      MessageAIInsight,
		Payload:   InsightPayload{Insights: insights, Context: context},
		Timestamp: time.Now().UTC(),
	}
}
