package domain_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lorrc/logistics-ops-backend/internal/core/domain"
)

func TestNewAIInsight_NilBecomesEmptyList(t *testing.T) {
	msg := domain.NewAIInsight(nil, "no insights for the current context")

	raw, err := json.Marshal(msg)
	require.NoError(t, err)

	// Clients distinguish "nothing found" from "pending" by an explicit
	// empty array, never null.
	assert.Contains(t, string(raw), `"insights":[]`)
	assert.Contains(t, string(raw), `"AI_INSIGHT"`)
}

func TestMessageEnvelope(t *testing.T) {
	msg := domain.NewDeliveryUpdate(domain.Shipment{ID: "SHP-1", Status: domain.ShipmentInTransit})

	raw, err := json.Marshal(msg)
	require.NoError(t, err)

	var decoded struct {
		Type    domain.MessageType `json:"type"`
		Payload struct {
			Shipment domain.Shipment `json:"shipment"`
		} `json:"payload"`
		Timestamp string `json:"timestamp"`
	}
	require.NoError(t, json.Unmarshal(raw, &decoded))

	assert.Equal(t, domain.MessageDeliveryUpdate, decoded.Type)
	assert.Equal(t, "SHP-1", decoded.Payload.Shipment.ID)
	assert.NotEmpty(t, decoded.Timestamp)
	assert.False(t, msg.Timestamp.IsZero())
}
