package events

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestLedgerEvent_RoundTrip tests that an event survives the wire intact,
// with the amount carried as an exact decimal string
func TestLedgerEvent_RoundTrip(t *testing.T) {
	entityID := uuid.New()
	event := NewLedgerEvent(KindTransferCreated, entityID, decimal.RequireFromString("-120.05"))

	data, err := event.ToJSON()
	require.NoError(t, err)

	decoded, err := LedgerEventFromJSON(data)
	require.NoError(t, err)

	assert.Equal(t, KindTransferCreated, decoded.Kind)
	assert.Equal(t, entityID, decoded.EntityID)
	assert.Equal(t, "-120.05", decoded.Amount)
	assert.False(t, decoded.Timestamp.IsZero())
}

// TestLedgerEventFromJSON_Invalid tests malformed payload handling
func TestLedgerEventFromJSON_Invalid(t *testing.T) {
	_, err := LedgerEventFromJSON([]byte("not json"))
	assert.Error(t, err)
}
