package events

import (
	"testing"
	"time"

	"dineflow/internal/xpkg/errs"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encode(t *testing.T, eventType string, data any) []byte {
	t.Helper()
	env, err := NewEnvelope(eventType, data)
	require.NoError(t, err)
	body, err := env.Encode()
	require.NoError(t, err)
	return body
}

func TestDecodeKnownTypes(t *testing.T) {
	orderID := uuid.New()

	t.Run("order.placed", func(t *testing.T) {
		body := encode(t, TypeOrderPlaced, OrderPlacedData{
			OrderID:     orderID,
			UserID:      uuid.New(),
			TotalAmount: decimal.RequireFromString("24.98"),
			Items: []OrderItemData{
				{FoodID: uuid.New(), FoodName: "Margherita", Quantity: 2,
					UnitPrice: decimal.RequireFromString("9.99"),
					Subtotal:  decimal.RequireFromString("19.98")},
			},
			PlacedAt: time.Now().UTC(),
		})

		event, err := Decode(body)
		require.NoError(t, err)
		placed, ok := event.(OrderPlacedEvent)
		require.True(t, ok)
		assert.Equal(t, orderID, placed.Data.OrderID)
		assert.True(t, placed.Data.TotalAmount.Equal(decimal.RequireFromString("24.98")))
		require.Len(t, placed.Data.Items, 1)
		assert.Equal(t, "Margherita", placed.Data.Items[0].FoodName)
	})

	t.Run("order.status_updated", func(t *testing.T) {
		body := encode(t, TypeOrderStatusUpdated, OrderStatusUpdatedData{
			OrderID:   orderID,
			OldStatus: "PLACED",
			NewStatus: "ACCEPTED",
			UpdatedAt: time.Now().UTC(),
		})

		event, err := Decode(body)
		require.NoError(t, err)
		updated, ok := event.(OrderStatusUpdatedEvent)
		require.True(t, ok)
		assert.Equal(t, "PLACED", updated.Data.OldStatus)
		assert.Equal(t, "ACCEPTED", updated.Data.NewStatus)
	})

	t.Run("bill.generated", func(t *testing.T) {
		body := encode(t, TypeBillGenerated, BillGeneratedData{
			BillID:      uuid.New(),
			OrderID:     orderID,
			Subtotal:    decimal.RequireFromString("24.98"),
			TaxAmount:   decimal.RequireFromString("2.50"),
			TotalAmount: decimal.RequireFromString("27.48"),
		})

		event, err := Decode(body)
		require.NoError(t, err)
		generated, ok := event.(BillGeneratedEvent)
		require.True(t, ok)
		assert.True(t, generated.Data.TaxAmount.Equal(decimal.RequireFromString("2.50")))
	})

	t.Run("bill.paid", func(t *testing.T) {
		body := encode(t, TypeBillPaid, BillPaidData{
			BillID:        uuid.New(),
			OrderID:       orderID,
			TotalAmount:   decimal.RequireFromString("27.48"),
			PaymentMethod: "card",
			PaidAt:        time.Now().UTC(),
		})

		event, err := Decode(body)
		require.NoError(t, err)
		paid, ok := event.(BillPaidEvent)
		require.True(t, ok)
		assert.Equal(t, "card", paid.Data.PaymentMethod)
	})
}

func TestDecodeUnknownType(t *testing.T) {
	body := encode(t, "order.refunded", map[string]string{"reason": "cold pizza"})

	event, err := Decode(body)
	require.NoError(t, err)
	unknown, ok := event.(UnknownEvent)
	require.True(t, ok)
	assert.Equal(t, "order.refunded", unknown.Meta.EventType)
}

func TestDecodeMalformed(t *testing.T) {
	t.Run("invalid JSON", func(t *testing.T) {
		_, err := Decode([]byte("{not json"))
		require.ErrorIs(t, err, errs.ErrMalformedEvent)
	})

	t.Run("missing event_type", func(t *testing.T) {
		_, err := Decode([]byte(`{"event_id":"` + uuid.NewString() + `","data":{}}`))
		require.ErrorIs(t, err, errs.ErrMalformedEvent)
	})

	t.Run("payload does not match tag", func(t *testing.T) {
		_, err := Decode([]byte(`{"event_id":"` + uuid.NewString() + `","event_type":"order.placed","timestamp":"2026-01-02T15:04:05Z","data":[1,2,3]}`))
		require.ErrorIs(t, err, errs.ErrMalformedEvent)
	})
}

func TestEnvelopeRoundTrip(t *testing.T) {
	env, err := NewEnvelope(TypeOrderPlaced, OrderPlacedData{OrderID: uuid.New()})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, env.EventID)
	assert.False(t, env.Timestamp.IsZero())

	body, err := env.Encode()
	require.NoError(t, err)
	event, err := Decode(body)
	require.NoError(t, err)
	assert.Equal(t, env.EventID, event.Envelope().EventID)
}
