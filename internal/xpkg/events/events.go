// Package events defines the wire envelope and the typed payloads exchanged
// between services. Consumers decode messages into a closed set of event
// variants; unknown type tags decode to UnknownEvent and are never fatal.
package events

import (
	"encoding/json"
	"errors"
	"time"

	"dineflow/internal/xpkg/errs"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Topics. Every order-scoped event is published with the order id as the
// partition key; anything else breaks per-order ordering.
const (
	TopicOrderEvents = "order.events"
	TopicBillEvents  = "bill.events"
)

// Event type tags.
const (
	TypeOrderPlaced        = "order.placed"
	TypeOrderStatusUpdated = "order.status_updated"
	TypeBillGenerated      = "bill.generated"
	TypeBillPaid           = "bill.paid"
)

// Envelope is the uniform wire format: {event_id, event_type, timestamp, data}.
// It is immutable once published.
type Envelope struct {
	EventID   uuid.UUID       `json:"event_id"`
	EventType string          `json:"event_type"`
	Timestamp time.Time       `json:"timestamp"`
	Data      json.RawMessage `json:"data"`
}

// NewEnvelope wraps a typed payload with a fresh id and timestamp.
func NewEnvelope(eventType string, data any) (Envelope, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return Envelope{}, err
	}
	return Envelope{
		EventID:   uuid.New(),
		EventType: eventType,
		Timestamp: time.Now().UTC(),
		Data:      raw,
	}, nil
}

func (e Envelope) Encode() ([]byte, error) {
	return json.Marshal(e)
}

// OrderItemData is the denormalized item snapshot carried by order.placed.
type OrderItemData struct {
	FoodID          uuid.UUID       `json:"food_id"`
	FoodName        string          `json:"food_name"`
	FoodDescription string          `json:"food_description,omitempty"`
	Quantity        int64           `json:"quantity"`
	UnitPrice       decimal.Decimal `json:"unit_price"`
	Subtotal        decimal.Decimal `json:"subtotal"`
}

type OrderPlacedData struct {
	OrderID             uuid.UUID       `json:"order_id"`
	UserID              uuid.UUID       `json:"user_id"`
	RestaurantID        uuid.UUID       `json:"restaurant_id"`
	TotalAmount         decimal.Decimal `json:"total_amount"`
	Items               []OrderItemData `json:"items"`
	DeliveryAddress     string          `json:"delivery_address,omitempty"`
	SpecialInstructions string          `json:"special_instructions,omitempty"`
	PlacedAt            time.Time       `json:"placed_at"`
}

type OrderStatusUpdatedData struct {
	OrderID      uuid.UUID `json:"order_id"`
	RestaurantID uuid.UUID `json:"restaurant_id"`
	OldStatus    string    `json:"old_status"`
	NewStatus    string    `json:"new_status"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type BillGeneratedData struct {
	BillID         uuid.UUID       `json:"bill_id"`
	OrderID        uuid.UUID       `json:"order_id"`
	RestaurantID   uuid.UUID       `json:"restaurant_id"`
	UserID         uuid.UUID       `json:"user_id"`
	Subtotal       decimal.Decimal `json:"subtotal"`
	TaxAmount      decimal.Decimal `json:"tax_amount"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	TotalAmount    decimal.Decimal `json:"total_amount"`
}

type BillPaidData struct {
	BillID        uuid.UUID       `json:"bill_id"`
	OrderID       uuid.UUID       `json:"order_id"`
	RestaurantID  uuid.UUID       `json:"restaurant_id"`
	UserID        uuid.UUID       `json:"user_id"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	PaymentMethod string          `json:"payment_method"`
	PaidAt        time.Time       `json:"paid_at"`
}

// Event is the closed union of everything a consumer can receive. Type-switch
// over the variants; UnknownEvent is the forward-compatible fallback.
type Event interface {
	Envelope() Envelope
}

type OrderPlacedEvent struct {
	Meta Envelope
	Data OrderPlacedData
}

type OrderStatusUpdatedEvent struct {
	Meta Envelope
	Data OrderStatusUpdatedData
}

type BillGeneratedEvent struct {
	Meta Envelope
	Data BillGeneratedData
}

type BillPaidEvent struct {
	Meta Envelope
	Data BillPaidData
}

// UnknownEvent carries an envelope whose type tag this build does not know.
type UnknownEvent struct {
	Meta Envelope
}

func (e OrderPlacedEvent) Envelope() Envelope        { return e.Meta }
func (e OrderStatusUpdatedEvent) Envelope() Envelope { return e.Meta }
func (e BillGeneratedEvent) Envelope() Envelope      { return e.Meta }
func (e BillPaidEvent) Envelope() Envelope           { return e.Meta }
func (e UnknownEvent) Envelope() Envelope            { return e.Meta }

// Decode parses a raw message body into an event variant. Undecodable bodies
// and envelopes without a type tag yield MalformedEventError; an unknown tag
// is not an error.
func Decode(body []byte) (Event, error) {
	var env Envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, errs.NewMalformedEventError(err)
	}
	if env.EventType == "" {
		return nil, errs.NewMalformedEventError(errors.New("missing event_type field"))
	}

	switch env.EventType {
	case TypeOrderPlaced:
		var data OrderPlacedData
		if err := json.Unmarshal(env.Data, &data); err != nil {
			return nil, errs.NewMalformedEventError(err)
		}
		return OrderPlacedEvent{Meta: env, Data: data}, nil

	case TypeOrderStatusUpdated:
		var data OrderStatusUpdatedData
		if err := json.Unmarshal(env.Data, &data); err != nil {
			return nil, errs.NewMalformedEventError(err)
		}
		return OrderStatusUpdatedEvent{Meta: env, Data: data}, nil

	case TypeBillGenerated:
		var data BillGeneratedData
		if err := json.Unmarshal(env.Data, &data); err != nil {
			return nil, errs.NewMalformedEventError(err)
		}
		return BillGeneratedEvent{Meta: env, Data: data}, nil

	case TypeBillPaid:
		var data BillPaidData
		if err := json.Unmarshal(env.Data, &data); err != nil {
			return nil, errs.NewMalformedEventError(err)
		}
		return BillPaidEvent{Meta: env, Data: data}, nil

	default:
		return UnknownEvent{Meta: env}, nil
	}
}
