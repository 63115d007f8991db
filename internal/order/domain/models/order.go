package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Status is the order lifecycle status. Transitions follow the edge table
// below; COMPLETED and CANCELLED are terminal.
type Status string

const (
	StatusPlaced     Status = "PLACED"
	StatusAccepted   Status = "ACCEPTED"
	StatusInProgress Status = "IN_PROGRESS"
	StatusReady      Status = "READY"
	StatusCompleted  Status = "COMPLETED"
	StatusCancelled  Status = "CANCELLED"
)

var validStatuses = map[Status]bool{
	StatusPlaced:     true,
	StatusAccepted:   true,
	StatusInProgress: true,
	StatusReady:      true,
	StatusCompleted:  true,
	StatusCancelled:  true,
}

var transitions = map[Status][]Status{
	StatusPlaced:     {StatusAccepted, StatusCancelled},
	StatusAccepted:   {StatusInProgress, StatusCancelled},
	StatusInProgress: {StatusReady, StatusCancelled},
	StatusReady:      {StatusCompleted, StatusCancelled},
	StatusCompleted:  {},
	StatusCancelled:  {},
}

// ParseStatus reports whether s names a known order status.
func ParseStatus(s string) (Status, bool) {
	status := Status(s)
	return status, validStatuses[status]
}

// CanTransitionTo reports whether the edge (s, next) is in the allowed set.
// Self-loops are never allowed.
func (s Status) CanTransitionTo(next Status) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// IsTerminal reports whether s has no outgoing transitions.
func (s Status) IsTerminal() bool {
	return len(transitions[s]) == 0
}

type Order struct {
	ID                  uuid.UUID       `json:"id"`
	UserID              uuid.UUID       `json:"user_id"`
	RestaurantID        uuid.UUID       `json:"restaurant_id"`
	Status              Status          `json:"status"`
	TotalAmount         decimal.Decimal `json:"total_amount"`
	DeliveryAddress     string          `json:"delivery_address,omitempty"`
	SpecialInstructions string          `json:"special_instructions,omitempty"`
	CreatedAt           time.Time       `json:"created_at"`
	UpdatedAt           time.Time       `json:"updated_at"`
}

// OrderItem rows are immutable once created; subtotal is unit_price*quantity.
type OrderItem struct {
	ID              uuid.UUID       `json:"id"`
	OrderID         uuid.UUID       `json:"order_id"`
	FoodID          uuid.UUID       `json:"food_id"`
	FoodName        string          `json:"food_name"`
	FoodDescription string          `json:"food_description,omitempty"`
	Quantity        int64           `json:"quantity"`
	UnitPrice       decimal.Decimal `json:"unit_price"`
	Subtotal        decimal.Decimal `json:"subtotal"`
	CreatedAt       time.Time       `json:"created_at"`
}
