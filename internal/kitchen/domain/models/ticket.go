package models

import (
	"time"

	"github.com/google/uuid"
)

type TicketStatus string

const (
	TicketNew                TicketStatus = "NEW"
	TicketAccepted           TicketStatus = "ACCEPTED"
	TicketInProgress         TicketStatus = "IN_PROGRESS"
	TicketReady              TicketStatus = "READY"
	TicketDeliveredToService TicketStatus = "DELIVERED_TO_SERVICE"
)

var validTicketStatuses = map[TicketStatus]bool{
	TicketNew:                true,
	TicketAccepted:           true,
	TicketInProgress:         true,
	TicketReady:              true,
	TicketDeliveredToService: true,
}

// ticketTransitions is the linear preparation workflow. The jump to
// DELIVERED_TO_SERVICE from any state is an operator override handled
// separately in CanTransitionTo.
var ticketTransitions = map[TicketStatus]TicketStatus{
	TicketNew:        TicketAccepted,
	TicketAccepted:   TicketInProgress,
	TicketInProgress: TicketReady,
	TicketReady:      TicketDeliveredToService,
}

func ParseTicketStatus(s string) (TicketStatus, bool) {
	status := TicketStatus(s)
	return status, validTicketStatuses[status]
}

func (s TicketStatus) CanTransitionTo(next TicketStatus) bool {
	if next == TicketDeliveredToService {
		return true
	}
	return ticketTransitions[s] == next
}

// TicketItem is the denormalized item snapshot stored with the ticket.
// It is taken from the placement event and never updated afterwards.
type TicketItem struct {
	FoodID   uuid.UUID `json:"food_id"`
	FoodName string    `json:"food_name"`
	Quantity int64     `json:"quantity"`
}

type KitchenTicket struct {
	ID                  uuid.UUID    `json:"id"`
	OrderID             uuid.UUID    `json:"order_id"`
	RestaurantID        uuid.UUID    `json:"restaurant_id"`
	UserID              uuid.UUID    `json:"user_id"`
	Status              TicketStatus `json:"status"`
	Items               []TicketItem `json:"items"`
	SpecialInstructions string       `json:"special_instructions,omitempty"`
	CreatedAt           time.Time    `json:"created_at"`
	UpdatedAt           time.Time    `json:"updated_at"`
}
