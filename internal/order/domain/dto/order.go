package dto

import (
	"dineflow/internal/order/domain/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type CreateOrderItemRequest struct {
	FoodID   uuid.UUID `json:"food_id"`
	Quantity int64     `json:"quantity"`
}

type CreateOrderRequest struct {
	RestaurantID        uuid.UUID                `json:"restaurant_id"`
	Items               []CreateOrderItemRequest `json:"items"`
	DeliveryAddress     string                   `json:"delivery_address,omitempty"`
	SpecialInstructions string                   `json:"special_instructions,omitempty"`
}

type UpdateOrderStatusRequest struct {
	Status string `json:"status"`
}

type OrderResponse struct {
	Order models.Order       `json:"order"`
	Items []models.OrderItem `json:"items"`
}

// FoodDetails is the catalog collaborator's view of a menu item. Extra fields
// the catalog returns are ignored here.
type FoodDetails struct {
	ID          uuid.UUID       `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Price       decimal.Decimal `json:"price"`
	IsAvailable bool            `json:"is_available"`
}
