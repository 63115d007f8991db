package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderRow is one append-only observation of an order. The projector never
// updates rows; the query layer reduces to the latest row per order id.
type OrderRow struct {
	OrderID        uuid.UUID       `json:"order_id"`
	UserID         uuid.UUID       `json:"user_id"`
	RestaurantID   uuid.UUID       `json:"restaurant_id"`
	Status         string          `json:"status"`
	TotalAmount    decimal.Decimal `json:"total_amount"`
	EventTimestamp time.Time       `json:"event_timestamp"`
}

type OrderItemRow struct {
	OrderID        uuid.UUID       `json:"order_id"`
	FoodID         uuid.UUID       `json:"food_id"`
	FoodName       string          `json:"food_name"`
	Quantity       int64           `json:"quantity"`
	Subtotal       decimal.Decimal `json:"subtotal"`
	EventTimestamp time.Time       `json:"event_timestamp"`
}

type BillRow struct {
	BillID         uuid.UUID       `json:"bill_id"`
	OrderID        uuid.UUID       `json:"order_id"`
	UserID         uuid.UUID       `json:"user_id"`
	RestaurantID   uuid.UUID       `json:"restaurant_id"`
	Status         string          `json:"status"`
	Subtotal       decimal.Decimal `json:"subtotal"`
	TaxAmount      decimal.Decimal `json:"tax_amount"`
	TotalAmount    decimal.Decimal `json:"total_amount"`
	PaymentMethod  string          `json:"payment_method,omitempty"`
	PaidAt         *time.Time      `json:"paid_at,omitempty"`
	EventTimestamp time.Time       `json:"event_timestamp"`
}

type TopFood struct {
	FoodID        uuid.UUID       `json:"food_id"`
	FoodName      string          `json:"food_name"`
	TotalQuantity int64           `json:"total_quantity"`
	TotalRevenue  decimal.Decimal `json:"total_revenue"`
}

type RevenueSummary struct {
	TotalRevenue  decimal.Decimal `json:"total_revenue"`
	OrderCount    int64           `json:"order_count"`
	AverageAmount decimal.Decimal `json:"average_amount"`
}

type StatusCount struct {
	Status string `json:"status"`
	Count  int64  `json:"count"`
}
