package core

import (
	"context"
	"time"

	"dineflow/internal/analytics/domain/models"

	"github.com/google/uuid"
)

// AnalyticsRepo is an append-only store. Every Append records the event id in
// the same transaction as the rows it writes: the false return means the id
// was already ingested and nothing was appended, and a failed append leaves
// the id unrecorded so redelivery can retry.
type AnalyticsRepo interface {
	AppendOrderPlaced(ctx context.Context, eventID uuid.UUID, row models.OrderRow, items []models.OrderItemRow) (bool, error)
	AppendOrderStatus(ctx context.Context, eventID, orderID uuid.UUID, newStatus string, eventTimestamp time.Time) (bool, error)
	AppendBillGenerated(ctx context.Context, eventID uuid.UUID, row models.BillRow) (bool, error)
	AppendBillPaid(ctx context.Context, eventID uuid.UUID, row models.BillRow) (bool, error)

	TopFoods(ctx context.Context, limit int) ([]models.TopFood, error)
	RestaurantTopFoods(ctx context.Context, restaurantID uuid.UUID, limit int) ([]models.TopFood, error)
	RevenueSummary(ctx context.Context) (models.RevenueSummary, error)
	OrdersByStatus(ctx context.Context) ([]models.StatusCount, error)
}
