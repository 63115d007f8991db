package core

import (
	"context"

	"dineflow/internal/order/domain/models"

	"github.com/google/uuid"
)

type OrderRepo interface {
	// Create persists the order and its items in one transaction.
	Create(ctx context.Context, order models.Order, items []models.OrderItem) (models.Order, []models.OrderItem, error)
	Get(ctx context.Context, id uuid.UUID) (models.Order, error)
	GetItems(ctx context.Context, orderID uuid.UUID) ([]models.OrderItem, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Order, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status models.Status) (models.Order, error)
}
