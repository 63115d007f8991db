package core

import (
	"context"

	"dineflow/internal/billing/domain/models"

	"github.com/google/uuid"
)

type BillRepo interface {
	Create(ctx context.Context, bill models.Bill) (models.Bill, error)
	GetByOrder(ctx context.Context, orderID uuid.UUID) (models.Bill, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Bill, error)
	ListByRestaurant(ctx context.Context, restaurantID uuid.UUID) ([]models.Bill, error)
	MarkPaid(ctx context.Context, orderID uuid.UUID, method models.PaymentMethod) (models.Bill, error)
}
