package core

import (
	"context"

	"dineflow/internal/kitchen/domain/models"

	"github.com/google/uuid"
)

type TicketRepo interface {
	Create(ctx context.Context, ticket models.KitchenTicket) (models.KitchenTicket, error)
	Get(ctx context.Context, id uuid.UUID) (models.KitchenTicket, error)
	GetByOrder(ctx context.Context, orderID uuid.UUID) (models.KitchenTicket, error)
	List(ctx context.Context, status string) ([]models.KitchenTicket, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status models.TicketStatus) (models.KitchenTicket, error)
}
