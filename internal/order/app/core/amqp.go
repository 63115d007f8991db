package core

import (
	"context"

	"dineflow/internal/order/domain/dto"

	"github.com/google/uuid"
)

// Publisher is the slice of the event bus the order service needs.
type Publisher interface {
	Publish(ctx context.Context, topic, key string, body []byte) error
}

// Catalog looks up canonical menu items from the restaurant collaborator.
type Catalog interface {
	GetFoods(ctx context.Context, ids []uuid.UUID) ([]dto.FoodDetails, error)
}
