package core

import (
	"context"

	"github.com/google/uuid"
)

type Publisher interface {
	Publish(ctx context.Context, topic, key string, body []byte) error
}

// Notifier delivers the "order ready" side-channel message. Implementations
// are best-effort: the caller never retries and never surfaces failures.
type Notifier interface {
	NotifyOrderReady(ctx context.Context, userID, orderID uuid.UUID) error
}
