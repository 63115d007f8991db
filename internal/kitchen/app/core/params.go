package core

import "time"

const (
	// WaitTime bounds single repository operations.
	WaitTime = 5 * time.Second

	// PublishTimeout bounds a detached event publication.
	PublishTimeout = 10 * time.Second

	// NotifyTimeout bounds the fire-and-forget ready notification.
	NotifyTimeout = 15 * time.Second

	// ConsumerGroup is the durable subscription identity on order.events.
	ConsumerGroup = "kitchen-service"

	// RequeueDelay throttles redelivery after a transient consumer failure.
	RequeueDelay = 2 * time.Second
)
