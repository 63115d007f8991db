package core

import "time"

const (
	// WaitTime bounds single repository operations.
	WaitTime = 5 * time.Second

	// ConsumerGroup is the durable subscription identity on both topics.
	ConsumerGroup = "analytics-service"

	// RequeueDelay throttles redelivery after a transient consumer failure.
	RequeueDelay = 2 * time.Second

	// DefaultTopLimit caps top-food listings when no limit is requested.
	DefaultTopLimit = 10

	// MaxTopLimit is the hard ceiling for requested listing sizes.
	MaxTopLimit = 100
)
