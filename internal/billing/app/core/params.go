package core

import "time"

const (
	// WaitTime bounds single repository operations.
	WaitTime = 5 * time.Second

	// PublishTimeout bounds a detached event publication.
	PublishTimeout = 10 * time.Second

	// ConsumerGroup is the durable subscription identity on order.events.
	ConsumerGroup = "billing-service"

	// RequeueDelay throttles redelivery after a transient consumer failure.
	RequeueDelay = 2 * time.Second

	// DefaultTaxRate applies when the config carries no tax_rate.
	DefaultTaxRate = "0.10"
)
