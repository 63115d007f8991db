package core

import "time"

const (
	// WaitTime bounds database and publish operations started by handlers.
	WaitTime = 5 * time.Second

	// PublishTimeout bounds the detached event publication.
	PublishTimeout = 10 * time.Second

	MinItemQuantity = 1
	MaxItemQuantity = 100
)
