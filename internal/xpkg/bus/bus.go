// Package bus is the publish/subscribe primitive the services choreograph
// over. Delivery is at-least-once; messages sharing a partition key are
// delivered to a consumer group in publish order, messages with different keys
// carry no relative ordering. Every handler must therefore be idempotent.
package bus

import "context"

// Delivery is one received message. Ack commits it; Nack with requeue returns
// it for redelivery, Nack without requeue drops it.
type Delivery struct {
	Topic string
	Key   string
	Body  []byte

	ack  func() error
	nack func(requeue bool) error
}

func (d Delivery) Ack() error {
	if d.ack == nil {
		return nil
	}
	return d.ack()
}

func (d Delivery) Nack(requeue bool) error {
	if d.nack == nil {
		return nil
	}
	return d.nack(requeue)
}

// Bus is implemented by the RabbitMQ adapter and by the in-memory bus used in
// tests. Publish is best-effort: the bus never retries, callers decide.
type Bus interface {
	Publish(ctx context.Context, topic, key string, body []byte) error
	Subscribe(ctx context.Context, topics []string, group string) (<-chan Delivery, error)
	Close() error
}
