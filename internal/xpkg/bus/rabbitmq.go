package bus

import (
	"context"
	"fmt"
	"sync"
	"time"

	"dineflow/internal/xpkg/config"
	"dineflow/internal/xpkg/logger"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	exchange          = "dineflow.events"
	reconnectInterval = 5 * time.Second
	prefetchCount     = 16
)

// RabbitMQ implements Bus over a topic exchange. Each consumer group gets one
// durable queue bound to its topics, so groups checkpoint independently and a
// single queue preserves publish order for messages sharing a key.
type RabbitMQ struct {
	ctx   context.Context
	cfg   config.RabbitMQ
	mylog logger.Logger

	mu           sync.Mutex
	conn         *amqp.Connection
	ch           *amqp.Channel
	reconnecting bool
}

func NewRabbitMQ(ctx context.Context, cfg config.RabbitMQ, mylog logger.Logger) (*RabbitMQ, error) {
	r := &RabbitMQ{
		ctx:   ctx,
		cfg:   cfg,
		mylog: mylog,
	}
	if err := r.connect(); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *RabbitMQ) connect() error {
	conn, err := amqp.Dial(r.cfg.URL())
	if err != nil {
		return err
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return err
	}

	if err := ch.Confirm(false); err != nil {
		conn.Close()
		return err
	}

	if err := ch.Qos(prefetchCount, 0, false); err != nil {
		conn.Close()
		return err
	}

	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		conn.Close()
		return err
	}

	r.conn = conn
	r.ch = ch
	return nil
}

func (r *RabbitMQ) IsAlive() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.conn == nil || r.conn.IsClosed() {
		return fmt.Errorf("rabbitmq: connection closed")
	}
	if r.ch == nil || r.ch.IsClosed() {
		return fmt.Errorf("rabbitmq: channel closed")
	}
	return nil
}

func (r *RabbitMQ) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.ch != nil && !r.ch.IsClosed() {
		if err := r.ch.Close(); err != nil {
			return fmt.Errorf("close rabbitmq channel: %w", err)
		}
	}
	if r.conn != nil && !r.conn.IsClosed() {
		if err := r.conn.Close(); err != nil {
			return fmt.Errorf("close rabbitmq connection: %w", err)
		}
	}
	return nil
}

// Publish routes by topic and carries the partition key in the message id
// header. Failures are the caller's to log; the bus does not retry.
func (r *RabbitMQ) Publish(ctx context.Context, topic, key string, body []byte) error {
	r.mu.Lock()
	ch := r.ch
	connClosed := r.conn == nil || r.conn.IsClosed()
	r.mu.Unlock()

	if connClosed {
		go r.reconnect()
		return fmt.Errorf("rabbitmq: connection lost")
	}

	return ch.PublishWithContext(ctx, exchange, topic, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    key,
		Body:         body,
	})
}

// Subscribe declares a durable queue named after the consumer group, binds it
// to each topic, and adapts deliveries onto the Bus channel. RabbitMQ tracks
// the group's progress via acks, so a restarted consumer resumes where the
// queue left off and may see already-processed messages again.
func (r *RabbitMQ) Subscribe(ctx context.Context, topics []string, group string) (<-chan Delivery, error) {
	r.mu.Lock()
	ch := r.ch
	r.mu.Unlock()

	queue, err := ch.QueueDeclare(group, true, false, false, false, nil)
	if err != nil {
		return nil, fmt.Errorf("declare queue %s: %w", group, err)
	}

	for _, topic := range topics {
		if err := ch.QueueBind(queue.Name, topic, exchange, false, nil); err != nil {
			return nil, fmt.Errorf("bind queue %s to %s: %w", group, topic, err)
		}
	}

	deliveries, err := ch.ConsumeWithContext(ctx, queue.Name, "", false, false, false, false, nil)
	if err != nil {
		return nil, fmt.Errorf("consume queue %s: %w", group, err)
	}

	out := make(chan Delivery)
	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-deliveries:
				if !ok {
					return
				}
				d := Delivery{
					Topic: msg.RoutingKey,
					Key:   msg.MessageId,
					Body:  msg.Body,
					ack:   func() error { return msg.Ack(false) },
					nack:  func(requeue bool) error { return msg.Nack(false, requeue) },
				}
				select {
				case <-ctx.Done():
					return
				case out <- d:
				}
			}
		}
	}()
	return out, nil
}

func (r *RabbitMQ) reconnect() {
	r.mu.Lock()
	if r.reconnecting {
		r.mu.Unlock()
		return
	}
	r.reconnecting = true
	r.mu.Unlock()

	mylog := r.mylog.Action("rabbitmq_reconnect")
	t := time.NewTicker(reconnectInterval)
	defer t.Stop()

	for {
		select {
		case <-t.C:
			r.mu.Lock()
			err := r.connect()
			if err == nil {
				r.reconnecting = false
				r.mu.Unlock()
				mylog.Info("rabbitmq reconnected")
				return
			}
			r.mu.Unlock()
			mylog.Warn("rabbitmq reconnect failed", "error", err.Error())

		case <-r.ctx.Done():
			return
		}
	}
}
