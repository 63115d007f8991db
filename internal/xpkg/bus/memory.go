package bus

import (
	"context"
	"fmt"
	"sync"
)

type storedMessage struct {
	key  string
	body []byte
}

// MemoryBus is an in-process Bus used by tests and local runs. Each topic is
// an append-only log; each consumer group keeps a committed offset per topic.
// Messages are handed to a group strictly in log order and the offset only
// advances on Ack (or discarding Nack), so an unacked message is redelivered
// to the next subscriber of the same group.
type MemoryBus struct {
	mu      sync.Mutex
	cond    *sync.Cond
	logs    map[string][]storedMessage
	offsets map[string]int
	closed  bool
}

func NewMemoryBus() *MemoryBus {
	b := &MemoryBus{
		logs:    make(map[string][]storedMessage),
		offsets: make(map[string]int),
	}
	b.cond = sync.NewCond(&b.mu)
	return b
}

func (b *MemoryBus) Publish(_ context.Context, topic, key string, body []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return fmt.Errorf("memory bus closed")
	}

	buf := make([]byte, len(body))
	copy(buf, body)
	b.logs[topic] = append(b.logs[topic], storedMessage{key: key, body: buf})
	b.cond.Broadcast()
	return nil
}

func (b *MemoryBus) Subscribe(ctx context.Context, topics []string, group string) (<-chan Delivery, error) {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil, fmt.Errorf("memory bus closed")
	}
	b.mu.Unlock()

	out := make(chan Delivery)

	var wg sync.WaitGroup
	wg.Add(len(topics))
	for _, topic := range topics {
		go func(topic string) {
			defer wg.Done()
			b.pump(ctx, topic, group, out)
		}(topic)
	}
	go func() {
		wg.Wait()
		close(out)
	}()

	// Wake waiting pumps when the subscriber goes away.
	go func() {
		<-ctx.Done()
		b.cond.Broadcast()
	}()

	return out, nil
}

// pump walks one topic log for one group, delivering messages one at a time.
// The next message is not offered until the current one is resolved, which is
// what gives same-key messages their publish-order guarantee.
func (b *MemoryBus) pump(ctx context.Context, topic, group string, out chan<- Delivery) {
	offsetKey := group + "|" + topic

	for {
		b.mu.Lock()
		for b.offsets[offsetKey] >= len(b.logs[topic]) && !b.closed && ctx.Err() == nil {
			b.cond.Wait()
		}
		if b.closed || ctx.Err() != nil {
			b.mu.Unlock()
			return
		}
		offset := b.offsets[offsetKey]
		msg := b.logs[topic][offset]
		b.mu.Unlock()

	deliver:
		for {
			resolved := make(chan bool, 1)
			d := Delivery{
				Topic: topic,
				Key:   msg.key,
				Body:  msg.body,
				ack: func() error {
					resolved <- true
					return nil
				},
				nack: func(requeue bool) error {
					resolved <- !requeue
					return nil
				},
			}

			select {
			case <-ctx.Done():
				return
			case out <- d:
			}

			select {
			case <-ctx.Done():
				return
			case advance := <-resolved:
				if advance {
					b.mu.Lock()
					b.offsets[offsetKey] = offset + 1
					b.mu.Unlock()
					break deliver
				}
				// requeued: offer the same message again
			}
		}
	}
}

func (b *MemoryBus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	b.cond.Broadcast()
	return nil
}
