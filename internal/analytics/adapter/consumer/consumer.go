package consumer

import (
	"context"
	"errors"
	"time"

	"dineflow/internal/analytics/app/core"
	"dineflow/internal/analytics/app/services"
	"dineflow/internal/xpkg/bus"
	"dineflow/internal/xpkg/errs"
	"dineflow/internal/xpkg/events"
	"dineflow/internal/xpkg/logger"
)

// Consumer feeds the projector from both event topics.
type Consumer struct {
	eventBus  bus.Bus
	projector *services.Projector
	mylog     logger.Logger
}

func New(eventBus bus.Bus, projector *services.Projector, mylog logger.Logger) *Consumer {
	return &Consumer{eventBus: eventBus, projector: projector, mylog: mylog}
}

// Run consumes until ctx is cancelled.
func (c *Consumer) Run(ctx context.Context) error {
	topics := []string{events.TopicOrderEvents, events.TopicBillEvents}
	deliveries, err := c.eventBus.Subscribe(ctx, topics, core.ConsumerGroup)
	if err != nil {
		return err
	}
	c.mylog.Action("consumer_started").Info("Consuming events", "group", core.ConsumerGroup, "topics", topics)

	for {
		select {
		case <-ctx.Done():
			c.mylog.Action("consumer_stopped").Info("Stopping message consumption due to context cancel")
			return nil
		case d, ok := <-deliveries:
			if !ok {
				return nil
			}
			c.handle(ctx, d)
		}
	}
}

func (c *Consumer) handle(ctx context.Context, d bus.Delivery) {
	mylog := c.mylog.Action("handle_event").With("topic", d.Topic, "key", d.Key)

	event, err := events.Decode(d.Body)
	if err != nil {
		mylog.Warn("Dropping malformed event", "error", err.Error())
		c.ack(d)
		return
	}

	if err := c.projector.OnEvent(ctx, event); err != nil {
		if errors.Is(err, errs.ErrTransient) {
			mylog.Warn("Transient failure, requeueing", "error", err.Error())
			c.nack(d)
			time.Sleep(core.RequeueDelay)
			return
		}
		mylog.Error("Failed to project event", err)
	}
	c.ack(d)
}

func (c *Consumer) ack(d bus.Delivery) {
	if err := d.Ack(); err != nil {
		c.mylog.Action("ack_failed").Error("Failed to ack delivery", err)
	}
}

func (c *Consumer) nack(d bus.Delivery) {
	if err := d.Nack(true); err != nil {
		c.mylog.Action("nack_failed").Error("Failed to nack delivery", err)
	}
}
