package consumer

import (
	"context"
	"errors"
	"time"

	"dineflow/internal/billing/app/core"
	"dineflow/internal/billing/app/services"
	"dineflow/internal/xpkg/bus"
	"dineflow/internal/xpkg/errs"
	"dineflow/internal/xpkg/events"
	"dineflow/internal/xpkg/logger"
)

// Consumer drives the billing-service subscription on order.events.
type Consumer struct {
	eventBus bus.Bus
	svc      *services.BillingService
	mylog    logger.Logger
}

func New(eventBus bus.Bus, svc *services.BillingService, mylog logger.Logger) *Consumer {
	return &Consumer{eventBus: eventBus, svc: svc, mylog: mylog}
}

// Run consumes until ctx is cancelled.
func (c *Consumer) Run(ctx context.Context) error {
	deliveries, err := c.eventBus.Subscribe(ctx, []string{events.TopicOrderEvents}, core.ConsumerGroup)
	if err != nil {
		return err
	}
	c.mylog.Action("consumer_started").Info("Consuming order events", "group", core.ConsumerGroup)

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
	mylog := c.mylog.Action("handle_event").With("key", d.Key)

	event, err := events.Decode(d.Body)
	if err != nil {
		mylog.Warn("Dropping malformed event", "error", err.Error())
		c.ack(d)
		return
	}

	switch e := event.(type) {
	case events.OrderPlacedEvent:
		if err := c.svc.OnOrderPlaced(ctx, e.Data); err != nil {
			if errors.Is(err, errs.ErrTransient) {
				mylog.Warn("Transient failure, requeueing", "error", err.Error())
				c.nack(d)
				time.Sleep(core.RequeueDelay)
				return
			}
			mylog.Error("Failed to handle order.placed", err)
		}
	case events.UnknownEvent:
		mylog.Debug("Ignoring unknown event type", "event_type", e.Meta.EventType)
	default:
		// Billing has no reaction to status updates.
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
