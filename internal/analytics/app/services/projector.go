package services

import (
	"context"
	"errors"

	"dineflow/internal/analytics/app/core"
	"dineflow/internal/analytics/domain/models"
	"dineflow/internal/xpkg/errs"
	"dineflow/internal/xpkg/events"
	"dineflow/internal/xpkg/logger"

	"github.com/google/uuid"
)

// Projector folds the event stream into append-only analytics tables.
// It never mutates rows; the current state of an aggregate is whatever its
// latest row says at query time.
type Projector struct {
	repo  core.AnalyticsRepo
	mylog logger.Logger
}

func NewProjector(repo core.AnalyticsRepo, mylog logger.Logger) *Projector {
	return &Projector{repo: repo, mylog: mylog}
}

// OnEvent ingests one decoded event. The repo records the event id in the
// same transaction as the appended rows, so a duplicate delivery is dropped
// and a failed append stays retryable on redelivery.
func (p *Projector) OnEvent(ctx context.Context, event events.Event) error {
	meta := event.Envelope()
	mylog := p.mylog.Action("project_event").With("event_id", meta.EventID, "event_type", meta.EventType)

	ctx, cancel := context.WithTimeout(ctx, core.WaitTime)
	defer cancel()

	var fresh bool
	var err error
	switch e := event.(type) {
	case events.OrderPlacedEvent:
		fresh, err = p.projectOrderPlaced(ctx, e)
	case events.OrderStatusUpdatedEvent:
		fresh, err = p.projectStatusUpdated(ctx, e)
	case events.BillGeneratedEvent:
		fresh, err = p.projectBillGenerated(ctx, e)
	case events.BillPaidEvent:
		fresh, err = p.projectBillPaid(ctx, e)
	default:
		mylog.Debug("Ignoring unknown event type")
		return nil
	}
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			mylog.Warn("No prior row for aggregate, dropping event", "error", err.Error())
			return nil
		}
		return errs.NewTransientError(err)
	}
	if !fresh {
		mylog.Info("Event already projected, skipping duplicate")
	}
	return nil
}

func (p *Projector) projectOrderPlaced(ctx context.Context, e events.OrderPlacedEvent) (bool, error) {
	row := models.OrderRow{
		OrderID:        e.Data.OrderID,
		UserID:         e.Data.UserID,
		RestaurantID:   e.Data.RestaurantID,
		Status:         "PENDING",
		TotalAmount:    e.Data.TotalAmount,
		EventTimestamp: e.Meta.Timestamp,
	}
	items := make([]models.OrderItemRow, 0, len(e.Data.Items))
	for _, it := range e.Data.Items {
		items = append(items, models.OrderItemRow{
			OrderID:        e.Data.OrderID,
			FoodID:         it.FoodID,
			FoodName:       it.FoodName,
			Quantity:       it.Quantity,
			Subtotal:       it.Subtotal,
			EventTimestamp: e.Meta.Timestamp,
		})
	}
	return p.repo.AppendOrderPlaced(ctx, e.Meta.EventID, row, items)
}

func (p *Projector) projectStatusUpdated(ctx context.Context, e events.OrderStatusUpdatedEvent) (bool, error) {
	return p.repo.AppendOrderStatus(ctx, e.Meta.EventID, e.Data.OrderID, e.Data.NewStatus, e.Meta.Timestamp)
}

func (p *Projector) projectBillGenerated(ctx context.Context, e events.BillGeneratedEvent) (bool, error) {
	return p.repo.AppendBillGenerated(ctx, e.Meta.EventID, models.BillRow{
		BillID:         e.Data.BillID,
		OrderID:        e.Data.OrderID,
		UserID:         e.Data.UserID,
		RestaurantID:   e.Data.RestaurantID,
		Status:         "PENDING",
		Subtotal:       e.Data.Subtotal,
		TaxAmount:      e.Data.TaxAmount,
		TotalAmount:    e.Data.TotalAmount,
		EventTimestamp: e.Meta.Timestamp,
	})
}

func (p *Projector) projectBillPaid(ctx context.Context, e events.BillPaidEvent) (bool, error) {
	paidAt := e.Data.PaidAt
	return p.repo.AppendBillPaid(ctx, e.Meta.EventID, models.BillRow{
		BillID:         e.Data.BillID,
		OrderID:        e.Data.OrderID,
		UserID:         e.Data.UserID,
		RestaurantID:   e.Data.RestaurantID,
		Status:         "PAID",
		TotalAmount:    e.Data.TotalAmount,
		PaymentMethod:  e.Data.PaymentMethod,
		PaidAt:         &paidAt,
		EventTimestamp: e.Meta.Timestamp,
	})
}

// Read side.

func (p *Projector) TopFoods(ctx context.Context, limit int) ([]models.TopFood, error) {
	return p.repo.TopFoods(ctx, clampLimit(limit))
}

func (p *Projector) RestaurantTopFoods(ctx context.Context, restaurantID uuid.UUID, limit int) ([]models.TopFood, error) {
	return p.repo.RestaurantTopFoods(ctx, restaurantID, clampLimit(limit))
}

func (p *Projector) RevenueSummary(ctx context.Context) (models.RevenueSummary, error) {
	return p.repo.RevenueSummary(ctx)
}

func (p *Projector) OrdersByStatus(ctx context.Context) ([]models.StatusCount, error) {
	return p.repo.OrdersByStatus(ctx)
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return core.DefaultTopLimit
	}
	if limit > core.MaxTopLimit {
		return core.MaxTopLimit
	}
	return limit
}
