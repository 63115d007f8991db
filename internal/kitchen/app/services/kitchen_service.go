package services

import (
	"context"
	"errors"
	"time"

	"dineflow/internal/kitchen/app/core"
	"dineflow/internal/kitchen/domain/models"
	"dineflow/internal/xpkg/errs"
	"dineflow/internal/xpkg/events"
	"dineflow/internal/xpkg/logger"

	"github.com/google/uuid"
)

// KitchenService owns kitchen tickets. A ticket is created exactly once per
// order from the placement event; every later change goes through Advance.
type KitchenService struct {
	ticketRepo core.TicketRepo
	publisher  core.Publisher
	notifier   core.Notifier
	mylog      logger.Logger
}

func NewKitchenService(
	ticketRepo core.TicketRepo,
	publisher core.Publisher,
	notifier core.Notifier,
	mylog logger.Logger,
) *KitchenService {
	return &KitchenService{
		ticketRepo: ticketRepo,
		publisher:  publisher,
		notifier:   notifier,
		mylog:      mylog,
	}
}

// OnOrderPlaced creates a NEW ticket for the order. Redelivered events hit the
// existing ticket and are dropped, so the handler is safe under at-least-once
// delivery.
func (s *KitchenService) OnOrderPlaced(ctx context.Context, data events.OrderPlacedData) error {
	mylog := s.mylog.Action("on_order_placed").With("order_id", data.OrderID)

	ctx, cancel := context.WithTimeout(ctx, core.WaitTime)
	defer cancel()

	if _, err := s.ticketRepo.GetByOrder(ctx, data.OrderID); err == nil {
		mylog.Info("Ticket already exists, skipping duplicate event")
		return nil
	} else if !errors.Is(err, errs.ErrNotFound) {
		return errs.NewTransientError(err)
	}

	items := make([]models.TicketItem, 0, len(data.Items))
	for _, it := range data.Items {
		items = append(items, models.TicketItem{
			FoodID:   it.FoodID,
			FoodName: it.FoodName,
			Quantity: it.Quantity,
		})
	}

	now := time.Now().UTC()
	ticket := models.KitchenTicket{
		ID:                  uuid.New(),
		OrderID:             data.OrderID,
		RestaurantID:        data.RestaurantID,
		UserID:              data.UserID,
		Status:              models.TicketNew,
		Items:               items,
		SpecialInstructions: data.SpecialInstructions,
		CreatedAt:           now,
		UpdatedAt:           now,
	}

	created, err := s.ticketRepo.Create(ctx, ticket)
	if err != nil {
		return errs.NewTransientError(err)
	}
	mylog.With("ticket_id", created.ID).Info("Ticket created")
	return nil
}

// Advance moves a ticket along the preparation workflow and publishes the
// resulting status change. DELIVERED_TO_SERVICE is reachable from any state
// as an operator override. Reaching READY also fires the best-effort customer
// notification without blocking the transition.
func (s *KitchenService) Advance(ctx context.Context, ticketID uuid.UUID, newStatus string) (models.KitchenTicket, error) {
	mylog := s.mylog.Action("advance_ticket").With("ticket_id", ticketID)

	status, ok := models.ParseTicketStatus(newStatus)
	if !ok {
		return models.KitchenTicket{}, errs.NewValidationError("unknown ticket status %q", newStatus)
	}

	ticket, err := s.ticketRepo.Get(ctx, ticketID)
	if err != nil {
		return models.KitchenTicket{}, err
	}
	if !ticket.Status.CanTransitionTo(status) {
		return models.KitchenTicket{}, errs.NewValidationError(
			"invalid ticket transition from %s to %s", ticket.Status, status)
	}

	updated, err := s.ticketRepo.UpdateStatus(ctx, ticketID, status)
	if err != nil {
		return models.KitchenTicket{}, err
	}
	mylog.With("old_status", ticket.Status, "new_status", status).Info("Ticket advanced")

	go s.publishStatusUpdated(ticket.Status, updated)

	if status == models.TicketReady {
		go s.notifyReady(updated)
	}
	return updated, nil
}

func (s *KitchenService) Get(ctx context.Context, ticketID uuid.UUID) (models.KitchenTicket, error) {
	return s.ticketRepo.Get(ctx, ticketID)
}

func (s *KitchenService) List(ctx context.Context, statusFilter string) ([]models.KitchenTicket, error) {
	if statusFilter != "" {
		if _, ok := models.ParseTicketStatus(statusFilter); !ok {
			return nil, errs.NewValidationError("unknown ticket status %q", statusFilter)
		}
	}
	return s.ticketRepo.List(ctx, statusFilter)
}

func (s *KitchenService) publishStatusUpdated(oldStatus models.TicketStatus, ticket models.KitchenTicket) {
	mylog := s.mylog.Action("publish_status_updated").With("order_id", ticket.OrderID)

	envelope, err := events.NewEnvelope(events.TypeOrderStatusUpdated, events.OrderStatusUpdatedData{
		OrderID:      ticket.OrderID,
		RestaurantID: ticket.RestaurantID,
		OldStatus:    string(oldStatus),
		NewStatus:    string(ticket.Status),
		UpdatedAt:    ticket.UpdatedAt,
	})
	if err != nil {
		mylog.Error("Failed to build envelope", err)
		return
	}
	body, err := envelope.Encode()
	if err != nil {
		mylog.Error("Failed to encode envelope", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), core.PublishTimeout)
	defer cancel()

	if err := s.publisher.Publish(ctx, events.TopicOrderEvents, ticket.OrderID.String(), body); err != nil {
		mylog.Error("Failed to publish event", err)
	}
}

// notifyReady is at-most-once: a failed lookup or send is logged and the
// message is lost.
func (s *KitchenService) notifyReady(ticket models.KitchenTicket) {
	mylog := s.mylog.Action("notify_order_ready").With("order_id", ticket.OrderID)

	ctx, cancel := context.WithTimeout(context.Background(), core.NotifyTimeout)
	defer cancel()

	if err := s.notifier.NotifyOrderReady(ctx, ticket.UserID, ticket.OrderID); err != nil {
		mylog.Error("Failed to notify customer", err)
		return
	}
	mylog.Debug("Customer notified")
}
