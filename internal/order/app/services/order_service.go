package services

import (
	"context"
	"strings"
	"time"

	"dineflow/internal/order/app/core"
	"dineflow/internal/order/domain/dto"
	"dineflow/internal/order/domain/models"
	"dineflow/internal/xpkg/errs"
	"dineflow/internal/xpkg/events"
	"dineflow/internal/xpkg/logger"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderService owns the order aggregate: creation and status transitions.
// Every order-scoped event it publishes is keyed by the order id.
type OrderService struct {
	orderRepo core.OrderRepo
	catalog   core.Catalog
	publisher core.Publisher
	mylog     logger.Logger
}

func NewOrderService(
	orderRepo core.OrderRepo,
	catalog core.Catalog,
	publisher core.Publisher,
	mylog logger.Logger,
) *OrderService {
	return &OrderService{
		orderRepo: orderRepo,
		catalog:   catalog,
		publisher: publisher,
		mylog:     mylog,
	}
}

// Place validates the request against the catalog, computes the total with
// fixed-point arithmetic, persists order+items atomically, and publishes
// order.placed. Publication is decoupled from the transaction: a failed
// publish leaves the order in place and is only logged.
func (s *OrderService) Place(ctx context.Context, userID uuid.UUID, req dto.CreateOrderRequest) (dto.OrderResponse, error) {
	mylog := s.mylog.Action("place_order").With("user_id", userID.String())

	if len(req.Items) == 0 {
		return dto.OrderResponse{}, errs.NewValidationError("order must contain at least one item")
	}
	for i, item := range req.Items {
		if item.Quantity < core.MinItemQuantity || item.Quantity > core.MaxItemQuantity {
			return dto.OrderResponse{}, errs.NewValidationError(
				"item %d: quantity %d must be in range [%d, %d]",
				i+1, item.Quantity, core.MinItemQuantity, core.MaxItemQuantity)
		}
	}

	foodIDs := make([]uuid.UUID, 0, len(req.Items))
	for _, item := range req.Items {
		foodIDs = append(foodIDs, item.FoodID)
	}

	foods, err := s.catalog.GetFoods(ctx, foodIDs)
	if err != nil {
		mylog.Error("Failed to fetch food details from catalog", err)
		return dto.OrderResponse{}, err
	}
	foodMap, err := validateFoods(req.Items, foods)
	if err != nil {
		return dto.OrderResponse{}, err
	}

	now := time.Now().UTC()
	order := models.Order{
		ID:                  uuid.New(),
		UserID:              userID,
		RestaurantID:        req.RestaurantID,
		Status:              models.StatusPlaced,
		DeliveryAddress:     req.DeliveryAddress,
		SpecialInstructions: req.SpecialInstructions,
		CreatedAt:           now,
		UpdatedAt:           now,
	}

	total := decimal.Zero
	items := make([]models.OrderItem, 0, len(req.Items))
	for _, item := range req.Items {
		food := foodMap[item.FoodID]
		subtotal := food.Price.Mul(decimal.NewFromInt(item.Quantity))
		total = total.Add(subtotal)
		items = append(items, models.OrderItem{
			ID:              uuid.New(),
			OrderID:         order.ID,
			FoodID:          food.ID,
			FoodName:        food.Name,
			FoodDescription: food.Description,
			Quantity:        item.Quantity,
			UnitPrice:       food.Price,
			Subtotal:        subtotal,
			CreatedAt:       now,
		})
	}
	order.TotalAmount = total

	newOrder, newItems, err := s.orderRepo.Create(ctx, order, items)
	if err != nil {
		mylog.Error("Failed to save order", err)
		return dto.OrderResponse{}, err
	}
	mylog.With("order_id", newOrder.ID.String(), "total_amount", total.String()).Info("Order created")

	go s.publishOrderPlaced(newOrder, newItems)

	return dto.OrderResponse{Order: newOrder, Items: newItems}, nil
}

// Transition moves an order along the edge table and publishes
// order.status_updated keyed by the order id.
func (s *OrderService) Transition(ctx context.Context, orderID uuid.UUID, newStatusRaw string) (models.Order, error) {
	mylog := s.mylog.Action("transition_order").With("order_id", orderID.String())

	newStatus, ok := models.ParseStatus(newStatusRaw)
	if !ok {
		return models.Order{}, errs.NewValidationError("unknown order status: %s", newStatusRaw)
	}

	current, err := s.orderRepo.Get(ctx, orderID)
	if err != nil {
		return models.Order{}, err
	}

	if !current.Status.CanTransitionTo(newStatus) {
		return models.Order{}, errs.NewValidationError(
			"invalid status transition from %s to %s", current.Status, newStatus)
	}

	updated, err := s.orderRepo.UpdateStatus(ctx, orderID, newStatus)
	if err != nil {
		mylog.Error("Failed to update order status", err)
		return models.Order{}, err
	}
	mylog.With("old_status", string(current.Status), "new_status", string(newStatus)).Info("Order status updated")

	go s.publishStatusUpdated(updated, current.Status, newStatus)

	return updated, nil
}

// Get returns the order with its items. Only the owning user may read it.
func (s *OrderService) Get(ctx context.Context, orderID, userID uuid.UUID) (dto.OrderResponse, error) {
	order, err := s.orderRepo.Get(ctx, orderID)
	if err != nil {
		return dto.OrderResponse{}, err
	}
	if order.UserID != userID {
		return dto.OrderResponse{}, errs.NewForbiddenError("you don't have permission to view this order")
	}

	items, err := s.orderRepo.GetItems(ctx, orderID)
	if err != nil {
		return dto.OrderResponse{}, err
	}
	return dto.OrderResponse{Order: order, Items: items}, nil
}

func (s *OrderService) ListUserOrders(ctx context.Context, userID uuid.UUID) ([]models.Order, error) {
	return s.orderRepo.ListByUser(ctx, userID)
}

func (s *OrderService) publishOrderPlaced(order models.Order, items []models.OrderItem) {
	mylog := s.mylog.Action("publish_order_placed").With("order_id", order.ID.String())

	eventItems := make([]events.OrderItemData, 0, len(items))
	for _, item := range items {
		eventItems = append(eventItems, events.OrderItemData{
			FoodID:          item.FoodID,
			FoodName:        item.FoodName,
			FoodDescription: item.FoodDescription,
			Quantity:        item.Quantity,
			UnitPrice:       item.UnitPrice,
			Subtotal:        item.Subtotal,
		})
	}

	env, err := events.NewEnvelope(events.TypeOrderPlaced, events.OrderPlacedData{
		OrderID:             order.ID,
		UserID:              order.UserID,
		RestaurantID:        order.RestaurantID,
		TotalAmount:         order.TotalAmount,
		Items:               eventItems,
		DeliveryAddress:     order.DeliveryAddress,
		SpecialInstructions: order.SpecialInstructions,
		PlacedAt:            order.CreatedAt,
	})
	if err != nil {
		mylog.Error("Failed to build order.placed envelope", err)
		return
	}
	s.publish(mylog, events.TopicOrderEvents, order.ID.String(), env)
}

func (s *OrderService) publishStatusUpdated(order models.Order, oldStatus, newStatus models.Status) {
	mylog := s.mylog.Action("publish_status_updated").With("order_id", order.ID.String())

	env, err := events.NewEnvelope(events.TypeOrderStatusUpdated, events.OrderStatusUpdatedData{
		OrderID:      order.ID,
		RestaurantID: order.RestaurantID,
		OldStatus:    string(oldStatus),
		NewStatus:    string(newStatus),
		UpdatedAt:    order.UpdatedAt,
	})
	if err != nil {
		mylog.Error("Failed to build order.status_updated envelope", err)
		return
	}
	s.publish(mylog, events.TopicOrderEvents, order.ID.String(), env)
}

func (s *OrderService) publish(mylog logger.Logger, topic, key string, env events.Envelope) {
	body, err := env.Encode()
	if err != nil {
		mylog.Error("Failed to encode envelope", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), core.PublishTimeout)
	defer cancel()

	if err := s.publisher.Publish(ctx, topic, key, body); err != nil {
		mylog.Error("Failed to publish event", err, "event_type", env.EventType)
		return
	}
	mylog.Debug("Event published", "event_type", env.EventType, "event_id", env.EventID.String())
}

func validateFoods(requested []dto.CreateOrderItemRequest, foods []dto.FoodDetails) (map[uuid.UUID]dto.FoodDetails, error) {
	foodMap := make(map[uuid.UUID]dto.FoodDetails, len(foods))
	for _, food := range foods {
		foodMap[food.ID] = food
	}

	var missing []string
	for _, item := range requested {
		if _, ok := foodMap[item.FoodID]; !ok {
			missing = append(missing, item.FoodID.String())
		}
	}
	if len(missing) > 0 {
		return nil, errs.NewValidationError("some food items not found: %s", strings.Join(missing, ", "))
	}

	var unavailable []string
	for _, food := range foods {
		if !food.IsAvailable {
			unavailable = append(unavailable, food.Name)
		}
	}
	if len(unavailable) > 0 {
		return nil, errs.NewValidationError("some food items are not available: %s", strings.Join(unavailable, ", "))
	}

	return foodMap, nil
}
