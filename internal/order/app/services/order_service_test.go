package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"dineflow/internal/order/domain/dto"
	"dineflow/internal/order/domain/models"
	"dineflow/internal/xpkg/errs"
	"dineflow/internal/xpkg/events"
	"dineflow/internal/xpkg/logger"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeOrderRepo struct {
	mu     sync.Mutex
	orders map[uuid.UUID]models.Order
	items  map[uuid.UUID][]models.OrderItem
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{
		orders: map[uuid.UUID]models.Order{},
		items:  map[uuid.UUID][]models.OrderItem{},
	}
}

func (r *fakeOrderRepo) Create(_ context.Context, order models.Order, items []models.OrderItem) (models.Order, []models.OrderItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.orders[order.ID] = order
	r.items[order.ID] = items
	return order, items, nil
}

func (r *fakeOrderRepo) Get(_ context.Context, id uuid.UUID) (models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	order, ok := r.orders[id]
	if !ok {
		return models.Order{}, errs.NewNotFoundError("order", id.String())
	}
	return order, nil
}

func (r *fakeOrderRepo) GetItems(_ context.Context, orderID uuid.UUID) ([]models.OrderItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.items[orderID], nil
}

func (r *fakeOrderRepo) ListByUser(_ context.Context, userID uuid.UUID) ([]models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	orders := []models.Order{}
	for _, order := range r.orders {
		if order.UserID == userID {
			orders = append(orders, order)
		}
	}
	return orders, nil
}

func (r *fakeOrderRepo) UpdateStatus(_ context.Context, id uuid.UUID, status models.Status) (models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	order, ok := r.orders[id]
	if !ok {
		return models.Order{}, errs.NewNotFoundError("order", id.String())
	}
	order.Status = status
	order.UpdatedAt = time.Now().UTC()
	r.orders[id] = order
	return order, nil
}

type fakeCatalog struct {
	foods map[uuid.UUID]dto.FoodDetails
}

func (c *fakeCatalog) GetFoods(_ context.Context, ids []uuid.UUID) ([]dto.FoodDetails, error) {
	foods := []dto.FoodDetails{}
	for _, id := range ids {
		if food, ok := c.foods[id]; ok {
			foods = append(foods, food)
		}
	}
	return foods, nil
}

type published struct {
	topic string
	key   string
	body  []byte
}

type fakePublisher struct {
	mu   sync.Mutex
	msgs []published
}

func (p *fakePublisher) Publish(_ context.Context, topic, key string, body []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.msgs = append(p.msgs, published{topic: topic, key: key, body: body})
	return nil
}

func (p *fakePublisher) all() []published {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]published{}, p.msgs...)
}

func food(name, price string, available bool) dto.FoodDetails {
	return dto.FoodDetails{
		ID:          uuid.New(),
		Name:        name,
		Price:       decimal.RequireFromString(price),
		IsAvailable: available,
	}
}

func newTestService(foods ...dto.FoodDetails) (*OrderService, *fakeOrderRepo, *fakePublisher) {
	catalog := &fakeCatalog{foods: map[uuid.UUID]dto.FoodDetails{}}
	for _, f := range foods {
		catalog.foods[f.ID] = f
	}
	repo := newFakeOrderRepo()
	pub := &fakePublisher{}
	return NewOrderService(repo, catalog, pub, logger.Discard()), repo, pub
}

func TestPlace(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	t.Run("computes decimal total", func(t *testing.T) {
		pizza := food("Margherita", "9.99", true)
		cola := food("Cola", "5.00", true)
		svc, _, _ := newTestService(pizza, cola)

		resp, err := svc.Place(ctx, userID, dto.CreateOrderRequest{
			RestaurantID: uuid.New(),
			Items: []dto.CreateOrderItemRequest{
				{FoodID: pizza.ID, Quantity: 2},
				{FoodID: cola.ID, Quantity: 1},
			},
		})
		require.NoError(t, err)
		assert.True(t, resp.Order.TotalAmount.Equal(decimal.RequireFromString("24.98")),
			"got total %s", resp.Order.TotalAmount)
		assert.Equal(t, models.StatusPlaced, resp.Order.Status)
		assert.Len(t, resp.Items, 2)
	})

	t.Run("rejects empty items", func(t *testing.T) {
		svc, _, _ := newTestService()
		_, err := svc.Place(ctx, userID, dto.CreateOrderRequest{RestaurantID: uuid.New()})
		require.ErrorIs(t, err, errs.ErrValidation)
	})

	t.Run("rejects out of range quantity", func(t *testing.T) {
		pizza := food("Margherita", "9.99", true)
		svc, _, _ := newTestService(pizza)
		for _, qty := range []int64{0, -1, 101} {
			_, err := svc.Place(ctx, userID, dto.CreateOrderRequest{
				RestaurantID: uuid.New(),
				Items:        []dto.CreateOrderItemRequest{{FoodID: pizza.ID, Quantity: qty}},
			})
			require.ErrorIs(t, err, errs.ErrValidation, "quantity %d", qty)
		}
	})

	t.Run("rejects unknown food", func(t *testing.T) {
		svc, _, _ := newTestService()
		_, err := svc.Place(ctx, userID, dto.CreateOrderRequest{
			RestaurantID: uuid.New(),
			Items:        []dto.CreateOrderItemRequest{{FoodID: uuid.New(), Quantity: 1}},
		})
		require.ErrorIs(t, err, errs.ErrValidation)
	})

	t.Run("rejects unavailable food", func(t *testing.T) {
		soup := food("Soup", "4.50", false)
		svc, _, _ := newTestService(soup)
		_, err := svc.Place(ctx, userID, dto.CreateOrderRequest{
			RestaurantID: uuid.New(),
			Items:        []dto.CreateOrderItemRequest{{FoodID: soup.ID, Quantity: 1}},
		})
		require.ErrorIs(t, err, errs.ErrValidation)
	})

	t.Run("publishes order.placed keyed by order id", func(t *testing.T) {
		pizza := food("Margherita", "9.99", true)
		svc, _, pub := newTestService(pizza)

		resp, err := svc.Place(ctx, userID, dto.CreateOrderRequest{
			RestaurantID: uuid.New(),
			Items:        []dto.CreateOrderItemRequest{{FoodID: pizza.ID, Quantity: 2}},
		})
		require.NoError(t, err)

		require.Eventually(t, func() bool { return len(pub.all()) == 1 }, time.Second, 10*time.Millisecond)
		msg := pub.all()[0]
		assert.Equal(t, events.TopicOrderEvents, msg.topic)
		assert.Equal(t, resp.Order.ID.String(), msg.key)

		event, err := events.Decode(msg.body)
		require.NoError(t, err)
		placed, ok := event.(events.OrderPlacedEvent)
		require.True(t, ok)
		assert.Equal(t, resp.Order.ID, placed.Data.OrderID)
		assert.True(t, placed.Data.TotalAmount.Equal(resp.Order.TotalAmount))
	})
}

func TestTransition(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	pizza := food("Margherita", "9.99", true)

	place := func(t *testing.T, svc *OrderService) models.Order {
		t.Helper()
		resp, err := svc.Place(ctx, userID, dto.CreateOrderRequest{
			RestaurantID: uuid.New(),
			Items:        []dto.CreateOrderItemRequest{{FoodID: pizza.ID, Quantity: 1}},
		})
		require.NoError(t, err)
		return resp.Order
	}

	t.Run("walks the full lifecycle", func(t *testing.T) {
		svc, _, _ := newTestService(pizza)
		order := place(t, svc)

		for _, next := range []models.Status{
			models.StatusAccepted, models.StatusInProgress, models.StatusReady, models.StatusCompleted,
		} {
			updated, err := svc.Transition(ctx, order.ID, string(next))
			require.NoError(t, err)
			assert.Equal(t, next, updated.Status)
		}
	})

	t.Run("rejects every invalid edge", func(t *testing.T) {
		all := []models.Status{
			models.StatusPlaced, models.StatusAccepted, models.StatusInProgress,
			models.StatusReady, models.StatusCompleted, models.StatusCancelled,
		}
		valid := map[models.Status]map[models.Status]bool{
			models.StatusPlaced:     {models.StatusAccepted: true, models.StatusCancelled: true},
			models.StatusAccepted:   {models.StatusInProgress: true, models.StatusCancelled: true},
			models.StatusInProgress: {models.StatusReady: true, models.StatusCancelled: true},
			models.StatusReady:      {models.StatusCompleted: true, models.StatusCancelled: true},
		}

		for _, from := range all {
			for _, to := range all {
				if valid[from][to] {
					continue
				}
				svc, repo, _ := newTestService(pizza)
				order := place(t, svc)
				repo.mu.Lock()
				stored := repo.orders[order.ID]
				stored.Status = from
				repo.orders[order.ID] = stored
				repo.mu.Unlock()

				_, err := svc.Transition(ctx, order.ID, string(to))
				require.ErrorIs(t, err, errs.ErrValidation, "%s -> %s", from, to)

				current, err := repo.Get(ctx, order.ID)
				require.NoError(t, err)
				assert.Equal(t, from, current.Status, "state changed on rejected %s -> %s", from, to)
			}
		}
	})

	t.Run("unknown status rejected", func(t *testing.T) {
		svc, _, _ := newTestService(pizza)
		order := place(t, svc)
		_, err := svc.Transition(ctx, order.ID, "BURNT")
		require.ErrorIs(t, err, errs.ErrValidation)
	})

	t.Run("missing order", func(t *testing.T) {
		svc, _, _ := newTestService(pizza)
		_, err := svc.Transition(ctx, uuid.New(), string(models.StatusAccepted))
		require.ErrorIs(t, err, errs.ErrNotFound)
	})

	t.Run("publishes status update keyed by order id", func(t *testing.T) {
		svc, _, pub := newTestService(pizza)
		order := place(t, svc)

		_, err := svc.Transition(ctx, order.ID, string(models.StatusAccepted))
		require.NoError(t, err)

		require.Eventually(t, func() bool { return len(pub.all()) == 2 }, time.Second, 10*time.Millisecond)
		var updates []published
		for _, msg := range pub.all() {
			event, err := events.Decode(msg.body)
			require.NoError(t, err)
			if e, ok := event.(events.OrderStatusUpdatedEvent); ok {
				updates = append(updates, msg)
				assert.Equal(t, string(models.StatusPlaced), e.Data.OldStatus)
				assert.Equal(t, string(models.StatusAccepted), e.Data.NewStatus)
			}
		}
		require.Len(t, updates, 1)
		assert.Equal(t, order.ID.String(), updates[0].key)
	})
}

func TestGetOrder(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	pizza := food("Margherita", "9.99", true)

	svc, _, _ := newTestService(pizza)
	resp, err := svc.Place(ctx, userID, dto.CreateOrderRequest{
		RestaurantID: uuid.New(),
		Items:        []dto.CreateOrderItemRequest{{FoodID: pizza.ID, Quantity: 1}},
	})
	require.NoError(t, err)

	t.Run("owner reads order with items", func(t *testing.T) {
		got, err := svc.Get(ctx, resp.Order.ID, userID)
		require.NoError(t, err)
		assert.Equal(t, resp.Order.ID, got.Order.ID)
		assert.Len(t, got.Items, 1)
	})

	t.Run("other user is forbidden", func(t *testing.T) {
		_, err := svc.Get(ctx, resp.Order.ID, uuid.New())
		require.ErrorIs(t, err, errs.ErrForbidden)
	})

	t.Run("missing order", func(t *testing.T) {
		_, err := svc.Get(ctx, uuid.New(), userID)
		require.ErrorIs(t, err, errs.ErrNotFound)
	})
}
