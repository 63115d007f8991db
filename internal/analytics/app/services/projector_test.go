package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"dineflow/internal/analytics/domain/models"
	"dineflow/internal/xpkg/errs"
	"dineflow/internal/xpkg/events"
	"dineflow/internal/xpkg/logger"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeAnalyticsRepo mirrors the transactional contract of the real repo: the
// event id is recorded only together with a successful append, never on
// failure.
type fakeAnalyticsRepo struct {
	mu        sync.Mutex
	processed map[uuid.UUID]bool
	orderRows []models.OrderRow
	itemRows  []models.OrderItemRow
	billRows  []models.BillRow
	placedErr error
}

func newFakeAnalyticsRepo() *fakeAnalyticsRepo {
	return &fakeAnalyticsRepo{processed: map[uuid.UUID]bool{}}
}

func (r *fakeAnalyticsRepo) AppendOrderPlaced(_ context.Context, eventID uuid.UUID, row models.OrderRow, items []models.OrderItemRow) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.processed[eventID] {
		return false, nil
	}
	if r.placedErr != nil {
		err := r.placedErr
		r.placedErr = nil
		return false, err
	}
	r.processed[eventID] = true
	r.orderRows = append(r.orderRows, row)
	r.itemRows = append(r.itemRows, items...)
	return true, nil
}

func (r *fakeAnalyticsRepo) AppendOrderStatus(_ context.Context, eventID, orderID uuid.UUID, newStatus string, eventTimestamp time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.processed[eventID] {
		return false, nil
	}
	latest := latestOrderRow(r.orderRows, orderID)
	if latest == nil {
		return false, errs.NewNotFoundError("projected order", orderID.String())
	}
	next := *latest
	next.Status = newStatus
	next.EventTimestamp = eventTimestamp
	r.processed[eventID] = true
	r.orderRows = append(r.orderRows, next)
	return true, nil
}

func (r *fakeAnalyticsRepo) AppendBillGenerated(_ context.Context, eventID uuid.UUID, row models.BillRow) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.processed[eventID] {
		return false, nil
	}
	r.processed[eventID] = true
	r.billRows = append(r.billRows, row)
	return true, nil
}

func (r *fakeAnalyticsRepo) AppendBillPaid(_ context.Context, eventID uuid.UUID, row models.BillRow) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.processed[eventID] {
		return false, nil
	}
	r.processed[eventID] = true
	r.billRows = append(r.billRows, row)
	return true, nil
}

func (r *fakeAnalyticsRepo) TopFoods(_ context.Context, _ int) ([]models.TopFood, error) {
	return nil, nil
}

func (r *fakeAnalyticsRepo) RestaurantTopFoods(_ context.Context, _ uuid.UUID, _ int) ([]models.TopFood, error) {
	return nil, nil
}

func (r *fakeAnalyticsRepo) RevenueSummary(_ context.Context) (models.RevenueSummary, error) {
	return models.RevenueSummary{}, nil
}

func (r *fakeAnalyticsRepo) OrdersByStatus(_ context.Context) ([]models.StatusCount, error) {
	return nil, nil
}

// latestOrderRow is the in-memory reduction: the row with the greatest event
// timestamp wins, the same rule the SQL DISTINCT ON query applies.
func latestOrderRow(rows []models.OrderRow, orderID uuid.UUID) *models.OrderRow {
	var latest *models.OrderRow
	for i := range rows {
		row := &rows[i]
		if row.OrderID != orderID {
			continue
		}
		if latest == nil || row.EventTimestamp.After(latest.EventTimestamp) {
			latest = row
		}
	}
	return latest
}

func decodedEvent(t *testing.T, eventType string, data any) events.Event {
	t.Helper()
	env, err := events.NewEnvelope(eventType, data)
	require.NoError(t, err)
	body, err := env.Encode()
	require.NoError(t, err)
	event, err := events.Decode(body)
	require.NoError(t, err)
	return event
}

func TestProjectorDispatch(t *testing.T) {
	ctx := context.Background()
	orderID := uuid.New()

	t.Run("order.placed appends order and item rows", func(t *testing.T) {
		repo := newFakeAnalyticsRepo()
		p := NewProjector(repo, logger.Discard())

		event := decodedEvent(t, events.TypeOrderPlaced, events.OrderPlacedData{
			OrderID:     orderID,
			UserID:      uuid.New(),
			TotalAmount: decimal.RequireFromString("24.98"),
			Items: []events.OrderItemData{
				{FoodID: uuid.New(), FoodName: "Margherita", Quantity: 2,
					Subtotal: decimal.RequireFromString("19.98")},
				{FoodID: uuid.New(), FoodName: "Cola", Quantity: 1,
					Subtotal: decimal.RequireFromString("5.00")},
			},
			PlacedAt: time.Now().UTC(),
		})
		require.NoError(t, p.OnEvent(ctx, event))

		require.Len(t, repo.orderRows, 1)
		assert.Equal(t, "PENDING", repo.orderRows[0].Status)
		assert.Len(t, repo.itemRows, 2)
	})

	t.Run("status update appends a new row copying the latest", func(t *testing.T) {
		repo := newFakeAnalyticsRepo()
		p := NewProjector(repo, logger.Discard())

		placed := decodedEvent(t, events.TypeOrderPlaced, events.OrderPlacedData{
			OrderID:     orderID,
			TotalAmount: decimal.RequireFromString("24.98"),
			PlacedAt:    time.Now().UTC(),
		})
		require.NoError(t, p.OnEvent(ctx, placed))

		update := decodedEvent(t, events.TypeOrderStatusUpdated, events.OrderStatusUpdatedData{
			OrderID:   orderID,
			NewStatus: "ACCEPTED",
			UpdatedAt: time.Now().UTC(),
		})
		require.NoError(t, p.OnEvent(ctx, update))

		require.Len(t, repo.orderRows, 2)
		assert.Equal(t, "ACCEPTED", repo.orderRows[1].Status)
		assert.True(t, repo.orderRows[1].TotalAmount.Equal(repo.orderRows[0].TotalAmount))
	})

	t.Run("status update without prior row is dropped", func(t *testing.T) {
		repo := newFakeAnalyticsRepo()
		p := NewProjector(repo, logger.Discard())

		update := decodedEvent(t, events.TypeOrderStatusUpdated, events.OrderStatusUpdatedData{
			OrderID:   uuid.New(),
			NewStatus: "ACCEPTED",
		})
		require.NoError(t, p.OnEvent(ctx, update))
		assert.Empty(t, repo.orderRows)
	})

	t.Run("bill events append bill rows", func(t *testing.T) {
		repo := newFakeAnalyticsRepo()
		p := NewProjector(repo, logger.Discard())
		billID := uuid.New()

		generated := decodedEvent(t, events.TypeBillGenerated, events.BillGeneratedData{
			BillID:      billID,
			OrderID:     orderID,
			Subtotal:    decimal.RequireFromString("24.98"),
			TaxAmount:   decimal.RequireFromString("2.50"),
			TotalAmount: decimal.RequireFromString("27.48"),
		})
		require.NoError(t, p.OnEvent(ctx, generated))

		paid := decodedEvent(t, events.TypeBillPaid, events.BillPaidData{
			BillID:        billID,
			OrderID:       orderID,
			TotalAmount:   decimal.RequireFromString("27.48"),
			PaymentMethod: "card",
			PaidAt:        time.Now().UTC(),
		})
		require.NoError(t, p.OnEvent(ctx, paid))

		require.Len(t, repo.billRows, 2)
		assert.Equal(t, "PENDING", repo.billRows[0].Status)
		assert.Equal(t, "PAID", repo.billRows[1].Status)
		assert.Equal(t, "card", repo.billRows[1].PaymentMethod)
	})

	t.Run("duplicate event id projected once", func(t *testing.T) {
		repo := newFakeAnalyticsRepo()
		p := NewProjector(repo, logger.Discard())

		event := decodedEvent(t, events.TypeOrderPlaced, events.OrderPlacedData{
			OrderID:     orderID,
			TotalAmount: decimal.RequireFromString("10.00"),
		})
		require.NoError(t, p.OnEvent(ctx, event))
		require.NoError(t, p.OnEvent(ctx, event))

		assert.Len(t, repo.orderRows, 1)
	})

	t.Run("failed append is retried on redelivery", func(t *testing.T) {
		repo := newFakeAnalyticsRepo()
		repo.placedErr = errors.New("connection reset by peer")
		p := NewProjector(repo, logger.Discard())

		event := decodedEvent(t, events.TypeOrderPlaced, events.OrderPlacedData{
			OrderID:     orderID,
			TotalAmount: decimal.RequireFromString("10.00"),
		})
		err := p.OnEvent(ctx, event)
		require.ErrorIs(t, err, errs.ErrTransient)
		assert.Empty(t, repo.orderRows, "nothing may be appended on failure")

		require.NoError(t, p.OnEvent(ctx, event))
		assert.Len(t, repo.orderRows, 1, "redelivery must append the lost rows")
	})

	t.Run("unknown event type ignored", func(t *testing.T) {
		repo := newFakeAnalyticsRepo()
		p := NewProjector(repo, logger.Discard())

		event := decodedEvent(t, "order.refunded", map[string]string{"reason": "late"})
		require.NoError(t, p.OnEvent(ctx, event))

		assert.Empty(t, repo.orderRows)
		assert.Empty(t, repo.billRows)
		repo.mu.Lock()
		defer repo.mu.Unlock()
		assert.Empty(t, repo.processed, "unknown events must not consume the dedup set")
	})
}

// The current status of an order is the row with the greatest event timestamp,
// whatever order the rows were appended in.
func TestStatusReductionOrderIndependent(t *testing.T) {
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	updates := []struct {
		status string
		ts     time.Time
	}{
		{"ACCEPTED", base.Add(1 * time.Minute)},
		{"IN_PROGRESS", base.Add(2 * time.Minute)},
		{"READY", base.Add(3 * time.Minute)},
	}
	permutations := [][]int{
		{0, 1, 2}, {0, 2, 1}, {1, 0, 2}, {1, 2, 0}, {2, 0, 1}, {2, 1, 0},
	}

	for _, perm := range permutations {
		orderID := uuid.New()
		repo := newFakeAnalyticsRepo()
		p := NewProjector(repo, logger.Discard())

		placed := events.OrderPlacedEvent{
			Meta: events.Envelope{
				EventID:   uuid.New(),
				EventType: events.TypeOrderPlaced,
				Timestamp: base,
			},
			Data: events.OrderPlacedData{
				OrderID:     orderID,
				TotalAmount: decimal.RequireFromString("24.98"),
				PlacedAt:    base,
			},
		}
		require.NoError(t, p.OnEvent(ctx, placed))

		for _, i := range perm {
			update := events.OrderStatusUpdatedEvent{
				Meta: events.Envelope{
					EventID:   uuid.New(),
					EventType: events.TypeOrderStatusUpdated,
					Timestamp: updates[i].ts,
				},
				Data: events.OrderStatusUpdatedData{
					OrderID:   orderID,
					NewStatus: updates[i].status,
					UpdatedAt: updates[i].ts,
				},
			}
			require.NoError(t, p.OnEvent(ctx, update))
		}

		require.Len(t, repo.orderRows, 4)
		latest := latestOrderRow(repo.orderRows, orderID)
		require.NotNil(t, latest)
		assert.Equalf(t, "READY", latest.Status, "insertion order %v", perm)
		assert.Equal(t, updates[2].ts, latest.EventTimestamp)
	}
}
