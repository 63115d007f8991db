package db

import (
	"context"
	"fmt"
	"time"

	"dineflow/internal/analytics/domain/models"
	"dineflow/internal/xpkg/db"
	"dineflow/internal/xpkg/errs"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// latestOrders reduces the append-only order log to one row per order id,
// keeping the row with the greatest event timestamp.
const latestOrders = `
	SELECT DISTINCT ON (order_id)
		order_id, user_id, restaurant_id, status, total_amount, event_timestamp
	FROM analytics_orders
	ORDER BY order_id, event_timestamp DESC`

const latestBills = `
	SELECT DISTINCT ON (bill_id)
		bill_id, order_id, user_id, restaurant_id, status, subtotal,
		tax_amount, total_amount, payment_method, paid_at, event_timestamp
	FROM analytics_bills
	ORDER BY bill_id, event_timestamp DESC`

type AnalyticsRepo struct {
	db *db.DB
}

func NewAnalyticsRepo(database *db.DB) *AnalyticsRepo {
	return &AnalyticsRepo{db: database}
}

// markProcessed records the event id inside the caller's transaction. The
// dedup row and the appended rows commit or roll back together, so a failed
// append never strands the event as "processed".
func markProcessed(ctx context.Context, tx pgx.Tx, eventID uuid.UUID) (bool, error) {
	tag, err := tx.Exec(ctx, `
		INSERT INTO analytics_processed_events (event_id, processed_at)
		VALUES ($1, now())
		ON CONFLICT (event_id) DO NOTHING`,
		eventID,
	)
	if err != nil {
		return false, fmt.Errorf("mark event processed: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *AnalyticsRepo) AppendOrderPlaced(ctx context.Context, eventID uuid.UUID, row models.OrderRow, items []models.OrderItemRow) (bool, error) {
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return false, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	fresh, err := markProcessed(ctx, tx, eventID)
	if err != nil {
		return false, err
	}
	if !fresh {
		return false, nil
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO analytics_orders
			(order_id, user_id, restaurant_id, status, total_amount, event_timestamp)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		row.OrderID, row.UserID, row.RestaurantID, row.Status, row.TotalAmount, row.EventTimestamp,
	)
	if err != nil {
		return false, fmt.Errorf("insert order row: %w", err)
	}

	for _, it := range items {
		_, err = tx.Exec(ctx, `
			INSERT INTO analytics_order_items
				(order_id, food_id, food_name, quantity, subtotal, event_timestamp)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			it.OrderID, it.FoodID, it.FoodName, it.Quantity, it.Subtotal, it.EventTimestamp,
		)
		if err != nil {
			return false, fmt.Errorf("insert order item row: %w", err)
		}
	}
	return true, tx.Commit(ctx)
}

func (r *AnalyticsRepo) AppendOrderStatus(ctx context.Context, eventID, orderID uuid.UUID, newStatus string, eventTimestamp time.Time) (bool, error) {
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return false, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	fresh, err := markProcessed(ctx, tx, eventID)
	if err != nil {
		return false, err
	}
	if !fresh {
		return false, nil
	}

	tag, err := tx.Exec(ctx, `
		INSERT INTO analytics_orders
			(order_id, user_id, restaurant_id, status, total_amount, event_timestamp)
		SELECT order_id, user_id, restaurant_id, $2, total_amount, $3
		FROM (`+latestOrders+`) latest
		WHERE order_id = $1`,
		orderID, newStatus, eventTimestamp,
	)
	if err != nil {
		return false, fmt.Errorf("append order status row: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return false, errs.NewNotFoundError("projected order", orderID.String())
	}
	return true, tx.Commit(ctx)
}

func (r *AnalyticsRepo) AppendBillGenerated(ctx context.Context, eventID uuid.UUID, row models.BillRow) (bool, error) {
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return false, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	fresh, err := markProcessed(ctx, tx, eventID)
	if err != nil {
		return false, err
	}
	if !fresh {
		return false, nil
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO analytics_bills
			(bill_id, order_id, user_id, restaurant_id, status, subtotal,
			 tax_amount, total_amount, event_timestamp)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		row.BillID, row.OrderID, row.UserID, row.RestaurantID, row.Status,
		row.Subtotal, row.TaxAmount, row.TotalAmount, row.EventTimestamp,
	)
	if err != nil {
		return false, fmt.Errorf("insert bill row: %w", err)
	}
	return true, tx.Commit(ctx)
}

// AppendBillPaid copies the latest row of the bill and overlays the payment
// fields. A paid event that arrives before its generated event falls back to
// the event's own data rather than being lost.
func (r *AnalyticsRepo) AppendBillPaid(ctx context.Context, eventID uuid.UUID, row models.BillRow) (bool, error) {
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return false, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	fresh, err := markProcessed(ctx, tx, eventID)
	if err != nil {
		return false, err
	}
	if !fresh {
		return false, nil
	}

	tag, err := tx.Exec(ctx, `
		INSERT INTO analytics_bills
			(bill_id, order_id, user_id, restaurant_id, status, subtotal,
			 tax_amount, total_amount, payment_method, paid_at, event_timestamp)
		SELECT bill_id, order_id, user_id, restaurant_id, $2, subtotal,
			tax_amount, total_amount, $3, $4, $5
		FROM (`+latestBills+`) latest
		WHERE bill_id = $1`,
		row.BillID, row.Status, row.PaymentMethod, row.PaidAt, row.EventTimestamp,
	)
	if err != nil {
		return false, fmt.Errorf("append bill paid row: %w", err)
	}
	if tag.RowsAffected() == 0 {
		_, err = tx.Exec(ctx, `
			INSERT INTO analytics_bills
				(bill_id, order_id, user_id, restaurant_id, status, subtotal,
				 tax_amount, total_amount, payment_method, paid_at, event_timestamp)
			VALUES ($1, $2, $3, $4, $5, 0, 0, $6, $7, $8, $9)`,
			row.BillID, row.OrderID, row.UserID, row.RestaurantID, row.Status,
			row.TotalAmount, row.PaymentMethod, row.PaidAt, row.EventTimestamp,
		)
		if err != nil {
			return false, fmt.Errorf("insert bill paid row: %w", err)
		}
	}
	return true, tx.Commit(ctx)
}

func (r *AnalyticsRepo) TopFoods(ctx context.Context, limit int) ([]models.TopFood, error) {
	return r.topFoods(ctx, `
		SELECT food_id, food_name, SUM(quantity), SUM(subtotal)
		FROM analytics_order_items
		GROUP BY food_id, food_name
		ORDER BY SUM(quantity) DESC
		LIMIT $1`, limit)
}

func (r *AnalyticsRepo) RestaurantTopFoods(ctx context.Context, restaurantID uuid.UUID, limit int) ([]models.TopFood, error) {
	return r.topFoods(ctx, `
		SELECT i.food_id, i.food_name, SUM(i.quantity), SUM(i.subtotal)
		FROM analytics_order_items i
		JOIN (`+latestOrders+`) o ON o.order_id = i.order_id
		WHERE o.restaurant_id = $2
		GROUP BY i.food_id, i.food_name
		ORDER BY SUM(i.quantity) DESC
		LIMIT $1`, limit, restaurantID)
}

func (r *AnalyticsRepo) topFoods(ctx context.Context, query string, args ...any) ([]models.TopFood, error) {
	rows, err := r.db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("select top foods: %w", err)
	}
	defer rows.Close()

	foods := []models.TopFood{}
	for rows.Next() {
		var f models.TopFood
		if err := rows.Scan(&f.FoodID, &f.FoodName, &f.TotalQuantity, &f.TotalRevenue); err != nil {
			return nil, fmt.Errorf("scan top food: %w", err)
		}
		foods = append(foods, f)
	}
	return foods, rows.Err()
}

func (r *AnalyticsRepo) RevenueSummary(ctx context.Context) (models.RevenueSummary, error) {
	var s models.RevenueSummary
	err := r.db.Pool.QueryRow(ctx, `
		SELECT COALESCE(SUM(total_amount), 0), COUNT(*), COALESCE(AVG(total_amount), 0)
		FROM (`+latestOrders+`) latest`,
	).Scan(&s.TotalRevenue, &s.OrderCount, &s.AverageAmount)
	if err != nil {
		return models.RevenueSummary{}, fmt.Errorf("select revenue summary: %w", err)
	}
	s.TotalRevenue = s.TotalRevenue.Round(2)
	s.AverageAmount = s.AverageAmount.Round(2)
	return s, nil
}

func (r *AnalyticsRepo) OrdersByStatus(ctx context.Context) ([]models.StatusCount, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT status, COUNT(*)
		FROM (`+latestOrders+`) latest
		GROUP BY status
		ORDER BY COUNT(*) DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("select orders by status: %w", err)
	}
	defer rows.Close()

	counts := []models.StatusCount{}
	for rows.Next() {
		var c models.StatusCount
		if err := rows.Scan(&c.Status, &c.Count); err != nil {
			return nil, fmt.Errorf("scan status count: %w", err)
		}
		counts = append(counts, c)
	}
	return counts, rows.Err()
}
