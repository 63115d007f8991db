package db

import (
	"context"
	"errors"
	"fmt"

	"dineflow/internal/order/domain/models"
	"dineflow/internal/xpkg/db"
	"dineflow/internal/xpkg/errs"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type OrderRepo struct {
	db *db.DB
}

func NewOrderRepo(database *db.DB) *OrderRepo {
	return &OrderRepo{db: database}
}

const orderColumns = `id, user_id, restaurant_id, status, total_amount,
	COALESCE(delivery_address, ''), COALESCE(special_instructions, ''), created_at, updated_at`

func (r *OrderRepo) Create(ctx context.Context, order models.Order, items []models.OrderItem) (models.Order, []models.OrderItem, error) {
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return models.Order{}, nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO orders (
			id, user_id, restaurant_id, status, total_amount,
			delivery_address, special_instructions, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), NULLIF($7, ''), $8, $9)
	`,
		order.ID,
		order.UserID,
		order.RestaurantID,
		string(order.Status),
		order.TotalAmount,
		order.DeliveryAddress,
		order.SpecialInstructions,
		order.CreatedAt,
		order.UpdatedAt,
	)
	if err != nil {
		return models.Order{}, nil, fmt.Errorf("insert order: %w", err)
	}

	for _, item := range items {
		_, err = tx.Exec(ctx, `
			INSERT INTO order_items (
				id, order_id, food_id, food_name, food_description,
				quantity, unit_price, subtotal, created_at
			)
			VALUES ($1, $2, $3, $4, NULLIF($5, ''), $6, $7, $8, $9)
		`,
			item.ID,
			item.OrderID,
			item.FoodID,
			item.FoodName,
			item.FoodDescription,
			item.Quantity,
			item.UnitPrice,
			item.Subtotal,
			item.CreatedAt,
		)
		if err != nil {
			return models.Order{}, nil, fmt.Errorf("insert order item: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return models.Order{}, nil, fmt.Errorf("commit transaction: %w", err)
	}

	return order, items, nil
}

func (r *OrderRepo) Get(ctx context.Context, id uuid.UUID) (models.Order, error) {
	row := r.db.Pool.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id)

	order, err := scanOrder(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Order{}, errs.NewNotFoundError("order", id.String())
		}
		return models.Order{}, fmt.Errorf("get order: %w", err)
	}
	return order, nil
}

func (r *OrderRepo) GetItems(ctx context.Context, orderID uuid.UUID) ([]models.OrderItem, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT id, order_id, food_id, food_name, COALESCE(food_description, ''),
			quantity, unit_price, subtotal, created_at
		FROM order_items
		WHERE order_id = $1
		ORDER BY created_at
	`, orderID)
	if err != nil {
		return nil, fmt.Errorf("get order items: %w", err)
	}
	defer rows.Close()

	var items []models.OrderItem
	for rows.Next() {
		var item models.OrderItem
		err := rows.Scan(
			&item.ID, &item.OrderID, &item.FoodID, &item.FoodName, &item.FoodDescription,
			&item.Quantity, &item.UnitPrice, &item.Subtotal, &item.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (r *OrderRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Order, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE user_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	var orders []models.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, order)
	}
	return orders, rows.Err()
}

func (r *OrderRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status models.Status) (models.Order, error) {
	row := r.db.Pool.QueryRow(ctx, `
		UPDATE orders SET status = $2, updated_at = now()
		WHERE id = $1
		RETURNING `+orderColumns,
		id, string(status))

	order, err := scanOrder(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Order{}, errs.NewNotFoundError("order", id.String())
		}
		return models.Order{}, fmt.Errorf("update order status: %w", err)
	}
	return order, nil
}

func scanOrder(row pgx.Row) (models.Order, error) {
	var order models.Order
	var status string
	err := row.Scan(
		&order.ID, &order.UserID, &order.RestaurantID, &status, &order.TotalAmount,
		&order.DeliveryAddress, &order.SpecialInstructions, &order.CreatedAt, &order.UpdatedAt,
	)
	if err != nil {
		return models.Order{}, err
	}
	order.Status = models.Status(status)
	return order, nil
}
