package db

import (
	"context"
	"errors"
	"fmt"

	"dineflow/internal/billing/domain/models"
	"dineflow/internal/xpkg/db"
	"dineflow/internal/xpkg/errs"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const billColumns = `id, order_id, user_id, restaurant_id, status, subtotal,
	tax_amount, discount_amount, total_amount, COALESCE(payment_method, ''),
	paid_at, created_at, updated_at`

type BillRepo struct {
	db *db.DB
}

func NewBillRepo(database *db.DB) *BillRepo {
	return &BillRepo{db: database}
}

func (r *BillRepo) Create(ctx context.Context, bill models.Bill) (models.Bill, error) {
	row := r.db.Pool.QueryRow(ctx, `
		INSERT INTO bills
			(id, order_id, user_id, restaurant_id, status, subtotal,
			 tax_amount, discount_amount, total_amount, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING `+billColumns,
		bill.ID, bill.OrderID, bill.UserID, bill.RestaurantID, bill.Status,
		bill.Subtotal, bill.TaxAmount, bill.DiscountAmount, bill.TotalAmount,
		bill.CreatedAt, bill.UpdatedAt,
	)
	created, err := scanBill(row)
	if err != nil {
		return models.Bill{}, fmt.Errorf("insert bill: %w", err)
	}
	return created, nil
}

func (r *BillRepo) GetByOrder(ctx context.Context, orderID uuid.UUID) (models.Bill, error) {
	row := r.db.Pool.QueryRow(ctx,
		`SELECT `+billColumns+` FROM bills WHERE order_id = $1`, orderID)
	bill, err := scanBill(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Bill{}, errs.NewNotFoundError("bill for order", orderID.String())
	}
	if err != nil {
		return models.Bill{}, fmt.Errorf("select bill by order: %w", err)
	}
	return bill, nil
}

func (r *BillRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Bill, error) {
	return r.list(ctx, `SELECT `+billColumns+` FROM bills WHERE user_id = $1 ORDER BY created_at DESC`, userID)
}

func (r *BillRepo) ListByRestaurant(ctx context.Context, restaurantID uuid.UUID) ([]models.Bill, error) {
	return r.list(ctx, `SELECT `+billColumns+` FROM bills WHERE restaurant_id = $1 ORDER BY created_at DESC`, restaurantID)
}

func (r *BillRepo) MarkPaid(ctx context.Context, orderID uuid.UUID, method models.PaymentMethod) (models.Bill, error) {
	row := r.db.Pool.QueryRow(ctx, `
		UPDATE bills
		SET status = $2, payment_method = $3, paid_at = now(), updated_at = now()
		WHERE order_id = $1 AND status = $4
		RETURNING `+billColumns,
		orderID, models.BillPaid, method, models.BillPending,
	)
	bill, err := scanBill(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Bill{}, errs.NewNotFoundError("pending bill for order", orderID.String())
	}
	if err != nil {
		return models.Bill{}, fmt.Errorf("mark bill paid: %w", err)
	}
	return bill, nil
}

func (r *BillRepo) list(ctx context.Context, query string, arg any) ([]models.Bill, error) {
	rows, err := r.db.Pool.Query(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("select bills: %w", err)
	}
	defer rows.Close()

	bills := []models.Bill{}
	for rows.Next() {
		bill, err := scanBill(rows)
		if err != nil {
			return nil, fmt.Errorf("scan bill: %w", err)
		}
		bills = append(bills, bill)
	}
	return bills, rows.Err()
}

func scanBill(row pgx.Row) (models.Bill, error) {
	var b models.Bill
	err := row.Scan(
		&b.ID, &b.OrderID, &b.UserID, &b.RestaurantID, &b.Status,
		&b.Subtotal, &b.TaxAmount, &b.DiscountAmount, &b.TotalAmount,
		&b.PaymentMethod, &b.PaidAt, &b.CreatedAt, &b.UpdatedAt,
	)
	return b, err
}
