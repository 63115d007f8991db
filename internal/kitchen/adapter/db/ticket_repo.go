package db

import (
	"context"
	"errors"
	"fmt"

	"dineflow/internal/kitchen/domain/models"
	"dineflow/internal/xpkg/db"
	"dineflow/internal/xpkg/errs"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const ticketColumns = `id, order_id, restaurant_id, user_id, status, items,
	COALESCE(special_instructions, ''), created_at, updated_at`

type TicketRepo struct {
	db *db.DB
}

func NewTicketRepo(database *db.DB) *TicketRepo {
	return &TicketRepo{db: database}
}

func (r *TicketRepo) Create(ctx context.Context, ticket models.KitchenTicket) (models.KitchenTicket, error) {
	row := r.db.Pool.QueryRow(ctx, `
		INSERT INTO kitchen_tickets
			(id, order_id, restaurant_id, user_id, status, items, special_instructions, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, ''), $8, $9)
		RETURNING `+ticketColumns,
		ticket.ID, ticket.OrderID, ticket.RestaurantID, ticket.UserID,
		ticket.Status, ticket.Items, ticket.SpecialInstructions,
		ticket.CreatedAt, ticket.UpdatedAt,
	)
	created, err := scanTicket(row)
	if err != nil {
		return models.KitchenTicket{}, fmt.Errorf("insert kitchen ticket: %w", err)
	}
	return created, nil
}

func (r *TicketRepo) Get(ctx context.Context, id uuid.UUID) (models.KitchenTicket, error) {
	row := r.db.Pool.QueryRow(ctx,
		`SELECT `+ticketColumns+` FROM kitchen_tickets WHERE id = $1`, id)
	ticket, err := scanTicket(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.KitchenTicket{}, errs.NewNotFoundError("kitchen ticket", id.String())
	}
	if err != nil {
		return models.KitchenTicket{}, fmt.Errorf("select kitchen ticket: %w", err)
	}
	return ticket, nil
}

func (r *TicketRepo) GetByOrder(ctx context.Context, orderID uuid.UUID) (models.KitchenTicket, error) {
	row := r.db.Pool.QueryRow(ctx,
		`SELECT `+ticketColumns+` FROM kitchen_tickets WHERE order_id = $1`, orderID)
	ticket, err := scanTicket(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.KitchenTicket{}, errs.NewNotFoundError("kitchen ticket for order", orderID.String())
	}
	if err != nil {
		return models.KitchenTicket{}, fmt.Errorf("select kitchen ticket by order: %w", err)
	}
	return ticket, nil
}

func (r *TicketRepo) List(ctx context.Context, status string) ([]models.KitchenTicket, error) {
	query := `SELECT ` + ticketColumns + ` FROM kitchen_tickets ORDER BY created_at DESC`
	args := []any{}
	if status != "" {
		query = `SELECT ` + ticketColumns + ` FROM kitchen_tickets WHERE status = $1 ORDER BY created_at DESC`
		args = append(args, status)
	}

	rows, err := r.db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("select kitchen tickets: %w", err)
	}
	defer rows.Close()

	tickets := []models.KitchenTicket{}
	for rows.Next() {
		ticket, err := scanTicket(rows)
		if err != nil {
			return nil, fmt.Errorf("scan kitchen ticket: %w", err)
		}
		tickets = append(tickets, ticket)
	}
	return tickets, rows.Err()
}

func (r *TicketRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status models.TicketStatus) (models.KitchenTicket, error) {
	row := r.db.Pool.QueryRow(ctx, `
		UPDATE kitchen_tickets
		SET status = $2, updated_at = now()
		WHERE id = $1
		RETURNING `+ticketColumns,
		id, status,
	)
	ticket, err := scanTicket(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.KitchenTicket{}, errs.NewNotFoundError("kitchen ticket", id.String())
	}
	if err != nil {
		return models.KitchenTicket{}, fmt.Errorf("update kitchen ticket status: %w", err)
	}
	return ticket, nil
}

func scanTicket(row pgx.Row) (models.KitchenTicket, error) {
	var t models.KitchenTicket
	err := row.Scan(
		&t.ID, &t.OrderID, &t.RestaurantID, &t.UserID,
		&t.Status, &t.Items, &t.SpecialInstructions,
		&t.CreatedAt, &t.UpdatedAt,
	)
	return t, err
}
