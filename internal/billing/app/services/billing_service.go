package services

import (
	"context"
	"errors"
	"time"

	"dineflow/internal/billing/app/core"
	"dineflow/internal/billing/domain/models"
	"dineflow/internal/xpkg/errs"
	"dineflow/internal/xpkg/events"
	"dineflow/internal/xpkg/logger"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BillingService owns bills. One bill per order, generated from the placement
// event and finalized exactly once by an explicit payment action.
type BillingService struct {
	billRepo  core.BillRepo
	publisher core.Publisher
	taxRate   decimal.Decimal
	mylog     logger.Logger
}

func NewBillingService(
	billRepo core.BillRepo,
	publisher core.Publisher,
	taxRate string,
	mylog logger.Logger,
) (*BillingService, error) {
	if taxRate == "" {
		taxRate = core.DefaultTaxRate
	}
	rate, err := decimal.NewFromString(taxRate)
	if err != nil {
		return nil, errs.NewValidationError("invalid tax rate %q", taxRate)
	}
	return &BillingService{
		billRepo:  billRepo,
		publisher: publisher,
		taxRate:   rate,
		mylog:     mylog,
	}, nil
}

// OnOrderPlaced generates a PENDING bill for the order. Redelivered events
// hit the existing bill and are dropped, so the handler is safe under
// at-least-once delivery.
func (s *BillingService) OnOrderPlaced(ctx context.Context, data events.OrderPlacedData) error {
	mylog := s.mylog.Action("on_order_placed").With("order_id", data.OrderID)

	ctx, cancel := context.WithTimeout(ctx, core.WaitTime)
	defer cancel()

	if _, err := s.billRepo.GetByOrder(ctx, data.OrderID); err == nil {
		mylog.Info("Bill already exists, skipping duplicate event")
		return nil
	} else if !errors.Is(err, errs.ErrNotFound) {
		return errs.NewTransientError(err)
	}

	subtotal := data.TotalAmount
	tax := subtotal.Mul(s.taxRate).Round(2)
	discount := decimal.Zero
	total := subtotal.Add(tax).Sub(discount)

	now := time.Now().UTC()
	bill := models.Bill{
		ID:             uuid.New(),
		OrderID:        data.OrderID,
		UserID:         data.UserID,
		RestaurantID:   data.RestaurantID,
		Status:         models.BillPending,
		Subtotal:       subtotal,
		TaxAmount:      tax,
		DiscountAmount: discount,
		TotalAmount:    total,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	created, err := s.billRepo.Create(ctx, bill)
	if err != nil {
		return errs.NewTransientError(err)
	}
	mylog.With("bill_id", created.ID, "total_amount", created.TotalAmount).Info("Bill generated")

	go s.publishBillGenerated(created)
	return nil
}

// Finalize marks the bill for the given order as paid. A second finalize is a
// validation failure, never a silent overwrite.
func (s *BillingService) Finalize(ctx context.Context, orderID uuid.UUID, paymentMethod string) (models.Bill, error) {
	mylog := s.mylog.Action("finalize_bill").With("order_id", orderID)

	method, ok := models.ParsePaymentMethod(paymentMethod)
	if !ok {
		return models.Bill{}, errs.NewValidationError("unknown payment method %q", paymentMethod)
	}

	bill, err := s.billRepo.GetByOrder(ctx, orderID)
	if err != nil {
		return models.Bill{}, err
	}
	if bill.Status == models.BillPaid {
		return models.Bill{}, errs.NewValidationError("bill for order %s is already paid", orderID)
	}
	if bill.Status == models.BillCancelled {
		return models.Bill{}, errs.NewValidationError("bill for order %s is cancelled", orderID)
	}

	paid, err := s.billRepo.MarkPaid(ctx, orderID, method)
	if err != nil {
		return models.Bill{}, err
	}
	mylog.With("bill_id", paid.ID, "payment_method", method).Info("Bill paid")

	go s.publishBillPaid(paid)
	return paid, nil
}

func (s *BillingService) GetBillByOrder(ctx context.Context, orderID uuid.UUID) (models.Bill, error) {
	return s.billRepo.GetByOrder(ctx, orderID)
}

func (s *BillingService) ListUserBills(ctx context.Context, userID uuid.UUID) ([]models.Bill, error) {
	return s.billRepo.ListByUser(ctx, userID)
}

func (s *BillingService) ListRestaurantBills(ctx context.Context, restaurantID uuid.UUID) ([]models.Bill, error) {
	return s.billRepo.ListByRestaurant(ctx, restaurantID)
}

func (s *BillingService) publishBillGenerated(bill models.Bill) {
	mylog := s.mylog.Action("publish_bill_generated").With("order_id", bill.OrderID)

	envelope, err := events.NewEnvelope(events.TypeBillGenerated, events.BillGeneratedData{
		BillID:         bill.ID,
		OrderID:        bill.OrderID,
		RestaurantID:   bill.RestaurantID,
		UserID:         bill.UserID,
		Subtotal:       bill.Subtotal,
		TaxAmount:      bill.TaxAmount,
		DiscountAmount: bill.DiscountAmount,
		TotalAmount:    bill.TotalAmount,
	})
	if err != nil {
		mylog.Error("Failed to build envelope", err)
		return
	}
	s.publish(mylog, bill.OrderID, envelope)
}

func (s *BillingService) publishBillPaid(bill models.Bill) {
	mylog := s.mylog.Action("publish_bill_paid").With("order_id", bill.OrderID)

	paidAt := time.Now().UTC()
	if bill.PaidAt != nil {
		paidAt = *bill.PaidAt
	}
	envelope, err := events.NewEnvelope(events.TypeBillPaid, events.BillPaidData{
		BillID:        bill.ID,
		OrderID:       bill.OrderID,
		RestaurantID:  bill.RestaurantID,
		UserID:        bill.UserID,
		TotalAmount:   bill.TotalAmount,
		PaymentMethod: string(bill.PaymentMethod),
		PaidAt:        paidAt,
	})
	if err != nil {
		mylog.Error("Failed to build envelope", err)
		return
	}
	s.publish(mylog, bill.OrderID, envelope)
}

// publish is decoupled from the mutation that triggered it. The bill stays
// valid even when the event never makes it out; failures are only logged.
func (s *BillingService) publish(mylog logger.Logger, orderID uuid.UUID, envelope events.Envelope) {
	body, err := envelope.Encode()
	if err != nil {
		mylog.Error("Failed to encode envelope", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), core.PublishTimeout)
	defer cancel()

	if err := s.publisher.Publish(ctx, events.TopicBillEvents, orderID.String(), body); err != nil {
		mylog.Error("Failed to publish event", err)
	}
}
