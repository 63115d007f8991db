package handle

import (
	"encoding/json"
	"errors"
	"net/http"

	"dineflow/internal/billing/app/services"
	"dineflow/internal/billing/domain/dto"
	"dineflow/internal/xpkg/errs"
	"dineflow/internal/xpkg/logger"

	"github.com/google/uuid"
)

type BillHandler struct {
	billingService *services.BillingService
	mylog          logger.Logger
}

func NewBillHandler(billingService *services.BillingService, mylog logger.Logger) *BillHandler {
	return &BillHandler{
		billingService: billingService,
		mylog:          mylog,
	}
}

func (h *BillHandler) GetByOrder() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, err := uuid.Parse(r.PathValue("orderID"))
		if err != nil {
			jsonError(w, errs.NewValidationError("invalid order id"))
			return
		}

		bill, err := h.billingService.GetBillByOrder(r.Context(), orderID)
		if err != nil {
			jsonError(w, err)
			return
		}
		jsonResponse(w, http.StatusOK, bill)
	}
}

func (h *BillHandler) Finalize() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, err := uuid.Parse(r.PathValue("orderID"))
		if err != nil {
			jsonError(w, errs.NewValidationError("invalid order id"))
			return
		}

		var req dto.FinalizeBillRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			jsonError(w, errs.NewValidationError("failed to parse JSON body"))
			return
		}
		if req.PaymentMethod == "" {
			jsonError(w, errs.NewValidationError("payment_method is required"))
			return
		}

		bill, err := h.billingService.Finalize(r.Context(), orderID, req.PaymentMethod)
		if err != nil {
			if !errors.Is(err, errs.ErrValidation) && !errors.Is(err, errs.ErrNotFound) {
				h.mylog.Action("finalize_failed").Error("Failed to finalize bill", err)
			}
			jsonError(w, err)
			return
		}
		jsonResponse(w, http.StatusOK, bill)
	}
}

func (h *BillHandler) ListByUser() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := uuid.Parse(r.PathValue("userID"))
		if err != nil {
			jsonError(w, errs.NewValidationError("invalid user id"))
			return
		}

		bills, err := h.billingService.ListUserBills(r.Context(), userID)
		if err != nil {
			jsonError(w, err)
			return
		}
		jsonResponse(w, http.StatusOK, bills)
	}
}

func (h *BillHandler) ListByRestaurant() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		restaurantID, err := uuid.Parse(r.PathValue("restaurantID"))
		if err != nil {
			jsonError(w, errs.NewValidationError("invalid restaurant id"))
			return
		}

		bills, err := h.billingService.ListRestaurantBills(r.Context(), restaurantID)
		if err != nil {
			jsonError(w, err)
			return
		}
		jsonResponse(w, http.StatusOK, bills)
	}
}
