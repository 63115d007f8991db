package handle

import (
	"encoding/json"
	"errors"
	"net/http"

	"dineflow/internal/order/app/services"
	"dineflow/internal/order/domain/dto"
	"dineflow/internal/xpkg/errs"
	"dineflow/internal/xpkg/logger"

	"github.com/google/uuid"
)

type OrderHandler struct {
	orderService *services.OrderService
	mylog        logger.Logger
}

func NewOrderHandler(orderService *services.OrderService, mylog logger.Logger) *OrderHandler {
	return &OrderHandler{
		orderService: orderService,
		mylog:        mylog,
	}
}

// userID reads the identity the gateway injects after authentication.
func userID(r *http.Request) (uuid.UUID, error) {
	raw := r.Header.Get("X-User-Id")
	if raw == "" {
		return uuid.Nil, errs.NewForbiddenError("missing user identity")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, errs.NewForbiddenError("invalid user identity")
	}
	return id, nil
}

func (h *OrderHandler) Create() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, err := userID(r)
		if err != nil {
			jsonError(w, err)
			return
		}

		var req dto.CreateOrderRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			h.mylog.Action("parse_failed").Error("Failed to parse order request", err)
			jsonError(w, errs.NewValidationError("failed to parse JSON body"))
			return
		}

		resp, err := h.orderService.Place(r.Context(), uid, req)
		if err != nil {
			jsonError(w, err)
			return
		}
		jsonResponse(w, http.StatusCreated, resp)
	}
}

func (h *OrderHandler) Get() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, err := userID(r)
		if err != nil {
			jsonError(w, err)
			return
		}

		orderID, err := uuid.Parse(r.PathValue("id"))
		if err != nil {
			jsonError(w, errs.NewValidationError("invalid order id"))
			return
		}

		resp, err := h.orderService.Get(r.Context(), orderID, uid)
		if err != nil {
			jsonError(w, err)
			return
		}
		jsonResponse(w, http.StatusOK, resp)
	}
}

func (h *OrderHandler) List() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, err := userID(r)
		if err != nil {
			jsonError(w, err)
			return
		}

		orders, err := h.orderService.ListUserOrders(r.Context(), uid)
		if err != nil {
			jsonError(w, err)
			return
		}
		jsonResponse(w, http.StatusOK, orders)
	}
}

func (h *OrderHandler) UpdateStatus() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, err := uuid.Parse(r.PathValue("id"))
		if err != nil {
			jsonError(w, errs.NewValidationError("invalid order id"))
			return
		}

		var req dto.UpdateOrderStatusRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			jsonError(w, errs.NewValidationError("failed to parse JSON body"))
			return
		}
		if req.Status == "" {
			jsonError(w, errs.NewValidationError("status is required"))
			return
		}

		order, err := h.orderService.Transition(r.Context(), orderID, req.Status)
		if err != nil {
			if !errors.Is(err, errs.ErrValidation) && !errors.Is(err, errs.ErrNotFound) {
				h.mylog.Action("transition_failed").Error("Failed to update order status", err)
			}
			jsonError(w, err)
			return
		}
		jsonResponse(w, http.StatusOK, order)
	}
}
