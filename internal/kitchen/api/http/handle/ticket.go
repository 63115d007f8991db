package handle

import (
	"encoding/json"
	"errors"
	"net/http"

	"dineflow/internal/kitchen/app/services"
	"dineflow/internal/kitchen/domain/dto"
	"dineflow/internal/xpkg/errs"
	"dineflow/internal/xpkg/logger"

	"github.com/google/uuid"
)

type TicketHandler struct {
	kitchenService *services.KitchenService
	mylog          logger.Logger
}

func NewTicketHandler(kitchenService *services.KitchenService, mylog logger.Logger) *TicketHandler {
	return &TicketHandler{
		kitchenService: kitchenService,
		mylog:          mylog,
	}
}

func (h *TicketHandler) List() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tickets, err := h.kitchenService.List(r.Context(), r.URL.Query().Get("status"))
		if err != nil {
			jsonError(w, err)
			return
		}
		jsonResponse(w, http.StatusOK, tickets)
	}
}

func (h *TicketHandler) Get() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ticketID, err := uuid.Parse(r.PathValue("id"))
		if err != nil {
			jsonError(w, errs.NewValidationError("invalid ticket id"))
			return
		}

		ticket, err := h.kitchenService.Get(r.Context(), ticketID)
		if err != nil {
			jsonError(w, err)
			return
		}
		jsonResponse(w, http.StatusOK, ticket)
	}
}

func (h *TicketHandler) UpdateStatus() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ticketID, err := uuid.Parse(r.PathValue("id"))
		if err != nil {
			jsonError(w, errs.NewValidationError("invalid ticket id"))
			return
		}

		var req dto.UpdateTicketStatusRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			jsonError(w, errs.NewValidationError("failed to parse JSON body"))
			return
		}
		if req.Status == "" {
			jsonError(w, errs.NewValidationError("status is required"))
			return
		}

		ticket, err := h.kitchenService.Advance(r.Context(), ticketID, req.Status)
		if err != nil {
			if !errors.Is(err, errs.ErrValidation) && !errors.Is(err, errs.ErrNotFound) {
				h.mylog.Action("advance_failed").Error("Failed to advance ticket", err)
			}
			jsonError(w, err)
			return
		}
		jsonResponse(w, http.StatusOK, ticket)
	}
}
