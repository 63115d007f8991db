package handle

import (
	"net/http"
	"strconv"

	"dineflow/internal/analytics/app/services"
	"dineflow/internal/xpkg/errs"
	"dineflow/internal/xpkg/logger"

	"github.com/google/uuid"
)

type AnalyticsHandler struct {
	projector *services.Projector
	mylog     logger.Logger
}

func NewAnalyticsHandler(projector *services.Projector, mylog logger.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{
		projector: projector,
		mylog:     mylog,
	}
}

// limitParam parses the optional ?limit= query value; 0 means "use default".
func limitParam(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return 0, nil
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 0 {
		return 0, errs.NewValidationError("invalid limit %q", raw)
	}
	return limit, nil
}

func (h *AnalyticsHandler) TopFoods() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, err := limitParam(r)
		if err != nil {
			jsonError(w, err)
			return
		}

		foods, err := h.projector.TopFoods(r.Context(), limit)
		if err != nil {
			jsonError(w, err)
			return
		}
		jsonResponse(w, http.StatusOK, foods)
	}
}

func (h *AnalyticsHandler) RestaurantTopFoods() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		restaurantID, err := uuid.Parse(r.PathValue("id"))
		if err != nil {
			jsonError(w, errs.NewValidationError("invalid restaurant id"))
			return
		}
		limit, err := limitParam(r)
		if err != nil {
			jsonError(w, err)
			return
		}

		foods, err := h.projector.RestaurantTopFoods(r.Context(), restaurantID, limit)
		if err != nil {
			jsonError(w, err)
			return
		}
		jsonResponse(w, http.StatusOK, foods)
	}
}

func (h *AnalyticsHandler) Revenue() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		summary, err := h.projector.RevenueSummary(r.Context())
		if err != nil {
			jsonError(w, err)
			return
		}
		jsonResponse(w, http.StatusOK, summary)
	}
}

func (h *AnalyticsHandler) OrdersByStatus() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		counts, err := h.projector.OrdersByStatus(r.Context())
		if err != nil {
			jsonError(w, err)
			return
		}
		jsonResponse(w, http.StatusOK, counts)
	}
}
