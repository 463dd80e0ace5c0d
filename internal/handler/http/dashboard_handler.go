package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/vasiliy-maslov/marketplace-service/internal/report"
)

type DashboardStatsResponse struct {
	Views     int     `json:"views"`
	NewOrders int     `json:"new_orders"`
	Revenue   float64 `json:"revenue"`
	Period    string  `json:"period"`
}

type PeriodStatsResponse struct {
	Orders  int     `json:"orders"`
	Revenue float64 `json:"revenue"`
}

type DashboardHandler struct {
	service report.Service
}

func NewDashboardHandler(service report.Service) *DashboardHandler {
	return &DashboardHandler{service: service}
}

func (h *DashboardHandler) RegisterRoutes(router chi.Router) {
	router.Get("/dashboard/stats", h.handleStats)
	router.Get("/dashboard/stats/period", h.handlePeriodStats)
}

func (h *DashboardHandler) handleStats(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	stats, err := h.service.DashboardStats(r.Context(), queryID(r, "user_id"), q.Get("role"), q.Get("period"))
	if err != nil {
		respondWithServiceError(w, r, err, "Failed to get dashboard stats")
		return
	}

	respondWithJSON(w, http.StatusOK, DashboardStatsResponse{
		Views:     stats.Views,
		NewOrders: stats.NewOrders,
		Revenue:   money(stats.Revenue),
		Period:    string(stats.Period),
	})
}

func (h *DashboardHandler) handlePeriodStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.BuyerPeriodStats(r.Context(), queryID(r, "user_id"), r.URL.Query().Get("period"))
	if err != nil {
		respondWithServiceError(w, r, err, "Failed to get period stats")
		return
	}

	respondWithJSON(w, http.StatusOK, PeriodStatsResponse{Orders: stats.Orders, Revenue: money(stats.Revenue)})
}
