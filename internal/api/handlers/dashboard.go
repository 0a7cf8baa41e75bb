package handlers

import (
	"net/http"

	"github.com/daeho/careops/internal/api/dto"
	"github.com/daeho/careops/internal/api/middleware"
	"github.com/daeho/careops/internal/rental"
)

type DashboardHandler struct {
	rental *rental.Service
}

func NewDashboardHandler(rentalService *rental.Service) *DashboardHandler {
	return &DashboardHandler{rental: rentalService}
}

// Stats handles GET /api/v1/dashboard/stats
func (h *DashboardHandler) Stats(w http.ResponseWriter, r *http.Request) {
	orgID := middleware.GetOrganizationID(r.Context())

	stats, err := h.rental.GetDashboardStats(r.Context(), orgID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to get stats"})
		return
	}

	writeJSON(w, http.StatusOK, stats)
}
