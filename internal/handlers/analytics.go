package handlers

import (
	"fmt"
	"net/http"

	"binfleet-backend/internal/models"
	"binfleet-backend/internal/registry"
	"binfleet-backend/internal/services"
	"binfleet-backend/pkg/utils"
)

// OptimizeRoute handles GET /optimize-route: the priority-ordered list of
// bins flagged for collection, fullest first.
func OptimizeRoute(reg *registry.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		route := services.ComputeCollectionRoute(reg.ListAll())

		data := models.RouteResponse{
			BinsToCollect: len(route),
			Route:         route,
		}

		if len(route) == 0 {
			utils.Success(w, "No bins need collection right now", data)
			return
		}

		utils.Success(w, fmt.Sprintf("Found %d bins needing collection", len(route)), data)
	}
}

// DashboardStats handles GET /dashboard/stats.
func DashboardStats(reg *registry.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		bins := reg.ListAll()
		stats := services.ComputeDashboardStats(bins)

		if len(bins) == 0 {
			utils.Success(w, "No bins available", stats)
			return
		}

		utils.Success(w, "Dashboard statistics retrieved successfully", stats)
	}
}
