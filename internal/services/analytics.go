package services

import (
	"math"
	"sort"

	"binfleet-backend/internal/models"
)

// ComputeCollectionRoute builds the priority-ordered collection route from a
// point-in-time snapshot: bins flagged for collection, fullest first. The
// sort is stable so equal fill levels keep their insertion order across
// calls. An empty route is a normal result, not an error.
func ComputeCollectionRoute(bins []models.Bin) []models.RouteStop {
	route := make([]models.RouteStop, 0)
	for _, bin := range bins {
		if bin.NeedsCollection {
			route = append(route, models.RouteStop{
				ID:          bin.ID,
				Location:    bin.Location,
				FillLevel:   bin.FillLevel,
				LastUpdated: bin.LastUpdated,
			})
		}
	}

	sort.SliceStable(route, func(i, j int) bool {
		return route[i].FillLevel > route[j].FillLevel
	})

	return route
}

// ComputeDashboardStats aggregates fleet statistics from a snapshot. An
// empty fleet yields the documented zero-state rather than an error.
func ComputeDashboardStats(bins []models.Bin) models.DashboardStats {
	stats := models.DashboardStats{}
	if len(bins) == 0 {
		return stats
	}

	totalFill := 0
	for _, bin := range bins {
		totalFill += bin.FillLevel
		if bin.NeedsCollection {
			stats.BinsNeedingCollection++
		}

		switch {
		case bin.FillLevel < 25:
			stats.FillLevelDistribution.Low++
		case bin.FillLevel < 50:
			stats.FillLevelDistribution.Medium++
		case bin.FillLevel < 75:
			stats.FillLevelDistribution.High++
		default:
			stats.FillLevelDistribution.Critical++
		}
	}

	stats.TotalBins = len(bins)
	stats.AverageFillLevel = roundToOneDecimal(float64(totalFill) / float64(len(bins)))

	return stats
}

// roundToOneDecimal rounds half away from zero, matching math.Round.
func roundToOneDecimal(v float64) float64 {
	return math.Round(v*10) / 10
}
