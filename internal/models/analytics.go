package models

// RouteStop is one entry in a collection route, ordered by urgency.
type RouteStop struct {
	ID          int    `json:"id"`
	Location    string `json:"location"`
	FillLevel   int    `json:"fillLevel"`
	LastUpdated string `json:"lastUpdated"`
}

// RouteResponse is the payload for GET /optimize-route.
type RouteResponse struct {
	BinsToCollect int         `json:"binsToCollect"`
	Route         []RouteStop `json:"route"`
}

// FillLevelDistribution buckets the fleet by fill level. The ranges are
// half-open: low [0,25), medium [25,50), high [50,75), critical [75,100].
type FillLevelDistribution struct {
	Low      int `json:"low"`
	Medium   int `json:"medium"`
	High     int `json:"high"`
	Critical int `json:"critical"`
}

// DashboardStats is the payload for GET /dashboard/stats.
type DashboardStats struct {
	TotalBins             int                   `json:"totalBins"`
	BinsNeedingCollection int                   `json:"binsNeedingCollection"`
	AverageFillLevel      float64               `json:"averageFillLevel"`
	FillLevelDistribution FillLevelDistribution `json:"fillLevelDistribution"`
}
