package models

import "time"

// CollectionThreshold is the fill level at which a sensor sweep flags a bin
// for collection.
const CollectionThreshold = 75

// TimestampLayout is the wire and snapshot format for bin timestamps:
// ISO-8601 UTC with millisecond precision and a literal Z suffix.
const TimestampLayout = "2006-01-02T15:04:05.000Z"

// NowUTC returns the current time formatted as a bin timestamp.
func NowUTC() string {
	return time.Now().UTC().Format(TimestampLayout)
}

// Bin is a tracked waste-collection unit. IDs are assigned by the registry
// and never reused; fill level is a percentage in [0,100].
type Bin struct {
	ID              int    `json:"id"`
	Location        string `json:"location"`
	FillLevel       int    `json:"fillLevel"`
	NeedsCollection bool   `json:"needsCollection"`
	LastUpdated     string `json:"lastUpdated"`
}

// BinUpdate is a partial update to a bin. Nil fields are left unchanged.
type BinUpdate struct {
	Location        *string
	FillLevel       *int
	NeedsCollection *bool
}

// ParseBinUpdate extracts the updatable bin fields from a decoded JSON
// object. Fields that are missing or carry the wrong JSON type are simply
// skipped, never rejected (permissive PATCH semantics).
func ParseBinUpdate(data map[string]interface{}) BinUpdate {
	var update BinUpdate

	if loc, ok := data["location"].(string); ok {
		update.Location = &loc
	}
	if fill, ok := data["fillLevel"].(float64); ok {
		level := int(fill)
		update.FillLevel = &level
	}
	if needs, ok := data["needsCollection"].(bool); ok {
		update.NeedsCollection = &needs
	}

	return update
}

// ClampFillLevel forces a fill level into the valid [0,100] range.
func ClampFillLevel(level int) int {
	if level < 0 {
		return 0
	}
	if level > 100 {
		return 100
	}
	return level
}
