package handlers

import (
	"fmt"
	"net/http"

	"binfleet-backend/internal/registry"
	"binfleet-backend/internal/websocket"
	"binfleet-backend/pkg/utils"
)

// LoadData handles POST /admin/load-data: replaces the registry with the
// snapshot file contents. A missing or corrupt snapshot resets the registry
// to empty rather than failing the request.
func LoadData(reg *registry.Registry, hub *websocket.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		count := reg.Reload()

		hub.Broadcast(websocket.EventDataLoaded, map[string]int{"totalBins": count})

		utils.Success(w, fmt.Sprintf("Successfully loaded %d bins from file", count), nil)
	}
}

// SaveData handles POST /admin/save-data: forces a snapshot write.
func SaveData(reg *registry.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		count := reg.Persist()

		utils.Success(w, fmt.Sprintf("Successfully saved %d bins to file", count), nil)
	}
}
