package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"

	"binfleet-backend/internal/models"
	"binfleet-backend/internal/registry"
	"binfleet-backend/internal/websocket"
	"binfleet-backend/pkg/utils"

	"github.com/go-chi/chi/v5"
)

// CreateBins handles POST /bins. The body is either a single {location}
// object or an array of them; the batch is atomic, so one bad item rejects
// the whole request without consuming any ids.
func CreateBins(reg *registry.Registry, hub *websocket.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body interface{}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			utils.Error(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		// Single bin case: wrap into a one-element batch
		items, ok := body.([]interface{})
		if !ok {
			items = []interface{}{body}
		}

		locations := make([]string, 0, len(items))
		for _, item := range items {
			binData, ok := item.(map[string]interface{})
			if !ok {
				utils.Error(w, http.StatusBadRequest, "Each bin must have a location string")
				return
			}
			location, ok := binData["location"].(string)
			if !ok {
				utils.Error(w, http.StatusBadRequest, "Each bin must have a location string")
				return
			}
			locations = append(locations, location)
		}

		created, err := reg.CreateMany(locations)
		if err != nil {
			var verr *registry.ValidationError
			if errors.As(err, &verr) {
				utils.Error(w, http.StatusBadRequest, verr.Message)
				return
			}
			utils.Error(w, http.StatusBadRequest, err.Error())
			return
		}

		for _, bin := range created {
			log.Printf("✅ [BINS] Created %s", registry.FormatBinLabel(bin))
		}
		hub.Broadcast(websocket.EventBinsCreated, created)

		utils.Respond(w, http.StatusCreated,
			fmt.Sprintf("%d bins added successfully", len(created)), created)
	}
}

// GetBins handles GET /bins.
func GetBins(reg *registry.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		bins := reg.ListAll()
		if len(bins) == 0 {
			utils.Success(w, "No bins available", bins)
			return
		}
		utils.Success(w, fmt.Sprintf("Retrieved %d bins", len(bins)), bins)
	}
}

// GetBin handles GET /bins/{id}.
func GetBin(reg *registry.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := binID(w, r)
		if !ok {
			return
		}

		bin, err := reg.GetByID(id)
		if err != nil {
			utils.Error(w, http.StatusNotFound, fmt.Sprintf("Bin with ID %d not found", id))
			return
		}

		utils.Success(w, fmt.Sprintf("Retrieved bin with ID %d", id), bin)
	}
}

// UpdateBin handles PUT /bins/{id}. Only the fields present in the body are
// applied; unknown or mistyped fields are ignored.
func UpdateBin(reg *registry.Registry, hub *websocket.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := binID(w, r)
		if !ok {
			return
		}

		var body map[string]interface{}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			utils.Error(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		bin, err := reg.Update(id, models.ParseBinUpdate(body))
		if err != nil {
			utils.Error(w, http.StatusNotFound, fmt.Sprintf("Bin with ID %d not found", id))
			return
		}

		hub.Broadcast(websocket.EventBinUpdated, bin)

		utils.Success(w, fmt.Sprintf("Bin with ID %d updated successfully", id), bin)
	}
}

// DeleteBin handles DELETE /bins/{id}.
func DeleteBin(reg *registry.Registry, hub *websocket.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := binID(w, r)
		if !ok {
			return
		}

		if !reg.DeleteByID(id) {
			utils.Error(w, http.StatusNotFound, fmt.Sprintf("Bin with ID %d not found", id))
			return
		}

		log.Printf("✅ [BINS] Deleted bin %d", id)
		hub.Broadcast(websocket.EventBinDeleted, map[string]int{"id": id})

		utils.Success(w, fmt.Sprintf("Bin with ID %d deleted successfully", id), nil)
	}
}

// CollectSensorData handles POST /bins/collect-sensor-data: one simulated
// reading for every tracked bin.
func CollectSensorData(reg *registry.Registry, hub *websocket.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		bins, err := reg.CollectSensorData()
		if err != nil {
			utils.Error(w, http.StatusNotFound, "No bins available")
			return
		}

		log.Printf("✅ [SENSORS] Collected readings for %d bins", len(bins))
		hub.Broadcast(websocket.EventSensorSweep, bins)

		utils.Success(w, "Sensor data collected and updated", bins)
	}
}

// binID parses the {id} path parameter, writing a 400 envelope on failure.
func binID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		utils.Error(w, http.StatusBadRequest, "Bin ID must be an integer")
		return 0, false
	}
	return id, true
}
