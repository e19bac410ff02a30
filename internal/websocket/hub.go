package websocket

import (
	"encoding/json"
	"log"
	"sync"

	"binfleet-backend/internal/models"
	"binfleet-backend/internal/observability/metrics"
)

// Event is a fleet update pushed to every connected client.
type Event struct {
	Type      string      `json:"type"`
	Timestamp string      `json:"timestamp"`
	Data      interface{} `json:"data,omitempty"`
}

// Event types broadcast after successful registry mutations.
const (
	EventBinsCreated = "bins_created"
	EventBinUpdated  = "bin_updated"
	EventBinDeleted  = "bin_deleted"
	EventSensorSweep = "sensor_sweep"
	EventDataLoaded  = "data_loaded"
)

// Hub maintains the active WebSocket connections and fans fleet events out
// to all of them. Connections are anonymous dashboard watchers, keyed by a
// per-connection id.
type Hub struct {
	clients map[string]*Client

	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client

	mu sync.RWMutex
}

// NewHub creates a hub with no connected clients.
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string]*Client),
		broadcast:  make(chan []byte, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

// Run starts the hub's main loop.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.ID] = client
			h.mu.Unlock()
			metrics.AddWSClients(1)
			log.Printf("✅ [WEBSOCKET] Client connected (id: %s, total: %d)", client.ID, h.ClientCount())

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client.ID]; ok {
				delete(h.clients, client.ID)
				close(client.send)
				metrics.AddWSClients(-1)
				log.Printf("🔴 [WEBSOCKET] Client disconnected (id: %s, remaining: %d)", client.ID, len(h.clients))
			}
			h.mu.Unlock()

		case message := <-h.broadcast:
			h.mu.Lock()
			for id, client := range h.clients {
				select {
				case client.send <- message:
				default:
					// Client buffer full, disconnect
					close(client.send)
					delete(h.clients, id)
					metrics.AddWSClients(-1)
					log.Printf("⚠️  [WEBSOCKET] Client buffer full, disconnecting: %s", id)
				}
			}
			h.mu.Unlock()
		}
	}
}

// Broadcast queues a fleet event for every connected client.
func (h *Hub) Broadcast(eventType string, data interface{}) {
	event := Event{
		Type:      eventType,
		Timestamp: models.NowUTC(),
		Data:      data,
	}

	payload, err := json.Marshal(event)
	if err != nil {
		log.Printf("❌ [WEBSOCKET] Failed to marshal %s event: %v", eventType, err)
		return
	}

	select {
	case h.broadcast <- payload:
	default:
		log.Printf("⚠️  [WEBSOCKET] Broadcast queue full, dropping %s event", eventType)
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
