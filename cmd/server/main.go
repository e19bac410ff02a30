package main

import (
	"log"
	"net/http"
	"os"

	"binfleet-backend/internal/handlers"
	"binfleet-backend/internal/observability/metrics"
	"binfleet-backend/internal/registry"
	"binfleet-backend/internal/storage"
	"binfleet-backend/internal/websocket"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	log.Println("═══════════════════════════════════════════════════════════════════")
	log.Println("🚀 BINFLEET BACKEND SERVER STARTING")
	log.Println("═══════════════════════════════════════════════════════════════════")

	// Load .env file
	log.Println("📂 Loading environment variables...")
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  Warning: .env file not found, using environment variables from system")
	} else {
		log.Println("✅ .env file loaded successfully")
	}

	// Snapshot file location
	dataFile := os.Getenv("DATA_FILE")
	if dataFile == "" {
		dataFile = "bin_data.json"
		log.Printf("⚠️  DATA_FILE not set, using default: %s", dataFile)
	} else {
		log.Printf("✅ DATA_FILE found: %s", dataFile)
	}

	// Metrics
	metrics.Init()
	log.Println("✅ Metrics registered")

	// Registry, rehydrated from the snapshot file
	store := storage.NewSnapshotStore(dataFile)
	reg := registry.New(store)
	loaded := reg.Reload()
	log.Printf("✅ Registry ready (%d bins loaded from snapshot)", loaded)

	// WebSocket hub for live fleet updates
	wsHub := websocket.NewHub()
	go wsHub.Run()
	log.Println("✅ WebSocket hub started")

	// Create router
	r := chi.NewRouter()

	// Middleware
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)

	// CORS
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Info page and health check
	r.Get("/", handlers.Home())
	r.Get("/health", handlers.Health())

	// Prometheus metrics
	r.Handle("/metrics", promhttp.Handler())

	// Live fleet updates
	r.Get("/ws", websocket.HandleWebSocket(wsHub))

	// Bins endpoints
	r.Post("/bins", handlers.CreateBins(reg, wsHub))
	r.Get("/bins", handlers.GetBins(reg))
	r.Get("/bins/{id}", handlers.GetBin(reg))
	r.Put("/bins/{id}", handlers.UpdateBin(reg, wsHub))
	r.Delete("/bins/{id}", handlers.DeleteBin(reg, wsHub))
	r.Post("/bins/collect-sensor-data", handlers.CollectSensorData(reg, wsHub))

	// Analytics endpoints
	r.Get("/optimize-route", handlers.OptimizeRoute(reg))
	r.Get("/dashboard/stats", handlers.DashboardStats(reg))

	// Admin endpoints
	r.Post("/admin/load-data", handlers.LoadData(reg, wsHub))
	r.Post("/admin/save-data", handlers.SaveData(reg))

	// Get port
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
		log.Printf("⚠️  PORT not set, using default: %s", port)
	} else {
		log.Printf("✅ PORT found: %s", port)
	}

	log.Println("═══════════════════════════════════════════════════════════════════")
	log.Println("✅ ALL INITIALIZATION COMPLETE")
	log.Printf("🚀 Server starting on http://localhost:%s", port)
	log.Println("🔌 Ready to accept requests!")
	log.Println("═══════════════════════════════════════════════════════════════════")

	// Start server
	if err := http.ListenAndServe(":"+port, r); err != nil {
		log.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
		log.Println("❌ FATAL ERROR: Server failed to start")
		log.Printf("   Error: %v", err)
		log.Printf("   Port: %s", port)
		log.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
		log.Fatal(err)
	}
}
