package handlers

import (
	"encoding/json"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"binfleet-backend/internal/models"
	"binfleet-backend/internal/registry"
	"binfleet-backend/internal/storage"
	"binfleet-backend/internal/websocket"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// envelope mirrors the API response wrapper for assertions.
type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// newTestAPI wires the full router against a temp-file snapshot and a
// seeded random source.
func newTestAPI(t *testing.T) (*chi.Mux, *registry.Registry) {
	t.Helper()
	router, reg, _ := newTestAPIWithFile(t)
	return router, reg
}

func newTestAPIWithFile(t *testing.T) (*chi.Mux, *registry.Registry, string) {
	t.Helper()

	dataFile := filepath.Join(t.TempDir(), "bin_data.json")
	store := storage.NewSnapshotStore(dataFile)
	reg := registry.New(store, registry.WithRand(rand.New(rand.NewSource(1))))

	hub := websocket.NewHub()
	go hub.Run()

	r := chi.NewRouter()
	r.Get("/", Home())
	r.Get("/health", Health())
	r.Post("/bins", CreateBins(reg, hub))
	r.Get("/bins", GetBins(reg))
	r.Get("/bins/{id}", GetBin(reg))
	r.Put("/bins/{id}", UpdateBin(reg, hub))
	r.Delete("/bins/{id}", DeleteBin(reg, hub))
	r.Post("/bins/collect-sensor-data", CollectSensorData(reg, hub))
	r.Get("/optimize-route", OptimizeRoute(reg))
	r.Get("/dashboard/stats", DashboardStats(reg))
	r.Post("/admin/load-data", LoadData(reg, hub))
	r.Post("/admin/save-data", SaveData(reg))

	return r, reg, dataFile
}

func doRequest(t *testing.T, router http.Handler, method, path, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var env envelope
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		_ = json.Unmarshal(rec.Body.Bytes(), &env)
	}
	return rec, env
}

func TestCreateSingleBin(t *testing.T) {
	router, _ := newTestAPI(t)

	rec, env := doRequest(t, router, http.MethodPost, "/bins", `{"location":"Main St"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.True(t, env.Success)
	assert.Equal(t, "1 bins added successfully", env.Message)

	var created []models.Bin
	require.NoError(t, json.Unmarshal(env.Data, &created))
	require.Len(t, created, 1)
	assert.Equal(t, 1, created[0].ID)
	assert.Equal(t, "Main St", created[0].Location)
}

func TestCreateBinBatch(t *testing.T) {
	router, _ := newTestAPI(t)

	rec, env := doRequest(t, router, http.MethodPost, "/bins",
		`[{"location":"A"},{"location":"B"},{"location":"C"}]`)
	require.Equal(t, http.StatusCreated, rec.Code)

	var created []models.Bin
	require.NoError(t, json.Unmarshal(env.Data, &created))
	require.Len(t, created, 3)
	assert.Equal(t, 3, created[2].ID)
}

func TestCreateBinBatchAtomicRejection(t *testing.T) {
	router, reg := newTestAPI(t)

	rec, env := doRequest(t, router, http.MethodPost, "/bins",
		`[{"location":"A"},{"location":42}]`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.False(t, env.Success)
	assert.Equal(t, "Each bin must have a location string", env.Message)
	assert.Equal(t, 0, reg.Count(), "no partial bins from a failed batch")
}

func TestCreateBinMalformedBody(t *testing.T) {
	router, _ := newTestAPI(t)

	rec, env := doRequest(t, router, http.MethodPost, "/bins", `{"location":`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.False(t, env.Success)
}

func TestGetBinsEmpty(t *testing.T) {
	router, _ := newTestAPI(t)

	rec, env := doRequest(t, router, http.MethodGet, "/bins", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, env.Success)
	assert.Equal(t, "No bins available", env.Message)
	assert.Equal(t, "[]", strings.TrimSpace(string(env.Data)))
}

func TestGetBinByID(t *testing.T) {
	router, _ := newTestAPI(t)
	doRequest(t, router, http.MethodPost, "/bins", `{"location":"Main St"}`)

	rec, env := doRequest(t, router, http.MethodGet, "/bins/1", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var bin models.Bin
	require.NoError(t, json.Unmarshal(env.Data, &bin))
	assert.Equal(t, "Main St", bin.Location)

	rec, env = doRequest(t, router, http.MethodGet, "/bins/99", "")
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.False(t, env.Success)
	assert.Equal(t, "Bin with ID 99 not found", env.Message)
}

func TestUpdateBin(t *testing.T) {
	router, _ := newTestAPI(t)
	doRequest(t, router, http.MethodPost, "/bins", `{"location":"Main St"}`)

	rec, env := doRequest(t, router, http.MethodPut, "/bins/1",
		`{"fillLevel":150,"needsCollection":true}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var bin models.Bin
	require.NoError(t, json.Unmarshal(env.Data, &bin))
	assert.Equal(t, 100, bin.FillLevel, "fill level is clamped to 100")
	assert.True(t, bin.NeedsCollection)
	assert.Equal(t, "Main St", bin.Location)
}

func TestUpdateBinIgnoresUnknownAndMistypedFields(t *testing.T) {
	router, _ := newTestAPI(t)
	doRequest(t, router, http.MethodPost, "/bins", `{"location":"Main St"}`)

	rec, env := doRequest(t, router, http.MethodPut, "/bins/1",
		`{"fillLevel":"not a number","color":"green","location":"Oak Ave"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var bin models.Bin
	require.NoError(t, json.Unmarshal(env.Data, &bin))
	assert.Equal(t, "Oak Ave", bin.Location)
	assert.Equal(t, 0, bin.FillLevel, "mistyped fields are skipped, not applied")
}

func TestUpdateBinErrors(t *testing.T) {
	router, _ := newTestAPI(t)

	rec, _ := doRequest(t, router, http.MethodPut, "/bins/1", `{"fillLevel":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, env := doRequest(t, router, http.MethodPut, "/bins/1", `{"fillLevel":10}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.False(t, env.Success)
}

func TestDeleteBin(t *testing.T) {
	router, reg := newTestAPI(t)
	doRequest(t, router, http.MethodPost, "/bins", `[{"location":"A"},{"location":"B"}]`)

	rec, env := doRequest(t, router, http.MethodDelete, "/bins/1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, env.Success)
	assert.Equal(t, 1, reg.Count())

	rec, _ = doRequest(t, router, http.MethodDelete, "/bins/1", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCollectSensorData(t *testing.T) {
	router, _ := newTestAPI(t)

	rec, env := doRequest(t, router, http.MethodPost, "/bins/collect-sensor-data", "")
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "No bins available", env.Message)

	doRequest(t, router, http.MethodPost, "/bins", `[{"location":"A"},{"location":"B"},{"location":"C"}]`)

	rec, env = doRequest(t, router, http.MethodPost, "/bins/collect-sensor-data", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var bins []models.Bin
	require.NoError(t, json.Unmarshal(env.Data, &bins))
	require.Len(t, bins, 3)
	for _, b := range bins {
		assert.GreaterOrEqual(t, b.FillLevel, 0)
		assert.LessOrEqual(t, b.FillLevel, 100)
		assert.Equal(t, b.FillLevel >= models.CollectionThreshold, b.NeedsCollection)
	}
}

func TestOptimizeRoute(t *testing.T) {
	router, reg := newTestAPI(t)

	rec, env := doRequest(t, router, http.MethodGet, "/optimize-route", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var route models.RouteResponse
	require.NoError(t, json.Unmarshal(env.Data, &route))
	assert.Equal(t, 0, route.BinsToCollect)
	assert.Empty(t, route.Route)

	doRequest(t, router, http.MethodPost, "/bins", `[{"location":"A"},{"location":"B"},{"location":"C"}]`)
	for id, fill := range map[int]int{1: 80, 2: 95, 3: 30} {
		needs := fill >= models.CollectionThreshold
		_, err := reg.Update(id, models.BinUpdate{FillLevel: &fill, NeedsCollection: &needs})
		require.NoError(t, err)
	}

	rec, env = doRequest(t, router, http.MethodGet, "/optimize-route", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(env.Data, &route))
	require.Equal(t, 2, route.BinsToCollect)
	assert.Equal(t, 2, route.Route[0].ID, "fullest bin first")
	assert.Equal(t, 1, route.Route[1].ID)
}

func TestDashboardStats(t *testing.T) {
	router, reg := newTestAPI(t)

	rec, env := doRequest(t, router, http.MethodGet, "/dashboard/stats", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var stats models.DashboardStats
	require.NoError(t, json.Unmarshal(env.Data, &stats))
	assert.Equal(t, 0, stats.TotalBins)
	assert.Equal(t, 0.0, stats.AverageFillLevel)

	doRequest(t, router, http.MethodPost, "/bins", `[{"location":"A"},{"location":"B"}]`)
	for id, fill := range map[int]int{1: 10, 2: 80} {
		needs := fill >= models.CollectionThreshold
		_, err := reg.Update(id, models.BinUpdate{FillLevel: &fill, NeedsCollection: &needs})
		require.NoError(t, err)
	}

	rec, env = doRequest(t, router, http.MethodGet, "/dashboard/stats", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(env.Data, &stats))
	assert.Equal(t, 2, stats.TotalBins)
	assert.Equal(t, 1, stats.BinsNeedingCollection)
	assert.Equal(t, 45.0, stats.AverageFillLevel)
	assert.Equal(t, 1, stats.FillLevelDistribution.Low)
	assert.Equal(t, 1, stats.FillLevelDistribution.Critical)
}

func TestAdminSaveAndLoad(t *testing.T) {
	router, reg, dataFile := newTestAPIWithFile(t)
	doRequest(t, router, http.MethodPost, "/bins", `[{"location":"A"},{"location":"B"}]`)

	rec, env := doRequest(t, router, http.MethodPost, "/admin/save-data", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Successfully saved 2 bins to file", env.Message)

	// Replace the snapshot out of band, then pull it into the registry
	external := `[{"id":7,"location":"Depot","fillLevel":90,"needsCollection":true,"lastUpdated":"2026-01-02T03:04:05.006Z"}]`
	require.NoError(t, os.WriteFile(dataFile, []byte(external), 0644))

	rec, env = doRequest(t, router, http.MethodPost, "/admin/load-data", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, env.Success)
	assert.Equal(t, "Successfully loaded 1 bins from file", env.Message)
	require.Equal(t, 1, reg.Count())

	// The id counter continues past the loaded maximum
	bin, err := reg.Create("C")
	require.NoError(t, err)
	assert.Equal(t, 8, bin.ID)
}

func TestHealth(t *testing.T) {
	router, _ := newTestAPI(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var health map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &health))
	assert.Equal(t, "ok", health["status"])
	assert.Equal(t, Version, health["version"])
	assert.NotEmpty(t, health["timestamp"])
}

func TestHomePage(t *testing.T) {
	router, _ := newTestAPI(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rec.Body.String(), "Smart Waste Management")
}
