package registry

import (
	"errors"
	"fmt"
	"log"
	"math/rand"
	"strings"
	"sync"
	"time"

	"binfleet-backend/internal/models"
	"binfleet-backend/internal/observability/metrics"
	"binfleet-backend/internal/storage"
)

var (
	// ErrNotFound indicates no bin carries the referenced ID.
	ErrNotFound = errors.New("bin not found")

	// ErrEmptyRegistry indicates an operation that requires at least one bin.
	ErrEmptyRegistry = errors.New("no bins available")
)

// ValidationError reports malformed or missing input.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Registry is the authoritative in-memory set of bins plus the id-issuance
// counter. Every operation runs under one exclusive lock, including the
// snapshot write that follows a mutation, so callers never observe a
// half-applied change and two mutations never interleave their file writes.
type Registry struct {
	mu     sync.Mutex
	bins   []models.Bin
	nextID int

	store *storage.SnapshotStore
	rng   *rand.Rand
	now   func() string
}

// Option configures a Registry.
type Option func(*Registry)

// WithRand injects the random source used by sensor sweeps. Tests pass a
// seeded source to get deterministic readings.
func WithRand(rng *rand.Rand) Option {
	return func(r *Registry) {
		r.rng = rng
	}
}

// WithClock injects the timestamp source.
func WithClock(now func() string) Option {
	return func(r *Registry) {
		r.now = now
	}
}

// New creates an empty registry backed by the given snapshot store.
// A nil store disables persistence (used by tests).
func New(store *storage.SnapshotStore, opts ...Option) *Registry {
	r := &Registry{
		bins:   []models.Bin{},
		nextID: 1,
		store:  store,
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
		now:    models.NowUTC,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Create allocates the next id and appends a new empty bin at the given
// location.
func (r *Registry) Create(location string) (models.Bin, error) {
	bins, err := r.CreateMany([]string{location})
	if err != nil {
		return models.Bin{}, err
	}
	return bins[0], nil
}

// CreateMany creates one bin per location, in order. The batch is atomic:
// every location is validated before any bin is committed, so a failing item
// never consumes an id.
func (r *Registry) CreateMany(locations []string) ([]models.Bin, error) {
	for _, location := range locations {
		if strings.TrimSpace(location) == "" {
			metrics.IncMutation("create", metrics.ResultError)
			return nil, &ValidationError{Message: "Each bin must have a location string"}
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	created := make([]models.Bin, 0, len(locations))
	for _, location := range locations {
		bin := models.Bin{
			ID:              r.nextID,
			Location:        location,
			FillLevel:       0,
			NeedsCollection: false,
			LastUpdated:     r.now(),
		}
		r.nextID++
		r.bins = append(r.bins, bin)
		created = append(created, bin)
	}

	r.persistLocked()
	metrics.IncMutation("create", metrics.ResultSuccess)
	metrics.SetFleetSize(len(r.bins))

	return created, nil
}

// ListAll returns a snapshot copy of all bins in insertion order.
func (r *Registry) ListAll() []models.Bin {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snapshotLocked()
}

// GetByID returns the bin with the given id.
func (r *Registry) GetByID(id int) (models.Bin, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, bin := range r.bins {
		if bin.ID == id {
			return bin, nil
		}
	}
	return models.Bin{}, ErrNotFound
}

// Update applies the non-nil fields of the partial update to the bin with
// the given id. The fill level is clamped to [0,100] and lastUpdated is
// always refreshed, even when no field changes.
func (r *Registry) Update(id int, update models.BinUpdate) (models.Bin, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.bins {
		if r.bins[i].ID != id {
			continue
		}

		if update.Location != nil {
			r.bins[i].Location = *update.Location
		}
		if update.FillLevel != nil {
			r.bins[i].FillLevel = models.ClampFillLevel(*update.FillLevel)
		}
		if update.NeedsCollection != nil {
			r.bins[i].NeedsCollection = *update.NeedsCollection
		}
		r.bins[i].LastUpdated = r.now()

		r.persistLocked()
		metrics.IncMutation("update", metrics.ResultSuccess)

		return r.bins[i], nil
	}

	metrics.IncMutation("update", metrics.ResultError)
	return models.Bin{}, ErrNotFound
}

// DeleteByID removes the bin if present and reports whether it existed.
// The freed id is never reassigned.
func (r *Registry) DeleteByID(id int) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.bins {
		if r.bins[i].ID == id {
			r.bins = append(r.bins[:i], r.bins[i+1:]...)
			r.persistLocked()
			metrics.IncMutation("delete", metrics.ResultSuccess)
			metrics.SetFleetSize(len(r.bins))
			return true
		}
	}

	metrics.IncMutation("delete", metrics.ResultError)
	return false
}

// CollectSensorData simulates one reading per bin: a uniform random fill
// level in [0,100], the needs-collection flag derived from the collection
// threshold, and a fresh timestamp. Returns the full updated snapshot.
func (r *Registry) CollectSensorData() ([]models.Bin, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.bins) == 0 {
		metrics.IncMutation("collect_sensor_data", metrics.ResultError)
		return nil, ErrEmptyRegistry
	}

	for i := range r.bins {
		level := r.rng.Intn(101)
		r.bins[i].FillLevel = level
		r.bins[i].NeedsCollection = level >= models.CollectionThreshold
		r.bins[i].LastUpdated = r.now()
	}

	r.persistLocked()
	metrics.IncMutation("collect_sensor_data", metrics.ResultSuccess)

	return r.snapshotLocked(), nil
}

// Count returns the number of tracked bins.
func (r *Registry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.bins)
}

// Reload replaces the in-memory state with the snapshot file contents and
// resets the id counter to one past the highest loaded id. A missing file
// yields an empty registry; a corrupt file is logged and also resets the
// registry to empty rather than failing. Returns the number of bins loaded.
func (r *Registry) Reload() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.store == nil {
		return len(r.bins)
	}

	bins, err := r.store.Load()
	if err != nil {
		log.Printf("❌ [REGISTRY] Failed to load snapshot: %v (resetting to empty)", err)
		metrics.IncSnapshotLoad(metrics.ResultError)
		r.bins = []models.Bin{}
		r.nextID = 1
		metrics.SetFleetSize(0)
		return 0
	}

	r.bins = bins
	r.nextID = 1
	for _, bin := range bins {
		if bin.ID >= r.nextID {
			r.nextID = bin.ID + 1
		}
	}

	metrics.IncSnapshotLoad(metrics.ResultSuccess)
	metrics.SetFleetSize(len(r.bins))
	log.Printf("✅ [REGISTRY] Loaded %d bins from %s (next id: %d)", len(r.bins), r.store.Path(), r.nextID)

	return len(r.bins)
}

// Persist forces a snapshot write of the current state and returns the
// number of bins written.
func (r *Registry) Persist() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.persistLocked()
	return len(r.bins)
}

// persistLocked writes the snapshot while the registry lock is held. A
// failed write is logged and swallowed: the in-memory state remains the
// source of truth and the calling mutation still succeeds.
func (r *Registry) persistLocked() {
	if r.store == nil {
		return
	}

	if err := r.store.Save(r.snapshotLocked()); err != nil {
		log.Printf("⚠️  [REGISTRY] Snapshot write failed: %v (in-memory state unaffected)", err)
		metrics.IncSnapshotSave(metrics.ResultError)
		return
	}
	metrics.IncSnapshotSave(metrics.ResultSuccess)
}

func (r *Registry) snapshotLocked() []models.Bin {
	snapshot := make([]models.Bin, len(r.bins))
	copy(snapshot, r.bins)
	return snapshot
}

// FormatBinLabel is a small helper for log lines about a single bin.
func FormatBinLabel(bin models.Bin) string {
	return fmt.Sprintf("bin %d (%s, %d%% full)", bin.ID, bin.Location, bin.FillLevel)
}
