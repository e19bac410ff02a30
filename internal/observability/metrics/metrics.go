package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	metricPrefix = "binfleet_"

	resultSuccess = "success"
	resultError   = "error"
)

var (
	registerOnce sync.Once

	registryMutations *prometheus.CounterVec

	snapshotSaves *prometheus.CounterVec
	snapshotLoads *prometheus.CounterVec

	fleetSize prometheus.Gauge

	wsClients prometheus.Gauge
)

// Init registers the service metrics. Safe to call more than once.
func Init() {
	registerOnce.Do(func() {
		registryMutations = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "registry_mutations_total",
				Help: "Total registry mutations by operation and result",
			},
			[]string{"op", "result"},
		)

		snapshotSaves = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "snapshot_saves_total",
				Help: "Total snapshot file writes by result",
			},
			[]string{"result"},
		)
		snapshotLoads = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "snapshot_loads_total",
				Help: "Total snapshot file reads by result",
			},
			[]string{"result"},
		)

		fleetSize = prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: metricPrefix + "fleet_size",
				Help: "Number of bins currently tracked",
			},
		)

		wsClients = prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: metricPrefix + "websocket_clients",
				Help: "Number of connected live-update clients",
			},
		)

		prometheus.MustRegister(
			registryMutations,
			snapshotSaves,
			snapshotLoads,
			fleetSize,
			wsClients,
		)
	})
}

// IncMutation counts one registry mutation.
func IncMutation(op, result string) {
	if result == "" {
		result = resultSuccess
	}
	if registryMutations != nil {
		registryMutations.WithLabelValues(op, result).Inc()
	}
}

// IncSnapshotSave counts one snapshot write.
func IncSnapshotSave(result string) {
	if snapshotSaves != nil {
		snapshotSaves.WithLabelValues(result).Inc()
	}
}

// IncSnapshotLoad counts one snapshot read.
func IncSnapshotLoad(result string) {
	if snapshotLoads != nil {
		snapshotLoads.WithLabelValues(result).Inc()
	}
}

// SetFleetSize records the current number of tracked bins.
func SetFleetSize(n int) {
	if fleetSize != nil {
		fleetSize.Set(float64(n))
	}
}

// AddWSClients adjusts the connected live-update client gauge.
func AddWSClients(delta int) {
	if wsClients != nil {
		wsClients.Add(float64(delta))
	}
}

// Exported result constants for callers.
const (
	ResultSuccess = resultSuccess
	ResultError   = resultError
)
