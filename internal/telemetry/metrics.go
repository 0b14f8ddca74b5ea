package telemetry

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Label values shared by the counters below
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

var (
	// FactFetches counts single fact requests by outcome
	FactFetches = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "factmap",
			Name:      "fact_fetches_total",
			Help:      "Total number of single fact requests to the facts API",
		},
		[]string{"outcome"},
	)

	// FetchSequences counts completed fetch sequences
	FetchSequences = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "factmap",
			Name:      "fetch_sequences_total",
			Help:      "Total number of fetch sequences by trigger and outcome",
		},
		[]string{"trigger", "outcome"},
	)

	// FactsPerSequence tracks how many of the attempted facts arrived
	FactsPerSequence = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "factmap",
			Name:      "facts_per_sequence",
			Help:      "Number of facts successfully fetched per sequence",
			Buckets:   prometheus.LinearBuckets(0, 1, 11),
		},
	)

	// LocationLookups counts last known location queries
	LocationLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "factmap",
			Name:      "location_lookups_total",
			Help:      "Total number of last known location lookups by result",
		},
		[]string{"result"},
	)

	// WebSocketClients is the number of connected push clients
	WebSocketClients = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "factmap",
			Name:      "websocket_clients",
			Help:      "Number of connected WebSocket clients",
		},
	)

	// Ensure metrics are only registered once
	once sync.Once
)

// InitMetrics registers all metrics with the global Prometheus registry
// This function is idempotent and can be called multiple times safely
func InitMetrics() {
	once.Do(func() {
		prometheus.DefaultRegisterer.Register(FactFetches)
		prometheus.DefaultRegisterer.Register(FetchSequences)
		prometheus.DefaultRegisterer.Register(FactsPerSequence)
		prometheus.DefaultRegisterer.Register(LocationLookups)
		prometheus.DefaultRegisterer.Register(WebSocketClients)
	})
}
