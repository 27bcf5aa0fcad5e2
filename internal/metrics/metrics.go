package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// SearchRequests counts trip searches by outcome ("ok" or an error code).
	SearchRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "trajet_search_requests_total",
		Help: "Number of trip searches, by outcome",
	}, []string{"outcome"})

	SearchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "trajet_search_duration_seconds",
		Help:    "Time spent answering a trip search",
		Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
	})

	RoutesFound = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "trajet_search_routes_found",
		Help:    "Number of candidate routes found per successful search, before ranking",
		Buckets: []float64{0, 1, 2, 5, 10, 20, 50, 100},
	})
)

var (
	NearbyRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "trajet_nearby_requests_total",
		Help: "Number of nearby stop lookups, by outcome",
	}, []string{"outcome"})

	TruncatedSearches = promauto.NewCounter(prometheus.CounterOpts{
		Name: "trajet_search_truncated_total",
		Help: "Number of searches whose transfer pass hit the combination cap",
	})
)

var (
	StoreRows = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "trajet_store_rows",
		Help: "Number of rows per table in the stop store",
	}, []string{"table"})
)

const OutcomeOK = "ok"

// ObserveSearch records one finished trip search.
func ObserveSearch(outcome string, elapsed time.Duration, found int, truncated bool) {
	SearchRequests.WithLabelValues(outcome).Inc()
	SearchDuration.Observe(elapsed.Seconds())
	if outcome == OutcomeOK {
		RoutesFound.Observe(float64(found))
	}
	if truncated {
		TruncatedSearches.Inc()
	}
}

func ObserveNearby(outcome string) {
	NearbyRequests.WithLabelValues(outcome).Inc()
}

// SetStoreRows publishes the row counts reported by the store.
func SetStoreRows(counts map[string]int) {
	for table, n := range counts {
		StoreRows.WithLabelValues(table).Set(float64(n))
	}
}
