package store

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// operationsTotal counts Save/Load calls against a PebbleStore, labeled by
// backend ("pebble"), op ("save", "load") and outcome ("ok", "error").
// RedisStore does not record operations here.
var operationsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "mqtt311",
		Subsystem: "store",
		Name:      "operations_total",
		Help:      "Number of store operations, labeled by backend, op and outcome.",
	},
	[]string{"backend", "op", "outcome"},
)

// valueBytes tracks the stored size of values written to a persistent store
// (format tag byte plus the CBOR bytes, zstd-compressed when over
// CompressionThreshold), labeled by whether zstd compression was applied.
var valueBytes = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: "mqtt311",
		Subsystem: "store",
		Name:      "value_bytes",
		Help:      "Size in bytes of encoded values written to a persistent store.",
		Buckets:   prometheus.ExponentialBuckets(32, 2, 12),
	},
	[]string{"backend", "compressed"},
)

var registerMetricsOnce sync.Once

// registerMetrics registers the store collectors with the default registry
// the first time a persistent backend is constructed. Safe to call from
// every constructor: later calls are no-ops.
func registerMetrics() {
	registerMetricsOnce.Do(func() {
		prometheus.MustRegister(operationsTotal, valueBytes)
	})
}

func observeOperation(backend, op string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	operationsTotal.WithLabelValues(backend, op, outcome).Inc()
}

func observeValueSize(backend string, encoded []byte) {
	compressed := "false"
	if len(encoded) > 0 && encoded[0] == encodingZstdWrapped {
		compressed = "true"
	}
	valueBytes.WithLabelValues(backend, compressed).Observe(float64(len(encoded)))
}
