package observe

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/mesh-intelligence/dirstore/pkg/types"
)

// Operation status label values.
const (
	statusOK       = "ok"
	statusNotFound = "not_found"
	statusError    = "error"
)

// Metrics holds the Prometheus metrics for storage operations.
type Metrics struct {
	OperationsTotal   *prometheus.CounterVec
	OperationDuration *prometheus.HistogramVec
	InFlight          prometheus.Gauge
}

// NewMetrics creates the storage metrics and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		OperationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dirstore_storage_operations_total",
				Help: "Total number of storage operations",
			},
			[]string{"verb", "status"},
		),
		OperationDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "dirstore_storage_operation_duration_seconds",
				Help:    "Duration of storage operations in seconds",
				Buckets: prometheus.ExponentialBuckets(0.00005, 4, 8),
			},
			[]string{"verb"},
		),
		InFlight: factory.NewGauge(prometheus.GaugeOpts{
			Name: "dirstore_storage_operations_in_flight",
			Help: "Storage operations currently running",
		}),
	}
}

// OnOperation implements types.Observer.
func (m *Metrics) OnOperation(types.Verb, string) {
	m.InFlight.Inc()
}

// OnOperationDone implements types.Observer.
func (m *Metrics) OnOperationDone(verb types.Verb, _ string, elapsed time.Duration, err error) {
	m.InFlight.Dec()
	m.OperationsTotal.WithLabelValues(string(verb), status(err)).Inc()
	m.OperationDuration.WithLabelValues(string(verb)).Observe(elapsed.Seconds())
}

func status(err error) string {
	switch {
	case err == nil:
		return statusOK
	case errors.Is(err, types.ErrNotFound):
		return statusNotFound
	default:
		return statusError
	}
}
