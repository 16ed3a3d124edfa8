package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	DeliveriesCreated prometheus.Counter
	AlertsRaised      prometheus.Counter
	AlertTransitions  *prometheus.CounterVec
	ReceiptsIssued    prometheus.Counter
	AuditWriteErrors  prometheus.Counter
	DetectorErrors    prometheus.Counter
	RequestDuration   *prometheus.HistogramVec
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	return &Metrics{
		DeliveriesCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "aidtrack_deliveries_created_total",
			Help: "Total number of delivery records created",
		}),
		AlertsRaised: promauto.NewCounter(prometheus.CounterOpts{
			Name: "aidtrack_duplicate_alerts_raised_total",
			Help: "Total number of duplicate-delivery alerts raised",
		}),
		AlertTransitions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "aidtrack_alert_transitions_total",
			Help: "Total number of alert lifecycle transitions by target state",
		}, []string{"target_state"}),
		ReceiptsIssued: promauto.NewCounter(prometheus.CounterOpts{
			Name: "aidtrack_receipts_issued_total",
			Help: "Total number of delivery receipts issued",
		}),
		AuditWriteErrors: promauto.NewCounter(prometheus.CounterOpts{
			Name: "aidtrack_audit_write_errors_total",
			Help: "Total number of swallowed audit-trail write failures",
		}),
		DetectorErrors: promauto.NewCounter(prometheus.CounterOpts{
			Name: "aidtrack_duplicate_detector_errors_total",
			Help: "Total number of swallowed duplicate-detection failures",
		}),
		RequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "aidtrack_http_request_duration_seconds",
			Help:    "HTTP request latency by method, path, and status",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}, []string{"method", "path", "status"}),
	}
}

// ObserveRequest records one HTTP request observation.
func (m *Metrics) ObserveRequest(method, path string, status int, d time.Duration) {
	m.RequestDuration.WithLabelValues(method, path, strconv.Itoa(status)).Observe(d.Seconds())
}
