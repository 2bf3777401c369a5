package observability

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "charmctl",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests.",
		},
		[]string{"unit", "method", "path", "status"},
	)
	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "charmctl",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"unit", "method", "path", "status"},
	)
	dispatchEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "charmctl",
			Subsystem: "dispatch",
			Name:      "events_total",
			Help:      "Lifecycle/action events dispatched to the charm.",
		},
		[]string{"unit", "event", "outcome"},
	)
	dispatchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "charmctl",
			Subsystem: "dispatch",
			Name:      "event_duration_seconds",
			Help:      "Event handling duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"unit", "event"},
	)
	statusKind = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "charmctl",
			Subsystem: "status",
			Name:      "kind",
			Help:      "Projected status category (1 for the active category).",
		},
		[]string{"unit", "kind"},
	)
)

func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(httpRequests, httpDuration, dispatchEvents, dispatchDuration, statusKind)
	})
}

func RecordHTTPRequest(unit, method, path string, status int, duration time.Duration) {
	RegisterMetrics()
	statusLabel := strconv.Itoa(status)
	httpRequests.WithLabelValues(unit, method, path, statusLabel).Inc()
	httpDuration.WithLabelValues(unit, method, path, statusLabel).Observe(duration.Seconds())
}

func RecordDispatch(unit, event, outcome string, duration time.Duration) {
	RegisterMetrics()
	dispatchEvents.WithLabelValues(unit, event, outcome).Inc()
	dispatchDuration.WithLabelValues(unit, event).Observe(duration.Seconds())
}

// RecordStatusKind flips the status gauge to the given category.
func RecordStatusKind(unit, kind string) {
	RegisterMetrics()
	for _, k := range []string{"blocked", "maintenance", "waiting", "active"} {
		v := 0.0
		if k == kind {
			v = 1.0
		}
		statusKind.WithLabelValues(unit, k).Set(v)
	}
}
