package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP request metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	// Like and subscription toggles
	TogglesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "toggles_total",
			Help: "Total number of like and subscription toggles by resulting state",
		},
		[]string{"resource", "state"},
	)

	// Media storage operations
	MediaOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_operations_total",
			Help: "Total number of media storage operations",
		},
		[]string{"operation", "kind", "status"},
	)

	// Activity events
	EventsPublishedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "activity_events_published_total",
			Help: "Total number of activity events published",
		},
		[]string{"event_type", "status"},
	)
)

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

// RecordHTTPRequest records a served request
func RecordHTTPRequest(method, route, statusCode string, seconds float64) {
	HTTPRequestsTotal.WithLabelValues(method, route, statusCode).Inc()
	HTTPRequestDuration.WithLabelValues(method, route).Observe(seconds)
}

// RecordToggle records the state a toggle left behind
func RecordToggle(resource string, on bool) {
	state := "off"
	if on {
		state = "on"
	}
	TogglesTotal.WithLabelValues(resource, state).Inc()
}

// RecordMediaOperation records a media storage call
func RecordMediaOperation(operation, kind string, err error) {
	MediaOperationsTotal.WithLabelValues(operation, kind, status(err)).Inc()
}

// RecordEventPublished records an activity event publish attempt
func RecordEventPublished(eventType string, err error) {
	EventsPublishedTotal.WithLabelValues(eventType, status(err)).Inc()
}
