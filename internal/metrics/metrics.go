package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry holds the service's Prometheus collectors.
	Registry = prometheus.NewRegistry()

	httpInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "rsvp",
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "rsvp",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "route", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "rsvp",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~5s
		},
		[]string{"method", "route"},
	)

	rsvpSubmissions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "rsvp",
			Subsystem: "guests",
			Name:      "submissions_total",
			Help:      "RSVP submissions by resulting guest status.",
		},
		[]string{"status"},
	)

	emailsSent = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "rsvp",
			Subsystem: "email",
			Name:      "sent_total",
			Help:      "Outgoing emails by backend, type and outcome.",
		},
		[]string{"backend", "type", "status"},
	)

	invitationRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "rsvp",
			Subsystem: "guests",
			Name:      "invitation_requests_total",
			Help:      "Self-service invitation requests by outcome.",
		},
		[]string{"outcome"},
	)
)

func init() {
	Registry.MustRegister(
		httpInFlight,
		httpRequests,
		httpDuration,
		rsvpSubmissions,
		emailsSent,
		invitationRequests,
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewGoCollector(),
	)
}

// Handler exposes the registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

func TrackInFlight() func() {
	httpInFlight.Inc()
	return httpInFlight.Dec
}

// RecordHTTPRequest records a finished request. route should be the matched
// route template, never the raw path, to keep label cardinality bounded.
func RecordHTTPRequest(method, route string, status int, duration time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	httpDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

func RecordRSVPSubmission(status string) {
	rsvpSubmissions.WithLabelValues(status).Inc()
}

func RecordEmail(backend, emailType string, err error) {
	status := "sent"
	if err != nil {
		status = "failed"
	}
	emailsSent.WithLabelValues(backend, emailType, status).Inc()
}

func RecordInvitationRequest(outcome string) {
	invitationRequests.WithLabelValues(outcome).Inc()
}
