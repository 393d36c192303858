// Package metrics exposes Prometheus collectors for HTTP traffic and the SOS lifecycle.
package metrics

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"relief-backend/internal/models"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the application collectors
type Metrics struct {
	factory     promauto.Factory
	feed        prometheus.GaugeFunc
	requests    *prometheus.CounterVec
	duration    *prometheus.HistogramVec
	sosRaised   prometheus.Counter
	sosResolved prometheus.Counter
	rateDenied  *prometheus.CounterVec
}

// New registers the collectors with reg
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	m := &Metrics{
		requests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP requests by method, route and status",
		}, []string{"method", "route", "status"}),
		duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		sosRaised: factory.NewCounter(prometheus.CounterOpts{
			Name: "sos_raised_total",
			Help: "SOS alerts raised",
		}),
		sosResolved: factory.NewCounter(prometheus.CounterOpts{
			Name: "sos_resolved_total",
			Help: "SOS alerts resolved",
		}),
		rateDenied: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "rate_limit_deny_total",
			Help: "Requests denied by the rate limiter",
		}, []string{"route"}),
	}
	m.factory = factory
	return m
}

// Middleware records request count and latency. Routes are labeled with
// the chi pattern so ids in paths do not explode cardinality.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				route = pattern
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		m.requests.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
		m.duration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}

// SOSRaised counts a new alert
func (m *Metrics) SOSRaised(context.Context, *models.SOS) { m.sosRaised.Inc() }

// SOSResolved counts a resolution
func (m *Metrics) SOSResolved(context.Context, *models.SOS) { m.sosResolved.Inc() }

// OnDeny counts a rate-limited request
func (m *Metrics) OnDeny(route string) { m.rateDenied.WithLabelValues(route).Inc() }

// TrackFeedConnections exposes the number of live admin feeds. Call it once.
func (m *Metrics) TrackFeedConnections(count func() int) {
	m.feed = m.factory.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "sos_feed_connections",
		Help: "Admins connected to the live SOS feed",
	}, func() float64 { return float64(count()) })
}
