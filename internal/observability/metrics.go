// Package observability exposes Prometheus metrics for the API.
package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics collects Prometheus metrics. A nil *Metrics is valid and records
// nothing, so callers do not need to branch on whether metrics are enabled.
type Metrics struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	signupsTotal    prometheus.Counter
	loginsTotal     *prometheus.CounterVec
	lockoutsTotal   prometheus.Counter
}

// NewMetrics initializes the registry and the base metric set.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "connectify_http_requests_total",
		Help: "HTTP requests by route pattern and status code.",
	}, []string{"route", "code"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "connectify_http_request_duration_seconds",
		Help:    "HTTP request duration by route pattern.",
		Buckets: prometheus.DefBuckets,
	}, []string{"route"})
	signups := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "connectify_signups_confirmed_total",
		Help: "Signups that completed confirmation and created a user.",
	})
	logins := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "connectify_logins_total",
		Help: "Login attempts by outcome.",
	}, []string{"outcome"})
	lockouts := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "connectify_login_lockout_rejections_total",
		Help: "Login attempts rejected by the adaptive lockout.",
	})

	registry.MustRegister(requests, duration, signups, logins, lockouts)

	return &Metrics{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestsTotal:   requests,
		requestDuration: duration,
		signupsTotal:    signups,
		loginsTotal:     logins,
		lockoutsTotal:   lockouts,
	}
}

// Handler returns the http.Handler for the metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// Middleware records request count and duration for every HTTP request.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(&recorder, r)
		route := routePattern(r)
		m.requestsTotal.WithLabelValues(route, strconv.Itoa(recorder.status)).Inc()
		m.requestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	})
}

// SignupConfirmed counts a completed registration.
func (m *Metrics) SignupConfirmed() {
	if m != nil {
		m.signupsTotal.Inc()
	}
}

// LoginAttempt counts a login by outcome ("success" or "failure").
func (m *Metrics) LoginAttempt(outcome string) {
	if m != nil {
		m.loginsTotal.WithLabelValues(outcome).Inc()
	}
}

// LockoutRejected counts a login attempt rejected by the lockout.
func (m *Metrics) LockoutRejected() {
	if m != nil {
		m.lockoutsTotal.Inc()
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// routePattern resolves the chi route pattern so metrics aggregate by
// template rather than by concrete URL.
func routePattern(r *http.Request) string {
	if ctx := chi.RouteContext(r.Context()); ctx != nil {
		if pattern := ctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return r.URL.Path
}
