package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Auth methods used as the "method" label.
const (
	MethodRegister = "register"
	MethodPassword = "password"
	MethodGoogle   = "google"
)

// Metrics holds the service's Prometheus collectors. A nil *Metrics is valid
// and records nothing.
type Metrics struct {
	AuthAttempts       *prometheus.CounterVec
	GuardRejections    *prometheus.CounterVec
	DirectoryFallbacks prometheus.Counter

	registry *prometheus.Registry
}

// New creates the collectors and registers them on a dedicated registry.
func New() *Metrics {
	m := &Metrics{
		AuthAttempts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stockpile_auth_attempts_total",
				Help: "Credential exchanges by method and outcome",
			},
			[]string{"method", "outcome"},
		),
		GuardRejections: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stockpile_guard_rejections_total",
				Help: "Protected requests rejected by the authorization guard",
			},
			[]string{"reason"},
		),
		DirectoryFallbacks: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "stockpile_directory_fallbacks_total",
				Help: "Directory proxy responses served from the canned fallback",
			},
		),
		registry: prometheus.NewRegistry(),
	}

	m.registry.MustRegister(m.AuthAttempts, m.GuardRejections, m.DirectoryFallbacks)
	return m
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveAuth counts one credential exchange.
func (m *Metrics) ObserveAuth(method string, err error) {
	if m == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	m.AuthAttempts.WithLabelValues(method, outcome).Inc()
}

// ObserveRejection counts one guard rejection.
func (m *Metrics) ObserveRejection(reason string) {
	if m == nil {
		return
	}
	m.GuardRejections.WithLabelValues(reason).Inc()
}

// ObserveFallback counts one fallback directory response.
func (m *Metrics) ObserveFallback() {
	if m == nil {
		return
	}
	m.DirectoryFallbacks.Inc()
}
