// Package metrics exposes Prometheus counters for the user registry.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsCollector is what the service and notifier record into.
type MetricsCollector interface {
	RecordUserOperation(op, outcome string)
	RecordWelcomeEmail(outcome string)
}

// Collector is the Prometheus-backed MetricsCollector.
type Collector struct {
	userOps       *prometheus.CounterVec
	welcomeEmails *prometheus.CounterVec
}

// NewCollector registers the registry counters on reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		userOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "user_registry_operations_total",
			Help: "User registry operations by operation and outcome.",
		}, []string{"operation", "outcome"}),
		welcomeEmails: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "user_registry_welcome_emails_total",
			Help: "Welcome email dispatches by outcome.",
		}, []string{"outcome"}),
	}
	reg.MustRegister(c.userOps, c.welcomeEmails)
	return c
}

func (c *Collector) RecordUserOperation(op, outcome string) {
	c.userOps.WithLabelValues(op, outcome).Inc()
}

func (c *Collector) RecordWelcomeEmail(outcome string) {
	c.welcomeEmails.WithLabelValues(outcome).Inc()
}

// Nop discards everything.
type Nop struct{}

func (Nop) RecordUserOperation(string, string) {}
func (Nop) RecordWelcomeEmail(string) {}

// Handler serves the gatherer's metrics for scraping.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
