// Package metrics provides Prometheus metrics for the calculator service.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Simplici0/shopcalc/internal/pricing"
)

const defaultNamespace = "shopcalc"

// Metrics holds the calculator metrics and the registry they are registered on.
type Metrics struct {
	registry *prometheus.Registry

	// Calculation metrics
	Calculations       *prometheus.CounterVec
	InfeasibleTargets  *prometheus.CounterVec
	SolverEvaluations  prometheus.Histogram
	CalculationLatency *prometheus.HistogramVec

	// HTTP metrics
	HTTPRequests *prometheus.CounterVec
}

// New creates Metrics registered on a fresh registry.
func New(namespace string) *Metrics {
	if namespace == "" {
		namespace = defaultNamespace
	}

	m := &Metrics{
		registry: prometheus.NewRegistry(),
		Calculations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pricing",
			Name:      "calculations_total",
			Help:      "Total number of calculations by mode and strategy",
		}, []string{"mode", "strategy"}),
		InfeasibleTargets: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pricing",
			Name:      "infeasible_targets_total",
			Help:      "Calculations whose result misses the configured target",
		}, []string{"mode"}),
		SolverEvaluations: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "pricing",
			Name:      "solver_evaluations",
			Help:      "Number of cost model evaluations per calculation",
			Buckets:   []float64{1, 2, 10, 51, 100},
		}),
		CalculationLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "pricing",
			Name:      "calculation_duration_seconds",
			Help:      "Calculation latency in seconds",
			Buckets:   prometheus.ExponentialBuckets(1e-6, 4, 10),
		}, []string{"mode"}),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by route pattern and status code",
		}, []string{"route", "code"}),
	}

	m.registry.MustRegister(
		m.Calculations,
		m.InfeasibleTargets,
		m.SolverEvaluations,
		m.CalculationLatency,
		m.HTTPRequests,
	)
	return m
}

// ObserveSolution records one finished calculation.
func (m *Metrics) ObserveSolution(sol pricing.Solution, elapsed time.Duration) {
	mode := string(sol.Mode)
	strategy := string(sol.Strategy)
	if strategy == "" {
		strategy = "none"
	}

	m.Calculations.WithLabelValues(mode, strategy).Inc()
	if !sol.Feasible {
		m.InfeasibleTargets.WithLabelValues(mode).Inc()
	}
	m.SolverEvaluations.Observe(float64(sol.Evaluations))
	m.CalculationLatency.WithLabelValues(mode).Observe(elapsed.Seconds())
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
