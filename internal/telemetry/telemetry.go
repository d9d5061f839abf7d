// Package telemetry exposes solver run statistics as Prometheus metrics on a
// private registry.
package telemetry

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const Namespace = "maxcut"

const (
	StatusOK    = "ok"
	StatusError = "error"
)

// Collector holds the solver metrics and the registry they are registered on.
type Collector struct {
	registry *prometheus.Registry

	Runs     *prometheus.CounterVec
	Duration *prometheus.HistogramVec
	BestCut  *prometheus.GaugeVec
}

func NewCollector() *Collector {
	registry := prometheus.NewRegistry()

	runs := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "solver_runs_total",
			Help:      "Total number of solver runs",
		},
		[]string{"solver", "status"},
	)

	duration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "solver_duration_seconds",
			Help:      "Wall-clock duration of a solver run in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 12),
		},
		[]string{"solver"},
	)

	bestCut := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "best_cut_value",
			Help:      "Cut value of the most recent successful run",
		},
		[]string{"solver", "nodes"},
	)

	registry.MustRegister(runs, duration, bestCut)

	return &Collector{
		registry: registry,
		Runs:     runs,
		Duration: duration,
		BestCut:  bestCut,
	}
}

func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// RecordRun books one finished run. cut is ignored when err is non-nil.
func (c *Collector) RecordRun(solver string, nodes int, elapsed time.Duration, cut float64, err error) {
	if c == nil {
		return
	}
	status := StatusOK
	if err != nil {
		status = StatusError
	}
	c.Runs.WithLabelValues(solver, status).Inc()
	c.Duration.WithLabelValues(solver).Observe(elapsed.Seconds())
	if err == nil {
		c.BestCut.WithLabelValues(solver, strconv.Itoa(nodes)).Set(cut)
	}
}

// WriteFile dumps the current metrics in the text exposition format.
func (c *Collector) WriteFile(path string) error {
	return prometheus.WriteToTextfile(path, c.registry)
}
