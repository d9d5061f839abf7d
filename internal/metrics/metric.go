// Package metrics holds per-sample observers run over solver trajectories.
package metrics

import (
	"math"

	"github.com/MPA2620/DSML-Final-Project/internal/solver"
)

type Metric interface {
	Name() string
	Observe(s solver.Sample)
	Value() float64
	Reset()
}

// Defaults for the convergence diagnostic.
const (
	DefaultWindow    = 10
	DefaultThreshold = 1e-3
)

// Std is the population standard deviation of values.
func Std(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	mean := 0.0
	for _, v := range values {
		mean += v
	}
	mean /= float64(len(values))
	sum := 0.0
	for _, v := range values {
		d := v - mean
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(values)))
}

// ObserveAll feeds every sample of tr to each metric and returns the values
// keyed by metric name.
func ObserveAll(tr solver.Trace, ms ...Metric) map[string]float64 {
	out := make(map[string]float64, len(ms))
	for _, m := range ms {
		m.Reset()
		for _, s := range tr {
			m.Observe(s)
		}
		out[m.Name()] = m.Value()
	}
	return out
}

// Defaults returns the observers computed for every stored trajectory.
func Defaults() []Metric {
	return []Metric{
		NewConvergence(DefaultWindow, DefaultThreshold),
		NewFlips(),
		NewMinEnergy(),
	}
}
