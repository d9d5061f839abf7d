package dynamo

import (
	"math"
)

type State []float64

func (s State) Clone() State {
	c := make(State, len(s))
	copy(c, s)
	return c
}

func (s State) IsValid() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func (s State) Norm() float64 {
	sum := 0.0
	for _, v := range s {
		sum += v * v
	}
	return math.Sqrt(sum)
}

func (s State) Sub(other State) State {
	result := make(State, len(s))
	for i := range s {
		if i < len(other) {
			result[i] = s[i] - other[i]
		} else {
			result[i] = s[i]
		}
	}
	return result
}

// System is an autonomous or time-dependent ODE right-hand side.
type System interface {
	Derive(x State, t float64) State
	StateDim() int
}

type Integrator interface {
	Step(dyn System, x State, t float64, dt float64) State
}

// AdaptiveIntegrator is an embedded Runge-Kutta pair.
//
// StepAdaptive attempts one step of size dt and returns the candidate state,
// the error norm scaled by tol (the step is acceptable when it is <= 1) and
// the step size suggested for the next attempt.
type AdaptiveIntegrator interface {
	Integrator
	Name() string
	StepAdaptive(dyn System, x State, t, dt float64, tol Tolerance) (State, float64, float64, error)
}

// Tolerance is the mixed absolute/relative error target of an adaptive step.
type Tolerance struct {
	RTol float64
	ATol float64
}

func DefaultTolerance() Tolerance {
	return Tolerance{RTol: 1e-3, ATol: 1e-6}
}

// Span is a closed integration window [Start, End].
type Span struct {
	Start float64
	End   float64
}

func (s Span) Validate() error {
	if math.IsNaN(s.Start) || math.IsNaN(s.End) || s.Start >= s.End {
		return InvalidArgument("time span must satisfy start < end, got [%g, %g]", s.Start, s.End)
	}
	return nil
}

// Linspace returns n evenly spaced points over the span, both endpoints
// included. A single point yields the span start.
func (s Span) Linspace(n int) []float64 {
	if n <= 0 {
		return nil
	}
	pts := make([]float64, n)
	if n == 1 {
		pts[0] = s.Start
		return pts
	}
	step := (s.End - s.Start) / float64(n-1)
	for i := range pts {
		pts[i] = s.Start + float64(i)*step
	}
	pts[n-1] = s.End
	return pts
}
