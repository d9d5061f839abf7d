package cbm

import (
	"math"

	"github.com/MPA2620/DSML-Final-Project/internal/dynamo"
	"github.com/MPA2620/DSML-Final-Project/internal/energy"
)

// ExponentClip bounds the exponent before exp to keep the rate finite.
const ExponentClip = 50.0

// Derivative evaluates the CBM right-hand side at x. It reads nothing but
// its arguments, so repeated calls with the same inputs agree exactly.
func Derivative(x []float64, weights [][]float64, biases []float64, temperature float64) dynamo.State {
	s := energy.Binarize(x)
	dx := make(dynamo.State, len(x))
	for i := range x {
		z := energy.LocalField(i, s, weights, biases)
		sign := 1 - 2*float64(s[i])
		dx[i] = sign * (1 + math.Exp(clip(sign*z/temperature, -ExponentClip, ExponentClip)))
	}
	return dx
}

func clip(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// Dynamics adapts Derivative to dynamo.System for a fixed problem.
type Dynamics struct {
	weights     [][]float64
	biases      []float64
	temperature float64
}

func NewDynamics(weights [][]float64, biases []float64, temperature float64) *Dynamics {
	return &Dynamics{weights: weights, biases: biases, temperature: temperature}
}

func (d *Dynamics) StateDim() int { return len(d.biases) }

func (d *Dynamics) Derive(x dynamo.State, t float64) dynamo.State {
	return Derivative(x, d.weights, d.biases, d.temperature)
}
