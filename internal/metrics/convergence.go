package metrics

import (
	"math"

	"github.com/MPA2620/DSML-Final-Project/internal/solver"
)

// Convergence tracks the spread of the most recent energies. The trajectory
// counts as converged once the standard deviation of the last window samples
// drops below the threshold.
type Convergence struct {
	name      string
	window    int
	threshold float64
	recent    []float64
}

func NewConvergence(window int, threshold float64) *Convergence {
	if window <= 0 {
		window = DefaultWindow
	}
	return &Convergence{
		name:      "convergence_std",
		window:    window,
		threshold: threshold,
		recent:    make([]float64, 0, window),
	}
}

func (c *Convergence) Name() string { return c.name }

func (c *Convergence) Observe(s solver.Sample) {
	if len(c.recent) == c.window {
		copy(c.recent, c.recent[1:])
		c.recent = c.recent[:c.window-1]
	}
	c.recent = append(c.recent, s.Energy)
}

// Value is +Inf until a full window has been observed.
func (c *Convergence) Value() float64 {
	if len(c.recent) < c.window {
		return math.Inf(1)
	}
	return Std(c.recent)
}

func (c *Convergence) Converged() bool {
	return c.Value() < c.threshold
}

func (c *Convergence) Reset() {
	c.recent = c.recent[:0]
}
