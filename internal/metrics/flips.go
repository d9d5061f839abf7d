package metrics

import (
	"math"

	"github.com/MPA2620/DSML-Final-Project/internal/energy"
	"github.com/MPA2620/DSML-Final-Project/internal/solver"
)

// Flips counts unit flips of the binary readout between consecutive samples.
type Flips struct {
	name  string
	prev  energy.Assignment
	count int
}

func NewFlips() *Flips {
	return &Flips{name: "flips"}
}

func (f *Flips) Name() string { return f.name }

func (f *Flips) Observe(s solver.Sample) {
	cur := energy.Binarize(s.State)
	if f.prev != nil && len(f.prev) == len(cur) {
		for i := range cur {
			if cur[i] != f.prev[i] {
				f.count++
			}
		}
	}
	f.prev = cur
}

func (f *Flips) Value() float64 { return float64(f.count) }

func (f *Flips) Reset() {
	f.prev = nil
	f.count = 0
}

// MinEnergy is the lowest energy seen on the trajectory.
type MinEnergy struct {
	name string
	min  float64
	seen bool
}

func NewMinEnergy() *MinEnergy {
	return &MinEnergy{name: "min_energy", min: math.Inf(1)}
}

func (m *MinEnergy) Name() string { return m.name }

func (m *MinEnergy) Observe(s solver.Sample) {
	if s.Energy < m.min {
		m.min = s.Energy
	}
	m.seen = true
}

func (m *MinEnergy) Value() float64 {
	if !m.seen {
		return 0
	}
	return m.min
}

func (m *MinEnergy) Reset() {
	m.min = math.Inf(1)
	m.seen = false
}
