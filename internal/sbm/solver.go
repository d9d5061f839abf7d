package sbm

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/MPA2620/DSML-Final-Project/internal/dynamo"
	"github.com/MPA2620/DSML-Final-Project/internal/energy"
	"github.com/MPA2620/DSML-Final-Project/internal/metrics"
	"github.com/MPA2620/DSML-Final-Project/internal/solver"
)

const Name = "sbm"

type Config struct {
	Temperature float64
	Iterations  int
}

func DefaultConfig() Config {
	return Config{Temperature: 1.0, Iterations: 1000}
}

func (c Config) Validate() error {
	if !(c.Temperature > 0) || math.IsInf(c.Temperature, 0) {
		return dynamo.InvalidArgument("temperature must be positive, got %g", c.Temperature)
	}
	if c.Iterations <= 0 {
		return dynamo.InvalidArgument("iterations must be positive, got %d", c.Iterations)
	}
	return nil
}

type Solver struct {
	cfg Config
}

func New(cfg Config) *Solver {
	return &Solver{cfg: cfg}
}

func (s *Solver) Name() string { return Name }

func (s *Solver) Config() Config { return s.cfg }

// Sigmoid is the logistic activation 1/(1+e^-v).
func Sigmoid(v float64) float64 {
	return 1 / (1 + math.Exp(-v))
}

// Sweep performs one in-place Gibbs pass over the units 0..N-1. Later units
// see the values already written by earlier ones.
func Sweep(state energy.Assignment, weights [][]float64, biases []float64, temperature float64, rng *rand.Rand) {
	for i := range state {
		p := Sigmoid(energy.LocalField(i, state, weights, biases) / temperature)
		if rng.Float64() < p {
			state[i] = 1
		} else {
			state[i] = 0
		}
	}
}

func (s *Solver) Solve(ctx context.Context, p *solver.Problem, rng *rand.Rand) (*solver.Result, error) {
	if err := s.cfg.Validate(); err != nil {
		return nil, fmt.Errorf("sbm: %w", err)
	}
	n := p.Size()
	if err := energy.CheckShape(n, p.Weights, p.Biases); err != nil {
		return nil, fmt.Errorf("sbm: %w", err)
	}

	start := time.Now()

	state := make(energy.Assignment, n)
	for i := range state {
		state[i] = int8(rng.Intn(2))
	}

	best := state.Clone()
	bestCut := math.Inf(-1)
	history := make([]float64, 0, s.cfg.Iterations)
	conv := metrics.NewConvergence(metrics.DefaultWindow, metrics.DefaultThreshold)

	for k := 0; k < s.cfg.Iterations; k++ {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("sbm: sweep %d: %w", k, err)
		}
		Sweep(state, p.Weights, p.Biases, s.cfg.Temperature, rng)

		e := energy.MustEnergy(state, p.Weights, p.Biases)
		if cut := -e; cut > bestCut {
			bestCut = cut
			copy(best, state)
		}
		history = append(history, bestCut)
		conv.Observe(solver.Sample{Time: float64(k), Energy: e})
	}

	cut, weight, err := p.Evaluate(best)
	if err != nil {
		return nil, fmt.Errorf("sbm: %w", err)
	}

	return &solver.Result{
		Solver:         Name,
		BestCutValue:   cut,
		BestAssignment: best,
		CutWeight:      weight,
		History:        history,
		Converged:      conv.Converged(),
		Elapsed:        time.Since(start),
	}, nil
}
