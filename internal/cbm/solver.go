package cbm

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/MPA2620/DSML-Final-Project/internal/dynamo"
	"github.com/MPA2620/DSML-Final-Project/internal/energy"
	"github.com/MPA2620/DSML-Final-Project/internal/integrators"
	"github.com/MPA2620/DSML-Final-Project/internal/metrics"
	"github.com/MPA2620/DSML-Final-Project/internal/solver"
)

const Name = "cbm"

type Config struct {
	Temperature float64
	Span        dynamo.Span
	EvalSteps   int
	Integrator  string
	// Dt is the step of fixed-step integrators; adaptive pairs ignore it.
	Dt      float64
	Options integrators.Options

	ConvergenceWindow    int
	ConvergenceThreshold float64
}

func DefaultConfig() Config {
	return Config{
		Temperature:          5.0,
		Span:                 dynamo.Span{Start: 0, End: 10},
		EvalSteps:            1000,
		Integrator:           "rk23",
		Dt:                   1e-3,
		Options:              integrators.DefaultOptions(),
		ConvergenceWindow:    metrics.DefaultWindow,
		ConvergenceThreshold: metrics.DefaultThreshold,
	}
}

func (c Config) Validate() error {
	if !(c.Temperature > 0) || math.IsInf(c.Temperature, 0) {
		return dynamo.InvalidArgument("temperature must be positive, got %g", c.Temperature)
	}
	if err := c.Span.Validate(); err != nil {
		return err
	}
	if c.EvalSteps <= 0 {
		return dynamo.InvalidArgument("evaluation steps must be positive, got %d", c.EvalSteps)
	}
	if _, err := integrators.Lookup(c.Integrator); err != nil {
		return err
	}
	if !integrators.IsAdaptive(c.Integrator) && c.Dt <= 0 {
		return dynamo.InvalidArgument("fixed-step integrator %s needs dt > 0", c.Integrator)
	}
	return nil
}

// Solver integrates the chaotic dynamics from a random start in [0,1)^N and
// reads the final continuous state as the candidate cut.
type Solver struct {
	cfg Config
}

func New(cfg Config) *Solver {
	return &Solver{cfg: cfg}
}

func (s *Solver) Name() string { return Name }

func (s *Solver) Config() Config { return s.cfg }

func (s *Solver) Solve(ctx context.Context, p *solver.Problem, rng *rand.Rand) (*solver.Result, error) {
	if err := s.check(p); err != nil {
		return nil, fmt.Errorf("cbm: %w", err)
	}
	n := p.Size()

	start := time.Now()

	x0 := make(dynamo.State, n)
	for i := range x0 {
		x0[i] = rng.Float64()
	}

	sol, err := s.Integrate(ctx, p, x0)
	if err != nil {
		return nil, fmt.Errorf("cbm: %w", err)
	}

	conv := metrics.NewConvergence(s.cfg.ConvergenceWindow, s.cfg.ConvergenceThreshold)
	trace := make(solver.Trace, len(sol.Times))
	readout := make(energy.Assignment, n)
	for i, x := range sol.States {
		energy.BinarizeInto(readout, x)
		trace[i] = solver.Sample{
			Time:   sol.Times[i],
			State:  x,
			Energy: energy.MustEnergy(readout, p.Weights, p.Biases),
		}
		conv.Observe(trace[i])
	}

	best := energy.Binarize(trace[len(trace)-1].State)
	cut, weight, err := p.Evaluate(best)
	if err != nil {
		return nil, fmt.Errorf("cbm: %w", err)
	}

	return &solver.Result{
		Solver:         Name,
		BestCutValue:   cut,
		BestAssignment: best,
		CutWeight:      weight,
		Trace:          trace,
		Converged:      conv.Converged(),
		Elapsed:        time.Since(start),
	}, nil
}

func (s *Solver) check(p *solver.Problem) error {
	if err := s.cfg.Validate(); err != nil {
		return err
	}
	return energy.CheckShape(p.Size(), p.Weights, p.Biases)
}

// Integrate runs the dynamics of p from x0 and samples the configured
// evaluation grid.
func (s *Solver) Integrate(ctx context.Context, p *solver.Problem, x0 dynamo.State) (*integrators.Solution, error) {
	if err := s.check(p); err != nil {
		return nil, err
	}
	integ, err := integrators.Lookup(s.cfg.Integrator)
	if err != nil {
		return nil, err
	}

	dyn := NewDynamics(p.Weights, p.Biases, s.cfg.Temperature)
	tEval := s.cfg.Span.Linspace(s.cfg.EvalSteps)

	if adaptive, ok := integ.(dynamo.AdaptiveIntegrator); ok {
		return integrators.Solve(ctx, dyn, adaptive, s.cfg.Span, x0, tEval, s.cfg.Options)
	}
	return integrators.FixedStep(ctx, dyn, integ, s.cfg.Span, x0, tEval, s.cfg.Dt)
}
