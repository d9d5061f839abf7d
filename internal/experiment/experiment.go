package experiment

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/MPA2620/DSML-Final-Project/internal/dynamo"
	"github.com/MPA2620/DSML-Final-Project/internal/graph"
	"github.com/MPA2620/DSML-Final-Project/internal/solver"
	"github.com/MPA2620/DSML-Final-Project/internal/telemetry"
)

type Config struct {
	Sizes           []int
	EdgeProbability float64
	Weights         graph.WeightRange
	BiasLo          float64
	BiasHi          float64
	Encoding        solver.Encoding
	Seed            int64
	// Workers bounds the number of runs in flight; <= 0 means one per run.
	Workers int
}

func DefaultConfig() Config {
	return Config{
		Sizes:           []int{10, 20, 50, 100},
		EdgeProbability: 0.5,
		Weights:         graph.WeightRange{Lo: -5, Hi: 5},
		BiasLo:          -1,
		BiasHi:          1,
		Encoding:        solver.EncodingIsing,
		Seed:            42,
		Workers:         4,
	}
}

func (c Config) Validate() error {
	if len(c.Sizes) == 0 {
		return dynamo.InvalidArgument("no graph sizes")
	}
	for _, n := range c.Sizes {
		if n <= 0 {
			return dynamo.InvalidArgument("graph size must be positive, got %d", n)
		}
	}
	if c.EdgeProbability < 0 || c.EdgeProbability > 1 {
		return dynamo.InvalidArgument("edge probability must be in [0,1], got %g", c.EdgeProbability)
	}
	if err := c.Weights.Validate(); err != nil {
		return err
	}
	if c.BiasLo > c.BiasHi {
		return dynamo.InvalidArgument("bias range [%g, %g] is inverted", c.BiasLo, c.BiasHi)
	}
	return nil
}

// Row is one line of a comparison table.
type Row struct {
	GraphSize      int
	Solver         string
	CutValue       float64
	CutWeight      float64
	ElapsedSeconds float64
	Err            error
	// Result is nil when Err is set.
	Result *solver.Result
}

func (r Row) ErrString() string {
	if r.Err == nil {
		return ""
	}
	return r.Err.Error()
}

type Option func(*Orchestrator)

func WithLogger(l *zap.Logger) Option {
	return func(o *Orchestrator) {
		if l != nil {
			o.logger = l
		}
	}
}

func WithTelemetry(c *telemetry.Collector) Option {
	return func(o *Orchestrator) { o.telemetry = c }
}

// Orchestrator runs every registered solver on every configured graph size.
type Orchestrator struct {
	cfg       Config
	registry  *Registry
	logger    *zap.Logger
	telemetry *telemetry.Collector
}

func New(cfg Config, registry *Registry, opts ...Option) *Orchestrator {
	o := &Orchestrator{cfg: cfg, registry: registry, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// BuildProblem draws a graph of n nodes and its biases from rng.
func (o *Orchestrator) BuildProblem(rng *rand.Rand, n int) (*solver.Problem, error) {
	g, err := graph.Generate(rng, n, o.cfg.EdgeProbability, o.cfg.Weights)
	if err != nil {
		return nil, err
	}
	var biases []float64
	if o.cfg.Encoding == solver.EncodingMaxCut {
		biases = make([]float64, n)
	} else if biases, err = graph.RandomBiases(rng, n, o.cfg.BiasLo, o.cfg.BiasHi); err != nil {
		return nil, err
	}
	return solver.NewProblem(g, biases, o.cfg.Encoding)
}

type job struct {
	index   int
	problem *solver.Problem
	solver  string
}

// Run generates one problem per size and hands it to every solver. Runs are
// independent: a failing run is reported in its row and the others finish.
// The returned error is only set for invalid configuration or cancellation.
func (o *Orchestrator) Run(ctx context.Context) ([]Row, error) {
	if err := o.cfg.Validate(); err != nil {
		return nil, err
	}
	names := o.registry.ListSolvers()
	if len(names) == 0 {
		return nil, dynamo.InvalidArgument("no solvers registered")
	}

	genRng := rand.New(rand.NewSource(o.cfg.Seed))
	jobs := make([]job, 0, len(o.cfg.Sizes)*len(names))
	for _, n := range o.cfg.Sizes {
		p, err := o.BuildProblem(genRng, n)
		if err != nil {
			return nil, fmt.Errorf("build problem for %d nodes: %w", n, err)
		}
		for _, name := range names {
			jobs = append(jobs, job{index: len(jobs), problem: p, solver: name})
		}
	}

	o.logger.Info("starting comparison",
		zap.Ints("sizes", o.cfg.Sizes),
		zap.Strings("solvers", names),
		zap.Int64("seed", o.cfg.Seed),
		zap.Int("runs", len(jobs)),
	)

	rows := make([]Row, len(jobs))
	g, gctx := errgroup.WithContext(ctx)
	if o.cfg.Workers > 0 {
		g.SetLimit(o.cfg.Workers)
	}
	for _, j := range jobs {
		g.Go(func() error {
			rows[j.index] = o.runOne(gctx, j)
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return rows, err
	}
	return rows, nil
}

func (o *Orchestrator) runOne(ctx context.Context, j job) Row {
	n := j.problem.Size()
	row := Row{GraphSize: n, Solver: j.solver}

	s, err := o.registry.GetSolver(j.solver)
	if err != nil {
		row.Err = err
		return row
	}

	rng := rand.New(rand.NewSource(o.cfg.Seed + int64(j.index)))
	start := time.Now()
	res, err := s.Solve(ctx, j.problem, rng)
	elapsed := time.Since(start)
	row.ElapsedSeconds = elapsed.Seconds()

	if err != nil {
		row.Err = err
		o.logger.Warn("solver run failed",
			zap.String("solver", j.solver),
			zap.Int("nodes", n),
			zap.Duration("elapsed", elapsed),
			zap.Error(err),
		)
		o.telemetry.RecordRun(j.solver, n, elapsed, 0, err)
		return row
	}

	row.CutValue = res.BestCutValue
	row.CutWeight = res.CutWeight
	row.Result = res
	o.logger.Info("solver run finished",
		zap.String("solver", j.solver),
		zap.Int("nodes", n),
		zap.Float64("cut_value", res.BestCutValue),
		zap.Float64("cut_weight", res.CutWeight),
		zap.Bool("converged", res.Converged),
		zap.Duration("elapsed", elapsed),
	)
	o.telemetry.RecordRun(j.solver, n, elapsed, res.BestCutValue, nil)
	return row
}

// Single solves one problem with every registered solver and returns the rows
// in registration order.
func (o *Orchestrator) Single(ctx context.Context, p *solver.Problem) []Row {
	names := o.registry.ListSolvers()
	rows := make([]Row, len(names))
	for i, name := range names {
		rows[i] = o.runOne(ctx, job{index: i, problem: p, solver: name})
	}
	return rows
}
