package optim

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/MPA2620/DSML-Final-Project/internal/cbm"
	"github.com/MPA2620/DSML-Final-Project/internal/dynamo"
	"github.com/MPA2620/DSML-Final-Project/internal/sbm"
	"github.com/MPA2620/DSML-Final-Project/internal/solver"
)

// Parameter names understood by Builder.
const (
	ParamTemperature = "temperature"
	ParamTEnd        = "t_end"
	ParamIterations  = "iterations"
)

// Objective scores one parameter combination. Higher is better.
type Objective func(ctx context.Context, params map[string]float64) (float64, error)

type Trial struct {
	Params map[string]float64
	Score  float64
	Err    error
}

// GridSearch evaluates the cartesian product of per-parameter value lists.
type GridSearch struct {
	paramNames []string
	ranges     [][]float64
}

func NewGridSearch(params []string, ranges [][]float64) (*GridSearch, error) {
	if len(params) == 0 || len(params) != len(ranges) {
		return nil, dynamo.InvalidArgument("need one value list per parameter, got %d names and %d lists", len(params), len(ranges))
	}
	for i, r := range ranges {
		if len(r) == 0 {
			return nil, dynamo.InvalidArgument("parameter %s has no values", params[i])
		}
	}
	return &GridSearch{paramNames: params, ranges: ranges}, nil
}

// Size is the number of combinations Search will evaluate.
func (g *GridSearch) Size() int {
	n := 1
	for _, r := range g.ranges {
		n *= len(r)
	}
	return n
}

// Search runs obj on every combination in row-major order and returns the
// highest scoring trial; ties keep the earlier one. Failed combinations are
// kept in trials with Err set. Search stops at the first context error.
func (g *GridSearch) Search(ctx context.Context, obj Objective) (*Trial, []Trial, error) {
	trials := make([]Trial, 0, g.Size())
	if err := g.searchRecursive(ctx, 0, make(map[string]float64), obj, &trials); err != nil {
		return nil, trials, err
	}

	var best *Trial
	var firstErr error
	for i := range trials {
		t := &trials[i]
		if t.Err != nil {
			if firstErr == nil {
				firstErr = t.Err
			}
			continue
		}
		if best == nil || t.Score > best.Score {
			best = t
		}
	}
	if best == nil {
		return nil, trials, fmt.Errorf("optim: every trial failed: %w", firstErr)
	}
	return best, trials, nil
}

func (g *GridSearch) searchRecursive(
	ctx context.Context,
	depth int,
	current map[string]float64,
	obj Objective,
	trials *[]Trial,
) error {
	if depth == len(g.paramNames) {
		if err := ctx.Err(); err != nil {
			return err
		}
		score, err := obj(ctx, current)
		*trials = append(*trials, Trial{Params: current, Score: score, Err: err})
		return nil
	}

	paramName := g.paramNames[depth]
	for _, val := range g.ranges[depth] {
		newParams := make(map[string]float64, len(current)+1)
		for k, v := range current {
			newParams[k] = v
		}
		newParams[paramName] = val

		if err := g.searchRecursive(ctx, depth+1, newParams, obj, trials); err != nil {
			return err
		}
	}
	return nil
}

// Builder returns a factory for the named solver that overrides the base
// configuration with the given parameters.
func Builder(name string, cbmCfg cbm.Config, sbmCfg sbm.Config) (func(map[string]float64) (solver.Solver, error), error) {
	switch name {
	case cbm.Name:
		return func(params map[string]float64) (solver.Solver, error) {
			cfg := cbmCfg
			for k, v := range params {
				switch k {
				case ParamTemperature:
					cfg.Temperature = v
				case ParamTEnd:
					cfg.Span.End = v
				default:
					return nil, dynamo.InvalidArgument("cbm has no parameter %q", k)
				}
			}
			if err := cfg.Validate(); err != nil {
				return nil, err
			}
			return cbm.New(cfg), nil
		}, nil
	case sbm.Name:
		return func(params map[string]float64) (solver.Solver, error) {
			cfg := sbmCfg
			for k, v := range params {
				switch k {
				case ParamTemperature:
					cfg.Temperature = v
				case ParamIterations:
					cfg.Iterations = int(v)
				default:
					return nil, dynamo.InvalidArgument("sbm has no parameter %q", k)
				}
			}
			if err := cfg.Validate(); err != nil {
				return nil, err
			}
			return sbm.New(cfg), nil
		}, nil
	default:
		return nil, fmt.Errorf("unknown solver: %s", name)
	}
}

// SolverObjective scores parameters by the mean cut value the built solver
// reaches on p over repeats runs seeded seed, seed+1, and so on.
func SolverObjective(p *solver.Problem, build func(map[string]float64) (solver.Solver, error), repeats int, seed int64) Objective {
	return func(ctx context.Context, params map[string]float64) (float64, error) {
		if repeats <= 0 {
			return 0, dynamo.InvalidArgument("repeats must be positive, got %d", repeats)
		}
		s, err := build(params)
		if err != nil {
			return 0, err
		}
		var sum float64
		for r := 0; r < repeats; r++ {
			res, err := s.Solve(ctx, p, rand.New(rand.NewSource(seed+int64(r))))
			if err != nil {
				return 0, err
			}
			sum += res.BestCutValue
		}
		return sum / float64(repeats), nil
	}
}
