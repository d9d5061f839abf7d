package automation

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"os"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/MPA2620/DSML-Final-Project/internal/config"
	"github.com/MPA2620/DSML-Final-Project/internal/dynamo"
	"github.com/MPA2620/DSML-Final-Project/internal/energy"
	"github.com/MPA2620/DSML-Final-Project/internal/experiment"
	"github.com/MPA2620/DSML-Final-Project/internal/metrics"
	"github.com/MPA2620/DSML-Final-Project/internal/solver"
)

// MonteCarloConfig repeats every registered solver on one problem.
type MonteCarloConfig struct {
	Trials  int
	Seed    int64
	Workers int
}

// TrialResult is one solver run of one trial.
type TrialResult struct {
	Trial      int
	Solver     string
	CutValue   float64
	CutWeight  float64
	Assignment energy.Assignment
	Elapsed    time.Duration
	Err        error
}

// RunMonteCarlo runs every solver Trials times on p. Run k (trial-major,
// solvers in registration order) draws from seed+k. Results keep that order.
// Failed runs are reported in their result; only cancellation aborts.
func RunMonteCarlo(ctx context.Context, p *solver.Problem, reg *experiment.Registry, cfg MonteCarloConfig, logger *zap.Logger) ([]TrialResult, error) {
	if cfg.Trials <= 0 {
		return nil, dynamo.InvalidArgument("trials must be positive, got %d", cfg.Trials)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	names := reg.ListSolvers()
	if len(names) == 0 {
		return nil, dynamo.InvalidArgument("no solvers registered")
	}

	results := make([]TrialResult, cfg.Trials*len(names))
	g, gctx := errgroup.WithContext(ctx)
	if cfg.Workers > 0 {
		g.SetLimit(cfg.Workers)
	}
	for trial := 0; trial < cfg.Trials; trial++ {
		for k, name := range names {
			idx := trial*len(names) + k
			g.Go(func() error {
				results[idx] = runTrial(gctx, p, reg, name, trial, cfg.Seed+int64(idx))
				return nil
			})
		}
	}
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return results, err
	}

	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
		}
	}
	logger.Info("monte carlo finished",
		zap.Int("nodes", p.Size()),
		zap.Int("trials", cfg.Trials),
		zap.Strings("solvers", names),
		zap.Int("failed", failed),
	)
	return results, nil
}

func runTrial(ctx context.Context, p *solver.Problem, reg *experiment.Registry, name string, trial int, seed int64) TrialResult {
	out := TrialResult{Trial: trial, Solver: name}
	s, err := reg.GetSolver(name)
	if err != nil {
		out.Err = err
		return out
	}
	start := time.Now()
	res, err := s.Solve(ctx, p, rand.New(rand.NewSource(seed)))
	out.Elapsed = time.Since(start)
	if err != nil {
		out.Err = err
		return out
	}
	out.CutValue = res.BestCutValue
	out.CutWeight = res.CutWeight
	out.Assignment = res.BestAssignment
	return out
}

// Summary aggregates the trials of one solver.
type Summary struct {
	Solver   string
	Trials   int
	Failures int
	Mean     float64
	Std      float64
	Best     float64
	// HitRate is the fraction of successful trials that reached the best
	// cut value found by any solver.
	HitRate float64
}

const hitTolerance = 1e-9

// MonteCarloStats summarizes results per solver, in first-seen order.
func MonteCarloStats(results []TrialResult) []Summary {
	best := math.Inf(-1)
	for _, r := range results {
		if r.Err == nil && r.CutValue > best {
			best = r.CutValue
		}
	}

	var order []string
	values := make(map[string][]float64)
	failures := make(map[string]int)
	for _, r := range results {
		if _, seen := values[r.Solver]; !seen {
			order = append(order, r.Solver)
			values[r.Solver] = nil
		}
		if r.Err != nil {
			failures[r.Solver]++
			continue
		}
		values[r.Solver] = append(values[r.Solver], r.CutValue)
	}

	out := make([]Summary, 0, len(order))
	for _, name := range order {
		vs := values[name]
		s := Summary{Solver: name, Trials: len(vs) + failures[name], Failures: failures[name]}
		if len(vs) > 0 {
			s.Best = math.Inf(-1)
			hits := 0
			for _, v := range vs {
				s.Mean += v
				s.Best = math.Max(s.Best, v)
				if v >= best-hitTolerance {
					hits++
				}
			}
			s.Mean /= float64(len(vs))
			s.Std = metrics.Std(vs)
			s.HitRate = float64(hits) / float64(len(vs))
		}
		out = append(out, s)
	}
	return out
}

// Scenario is a scripted batch of Monte Carlo studies.
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Steps       []ScenarioStep `yaml:"steps"`
}

// ScenarioStep overrides the base configuration. Zero values keep the base.
type ScenarioStep struct {
	Name           string  `yaml:"name"`
	Preset         string  `yaml:"preset"`
	Seed           *int64  `yaml:"seed"`
	Nodes          int     `yaml:"nodes"`
	Encoding       string  `yaml:"encoding"`
	CBMTemperature float64 `yaml:"cbm_temperature"`
	SBMTemperature float64 `yaml:"sbm_temperature"`
	Iterations     int     `yaml:"iterations"`
	TEnd           float64 `yaml:"t_end"`
	Trials         int     `yaml:"trials"`
}

func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, fmt.Errorf("parse scenario %s: %w", path, err)
	}
	if len(scenario.Steps) == 0 {
		return nil, dynamo.InvalidArgument("scenario %s has no steps", path)
	}
	return &scenario, nil
}

// Config applies the step to base, or to its preset when one is named.
func (st ScenarioStep) Config(base *config.Config) (*config.Config, error) {
	cfg := base.Clone()
	if st.Preset != "" {
		if cfg = config.GetPreset(st.Preset); cfg == nil {
			return nil, dynamo.InvalidArgument("unknown preset %q", st.Preset)
		}
		cfg.Storage = base.Storage
	}
	if st.Seed != nil {
		cfg.Seed = *st.Seed
	}
	if st.Nodes != 0 {
		cfg.Graph.Nodes = st.Nodes
	}
	if st.Encoding != "" {
		cfg.Graph.Encoding = st.Encoding
	}
	if st.CBMTemperature != 0 {
		cfg.CBM.Temperature = st.CBMTemperature
	}
	if st.SBMTemperature != 0 {
		cfg.SBM.Temperature = st.SBMTemperature
	}
	if st.Iterations != 0 {
		cfg.SBM.Iterations = st.Iterations
	}
	if st.TEnd != 0 {
		cfg.CBM.TEnd = st.TEnd
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

type StepResult struct {
	Name      string
	Config    *config.Config
	Results   []TrialResult
	Summaries []Summary
}

// RunScenario executes the steps in order. Each step draws its own graph from
// its seed. A configuration error stops the scenario.
func RunScenario(ctx context.Context, sc *Scenario, base *config.Config, logger *zap.Logger) ([]StepResult, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	out := make([]StepResult, 0, len(sc.Steps))

	for i, step := range sc.Steps {
		name := step.Name
		if name == "" {
			name = fmt.Sprintf("step %d", i+1)
		}
		cfg, err := step.Config(base)
		if err != nil {
			return out, fmt.Errorf("%s: %w", name, err)
		}

		o := experiment.New(cfg.ExperimentConfig(cfg.Graph.Nodes), cfg.Registry(), experiment.WithLogger(logger))
		p, err := o.BuildProblem(rand.New(rand.NewSource(cfg.Seed)), cfg.Graph.Nodes)
		if err != nil {
			return out, fmt.Errorf("%s: %w", name, err)
		}

		trials := step.Trials
		if trials == 0 {
			trials = 1
		}
		logger.Info("scenario step", zap.String("scenario", sc.Name), zap.String("step", name), zap.Int("nodes", cfg.Graph.Nodes))
		results, err := RunMonteCarlo(ctx, p, cfg.Registry(),
			MonteCarloConfig{Trials: trials, Seed: cfg.Seed, Workers: cfg.Compare.Workers}, logger)
		if err != nil {
			return out, fmt.Errorf("%s: %w", name, err)
		}
		out = append(out, StepResult{Name: name, Config: cfg, Results: results, Summaries: MonteCarloStats(results)})
	}

	return out, nil
}
