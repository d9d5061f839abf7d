package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/MPA2620/DSML-Final-Project/internal/cbm"
	"github.com/MPA2620/DSML-Final-Project/internal/dynamo"
	"github.com/MPA2620/DSML-Final-Project/internal/experiment"
	"github.com/MPA2620/DSML-Final-Project/internal/graph"
	"github.com/MPA2620/DSML-Final-Project/internal/integrators"
	"github.com/MPA2620/DSML-Final-Project/internal/sbm"
	"github.com/MPA2620/DSML-Final-Project/internal/solver"
)

const (
	DefaultNodes       = 10
	DefaultProbability = 0.5
	DefaultWeightLo    = -5
	DefaultWeightHi    = 5
	DefaultTemperature = 1.0
	DefaultTEnd        = 10.0
	DefaultEvalSteps   = 1000
	DefaultIterations  = 1000
	DefaultSeed        = 42
	DefaultDir         = ".maxcut"
)

// DefaultCBMTemperature keeps the chaotic dynamics integrable at the
// default comparison sizes. At T=1 the rk23 step collapses beyond n~50.
const DefaultCBMTemperature = 5.0

type Config struct {
	Seed    int64         `yaml:"seed"`
	Graph   GraphConfig   `yaml:"graph"`
	CBM     CBMConfig     `yaml:"cbm"`
	SBM     SBMConfig     `yaml:"sbm"`
	Compare CompareConfig `yaml:"compare"`
	Storage StorageConfig `yaml:"storage"`
}

type GraphConfig struct {
	Nodes           int     `yaml:"nodes" validate:"gt=0"`
	EdgeProbability float64 `yaml:"edge_probability" validate:"gte=0,lte=1"`
	WeightLo        int     `yaml:"weight_lo"`
	WeightHi        int     `yaml:"weight_hi" validate:"gtfield=WeightLo"`
	BiasLo          float64 `yaml:"bias_lo"`
	BiasHi          float64 `yaml:"bias_hi" validate:"gtefield=BiasLo"`
	Encoding        string  `yaml:"encoding" validate:"oneof=ising maxcut"`
}

type CBMConfig struct {
	Temperature float64 `yaml:"temperature" validate:"gt=0"`
	TStart      float64 `yaml:"t_start"`
	TEnd        float64 `yaml:"t_end" validate:"gtfield=TStart"`
	EvalSteps   int     `yaml:"eval_steps" validate:"gt=0"`
	Integrator  string  `yaml:"integrator" validate:"oneof=euler rk4 rk23 rk45"`
	Dt          float64 `yaml:"dt" validate:"gte=0"`
	RTol        float64 `yaml:"rtol" validate:"gte=0"`
	ATol        float64 `yaml:"atol" validate:"gte=0"`
	MaxSteps    int     `yaml:"max_steps" validate:"gt=0"`
}

type SBMConfig struct {
	Temperature float64 `yaml:"temperature" validate:"gt=0"`
	Iterations  int     `yaml:"iterations" validate:"gt=0"`
}

type CompareConfig struct {
	Sizes   []int `yaml:"sizes" validate:"min=1,dive,gt=0"`
	Workers int   `yaml:"workers" validate:"gte=0"`
}

type StorageConfig struct {
	Dir       string `yaml:"dir" validate:"required"`
	HistoryDB string `yaml:"history_db"`
}

func DefaultConfig() *Config {
	tol := dynamo.DefaultTolerance()
	return &Config{
		Seed: DefaultSeed,
		Graph: GraphConfig{
			Nodes:           DefaultNodes,
			EdgeProbability: DefaultProbability,
			WeightLo:        DefaultWeightLo,
			WeightHi:        DefaultWeightHi,
			BiasLo:          -1,
			BiasHi:          1,
			Encoding:        string(solver.EncodingIsing),
		},
		CBM: CBMConfig{
			Temperature: DefaultCBMTemperature,
			TEnd:        DefaultTEnd,
			EvalSteps:   DefaultEvalSteps,
			Integrator:  "rk23",
			Dt:          1e-3,
			RTol:        tol.RTol,
			ATol:        tol.ATol,
			MaxSteps:    integrators.DefaultOptions().MaxSteps,
		},
		SBM: SBMConfig{
			Temperature: DefaultTemperature,
			Iterations:  DefaultIterations,
		},
		Compare: CompareConfig{
			Sizes:   []int{10, 20, 50, 100},
			Workers: 4,
		},
		Storage: StorageConfig{
			Dir:       DefaultDir,
			HistoryDB: "history.db",
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

var validate = validator.New()

// Validate checks every section. Violations are reported as
// dynamo.ErrInvalidArgument listing the offending fields.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s failed %s=%s (got %v)", fe.Namespace(), fe.Tag(), fe.Param(), fe.Value()))
	}
	return dynamo.InvalidArgument("%s", strings.Join(msgs, "; "))
}

func (c *Config) CBMSolverConfig() cbm.Config {
	out := cbm.DefaultConfig()
	out.Temperature = c.CBM.Temperature
	out.Span = dynamo.Span{Start: c.CBM.TStart, End: c.CBM.TEnd}
	out.EvalSteps = c.CBM.EvalSteps
	out.Integrator = c.CBM.Integrator
	out.Dt = c.CBM.Dt
	out.Options.Tolerance = dynamo.Tolerance{RTol: c.CBM.RTol, ATol: c.CBM.ATol}
	out.Options.MaxSteps = c.CBM.MaxSteps
	return out
}

func (c *Config) SBMSolverConfig() sbm.Config {
	return sbm.Config{Temperature: c.SBM.Temperature, Iterations: c.SBM.Iterations}
}

// ExperimentConfig builds the comparison sweep. sizes overrides
// Compare.Sizes when non-empty.
func (c *Config) ExperimentConfig(sizes ...int) experiment.Config {
	if len(sizes) == 0 {
		sizes = c.Compare.Sizes
	}
	return experiment.Config{
		Sizes:           append([]int(nil), sizes...),
		EdgeProbability: c.Graph.EdgeProbability,
		Weights:         graph.WeightRange{Lo: c.Graph.WeightLo, Hi: c.Graph.WeightHi},
		BiasLo:          c.Graph.BiasLo,
		BiasHi:          c.Graph.BiasHi,
		Encoding:        solver.Encoding(c.Graph.Encoding),
		Seed:            c.Seed,
		Workers:         c.Compare.Workers,
	}
}

func (c *Config) Registry() *experiment.Registry {
	return experiment.DefaultRegistry(c.CBMSolverConfig(), c.SBMSolverConfig())
}

func (c *Config) Clone() *Config {
	out := *c
	out.Compare.Sizes = append([]int(nil), c.Compare.Sizes...)
	return &out
}
