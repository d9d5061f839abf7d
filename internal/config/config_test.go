package config

import (
	"context"
	"errors"
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/MPA2620/DSML-Final-Project/internal/cbm"
	"github.com/MPA2620/DSML-Final-Project/internal/dynamo"
	"github.com/MPA2620/DSML-Final-Project/internal/experiment"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if cfg.CBM.Integrator != "rk23" {
		t.Errorf("expected integrator rk23, got %s", cfg.CBM.Integrator)
	}
	if cfg.Graph.WeightLo != -5 || cfg.Graph.WeightHi != 5 {
		t.Errorf("expected weights [-5,5), got [%d,%d)", cfg.Graph.WeightLo, cfg.Graph.WeightHi)
	}
}

func TestDefaultConfig_CBMIntegratesAtDefaultSizes(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.CBM.Temperature != DefaultCBMTemperature {
		t.Fatalf("expected cbm temperature %g, got %g", DefaultCBMTemperature, cfg.CBM.Temperature)
	}

	sizes := []int{50}
	if !testing.Short() {
		sizes = append(sizes, cfg.Compare.Sizes[len(cfg.Compare.Sizes)-1])
	}
	orch := experiment.New(cfg.ExperimentConfig(), cfg.Registry())
	s := cbm.New(cfg.CBMSolverConfig())

	for _, n := range sizes {
		p, err := orch.BuildProblem(rand.New(rand.NewSource(cfg.Seed)), n)
		if err != nil {
			t.Fatalf("n=%d: build problem: %v", n, err)
		}
		res, err := s.Solve(context.Background(), p, rand.New(rand.NewSource(cfg.Seed)))
		if err != nil {
			t.Fatalf("n=%d: default cbm failed: %v", n, err)
		}
		if len(res.BestAssignment) != n {
			t.Errorf("n=%d: expected %d units, got %d", n, n, len(res.BestAssignment))
		}
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero nodes", func(c *Config) { c.Graph.Nodes = 0 }},
		{"probability above one", func(c *Config) { c.Graph.EdgeProbability = 1.1 }},
		{"empty weight range", func(c *Config) { c.Graph.WeightHi = c.Graph.WeightLo }},
		{"inverted bias range", func(c *Config) { c.Graph.BiasLo, c.Graph.BiasHi = 1, -1 }},
		{"unknown encoding", func(c *Config) { c.Graph.Encoding = "qubo" }},
		{"zero cbm temperature", func(c *Config) { c.CBM.Temperature = 0 }},
		{"negative sbm temperature", func(c *Config) { c.SBM.Temperature = -1 }},
		{"inverted span", func(c *Config) { c.CBM.TStart, c.CBM.TEnd = 5, 1 }},
		{"zero eval steps", func(c *Config) { c.CBM.EvalSteps = 0 }},
		{"unknown integrator", func(c *Config) { c.CBM.Integrator = "verlet" }},
		{"zero iterations", func(c *Config) { c.SBM.Iterations = 0 }},
		{"no sizes", func(c *Config) { c.Compare.Sizes = nil }},
		{"negative size", func(c *Config) { c.Compare.Sizes = []int{4, -2} }},
		{"no storage dir", func(c *Config) { c.Storage.Dir = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if !errors.Is(err, dynamo.ErrInvalidArgument) {
				t.Errorf("expected ErrInvalidArgument, got %v", err)
			}
		})
	}
}

func TestSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg.yaml")

	cfg := DefaultConfig()
	cfg.Seed = 7
	cfg.CBM.Integrator = "rk45"
	cfg.Compare.Sizes = []int{3, 6}
	if err := Save(path, cfg); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.Seed != 7 || loaded.CBM.Integrator != "rk45" {
		t.Errorf("round trip lost fields: %+v", loaded)
	}
	if len(loaded.Compare.Sizes) != 2 || loaded.Compare.Sizes[1] != 6 {
		t.Errorf("expected sizes [3 6], got %v", loaded.Compare.Sizes)
	}
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg.yaml")
	if err := os.WriteFile(path, []byte("cbm:\n  temperature: 3\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.CBM.Temperature != 3 {
		t.Errorf("expected temperature 3, got %f", cfg.CBM.Temperature)
	}
	if cfg.CBM.EvalSteps != DefaultEvalSteps {
		t.Errorf("expected default eval steps, got %d", cfg.CBM.EvalSteps)
	}
}

func TestLoad_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg.yaml")
	if err := os.WriteFile(path, []byte("sbm:\n  temperature: 0\n"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(path); !errors.Is(err, dynamo.ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument, got %v", err)
	}
}

func TestSolverConfigs(t *testing.T) {
	cfg := DefaultConfig()
	cfg.CBM.TStart, cfg.CBM.TEnd = 1, 3

	c := cfg.CBMSolverConfig()
	if err := c.Validate(); err != nil {
		t.Fatalf("cbm config invalid: %v", err)
	}
	if c.Span.Start != 1 || c.Span.End != 3 {
		t.Errorf("expected span [1,3], got %+v", c.Span)
	}

	if err := cfg.SBMSolverConfig().Validate(); err != nil {
		t.Errorf("sbm config invalid: %v", err)
	}

	e := cfg.ExperimentConfig(5)
	if len(e.Sizes) != 1 || e.Sizes[0] != 5 {
		t.Errorf("expected sizes override [5], got %v", e.Sizes)
	}
	if err := e.Validate(); err != nil {
		t.Errorf("experiment config invalid: %v", err)
	}
}

func TestGetPreset(t *testing.T) {
	cfg := GetPreset("small")
	if cfg == nil {
		t.Fatal("expected preset, got nil")
	}
	if cfg.Graph.Nodes != 8 {
		t.Errorf("expected 8 nodes, got %d", cfg.Graph.Nodes)
	}

	cfg.Compare.Sizes[0] = 99
	if Presets["small"].Compare.Sizes[0] == 99 {
		t.Error("preset was mutated through the returned copy")
	}
}

func TestGetPreset_NotFound(t *testing.T) {
	if cfg := GetPreset("nonexistent"); cfg != nil {
		t.Error("expected nil for nonexistent preset")
	}
}

func TestPresetsAreValid(t *testing.T) {
	names := ListPresets()
	if len(names) != len(Presets) {
		t.Fatalf("expected %d presets, got %d", len(Presets), len(names))
	}
	for _, name := range names {
		if err := GetPreset(name).Validate(); err != nil {
			t.Errorf("preset %s invalid: %v", name, err)
		}
	}
}
