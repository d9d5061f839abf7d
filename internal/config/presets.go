package config

import "sort"

// Presets are complete configurations derived from DefaultConfig.
var Presets = map[string]*Config{
	"small": preset(func(c *Config) {
		c.Graph.Nodes = 8
		c.CBM.TEnd = 5
		c.CBM.EvalSteps = 500
		c.SBM.Iterations = 500
		c.Compare.Sizes = []int{4, 8, 12}
	}),
	"paper": preset(func(c *Config) {
		c.Graph.Nodes = 20
		c.CBM.Temperature = 5
		c.SBM.Temperature = 5
		c.Compare.Sizes = []int{10, 20, 50, 100}
	}),
	"dense": preset(func(c *Config) {
		c.Graph.Nodes = 30
		c.Graph.EdgeProbability = 0.9
		c.Graph.WeightLo = 1
		c.Graph.WeightHi = 4
		c.Graph.Encoding = "maxcut"
		c.CBM.Temperature = 10
		c.SBM.Temperature = 2
		c.Compare.Sizes = []int{10, 20, 30}
	}),
	"hot": preset(func(c *Config) {
		c.CBM.Temperature = 20
		c.SBM.Temperature = 20
		c.SBM.Iterations = 2000
	}),
}

func preset(apply func(*Config)) *Config {
	c := DefaultConfig()
	apply(c)
	return c
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	return cfg.Clone()
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
