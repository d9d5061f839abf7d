package experiment

import (
	"fmt"

	"github.com/MPA2620/DSML-Final-Project/internal/cbm"
	"github.com/MPA2620/DSML-Final-Project/internal/integrators"
	"github.com/MPA2620/DSML-Final-Project/internal/sbm"
	"github.com/MPA2620/DSML-Final-Project/internal/solver"
)

// Registry maps solver names to factories. Every run gets a fresh solver.
type Registry struct {
	solvers map[string]func() solver.Solver
	order   []string
}

func NewRegistry() *Registry {
	return &Registry{solvers: make(map[string]func() solver.Solver)}
}

// DefaultRegistry registers the chaotic and the stochastic solver, in that order.
func DefaultRegistry(cbmCfg cbm.Config, sbmCfg sbm.Config) *Registry {
	r := NewRegistry()
	r.Register(cbm.Name, func() solver.Solver { return cbm.New(cbmCfg) })
	r.Register(sbm.Name, func() solver.Solver { return sbm.New(sbmCfg) })
	return r
}

// Register adds or replaces a factory. Replacing keeps the original position.
func (r *Registry) Register(name string, fn func() solver.Solver) {
	if _, ok := r.solvers[name]; !ok {
		r.order = append(r.order, name)
	}
	r.solvers[name] = fn
}

func (r *Registry) GetSolver(name string) (solver.Solver, error) {
	fn, ok := r.solvers[name]
	if !ok {
		return nil, fmt.Errorf("unknown solver: %s", name)
	}
	return fn(), nil
}

// ListSolvers returns solver names in registration order.
func (r *Registry) ListSolvers() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

func (r *Registry) ListIntegrators() []string {
	return integrators.Names()
}
