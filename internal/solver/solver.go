// Package solver defines the contract shared by the Max-Cut heuristics: the
// problem handed to every solver, the result it returns and the trace a
// continuous solver records along the way.
package solver

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/MPA2620/DSML-Final-Project/internal/dynamo"
	"github.com/MPA2620/DSML-Final-Project/internal/energy"
	"github.com/MPA2620/DSML-Final-Project/internal/graph"
)

// Encoding selects how a graph is turned into solver couplings.
type Encoding string

const (
	// EncodingIsing hands the graph weights and biases to the solvers as-is.
	EncodingIsing Encoding = "ising"
	// EncodingMaxCut uses graph.MaxCutProblem so that -E equals the cut weight.
	EncodingMaxCut Encoding = "maxcut"
)

// Problem is the read-only input given to every solver of a comparison.
type Problem struct {
	Graph    *graph.Graph
	Weights  [][]float64
	Biases   []float64
	Encoding Encoding
}

// NewProblem binds a graph and its biases under the given encoding. With
// EncodingMaxCut the biases argument is ignored.
func NewProblem(g *graph.Graph, biases []float64, enc Encoding) (*Problem, error) {
	if g == nil {
		return nil, dynamo.InvalidArgument("graph is nil")
	}
	switch enc {
	case EncodingIsing, "":
		if err := energy.CheckShape(g.N, g.Weights, biases); err != nil {
			return nil, err
		}
		return &Problem{Graph: g, Weights: g.Weights, Biases: biases, Encoding: EncodingIsing}, nil
	case EncodingMaxCut:
		j, b := graph.MaxCutProblem(g)
		return &Problem{Graph: g, Weights: j, Biases: b, Encoding: EncodingMaxCut}, nil
	default:
		return nil, dynamo.InvalidArgument("unknown encoding %q", enc)
	}
}

func (p *Problem) Size() int { return p.Graph.N }

// Evaluate returns the cut value -E(s) and the true crossing weight of s.
func (p *Problem) Evaluate(s energy.Assignment) (cutValue, cutWeight float64, err error) {
	e, err := energy.Energy(s, p.Weights, p.Biases)
	if err != nil {
		return 0, 0, err
	}
	cw, err := p.Graph.CutWeight(s)
	if err != nil {
		return 0, 0, err
	}
	return -e, cw, nil
}

// Sample is one point of a continuous trajectory.
type Sample struct {
	Time   float64
	State  dynamo.State
	Energy float64
}

// Trace is a time-ordered trajectory.
type Trace []Sample

func (tr Trace) Times() []float64 {
	ts := make([]float64, len(tr))
	for i, s := range tr {
		ts[i] = s.Time
	}
	return ts
}

func (tr Trace) Energies() []float64 {
	es := make([]float64, len(tr))
	for i, s := range tr {
		es[i] = s.Energy
	}
	return es
}

// Assignments reads every sample as a binary state.
func (tr Trace) Assignments() []energy.Assignment {
	out := make([]energy.Assignment, len(tr))
	for i, s := range tr {
		out[i] = energy.Binarize(s.State)
	}
	return out
}

// Result is what a solver returns. It is not modified after being returned.
type Result struct {
	Solver         string
	BestCutValue   float64
	BestAssignment energy.Assignment
	// CutWeight is the crossing weight of BestAssignment in the graph itself.
	CutWeight float64
	// Trace is only set by continuous solvers.
	Trace Trace
	// History holds the best cut value after each sweep of a discrete solver.
	History   []float64
	Converged bool
	Elapsed   time.Duration
}

func (r *Result) String() string {
	return fmt.Sprintf("%s: cut=%.4f weight=%.4f assignment=%s elapsed=%v",
		r.Solver, r.BestCutValue, r.CutWeight, r.BestAssignment, r.Elapsed)
}

// Solver is a randomized Max-Cut heuristic. Implementations draw every random
// number from rng, which must not be shared with a concurrent run.
type Solver interface {
	Name() string
	Solve(ctx context.Context, p *Problem, rng *rand.Rand) (*Result, error)
}
