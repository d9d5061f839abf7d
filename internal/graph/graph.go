package graph

import (
	"math"
	"math/rand"

	"github.com/MPA2620/DSML-Final-Project/internal/dynamo"
)

// Graph is a weighted undirected graph stored as a dense symmetric matrix.
type Graph struct {
	N       int
	Weights [][]float64
}

// WeightRange is the half-open integer interval [Lo, Hi) edge weights are drawn from.
type WeightRange struct {
	Lo int `yaml:"lo" json:"lo"`
	Hi int `yaml:"hi" json:"hi"`
}

func (r WeightRange) Validate() error {
	if r.Lo >= r.Hi {
		return dynamo.InvalidArgument("weight range must satisfy lo < hi, got [%d, %d)", r.Lo, r.Hi)
	}
	return nil
}

// New returns an edgeless graph on n nodes.
func New(n int) (*Graph, error) {
	if n <= 0 {
		return nil, dynamo.InvalidArgument("number of nodes must be positive, got %d", n)
	}
	w := make([][]float64, n)
	for i := range w {
		w[i] = make([]float64, n)
	}
	return &Graph{N: n, Weights: w}, nil
}

// FromMatrix copies w into a Graph after checking it is square, symmetric
// and has a zero diagonal.
func FromMatrix(w [][]float64) (*Graph, error) {
	g, err := New(len(w))
	if err != nil {
		return nil, err
	}
	for i := range w {
		if len(w[i]) != g.N {
			return nil, dynamo.ErrShapeMismatch
		}
		copy(g.Weights[i], w[i])
	}
	if err := g.Validate(); err != nil {
		return nil, err
	}
	return g, nil
}

// Generate draws a random graph. Each unordered pair i<j is visited in
// row-major order; with probability p an edge is added with an integer weight
// uniform over wr. Only the upper triangle is drawn, then mirrored.
func Generate(rng *rand.Rand, n int, p float64, wr WeightRange) (*Graph, error) {
	if n <= 0 {
		return nil, dynamo.InvalidArgument("number of nodes must be positive, got %d", n)
	}
	if math.IsNaN(p) || p < 0 || p > 1 {
		return nil, dynamo.InvalidArgument("edge probability must lie in [0, 1], got %g", p)
	}
	if err := wr.Validate(); err != nil {
		return nil, err
	}

	g, _ := New(n)
	span := wr.Hi - wr.Lo
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if rng.Float64() < p {
				g.Weights[i][j] = float64(wr.Lo + rng.Intn(span))
			}
		}
	}
	for i := 0; i < n; i++ {
		for j := 0; j < i; j++ {
			g.Weights[i][j] = g.Weights[j][i]
		}
	}
	return g, nil
}

// RandomBiases draws n biases uniformly from [lo, hi).
func RandomBiases(rng *rand.Rand, n int, lo, hi float64) ([]float64, error) {
	if n <= 0 {
		return nil, dynamo.InvalidArgument("number of biases must be positive, got %d", n)
	}
	if !(lo <= hi) {
		return nil, dynamo.InvalidArgument("bias range must satisfy lo <= hi, got [%g, %g)", lo, hi)
	}
	b := make([]float64, n)
	for i := range b {
		b[i] = lo + rng.Float64()*(hi-lo)
	}
	return b, nil
}

// Validate checks the symmetric, zero-diagonal invariants.
func (g *Graph) Validate() error {
	if g.N <= 0 || len(g.Weights) != g.N {
		return dynamo.ErrShapeMismatch
	}
	for i := 0; i < g.N; i++ {
		if len(g.Weights[i]) != g.N {
			return dynamo.ErrShapeMismatch
		}
		if g.Weights[i][i] != 0 {
			return dynamo.InvalidArgument("self-loop at node %d", i)
		}
		for j := 0; j < i; j++ {
			if g.Weights[i][j] != g.Weights[j][i] {
				return dynamo.InvalidArgument("weights not symmetric at (%d, %d)", i, j)
			}
		}
	}
	return nil
}

// EdgeCount returns the number of non-zero weights above the diagonal.
func (g *Graph) EdgeCount() int {
	count := 0
	for i := 0; i < g.N; i++ {
		for j := i + 1; j < g.N; j++ {
			if g.Weights[i][j] != 0 {
				count++
			}
		}
	}
	return count
}

func (g *Graph) TotalWeight() float64 {
	total := 0.0
	for i := 0; i < g.N; i++ {
		for j := i + 1; j < g.N; j++ {
			total += g.Weights[i][j]
		}
	}
	return total
}

// Degree returns the weighted degree of node i.
func (g *Graph) Degree(i int) float64 {
	d := 0.0
	for _, w := range g.Weights[i] {
		d += w
	}
	return d
}

// CutWeight sums the weights of edges whose endpoints lie on different sides
// of the partition given by s.
func (g *Graph) CutWeight(s []int8) (float64, error) {
	if len(s) != g.N {
		return 0, dynamo.ErrShapeMismatch
	}
	cut := 0.0
	for i := 0; i < g.N; i++ {
		for j := i + 1; j < g.N; j++ {
			if s[i] != s[j] {
				cut += g.Weights[i][j]
			}
		}
	}
	return cut, nil
}

// MaxCutProblem returns couplings J = -2W and biases b_i = sum_j W_ij. Under
// the Ising energy E(s) = -b.s - sum_{i<j} J_ij s_i s_j this gives
// -E(s) = CutWeight(s) for every assignment.
func MaxCutProblem(g *Graph) ([][]float64, []float64) {
	j := make([][]float64, g.N)
	b := make([]float64, g.N)
	for r := 0; r < g.N; r++ {
		j[r] = make([]float64, g.N)
		for c := 0; c < g.N; c++ {
			j[r][c] = -2 * g.Weights[r][c]
		}
		b[r] = g.Degree(r)
	}
	return j, b
}
