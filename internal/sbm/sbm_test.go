package sbm

import (
	"context"
	"math"
	"math/rand"
	"testing"

	. "github.com/onsi/gomega"

	"github.com/MPA2620/DSML-Final-Project/internal/dynamo"
	"github.com/MPA2620/DSML-Final-Project/internal/energy"
	"github.com/MPA2620/DSML-Final-Project/internal/graph"
	"github.com/MPA2620/DSML-Final-Project/internal/solver"
)

func k4(t *testing.T, enc solver.Encoding) *solver.Problem {
	t.Helper()
	g, err := graph.Generate(rand.New(rand.NewSource(1)), 4, 1.0, graph.WeightRange{Lo: 1, Hi: 2})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	p, err := solver.NewProblem(g, make([]float64, 4), enc)
	if err != nil {
		t.Fatalf("problem: %v", err)
	}
	return p
}

func TestSigmoid(t *testing.T) {
	g := NewWithT(t)
	g.Expect(Sigmoid(0)).To(Equal(0.5))
	g.Expect(Sigmoid(1000)).To(Equal(1.0))
	g.Expect(Sigmoid(-1000)).To(Equal(0.0))
	g.Expect(Sigmoid(2) + Sigmoid(-2)).To(BeNumerically("~", 1, 1e-12))
}

func TestSweep_UsesUpdatedState(t *testing.T) {
	g := NewWithT(t)
	// Unit 1 only switches on when unit 0 is already on in this sweep.
	w := [][]float64{{0, 1e6}, {1e6, 0}}
	b := []float64{1e6, -5e5}
	s := energy.Assignment{0, 0}

	Sweep(s, w, b, 1.0, rand.New(rand.NewSource(1)))

	g.Expect(s).To(Equal(energy.Assignment{1, 1}))
}

func TestSolve_HistoryIsMonotone(t *testing.T) {
	g := NewWithT(t)
	gr, err := graph.Generate(rand.New(rand.NewSource(7)), 12, 0.5, graph.WeightRange{Lo: -5, Hi: 5})
	g.Expect(err).NotTo(HaveOccurred())
	biases, err := graph.RandomBiases(rand.New(rand.NewSource(8)), 12, -1, 1)
	g.Expect(err).NotTo(HaveOccurred())
	p, err := solver.NewProblem(gr, biases, solver.EncodingIsing)
	g.Expect(err).NotTo(HaveOccurred())

	res, err := New(Config{Temperature: 0.7, Iterations: 200}).Solve(context.Background(), p, rand.New(rand.NewSource(3)))
	g.Expect(err).NotTo(HaveOccurred())

	g.Expect(res.Solver).To(Equal(Name))
	g.Expect(res.Trace).To(BeNil())
	g.Expect(res.History).To(HaveLen(200))
	for k := 1; k < len(res.History); k++ {
		g.Expect(res.History[k]).To(BeNumerically(">=", res.History[k-1]))
	}
	g.Expect(res.BestCutValue).To(Equal(res.History[len(res.History)-1]))

	e, err := energy.Energy(res.BestAssignment, p.Weights, p.Biases)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(res.BestCutValue).To(Equal(-e))
}

func TestSolve_CompleteGraphReachesMaxCut(t *testing.T) {
	g := NewWithT(t)
	p := k4(t, solver.EncodingMaxCut)

	res, err := New(Config{Temperature: 0.5, Iterations: 500}).Solve(context.Background(), p, rand.New(rand.NewSource(11)))
	g.Expect(err).NotTo(HaveOccurred())

	g.Expect(res.BestCutValue).To(BeNumerically("~", 4, 1e-9))
	g.Expect(res.CutWeight).To(BeNumerically("~", 4, 1e-9))
	g.Expect(res.BestAssignment.Ones()).To(Equal(2))
}

func TestSolve_Reproducible(t *testing.T) {
	g := NewWithT(t)
	p := k4(t, solver.EncodingIsing)
	cfg := Config{Temperature: 1, Iterations: 50}

	a, err := New(cfg).Solve(context.Background(), p, rand.New(rand.NewSource(42)))
	g.Expect(err).NotTo(HaveOccurred())
	b, err := New(cfg).Solve(context.Background(), p, rand.New(rand.NewSource(42)))
	g.Expect(err).NotTo(HaveOccurred())

	g.Expect(a.BestAssignment).To(Equal(b.BestAssignment))
	g.Expect(a.History).To(Equal(b.History))
}

func TestSolve_InvalidArguments(t *testing.T) {
	p := k4(t, solver.EncodingMaxCut)

	tests := []struct {
		name string
		cfg  Config
	}{
		{"zero temperature", Config{Temperature: 0, Iterations: 10}},
		{"negative temperature", Config{Temperature: -1, Iterations: 10}},
		{"nan temperature", Config{Temperature: math.NaN(), Iterations: 10}},
		{"zero iterations", Config{Temperature: 1, Iterations: 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewWithT(t)
			rng := rand.New(rand.NewSource(5))
			res, err := New(tt.cfg).Solve(context.Background(), p, rng)
			g.Expect(res).To(BeNil())
			g.Expect(err).To(MatchError(dynamo.ErrInvalidArgument))
			g.Expect(rng.Int63()).To(Equal(rand.New(rand.NewSource(5)).Int63()))
		})
	}
}

func TestSolve_Cancelled(t *testing.T) {
	g := NewWithT(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(DefaultConfig()).Solve(ctx, k4(t, solver.EncodingMaxCut), rand.New(rand.NewSource(1)))
	g.Expect(err).To(MatchError(context.Canceled))
}
