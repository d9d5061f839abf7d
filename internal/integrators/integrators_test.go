package integrators

import (
	"context"
	"math"
	"testing"

	. "github.com/onsi/gomega"

	"github.com/MPA2620/DSML-Final-Project/internal/dynamo"
)

type harmonicOscillator struct{}

func (h *harmonicOscillator) StateDim() int { return 2 }

func (h *harmonicOscillator) Derive(x dynamo.State, t float64) dynamo.State {
	return dynamo.State{x[1], -x[0]}
}

func (h *harmonicOscillator) Energy(x dynamo.State) float64 {
	return 0.5 * (x[0]*x[0] + x[1]*x[1])
}

// relay flips its velocity sign when x crosses level.
type relay struct {
	level float64
	speed float64
}

func (r *relay) StateDim() int { return 1 }

func (r *relay) Derive(x dynamo.State, t float64) dynamo.State {
	if x[0] > r.level {
		return dynamo.State{-r.speed}
	}
	return dynamo.State{r.speed}
}

func TestRK4Accuracy(t *testing.T) {
	dyn := &harmonicOscillator{}
	integ := NewRK4()

	x := dynamo.State{1.0, 0.0}
	dt := 0.01
	steps := 100

	for i := 0; i < steps; i++ {
		x = integ.Step(dyn, x, float64(i)*dt, dt)
	}

	expectedX := math.Cos(float64(steps) * dt)
	expectedV := -math.Sin(float64(steps) * dt)

	if math.Abs(x[0]-expectedX) > 1e-4 {
		t.Errorf("position error too large: got %.6f, expected %.6f", x[0], expectedX)
	}
	if math.Abs(x[1]-expectedV) > 1e-4 {
		t.Errorf("velocity error too large: got %.6f, expected %.6f", x[1], expectedV)
	}
}

func TestEulerStep(t *testing.T) {
	g := NewWithT(t)
	x := NewEuler().Step(&harmonicOscillator{}, dynamo.State{1, 0}, 0, 0.1)
	g.Expect(x).To(Equal(dynamo.State{1, -0.1}))
}

func TestExplicit_NamesAndStages(t *testing.T) {
	g := NewWithT(t)
	g.Expect(NewEuler().Name()).To(Equal("euler"))
	g.Expect(NewEuler().Stages()).To(Equal(1))
	g.Expect(NewRK4().Name()).To(Equal("rk4"))
	g.Expect(NewRK4().Stages()).To(Equal(4))
}

func TestExplicit_DoesNotMutateInput(t *testing.T) {
	g := NewWithT(t)
	x := dynamo.State{1, 0}
	integ := NewRK4()
	first := integ.Step(&harmonicOscillator{}, x, 0, 0.1)
	g.Expect(x).To(Equal(dynamo.State{1, 0}))
	// Reused scratch buffers give the same answer on a repeat call.
	g.Expect(integ.Step(&harmonicOscillator{}, x, 0, 0.1)).To(Equal(first))
}

func TestAdaptiveStep(t *testing.T) {
	for _, integ := range []dynamo.AdaptiveIntegrator{NewRK23(), NewRK45()} {
		t.Run(integ.Name(), func(t *testing.T) {
			g := NewWithT(t)
			tol := dynamo.Tolerance{RTol: 1e-8, ATol: 1e-10}

			x, errNorm, newDt, err := integ.StepAdaptive(&harmonicOscillator{}, dynamo.State{1, 0}, 0, 0.1, tol)

			g.Expect(err).NotTo(HaveOccurred())
			g.Expect(x.IsValid()).To(BeTrue())
			g.Expect(errNorm).To(BeNumerically(">", 0))
			g.Expect(newDt).To(BeNumerically(">", 0))

			_, smallNorm, _, err := integ.StepAdaptive(&harmonicOscillator{}, dynamo.State{1, 0}, 0, 0.001, tol)
			g.Expect(err).NotTo(HaveOccurred())
			g.Expect(smallNorm).To(BeNumerically("<", errNorm))
		})
	}
}

func TestAdaptiveStep_ShapeMismatch(t *testing.T) {
	g := NewWithT(t)
	_, _, _, err := NewRK23().StepAdaptive(&harmonicOscillator{}, dynamo.State{1}, 0, 0.1, dynamo.DefaultTolerance())
	g.Expect(err).To(MatchError(dynamo.ErrShapeMismatch))
}

func TestRK45_EnergyConservation(t *testing.T) {
	integrator := NewRK45()
	dyn := &harmonicOscillator{}
	x0 := dynamo.State{1.0, 0.0}

	initialEnergy := dyn.Energy(x0)
	x := x0.Clone()
	dt := 0.01

	for i := 0; i < 10000; i++ {
		x = integrator.Step(dyn, x, float64(i)*dt, dt)
	}

	drift := math.Abs(dyn.Energy(x)-initialEnergy) / initialEnergy
	if drift > 1e-6 {
		t.Errorf("RK45 energy drift too high: %e", drift)
	}
}

func TestSolve_HarmonicOscillator(t *testing.T) {
	span := dynamo.Span{Start: 0, End: 2 * math.Pi}
	tEval := span.Linspace(50)
	opts := DefaultOptions()
	opts.Tolerance = dynamo.Tolerance{RTol: 1e-7, ATol: 1e-9}

	for _, integ := range []dynamo.AdaptiveIntegrator{NewRK23(), NewRK45()} {
		t.Run(integ.Name(), func(t *testing.T) {
			g := NewWithT(t)

			sol, err := Solve(context.Background(), &harmonicOscillator{}, integ, span, dynamo.State{1, 0}, tEval, opts)
			g.Expect(err).NotTo(HaveOccurred())
			g.Expect(sol.Times).To(Equal(tEval))
			g.Expect(sol.States).To(HaveLen(len(tEval)))
			g.Expect(sol.Accepted).To(BeNumerically(">", 0))

			for i, te := range sol.Times {
				g.Expect(sol.States[i][0]).To(BeNumerically("~", math.Cos(te), 1e-4))
			}
		})
	}
}

func TestSolve_EvaluationGridIndependentOfMaxStep(t *testing.T) {
	g := NewWithT(t)
	span := dynamo.Span{Start: 0, End: 1}
	tEval := span.Linspace(7)

	opts := DefaultOptions()
	opts.MaxStep = 0.013

	sol, err := Solve(context.Background(), &harmonicOscillator{}, NewRK23(), span, dynamo.State{1, 0}, tEval, opts)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(sol.Times).To(Equal(tEval))
	g.Expect(sol.Accepted).To(BeNumerically(">=", 77))
}

func TestSolve_DiscontinuousRelay(t *testing.T) {
	g := NewWithT(t)
	span := dynamo.Span{Start: 0, End: 5}
	tEval := span.Linspace(100)

	sol, err := Solve(context.Background(), &relay{level: 0.5, speed: 1}, NewRK23(), span, dynamo.State{0}, tEval, DefaultOptions())
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(sol.States).To(HaveLen(100))
	g.Expect(sol.Rejected).To(BeNumerically(">", 0))

	final := sol.States[len(sol.States)-1][0]
	g.Expect(final).To(BeNumerically("~", 0.5, 0.05))
}

func TestSolve_StepTooSmall(t *testing.T) {
	g := NewWithT(t)
	span := dynamo.Span{Start: 1, End: 2}

	sol, err := Solve(context.Background(), &relay{level: 0.5, speed: 1e300}, NewRK23(), span, dynamo.State{0}, span.Linspace(10), DefaultOptions())
	g.Expect(sol).To(BeNil())
	g.Expect(err).To(MatchError(dynamo.ErrNumericalFailure))
	g.Expect(err).To(MatchError(dynamo.ErrStepTooSmall))
}

func TestSolve_StepBudget(t *testing.T) {
	g := NewWithT(t)
	span := dynamo.Span{Start: 0, End: 100}
	opts := DefaultOptions()
	opts.MaxSteps = 3
	opts.MaxStep = 0.1

	_, err := Solve(context.Background(), &harmonicOscillator{}, NewRK45(), span, dynamo.State{1, 0}, span.Linspace(10), opts)
	g.Expect(err).To(MatchError(dynamo.ErrNumericalFailure))
	g.Expect(err).To(MatchError(dynamo.ErrStepBudget))

	var simErr *dynamo.SimulationError
	g.Expect(err).To(BeAssignableToTypeOf(simErr))
}

func TestSolve_InvalidArguments(t *testing.T) {
	span := dynamo.Span{Start: 0, End: 1}
	x0 := dynamo.State{1, 0}

	tests := []struct {
		name  string
		span  dynamo.Span
		x0    dynamo.State
		tEval []float64
		want  error
	}{
		{"inverted span", dynamo.Span{Start: 1, End: 0}, x0, []float64{0.5}, dynamo.ErrInvalidArgument},
		{"empty grid", span, x0, nil, dynamo.ErrInvalidArgument},
		{"grid outside span", span, x0, []float64{0, 2}, dynamo.ErrInvalidArgument},
		{"unsorted grid", span, x0, []float64{0.5, 0.2}, dynamo.ErrInvalidArgument},
		{"wrong dimension", span, dynamo.State{1}, []float64{0, 1}, dynamo.ErrShapeMismatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewWithT(t)
			_, err := Solve(context.Background(), &harmonicOscillator{}, NewRK23(), tt.span, tt.x0, tt.tEval, DefaultOptions())
			g.Expect(err).To(MatchError(tt.want))
		})
	}
}

func TestSolve_Canceled(t *testing.T) {
	g := NewWithT(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	span := dynamo.Span{Start: 0, End: 1}
	_, err := Solve(ctx, &harmonicOscillator{}, NewRK23(), span, dynamo.State{1, 0}, span.Linspace(5), DefaultOptions())
	g.Expect(err).To(MatchError(context.Canceled))
}

func TestFixedStep(t *testing.T) {
	g := NewWithT(t)
	span := dynamo.Span{Start: 0, End: 1}
	tEval := span.Linspace(11)

	sol, err := FixedStep(context.Background(), &harmonicOscillator{}, NewRK4(), span, dynamo.State{1, 0}, tEval, 0.01)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(sol.Times).To(Equal(tEval))
	g.Expect(sol.States[10][0]).To(BeNumerically("~", math.Cos(1), 1e-6))

	_, err = FixedStep(context.Background(), &harmonicOscillator{}, NewRK4(), span, dynamo.State{1, 0}, tEval, 0)
	g.Expect(err).To(MatchError(dynamo.ErrInvalidArgument))
}

func TestLookup(t *testing.T) {
	g := NewWithT(t)

	g.Expect(Names()).To(Equal([]string{"euler", "rk23", "rk4", "rk45"}))
	g.Expect(IsAdaptive("rk23")).To(BeTrue())
	g.Expect(IsAdaptive("rk4")).To(BeFalse())
	g.Expect(IsAdaptive("nope")).To(BeFalse())

	integ, err := Lookup("rk45")
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(integ).To(BeAssignableToTypeOf(&RK45{}))

	_, err = Lookup("verlet")
	g.Expect(err).To(MatchError(dynamo.ErrInvalidArgument))
}
