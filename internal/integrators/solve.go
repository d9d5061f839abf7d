package integrators

import (
	"context"
	"math"

	"github.com/MPA2620/DSML-Final-Project/internal/dynamo"
)

// Options controls the adaptive span driver.
type Options struct {
	Tolerance dynamo.Tolerance
	// FirstStep is the initial trial step; zero selects one from the RHS scale.
	FirstStep float64
	// MaxStep caps every internal step; zero means the span length.
	MaxStep float64
	// MaxSteps bounds the number of attempted (accepted + rejected) steps.
	MaxSteps int
}

func DefaultOptions() Options {
	return Options{
		Tolerance: dynamo.DefaultTolerance(),
		MaxSteps:  1_000_000,
	}
}

// Solution holds the integrator state sampled on the evaluation grid.
type Solution struct {
	Times    []float64
	States   []dynamo.State
	Accepted int
	Rejected int
}

// Solve integrates sys from x0 over span with an adaptive pair, sampling the
// state at every point of tEval. Internal steps are clipped so that each
// evaluation point is hit exactly; the grid is otherwise independent of the
// step size. Failing to meet the tolerance returns an error matching
// dynamo.ErrNumericalFailure and no partial solution.
func Solve(ctx context.Context, sys dynamo.System, integ dynamo.AdaptiveIntegrator, span dynamo.Span, x0 dynamo.State, tEval []float64, opts Options) (*Solution, error) {
	if err := validate(sys, span, x0, tEval, opts); err != nil {
		return nil, err
	}

	maxStep := opts.MaxStep
	if maxStep <= 0 {
		maxStep = span.End - span.Start
	}

	sol := &Solution{
		Times:  make([]float64, 0, len(tEval)),
		States: make([]dynamo.State, 0, len(tEval)),
	}

	x := x0.Clone()
	t := span.Start
	dt := opts.FirstStep
	if dt <= 0 {
		dt = initialStep(sys, x, t, opts.Tolerance)
	}
	dt = math.Min(dt, maxStep)

	next := 0
	record := func() {
		for next < len(tEval) && tEval[next] <= t {
			sol.Times = append(sol.Times, tEval[next])
			sol.States = append(sol.States, x.Clone())
			next++
		}
	}
	record()

	steps := 0
	for next < len(tEval) {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		if steps >= opts.MaxSteps {
			return nil, dynamo.NumericalFailure(steps, t, x, dynamo.ErrStepBudget)
		}

		target := tEval[next]
		minStep := minimumStep(t)
		if target-t <= minStep {
			t = target
			record()
			continue
		}

		h := math.Min(dt, maxStep)
		hitsTarget := false
		if t+h >= target {
			h = target - t
			hitsTarget = true
		}
		if h < minStep {
			return nil, dynamo.NumericalFailure(steps, t, x, dynamo.ErrStepTooSmall)
		}

		xNew, errNorm, dtNext, err := integ.StepAdaptive(sys, x, t, h, opts.Tolerance)
		steps++
		if err != nil {
			return nil, dynamo.NumericalFailure(steps, t, x, err)
		}

		if errNorm > 1 {
			sol.Rejected++
			dt = dtNext
			continue
		}
		if !xNew.IsValid() {
			return nil, dynamo.NumericalFailure(steps, t, x, dynamo.ErrInvalidState)
		}

		sol.Accepted++
		x = xNew
		if hitsTarget {
			t = target
			dt = math.Max(dt, dtNext)
		} else {
			t += h
			dt = dtNext
		}
		record()
	}

	return sol, nil
}

// FixedStep drives a fixed-step integrator across the span, taking at most dt
// per step and landing on every evaluation point.
func FixedStep(ctx context.Context, sys dynamo.System, integ dynamo.Integrator, span dynamo.Span, x0 dynamo.State, tEval []float64, dt float64) (*Solution, error) {
	if dt <= 0 {
		return nil, dynamo.InvalidArgument("dt must be positive, got %g", dt)
	}
	opts := DefaultOptions()
	if err := validate(sys, span, x0, tEval, opts); err != nil {
		return nil, err
	}

	sol := &Solution{
		Times:  make([]float64, 0, len(tEval)),
		States: make([]dynamo.State, 0, len(tEval)),
	}
	x := x0.Clone()
	t := span.Start
	steps := 0
	for _, target := range tEval {
		for target-t > minimumStep(t) {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			default:
			}
			h := math.Min(dt, target-t)
			x = integ.Step(sys, x, t, h)
			steps++
			if !x.IsValid() {
				return nil, dynamo.NumericalFailure(steps, t, x, dynamo.ErrInvalidState)
			}
			t += h
			sol.Accepted++
		}
		t = target
		sol.Times = append(sol.Times, target)
		sol.States = append(sol.States, x.Clone())
	}
	return sol, nil
}

func validate(sys dynamo.System, span dynamo.Span, x0 dynamo.State, tEval []float64, opts Options) error {
	if err := span.Validate(); err != nil {
		return err
	}
	if len(tEval) == 0 {
		return dynamo.InvalidArgument("evaluation grid is empty")
	}
	for i, te := range tEval {
		if te < span.Start || te > span.End {
			return dynamo.InvalidArgument("evaluation point %g outside span [%g, %g]", te, span.Start, span.End)
		}
		if i > 0 && te <= tEval[i-1] {
			return dynamo.InvalidArgument("evaluation grid must be strictly increasing")
		}
	}
	if sys.StateDim() != len(x0) {
		return dynamo.ErrShapeMismatch
	}
	if opts.MaxSteps <= 0 {
		return dynamo.InvalidArgument("step budget must be positive, got %d", opts.MaxSteps)
	}
	if opts.Tolerance.RTol < 0 || opts.Tolerance.ATol < 0 || opts.Tolerance.RTol+opts.Tolerance.ATol == 0 {
		return dynamo.InvalidArgument("tolerances must be non-negative and not both zero")
	}
	return nil
}

// minimumStep is the smallest step that still moves t by a resolvable amount.
func minimumStep(t float64) float64 {
	return 10 * (math.Nextafter(t, math.Inf(1)) - t)
}

// initialStep follows the usual d0/d1 heuristic: a step that moves the state
// by about one percent of its scaled magnitude.
func initialStep(sys dynamo.System, x dynamo.State, t float64, tol dynamo.Tolerance) float64 {
	f0 := sys.Derive(x, t)
	d0, d1 := 0.0, 0.0
	for i := range x {
		scale := tol.ATol + tol.RTol*math.Abs(x[i])
		d0 += (x[i] / scale) * (x[i] / scale)
		d1 += (f0[i] / scale) * (f0[i] / scale)
	}
	if len(x) > 0 {
		d0 = math.Sqrt(d0 / float64(len(x)))
		d1 = math.Sqrt(d1 / float64(len(x)))
	}
	if d0 < 1e-5 || d1 < 1e-5 || math.IsInf(d1, 0) || math.IsNaN(d1) {
		return 1e-6
	}
	return 0.01 * d0 / d1
}
