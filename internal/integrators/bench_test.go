package integrators

import (
	"context"
	"testing"

	"github.com/MPA2620/DSML-Final-Project/internal/dynamo"
)

// decay is x' = -x in n dimensions.
type decay struct{ n int }

func (d decay) StateDim() int { return d.n }

func (d decay) Derive(x dynamo.State, t float64) dynamo.State {
	dx := make(dynamo.State, len(x))
	for i, v := range x {
		dx[i] = -v
	}
	return dx
}

func ones(n int) dynamo.State {
	x := make(dynamo.State, n)
	for i := range x {
		x[i] = 1
	}
	return x
}

func BenchmarkStep(b *testing.B) {
	for _, name := range Names() {
		b.Run(name, func(b *testing.B) {
			integ, _ := Lookup(name)
			dyn := decay{n: 64}
			x := ones(64)

			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				x = integ.Step(dyn, x, 0, 1e-3)
			}
		})
	}
}

func BenchmarkSolve(b *testing.B) {
	span := dynamo.Span{Start: 0, End: 5}
	tEval := span.Linspace(100)
	for _, integ := range []dynamo.AdaptiveIntegrator{NewRK23(), NewRK45()} {
		b.Run(integ.Name(), func(b *testing.B) {
			for i := 0; i < b.N; i++ {
				if _, err := Solve(context.Background(), decay{n: 64}, integ, span, ones(64), tEval, DefaultOptions()); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}
