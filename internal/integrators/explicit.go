package integrators

import "github.com/MPA2620/DSML-Final-Project/internal/dynamo"

// tableau holds the Butcher coefficients of an explicit Runge-Kutta method.
// a is strictly lower triangular: row s lists the weights of stages 0..s-1.
type tableau struct {
	a [][]float64
	b []float64
	c []float64
}

var (
	eulerTableau = tableau{
		a: [][]float64{{}},
		b: []float64{1},
		c: []float64{0},
	}
	rk4Tableau = tableau{
		a: [][]float64{{}, {0.5}, {0, 0.5}, {0, 0, 1}},
		b: []float64{1.0 / 6.0, 1.0 / 3.0, 1.0 / 3.0, 1.0 / 6.0},
		c: []float64{0, 0.5, 0.5, 1},
	}
)

// Explicit is a fixed-step explicit Runge-Kutta method. Stage buffers are
// reused between calls, so a value must not be shared by concurrent runs.
type Explicit struct {
	name  string
	tab   tableau
	k     []dynamo.State
	stage dynamo.State
}

func NewEuler() *Explicit { return &Explicit{name: "euler", tab: eulerTableau} }

// NewRK4 is the classical fourth-order method.
func NewRK4() *Explicit { return &Explicit{name: "rk4", tab: rk4Tableau} }

func (e *Explicit) Name() string { return e.name }

func (e *Explicit) Stages() int { return len(e.tab.b) }

func (e *Explicit) ensureScratch(n int) {
	if len(e.stage) == n && len(e.k) == len(e.tab.b) {
		return
	}
	e.stage = make(dynamo.State, n)
	e.k = make([]dynamo.State, len(e.tab.b))
	for s := range e.k {
		e.k[s] = make(dynamo.State, n)
	}
}

func (e *Explicit) Step(dyn dynamo.System, x dynamo.State, t, dt float64) dynamo.State {
	e.ensureScratch(len(x))

	for s := range e.tab.b {
		copy(e.stage, x)
		for j, a := range e.tab.a[s] {
			if a == 0 {
				continue
			}
			for i := range e.stage {
				e.stage[i] += dt * a * e.k[j][i]
			}
		}
		copy(e.k[s], dyn.Derive(e.stage, t+e.tab.c[s]*dt))
	}

	out := x.Clone()
	for s, b := range e.tab.b {
		for i := range out {
			out[i] += dt * b * e.k[s][i]
		}
	}
	return out
}
