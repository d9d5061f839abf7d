package integrators

import (
	"github.com/MPA2620/DSML-Final-Project/internal/dynamo"
)

// Bogacki-Shampine coefficients (RK23)
var (
	bsC2 = 1.0 / 2.0
	bsC3 = 3.0 / 4.0

	bsB1 = 2.0 / 9.0
	bsB2 = 1.0 / 3.0
	bsB3 = 4.0 / 9.0

	bsE1 = 5.0 / 72.0
	bsE2 = -1.0 / 12.0
	bsE3 = -1.0 / 9.0
	bsE4 = 1.0 / 8.0
)

// RK23 is the Bogacki-Shampine 3(2) pair. Its cheap, low-order error
// estimate copes better than RK45 with right-hand sides that jump when the
// state crosses a threshold.
type RK23 struct {
	ctl    stepController
	stage  dynamo.State
	errEst dynamo.State
	defTol dynamo.Tolerance
}

func NewRK23() *RK23 {
	return &RK23{
		ctl: stepController{
			safety:   0.9,
			minScale: 0.2,
			maxScale: 10.0,
			errOrder: 2,
		},
		defTol: dynamo.Tolerance{RTol: 1e-6, ATol: 1e-9},
	}
}

func (r *RK23) Name() string { return "rk23" }

func (r *RK23) ensureScratch(n int) {
	if len(r.stage) != n {
		r.stage = make(dynamo.State, n)
		r.errEst = make(dynamo.State, n)
	}
}

func (r *RK23) Step(dyn dynamo.System, x dynamo.State, t, dt float64) dynamo.State {
	newX, _, _, _ := r.StepAdaptive(dyn, x, t, dt, r.defTol)
	return newX
}

func (r *RK23) StepAdaptive(dyn dynamo.System, x dynamo.State, t, dt float64, tol dynamo.Tolerance) (dynamo.State, float64, float64, error) {
	n := len(x)
	if dyn.StateDim() != n {
		return nil, 0, 0, dynamo.ErrShapeMismatch
	}
	r.ensureScratch(n)
	xs := r.stage

	k1 := dyn.Derive(x, t)

	for i := 0; i < n; i++ {
		xs[i] = x[i] + dt*bsC2*k1[i]
	}
	k2 := dyn.Derive(xs, t+bsC2*dt)

	for i := 0; i < n; i++ {
		xs[i] = x[i] + dt*bsC3*k2[i]
	}
	k3 := dyn.Derive(xs, t+bsC3*dt)

	xNew := make(dynamo.State, n)
	for i := 0; i < n; i++ {
		xNew[i] = x[i] + dt*(bsB1*k1[i]+bsB2*k2[i]+bsB3*k3[i])
	}

	k4 := dyn.Derive(xNew, t+dt)

	for i := 0; i < n; i++ {
		r.errEst[i] = dt * (bsE1*k1[i] + bsE2*k2[i] + bsE3*k3[i] + bsE4*k4[i])
	}

	errNorm := errorNorm(r.errEst, x, xNew, tol)
	return xNew, errNorm, r.ctl.next(dt, errNorm), nil
}
