// Package dynamo provides the numerical primitives shared by the solvers.
//
// The package defines the fundamental interfaces and types for integrating
// ordinary differential equations (ODEs) over a finite time span:
//
//   - [State]: continuous state vector
//   - [System]: interface for ODE right-hand sides (dX/dt = f(X, t))
//   - [Integrator]: fixed-step integrator interface
//   - [AdaptiveIntegrator]: embedded Runge-Kutta pair with error estimate
//   - [Span] and [Tolerance]: integration window and error control
//
// It also holds the error taxonomy used across the module. Every failure is
// one of [ErrInvalidArgument], [ErrNumericalFailure] or [ErrShapeMismatch]
// (possibly wrapping a more specific cause), so callers can branch with
// errors.Is.
//
// # Example
//
//	sys := cbm.NewDynamics(g.Weights, biases, 1.0)
//	integ := integrators.NewRK23()
//	sol, err := integrators.Solve(ctx, sys, integ, span, x0, tEval, opts)
//
// # Thread Safety
//
// Integrators keep scratch buffers and are NOT safe for concurrent use.
// Give every concurrent run its own integrator instance.
package dynamo
