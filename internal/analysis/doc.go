// Package analysis characterizes solver trajectories.
//
//   - [PowerSpectrum] and [DominantPeriod]: frequency content of an energy trace
//   - [Divergence]: separation of two CBM trajectories started close together
//   - [TemperatureSweep]: energies visited by the CBM as temperature varies
//   - [PhasePortrait]: two units of a trace plotted against each other
//
// # Chaos Detection
//
// A positive divergence exponent means nearby starts separate:
//
//	d, err := analysis.Divergence(ctx, s, p, x0, 1e-6)
//	if err == nil && d.Exponent > 0 {
//	    // trajectories diverge
//	}
package analysis
