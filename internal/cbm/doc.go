// Package cbm implements the chaotic Boltzmann machine solver.
//
// Each unit carries a continuous variable x_i whose binary readout is
// s_i = [x_i > 0.5]. The state evolves under
//
//	dx_i/dt = (1 - 2 s_i) (1 + exp(clip((1 - 2 s_i) z_i / T, -50, 50)))
//
// with local field z_i = b_i + sum_j W_ij s_j. The right-hand side always
// pushes x_i back across the threshold, so the readout keeps switching and
// the trajectory wanders between candidate cuts instead of settling. The
// jump in the right-hand side at the threshold is intended; adaptive
// integration resolves it by shrinking the step around each crossing.
package cbm
