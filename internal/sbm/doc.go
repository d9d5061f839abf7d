// Package sbm implements the stochastic Boltzmann machine: a Gibbs sampler
// that sweeps the binary units in order and keeps the best cut it has seen.
package sbm
