// Package graph provides the weighted undirected graphs the solvers work on.
//
// A [Graph] is a dense symmetric weight matrix with a zero diagonal. Graphs
// are produced by [Generate] from an injected random source and are read-only
// afterwards. [MaxCutProblem] rewrites a graph into the couplings and biases
// whose Ising energy is exactly the negated cut weight.
package graph
