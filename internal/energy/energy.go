// Package energy implements the Ising-style energy both solvers minimise.
package energy

import (
	"github.com/MPA2620/DSML-Final-Project/internal/dynamo"
)

// Threshold is the continuous level above which a unit reads as 1.
const Threshold = 0.5

// Assignment is a binary state vector with entries 0 or 1.
type Assignment []int8

func (a Assignment) Clone() Assignment {
	c := make(Assignment, len(a))
	copy(c, a)
	return c
}

// Ones returns the number of units set to 1.
func (a Assignment) Ones() int {
	n := 0
	for _, v := range a {
		n += int(v)
	}
	return n
}

func (a Assignment) String() string {
	buf := make([]byte, len(a))
	for i, v := range a {
		buf[i] = '0' + byte(v)
	}
	return string(buf)
}

// Binarize reads a continuous state as binary: x_i > 0.5 is 1, anything
// else, including exactly 0.5, is 0.
func Binarize(x []float64) Assignment {
	s := make(Assignment, len(x))
	BinarizeInto(s, x)
	return s
}

// BinarizeInto is Binarize writing into dst, which must have len(x).
func BinarizeInto(dst Assignment, x []float64) {
	for i, v := range x {
		if v > Threshold {
			dst[i] = 1
		} else {
			dst[i] = 0
		}
	}
}

// CheckShape verifies that weights is n x n and biases has length n.
func CheckShape(n int, weights [][]float64, biases []float64) error {
	if len(weights) != n || len(biases) != n {
		return dynamo.ErrShapeMismatch
	}
	for _, row := range weights {
		if len(row) != n {
			return dynamo.ErrShapeMismatch
		}
	}
	return nil
}

// Energy returns E = -b.s - sum_{i<j} W_ij s_i s_j. The cut value reported
// by the solvers is -E.
func Energy(s Assignment, weights [][]float64, biases []float64) (float64, error) {
	if err := CheckShape(len(s), weights, biases); err != nil {
		return 0, err
	}
	return energy(s, weights, biases), nil
}

// energy assumes shapes were already checked.
func energy(s Assignment, weights [][]float64, biases []float64) float64 {
	e := 0.0
	for i, si := range s {
		if si == 0 {
			continue
		}
		e -= biases[i]
		row := weights[i]
		for j := i + 1; j < len(s); j++ {
			if s[j] != 0 {
				e -= row[j]
			}
		}
	}
	return e
}

// MustEnergy is Energy for callers that validated shapes up front.
func MustEnergy(s Assignment, weights [][]float64, biases []float64) float64 {
	return energy(s, weights, biases)
}

// LocalField returns z_i = b_i + sum_j W_ij s_j.
func LocalField(i int, s Assignment, weights [][]float64, biases []float64) float64 {
	z := biases[i]
	row := weights[i]
	for j, sj := range s {
		if sj != 0 {
			z += row[j]
		}
	}
	return z
}
