package analysis

import (
	"context"
	"math"

	"github.com/MPA2620/DSML-Final-Project/internal/cbm"
	"github.com/MPA2620/DSML-Final-Project/internal/dynamo"
	"github.com/MPA2620/DSML-Final-Project/internal/energy"
	"github.com/MPA2620/DSML-Final-Project/internal/solver"
)

type DivergenceResult struct {
	Times       []float64
	Separations []float64
	// Hamming counts units whose binary readout differs.
	Hamming []int
	// Exponent is the least-squares slope of ln(separation) over time.
	Exponent float64
}

// Divergence integrates the CBM twice, from x0 and from x0 with its first
// unit shifted by perturbation, and tracks how far the trajectories drift
// apart.
func Divergence(ctx context.Context, s *cbm.Solver, p *solver.Problem, x0 dynamo.State, perturbation float64) (*DivergenceResult, error) {
	if len(x0) == 0 {
		return nil, dynamo.InvalidArgument("empty initial state")
	}
	if perturbation == 0 {
		return nil, dynamo.InvalidArgument("perturbation must be non-zero")
	}

	x0p := x0.Clone()
	x0p[0] += perturbation

	a, err := s.Integrate(ctx, p, x0)
	if err != nil {
		return nil, err
	}
	b, err := s.Integrate(ctx, p, x0p)
	if err != nil {
		return nil, err
	}

	res := &DivergenceResult{
		Times:       a.Times,
		Separations: make([]float64, len(a.Times)),
		Hamming:     make([]int, len(a.Times)),
	}
	for i := range a.States {
		res.Separations[i] = b.States[i].Sub(a.States[i]).Norm()
		sa, sb := energy.Binarize(a.States[i]), energy.Binarize(b.States[i])
		for j := range sa {
			if sa[j] != sb[j] {
				res.Hamming[i]++
			}
		}
	}
	res.Exponent = logSlope(res.Times, res.Separations)
	return res, nil
}

func logSlope(ts, ys []float64) float64 {
	var n, sx, sy, sxx, sxy float64
	for i, y := range ys {
		if y <= 0 {
			continue
		}
		ly := math.Log(y)
		n++
		sx += ts[i]
		sy += ly
		sxx += ts[i] * ts[i]
		sxy += ts[i] * ly
	}
	den := n*sxx - sx*sx
	if n < 2 || den == 0 {
		return 0
	}
	return (n*sxy - sx*sy) / den
}
