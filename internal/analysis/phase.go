package analysis

import (
	"github.com/MPA2620/DSML-Final-Project/internal/dynamo"
	"github.com/MPA2620/DSML-Final-Project/internal/solver"
)

type Point struct{ X, Y float64 }

// PhasePortrait projects a trace onto units xIdx and yIdx.
func PhasePortrait(tr solver.Trace, xIdx, yIdx int) ([]Point, error) {
	if len(tr) == 0 {
		return nil, nil
	}
	n := len(tr[0].State)
	if xIdx < 0 || yIdx < 0 || xIdx >= n || yIdx >= n {
		return nil, dynamo.InvalidArgument("unit index out of range [0, %d)", n)
	}
	pts := make([]Point, len(tr))
	for i, s := range tr {
		pts[i] = Point{X: s.State[xIdx], Y: s.State[yIdx]}
	}
	return pts, nil
}
