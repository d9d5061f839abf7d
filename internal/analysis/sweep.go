package analysis

import (
	"context"
	"sort"

	"github.com/MPA2620/DSML-Final-Project/internal/cbm"
	"github.com/MPA2620/DSML-Final-Project/internal/dynamo"
	"github.com/MPA2620/DSML-Final-Project/internal/energy"
	"github.com/MPA2620/DSML-Final-Project/internal/solver"
)

// SweepPoint lists the distinct energies visited in the second half of a
// trajectory at one temperature.
type SweepPoint struct {
	Temperature float64
	Energies    []float64
	Err         error
}

// TemperatureSweep reruns the CBM from the same x0 at steps temperatures
// evenly spaced over [tMin, tMax]. Runs that fail keep their error and the
// sweep continues.
func TemperatureSweep(ctx context.Context, cfg cbm.Config, p *solver.Problem, x0 dynamo.State, tMin, tMax float64, steps int) ([]SweepPoint, error) {
	if steps <= 0 {
		return nil, dynamo.InvalidArgument("sweep needs at least one step, got %d", steps)
	}
	if !(tMin > 0) || tMax < tMin {
		return nil, dynamo.InvalidArgument("temperature range [%g, %g] is invalid", tMin, tMax)
	}

	temps := []float64{tMin}
	if steps > 1 {
		temps = dynamo.Span{Start: tMin, End: tMax}.Linspace(steps)
	}

	points := make([]SweepPoint, 0, steps)
	for _, temp := range temps {
		if err := ctx.Err(); err != nil {
			return points, err
		}
		c := cfg
		c.Temperature = temp
		pt := SweepPoint{Temperature: temp}

		sol, err := cbm.New(c).Integrate(ctx, p, x0)
		if err != nil {
			pt.Err = err
			points = append(points, pt)
			continue
		}

		seen := make(map[float64]bool)
		for _, x := range sol.States[len(sol.States)/2:] {
			e := energy.MustEnergy(energy.Binarize(x), p.Weights, p.Biases)
			if !seen[e] {
				seen[e] = true
				pt.Energies = append(pt.Energies, e)
			}
		}
		sort.Float64s(pt.Energies)
		points = append(points, pt)
	}
	return points, nil
}
