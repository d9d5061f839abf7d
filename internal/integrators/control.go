package integrators

import (
	"math"

	"github.com/MPA2620/DSML-Final-Project/internal/dynamo"
)

// stepController turns an error norm into the next step size. errOrder is the
// order of the embedded error estimate.
type stepController struct {
	safety   float64
	minScale float64
	maxScale float64
	errOrder float64
}

func (c stepController) next(dt, errNorm float64) float64 {
	if errNorm == 0 {
		return dt * c.maxScale
	}
	scale := c.safety * math.Pow(errNorm, -1/(c.errOrder+1))
	if errNorm > 1 {
		return dt * math.Max(c.minScale, math.Min(scale, 1))
	}
	return dt * math.Min(c.maxScale, math.Max(scale, 1))
}

// errorNorm is the RMS of err scaled by atol + rtol*max(|x|, |xNew|).
func errorNorm(err, x, xNew dynamo.State, tol dynamo.Tolerance) float64 {
	if len(err) == 0 {
		return 0
	}
	sum := 0.0
	for i := range err {
		scale := tol.ATol + tol.RTol*math.Max(math.Abs(x[i]), math.Abs(xNew[i]))
		r := err[i] / scale
		sum += r * r
	}
	norm := math.Sqrt(sum / float64(len(err)))
	if math.IsNaN(norm) {
		return math.Inf(1)
	}
	return norm
}
