package viz

import (
	"fmt"

	"github.com/guptarohit/asciigraph"

	"github.com/MPA2620/DSML-Final-Project/internal/experiment"
	"github.com/MPA2620/DSML-Final-Project/internal/solver"
)

// EnergyChart plots the energy of a trace over its samples.
func EnergyChart(tr solver.Trace, width, height int) string {
	if len(tr) == 0 {
		return ""
	}
	return asciigraph.Plot(tr.Energies(),
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Caption(fmt.Sprintf("energy, t=%.3g..%.3g", tr[0].Time, tr[len(tr)-1].Time)),
	)
}

// HistoryChart plots a best-so-far curve such as an SBM history.
func HistoryChart(history []float64, width, height int) string {
	if len(history) == 0 {
		return ""
	}
	return asciigraph.Plot(history,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Caption("best cut per sweep"),
	)
}

// SeriesChart draws one line per name; every series must have the same
// length.
func SeriesChart(caption string, names []string, series [][]float64, width, height int) string {
	if len(series) == 0 || len(series[0]) == 0 {
		return ""
	}
	colors := make([]asciigraph.AnsiColor, len(series))
	for i := range colors {
		colors[i] = CurrentTheme.Series[i%len(CurrentTheme.Series)]
	}
	return asciigraph.PlotMany(series,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Caption(caption),
		asciigraph.SeriesColors(colors...),
		asciigraph.SeriesLegends(names...),
	)
}

// ComparisonSeries arranges comparison rows by solver over the graph sizes,
// for the given field ("cut" or "time"). Failed runs plot as zero.
func ComparisonSeries(rows []experiment.Row, field string) (names []string, sizes []int, series [][]float64) {
	solverIdx := map[string]int{}
	sizeIdx := map[int]int{}
	for _, r := range rows {
		if _, ok := solverIdx[r.Solver]; !ok {
			solverIdx[r.Solver] = len(names)
			names = append(names, r.Solver)
		}
		if _, ok := sizeIdx[r.GraphSize]; !ok {
			sizeIdx[r.GraphSize] = len(sizes)
			sizes = append(sizes, r.GraphSize)
		}
	}

	series = make([][]float64, len(names))
	for i := range series {
		series[i] = make([]float64, len(sizes))
	}
	for _, r := range rows {
		if r.Err != nil {
			continue
		}
		v := r.CutValue
		if field == "time" {
			v = r.ElapsedSeconds
		}
		series[solverIdx[r.Solver]][sizeIdx[r.GraphSize]] = v
	}
	return names, sizes, series
}
