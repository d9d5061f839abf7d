package export

import (
	"fmt"
	"math"
	"strings"

	"github.com/MPA2620/DSML-Final-Project/internal/analysis"
	"github.com/MPA2620/DSML-Final-Project/internal/dynamo"
	"github.com/MPA2620/DSML-Final-Project/internal/solver"
)

// Options control the size and colors of the generated SVG.
type Options struct {
	Width, Height int
	Stroke        string
	Background    string
	Title         string
}

func DefaultOptions() Options {
	return Options{Width: 800, Height: 400, Stroke: "#00ff9f", Background: "#0a0a0a"}
}

func header(sb *strings.Builder, o Options) {
	fmt.Fprintf(sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="%s"/>
`, o.Width, o.Height, o.Width, o.Height, o.Background)
	if o.Title != "" {
		fmt.Fprintf(sb, "<title>%s</title>\n", escape(o.Title))
	}
}

func escape(s string) string {
	return strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;").Replace(s)
}

type bounds struct{ minX, maxX, minY, maxY float64 }

func boundsOf(points []analysis.Point) bounds {
	b := bounds{math.Inf(1), math.Inf(-1), math.Inf(1), math.Inf(-1)}
	for _, p := range points {
		b.minX, b.maxX = math.Min(b.minX, p.X), math.Max(b.maxX, p.X)
		b.minY, b.maxY = math.Min(b.minY, p.Y), math.Max(b.maxY, p.Y)
	}

	// 10% padding on each side; flat axes get a unit range.
	rangeX, rangeY := b.maxX-b.minX, b.maxY-b.minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	b.minX -= rangeX * 0.1
	b.maxX += rangeX * 0.1
	b.minY -= rangeY * 0.1
	b.maxY += rangeY * 0.1
	return b
}

// Polyline draws points joined in order, scaled to fill the canvas with the
// y axis pointing up.
func Polyline(points []analysis.Point, o Options) (string, error) {
	if len(points) < 2 {
		return "", dynamo.InvalidArgument("need at least 2 points, got %d", len(points))
	}
	if o.Width <= 0 || o.Height <= 0 {
		return "", dynamo.InvalidArgument("svg size must be positive, got %dx%d", o.Width, o.Height)
	}
	b := boundsOf(points)
	w, h := float64(o.Width), float64(o.Height)

	var sb strings.Builder
	header(&sb, o)
	fmt.Fprintf(&sb, `<path fill="none" stroke="%s" stroke-width="1.5" d="`, o.Stroke)
	for i, p := range points {
		x := (p.X - b.minX) / (b.maxX - b.minX) * w
		y := h - (p.Y-b.minY)/(b.maxY-b.minY)*h
		if i == 0 {
			fmt.Fprintf(&sb, "M%.1f,%.1f", x, y)
		} else {
			fmt.Fprintf(&sb, " L%.1f,%.1f", x, y)
		}
	}
	sb.WriteString("\"/>\n</svg>\n")
	return sb.String(), nil
}

// EnergySVG plots energy against time.
func EnergySVG(tr solver.Trace, o Options) (string, error) {
	points := make([]analysis.Point, len(tr))
	for i, s := range tr {
		points[i] = analysis.Point{X: s.Time, Y: s.Energy}
	}
	return Polyline(points, o)
}

// StateRaster draws the binary readout as a grid: one row per unit, one
// column per sample, filled cells are units reading 1.
func StateRaster(tr solver.Trace, o Options) (string, error) {
	if len(tr) == 0 {
		return "", dynamo.InvalidArgument("empty trace")
	}
	if o.Width <= 0 || o.Height <= 0 {
		return "", dynamo.InvalidArgument("svg size must be positive, got %dx%d", o.Width, o.Height)
	}
	units := len(tr[0].State)
	cw := float64(o.Width) / float64(len(tr))
	ch := float64(o.Height) / float64(max(units, 1))

	var sb strings.Builder
	header(&sb, o)
	fmt.Fprintf(&sb, "<g fill=\"%s\">\n", o.Stroke)
	for col, a := range tr.Assignments() {
		if len(a) != units {
			return "", fmt.Errorf("sample %d: %w", col, dynamo.ErrShapeMismatch)
		}
		for row, v := range a {
			if v == 1 {
				fmt.Fprintf(&sb, "<rect x=\"%.2f\" y=\"%.2f\" width=\"%.2f\" height=\"%.2f\"/>\n",
					float64(col)*cw, float64(row)*ch, cw, ch)
			}
		}
	}
	sb.WriteString("</g>\n</svg>\n")
	return sb.String(), nil
}
