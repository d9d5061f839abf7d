package viz

import (
	"math"
	"strings"

	"github.com/MPA2620/DSML-Final-Project/internal/analysis"
)

// A braille cell holds 2x4 dots. dotBits[row][col] is the bit for one dot,
// added to the blank cell U+2800.
var dotBits = [4][2]rune{
	{0x01, 0x08},
	{0x02, 0x10},
	{0x04, 0x20},
	{0x40, 0x80},
}

const blankCell rune = 0x2800

// portrait rasterizes a two-unit trajectory. Points are mapped from their
// bounding box onto a (2*cols) x (4*rows) dot grid with y pointing up.
type portrait struct {
	cols, rows int
	cells      []rune

	minX, minY     float64
	scaleX, scaleY float64
}

func newPortrait(pts []analysis.Point, cols, rows int) *portrait {
	p := &portrait{cols: cols, rows: rows, cells: make([]rune, cols*rows)}
	for i := range p.cells {
		p.cells[i] = blankCell
	}
	if len(pts) == 0 {
		return p
	}

	p.minX, p.minY = pts[0].X, pts[0].Y
	maxX, maxY := p.minX, p.minY
	for _, pt := range pts[1:] {
		p.minX, maxX = math.Min(p.minX, pt.X), math.Max(maxX, pt.X)
		p.minY, maxY = math.Min(p.minY, pt.Y), math.Max(maxY, pt.Y)
	}
	p.scaleX = float64(2*cols-1) / nonZero(maxX-p.minX)
	p.scaleY = float64(4*rows-1) / nonZero(maxY-p.minY)
	return p
}

func nonZero(span float64) float64 {
	if span == 0 {
		return 1
	}
	return span
}

// dot coordinates of pt, still fractional.
func (p *portrait) project(pt analysis.Point) (float64, float64) {
	return (pt.X - p.minX) * p.scaleX, float64(4*p.rows-1) - (pt.Y-p.minY)*p.scaleY
}

func (p *portrait) light(dx, dy float64) {
	x, y := int(math.Round(dx)), int(math.Round(dy))
	if x < 0 || y < 0 || x >= 2*p.cols || y >= 4*p.rows {
		return
	}
	p.cells[(y/4)*p.cols+x/2] |= dotBits[y%4][x%2]
}

// segment lights every dot between a and b, one sample per dot along the
// longer axis.
func (p *portrait) segment(a, b analysis.Point) {
	ax, ay := p.project(a)
	bx, by := p.project(b)
	n := int(math.Ceil(math.Max(math.Abs(bx-ax), math.Abs(by-ay))))
	if n == 0 {
		p.light(ax, ay)
		return
	}
	for k := 0; k <= n; k++ {
		f := float64(k) / float64(n)
		p.light(ax+f*(bx-ax), ay+f*(by-ay))
	}
}

func (p *portrait) String() string {
	var b strings.Builder
	for r := 0; r < p.rows; r++ {
		b.WriteString(string(p.cells[r*p.cols : (r+1)*p.cols]))
		b.WriteByte('\n')
	}
	return b.String()
}

// Scatter draws a phase portrait, joining consecutive points, scaled to fill
// a w x h cell canvas. The y axis points up.
func Scatter(pts []analysis.Point, w, h int) string {
	p := newPortrait(pts, w, h)
	switch len(pts) {
	case 0:
	case 1:
		p.segment(pts[0], pts[0])
	default:
		for i := 1; i < len(pts); i++ {
			p.segment(pts[i-1], pts[i])
		}
	}
	return p.String()
}
