package viz

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MPA2620/DSML-Final-Project/internal/analysis"
	"github.com/MPA2620/DSML-Final-Project/internal/experiment"
	"github.com/MPA2620/DSML-Final-Project/internal/solver"
)

func trace(n int) solver.Trace {
	tr := make(solver.Trace, n)
	for i := range tr {
		tr[i] = solver.Sample{Time: float64(i), State: []float64{0.9, 0.1, 0.7}, Energy: -float64(i % 4)}
	}
	return tr
}

func key(s string) tea.KeyMsg {
	if s == " " {
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func update(t *testing.T, m tea.Model, msg tea.Msg) Replay {
	t.Helper()
	next, _ := m.Update(msg)
	r, ok := next.(Replay)
	require.True(t, ok)
	return r
}

func TestReplay_PlaysAndStopsAtEnd(t *testing.T) {
	r := NewReplay("cbm", trace(3))
	require.True(t, r.Running())

	r = update(t, r, TickMsg{})
	r = update(t, r, TickMsg{})
	assert.Equal(t, 2, r.Position())

	r = update(t, r, TickMsg{})
	assert.Equal(t, 2, r.Position())
	assert.False(t, r.Running())
}

func TestReplay_Keys(t *testing.T) {
	r := NewReplay("cbm", trace(30))

	r = update(t, r, key(" "))
	assert.False(t, r.Running())
	r = update(t, r, TickMsg{})
	assert.Equal(t, 0, r.Position())

	r = update(t, r, key("]"))
	r = update(t, r, key("]"))
	assert.Equal(t, 2, r.Position())
	r = update(t, r, key("["))
	assert.Equal(t, 1, r.Position())

	r = update(t, r, key("}"))
	r = update(t, r, key("}"))
	r = update(t, r, key("}"))
	assert.Equal(t, 29, r.Position())

	r = update(t, r, key("["))
	r = update(t, r, key("r"))
	assert.Equal(t, 0, r.Position())

	_, cmd := r.Update(key("q"))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestReplay_TracksBestCut(t *testing.T) {
	r := NewReplay("cbm", trace(10))
	for i := 0; i < 5; i++ {
		r = update(t, r, key("]"))
	}
	assert.Equal(t, 3.0, r.bestCut)
	assert.Equal(t, 3, r.bestAt)
	assert.Contains(t, r.View(), "best")
	assert.Contains(t, r.View(), "2/3 on")
}

func TestReplay_EmptyTrace(t *testing.T) {
	r := NewReplay("empty", nil)
	assert.False(t, r.Running())
	r = update(t, r, key("]"))
	assert.Contains(t, r.View(), "trace is empty")
}

func TestResultsTable(t *testing.T) {
	out := ResultsTable([]experiment.Row{
		{GraphSize: 10, Solver: "cbm", CutValue: 12.5, CutWeight: 12.5, ElapsedSeconds: 0.01},
		{GraphSize: 10, Solver: "sbm", Err: errors.New("boom")},
	})
	assert.Contains(t, out, "cut value")
	assert.Contains(t, out, "12.50")
	assert.Contains(t, out, "boom")
}

func TestComparisonSeries(t *testing.T) {
	rows := []experiment.Row{
		{GraphSize: 4, Solver: "cbm", CutValue: 3, ElapsedSeconds: 0.5},
		{GraphSize: 4, Solver: "sbm", CutValue: 4, ElapsedSeconds: 0.1},
		{GraphSize: 8, Solver: "cbm", Err: errors.New("boom")},
		{GraphSize: 8, Solver: "sbm", CutValue: 16, ElapsedSeconds: 0.2},
	}

	names, sizes, series := ComparisonSeries(rows, "cut")
	assert.Equal(t, []string{"cbm", "sbm"}, names)
	assert.Equal(t, []int{4, 8}, sizes)
	assert.Equal(t, [][]float64{{3, 0}, {4, 16}}, series)

	_, _, times := ComparisonSeries(rows, "time")
	assert.Equal(t, 0.1, times[1][0])

	assert.NotEmpty(t, SeriesChart("cut", names, series, 20, 5))
}

func TestEnergyChart(t *testing.T) {
	assert.Empty(t, EnergyChart(nil, 20, 5))
	assert.Contains(t, EnergyChart(trace(8), 20, 5), "energy")
}

func TestScatter(t *testing.T) {
	out := Scatter([]analysis.Point{{X: 0, Y: 0}, {X: 1, Y: 1}}, 4, 2)
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 2)
	// bottom-left and top-right cells are lit, the others stay blank
	assert.NotEqual(t, '\u2800', []rune(lines[1])[0])
	assert.NotEqual(t, '\u2800', []rune(lines[0])[3])
	assert.Equal(t, '\u2800', []rune(lines[0])[0])
}

func TestScatter_FlatTrajectoryHasNoGaps(t *testing.T) {
	out := Scatter([]analysis.Point{{X: 0, Y: 2}, {X: 1, Y: 2}}, 4, 1)
	// zero y span maps onto the bottom dot row; both dots of every cell are lit
	assert.Equal(t, strings.Repeat("\u28c0", 4)+"\n", out)
}

func TestScatter_Degenerate(t *testing.T) {
	assert.Equal(t, strings.Repeat("\u2800", 3)+"\n", Scatter(nil, 3, 1))

	out := []rune(Scatter([]analysis.Point{{X: 0.5, Y: 0.5}}, 2, 1))
	require.Len(t, out, 3)
	assert.NotEqual(t, '\u2800', out[0])
	assert.Equal(t, '\u2800', out[1])
}

func TestThemes(t *testing.T) {
	defer SetTheme(ThemeCyberpunk.Name)

	SetTheme("ocean")
	assert.Equal(t, "ocean", CurrentTheme.Name)
	NextTheme()
	assert.Equal(t, ThemeCyberpunk.Name, CurrentTheme.Name)
	assert.Equal(t, ThemeCyberpunk.Name, GetTheme("missing").Name)
}
