package viz

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/guptarohit/asciigraph"

	"github.com/MPA2620/DSML-Final-Project/internal/energy"
	"github.com/MPA2620/DSML-Final-Project/internal/solver"
)

const (
	replayFPS   = 30
	chartWidth  = 60
	chartHeight = 8
	jump        = 10
)

type TickMsg time.Time

// Replay steps through a stored trajectory one sample per tick.
type Replay struct {
	title    string
	trace    solver.Trace
	pos      int
	running  bool
	bestCut  float64
	bestAt   int
	width    int
	showHelp bool
}

func NewReplay(title string, tr solver.Trace) Replay {
	r := Replay{title: title, trace: tr, running: len(tr) > 0, width: chartWidth}
	r.updateBest()
	return r
}

func tick() tea.Cmd {
	return tea.Tick(time.Second/replayFPS, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (r Replay) Init() tea.Cmd {
	return tick()
}

func (r Replay) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return r, tea.Quit
		case " ":
			r.running = !r.running
		case "[":
			r.seek(-1)
		case "]":
			r.seek(1)
		case "{":
			r.seek(-jump)
		case "}":
			r.seek(jump)
		case "r":
			r.pos = 0
			r.updateBest()
		case "t":
			NextTheme()
		case "?":
			r.showHelp = !r.showHelp
		}
	case tea.WindowSizeMsg:
		r.width = max(20, min(msg.Width-12, 120))
	case TickMsg:
		if r.running {
			if r.pos < len(r.trace)-1 {
				r.pos++
				r.updateBest()
			} else {
				r.running = false
			}
		}
		return r, tick()
	}
	return r, nil
}

// seek moves the play head and pauses playback.
func (r *Replay) seek(delta int) {
	if len(r.trace) == 0 {
		return
	}
	r.running = false
	r.pos = max(0, min(r.pos+delta, len(r.trace)-1))
	r.updateBest()
}

func (r *Replay) updateBest() {
	if len(r.trace) == 0 {
		return
	}
	r.bestAt = 0
	r.bestCut = -r.trace[0].Energy
	for i := 1; i <= r.pos; i++ {
		if c := -r.trace[i].Energy; c > r.bestCut {
			r.bestCut, r.bestAt = c, i
		}
	}
}

func (r Replay) Position() int { return r.pos }

func (r Replay) Running() bool { return r.running }

func (r Replay) View() string {
	var b strings.Builder
	b.WriteString(Header(r.title))
	b.WriteString("\n\n")

	if len(r.trace) == 0 {
		b.WriteString(hintStyle().Render("trace is empty, press q to quit"))
		return b.String()
	}

	cur := r.trace[r.pos]
	status := "paused"
	if r.running {
		status = "playing"
	}
	b.WriteString(statusStyle(r.running).Render(status))
	b.WriteString("\n")
	b.WriteString(Metric("sample", fmt.Sprintf("%d/%d", r.pos+1, len(r.trace))) + "\n")
	b.WriteString(Metric("time", fmt.Sprintf("%.4f", cur.Time)) + "\n")
	b.WriteString(Metric("energy", fmt.Sprintf("%.4f", cur.Energy)) + "\n")
	b.WriteString(Metric("cut", fmt.Sprintf("%.4f", -cur.Energy)) + "\n")
	b.WriteString(Metric("best", fmt.Sprintf("%.4f @ %.4f", r.bestCut, r.trace[r.bestAt].Time)) + "\n\n")

	b.WriteString(ProgressBar(float64(r.pos)/float64(max(len(r.trace)-1, 1)), r.width))
	b.WriteString("\n\n")

	window := r.trace[max(0, r.pos+1-r.width*2) : r.pos+1]
	if len(window) > 1 {
		b.WriteString(asciigraph.Plot(window.Energies(),
			asciigraph.Height(chartHeight),
			asciigraph.Width(r.width),
			asciigraph.Caption("energy"),
		))
		b.WriteString("\n\n")
	}

	state := energy.Binarize(cur.State)
	b.WriteString(labelStyle().Render("state"))
	b.WriteString(UnitRow(state))
	b.WriteString(valueStyle().Render(fmt.Sprintf("  %d/%d on", state.Ones(), len(state))))
	b.WriteString("\n\n")

	if r.showHelp {
		b.WriteString(hintStyle().Render("space pause/resume  [ ] step  { } jump  r restart  t theme  q quit"))
	} else {
		b.WriteString(hintStyle().Render("? help  q quit"))
	}
	return b.String()
}

// RunReplay takes over the terminal until the user quits.
func RunReplay(title string, tr solver.Trace) error {
	_, err := tea.NewProgram(NewReplay(title, tr), tea.WithAltScreen()).Run()
	return err
}
