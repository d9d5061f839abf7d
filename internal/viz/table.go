package viz

import (
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/MPA2620/DSML-Final-Project/internal/experiment"
)

// Table renders rows under headers with the current theme.
func Table(headers []string, rows [][]string) string {
	head := lipgloss.NewStyle().Bold(true).Foreground(CurrentTheme.Primary).Padding(0, 1)
	cell := lipgloss.NewStyle().Foreground(CurrentTheme.Text).Padding(0, 1)
	bad := cell.Foreground(CurrentTheme.Error)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(CurrentTheme.Muted)).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return head
			}
			if row >= 0 && row < len(rows) && col == len(headers)-1 && rows[row][col] != "" && headers[col] == "error" {
				return bad
			}
			return cell
		})
	return t.Render()
}

// ResultsTable lays out comparison rows.
func ResultsTable(rows []experiment.Row) string {
	headers := []string{"nodes", "solver", "cut value", "cut weight", "time (s)", "error"}
	data := make([][]string, len(rows))
	for i, r := range rows {
		data[i] = []string{
			strconv.Itoa(r.GraphSize),
			r.Solver,
			strconv.FormatFloat(r.CutValue, 'f', 2, 64),
			strconv.FormatFloat(r.CutWeight, 'f', 2, 64),
			strconv.FormatFloat(r.ElapsedSeconds, 'f', 4, 64),
			r.ErrString(),
		}
	}
	return Table(headers, data)
}
