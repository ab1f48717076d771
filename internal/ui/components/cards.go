package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const cardBodyLines = 3

func (rv *ResultView) cardWidth(perRow int) int {
	// two border cells and one gap per card
	w := rv.Width/perRow - 3
	return max(w, 12)
}

func (rv *ResultView) card(row Row, width int, selected bool) string {
	border := rv.Theme.CardBorder
	if selected {
		border = rv.Theme.BorderFocused
	}

	lines := []string{
		lipgloss.NewStyle().Bold(true).Foreground(rv.Theme.CardTitle).Render(pad(row.Title(), width)),
	}
	for i := 1; i < len(row.Cells) && i < len(rv.Columns) && len(lines) <= cardBodyLines; i++ {
		if row.Cells[i] == "" {
			continue
		}
		lines = append(lines, pad(rv.Columns[i]+": "+row.Cells[i], width))
	}
	for len(lines) <= cardBodyLines {
		lines = append(lines, "")
	}

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(border).
		Width(width).
		Render(strings.Join(lines, "\n"))
}

// renderGrid lays records out as cards, GridColumns per line, with group
// headers between groups
func (rv *ResultView) renderGrid() string {
	perRow := max(rv.GridColumns, 1)
	width := rv.cardWidth(perRow)

	var out []string
	var line []string
	flush := func() {
		if len(line) > 0 {
			out = append(out, lipgloss.JoinHorizontal(lipgloss.Top, line...))
			line = nil
		}
	}

	for i, row := range rv.Rows {
		if row.Kind == RowGroup {
			flush()
			header := rv.groupHeader(row)
			if i == rv.SelectedRow {
				header = lipgloss.NewStyle().Background(rv.Theme.Selection).Render(header)
			}
			out = append(out, header)
			continue
		}
		line = append(line, rv.card(row, width, i == rv.SelectedRow)+" ")
		if len(line) == perRow {
			flush()
		}
	}
	flush()

	return rv.window(strings.Join(out, "\n"))
}

// renderKanban shows one column per group. Ungrouped results form a single
// column.
func (rv *ResultView) renderKanban() string {
	type lane struct {
		header string
		cards  []string
	}

	var lanes []lane
	hasGroups := len(rv.Rows) > 0 && rv.Rows[0].Kind == RowGroup
	if !hasGroups {
		lanes = append(lanes, lane{header: lipgloss.NewStyle().Bold(true).Foreground(rv.Theme.GroupHeader).Render(fmt.Sprintf("All (%d)", len(rv.Rows)))})
	}
	for _, row := range rv.Rows {
		if row.Kind == RowGroup {
			lanes = append(lanes, lane{header: rv.groupHeader(row)})
		}
	}

	width := rv.cardWidth(max(len(lanes), 1))
	current := -1
	if !hasGroups {
		current = 0
	}
	for i, row := range rv.Rows {
		if row.Kind == RowGroup {
			current++
			if i == rv.SelectedRow {
				lanes[current].header = lipgloss.NewStyle().Background(rv.Theme.Selection).Render(lanes[current].header)
			}
			continue
		}
		lanes[current].cards = append(lanes[current].cards, rv.card(row, width, i == rv.SelectedRow))
	}

	columns := make([]string, len(lanes))
	for i, l := range lanes {
		body := append([]string{l.header}, l.cards...)
		columns[i] = lipgloss.NewStyle().Width(width + 3).Render(lipgloss.JoinVertical(lipgloss.Left, body...))
	}
	return rv.window(lipgloss.JoinHorizontal(lipgloss.Top, columns...))
}

// window clips rendered content to the view height
func (rv *ResultView) window(content string) string {
	if rv.Height <= 0 {
		return content
	}
	return lipgloss.NewStyle().MaxHeight(rv.Height).Render(content)
}
