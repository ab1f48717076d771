package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

// calculateColumnWidths calculates optimal column widths
func (rv *ResultView) calculateColumnWidths() {
	rv.ColumnWidths = make([]int, len(rv.Columns))

	// Start with column header lengths
	for i, col := range rv.Columns {
		rv.ColumnWidths[i] = runewidth.StringWidth(col)
	}

	for _, row := range rv.Rows {
		for i, cell := range row.Cells {
			if i < len(rv.ColumnWidths) {
				rv.ColumnWidths[i] = max(rv.ColumnWidths[i], runewidth.StringWidth(cell))
			}
		}
	}

	// Apply width constraints
	for i := range rv.ColumnWidths {
		rv.ColumnWidths[i] = min(max(rv.ColumnWidths[i], 6), 40)
	}
}

func (rv *ResultView) renderTable() string {
	if len(rv.Columns) == 0 {
		return rv.Theme.Faint().Render("No columns")
	}

	var b strings.Builder
	b.WriteString(rv.renderHeader())
	b.WriteString("\n")
	b.WriteString(rv.renderSeparator())
	b.WriteString("\n")

	// Header + separator + status
	rv.VisibleRows = rv.Height - 3
	if rv.VisibleRows < 1 {
		rv.VisibleRows = 1
	}
	rv.clamp()

	end := min(rv.TopRow+rv.VisibleRows, len(rv.Rows))
	for i := rv.TopRow; i < end; i++ {
		b.WriteString(rv.renderRow(rv.Rows[i], i == rv.SelectedRow))
		b.WriteString("\n")
	}
	b.WriteString(rv.renderStatus())

	return b.String()
}

func (rv *ResultView) renderHeader() string {
	parts := make([]string, len(rv.Columns))
	for i, col := range rv.Columns {
		parts[i] = pad(col, rv.ColumnWidths[i])
	}
	headerStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(rv.Theme.TableHeader).
		Background(rv.Theme.TableRowOdd)
	return headerStyle.Render(" " + strings.Join(parts, " │ ") + " ")
}

func (rv *ResultView) renderSeparator() string {
	parts := make([]string, len(rv.ColumnWidths))
	for i, width := range rv.ColumnWidths {
		parts[i] = strings.Repeat("─", width)
	}
	return lipgloss.NewStyle().
		Foreground(rv.Theme.Border).
		Render("─" + strings.Join(parts, "─┼─") + "─")
}

func (rv *ResultView) renderRow(row Row, selected bool) string {
	var line string
	if row.Kind == RowGroup {
		line = rv.groupHeader(row)
	} else {
		parts := make([]string, 0, len(rv.ColumnWidths))
		for i, width := range rv.ColumnWidths {
			cell := ""
			if i < len(row.Cells) {
				cell = row.Cells[i]
			}
			parts = append(parts, pad(cell, width))
		}
		line = " " + strings.Join(parts, " │ ") + " "
	}

	if selected {
		return lipgloss.NewStyle().
			Background(rv.Theme.TableRowSelected).
			Foreground(rv.Theme.Foreground).
			Bold(true).
			Render(line)
	}
	return line
}

// pad fits s into width terminal cells
func pad(s string, width int) string {
	if width <= 0 {
		return s
	}
	if runewidth.StringWidth(s) > width {
		return runewidth.Truncate(s, width, "…")
	}
	return runewidth.FillRight(s, width)
}
