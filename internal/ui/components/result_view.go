package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/rebeliceyang/lazyfacet/internal/models"
	"github.com/rebeliceyang/lazyfacet/internal/ui/theme"
)

// ResultView renders display rows in one of the view modes and keeps a
// cursor over them
type ResultView struct {
	Theme       theme.Theme
	Mode        models.ViewMode
	Columns     []string
	Rows        []Row
	Width       int
	Height      int
	GridColumns int

	// Virtual scrolling state
	TopRow      int
	VisibleRows int
	SelectedRow int

	// Column widths (calculated)
	ColumnWidths []int
}

// NewResultView creates an empty result view
func NewResultView(th theme.Theme) *ResultView {
	return &ResultView{
		Theme:       th,
		Mode:        models.ViewGrid,
		GridColumns: 3,
	}
}

// SetData replaces the rows and keeps the cursor in range
func (rv *ResultView) SetData(columns []string, rows []Row) {
	rv.Columns = columns
	rv.Rows = rows
	rv.calculateColumnWidths()
	rv.clamp()
}

// Selected returns the row under the cursor
func (rv *ResultView) Selected() (Row, bool) {
	if rv.SelectedRow < 0 || rv.SelectedRow >= len(rv.Rows) {
		return Row{}, false
	}
	return rv.Rows[rv.SelectedRow], true
}

// MoveSelection moves the cursor by delta rows
func (rv *ResultView) MoveSelection(delta int) {
	rv.SelectedRow += delta
	rv.clamp()
}

// PageUp moves the cursor one screen up
func (rv *ResultView) PageUp() {
	rv.MoveSelection(-rv.pageSize())
}

// PageDown moves the cursor one screen down
func (rv *ResultView) PageDown() {
	rv.MoveSelection(rv.pageSize())
}

func (rv *ResultView) pageSize() int {
	if rv.VisibleRows > 0 {
		return rv.VisibleRows
	}
	return 10
}

func (rv *ResultView) clamp() {
	if rv.SelectedRow >= len(rv.Rows) {
		rv.SelectedRow = len(rv.Rows) - 1
	}
	if rv.SelectedRow < 0 {
		rv.SelectedRow = 0
	}

	// Adjust visible window if needed
	if rv.SelectedRow < rv.TopRow {
		rv.TopRow = rv.SelectedRow
	}
	if rv.VisibleRows > 0 && rv.SelectedRow >= rv.TopRow+rv.VisibleRows {
		rv.TopRow = rv.SelectedRow - rv.VisibleRows + 1
	}
}

// View renders the rows in the current mode
func (rv *ResultView) View() string {
	if len(rv.Rows) == 0 {
		return rv.Theme.Faint().Render("No matching records")
	}

	switch rv.Mode {
	case models.ViewTable:
		return rv.renderTable()
	case models.ViewList:
		return rv.renderList()
	case models.ViewKanban:
		return rv.renderKanban()
	default:
		return rv.renderGrid()
	}
}

func (rv *ResultView) renderList() string {
	rv.VisibleRows = rv.Height - 1
	if rv.VisibleRows < 1 {
		rv.VisibleRows = 1
	}
	rv.clamp()

	end := min(rv.TopRow+rv.VisibleRows, len(rv.Rows))
	lines := make([]string, 0, end-rv.TopRow+1)
	for i := rv.TopRow; i < end; i++ {
		row := rv.Rows[i]
		var line string
		if row.Kind == RowGroup {
			line = rv.groupHeader(row)
		} else {
			line = rv.listLine(row)
		}
		if i == rv.SelectedRow {
			line = lipgloss.NewStyle().Background(rv.Theme.Selection).Render(line)
		}
		lines = append(lines, line)
	}
	lines = append(lines, rv.renderStatus())
	return strings.Join(lines, "\n")
}

func (rv *ResultView) listLine(row Row) string {
	title := lipgloss.NewStyle().Bold(true).Foreground(rv.Theme.CardTitle).Render(row.Title())

	var details []string
	for i := 1; i < len(row.Cells) && i < len(rv.Columns); i++ {
		if row.Cells[i] == "" {
			continue
		}
		details = append(details, rv.Columns[i]+": "+row.Cells[i])
	}
	line := "  • " + title
	if len(details) > 0 {
		line += rv.Theme.Faint().Render("  " + strings.Join(details, " · "))
	}
	return line
}

func (rv *ResultView) groupHeader(row Row) string {
	icon := "▾"
	color := rv.Theme.GroupHeader
	if row.Collapsed {
		icon = "▸"
		color = rv.Theme.GroupCollapsed
	}
	label := lipgloss.NewStyle().Bold(true).Foreground(color).Render(icon + " " + row.Label)
	count := lipgloss.NewStyle().Foreground(rv.Theme.GroupCount).Render(fmt.Sprintf(" (%d)", row.Count))
	return label + count
}

func (rv *ResultView) renderStatus() string {
	records := 0
	for _, row := range rv.Rows {
		if row.Kind == RowRecord {
			records++
		}
	}
	showing := fmt.Sprintf(" %d-%d of %d rows, %d records shown", rv.TopRow+1, min(rv.TopRow+rv.VisibleRows, len(rv.Rows)), len(rv.Rows), records)
	return lipgloss.NewStyle().
		Foreground(rv.Theme.Muted).
		Italic(true).
		Render(showing)
}
