package components

import (
	"encoding/json"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/rebeliceyang/lazyfacet/internal/fieldpath"
	"github.com/rebeliceyang/lazyfacet/internal/ui/theme"
)

// CloseDetailMsg is sent when the record detail should close
type CloseDetailMsg struct{}

// CopyRecordMsg asks for the shown record to be copied as JSON
type CopyRecordMsg struct {
	JSON string
}

// RecordDetail shows every field of one record and its JSON form
type RecordDetail struct {
	Width  int
	Height int
	Theme  theme.Theme

	title  string
	fields [][2]string
	json   string
	lines  []string
	offset int
}

// NewRecordDetail creates an empty detail view
func NewRecordDetail(th theme.Theme) *RecordDetail {
	return &RecordDetail{Width: 80, Height: 24, Theme: th}
}

// SetRecord replaces the shown record
func (d *RecordDetail) SetRecord(title string, item any) {
	d.title = title
	d.offset = 0
	d.fields = d.fields[:0]
	for _, path := range fieldpath.ExtractPaths(item) {
		d.fields = append(d.fields, [2]string{path, fieldpath.ToString(fieldpath.Resolve(item, path))})
	}

	d.json = Format(item)
	d.lines = nil
}

// JSON returns the record as indented JSON
func (d *RecordDetail) JSON() string {
	return d.json
}

// Format pretty-prints v as indented JSON. Values that cannot be encoded
// fall back to their %v form.
func Format(v any) string {
	if v == nil {
		return "null"
	}
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(b)
}

func (d *RecordDetail) contentWidth() int {
	return max(d.Width-6, 10)
}

func (d *RecordDetail) visibleLines() int {
	// border, padding, title and hint
	return max(d.Height-6, 1)
}

func (d *RecordDetail) buildLines() []string {
	width := d.contentWidth()
	keyWidth := 0
	for _, f := range d.fields {
		keyWidth = max(keyWidth, runewidth.StringWidth(f[0]))
	}
	keyWidth = min(keyWidth, width/2)

	keyStyle := lipgloss.NewStyle().Foreground(d.Theme.ChipField)
	lines := make([]string, 0, len(d.fields)+8)
	for _, f := range d.fields {
		value := runewidth.Truncate(strings.ReplaceAll(f[1], "\n", " "), width-keyWidth-2, "…")
		lines = append(lines, keyStyle.Render(pad(f[0], keyWidth))+"  "+value)
	}

	lines = append(lines, "", lipgloss.NewStyle().Foreground(d.Theme.Muted).Render("JSON"))
	for _, line := range strings.Split(d.json, "\n") {
		lines = append(lines, runewidth.Truncate(line, width, "…"))
	}
	return lines
}

func (d *RecordDetail) scroll(delta int) {
	if d.lines == nil {
		d.lines = d.buildLines()
	}
	maxOffset := max(len(d.lines)-d.visibleLines(), 0)
	d.offset = min(max(d.offset+delta, 0), maxOffset)
}

// Update handles keyboard input
func (d *RecordDetail) Update(msg tea.KeyMsg) (*RecordDetail, tea.Cmd) {
	switch msg.String() {
	case "esc", "q", "enter":
		return d, func() tea.Msg { return CloseDetailMsg{} }
	case "up", "k":
		d.scroll(-1)
	case "down", "j":
		d.scroll(1)
	case "ctrl+u", "pgup":
		d.scroll(-d.visibleLines())
	case "ctrl+d", "pgdown":
		d.scroll(d.visibleLines())
	case "y":
		doc := d.json
		return d, func() tea.Msg { return CopyRecordMsg{JSON: doc} }
	}
	return d, nil
}

// View renders the detail box
func (d *RecordDetail) View() string {
	if d.lines == nil {
		d.lines = d.buildLines()
	}

	end := min(d.offset+d.visibleLines(), len(d.lines))
	body := strings.Join(d.lines[d.offset:end], "\n")

	title := d.Theme.Title().Render(d.title)
	hint := d.Theme.Faint().Render(fmt.Sprintf("%d fields  ↑↓ scroll  y copy JSON  Esc close", len(d.fields)))

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(d.Theme.BorderFocused).
		Foreground(d.Theme.Foreground).
		Padding(0, 1).
		Width(max(d.Width-4, 20)).
		Render(title + "\n" + body + "\n" + hint)
}
