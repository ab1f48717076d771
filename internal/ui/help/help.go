package help

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/rebeliceyang/lazyfacet/internal/ui/theme"
)

// KeyBinding represents a keyboard shortcut
type KeyBinding struct {
	Key         string
	Description string
}

// Section is a titled list of key bindings
type Section struct {
	Title string
	Keys  []KeyBinding
}

// Sections returns every documented key binding
func Sections() []Section {
	return []Section{
		{"Global", []KeyBinding{
			{"?", "Toggle help"},
			{"q, Ctrl+C", "Quit application"},
			{"Esc", "Close overlay"},
			{"v", "Cycle view mode (grid, list, table, kanban)"},
			{"y", "Copy current result as CSV"},
			{"R", "Reset filters, sort, group and search"},
		}},
		{"Navigation", []KeyBinding{
			{"↑/k", "Move up"},
			{"↓/j", "Move down"},
			{"Ctrl+U", "Page up"},
			{"Ctrl+D", "Page down"},
			{"Enter, Space", "Toggle the group or open the record under the cursor"},
		}},
		{"Query", []KeyBinding{
			{"/", "Search"},
			{"f", "Open filter builder"},
			{"s", "Cycle sort field"},
			{"S", "Flip sort direction"},
			{"g", "Cycle group field"},
		}},
		{"Presets", []KeyBinding{
			{"p", "Apply next preset"},
			{"P", "Save current view as preset"},
			{"X", "Delete active preset"},
		}},
	}
}

// Render creates the help view
func Render(width, height int, th theme.Theme) string {
	titleStyle := th.Title().Padding(1, 0)

	sectionStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(th.Info).
		Padding(0, 0, 0, 2)

	keyStyle := lipgloss.NewStyle().
		Foreground(th.Warning).
		Width(20)

	descStyle := lipgloss.NewStyle().
		Foreground(th.Foreground)

	var b strings.Builder

	b.WriteString(titleStyle.Render("lazyfacet - Keyboard Shortcuts"))
	b.WriteString("\n\n")

	for _, section := range Sections() {
		b.WriteString(sectionStyle.Render(section.Title))
		b.WriteString("\n")
		for _, kb := range section.Keys {
			b.WriteString("  ")
			b.WriteString(keyStyle.Render(kb.Key))
			b.WriteString(descStyle.Render(kb.Description))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	b.WriteString(th.Faint().Render("Press '?' or Esc to close help"))

	// Wrap in a box
	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(th.BorderFocused).
		Padding(1, 2).
		Width(max(width-4, 20)).
		Height(max(height-4, 5))

	return boxStyle.Render(b.String())
}
