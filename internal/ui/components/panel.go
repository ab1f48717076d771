package components

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/rebeliceyang/lazyfacet/internal/ui/theme"
)

// Panel represents a bordered UI panel
type Panel struct {
	Title   string
	Content string
	Width   int
	Height  int
	Focused bool
	Theme   theme.Theme
}

// View renders the panel
func (p *Panel) View() string {
	if p.Width <= 0 || p.Height <= 0 {
		return ""
	}

	border := p.Theme.Border
	if p.Focused {
		border = p.Theme.BorderFocused
	}

	style := lipgloss.NewStyle().
		Width(p.Width).
		Height(p.Height).
		MaxHeight(p.Height + 2).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(border)

	// Add title if present
	content := p.Content
	if p.Title != "" {
		content = p.Theme.Title().Padding(0, 1).Render(p.Title) + "\n" + content
	}

	return style.Render(content)
}
