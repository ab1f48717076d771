package components

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/rebeliceyang/lazyfacet/internal/ui/theme"
)

// SearchInputMsg is sent whenever the search query or mode changes
type SearchInputMsg struct {
	Query string
	Exact bool
}

// CloseSearchMsg is sent when search should be closed. Cleared is set when
// the query was discarded.
type CloseSearchMsg struct {
	Cleared bool
}

// SearchInput provides a search input box
type SearchInput struct {
	Input   textinput.Model
	Exact   bool
	Theme   theme.Theme
	Width   int
	Visible bool
}

// NewSearchInput creates a new search input
func NewSearchInput(th theme.Theme) *SearchInput {
	ti := textinput.New()
	ti.Placeholder = "Search..."
	ti.Focus()
	ti.CharLimit = 256
	ti.Width = 40

	return &SearchInput{
		Input: ti,
		Theme: th,
	}
}

// ToggleMode switches between substring and exact matching
func (s *SearchInput) ToggleMode() {
	s.Exact = !s.Exact
}

// Reset clears the search input
func (s *SearchInput) Reset() {
	s.Input.SetValue("")
	s.Exact = false
}

func (s *SearchInput) changed() tea.Cmd {
	msg := SearchInputMsg{Query: s.Input.Value(), Exact: s.Exact}
	return func() tea.Msg { return msg }
}

// Update handles messages
func (s *SearchInput) Update(msg tea.Msg) (*SearchInput, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "tab":
			s.ToggleMode()
			return s, s.changed()
		case "enter":
			return s, func() tea.Msg {
				return CloseSearchMsg{}
			}
		case "esc":
			s.Reset()
			return s, tea.Batch(s.changed(), func() tea.Msg {
				return CloseSearchMsg{Cleared: true}
			})
		}
	}

	before := s.Input.Value()
	var cmd tea.Cmd
	s.Input, cmd = s.Input.Update(msg)
	if s.Input.Value() != before {
		return s, tea.Batch(cmd, s.changed())
	}
	return s, cmd
}

// View renders the search input
func (s *SearchInput) View() string {
	modeIndicator := "[Contains]"
	modeColor := s.Theme.Success
	if s.Exact {
		modeIndicator = "[Exact]"
		modeColor = s.Theme.Info
	}

	modeStyle := lipgloss.NewStyle().
		Foreground(modeColor).
		Bold(true)

	// Reserve space for mode indicator
	s.Input.Width = max(s.Width-20, 20)

	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(s.Theme.BorderFocused).
		Padding(0, 1).
		Width(s.Width)

	helpStyle := lipgloss.NewStyle().
		Foreground(s.Theme.Muted).
		Italic(true)

	content := modeStyle.Render(modeIndicator) + " " + s.Input.View()
	helpText := helpStyle.Render("Tab: toggle exact │ Enter: keep │ Esc: clear")

	return boxStyle.Render(content + "\n" + helpText)
}
