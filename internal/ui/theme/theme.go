package theme

import "github.com/charmbracelet/lipgloss"

// Theme defines the color scheme and styling
type Theme struct {
	Name string

	// Background colors
	Background lipgloss.Color
	Foreground lipgloss.Color
	Muted      lipgloss.Color

	// UI elements
	Border        lipgloss.Color
	BorderFocused lipgloss.Color
	Selection     lipgloss.Color
	Cursor        lipgloss.Color

	// Status colors
	Success lipgloss.Color
	Warning lipgloss.Color
	Error   lipgloss.Color
	Info    lipgloss.Color

	// Table colors
	TableHeader      lipgloss.Color
	TableRowEven     lipgloss.Color
	TableRowOdd      lipgloss.Color
	TableRowSelected lipgloss.Color

	// Groups and cards
	GroupHeader    lipgloss.Color
	GroupCollapsed lipgloss.Color
	GroupCount     lipgloss.Color
	CardBorder     lipgloss.Color
	CardTitle      lipgloss.Color

	// Filter chips
	ChipField    lipgloss.Color
	ChipOperator lipgloss.Color
	ChipValue    lipgloss.Color
	PresetActive lipgloss.Color
	PresetSystem lipgloss.Color
}

// Names lists the built-in themes
var Names = []string{"default", "catppuccin-mocha"}

// GetTheme returns a theme by name
func GetTheme(name string) Theme {
	switch name {
	case "catppuccin", "catppuccin-mocha":
		return CatppuccinMochaTheme()
	default:
		return DefaultTheme()
	}
}

// Title renders a bold heading in the focused border color
func (t Theme) Title() lipgloss.Style {
	return lipgloss.NewStyle().Bold(true).Foreground(t.BorderFocused)
}

// Faint renders secondary text
func (t Theme) Faint() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Muted)
}
