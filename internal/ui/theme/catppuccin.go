package theme

import "github.com/charmbracelet/lipgloss"

// CatppuccinMochaTheme returns the Catppuccin Mocha theme
// Based on: https://github.com/catppuccin/catppuccin
func CatppuccinMochaTheme() Theme {
	return Theme{
		Name: "catppuccin-mocha",

		Background: lipgloss.Color("#1e1e2e"), // Base
		Foreground: lipgloss.Color("#cdd6f4"), // Text
		Muted:      lipgloss.Color("#6c7086"), // Overlay0

		Border:        lipgloss.Color("#45475a"), // Surface1
		BorderFocused: lipgloss.Color("#89b4fa"), // Blue
		Selection:     lipgloss.Color("#313244"), // Surface0
		Cursor:        lipgloss.Color("#f5e0dc"), // Rosewater

		Success: lipgloss.Color("#a6e3a1"), // Green
		Warning: lipgloss.Color("#f9e2af"), // Yellow
		Error:   lipgloss.Color("#f38ba8"), // Red
		Info:    lipgloss.Color("#89dceb"), // Sky

		TableHeader:      lipgloss.Color("#89b4fa"), // Blue
		TableRowEven:     lipgloss.Color("#1e1e2e"), // Base
		TableRowOdd:      lipgloss.Color("#181825"), // Mantle
		TableRowSelected: lipgloss.Color("#313244"), // Surface0

		GroupHeader:    lipgloss.Color("#cba6f7"), // Mauve
		GroupCollapsed: lipgloss.Color("#6c7086"), // Overlay0
		GroupCount:     lipgloss.Color("#fab387"), // Peach
		CardBorder:     lipgloss.Color("#45475a"), // Surface1
		CardTitle:      lipgloss.Color("#b4befe"), // Lavender

		ChipField:    lipgloss.Color("#89b4fa"), // Blue
		ChipOperator: lipgloss.Color("#f9e2af"), // Yellow
		ChipValue:    lipgloss.Color("#a6e3a1"), // Green
		PresetActive: lipgloss.Color("#a6e3a1"), // Green
		PresetSystem: lipgloss.Color("#a6adc8"), // Subtext0
	}
}
