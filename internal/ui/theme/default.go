package theme

import "github.com/charmbracelet/lipgloss"

// DefaultTheme returns the default dark theme
func DefaultTheme() Theme {
	return Theme{
		Name: "default",

		Background: lipgloss.Color("235"),
		Foreground: lipgloss.Color("252"),
		Muted:      lipgloss.Color("244"),

		Border:        lipgloss.Color("240"),
		BorderFocused: lipgloss.Color("62"),
		Selection:     lipgloss.Color("237"),
		Cursor:        lipgloss.Color("248"),

		Success: lipgloss.Color("42"),
		Warning: lipgloss.Color("220"),
		Error:   lipgloss.Color("196"),
		Info:    lipgloss.Color("75"),

		TableHeader:      lipgloss.Color("62"),
		TableRowEven:     lipgloss.Color("235"),
		TableRowOdd:      lipgloss.Color("236"),
		TableRowSelected: lipgloss.Color("237"),

		GroupHeader:    lipgloss.Color("75"),
		GroupCollapsed: lipgloss.Color("244"),
		GroupCount:     lipgloss.Color("150"),
		CardBorder:     lipgloss.Color("240"),
		CardTitle:      lipgloss.Color("117"),

		ChipField:    lipgloss.Color("117"),
		ChipOperator: lipgloss.Color("220"),
		ChipValue:    lipgloss.Color("180"),
		PresetActive: lipgloss.Color("42"),
		PresetSystem: lipgloss.Color("244"),
	}
}
