package components

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/rebeliceyang/lazyfacet/internal/filter"
	"github.com/rebeliceyang/lazyfacet/internal/models"
	"github.com/rebeliceyang/lazyfacet/internal/ui/theme"
)

// AddConditionMsg is sent when a condition has been built
type AddConditionMsg struct {
	Condition models.FilterCondition
}

// RemoveConditionMsg is sent when a condition should be dropped
type RemoveConditionMsg struct {
	ID string
}

// ToggleLogicMsg is sent when the group should switch between AND and OR
type ToggleLogicMsg struct{}

// CloseFilterBuilderMsg is sent when the filter builder should close
type CloseFilterBuilderMsg struct{}

// FilterBuilder provides an interactive UI for building filter conditions
type FilterBuilder struct {
	Width  int
	Height int
	Theme  theme.Theme

	// State
	fields          []models.FieldDescriptor
	group           models.FilterGroup
	currentIndex    int    // Index in conditions list
	editMode        string // "", "field", "operator", "value"
	fieldInput      string
	operatorIndex   int
	valueInput      string
	validationError string

	selectedField models.FieldDescriptor
	availableOps  []models.FilterOperator
}

// NewFilterBuilder creates a new filter builder
func NewFilterBuilder(th theme.Theme) *FilterBuilder {
	return &FilterBuilder{
		Width:  70,
		Height: 24,
		Theme:  th,
	}
}

// SetFields updates the fields offered for filtering
func (fb *FilterBuilder) SetFields(fields []models.FieldDescriptor) {
	fb.fields = fields
}

// SetGroup shows the conditions currently applied
func (fb *FilterBuilder) SetGroup(group models.FilterGroup) {
	fb.group = group
	if fb.currentIndex >= len(group.Conditions) {
		fb.currentIndex = max(len(group.Conditions)-1, 0)
	}
}

// Editing reports whether the builder is in the middle of a condition
func (fb *FilterBuilder) Editing() bool {
	return fb.editMode != ""
}

// Update handles keyboard input
func (fb *FilterBuilder) Update(msg tea.KeyMsg) (*FilterBuilder, tea.Cmd) {
	switch fb.editMode {
	case "field":
		return fb.handleFieldMode(msg)
	case "operator":
		return fb.handleOperatorMode(msg)
	case "value":
		return fb.handleValueMode(msg)
	default:
		return fb.handleNavigationMode(msg)
	}
}

func (fb *FilterBuilder) handleNavigationMode(msg tea.KeyMsg) (*FilterBuilder, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if fb.currentIndex > 0 {
			fb.currentIndex--
		}
	case "down", "j":
		if fb.currentIndex < len(fb.group.Conditions)-1 {
			fb.currentIndex++
		}
	case "a", "n":
		fb.editMode = "field"
		fb.fieldInput = ""
		fb.validationError = ""
	case "d", "x":
		if fb.currentIndex < len(fb.group.Conditions) {
			id := fb.group.Conditions[fb.currentIndex].ID
			return fb, func() tea.Msg { return RemoveConditionMsg{ID: id} }
		}
	case "l":
		return fb, func() tea.Msg { return ToggleLogicMsg{} }
	case "esc", "enter":
		return fb, func() tea.Msg { return CloseFilterBuilderMsg{} }
	}
	return fb, nil
}

// findField matches input against field IDs first, then labels
func (fb *FilterBuilder) findField(input string) (models.FieldDescriptor, bool) {
	for _, f := range fb.fields {
		if strings.EqualFold(f.ID, input) {
			return f, true
		}
	}
	for _, f := range fb.fields {
		if strings.EqualFold(f.Label, input) {
			return f, true
		}
	}
	return models.FieldDescriptor{}, false
}

func (fb *FilterBuilder) handleFieldMode(msg tea.KeyMsg) (*FilterBuilder, tea.Cmd) {
	switch msg.String() {
	case "esc":
		fb.editMode = ""
		fb.fieldInput = ""
		fb.validationError = ""
	case "enter":
		field, ok := fb.findField(fb.fieldInput)
		if !ok {
			if fb.fieldInput == "" || len(fb.fields) > 0 {
				fb.validationError = fmt.Sprintf("Field '%s' not found", fb.fieldInput)
				return fb, nil
			}
			// with no catalog any path is accepted
			field = models.FieldDescriptor{ID: fb.fieldInput, Label: fb.fieldInput}
		}
		fb.selectedField = field
		fb.availableOps = filter.OperatorsForType(field.Type)
		fb.editMode = "operator"
		fb.operatorIndex = 0
		fb.validationError = ""
	case "backspace":
		if len(fb.fieldInput) > 0 {
			fb.fieldInput = fb.fieldInput[:len(fb.fieldInput)-1]
		}
	default:
		if msg.Type == tea.KeyRunes {
			fb.fieldInput += string(msg.Runes)
		}
	}
	return fb, nil
}

func (fb *FilterBuilder) handleOperatorMode(msg tea.KeyMsg) (*FilterBuilder, tea.Cmd) {
	switch msg.String() {
	case "esc":
		fb.editMode = "field"
	case "up", "k":
		if fb.operatorIndex > 0 {
			fb.operatorIndex--
		}
	case "down", "j":
		if fb.operatorIndex < len(fb.availableOps)-1 {
			fb.operatorIndex++
		}
	case "enter":
		op := fb.availableOps[fb.operatorIndex]
		if op == models.OpIsEmpty || op == models.OpIsNotEmpty {
			// No value needed
			return fb, fb.emit(op, "")
		}
		fb.editMode = "value"
		fb.valueInput = ""
	}
	return fb, nil
}

func (fb *FilterBuilder) handleValueMode(msg tea.KeyMsg) (*FilterBuilder, tea.Cmd) {
	switch msg.String() {
	case "esc":
		fb.editMode = "operator"
		fb.valueInput = ""
	case "enter":
		return fb, fb.emit(fb.availableOps[fb.operatorIndex], fb.valueInput)
	case "backspace":
		if len(fb.valueInput) > 0 {
			fb.valueInput = fb.valueInput[:len(fb.valueInput)-1]
		}
	default:
		switch msg.Type {
		case tea.KeySpace:
			fb.valueInput += " "
		case tea.KeyRunes:
			fb.valueInput += string(msg.Runes)
		}
	}
	return fb, nil
}

func (fb *FilterBuilder) emit(op models.FilterOperator, input string) tea.Cmd {
	field := fb.selectedField
	cond := filter.NewCondition(field.ID, op, filter.ParseValue(input, op, field.Type), field.Type)

	fb.editMode = ""
	fb.valueInput = ""
	return func() tea.Msg { return AddConditionMsg{Condition: cond} }
}

// View renders the filter builder
func (fb *FilterBuilder) View() string {
	var sections []string

	titleStyle := lipgloss.NewStyle().
		Foreground(fb.Theme.Background).
		Background(fb.Theme.Info).
		Padding(0, 1).
		Bold(true)
	sections = append(sections, titleStyle.Render("Filter Builder"))

	instructionStyle := lipgloss.NewStyle().
		Foreground(fb.Theme.Muted).
		Padding(0, 1)

	var instructions string
	switch fb.editMode {
	case "field":
		instructions = "Type field name, Enter to confirm, Esc to cancel"
	case "operator":
		instructions = "↑↓ Select operator, Enter to confirm, Esc to go back"
	case "value":
		instructions = "Type value (comma separated for in), Enter to confirm, Esc to go back"
	default:
		instructions = "a=Add d=Delete l=AND/OR Esc=Close"
	}
	sections = append(sections, instructionStyle.Render(instructions))

	if fb.validationError != "" {
		errorStyle := lipgloss.NewStyle().
			Foreground(fb.Theme.Error).
			Padding(0, 1).
			Bold(true)
		sections = append(sections, errorStyle.Render("Error: "+fb.validationError))
	}

	if len(fb.group.Conditions) > 0 {
		logic := fb.group.Logic
		if logic == "" {
			logic = models.LogicAnd
		}
		sections = append(sections, fmt.Sprintf("\nConditions (%s):", logic))
		for i, cond := range fb.group.Conditions {
			style := lipgloss.NewStyle().Padding(0, 1)
			if i == fb.currentIndex && fb.editMode == "" {
				style = style.Background(fb.Theme.Selection).Foreground(fb.Theme.Foreground)
			}
			sections = append(sections, style.Render(fmt.Sprintf(" %d. %s", i+1, filter.Compile(cond))))
		}
	} else {
		sections = append(sections, instructionStyle.Render("\nNo conditions, every record matches"))
	}

	if fb.editMode != "" {
		sections = append(sections, "")
		switch fb.editMode {
		case "field":
			sections = append(sections, fmt.Sprintf("Field: %s_", fb.fieldInput))
			if len(fb.fields) > 0 {
				ids := make([]string, len(fb.fields))
				for i, f := range fb.fields {
					ids[i] = f.ID
				}
				sections = append(sections, instructionStyle.Render(strings.Join(ids, ", ")))
			}
		case "operator":
			sections = append(sections, fmt.Sprintf("Field: %s", fb.selectedField.ID))
			sections = append(sections, "Select operator:")
			for i, op := range fb.availableOps {
				style := lipgloss.NewStyle().Padding(0, 1)
				if i == fb.operatorIndex {
					style = style.Background(fb.Theme.Selection).Foreground(fb.Theme.Foreground)
				}
				sections = append(sections, style.Render(fmt.Sprintf("  %s", op)))
			}
		case "value":
			sections = append(sections, fmt.Sprintf("Field: %s %s", fb.selectedField.ID, fb.availableOps[fb.operatorIndex]))
			sections = append(sections, fmt.Sprintf("Value: %s_", fb.valueInput))
		}
	}

	containerStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(fb.Theme.BorderFocused).
		Foreground(fb.Theme.Foreground).
		Width(fb.Width).
		Padding(1)

	return containerStyle.Render(strings.Join(sections, "\n"))
}
