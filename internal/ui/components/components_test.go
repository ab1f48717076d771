package components

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/rebeliceyang/lazyfacet/internal/models"
	"github.com/rebeliceyang/lazyfacet/internal/query"
	"github.com/rebeliceyang/lazyfacet/internal/ui/theme"
)

func records() []map[string]any {
	return []map[string]any{
		{"name": "Logo", "status": "active", "score": 3.0},
		{"name": "Guide", "status": "draft", "score": 8.0},
		{"name": "Palette", "status": "active"},
	}
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestBuildRows_Flat(t *testing.T) {
	result := query.ApplyAll(records(), models.FilterGroup{}, nil, nil, nil)
	rows := BuildRows(result, []string{"name", "score"})

	if len(rows) != 3 {
		t.Fatalf("Expected 3 rows, got %d", len(rows))
	}
	if rows[0].Kind != RowRecord || rows[0].Title() != "Logo" {
		t.Errorf("Unexpected first row %+v", rows[0])
	}
	if rows[2].Cells[1] != "" {
		t.Errorf("Expected empty cell for missing score, got %q", rows[2].Cells[1])
	}
}

func TestBuildRows_GroupedHidesCollapsedMembers(t *testing.T) {
	group := &models.GroupConfig{Field: "status", CollapsedGroups: []string{"draft"}}
	result := query.ApplyAll(records(), models.FilterGroup{}, nil, group, nil)
	rows := BuildRows(result, []string{"name"})

	// active header + 2 members + draft header
	if len(rows) != 4 {
		t.Fatalf("Expected 4 rows, got %d", len(rows))
	}
	if rows[0].Kind != RowGroup || rows[0].Label != "Active" || rows[0].Count != 2 {
		t.Errorf("Unexpected header %+v", rows[0])
	}
	last := rows[3]
	if last.Kind != RowGroup || !last.Collapsed || last.Count != 1 {
		t.Errorf("Expected collapsed draft header with count 1, got %+v", last)
	}
}

func TestResultView_Modes(t *testing.T) {
	group := &models.GroupConfig{Field: "status"}
	result := query.ApplyAll(records(), models.FilterGroup{}, nil, group, nil)
	columns := []string{"name", "status"}

	rv := NewResultView(theme.DefaultTheme())
	rv.Width = 120
	rv.Height = 30
	rv.SetData(columns, BuildRows(result, columns))

	for _, mode := range models.ViewModes {
		rv.Mode = mode
		view := rv.View()
		for _, want := range []string{"Logo", "Guide", "Active"} {
			if !strings.Contains(view, want) {
				t.Errorf("%s view missing %q", mode, want)
			}
		}
	}
}

func TestResultView_Empty(t *testing.T) {
	rv := NewResultView(theme.DefaultTheme())
	rv.SetData([]string{"name"}, nil)
	if !strings.Contains(rv.View(), "No matching records") {
		t.Error("Expected empty state message")
	}
	if _, ok := rv.Selected(); ok {
		t.Error("Expected no selection in an empty view")
	}
}

func TestResultView_Selection(t *testing.T) {
	result := query.ApplyAll(records(), models.FilterGroup{}, nil, nil, nil)
	rv := NewResultView(theme.DefaultTheme())
	rv.SetData([]string{"name"}, BuildRows(result, []string{"name"}))

	rv.MoveSelection(1)
	if row, _ := rv.Selected(); row.Title() != "Guide" {
		t.Errorf("Expected Guide selected, got %q", row.Title())
	}

	rv.MoveSelection(10)
	if rv.SelectedRow != 2 {
		t.Errorf("Expected cursor clamped to 2, got %d", rv.SelectedRow)
	}

	rv.MoveSelection(-10)
	if rv.SelectedRow != 0 {
		t.Errorf("Expected cursor clamped to 0, got %d", rv.SelectedRow)
	}

	// shrinking the data keeps the cursor in range
	rv.SelectedRow = 2
	rv.SetData([]string{"name"}, BuildRows(result, []string{"name"})[:1])
	if rv.SelectedRow != 0 {
		t.Errorf("Expected cursor 0 after shrink, got %d", rv.SelectedRow)
	}
}

func TestPad(t *testing.T) {
	if got := pad("abc", 5); got != "abc  " {
		t.Errorf("Expected right padding, got %q", got)
	}
	if got := pad("abcdefgh", 4); got != "abc…" {
		t.Errorf("Expected truncation, got %q", got)
	}
}

func TestSearchInput(t *testing.T) {
	s := NewSearchInput(theme.DefaultTheme())

	s, cmd := s.Update(keyRunes("log"))
	if cmd == nil {
		t.Fatal("Expected a command after typing")
	}
	if s.Input.Value() != "log" {
		t.Errorf("Expected value 'log', got %q", s.Input.Value())
	}

	s, cmd = s.Update(tea.KeyMsg{Type: tea.KeyTab})
	if !s.Exact {
		t.Error("Expected exact mode after tab")
	}
	msg, ok := cmd().(SearchInputMsg)
	if !ok || msg.Query != "log" || !msg.Exact {
		t.Errorf("Unexpected search message %+v", msg)
	}

	_, cmd = s.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if closeMsg, ok := cmd().(CloseSearchMsg); !ok || closeMsg.Cleared {
		t.Errorf("Expected close without clearing, got %#v", closeMsg)
	}

	s.Reset()
	if s.Input.Value() != "" || s.Exact {
		t.Error("Reset should clear the query and mode")
	}
}

func TestFilterBuilder_AddCondition(t *testing.T) {
	fb := NewFilterBuilder(theme.DefaultTheme())
	fb.SetFields([]models.FieldDescriptor{
		{ID: "status", Label: "Status", Type: models.FieldSelect},
		{ID: "score", Label: "Score", Type: models.FieldNumber},
	})

	fb, _ = fb.Update(keyRunes("a"))
	for _, r := range "Score" {
		fb, _ = fb.Update(keyRunes(string(r)))
	}
	fb, _ = fb.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if fb.editMode != "operator" {
		t.Fatalf("Expected operator mode, got %q (%s)", fb.editMode, fb.validationError)
	}

	// equals, notEquals, greaterThan
	fb, _ = fb.Update(tea.KeyMsg{Type: tea.KeyDown})
	fb, _ = fb.Update(tea.KeyMsg{Type: tea.KeyDown})
	fb, _ = fb.Update(tea.KeyMsg{Type: tea.KeyEnter})
	fb, _ = fb.Update(keyRunes("5"))
	fb, cmd := fb.Update(tea.KeyMsg{Type: tea.KeyEnter})

	msg, ok := cmd().(AddConditionMsg)
	if !ok {
		t.Fatalf("Expected AddConditionMsg, got %T", cmd())
	}
	c := msg.Condition
	if c.Field != "score" || c.Operator != models.OpGreaterThan || c.Value != 5.0 {
		t.Errorf("Unexpected condition %+v", c)
	}
	if fb.Editing() {
		t.Error("Expected builder back in navigation mode")
	}
}

func TestFilterBuilder_UnknownField(t *testing.T) {
	fb := NewFilterBuilder(theme.DefaultTheme())
	fb.SetFields([]models.FieldDescriptor{{ID: "status"}})

	fb, _ = fb.Update(keyRunes("a"))
	fb, _ = fb.Update(keyRunes("x"))
	fb, _ = fb.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if fb.editMode != "field" || fb.validationError == "" {
		t.Error("Expected to stay in field mode with an error")
	}
}

func TestFilterBuilder_RemoveAndLogic(t *testing.T) {
	fb := NewFilterBuilder(theme.DefaultTheme())
	fb.SetGroup(models.FilterGroup{Conditions: []models.FilterCondition{
		{ID: "c1", Field: "status", Operator: models.OpEquals, Value: "active"},
	}})

	if !strings.Contains(fb.View(), "status == active") {
		t.Error("Expected the condition to be listed")
	}

	_, cmd := fb.Update(keyRunes("d"))
	if msg, ok := cmd().(RemoveConditionMsg); !ok || msg.ID != "c1" {
		t.Errorf("Expected RemoveConditionMsg for c1, got %#v", cmd())
	}

	_, cmd = fb.Update(keyRunes("l"))
	if _, ok := cmd().(ToggleLogicMsg); !ok {
		t.Errorf("Expected ToggleLogicMsg, got %#v", cmd())
	}
}

func TestRecordDetail(t *testing.T) {
	d := NewRecordDetail(theme.DefaultTheme())
	d.Width, d.Height = 80, 12
	d.SetRecord("Logo", map[string]any{
		"name":  "Logo",
		"owner": map[string]any{"team": "design"},
		"tags":  []any{"ui", "brand"},
	})

	view := d.View()
	for _, want := range []string{"Logo", "owner.team", "design", "JSON"} {
		if !strings.Contains(view, want) {
			t.Errorf("detail view missing %q", want)
		}
	}
	if !strings.Contains(d.JSON(), `"team": "design"`) {
		t.Errorf("Expected indented JSON, got %s", d.JSON())
	}

	d, _ = d.Update(keyRunes("j"))
	if d.offset != 1 {
		t.Errorf("Expected offset 1 after scrolling, got %d", d.offset)
	}
	d, _ = d.Update(tea.KeyMsg{Type: tea.KeyCtrlD})
	d, _ = d.Update(tea.KeyMsg{Type: tea.KeyCtrlD})
	if limit := len(d.lines) - d.visibleLines(); d.offset != limit {
		t.Errorf("Expected offset clamped to %d, got %d", limit, d.offset)
	}

	_, cmd := d.Update(keyRunes("y"))
	if msg, ok := cmd().(CopyRecordMsg); !ok || msg.JSON != d.JSON() {
		t.Errorf("Expected CopyRecordMsg with the record JSON, got %#v", cmd())
	}
	_, cmd = d.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if _, ok := cmd().(CloseDetailMsg); !ok {
		t.Errorf("Expected CloseDetailMsg, got %#v", cmd())
	}
}

func TestFormat(t *testing.T) {
	if got := Format(nil); got != "null" {
		t.Errorf("Expected null, got %q", got)
	}
	if got := Format(map[string]any{"a": 1}); got != "{\n  \"a\": 1\n}" {
		t.Errorf("Unexpected formatting %q", got)
	}
}
