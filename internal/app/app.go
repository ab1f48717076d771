// Package app is the terminal view over a record set
package app

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/rebeliceyang/lazyfacet/internal/config"
	"github.com/rebeliceyang/lazyfacet/internal/export"
	"github.com/rebeliceyang/lazyfacet/internal/filter"
	"github.com/rebeliceyang/lazyfacet/internal/models"
	"github.com/rebeliceyang/lazyfacet/internal/source"
	"github.com/rebeliceyang/lazyfacet/internal/ui/components"
	"github.com/rebeliceyang/lazyfacet/internal/ui/help"
	"github.com/rebeliceyang/lazyfacet/internal/ui/theme"
	"github.com/rebeliceyang/lazyfacet/internal/view"
)

type mode int

const (
	normalMode mode = iota
	helpMode
	searchMode
	filterMode
	presetNameMode
	detailMode
)

// StatusMsg shows a message in the bottom bar
type StatusMsg struct {
	Text  string
	Error bool
}

// App is the main application model
type App struct {
	config *config.Config
	theme  theme.Theme
	state  *view.State[source.Record]
	logger *zap.Logger

	mode          mode
	width, height int

	fields  []models.FieldDescriptor
	columns []string

	results       *components.ResultView
	panel         components.Panel
	search        *components.SearchInput
	filterBuilder *components.FilterBuilder
	detail        *components.RecordDetail
	nameInput     textinput.Model

	// -1 means unset
	sortIndex  int
	groupIndex int

	status    string
	statusErr bool

	copy func(string) error
}

// Option configures an App
type Option func(*App)

// WithFields sets the field catalog used by the sort, group and filter controls
func WithFields(fields []models.FieldDescriptor) Option {
	return func(a *App) {
		a.fields = fields
	}
}

// WithColumns sets the fields shown as columns
func WithColumns(columns []string) Option {
	return func(a *App) {
		a.columns = columns
	}
}

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) Option {
	return func(a *App) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// WithClipboard replaces the system clipboard writer
func WithClipboard(fn func(string) error) Option {
	return func(a *App) {
		a.copy = fn
	}
}

// New creates a new App over state
func New(cfg *config.Config, state *view.State[source.Record], opts ...Option) *App {
	if cfg == nil {
		cfg = config.GetDefaults()
	}
	th := theme.GetTheme(cfg.UI.Theme)

	a := &App{
		config:        cfg,
		theme:         th,
		state:         state,
		logger:        zap.NewNop(),
		results:       components.NewResultView(th),
		panel:         components.Panel{Focused: true, Theme: th},
		search:        components.NewSearchInput(th),
		filterBuilder: components.NewFilterBuilder(th),
		detail:        components.NewRecordDetail(th),
		nameInput:     textinput.New(),
		sortIndex:     -1,
		groupIndex:    -1,
		copy:          clipboard.WriteAll,
	}
	for _, opt := range opts {
		opt(a)
	}

	if len(a.columns) == 0 {
		a.columns = cfg.General.ExportColumns
	}
	if len(a.columns) == 0 {
		a.columns = export.Columns(state.Result().Items, nil)
	}
	if len(a.fields) == 0 {
		a.fields = source.DescribeFields(state.Result().Items)
	}

	a.nameInput.Placeholder = "Preset name"
	a.nameInput.CharLimit = 64
	a.results.GridColumns = max(cfg.UI.GridColumns, 1)
	a.filterBuilder.SetFields(a.fields)

	if cfg.UI.DefaultView != "" {
		state.SetViewMode(models.ParseViewMode(cfg.UI.DefaultView))
	}

	state.OnChange(func(result models.FilterResult[source.Record]) {
		a.refresh(result)
	})
	state.OnPresetsChange(func(presets []models.FilterPreset) {
		a.logger.Debug("preset list changed", zap.Int("count", len(presets)))
	})
	a.refresh(state.Result())

	return a
}

// Init implements tea.Model
func (a *App) Init() tea.Cmd {
	return nil
}

func (a *App) refresh(result models.FilterResult[source.Record]) {
	a.results.Mode = a.state.ViewMode()
	a.results.SetData(a.columns, components.BuildRows(result, a.columns))
	a.filterBuilder.SetGroup(a.state.Filters())
}

func (a *App) setStatus(text string, isErr bool) {
	a.status = text
	a.statusErr = isErr
	if isErr {
		a.logger.Warn(text)
	}
}

// Update implements tea.Model
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.updateDimensions()
		return a, nil

	case StatusMsg:
		a.setStatus(msg.Text, msg.Error)
		return a, nil

	case components.SearchInputMsg:
		a.applySearch(msg.Query, msg.Exact)
		return a, nil

	case components.CloseSearchMsg:
		if a.mode == searchMode {
			a.mode = normalMode
		}
		return a, nil

	case components.AddConditionMsg:
		c := msg.Condition
		a.state.AddCondition(c.Field, c.Operator, c.Value, c.FieldType)
		a.setStatus("Added "+filter.Compile(c).String(), false)
		return a, nil

	case components.RemoveConditionMsg:
		a.state.RemoveCondition(msg.ID)
		return a, nil

	case components.ToggleLogicMsg:
		if a.state.Filters().Logic == models.LogicOr {
			a.state.SetLogic(models.LogicAnd)
		} else {
			a.state.SetLogic(models.LogicOr)
		}
		return a, nil

	case components.CloseFilterBuilderMsg:
		a.mode = normalMode
		return a, nil

	case components.CloseDetailMsg:
		if a.mode == detailMode {
			a.mode = normalMode
		}
		return a, nil

	case components.CopyRecordMsg:
		if err := a.copy(msg.JSON); err != nil {
			a.setStatus("Clipboard unavailable: "+err.Error(), true)
			return a, nil
		}
		a.setStatus("Copied record as JSON", false)
		return a, nil

	case tea.MouseMsg:
		if a.mode != normalMode {
			return a, nil
		}
		switch msg.Button {
		case tea.MouseButtonWheelUp:
			a.results.MoveSelection(-1)
		case tea.MouseButtonWheelDown:
			a.results.MoveSelection(1)
		}
		return a, nil

	case tea.KeyMsg:
		model, cmd := a.handleKey(msg)
		a.updateDimensions()
		return model, cmd
	}
	return a, nil
}

func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return a, tea.Quit
	}

	switch a.mode {
	case helpMode:
		switch msg.String() {
		case "?", "esc", "q":
			a.mode = normalMode
		}
		return a, nil

	case searchMode:
		var cmd tea.Cmd
		a.search, cmd = a.search.Update(msg)
		a.applySearch(a.search.Input.Value(), a.search.Exact)
		switch msg.String() {
		case "enter", "esc":
			a.mode = normalMode
		}
		return a, cmd

	case filterMode:
		var cmd tea.Cmd
		a.filterBuilder, cmd = a.filterBuilder.Update(msg)
		return a, cmd

	case presetNameMode:
		return a.handlePresetName(msg)

	case detailMode:
		var cmd tea.Cmd
		a.detail, cmd = a.detail.Update(msg)
		return a, cmd
	}

	switch msg.String() {
	case "q":
		return a, tea.Quit
	case "?":
		a.mode = helpMode
	case "/":
		a.mode = searchMode
		a.search.Visible = true
		a.updateDimensions()
		return a, textinput.Blink
	case "f":
		a.mode = filterMode
		a.filterBuilder.SetGroup(a.state.Filters())
	case "v":
		a.results.Mode = a.state.CycleViewMode()
	case "up", "k":
		a.results.MoveSelection(-1)
	case "down", "j":
		a.results.MoveSelection(1)
	case "ctrl+u":
		a.results.PageUp()
	case "ctrl+d":
		a.results.PageDown()
	case "enter", " ":
		row, ok := a.results.Selected()
		if !ok {
			break
		}
		if row.Kind == components.RowGroup {
			a.state.ToggleGroup(row.GroupKey)
			break
		}
		a.detail.SetRecord(row.Title(), row.Item)
		a.mode = detailMode
	case "s":
		a.cycleSort()
	case "S":
		a.flipSort()
	case "g":
		a.cycleGroup()
	case "p":
		a.nextPreset()
	case "P":
		a.mode = presetNameMode
		a.nameInput.SetValue("")
		a.nameInput.Focus()
		return a, textinput.Blink
	case "X":
		a.deleteActivePreset()
	case "y":
		a.copyCSV()
	case "R":
		a.state.Reset()
		a.search.Reset()
		a.sortIndex, a.groupIndex = -1, -1
		a.setStatus("Reset", false)
	}
	return a, nil
}

func (a *App) applySearch(query string, exact bool) {
	cfg := a.state.Search()
	if len(cfg.Fields) == 0 {
		cfg.Fields = a.config.General.SearchFields
	}
	if cfg.Query == query && cfg.ExactMatch == exact {
		return
	}
	cfg.Query = query
	cfg.ExactMatch = exact
	a.state.SetSearchConfig(cfg)
}

func (a *App) cycleSort() {
	if len(a.fields) == 0 {
		return
	}
	a.sortIndex++
	if a.sortIndex >= len(a.fields) {
		a.sortIndex = -1
		a.state.SetSort(nil)
		a.setStatus("Sort cleared", false)
		return
	}
	field := a.fields[a.sortIndex].ID
	a.state.SetSort(&models.SortConfig{Options: []models.SortOption{{Field: field, Direction: models.SortAsc}}})
	a.setStatus("Sorted by "+field, false)
}

func (a *App) flipSort() {
	current := a.state.Sort()
	if current == nil || len(current.Options) == 0 {
		return
	}
	options := append([]models.SortOption(nil), current.Options...)
	if options[0].Direction == models.SortDesc {
		options[0].Direction = models.SortAsc
	} else {
		options[0].Direction = models.SortDesc
	}
	a.state.SetSort(&models.SortConfig{Options: options})
}

func (a *App) cycleGroup() {
	if len(a.fields) == 0 {
		return
	}
	a.groupIndex++
	if a.groupIndex >= len(a.fields) {
		a.groupIndex = -1
		a.state.SetGroup(nil)
		a.setStatus("Grouping cleared", false)
		return
	}
	field := a.fields[a.groupIndex].ID
	a.state.SetGroup(&models.GroupConfig{Field: field})
	a.setStatus("Grouped by "+field, false)
}

func (a *App) nextPreset() {
	presets := a.state.Presets()
	if len(presets) == 0 {
		a.setStatus("No presets", false)
		return
	}

	next := 0
	for i, p := range presets {
		if p.ID == a.state.ActivePreset() {
			next = (i + 1) % len(presets)
			break
		}
	}
	p := presets[next]
	if err := a.state.ApplyPreset(p.ID); err != nil {
		a.setStatus(err.Error(), true)
		return
	}
	a.setStatus("Preset: "+p.Name, false)
}

func (a *App) handlePresetName(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		a.mode = normalMode
		a.nameInput.Blur()
		return a, nil
	case "enter":
		a.mode = normalMode
		a.nameInput.Blur()
		saved, err := a.state.SaveAsPreset(a.nameInput.Value(), "")
		if err != nil {
			a.setStatus("Could not save preset: "+err.Error(), true)
			return a, nil
		}
		a.setStatus("Saved preset "+saved.Name, false)
		return a, nil
	}

	var cmd tea.Cmd
	a.nameInput, cmd = a.nameInput.Update(msg)
	return a, cmd
}

func (a *App) deleteActivePreset() {
	id := a.state.ActivePreset()
	if id == "" {
		a.setStatus("No active preset", false)
		return
	}
	deleted, err := a.state.DeletePreset(id)
	switch {
	case err != nil:
		a.setStatus("Could not delete preset: "+err.Error(), true)
	case !deleted:
		a.setStatus("System presets cannot be deleted", true)
	default:
		a.setStatus("Preset deleted", false)
	}
}

func (a *App) copyCSV() {
	var buf bytes.Buffer
	if err := export.WriteCSV(&buf, a.state.Result(), a.columns); err != nil {
		a.setStatus(err.Error(), true)
		return
	}
	if err := a.copy(buf.String()); err != nil {
		a.setStatus("Clipboard unavailable: "+err.Error(), true)
		return
	}
	a.setStatus(fmt.Sprintf("Copied %d records", a.state.Result().FilteredCount), false)
}

// View implements tea.Model
func (a *App) View() string {
	if a.width == 0 {
		return "Loading..."
	}

	switch a.mode {
	case helpMode:
		return help.Render(a.width, a.height, a.theme)
	case filterMode:
		return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, a.filterBuilder.View())
	case detailMode:
		return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, a.detail.View())
	}

	return a.renderNormalView()
}

func (a *App) renderNormalView() string {
	result := a.state.Result()

	left := fmt.Sprintf("lazyfacet  %d/%d records", result.FilteredCount, result.TotalCount)
	right := string(a.state.ViewMode())
	if id := a.state.ActivePreset(); id != "" {
		for _, p := range a.state.Presets() {
			if p.ID == id {
				right = "★ " + p.Name + "  " + right
			}
		}
	}
	topBar := lipgloss.NewStyle().
		Width(a.width).
		Background(a.theme.BorderFocused).
		Foreground(a.theme.Background).
		Padding(0, 2).
		Render(a.formatStatusBar(left, right))

	sections := []string{topBar, a.renderQueryLine()}

	if a.mode == searchMode {
		sections = append(sections, a.search.View())
	}
	if a.mode == presetNameMode {
		sections = append(sections, lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(a.theme.BorderFocused).
			Padding(0, 1).
			Render("Save preset as: "+a.nameInput.View()))
	}

	a.panel.Title = a.panelTitle()
	a.panel.Content = a.results.View()
	sections = append(sections, a.panel.View())

	bottomLeft := "[/] Search [f] Filter [s] Sort [g] Group [v] View [p] Presets [?] Help [q] Quit"
	bottomStyle := lipgloss.NewStyle().
		Width(a.width).
		Background(a.theme.Selection).
		Foreground(a.theme.Foreground).
		Padding(0, 2)
	if a.statusErr {
		bottomStyle = bottomStyle.Foreground(a.theme.Error)
	}
	sections = append(sections, bottomStyle.Render(a.formatStatusBar(bottomLeft, a.status)))

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (a *App) panelTitle() string {
	var parts []string
	if s := a.state.Sort(); s != nil {
		keys := make([]string, len(s.Options))
		for i, o := range s.Options {
			keys[i] = o.Field + " " + string(o.Direction)
		}
		parts = append(parts, "sort: "+strings.Join(keys, ", "))
	}
	if g := a.state.Group(); g != nil {
		parts = append(parts, "group: "+g.Field)
	}
	if q := a.state.Search().Query; q != "" {
		parts = append(parts, fmt.Sprintf("search: %q", q))
	}
	if len(parts) == 0 {
		return "Results"
	}
	return "Results  " + strings.Join(parts, "  ")
}

// renderQueryLine shows the active conditions as chips
func (a *App) renderQueryLine() string {
	group := a.state.Filters()
	if group.IsEmpty() {
		return a.theme.Faint().Render(" no filters")
	}

	chip := func(c models.FilterCondition) string {
		field := lipgloss.NewStyle().Foreground(a.theme.ChipField).Render(c.Field)
		op := lipgloss.NewStyle().Foreground(a.theme.ChipOperator).Render(string(c.Operator))
		out := field + " " + op
		if c.Value != nil {
			out += " " + lipgloss.NewStyle().Foreground(a.theme.ChipValue).Render(fmt.Sprint(c.Value))
		}
		return "[" + out + "]"
	}

	chips := make([]string, len(group.Conditions))
	for i, c := range group.Conditions {
		chips[i] = chip(c)
	}
	logic := group.Logic
	if logic == "" {
		logic = models.LogicAnd
	}
	return " " + strings.Join(chips, " "+string(logic)+" ")
}

func (a *App) updateDimensions() {
	if a.width <= 0 || a.height <= 0 {
		return
	}

	// top bar, query line, bottom bar and panel border + title
	chrome := 6
	if a.mode == searchMode || a.mode == presetNameMode {
		chrome += 4
	}

	a.panel.Width = max(a.width-2, 20)
	a.panel.Height = max(a.height-chrome, 5)
	a.results.Width = a.panel.Width
	a.results.Height = a.panel.Height - 1
	a.search.Width = max(a.width-4, 30)
	a.filterBuilder.Width = min(max(a.width-10, 40), 90)
	a.detail.Width = min(max(a.width-6, 40), 120)
	a.detail.Height = max(a.height-2, 8)
}

// formatStatusBar formats a status bar with left and right aligned content
func (a *App) formatStatusBar(left, right string) string {
	// Account for padding (2 chars on each side = 4 total)
	availableWidth := max(a.width-4, 0)

	leftLen := lipgloss.Width(left)
	rightLen := lipgloss.Width(right)

	if leftLen+rightLen+1 > availableWidth {
		return left
	}

	spacing := availableWidth - leftLen - rightLen
	return left + strings.Repeat(" ", spacing) + right
}
