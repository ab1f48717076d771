// Package view owns the current query configuration of a view and re-runs
// the engine whenever it changes.
package view

import (
	"fmt"
	"slices"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/google/uuid"

	"github.com/rebeliceyang/lazyfacet/internal/filter"
	"github.com/rebeliceyang/lazyfacet/internal/models"
	"github.com/rebeliceyang/lazyfacet/internal/presets"
	"github.com/rebeliceyang/lazyfacet/internal/query"
)

// State holds the filter, sort, group, search and view mode of one view
// together with the last result. It is not safe for concurrent use.
type State[T any] struct {
	engine *query.Engine
	store  *presets.Store

	items   []T
	filters models.FilterGroup
	sort    *models.SortConfig
	group   *models.GroupConfig
	search  models.SearchConfig
	mode    models.ViewMode

	activePreset string
	presetList   []models.FilterPreset
	unsubscribe  func()

	result          models.FilterResult[T]
	onChange        []func(models.FilterResult[T])
	onPresetsChange []func([]models.FilterPreset)
}

// Option configures a State
type Option[T any] func(*State[T])

// WithEngine runs queries on e instead of a bare engine
func WithEngine[T any](e *query.Engine) Option[T] {
	return func(s *State[T]) {
		if e != nil {
			s.engine = e
		}
	}
}

// WithPresets connects the preset store and keeps the preset list in sync
func WithPresets[T any](store *presets.Store) Option[T] {
	return func(s *State[T]) {
		s.store = store
	}
}

// WithSearchFields sets the fields the search box looks at
func WithSearchFields[T any](fields ...string) Option[T] {
	return func(s *State[T]) {
		s.search.Fields = fields
	}
}

// WithViewMode sets the initial view mode
func WithViewMode[T any](mode models.ViewMode) Option[T] {
	return func(s *State[T]) {
		s.mode = mode
	}
}

// New creates a view over items and computes the first result
func New[T any](items []T, opts ...Option[T]) *State[T] {
	s := &State[T]{
		engine:  query.NewEngine(),
		items:   items,
		filters: emptyGroup(),
		mode:    models.ViewGrid,
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.store != nil {
		s.presetList = s.store.List()
		s.unsubscribe = s.store.Subscribe(func(presets.ChangeEvent) {
			s.presetList = s.store.List()
			for _, fn := range s.onPresetsChange {
				fn(slices.Clone(s.presetList))
			}
		})
	}

	s.run()
	return s
}

// same reports whether two configurations are equal, treating nil and empty
// slices alike
func same(a, b any) bool {
	return cmp.Equal(a, b, cmpopts.EquateEmpty())
}

func emptyGroup() models.FilterGroup {
	return models.FilterGroup{ID: uuid.New().String(), Logic: models.LogicAnd}
}

// Close stops listening to the preset store
func (s *State[T]) Close() {
	if s.unsubscribe != nil {
		s.unsubscribe()
	}
}

// OnChange registers fn to run after every recomputation. Mutators that leave
// the configuration as it was do not recompute.
func (s *State[T]) OnChange(fn func(models.FilterResult[T])) {
	s.onChange = append(s.onChange, fn)
}

// OnPresetsChange registers fn to run when the preset store changes
func (s *State[T]) OnPresetsChange(fn func([]models.FilterPreset)) {
	s.onPresetsChange = append(s.onPresetsChange, fn)
}

func (s *State[T]) run() {
	var search *models.SearchConfig
	if !s.search.IsEmpty() {
		cfg := s.search
		search = &cfg
	}

	s.result = query.Run(s.engine, s.items, s.filters, s.sort, s.group, search)
	for _, fn := range s.onChange {
		fn(s.result)
	}
}

// Result returns the last computed result
func (s *State[T]) Result() models.FilterResult[T] { return s.result }

// Filters returns the current filter group
func (s *State[T]) Filters() models.FilterGroup { return s.filters }

// Sort returns the current sort, or nil
func (s *State[T]) Sort() *models.SortConfig { return s.sort }

// Group returns the current grouping, or nil
func (s *State[T]) Group() *models.GroupConfig { return s.group }

// Search returns the current search configuration
func (s *State[T]) Search() models.SearchConfig { return s.search }

// ViewMode returns the current view mode
func (s *State[T]) ViewMode() models.ViewMode { return s.mode }

// ActivePreset returns the ID of the last applied preset, or ""
func (s *State[T]) ActivePreset() string { return s.activePreset }

// Presets returns the known presets
func (s *State[T]) Presets() []models.FilterPreset { return slices.Clone(s.presetList) }

// SetItems replaces the record set
func (s *State[T]) SetItems(items []T) {
	s.items = items
	s.run()
}

// AddCondition appends a condition and returns its ID
func (s *State[T]) AddCondition(field string, op models.FilterOperator, value any, fieldType models.FieldType) string {
	cond := filter.NewCondition(field, op, value, fieldType)
	s.filters.Conditions = append(slices.Clone(s.filters.Conditions), cond)
	s.activePreset = ""
	s.run()
	return cond.ID
}

// UpdateCondition replaces the condition with the same ID
func (s *State[T]) UpdateCondition(cond models.FilterCondition) error {
	i := slices.IndexFunc(s.filters.Conditions, func(c models.FilterCondition) bool { return c.ID == cond.ID })
	if i < 0 {
		return fmt.Errorf("condition %q not found", cond.ID)
	}
	if same(s.filters.Conditions[i], cond) {
		return nil
	}
	conditions := slices.Clone(s.filters.Conditions)
	conditions[i] = cond
	s.filters.Conditions = conditions
	s.activePreset = ""
	s.run()
	return nil
}

// RemoveCondition drops the condition with id
func (s *State[T]) RemoveCondition(id string) {
	conditions := slices.DeleteFunc(slices.Clone(s.filters.Conditions), func(c models.FilterCondition) bool {
		return c.ID == id
	})
	if len(conditions) == len(s.filters.Conditions) {
		return
	}
	s.filters.Conditions = conditions
	s.activePreset = ""
	s.run()
}

// ClearFilters removes every condition
func (s *State[T]) ClearFilters() {
	if len(s.filters.Conditions) == 0 {
		return
	}
	s.filters.Conditions = nil
	s.activePreset = ""
	s.run()
}

// SetFilters replaces the filter group
func (s *State[T]) SetFilters(group models.FilterGroup) {
	if same(s.filters, group) {
		return
	}
	s.filters = group
	s.activePreset = ""
	s.run()
}

// SetLogic switches between AND and OR
func (s *State[T]) SetLogic(logic models.FilterLogic) {
	if s.filters.Logic == logic {
		return
	}
	s.filters.Logic = logic
	s.activePreset = ""
	s.run()
}

// SetSort replaces the sort; nil clears it
func (s *State[T]) SetSort(cfg *models.SortConfig) {
	if same(s.sort, cfg) {
		return
	}
	s.sort = cfg
	s.run()
}

// ToggleSort cycles field through ascending, descending and unsorted as the
// primary sort key
func (s *State[T]) ToggleSort(field string) {
	var options []models.SortOption
	if s.sort != nil {
		options = slices.Clone(s.sort.Options)
	}

	i := slices.IndexFunc(options, func(o models.SortOption) bool { return o.Field == field })
	switch {
	case i < 0:
		options = append([]models.SortOption{{Field: field, Direction: models.SortAsc}}, options...)
	case options[i].Direction == models.SortAsc:
		options[i].Direction = models.SortDesc
	default:
		options = slices.Delete(options, i, i+1)
	}

	if len(options) == 0 {
		s.sort = nil
	} else {
		s.sort = &models.SortConfig{Options: options}
	}
	s.run()
}

// SetGroup replaces the grouping; nil clears it
func (s *State[T]) SetGroup(cfg *models.GroupConfig) {
	if same(s.group, cfg) {
		return
	}
	s.group = cfg
	s.run()
}

// ToggleGroup flips the collapsed flag of the group with key. Collapsed
// groups keep their members in the result.
func (s *State[T]) ToggleGroup(key string) {
	if s.group == nil {
		return
	}

	next := *s.group
	if next.IsCollapsed(key) {
		next.CollapsedGroups = slices.DeleteFunc(slices.Clone(next.CollapsedGroups), func(k string) bool { return k == key })
	} else {
		next.CollapsedGroups = append(slices.Clone(next.CollapsedGroups), key)
	}
	s.group = &next
	s.run()
}

// SetSearch sets the search query on the configured fields
func (s *State[T]) SetSearch(q string) {
	if s.search.Query == q {
		return
	}
	s.search.Query = q
	s.run()
}

// SetSearchConfig replaces the whole search configuration
func (s *State[T]) SetSearchConfig(cfg models.SearchConfig) {
	if same(s.search, cfg) {
		return
	}
	s.search = cfg
	s.run()
}

// SetViewMode changes how the result is rendered. The result itself does
// not change, so listeners are not called.
func (s *State[T]) SetViewMode(mode models.ViewMode) {
	s.mode = mode
}

// CycleViewMode moves to the next view mode
func (s *State[T]) CycleViewMode() models.ViewMode {
	s.mode = s.mode.Next()
	return s.mode
}

// ApplyPreset loads the filters, sort and group of a stored preset
func (s *State[T]) ApplyPreset(id string) error {
	if s.store == nil {
		return fmt.Errorf("no preset store configured")
	}
	p, ok := s.store.Get(id)
	if !ok {
		return fmt.Errorf("preset %q not found", id)
	}

	s.filters = p.Filters
	s.filters.Conditions = slices.Clone(p.Filters.Conditions)
	s.sort = p.Sort
	s.group = p.Group
	s.activePreset = p.ID
	s.run()
	return nil
}

// SaveAsPreset stores the current filters, sort and group under name
func (s *State[T]) SaveAsPreset(name, description string) (models.FilterPreset, error) {
	if s.store == nil {
		return models.FilterPreset{}, fmt.Errorf("no preset store configured")
	}

	// the store assigns a timestamp ID that is unique within the store
	saved, err := s.store.Save(models.FilterPreset{
		Name:        name,
		Description: description,
		Filters:     s.filters,
		Sort:        s.sort,
		Group:       s.group,
	})
	if err != nil {
		return models.FilterPreset{}, err
	}
	s.activePreset = saved.ID
	return saved, nil
}

// DeletePreset deletes a stored preset. System presets are kept.
func (s *State[T]) DeletePreset(id string) (bool, error) {
	if s.store == nil {
		return false, fmt.Errorf("no preset store configured")
	}
	deleted, err := s.store.Delete(id)
	if deleted && s.activePreset == id {
		s.activePreset = ""
	}
	return deleted, err
}

// Reset clears filters, sort, group and search
func (s *State[T]) Reset() {
	if len(s.filters.Conditions) == 0 && s.filters.Logic == models.LogicAnd && s.sort == nil && s.group == nil && s.search.Query == "" && s.activePreset == "" {
		return
	}
	s.filters = emptyGroup()
	s.sort = nil
	s.group = nil
	s.search.Query = ""
	s.activePreset = ""
	s.run()
}
