package models

// FieldType is the declared type of a filterable field. It selects which
// operators the UI offers; evaluation never depends on it.
type FieldType string

const (
	FieldText        FieldType = "text"
	FieldNumber      FieldType = "number"
	FieldDate        FieldType = "date"
	FieldSelect      FieldType = "select"
	FieldMultiSelect FieldType = "multiselect"
	FieldBoolean     FieldType = "boolean"
)

// FilterOperator represents a filter comparison operator
type FilterOperator string

const (
	OpEquals      FilterOperator = "equals"
	OpNotEquals   FilterOperator = "notEquals"
	OpContains    FilterOperator = "contains"
	OpNotContains FilterOperator = "notContains"
	OpStartsWith  FilterOperator = "startsWith"
	OpEndsWith    FilterOperator = "endsWith"
	OpGreaterThan FilterOperator = "greaterThan"
	OpLessThan    FilterOperator = "lessThan"
	OpIn          FilterOperator = "in"
	OpNotIn       FilterOperator = "notIn"
	OpIsEmpty     FilterOperator = "isEmpty"
	OpIsNotEmpty  FilterOperator = "isNotEmpty"
)

// AllOperators lists the closed operator set in display order
var AllOperators = []FilterOperator{
	OpEquals, OpNotEquals,
	OpContains, OpNotContains, OpStartsWith, OpEndsWith,
	OpGreaterThan, OpLessThan,
	OpIn, OpNotIn,
	OpIsEmpty, OpIsNotEmpty,
}

// Known reports whether op belongs to the closed operator set
func (op FilterOperator) Known() bool {
	for _, o := range AllOperators {
		if o == op {
			return true
		}
	}
	return false
}

// FilterLogic combines the conditions of a group
type FilterLogic string

const (
	LogicAnd FilterLogic = "AND"
	LogicOr  FilterLogic = "OR"
)

// FilterCondition represents a single filter condition
type FilterCondition struct {
	ID        string         `json:"id" yaml:"id"`
	Field     string         `json:"field" yaml:"field"`
	Operator  FilterOperator `json:"operator" yaml:"operator"`
	Value     any            `json:"value,omitempty" yaml:"value,omitempty"`
	FieldType FieldType      `json:"fieldType,omitempty" yaml:"fieldType,omitempty"`
}

// FilterGroup is a flat list of conditions joined by a single logic operator.
// An empty group matches everything.
type FilterGroup struct {
	ID         string            `json:"id" yaml:"id"`
	Conditions []FilterCondition `json:"conditions" yaml:"conditions"`
	Logic      FilterLogic       `json:"logic" yaml:"logic"`
}

// IsEmpty reports whether the group filters nothing
func (g FilterGroup) IsEmpty() bool {
	return len(g.Conditions) == 0
}

// SortDirection represents sort order
type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

// SortOption is one sort key
type SortOption struct {
	Field     string        `json:"field" yaml:"field"`
	Direction SortDirection `json:"direction" yaml:"direction"`
}

// SortConfig holds sort keys evaluated left to right as tie-breakers
type SortConfig struct {
	Options []SortOption `json:"options" yaml:"options"`
}

// GroupConfig buckets results by a field. CollapsedGroups is view state that is
// echoed into the groups; collapsed groups keep their members.
type GroupConfig struct {
	Field           string         `json:"field" yaml:"field"`
	Direction       *SortDirection `json:"direction,omitempty" yaml:"direction,omitempty"`
	CollapsedGroups []string       `json:"collapsedGroups,omitempty" yaml:"collapsedGroups,omitempty"`
}

// IsCollapsed reports whether key is in the collapsed set
func (g GroupConfig) IsCollapsed(key string) bool {
	for _, k := range g.CollapsedGroups {
		if k == key {
			return true
		}
	}
	return false
}

// SearchConfig configures the free-text search stage
type SearchConfig struct {
	Query         string   `json:"query" yaml:"query"`
	Fields        []string `json:"fields" yaml:"fields"`
	CaseSensitive bool     `json:"caseSensitive,omitempty" yaml:"caseSensitive,omitempty"`
	ExactMatch    bool     `json:"exactMatch,omitempty" yaml:"exactMatch,omitempty"`
}

// IsEmpty reports whether the search is a pass-through
func (s SearchConfig) IsEmpty() bool {
	return s.Query == "" || len(s.Fields) == 0
}
