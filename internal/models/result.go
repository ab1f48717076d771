package models

// UngroupedKey is the group key used for records whose group field is absent
const UngroupedKey = "ungrouped"

// GroupedData is one bucket of a grouped result
type GroupedData[T any] struct {
	GroupKey    string `json:"groupKey"`
	GroupLabel  string `json:"groupLabel"`
	Items       []T    `json:"items"`
	Count       int    `json:"count"`
	IsCollapsed bool   `json:"isCollapsed"`

	// IsUngrouped marks the bucket for absent values, which never merges with
	// a record whose field literally equals UngroupedKey.
	IsUngrouped bool `json:"isUngrouped,omitempty"`
}

// FilterResult is the envelope returned by the query pipeline
type FilterResult[T any] struct {
	Items         []T              `json:"items"`
	TotalCount    int              `json:"totalCount"`
	FilteredCount int              `json:"filteredCount"`
	Groups        []GroupedData[T] `json:"groups"`

	AppliedFilters FilterGroup   `json:"appliedFilters"`
	AppliedSort    *SortConfig   `json:"appliedSort,omitempty"`
	AppliedGroup   *GroupConfig  `json:"appliedGroup,omitempty"`
	AppliedSearch  *SearchConfig `json:"appliedSearch,omitempty"`
}

// IsGrouped reports whether Groups is authoritative
func (r FilterResult[T]) IsGrouped() bool {
	return r.Groups != nil
}
