package models

import "time"

// FilterPreset is a named, persisted bundle of filter, sort and group configuration
type FilterPreset struct {
	ID          string       `json:"id" yaml:"id"`
	Name        string       `json:"name" yaml:"name"`
	Description string       `json:"description,omitempty" yaml:"description,omitempty"`
	Filters     FilterGroup  `json:"filters" yaml:"filters"`
	Sort        *SortConfig  `json:"sort,omitempty" yaml:"sort,omitempty"`
	Group       *GroupConfig `json:"group,omitempty" yaml:"group,omitempty"`
	IsSystem    bool         `json:"isSystem,omitempty" yaml:"isSystem,omitempty"`
	CreatedAt   time.Time    `json:"createdAt" yaml:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt" yaml:"updatedAt"`
}
