package models

// ViewMode identifies how a result is rendered
type ViewMode string

const (
	ViewGrid   ViewMode = "grid"
	ViewList   ViewMode = "list"
	ViewTable  ViewMode = "table"
	ViewKanban ViewMode = "kanban"
)

// ViewModes lists the modes in cycling order
var ViewModes = []ViewMode{ViewGrid, ViewList, ViewTable, ViewKanban}

// Next returns the mode after m, wrapping around
func (m ViewMode) Next() ViewMode {
	for i, v := range ViewModes {
		if v == m {
			return ViewModes[(i+1)%len(ViewModes)]
		}
	}
	return ViewGrid
}

// ParseViewMode returns the mode named s, or ViewGrid
func ParseViewMode(s string) ViewMode {
	for _, v := range ViewModes {
		if string(v) == s {
			return v
		}
	}
	return ViewGrid
}

// FieldOption is one choice of a select field
type FieldOption struct {
	Value string `json:"value" yaml:"value"`
	Label string `json:"label" yaml:"label"`
}

// FieldDescriptor describes a field offered by the filter, sort or group
// controls. Only ID (the field path) and Type are consumed by the engine side.
type FieldDescriptor struct {
	ID      string        `json:"id" yaml:"id"`
	Label   string        `json:"label" yaml:"label"`
	Type    FieldType     `json:"type" yaml:"type"`
	Options []FieldOption `json:"options,omitempty" yaml:"options,omitempty"`
}
