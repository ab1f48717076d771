package components

import (
	"strings"

	"github.com/rebeliceyang/lazyfacet/internal/fieldpath"
	"github.com/rebeliceyang/lazyfacet/internal/models"
)

// RowKind distinguishes group headers from records
type RowKind int

const (
	RowRecord RowKind = iota
	RowGroup
)

// Row is one display line of a result
type Row struct {
	Kind      RowKind
	GroupKey  string
	Label     string
	Count     int
	Collapsed bool
	Cells     []string
	Item      any
}

// BuildRows flattens a result into display rows. Grouped results get one
// header row per group, and members of collapsed groups are left out.
func BuildRows[T any](result models.FilterResult[T], columns []string) []Row {
	cells := func(item T) []string {
		out := make([]string, len(columns))
		for i, col := range columns {
			out[i] = strings.ReplaceAll(fieldpath.ToString(fieldpath.Resolve(item, col)), "\n", " ")
		}
		return out
	}

	if !result.IsGrouped() {
		rows := make([]Row, 0, len(result.Items))
		for _, item := range result.Items {
			rows = append(rows, Row{Kind: RowRecord, Cells: cells(item), Item: item})
		}
		return rows
	}

	var rows []Row
	for _, g := range result.Groups {
		rows = append(rows, Row{
			Kind:      RowGroup,
			GroupKey:  g.GroupKey,
			Label:     g.GroupLabel,
			Count:     g.Count,
			Collapsed: g.IsCollapsed,
		})
		if g.IsCollapsed {
			continue
		}
		for _, item := range g.Items {
			rows = append(rows, Row{Kind: RowRecord, GroupKey: g.GroupKey, Cells: cells(item), Item: item})
		}
	}
	return rows
}

// Title is the first cell of a record row
func (r Row) Title() string {
	if len(r.Cells) == 0 || r.Cells[0] == "" {
		return "(untitled)"
	}
	return r.Cells[0]
}
