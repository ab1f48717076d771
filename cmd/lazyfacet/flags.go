package main

import (
	"fmt"
	"strings"

	"github.com/rebeliceyang/lazyfacet/internal/filter"
	"github.com/rebeliceyang/lazyfacet/internal/models"
)

// parseWhere turns repeated field:operator[:value] flags into a group
func parseWhere(exprs []string, matchAny bool, types map[string]models.FieldType) (models.FilterGroup, error) {
	b := filter.NewBuilder()
	if matchAny {
		b.Any()
	}
	group := b.Build()

	for _, expr := range exprs {
		cond, err := filter.ParseExpr(expr, types)
		if err != nil {
			return models.FilterGroup{}, err
		}
		group.Conditions = append(group.Conditions, cond)
	}
	return group, nil
}

// parseSort turns repeated field[:asc|desc] flags into a sort config.
// No flags means no sort.
func parseSort(specs []string) (*models.SortConfig, error) {
	if len(specs) == 0 {
		return nil, nil
	}

	cfg := &models.SortConfig{}
	for _, spec := range specs {
		field, dir, _ := strings.Cut(spec, ":")
		if field == "" {
			return nil, fmt.Errorf("invalid sort %q, expected field[:asc|desc]", spec)
		}
		direction, err := parseDirection(dir)
		if err != nil {
			return nil, fmt.Errorf("invalid sort %q: %w", spec, err)
		}
		cfg.Options = append(cfg.Options, models.SortOption{Field: field, Direction: direction})
	}
	return cfg, nil
}

// parseGroup builds a group config for field[:asc|desc]. An empty spec means
// no grouping.
func parseGroup(spec string) (*models.GroupConfig, error) {
	if spec == "" {
		return nil, nil
	}

	field, dir, hasDir := strings.Cut(spec, ":")
	if field == "" {
		return nil, fmt.Errorf("invalid group %q, expected field[:asc|desc]", spec)
	}
	cfg := &models.GroupConfig{Field: field}
	if hasDir {
		direction, err := parseDirection(dir)
		if err != nil {
			return nil, fmt.Errorf("invalid group %q: %w", spec, err)
		}
		cfg.Direction = &direction
	}
	return cfg, nil
}

func parseDirection(s string) (models.SortDirection, error) {
	switch strings.ToLower(s) {
	case "", "asc":
		return models.SortAsc, nil
	case "desc":
		return models.SortDesc, nil
	default:
		return "", fmt.Errorf("unknown direction %q", s)
	}
}
