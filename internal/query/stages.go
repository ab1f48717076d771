package query

import (
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/rebeliceyang/lazyfacet/internal/fieldpath"
	"github.com/rebeliceyang/lazyfacet/internal/filter"
	"github.com/rebeliceyang/lazyfacet/internal/models"
)

// Filter keeps the items matching group
func Filter[T any](items []T, group models.FilterGroup) []T {
	return filter.Apply(items, group)
}

// Search keeps the items where any configured field matches the query. An
// empty query or field list returns items unchanged.
func Search[T any](items []T, cfg models.SearchConfig) []T {
	if cfg.IsEmpty() {
		return items
	}

	query := cfg.Query
	if !cfg.CaseSensitive {
		query = strings.ToLower(query)
	}

	out := make([]T, 0, len(items))
	for _, item := range items {
		if searchMatch(item, query, cfg) {
			out = append(out, item)
		}
	}
	return out
}

func searchMatch(item any, query string, cfg models.SearchConfig) bool {
	for _, field := range cfg.Fields {
		v := fieldpath.Resolve(item, field)
		if fieldpath.IsNil(v) {
			continue
		}

		s := fieldpath.ToString(v)
		if !cfg.CaseSensitive {
			s = strings.ToLower(s)
		}
		if cfg.ExactMatch {
			if s == query {
				return true
			}
		} else if strings.Contains(s, query) {
			return true
		}
	}
	return false
}

// Sort returns a stably sorted copy of items. Options are tie-breakers in
// order; items equal under every option keep their input order.
func Sort[T any](items []T, cfg models.SortConfig) []T {
	out := slices.Clone(items)
	if len(cfg.Options) == 0 || len(out) < 2 {
		return out
	}

	slices.SortStableFunc(out, func(a, b T) int {
		for _, opt := range cfg.Options {
			if r := compareField(a, b, opt.Field, opt.Direction == models.SortDesc); r != 0 {
				return r
			}
		}
		return 0
	})
	return out
}

// Group buckets items by the string form of their group field, in first-seen
// order unless cfg.Direction is set. Every item lands in exactly one group.
func Group[T any](items []T, cfg models.GroupConfig) []models.GroupedData[T] {
	type bucket struct {
		key       string
		ungrouped bool
	}

	index := make(map[bucket]int)
	groups := make([]models.GroupedData[T], 0)

	for _, item := range items {
		v := fieldpath.Resolve(item, cfg.Field)

		b := bucket{key: models.UngroupedKey, ungrouped: true}
		if !fieldpath.IsNil(v) {
			b = bucket{key: fieldpath.ToString(v)}
		}

		i, ok := index[b]
		if !ok {
			i = len(groups)
			index[b] = i
			groups = append(groups, models.GroupedData[T]{
				GroupKey:    b.key,
				GroupLabel:  groupLabel(b.key),
				IsCollapsed: cfg.IsCollapsed(b.key),
				IsUngrouped: b.ungrouped,
			})
		}
		groups[i].Items = append(groups[i].Items, item)
		groups[i].Count++
	}

	if cfg.Direction != nil {
		desc := *cfg.Direction == models.SortDesc
		slices.SortStableFunc(groups, func(a, b models.GroupedData[T]) int {
			r := CompareStrings(a.GroupKey, b.GroupKey)
			if desc {
				return -r
			}
			return r
		})
	}
	return groups
}

// groupLabel capitalises the first letter of key
func groupLabel(key string) string {
	r, size := utf8.DecodeRuneInString(key)
	if r == utf8.RuneError {
		return key
	}
	return string(unicode.ToUpper(r)) + key[size:]
}
