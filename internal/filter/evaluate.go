package filter

import (
	"go.uber.org/zap"

	"github.com/rebeliceyang/lazyfacet/internal/fieldpath"
	"github.com/rebeliceyang/lazyfacet/internal/models"
)

// Compile maps a condition onto its predicate variant
func Compile(cond models.FilterCondition) Predicate {
	switch cond.Operator {
	case models.OpEquals:
		return NewEquality(cond.Field, cond.Value, false)
	case models.OpNotEquals:
		return NewEquality(cond.Field, cond.Value, true)
	case models.OpContains:
		return NewStringMatch(cond.Field, MatchContains, fieldpath.ToString(cond.Value), false)
	case models.OpNotContains:
		return NewStringMatch(cond.Field, MatchContains, fieldpath.ToString(cond.Value), true)
	case models.OpStartsWith:
		return NewStringMatch(cond.Field, MatchPrefix, fieldpath.ToString(cond.Value), false)
	case models.OpEndsWith:
		return NewStringMatch(cond.Field, MatchSuffix, fieldpath.ToString(cond.Value), false)
	case models.OpGreaterThan:
		return NewNumericCompare(cond.Field, fieldpath.ToNumber(cond.Value), true)
	case models.OpLessThan:
		return NewNumericCompare(cond.Field, fieldpath.ToNumber(cond.Value), false)
	case models.OpIn:
		return NewMembership(cond.Field, membershipSet(cond.Value), false)
	case models.OpNotIn:
		return NewMembership(cond.Field, membershipSet(cond.Value), true)
	case models.OpIsEmpty:
		return NewEmptiness(cond.Field, false)
	case models.OpIsNotEmpty:
		return NewEmptiness(cond.Field, true)
	default:
		return &PassThrough{field: cond.Field, operator: cond.Operator}
	}
}

// membershipSet treats a non-slice value as a one-element set
func membershipSet(v any) []any {
	if items, ok := fieldpath.AsSlice(v); ok {
		return items
	}
	return []any{v}
}

// Evaluate reports whether record satisfies cond
func Evaluate(record any, cond models.FilterCondition) bool {
	return Compile(cond).Match(record)
}

// Matcher is a compiled filter group
type Matcher struct {
	predicates []Predicate
	matchAny   bool
}

// NewMatcher compiles every condition of group once. Unknown operators are
// logged at debug level and match everything.
func NewMatcher(group models.FilterGroup, logger *zap.Logger) *Matcher {
	if logger == nil {
		logger = zap.NewNop()
	}

	m := &Matcher{
		predicates: make([]Predicate, 0, len(group.Conditions)),
		matchAny:   group.Logic == models.LogicOr,
	}
	for _, cond := range group.Conditions {
		p := Compile(cond)
		if _, ok := p.(*PassThrough); ok {
			logger.Debug("ignoring condition with unknown operator",
				zap.String("condition", cond.ID),
				zap.String("field", cond.Field),
				zap.String("operator", string(cond.Operator)))
		}
		m.predicates = append(m.predicates, p)
	}
	return m
}

// Empty reports whether the matcher has no predicates
func (m *Matcher) Empty() bool {
	return len(m.predicates) == 0
}

// Match combines the predicates with AND (every) or OR (some)
func (m *Matcher) Match(record any) bool {
	if m.Empty() {
		return true
	}
	for _, p := range m.predicates {
		if p.Match(record) == m.matchAny {
			return m.matchAny
		}
	}
	return !m.matchAny
}

// Apply keeps the items matching group. An empty group returns items as is.
func Apply[T any](items []T, group models.FilterGroup) []T {
	return ApplyMatcher(items, NewMatcher(group, nil))
}

// ApplyMatcher keeps the items accepted by m
func ApplyMatcher[T any](items []T, m *Matcher) []T {
	if m.Empty() {
		return items
	}

	out := make([]T, 0, len(items))
	for _, item := range items {
		if m.Match(item) {
			out = append(out, item)
		}
	}
	return out
}
