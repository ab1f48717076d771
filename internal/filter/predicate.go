// Package filter evaluates filter conditions against records.
//
// A FilterCondition is the persisted form of a condition. Compile turns it
// into a Predicate, one variant per operator family, so that each variant
// carries a value of the right type for its operators.
package filter

import (
	"fmt"
	"math"
	"strings"

	"github.com/rebeliceyang/lazyfacet/internal/fieldpath"
	"github.com/rebeliceyang/lazyfacet/internal/models"
)

// Predicate is a compiled condition
type Predicate interface {
	// Match reports whether the record satisfies the predicate
	Match(record any) bool

	// Field returns the field path the predicate reads
	Field() string

	// String returns a string representation of the predicate
	String() string
}

// Equality implements equals / notEquals
type Equality struct {
	field  string
	value  any
	negate bool
}

// NewEquality creates an equals predicate, or notEquals when negate is set
func NewEquality(field string, value any, negate bool) *Equality {
	return &Equality{field: field, value: value, negate: negate}
}

func (p *Equality) Match(record any) bool {
	eq := fieldpath.Equal(fieldpath.Resolve(record, p.field), p.value)
	return eq != p.negate
}

func (p *Equality) Field() string { return p.field }

func (p *Equality) String() string {
	op := "=="
	if p.negate {
		op = "!="
	}
	return fmt.Sprintf("%s %s %v", p.field, op, p.value)
}

// MatchMode selects the string test of a StringMatch
type MatchMode int

const (
	MatchContains MatchMode = iota
	MatchPrefix
	MatchSuffix
)

// StringMatch implements contains / notContains / startsWith / endsWith.
// Both sides are stringified and lower-cased.
type StringMatch struct {
	field  string
	needle string
	mode   MatchMode
	negate bool
}

// NewStringMatch creates a case-insensitive string predicate
func NewStringMatch(field string, mode MatchMode, needle string, negate bool) *StringMatch {
	return &StringMatch{
		field:  field,
		needle: strings.ToLower(needle),
		mode:   mode,
		negate: negate,
	}
}

func (p *StringMatch) Match(record any) bool {
	haystack := strings.ToLower(fieldpath.ToString(fieldpath.Resolve(record, p.field)))

	var ok bool
	switch p.mode {
	case MatchPrefix:
		ok = strings.HasPrefix(haystack, p.needle)
	case MatchSuffix:
		ok = strings.HasSuffix(haystack, p.needle)
	default:
		ok = strings.Contains(haystack, p.needle)
	}
	return ok != p.negate
}

func (p *StringMatch) Field() string { return p.field }

func (p *StringMatch) String() string {
	op := [...]string{"contains", "startsWith", "endsWith"}[p.mode]
	if p.negate {
		op = "not " + op
	}
	return fmt.Sprintf("%s %s %q", p.field, op, p.needle)
}

// NumericCompare implements greaterThan / lessThan. Either side failing to
// read as a number (NaN) makes the predicate false.
type NumericCompare struct {
	field     string
	threshold float64
	greater   bool
}

// NewNumericCompare creates greaterThan (greater=true) or lessThan
func NewNumericCompare(field string, threshold float64, greater bool) *NumericCompare {
	return &NumericCompare{field: field, threshold: threshold, greater: greater}
}

func (p *NumericCompare) Match(record any) bool {
	v := fieldpath.ToNumber(fieldpath.Resolve(record, p.field))
	if math.IsNaN(v) || math.IsNaN(p.threshold) {
		return false
	}
	if p.greater {
		return v > p.threshold
	}
	return v < p.threshold
}

func (p *NumericCompare) Field() string { return p.field }

func (p *NumericCompare) String() string {
	op := "<"
	if p.greater {
		op = ">"
	}
	return fmt.Sprintf("%s %s %v", p.field, op, p.threshold)
}

// Membership implements in / notIn. notIn is always the complement of in.
type Membership struct {
	field  string
	set    []any
	negate bool
}

// NewMembership creates an in predicate, or notIn when negate is set
func NewMembership(field string, set []any, negate bool) *Membership {
	return &Membership{field: field, set: set, negate: negate}
}

func (p *Membership) Match(record any) bool {
	v := fieldpath.Resolve(record, p.field)
	found := false
	for _, candidate := range p.set {
		if fieldpath.Equal(v, candidate) {
			found = true
			break
		}
	}
	return found != p.negate
}

func (p *Membership) Field() string { return p.field }

func (p *Membership) String() string {
	op := "in"
	if p.negate {
		op = "not in"
	}
	return fmt.Sprintf("%s %s %v", p.field, op, p.set)
}

// Emptiness implements isEmpty / isNotEmpty. A value is empty when it is
// falsy or a zero-length slice.
type Emptiness struct {
	field  string
	negate bool
}

// NewEmptiness creates isEmpty, or isNotEmpty when negate is set
func NewEmptiness(field string, negate bool) *Emptiness {
	return &Emptiness{field: field, negate: negate}
}

func (p *Emptiness) Match(record any) bool {
	return IsEmptyValue(fieldpath.Resolve(record, p.field)) != p.negate
}

func (p *Emptiness) Field() string { return p.field }

func (p *Emptiness) String() string {
	if p.negate {
		return p.field + " is not empty"
	}
	return p.field + " is empty"
}

// IsEmptyValue reports whether v counts as empty for isEmpty
func IsEmptyValue(v any) bool {
	if !fieldpath.Truthy(v) {
		return true
	}
	if items, ok := fieldpath.AsSlice(v); ok {
		return len(items) == 0
	}
	return false
}

// PassThrough stands in for an unknown operator and matches every record
type PassThrough struct {
	field    string
	operator models.FilterOperator
}

func (p *PassThrough) Match(any) bool { return true }

func (p *PassThrough) Field() string { return p.field }

func (p *PassThrough) String() string {
	return fmt.Sprintf("%s %s (ignored)", p.field, p.operator)
}
