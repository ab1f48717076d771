package filter

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cast"

	"github.com/rebeliceyang/lazyfacet/internal/models"
)

// Builder assembles a FilterGroup condition by condition
type Builder struct {
	group models.FilterGroup
}

// NewBuilder creates a new filter builder with AND logic
func NewBuilder() *Builder {
	return &Builder{
		group: models.FilterGroup{
			ID:    uuid.New().String(),
			Logic: models.LogicAnd,
		},
	}
}

// Where appends a condition
func (b *Builder) Where(field string, op models.FilterOperator, value any) *Builder {
	return b.WhereTyped(field, op, value, "")
}

// WhereTyped appends a condition with a declared field type
func (b *Builder) WhereTyped(field string, op models.FilterOperator, value any, fieldType models.FieldType) *Builder {
	b.group.Conditions = append(b.group.Conditions, NewCondition(field, op, value, fieldType))
	return b
}

// Any switches the group to OR logic
func (b *Builder) Any() *Builder {
	b.group.Logic = models.LogicOr
	return b
}

// All switches the group to AND logic
func (b *Builder) All() *Builder {
	b.group.Logic = models.LogicAnd
	return b
}

// Build returns the assembled group
func (b *Builder) Build() models.FilterGroup {
	group := b.group
	group.Conditions = append([]models.FilterCondition(nil), b.group.Conditions...)
	return group
}

// NewCondition creates a condition with a fresh ID
func NewCondition(field string, op models.FilterOperator, value any, fieldType models.FieldType) models.FilterCondition {
	return models.FilterCondition{
		ID:        uuid.New().String(),
		Field:     field,
		Operator:  op,
		Value:     value,
		FieldType: fieldType,
	}
}

// OperatorsForType returns the operators offered for a declared field type.
// Evaluation accepts any operator regardless.
func OperatorsForType(fieldType models.FieldType) []models.FilterOperator {
	switch fieldType {
	case models.FieldNumber, models.FieldDate:
		return []models.FilterOperator{
			models.OpEquals, models.OpNotEquals,
			models.OpGreaterThan, models.OpLessThan,
			models.OpIsEmpty, models.OpIsNotEmpty,
		}
	case models.FieldText:
		return []models.FilterOperator{
			models.OpEquals, models.OpNotEquals,
			models.OpContains, models.OpNotContains,
			models.OpStartsWith, models.OpEndsWith,
			models.OpIsEmpty, models.OpIsNotEmpty,
		}
	case models.FieldSelect:
		return []models.FilterOperator{
			models.OpEquals, models.OpNotEquals,
			models.OpIn, models.OpNotIn,
			models.OpIsEmpty, models.OpIsNotEmpty,
		}
	case models.FieldMultiSelect:
		return []models.FilterOperator{
			models.OpContains, models.OpNotContains,
			models.OpIn, models.OpNotIn,
			models.OpIsEmpty, models.OpIsNotEmpty,
		}
	case models.FieldBoolean:
		return []models.FilterOperator{
			models.OpEquals, models.OpNotEquals,
		}
	default:
		return append([]models.FilterOperator(nil), models.AllOperators...)
	}
}

// ParseValue converts text typed by a user into a condition value for the
// declared field type. Values of in / notIn are split on commas.
func ParseValue(input string, op models.FilterOperator, fieldType models.FieldType) any {
	switch op {
	case models.OpIsEmpty, models.OpIsNotEmpty:
		return nil
	case models.OpIn, models.OpNotIn:
		parts := strings.Split(input, ",")
		set := make([]any, 0, len(parts))
		for _, part := range parts {
			if part = strings.TrimSpace(part); part != "" {
				set = append(set, parseScalar(part, fieldType))
			}
		}
		return set
	default:
		return parseScalar(input, fieldType)
	}
}

func parseScalar(input string, fieldType models.FieldType) any {
	switch fieldType {
	case models.FieldNumber:
		if f, err := cast.ToFloat64E(input); err == nil {
			return f
		}
	case models.FieldBoolean:
		if b, err := cast.ToBoolE(input); err == nil {
			return b
		}
	}
	return input
}

// ParseExpr parses field:operator[:value]. The value may contain colons.
// types gives the declared type of known fields.
func ParseExpr(expr string, types map[string]models.FieldType) (models.FilterCondition, error) {
	parts := strings.SplitN(expr, ":", 3)
	if len(parts) < 2 || parts[0] == "" {
		return models.FilterCondition{}, fmt.Errorf("invalid filter %q, expected field:operator[:value]", expr)
	}

	field := strings.TrimSpace(parts[0])
	op := models.FilterOperator(strings.TrimSpace(parts[1]))
	if !op.Known() {
		return models.FilterCondition{}, fmt.Errorf("unknown operator %q in filter %q", op, expr)
	}

	var raw string
	if len(parts) == 3 {
		raw = parts[2]
	} else if op != models.OpIsEmpty && op != models.OpIsNotEmpty {
		return models.FilterCondition{}, fmt.Errorf("operator %q needs a value in filter %q", op, expr)
	}

	fieldType := types[field]
	return NewCondition(field, op, ParseValue(raw, op, fieldType), fieldType), nil
}
