package source

import (
	"slices"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/rebeliceyang/lazyfacet/internal/fieldpath"
	"github.com/rebeliceyang/lazyfacet/internal/models"
)

// maxSelectOptions caps the distinct values of a field offered as a select
const maxSelectOptions = 12

// DescribeFields builds a field catalog from the leaf paths of records. The
// type is guessed from the values seen; text fields that repeat a handful of
// values become selects with those values as options.
func DescribeFields(records []Record) []models.FieldDescriptor {
	sample := make([]any, len(records))
	for i, r := range records {
		sample[i] = r
	}

	title := cases.Title(language.Und)
	paths := fieldpath.ExtractPaths(sample...)
	fields := make([]models.FieldDescriptor, 0, len(paths))
	for _, path := range paths {
		values := make([]any, 0, len(records))
		for _, r := range records {
			if v := fieldpath.Resolve(r, path); !fieldpath.IsNil(v) {
				values = append(values, v)
			}
		}

		field := models.FieldDescriptor{
			ID:    path,
			Label: title.String(strings.NewReplacer(".", " ", "_", " ").Replace(path)),
			Type:  guessType(values),
		}
		if field.Type == models.FieldText {
			if options := selectOptions(values); options != nil {
				field.Type = models.FieldSelect
				field.Options = options
			}
		}
		fields = append(fields, field)
	}
	return fields
}

// FieldTypes maps field IDs to their declared types
func FieldTypes(fields []models.FieldDescriptor) map[string]models.FieldType {
	types := make(map[string]models.FieldType, len(fields))
	for _, f := range fields {
		types[f.ID] = f.Type
	}
	return types
}

func guessType(values []any) models.FieldType {
	if len(values) == 0 {
		return models.FieldText
	}

	all := func(pred func(any) bool) bool {
		return !slices.ContainsFunc(values, func(v any) bool { return !pred(v) })
	}

	switch {
	case all(func(v any) bool { _, ok := fieldpath.AsSlice(v); return ok }):
		return models.FieldMultiSelect
	case all(func(v any) bool { _, ok := v.(bool); return ok }):
		return models.FieldBoolean
	case all(func(v any) bool { _, ok := fieldpath.AsNumber(v); return ok }):
		return models.FieldNumber
	case all(isDate):
		return models.FieldDate
	default:
		return models.FieldText
	}
}

func isDate(v any) bool {
	if _, ok := fieldpath.AsTime(v); ok {
		return true
	}
	s, ok := v.(string)
	if !ok {
		return false
	}
	if _, err := time.Parse(time.RFC3339, s); err == nil {
		return true
	}
	_, err := time.Parse(time.DateOnly, s)
	return err == nil
}

func selectOptions(values []any) []models.FieldOption {
	seen := make(map[string]bool)
	var distinct []string
	for _, v := range values {
		s := fieldpath.ToString(v)
		if !seen[s] {
			seen[s] = true
			distinct = append(distinct, s)
		}
	}
	if len(distinct) > maxSelectOptions || len(distinct)*2 > len(values) {
		return nil
	}

	slices.Sort(distinct)
	title := cases.Title(language.Und)
	options := make([]models.FieldOption, len(distinct))
	for i, s := range distinct {
		options[i] = models.FieldOption{Value: s, Label: title.String(s)}
	}
	return options
}
