package query

import (
	"cmp"
	"strings"
	"sync"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/rebeliceyang/lazyfacet/internal/fieldpath"
)

// collators are not safe for concurrent use
var collators = sync.Pool{
	New: func() any {
		return collate.New(language.Und, collate.IgnoreCase)
	},
}

// CompareStrings compares case-insensitively in locale order. Strings the
// collator ranks equal fall back to their lower-cased bytes, then raw bytes,
// so the order is total.
func CompareStrings(a, b string) int {
	c := collators.Get().(*collate.Collator)
	r := c.CompareString(a, b)
	collators.Put(c)
	if r != 0 {
		return r
	}
	if r = strings.Compare(strings.ToLower(a), strings.ToLower(b)); r != 0 {
		return r
	}
	return strings.Compare(a, b)
}

// CompareValues orders two resolved field values: times, then numbers, then
// strings. Absent values are not handled here; see compareField.
func CompareValues(a, b any) int {
	if at, ok := fieldpath.AsTime(a); ok {
		if bt, ok := fieldpath.AsTime(b); ok {
			return at.Compare(bt)
		}
	}
	if an, ok := fieldpath.AsNumber(a); ok {
		if bn, ok := fieldpath.AsNumber(b); ok {
			return cmp.Compare(an, bn)
		}
	}
	return CompareStrings(fieldpath.ToString(a), fieldpath.ToString(b))
}

// compareField compares the values at field, with absent values last in
// both directions.
func compareField(a, b any, field string, desc bool) int {
	av := fieldpath.Resolve(a, field)
	bv := fieldpath.Resolve(b, field)

	aNil, bNil := fieldpath.IsNil(av), fieldpath.IsNil(bv)
	switch {
	case aNil && bNil:
		return 0
	case aNil:
		return 1
	case bNil:
		return -1
	}

	r := CompareValues(av, bv)
	if desc {
		return -r
	}
	return r
}
