// Package fieldpath resolves dotted field paths against arbitrary records.
// It is the only way the query stages read record fields.
package fieldpath

import (
	"reflect"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/ohler55/ojg/jp"
)

// Path represents a field path (e.g., owner.address.city)
type Path struct {
	Parts []string
}

// Parse splits a dotted path into its segments
func Parse(path string) Path {
	return Path{Parts: strings.Split(path, ".")}
}

// String returns the dotted notation
func (p Path) String() string {
	return strings.Join(p.Parts, ".")
}

// JSONPath returns the equivalent JSONPath notation
func (p Path) JSONPath() string {
	if len(p.Parts) == 0 {
		return "$"
	}

	result := "$"
	for _, part := range p.Parts {
		// Check if part is numeric (array index)
		if _, err := strconv.Atoi(part); err == nil {
			result += "[" + part + "]"
		} else {
			result += "." + part
		}
	}
	return result
}

// Resolve returns the value at path, or nil when any segment is missing.
func Resolve(record any, path string) any {
	v, _ := Lookup(record, path)
	return v
}

// Lookup walks path one segment at a time. ok is false as soon as the current
// value is not a container or does not hold the next key; it never panics.
// Paths starting with "$" are evaluated as JSONPath expressions.
func Lookup(record any, path string) (any, bool) {
	if strings.HasPrefix(path, "$") {
		return lookupJSONPath(record, path)
	}

	current := record
	for _, part := range strings.Split(path, ".") {
		next, ok := step(current, part)
		if !ok {
			return nil, false
		}
		current = next
	}
	return normalize(current), true
}

func step(current any, key string) (any, bool) {
	switch c := current.(type) {
	case nil:
		return nil, false
	case map[string]any:
		v, ok := c[key]
		return v, ok
	case []any:
		idx, err := strconv.Atoi(key)
		if err != nil || idx < 0 || idx >= len(c) {
			return nil, false
		}
		return c[idx], true
	}

	rv := reflect.ValueOf(current)
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return nil, false
		}
		rv = rv.Elem()
	}

	switch rv.Kind() {
	case reflect.Map:
		kt := rv.Type().Key()
		if kt.Kind() != reflect.String {
			return nil, false
		}
		mv := rv.MapIndex(reflect.ValueOf(key).Convert(kt))
		if !mv.IsValid() || !mv.CanInterface() {
			return nil, false
		}
		return mv.Interface(), true
	case reflect.Struct:
		index, ok := fieldIndex(rv.Type(), key)
		if !ok {
			return nil, false
		}
		fv, err := rv.FieldByIndexErr(index)
		if err != nil || !fv.CanInterface() {
			return nil, false
		}
		return fv.Interface(), true
	case reflect.Slice, reflect.Array:
		idx, err := strconv.Atoi(key)
		if err != nil || idx < 0 || idx >= rv.Len() {
			return nil, false
		}
		return rv.Index(idx).Interface(), true
	}
	return nil, false
}

// normalize collapses nil pointers to an untyped nil and dereferences the rest
func normalize(v any) any {
	rv := reflect.ValueOf(v)
	for rv.IsValid() && (rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface) {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
	}
	if !rv.IsValid() {
		return nil
	}
	if !rv.CanInterface() {
		return v
	}
	return rv.Interface()
}

var structFields sync.Map // reflect.Type -> map[string][]int

// fieldIndex finds a struct field by json tag name first, then Go field name
func fieldIndex(t reflect.Type, key string) ([]int, bool) {
	cached, ok := structFields.Load(t)
	if !ok {
		byTag := make(map[string][]int)
		byName := make(map[string][]int)
		for _, f := range reflect.VisibleFields(t) {
			if !f.IsExported() || f.Anonymous {
				continue
			}
			byName[f.Name] = f.Index
			if tag, ok := f.Tag.Lookup("json"); ok {
				name, _, _ := strings.Cut(tag, ",")
				if name != "" && name != "-" {
					byTag[name] = f.Index
				}
			}
		}
		// tag names win over Go names
		for name, idx := range byName {
			if _, taken := byTag[name]; !taken {
				byTag[name] = idx
			}
		}
		cached, _ = structFields.LoadOrStore(t, byTag)
	}
	idx, ok := cached.(map[string][]int)[key]
	return idx, ok
}

var jsonPaths sync.Map // string -> jp.Expr

func lookupJSONPath(record any, path string) (any, bool) {
	var expr jp.Expr
	if cached, ok := jsonPaths.Load(path); ok {
		expr = cached.(jp.Expr)
	} else {
		parsed, err := jp.ParseString(path)
		if err != nil {
			return nil, false
		}
		jsonPaths.Store(path, parsed)
		expr = parsed
	}

	results := expr.Get(record)
	if len(results) == 0 {
		return nil, false
	}
	return normalize(results[0]), true
}

// ExtractPaths lists the dotted leaf paths found in a sample of records,
// sorted. Arrays are not descended into.
func ExtractPaths(records ...any) []string {
	seen := make(map[string]bool)
	for _, r := range records {
		extractPathsRecursive(normalize(r), nil, seen)
	}

	paths := make([]string, 0, len(seen))
	for p := range seen {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

func extractPathsRecursive(value any, currentPath []string, seen map[string]bool) {
	rv := reflect.ValueOf(value)
	switch {
	case rv.IsValid() && rv.Kind() == reflect.Map && rv.Type().Key().Kind() == reflect.String:
		if rv.Len() == 0 && len(currentPath) > 0 {
			seen[strings.Join(currentPath, ".")] = true
			return
		}
		iter := rv.MapRange()
		for iter.Next() {
			newPath := append(append([]string{}, currentPath...), iter.Key().String())
			extractPathsRecursive(normalize(iter.Value().Interface()), newPath, seen)
		}
	case rv.IsValid() && rv.Kind() == reflect.Struct && !isTime(rv.Type()):
		for _, f := range reflect.VisibleFields(rv.Type()) {
			if !f.IsExported() || f.Anonymous {
				continue
			}
			name := f.Name
			if tag, ok := f.Tag.Lookup("json"); ok {
				if n, _, _ := strings.Cut(tag, ","); n == "-" {
					continue
				} else if n != "" {
					name = n
				}
			}
			fv, err := rv.FieldByIndexErr(f.Index)
			if err != nil {
				continue
			}
			newPath := append(append([]string{}, currentPath...), name)
			extractPathsRecursive(normalize(fv.Interface()), newPath, seen)
		}
	default:
		if len(currentPath) > 0 {
			seen[strings.Join(currentPath, ".")] = true
		}
	}
}

var timeType = reflect.TypeOf(timeZero)

func isTime(t reflect.Type) bool {
	return t == timeType
}
