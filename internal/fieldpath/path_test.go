package fieldpath

import (
	"math"
	"reflect"
	"testing"
	"time"
)

type owner struct {
	Name    string `json:"name"`
	Email   string
	private string
}

type asset struct {
	Title  string   `json:"title"`
	Owner  *owner   `json:"owner"`
	Tags   []string `json:"tags"`
	Hidden string   `json:"-"`
}

func TestResolve_Maps(t *testing.T) {
	record := map[string]any{
		"name": "Brand Book",
		"owner": map[string]any{
			"name": "Ada",
			"team": map[string]any{"id": 7.0},
		},
		"tags":  []any{"logo", "print"},
		"empty": nil,
	}

	tests := []struct {
		path     string
		expected any
		found    bool
	}{
		{"name", "Brand Book", true},
		{"owner.name", "Ada", true},
		{"owner.team.id", 7.0, true},
		{"tags.1", "print", true},
		{"tags.5", nil, false},
		{"owner.missing", nil, false},
		{"owner.name.first", nil, false},
		{"missing.deeper.path", nil, false},
		{"empty", nil, true},
		{"empty.child", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, found := Lookup(record, tt.path)
			if found != tt.found {
				t.Errorf("Lookup(%q) found = %v, want %v", tt.path, found, tt.found)
			}
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("Lookup(%q) = %v, want %v", tt.path, got, tt.expected)
			}
		})
	}
}

func TestResolve_Structs(t *testing.T) {
	a := asset{
		Title:  "Logo pack",
		Owner:  &owner{Name: "Grace", Email: "grace@example.com", private: "x"},
		Tags:   []string{"svg"},
		Hidden: "secret",
	}

	if got := Resolve(a, "title"); got != "Logo pack" {
		t.Errorf("expected json tag lookup, got %v", got)
	}
	if got := Resolve(a, "Title"); got != "Logo pack" {
		t.Errorf("expected Go name lookup, got %v", got)
	}
	if got := Resolve(&a, "owner.name"); got != "Grace" {
		t.Errorf("expected pointer traversal, got %v", got)
	}
	if got := Resolve(a, "owner.Email"); got != "grace@example.com" {
		t.Errorf("expected untagged field by Go name, got %v", got)
	}
	if got := Resolve(a, "owner.private"); got != nil {
		t.Errorf("unexported fields must be absent, got %v", got)
	}
	if got := Resolve(a, "tags.0"); got != "svg" {
		t.Errorf("expected slice index, got %v", got)
	}
	if _, found := Lookup(a, "-"); found {
		t.Error("json:\"-\" fields must not be addressable by tag")
	}

	a.Owner = nil
	if got, found := Lookup(a, "owner"); got != nil || !found {
		t.Errorf("nil pointer should resolve to present nil, got %v found=%v", got, found)
	}
	if _, found := Lookup(a, "owner.name"); found {
		t.Error("walking through a nil pointer must report absent")
	}
}

func TestResolve_NeverPanics(t *testing.T) {
	inputs := []any{nil, 42, "text", []int{1, 2}, map[int]string{1: "a"}, func() {}, make(chan int)}
	for _, in := range inputs {
		if got := Resolve(in, "a.b"); got != nil {
			t.Errorf("Resolve(%T) = %v, want nil", in, got)
		}
	}
}

func TestResolve_JSONPath(t *testing.T) {
	record := map[string]any{
		"owner": map[string]any{"name": "Ada"},
		"tags":  []any{"logo", "print"},
	}

	if got := Resolve(record, "$.owner.name"); got != "Ada" {
		t.Errorf("expected Ada, got %v", got)
	}
	if got := Resolve(record, "$.tags[1]"); got != "print" {
		t.Errorf("expected print, got %v", got)
	}
	if _, found := Lookup(record, "$.nope"); found {
		t.Error("expected no match for missing JSONPath")
	}
	if _, found := Lookup(record, "$[[["); found {
		t.Error("expected invalid JSONPath to resolve as absent")
	}
}

func TestPath_JSONPath(t *testing.T) {
	p := Parse("owner.tags.0.label")
	if got := p.JSONPath(); got != "$.owner.tags[0].label" {
		t.Errorf("unexpected JSONPath %q", got)
	}
	if got := p.String(); got != "owner.tags.0.label" {
		t.Errorf("unexpected String %q", got)
	}
}

func TestExtractPaths(t *testing.T) {
	records := []any{
		map[string]any{"name": "a", "owner": map[string]any{"name": "x"}},
		map[string]any{"status": "draft", "tags": []any{"t"}},
		asset{Title: "t"},
	}

	got := ExtractPaths(records...)
	want := map[string]bool{"name": true, "owner.name": true, "status": true, "tags": true, "title": true}
	have := make(map[string]bool)
	for _, p := range got {
		have[p] = true
	}
	for p := range want {
		if !have[p] {
			t.Errorf("ExtractPaths missing %q in %v", p, got)
		}
	}
	if have["Hidden"] {
		t.Error("json:\"-\" field must not be extracted")
	}
}

func TestCoercion(t *testing.T) {
	if got := ToString(3.0); got != "3" {
		t.Errorf("ToString(3.0) = %q", got)
	}
	if got := ToString([]any{"a", 1.5}); got != "a,1.5" {
		t.Errorf("ToString(slice) = %q", got)
	}
	if got := ToString(nil); got != "" {
		t.Errorf("ToString(nil) = %q", got)
	}
	if got := ToString(true); got != "true" {
		t.Errorf("ToString(true) = %q", got)
	}

	if got := ToNumber("12.5"); got != 12.5 {
		t.Errorf("ToNumber(\"12.5\") = %v", got)
	}
	if got := ToNumber(""); got != 0 {
		t.Errorf("ToNumber(\"\") = %v", got)
	}
	if !math.IsNaN(ToNumber("abc")) {
		t.Error("ToNumber(\"abc\") should be NaN")
	}
	if !math.IsNaN(ToNumber(nil)) {
		t.Error("ToNumber(nil) should be NaN")
	}
	ts := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	if got := ToNumber(ts); got != float64(ts.UnixMilli()) {
		t.Errorf("ToNumber(time) = %v", got)
	}

	for _, v := range []any{nil, false, 0, 0.0, "", math.NaN()} {
		if Truthy(v) {
			t.Errorf("Truthy(%#v) should be false", v)
		}
	}
	for _, v := range []any{true, 1, "x", []any{}, map[string]any{}} {
		if !Truthy(v) {
			t.Errorf("Truthy(%#v) should be true", v)
		}
	}
}

type status string

func TestEqual(t *testing.T) {
	tests := []struct {
		a, b     any
		expected bool
	}{
		{1, 1.0, true},
		{int64(2), 2, true},
		{"1", 1, false},
		{status("active"), "active", true},
		{nil, nil, true},
		{nil, "", false},
		{[]any{"a"}, []any{"a"}, true},
		{map[string]any{"a": 1}, map[string]any{"a": 2}, false},
		{true, "true", false},
		{math.NaN(), math.NaN(), false},
	}

	for _, tt := range tests {
		if got := Equal(tt.a, tt.b); got != tt.expected {
			t.Errorf("Equal(%#v, %#v) = %v, want %v", tt.a, tt.b, got, tt.expected)
		}
	}
}
