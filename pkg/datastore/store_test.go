package datastore

import (
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-schemaform/pkg/fieldpath"
	"github.com/goliatone/go-schemaform/pkg/schema"
)

func path(t *testing.T, raw string) fieldpath.Path {
	t.Helper()
	p, err := fieldpath.Tokenize(raw)
	if err != nil {
		t.Fatalf("tokenize %q: %v", raw, err)
	}
	return p
}

func TestStore_SetCreatesIntermediateContainers(t *testing.T) {
	t.Parallel()

	s := New(nil)
	if err := s.Set(path(t, "a.b[1].c"), "x"); err != nil {
		t.Fatalf("set: %v", err)
	}
	want := map[string]any{"a": map[string]any{"b": []any{nil, map[string]any{"c": "x"}}}}
	if diff := cmp.Diff(want, s.Snapshot()); diff != "" {
		t.Fatalf("data mismatch (-want +got):\n%s", diff)
	}
	if got := s.Value(path(t, "a.b[1].c")); got != "x" {
		t.Fatalf("get = %v", got)
	}
	if _, ok := s.Get(path(t, "a.b[5].c")); ok {
		t.Fatalf("expected missing index to be absent")
	}
	if _, ok := s.Get(path(t, "a.missing.c")); ok {
		t.Fatalf("expected missing intermediate to be absent")
	}
}

func TestStore_SetReportsTypeConflicts(t *testing.T) {
	t.Parallel()

	s := New(map[string]any{"list": []any{"a"}, "name": "ada"})
	before := s.Snapshot()

	cases := []struct {
		path string
		want string
	}{
		{"list.x", "object"},
		{"name[0]", "array"},
		{"name.first", "object"},
	}
	for _, tc := range cases {
		err := s.Set(path(t, tc.path), 1)
		var conflict *PathTypeConflictError
		if !errors.As(err, &conflict) {
			t.Fatalf("Set(%q) error = %v, want PathTypeConflictError", tc.path, err)
		}
		if conflict.Want != tc.want {
			t.Fatalf("Set(%q) want kind = %q, got %q", tc.path, conflict.Want, tc.want)
		}
	}
	if diff := cmp.Diff(before, s.Snapshot()); diff != "" {
		t.Fatalf("failed writes changed data (-want +got):\n%s", diff)
	}
}

func TestStore_SnapshotIsDetached(t *testing.T) {
	t.Parallel()

	input := map[string]any{"tags": []any{"a"}}
	s := New(input)
	input["tags"].([]any)[0] = "mutated"
	snap := s.Snapshot().(map[string]any)
	snap["tags"] = nil
	if got := s.Value(path(t, "tags[0]")); got != "a" {
		t.Fatalf("store aliased caller data, got %v", got)
	}
}

func TestClone_IsDetached(t *testing.T) {
	t.Parallel()

	s := New(map[string]any{"address": map[string]any{"city": "Oslo"}, "tags": []any{"a"}})
	address := Clone(s.Value(path(t, "address"))).(map[string]any)
	address["city"] = "Bergen"
	tags := Clone(s.Value(path(t, "tags"))).([]any)
	tags[0] = "mutated"

	want := map[string]any{"address": map[string]any{"city": "Oslo"}, "tags": []any{"a"}}
	if diff := cmp.Diff(want, s.Snapshot()); diff != "" {
		t.Fatalf("clone aliased store data mismatch (-want +got):\n%s", diff)
	}
}

func TestCoerce(t *testing.T) {
	t.Parallel()

	typed := func(typ string) *schema.Node { return &schema.Node{Type: typ} }
	cases := []struct {
		name   string
		node   *schema.Node
		raw    any
		want   any
		wantOK bool
	}{
		{"empty string omits", typed("string"), "", nil, false},
		{"nil omits", typed("integer"), nil, nil, false},
		{"integer text", typed("integer"), "37", int64(37), true},
		{"integer whole float text", typed("integer"), "4.0", int64(4), true},
		{"integer fraction stays float", typed("integer"), "4.5", 4.5, true},
		{"integer malformed keeps raw", typed("integer"), "abc", "abc", true},
		{"integer beyond int64 stays float", typed("integer"), "1e30", 1e30, true},
		{"integer float beyond int64 stays float", typed("integer"), -1e19, -1e19, true},
		{"integer at int64 minimum", typed("integer"), "-9223372036854775808", int64(math.MinInt64), true},
		{"number text", typed("number"), " 2.5 ", 2.5, true},
		{"number from int", typed("number"), 3, float64(3), true},
		{"number malformed keeps raw", typed("number"), "1,5", "1,5", true},
		{"boolean false text", typed("boolean"), "false", false, true},
		{"boolean on", typed("boolean"), "on", true, true},
		{"boolean zero", typed("boolean"), 0, false, true},
		{"string passthrough", typed("string"), "hi", "hi", true},
		{"untyped passthrough", schema.Empty(), "42", "42", true},
		{"nil schema passthrough", nil, "x", "x", true},
	}
	for _, tc := range cases {
		got, ok := Coerce(tc.node, tc.raw)
		if ok != tc.wantOK {
			t.Fatalf("%s: ok = %v, want %v", tc.name, ok, tc.wantOK)
		}
		if diff := cmp.Diff(tc.want, got); diff != "" {
			t.Fatalf("%s: mismatch (-want +got):\n%s", tc.name, diff)
		}
	}
}

func TestStore_SetValues(t *testing.T) {
	t.Parallel()

	root := schema.MustParse(`{
  "type": "object",
  "properties": {
    "name": {"type": "string"},
    "age": {"type": "integer"},
    "tags": {"type": "array", "items": {"type": "string"}},
    "people": {"type": "array", "items": {"type": "object", "properties": {"n": {"type": "number"}}}}
  }
}`)
	s := New(map[string]any{"name": "Grace", "age": int64(80)})

	err := s.SetValues(fieldpath.Root, root, map[string]any{
		"age":    "37",
		"tags":   []string{"a", "b"},
		"people": []any{map[string]any{"n": "1.5"}, nil},
		"extra":  "dropped",
	})
	if err != nil {
		t.Fatalf("set values: %v", err)
	}
	want := map[string]any{
		"name":   "Grace",
		"age":    int64(37),
		"tags":   []any{"a", "b"},
		"people": []any{map[string]any{"n": 1.5}, map[string]any{}},
	}
	if diff := cmp.Diff(want, s.Snapshot()); diff != "" {
		t.Fatalf("data mismatch (-want +got):\n%s", diff)
	}

	if err := s.SetValues(path(t, "name"), root.Property("name"), nil); err != nil {
		t.Fatalf("nil write: %v", err)
	}
	if got, _ := s.Get(path(t, "name")); got != "Grace" {
		t.Fatalf("nil leaf should keep the stored value, got %v", got)
	}
	if err := s.SetValues(path(t, "name"), root.Property("name"), ""); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if _, ok := s.Get(path(t, "name")); ok {
		t.Fatalf("empty string should remove the field")
	}
}

func TestDefaults(t *testing.T) {
	t.Parallel()

	root := schema.MustParse(`{
  "type": "object",
  "properties": {
    "title": {"type": "string", "default": "untitled"},
    "plain": {"type": "string"},
    "rows": {"type": "array", "minItems": 2, "items": {"type": "object", "properties": {"x": {"type": "integer", "default": 1}}}},
    "tags": {"type": "array", "default": ["a"], "items": {"type": "string"}}
  }
}`)
	want := map[string]any{
		"title": "untitled",
		"rows":  []any{map[string]any{"x": int64(1)}, map[string]any{"x": int64(1)}},
		"tags":  []any{"a"},
	}
	if diff := cmp.Diff(want, Defaults(root)); diff != "" {
		t.Fatalf("defaults mismatch (-want +got):\n%s", diff)
	}
}

func TestEqualAndTruthy(t *testing.T) {
	t.Parallel()

	if !Equal(int64(3), 3.0) {
		t.Fatalf("numbers must compare by value")
	}
	if Equal("3", int64(3)) {
		t.Fatalf("string and number must differ")
	}
	if !Equal(map[string]any{"a": []any{int64(1)}}, map[string]any{"a": []any{1.0}}) {
		t.Fatalf("containers must compare deeply")
	}
	if Equal(nil, false) {
		t.Fatalf("nil must only equal nil")
	}
	for _, v := range []any{nil, false, "", int64(0), 0.0} {
		if Truthy(v) {
			t.Fatalf("Truthy(%#v) = true", v)
		}
	}
	for _, v := range []any{true, "x", int64(2), map[string]any{}, []any{}} {
		if !Truthy(v) {
			t.Fatalf("Truthy(%#v) = false", v)
		}
	}
}

func TestNormalize_Structs(t *testing.T) {
	t.Parallel()

	type pet struct {
		Name string `json:"name"`
		Age  int    `json:"age"`
	}
	got := Normalize(map[string]any{"pet": pet{Name: "Rex", Age: 3}})
	want := map[string]any{"pet": map[string]any{"name": "Rex", "age": int64(3)}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("normalize mismatch (-want +got):\n%s", diff)
	}
}
