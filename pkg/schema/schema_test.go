package schema

import (
	"errors"
	"testing"
	"testing/fstest"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-schemaform/pkg/fieldpath"
)

func TestParse_PreservesDeclarationOrder(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"json": `{"type":"object","properties":{"zeta":{"type":"string"},"alpha":{"type":"integer"},"mid":{"type":"boolean"}}}`,
		"yaml": "type: object\nproperties:\n  zeta:\n    type: string\n  alpha:\n    type: integer\n  mid:\n    type: boolean\n",
	}
	for name, raw := range cases {
		raw := raw
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			node, err := Parse([]byte(raw))
			if err != nil {
				t.Fatalf("parse: %v", err)
			}
			if diff := cmp.Diff([]string{"zeta", "alpha", "mid"}, node.PropertyNames()); diff != "" {
				t.Fatalf("order mismatch (-want +got):\n%s", diff)
			}
			if got := node.Property("alpha").Type; got != "integer" {
				t.Fatalf("alpha type = %q", got)
			}
		})
	}
}

func TestParse_RejectsNonObjectRoots(t *testing.T) {
	t.Parallel()

	for _, raw := range []string{"", "[1,2]", "42", "{\"type\": "} {
		_, err := Parse([]byte(raw))
		var parseErr *ParseError
		if !errors.As(err, &parseErr) {
			t.Fatalf("Parse(%q) error = %v, want ParseError", raw, err)
		}
	}
}

func TestParse_ReadsKeywords(t *testing.T) {
	t.Parallel()

	node := MustParse(`{
  "type": ["integer", "null"],
  "title": "Age",
  "minimum": 0,
  "exclusiveMaximum": 130,
  "multipleOf": 1,
  "default": 18,
  "enum": [18, 21],
  "x-enumNames": ["adult", "US adult"],
  "readOnly": true,
  "placeholder": "years",
  "x-ui-widget": "range"
}`)
	if node.Type != "integer" || !node.Nullable {
		t.Fatalf("type = %q nullable = %v", node.Type, node.Nullable)
	}
	if node.Minimum == nil || *node.Minimum != 0 {
		t.Fatalf("minimum = %v", node.Minimum)
	}
	if node.ExclusiveMaximum == nil || *node.ExclusiveMaximum != 130 {
		t.Fatalf("exclusiveMaximum = %v", node.ExclusiveMaximum)
	}
	if !node.HasDefault || node.Default != int64(18) {
		t.Fatalf("default = %#v", node.Default)
	}
	if got := node.EnumLabel(1); got != "US adult" {
		t.Fatalf("enum label = %q", got)
	}
	if !node.ReadOnly || node.Placeholder != "years" || node.Widget != "range" {
		t.Fatalf("hints not carried: %+v", node)
	}
	if _, ok := node.Extension("x-enumNames"); !ok {
		t.Fatalf("expected x-enumNames extension")
	}
}

func TestParse_EnumLabelFallsBackToValue(t *testing.T) {
	t.Parallel()

	node := MustParse(`{"enum":["a", 2, true]}`)
	got := []string{node.EnumLabel(0), node.EnumLabel(1), node.EnumLabel(2)}
	if diff := cmp.Diff([]string{"a", "2", "true"}, got); diff != "" {
		t.Fatalf("labels mismatch (-want +got):\n%s", diff)
	}
}

func TestParse_ResolvesLocalRefs(t *testing.T) {
	t.Parallel()

	node := MustParse(`{
  "$defs": {"name": {"type": "string", "maxLength": 10}},
  "type": "object",
  "properties": {
    "first": {"$ref": "#/$defs/name", "title": "First"},
    "tree": {"type": "object", "properties": {"children": {"type": "array", "items": {"$ref": "#/properties/tree"}}}}
  }
}`)
	first := node.Property("first")
	if first.Type != "string" || first.Title != "First" || first.MaxLength == nil || *first.MaxLength != 10 {
		t.Fatalf("unexpected first: %+v", first)
	}
	if first.Ref != "#/$defs/name" {
		t.Fatalf("ref = %q", first.Ref)
	}

	children := Resolve(node, fieldpath.MustTokenize("tree.children[0]"))
	if !children.IsObject() {
		t.Fatalf("expected recursive item to expand once, got %+v", children)
	}
	nested := Resolve(node, fieldpath.MustTokenize("tree.children[0].children[0]"))
	if nested.Ref != "#/properties/tree" {
		t.Fatalf("expected recursion stub, got %+v", nested)
	}
}

func TestParse_MissingRefTargetFails(t *testing.T) {
	t.Parallel()

	_, err := Parse([]byte(`{"properties":{"a":{"$ref":"#/$defs/nope"}}}`))
	var parseErr *ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("expected ParseError, got %v", err)
	}
}

func TestFromMap_SortsKeys(t *testing.T) {
	t.Parallel()

	node, err := FromMap(map[string]any{
		"type": "object",
		"properties": map[string]any{
			"b": map[string]any{"type": "string"},
			"a": map[string]any{"type": "number", "minimum": 1},
		},
		"required": []any{"a"},
	})
	if err != nil {
		t.Fatalf("from map: %v", err)
	}
	if diff := cmp.Diff([]string{"a", "b"}, node.PropertyNames()); diff != "" {
		t.Fatalf("order mismatch (-want +got):\n%s", diff)
	}
	if !node.IsRequired("a") || node.IsRequired("b") {
		t.Fatalf("required = %v", node.Required)
	}
	if diff := cmp.Diff(map[string]any{"type": "number", "minimum": int64(1)}, node.Property("a").Raw()); diff != "" {
		t.Fatalf("raw mismatch (-want +got):\n%s", diff)
	}
}

func TestMergeAllOf(t *testing.T) {
	t.Parallel()

	node := MustParse(`{
  "properties": {"id": {"type": "integer"}},
  "required": ["id"],
  "allOf": [
    {"type": "object", "properties": {"name": {"type": "string"}, "id": {"type": "string"}}, "required": ["name", "id"]},
    {"type": "string", "properties": {"ignored": {}}},
    {"type": "object", "properties": {"email": {"type": "string", "format": "email"}}, "required": ["email"]}
  ]
}`)
	merged := MergeAllOf(node)
	if merged.Type != "object" {
		t.Fatalf("type = %q", merged.Type)
	}
	if diff := cmp.Diff([]string{"id", "name", "email"}, merged.PropertyNames()); diff != "" {
		t.Fatalf("order mismatch (-want +got):\n%s", diff)
	}
	if got := merged.Property("id").Type; got != "string" {
		t.Fatalf("later allOf entry should win, got %q", got)
	}
	if diff := cmp.Diff([]string{"id", "name", "email"}, merged.Required); diff != "" {
		t.Fatalf("required mismatch (-want +got):\n%s", diff)
	}
	if merged.Property("ignored") != nil {
		t.Fatalf("non-object member must be ignored")
	}
	if len(node.AllOf) != 3 || node.Property("name") != nil {
		t.Fatalf("source node was mutated")
	}
}

func TestMergeAllOf_Idempotent(t *testing.T) {
	t.Parallel()

	node := MustParse(`{"allOf":[{"type":"object","properties":{"a":{"type":"string"}},"required":["a"]},{"type":"object","properties":{"b":{"allOf":[{"type":"object","properties":{"c":{}}}]}}}]}`)
	once := MergeAllOf(node)
	twice := MergeAllOf(once)
	if once != twice {
		t.Fatalf("merging a merged node must return it unchanged")
	}
	if diff := cmp.Diff(once.PropertyNames(), twice.PropertyNames()); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
}

func TestResolve(t *testing.T) {
	t.Parallel()

	root := MustParse(`{
  "type": "object",
  "properties": {
    "people": {"type": "array", "items": {
      "allOf": [{"type": "object", "properties": {"name": {"type": "string"}}}]
    }},
    "title": {"type": "string"}
  }
}`)

	cases := []struct {
		path string
		want string
	}{
		{"", "object"},
		{"people", "array"},
		{"people[3]", "object"},
		{"people[3].name", "string"},
		{"title", "string"},
		{"missing", ""},
		{"title.deeper", ""},
		{"people[0].name[1]", ""},
	}
	for _, tc := range cases {
		got := Resolve(root, fieldpath.MustTokenize(tc.path))
		if got == nil {
			t.Fatalf("Resolve(%q) returned nil", tc.path)
		}
		if got.Type != tc.want {
			t.Fatalf("Resolve(%q).Type = %q, want %q", tc.path, got.Type, tc.want)
		}
	}
	if !Resolve(root, fieldpath.MustTokenize("missing.x")).IsUntyped() {
		t.Fatalf("unknown path must be untyped")
	}
}

func TestResolveWith_DescendsChosenBranch(t *testing.T) {
	t.Parallel()

	root := MustParse(`{
  "type": "object",
  "properties": {
    "payment": {"oneOf": [
      {"type": "object", "properties": {"card": {"type": "string"}}},
      {"type": "object", "properties": {"iban": {"type": "string"}}}
    ]}
  }
}`)
	p := fieldpath.MustTokenize("payment.iban")
	if got := Resolve(root, p); !got.IsUntyped() {
		t.Fatalf("plain resolve must not pick a branch, got %+v", got)
	}
	var seen fieldpath.Path
	got := ResolveWith(root, p, func(at fieldpath.Path, node *Node) int {
		seen = at
		return 1
	})
	if got.Type != "string" {
		t.Fatalf("type = %q", got.Type)
	}
	if seen.String() != "payment" {
		t.Fatalf("chooser called at %q", seen.String())
	}
}

func TestResolveDeclared_KeepsBranchesAtTarget(t *testing.T) {
	t.Parallel()

	root := MustParse(`{
  "type": "object",
  "properties": {
    "payment": {"oneOf": [
      {"type": "object", "properties": {"card": {"type": "string"}}},
      {"type": "object", "properties": {"iban": {"type": "string"}}}
    ]}
  }
}`)
	second := func(fieldpath.Path, *Node) int { return 1 }

	if got := ResolveDeclared(root, fieldpath.MustTokenize("payment"), second); len(got.Branches()) != 2 {
		t.Fatalf("declared node lost its branches: %+v", got)
	}
	if got := ResolveWith(root, fieldpath.MustTokenize("payment"), second); len(got.Branches()) != 0 || got.Property("iban") == nil {
		t.Fatalf("ResolveWith must descend into the chosen branch, got %+v", got)
	}
	if got := ResolveDeclared(root, fieldpath.MustTokenize("payment.iban"), second); got.Type != "string" {
		t.Fatalf("descent on the way to the target failed: %+v", got)
	}
	if got := ResolveDeclared(root, fieldpath.Root, second); !got.IsObject() {
		t.Fatalf("root = %+v", got)
	}
}

func TestWithUIOptions(t *testing.T) {
	t.Parallel()

	base := MustParse(`{"type":"string","description":"orig"}`)
	got := base.WithUIOptions("textarea", "type here", "")
	if got.Widget != "textarea" || got.Placeholder != "type here" || got.Description != "orig" {
		t.Fatalf("unexpected overlay: %+v", got)
	}
	if base.Widget != "" {
		t.Fatalf("overlay mutated the source node")
	}
	if base.WithUIOptions("", "", "") != base {
		t.Fatalf("empty overlay should return the node itself")
	}
}

func TestLoad_FromFS(t *testing.T) {
	t.Parallel()

	fsys := fstest.MapFS{"schemas/a.yaml": {Data: []byte("type: string\nminLength: 2\n")}}
	node, err := Load(SourceFromFS(fsys, "schemas/a.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if node.Type != "string" || node.MinLength == nil || *node.MinLength != 2 {
		t.Fatalf("unexpected node: %+v", node)
	}
	if _, err := Load(SourceFromFS(fsys, "missing.json")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
