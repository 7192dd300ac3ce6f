package html

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/microcosm-cc/bluemonday"

	"github.com/goliatone/go-schemaform/pkg/fieldpath"
	"github.com/goliatone/go-schemaform/pkg/form"
	"github.com/goliatone/go-schemaform/pkg/render"
	"github.com/goliatone/go-schemaform/pkg/schema"
	"github.com/goliatone/go-schemaform/pkg/uischema"
)

const personSchema = `{
  "type": "object",
  "required": ["name"],
  "properties": {
    "name": {"type": "string", "description": "Full name"},
    "age": {"type": "integer", "minimum": 0},
    "role": {"type": "string", "enum": ["admin", "user"], "enumNames": ["Admin", "User"]},
    "active": {"type": "boolean"}
  }
}`

func load(t *testing.T, f *form.Form[string], raw, ui string) {
	t.Helper()
	var el *uischema.Element
	if ui != "" {
		el = uischema.MustParse(ui)
	}
	if err := f.Load(schema.MustParse(raw), el); err != nil {
		t.Fatalf("Load: %v", err)
	}
}

func paint(t *testing.T, r *Renderer, f *form.Form[string]) string {
	t.Helper()
	out, err := r.Render(context.Background(), f)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	return string(out)
}

func mustContain(t *testing.T, out string, fragments ...string) {
	t.Helper()
	for _, fragment := range fragments {
		if !strings.Contains(out, fragment) {
			t.Fatalf("expected %q in output:\n%s", fragment, out)
		}
	}
}

func TestRender_Leaves(t *testing.T) {
	t.Parallel()

	f := form.New[string](nil)
	load(t, f, personSchema, "")
	if err := f.SetData(map[string]any{"name": "Ada", "age": 37, "role": "user", "active": true}); err != nil {
		t.Fatalf("SetData: %v", err)
	}
	r, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	out := paint(t, r, f)

	mustContain(t, out,
		`name="name" type="text" value="Ada"`,
		`<p class="sf-description">Full name</p>`,
		`name="age" type="number" value="37" min="0" step="1"`,
		`<option value="user" selected>User</option>`,
		`name="active" type="checkbox" value="true" checked`,
		`<button type="submit">Submit</button>`,
	)
	if strings.Contains(out, "sf-error") {
		t.Fatalf("valid form must not render errors:\n%s", out)
	}
}

func TestRender_ValidationMessagesAndState(t *testing.T) {
	t.Parallel()

	f := form.New[string](nil)
	load(t, f, personSchema, "")
	if err := f.Hide("age"); err != nil {
		t.Fatalf("Hide: %v", err)
	}
	if err := f.Disable("role"); err != nil {
		t.Fatalf("Disable: %v", err)
	}
	f.Validate()

	r, err := New(WithSubmitLabel("Send"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	out := paint(t, r, f)

	age := f.Tree().Find(fieldpath.MustTokenize("age"))
	mustContain(t, out,
		`data-invalid="true"`,
		`<p class="sf-error">Missing required field`,
		`data-key="`+age.Key+`" hidden`,
		`<select id="sf-`,
		` disabled>`,
		`<button type="submit">Send</button>`,
	)
}

func TestRender_CustomMarkupIsSanitized(t *testing.T) {
	t.Parallel()

	global := render.NewRegistry[string]()
	global.MustRegister(render.Definition[string]{
		Name: "badge",
		Tester: func(ctx render.Context) int {
			if ctx.Path.String() == "name" {
				return 5
			}
			return 0
		},
		Render: func(ctx render.Context) string {
			value, _ := ctx.Host.Value(ctx.Path).(string)
			return `<b>` + value + `</b><script>alert(1)</script>`
		},
	})
	f := form.New(global)
	load(t, f, personSchema, "")
	if err := f.SetValue("name", "Ada"); err != nil {
		t.Fatalf("SetValue: %v", err)
	}

	r, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	out := paint(t, r, f)
	mustContain(t, out, `<div class="sf-custom"`, `<b>Ada</b>`)
	if strings.Contains(out, "<script>") {
		t.Fatalf("custom markup was not sanitized:\n%s", out)
	}

	strict, err := New(WithSanitizer(bluemonday.StrictPolicy()))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	out = paint(t, strict, f)
	if strings.Contains(out, "<b>") {
		t.Fatalf("strict policy must strip markup:\n%s", out)
	}
}

func TestRender_TemplateOverride(t *testing.T) {
	t.Parallel()

	f := form.New[string](nil)
	load(t, f, personSchema, "")

	r, err := New(WithTemplate(ComponentInput, `<i>{{ control.Name }}:{{ control.Type }}</i>`))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	out := paint(t, r, f)
	mustContain(t, out, `<i>name:text</i>`, `<i>age:number</i>`)

	if _, err := New(WithTemplate(ComponentInput, `{% if %}`)); err == nil {
		t.Fatalf("expected a parse error for a broken template")
	}
}

func TestRender_StructuralKinds(t *testing.T) {
	t.Parallel()

	raw := `{
  "type": "object",
  "properties": {
    "pet": {"oneOf": [
      {"title": "Cat", "type": "object", "properties": {"lives": {"type": "integer"}}},
      {"title": "Dog", "type": "object", "properties": {"bark": {"type": "string"}}}
    ]},
    "people": {"type": "array", "maxItems": 2, "items": {"type": "object", "properties": {
      "first": {"type": "string"}
    }}}
  }
}`
	ui := `{
  "type": "VerticalLayout",
  "elements": [
    {"type": "Control", "scope": "#/properties/pet"},
    {"type": "Control", "scope": "#/properties/people", "renderer": "Table"}
  ]
}`
	f := form.New[string](nil)
	load(t, f, raw, ui)
	if err := f.SetData(map[string]any{"people": []any{
		map[string]any{"first": "Ada"},
		map[string]any{"first": "Alan"},
	}}); err != nil {
		t.Fatalf("SetData: %v", err)
	}

	r, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	out := paint(t, r, f)
	mustContain(t, out,
		`<option value="0" selected>Cat</option>`,
		`name="pet.lives"`,
		`<th>First</th>`,
		`name="people[1].first" type="text" value="Alan"`,
		`data-max-items="2"`,
	)
	if strings.Contains(out, `name="pet.bark"`) {
		t.Fatalf("inactive branch must not render:\n%s", out)
	}
	if strings.Contains(out, `data-action="append"`) {
		t.Fatalf("full table must not offer append:\n%s", out)
	}
}

func TestRender_RequiresSchema(t *testing.T) {
	t.Parallel()

	r, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	_, err = r.Render(context.Background(), form.New[string](nil))
	if !errors.Is(err, form.ErrNoSchema) {
		t.Fatalf("expected ErrNoSchema, got %v", err)
	}
}

func TestRender_HonoursCancellation(t *testing.T) {
	t.Parallel()

	f := form.New[string](nil)
	load(t, f, personSchema, "")
	r, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := r.Render(ctx, f); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
