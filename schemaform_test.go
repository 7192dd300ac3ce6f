package schemaform

import (
	"context"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-schemaform/pkg/fieldpath"
	"github.com/goliatone/go-schemaform/pkg/render"
	"github.com/goliatone/go-schemaform/pkg/renderers/html"
	"github.com/goliatone/go-schemaform/pkg/testsupport"
)

func nameTester(ctx render.Context) int {
	if ctx.Path.String() == "name" {
		return 5
	}
	return 0
}

// The global registry is shared, so these tests do not run in parallel.
func TestLoad_CopiesGlobalRenderers(t *testing.T) {
	t.Cleanup(ClearRenderers)

	id, err := RegisterRenderer(render.Definition[string]{
		Name:   "badge",
		Tester: nameTester,
		Render: func(render.Context) string { return "<b>global</b>" },
	})
	if err != nil {
		t.Fatalf("RegisterRenderer: %v", err)
	}

	f, err := Load(testsupport.SchemaBytes(t, testsupport.Person), nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	d := f.Tree().Find(fieldpath.MustTokenize("name"))
	if d == nil {
		t.Fatalf("no control for name")
	}
	got, ok := f.RenderCustom(d)
	if !ok || got != "<b>global</b>" {
		t.Fatalf("RenderCustom = %q, %v", got, ok)
	}

	// Later global changes do not reach an existing form.
	if !UnregisterRenderer(id) {
		t.Fatalf("UnregisterRenderer(%d) = false", id)
	}
	if _, ok := f.RenderCustom(d); !ok {
		t.Fatalf("form lost its copy of the global renderer")
	}
	if Renderers.Len() != 0 {
		t.Fatalf("global registry len = %d", Renderers.Len())
	}
}

func TestGenerateHTML(t *testing.T) {
	out, err := GenerateHTML(context.Background(),
		testsupport.SchemaBytes(t, testsupport.Person),
		testsupport.UISchemaBytes(t, testsupport.Person),
		map[string]any{"name": "Ada", "age": -1},
		html.WithSubmitLabel("Save"),
	)
	if err != nil {
		t.Fatalf("GenerateHTML: %v", err)
	}
	page := string(out)
	for _, fragment := range []string{
		`name="name" type="text" value="Ada"`,
		`placeholder="Ada Lovelace"`,
		`name="age" type="number" value="-1"`,
		`aria-invalid="true"`,
		`<button type="submit">Save</button>`,
	} {
		if !strings.Contains(page, fragment) {
			t.Fatalf("expected %q in output:\n%s", fragment, page)
		}
	}
}

func TestGenerateHTML_RejectsBrokenSchema(t *testing.T) {
	t.Parallel()

	if _, err := GenerateHTML(context.Background(), []byte(`{"type": [`), nil, nil); err == nil {
		t.Fatalf("expected a parse error")
	}
}

func TestParseDocuments(t *testing.T) {
	t.Parallel()

	node, err := ParseSchema(testsupport.SchemaBytes(t, testsupport.Team))
	if err != nil {
		t.Fatalf("ParseSchema: %v", err)
	}
	if diff := cmp.Diff([]string{"name", "members", "contact"}, node.PropertyNames()); diff != "" {
		t.Fatalf("property order mismatch (-want +got):\n%s", diff)
	}

	el, err := ParseUISchema(testsupport.UISchemaBytes(t, testsupport.Team))
	if err != nil {
		t.Fatalf("ParseUISchema: %v", err)
	}
	if el.Type != "Categorization" || len(el.Elements) != 2 {
		t.Fatalf("unexpected ui schema root %s with %d elements", el.Type, len(el.Elements))
	}
}
