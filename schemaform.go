// Package schemaform is the entry point for building live forms from JSON
// Schema and JSON Forms UI Schema documents.
//
// The package holds the process-wide renderer registry. Forms created with
// New start from a copy of it; see form.Form.ClearRenderers for how an
// instance returns to the global set.
package schemaform

import (
	"context"
	"fmt"
	"io/fs"

	"github.com/goliatone/go-schemaform/pkg/form"
	"github.com/goliatone/go-schemaform/pkg/render"
	"github.com/goliatone/go-schemaform/pkg/renderers/html"
	"github.com/goliatone/go-schemaform/pkg/schema"
	"github.com/goliatone/go-schemaform/pkg/uischema"
)

// Renderers is the global registry of custom renderers producing markup.
var Renderers = render.NewRegistry[string]()

// RegisterRenderer adds def to the global registry and returns its id.
// Forms created afterwards see it.
func RegisterRenderer(def render.Definition[string]) (int, error) {
	return Renderers.Register(def)
}

// UnregisterRenderer removes a global renderer by id.
func UnregisterRenderer(id int) bool {
	return Renderers.Unregister(id)
}

// ClearRenderers empties the global registry.
func ClearRenderers() {
	Renderers.Clear()
}

// New creates an empty form bound to the global registry.
func New(opts ...form.Option) *form.Form[string] {
	return form.New(Renderers, opts...)
}

// Load creates a form and loads the given schema and optional UI Schema
// documents, JSON or YAML.
func Load(schemaRaw, uiRaw []byte, opts ...form.Option) (*form.Form[string], error) {
	f := New(opts...)
	if err := f.LoadBytes(schemaRaw, uiRaw); err != nil {
		return nil, err
	}
	return f, nil
}

// ParseSchema parses a data schema document.
func ParseSchema(raw []byte) (*schema.Node, error) {
	return schema.Parse(raw)
}

// ParseUISchema parses a UI Schema document.
func ParseUISchema(raw []byte) (*uischema.Element, error) {
	return uischema.Parse(raw)
}

// GenerateHTML loads the documents, replaces the data when data is not nil,
// validates and paints an HTML preview.
func GenerateHTML(ctx context.Context, schemaRaw, uiRaw []byte, data any, opts ...html.Option) ([]byte, error) {
	f, err := Load(schemaRaw, uiRaw)
	if err != nil {
		return nil, err
	}
	if data != nil {
		if err := f.SetData(data); err != nil {
			return nil, fmt.Errorf("schemaform: set data: %w", err)
		}
	}
	f.Validate()

	renderer, err := html.New(opts...)
	if err != nil {
		return nil, err
	}
	return renderer.Render(ctx, f)
}

// EmbeddedTemplates exposes the built-in HTML templates so callers can reuse
// or extend them without importing the renderer package directly.
func EmbeddedTemplates() fs.FS {
	return html.TemplatesFS()
}
