package uischema

import (
	"strings"

	"github.com/goliatone/go-schemaform/pkg/fieldpath"
	"github.com/goliatone/go-schemaform/pkg/rules"
)

// Element types understood by the control tree builder.
const (
	TypeVerticalLayout   = "VerticalLayout"
	TypeHorizontalLayout = "HorizontalLayout"
	TypeGroup            = "Group"
	TypeCategorization   = "Categorization"
	TypeCategory         = "Category"
	TypeControl          = "Control"
	TypeTable            = "Table"
	TypeListWithDetail   = "ListWithDetail"
	TypeLabel            = "Label"
)

// Renderer names with built-in meaning on Control elements. A control naming
// one of them selects the matching array presentation rather than a custom
// renderer.
const (
	RendererTable          = "Table"
	RendererListWithDetail = "ListWithDetail"
)

// Element is one node of a UI Schema.
type Element struct {
	Type      string
	Scope     string
	Path      fieldpath.Path
	Label     string
	HideLabel bool
	Text      string
	Renderer  string
	Options   map[string]any
	Rule      *rules.Rule
	Elements  []*Element
	Detail    *Element

	// Pointer locates the element inside its document, e.g. "#/elements/2".
	Pointer string
}

// IsLayout reports whether the element only groups children and carries no
// data path of its own.
func (e *Element) IsLayout() bool {
	switch e.Type {
	case TypeVerticalLayout, TypeHorizontalLayout, TypeGroup, TypeCategorization, TypeCategory:
		return true
	}
	return false
}

// Option returns a string option, trimmed.
func (e *Element) Option(key string) string {
	if e == nil || e.Options == nil {
		return ""
	}
	v, _ := e.Options[key].(string)
	return strings.TrimSpace(v)
}

// BoolOption returns a boolean option.
func (e *Element) BoolOption(key string) bool {
	if e == nil || e.Options == nil {
		return false
	}
	v, _ := e.Options[key].(bool)
	return v
}

// ArrayPresentation returns TypeTable or TypeListWithDetail when the element
// asks for one of the alternate array presentations, either through its type
// or through a Control's renderer name.
func (e *Element) ArrayPresentation() string {
	if e == nil {
		return ""
	}
	switch e.Type {
	case TypeTable, TypeListWithDetail:
		return e.Type
	case TypeControl:
		switch e.Renderer {
		case RendererTable:
			return TypeTable
		case RendererListWithDetail:
			return TypeListWithDetail
		}
	}
	return ""
}

// Walk visits e and its descendants depth-first, details included.
func (e *Element) Walk(fn func(*Element)) {
	if e == nil {
		return
	}
	fn(e)
	for _, child := range e.Elements {
		child.Walk(fn)
	}
	e.Detail.Walk(fn)
}
