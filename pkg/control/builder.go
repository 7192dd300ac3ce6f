package control

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/goliatone/go-schemaform/internal/labels"
	"github.com/goliatone/go-schemaform/pkg/fieldpath"
	"github.com/goliatone/go-schemaform/pkg/render"
	"github.com/goliatone/go-schemaform/pkg/schema"
	"github.com/goliatone/go-schemaform/pkg/uischema"
	"github.com/goliatone/go-schemaform/pkg/widgets"
)

// Data reads values by path; *datastore.Store satisfies it. The builder only
// reads array lengths through it.
type Data interface {
	Get(p fieldpath.Path) (any, bool)
}

// Selector picks a custom renderer for a control. The Select method of a
// *render.Registry satisfies it.
type Selector func(ctx render.Context) (render.Selection, bool)

// Options configures the behaviour of the Builder.
type Options struct {
	Labeler labels.Labeler
	Widgets *widgets.Registry
	Select  Selector
}

func defaultOptions() Options {
	return Options{
		Labeler: labels.Humanize,
		Widgets: widgets.NewRegistry(),
	}
}

// Builder turns a data schema and an optional UI Schema into a control tree.
type Builder struct {
	opts Options
}

// New constructs a Builder. Zero option fields take their defaults.
func New(opts Options) *Builder {
	defaults := defaultOptions()
	if opts.Labeler == nil {
		opts.Labeler = defaults.Labeler
	}
	if opts.Widgets == nil {
		opts.Widgets = defaults.Widgets
	}
	return &Builder{opts: opts}
}

// Build walks ui when it is non-nil, and the data schema alone otherwise.
// Array item counts come from data, so callers seed defaults and minItems
// items into the data before building.
func (b *Builder) Build(root *schema.Node, ui *uischema.Element, data Data) (*Tree, error) {
	return b.build(root, ui, data, nil)
}

func (b *Builder) build(root *schema.Node, ui *uischema.Element, data Data, prev *Tree) (*Tree, error) {
	if root == nil {
		return nil, ErrSchemaRequired
	}
	tree := &Tree{builder: b, schema: root, ui: ui}
	w := tree.walker(data)
	w.prev = prev
	if ui != nil {
		tree.Root = w.element(ui, fieldpath.Root)
	} else {
		tree.Root = w.fromSchema(root, fieldpath.Root, "", false, nil)
	}
	tree.reindex()
	return tree, nil
}

type walker struct {
	b    *Builder
	tree *Tree
	data Data
	prev *Tree
}

// newDescriptor allocates a descriptor, carrying the key, manual state and
// selection of its counterpart in the previous tree.
func (w *walker) newDescriptor(kind Kind, p fieldpath.Path, base fieldpath.Path, el *uischema.Element) *Descriptor {
	d := &Descriptor{Kind: kind, Path: p.Clone(), base: base.Clone(), Element: el}
	if old := w.prev.counterpart(d); old != nil {
		d.Key = old.Key
		d.hidden = old.hidden
		d.disabled = old.disabled
		d.Selected = old.Selected
	} else {
		d.Key = uuid.NewString()
	}
	return d
}

// fromSchema builds the built-in descriptor for node at p: a composition
// switch, an object group, an array presentation or a leaf, in that order.
func (w *walker) fromSchema(node *schema.Node, p fieldpath.Path, name string, required bool, el *uischema.Element) *Descriptor {
	node = schema.MergeAllOf(node)
	if node == nil {
		node = schema.Empty()
	}
	if el != nil {
		node = node.WithUIOptions(el.Option("widget"), el.Option("placeholder"), el.Option("description"))
	}

	var d *Descriptor
	switch {
	case len(node.Branches()) > 0:
		d = w.composition(node, p, el)
	case node.IsObject():
		d = w.object(node, p, el)
	case node.IsArray():
		switch el.ArrayPresentation() {
		case uischema.TypeTable:
			d = w.table(node, p, el)
		case uischema.TypeListWithDetail:
			d = w.listDetail(node, p, el)
		default:
			d = w.array(node, p, el)
		}
	default:
		d = w.leaf(node, p, el)
	}

	d.Schema = node
	d.Required = required
	d.ReadOnly = node.ReadOnly
	d.Description = labels.RichText(node.Description)
	d.Placeholder = labels.PlainText(node.Placeholder)
	w.label(d, node, name, el)
	if el != nil && el.Rule != nil {
		d.Rule = el.Rule
	}
	return d
}

func (w *walker) label(d *Descriptor, node *schema.Node, name string, el *uischema.Element) {
	switch {
	case el != nil && el.Label != "":
		d.Label = el.Label
	case node.Title != "":
		d.Label = node.Title
	case name != "":
		d.Label = w.b.opts.Labeler(name)
	}
	d.Label = labels.PlainText(d.Label)
	if el != nil {
		d.HideLabel = el.HideLabel
	}
}

func (w *walker) composition(node *schema.Node, p fieldpath.Path, el *uischema.Element) *Descriptor {
	d := w.newDescriptor(KindComposition, p, nil, el)
	keyword := node.CompositionKeyword()
	for i, branch := range node.Branches() {
		label := ""
		if branch != nil {
			label = labels.PlainText(branch.Title)
		}
		if label == "" {
			label = fmt.Sprintf("%s #%d", keyword, i+1)
		}
		d.Branches = append(d.Branches, Branch{Label: label, Schema: branch})
	}
	if d.Selected < 0 || d.Selected >= len(d.Branches) {
		d.Selected = 0
	}
	d.adopt(w.fromSchema(d.Branches[d.Selected].Schema, p, "", false, nil))
	return d
}

func (w *walker) object(node *schema.Node, p fieldpath.Path, el *uischema.Element) *Descriptor {
	d := w.newDescriptor(KindObject, p, nil, el)
	for _, name := range node.PropertyNames() {
		d.adopt(w.property(node, p, name))
	}
	return d
}

func (w *walker) property(parent *schema.Node, p fieldpath.Path, name string) *Descriptor {
	d := w.fromSchema(parent.Properties[name], p.Child(name), name, parent.IsRequired(name), nil)
	return w.pick(d, nil)
}

func (w *walker) array(node *schema.Node, p fieldpath.Path, el *uischema.Element) *Descriptor {
	d := w.newDescriptor(KindArray, p, nil, el)
	d.Constraints = constraintsOf(node)
	for i := 0; i < w.length(p); i++ {
		d.adopt(w.item(node, p, i))
	}
	return d
}

func (w *walker) table(node *schema.Node, p fieldpath.Path, el *uischema.Element) *Descriptor {
	d := w.newDescriptor(KindTable, p, nil, el)
	d.Constraints = constraintsOf(node)
	d.Columns = w.columns(node.Items)
	for i := 0; i < w.length(p); i++ {
		d.adopt(w.item(node, p, i))
	}
	return d
}

func (w *walker) listDetail(node *schema.Node, p fieldpath.Path, el *uischema.Element) *Descriptor {
	d := w.newDescriptor(KindListDetail, p, nil, el)
	d.Constraints = constraintsOf(node)
	if el != nil {
		d.Detail = el.Detail
	}
	for i := 0; i < w.length(p); i++ {
		d.adopt(w.detailItem(node, p, i, d.Detail))
	}
	d.Selected = clampSelection(d.Selected, len(d.Children))
	return d
}

func (w *walker) item(array *schema.Node, p fieldpath.Path, i int) *Descriptor {
	d := w.fromSchema(array.Items, p.Item(i), "", false, nil)
	d.Label = labels.Item(i)
	d.autoLabel = true
	return d
}

// detailItem builds one list-detail item. With a detail layout the item is
// an object group whose children come from the layout, scoped relative to
// the item path; without one it is built from the items schema.
func (w *walker) detailItem(array *schema.Node, p fieldpath.Path, i int, detail *uischema.Element) *Descriptor {
	if detail == nil {
		return w.item(array, p, i)
	}
	itemPath := p.Item(i)
	items := schema.MergeAllOf(array.Items)
	if items == nil {
		items = schema.Empty()
	}
	d := w.newDescriptor(KindObject, itemPath, nil, nil)
	d.Schema = items
	d.ReadOnly = items.ReadOnly
	d.Label = labels.Item(i)
	d.autoLabel = true
	d.adopt(w.element(detail, itemPath))
	return d
}

func (w *walker) itemFor(array *Descriptor, i int) *Descriptor {
	if array.Base() == KindListDetail {
		return w.detailItem(array.Schema, array.Path, i, array.Detail)
	}
	return w.item(array.Schema, array.Path, i)
}

func (w *walker) columns(items *schema.Node) []Column {
	items = schema.MergeAllOf(items)
	if items == nil {
		items = schema.Empty()
	}
	if !items.IsObject() {
		return []Column{{Label: labels.PlainText(items.Title), Schema: items}}
	}
	cols := make([]Column, 0, len(items.Properties))
	for _, name := range items.PropertyNames() {
		prop := schema.MergeAllOf(items.Properties[name])
		label := ""
		if prop != nil {
			label = prop.Title
		}
		if label == "" {
			label = w.b.opts.Labeler(name)
		}
		cols = append(cols, Column{
			Name:     name,
			Label:    labels.PlainText(label),
			Required: items.IsRequired(name),
			Schema:   prop,
		})
	}
	return cols
}

func (w *walker) leaf(node *schema.Node, p fieldpath.Path, el *uischema.Element) *Descriptor {
	d := w.newDescriptor(KindLeaf, p, nil, el)
	d.Input = w.b.opts.Widgets.Resolve(node)
	for i, value := range node.Enum {
		d.Options = append(d.Options, Option{Value: value, Label: labels.PlainText(node.EnumLabel(i))})
	}
	d.Constraints = constraintsOf(node)
	return d
}

// element builds the descriptor for one UI Schema element. Scopes resolve
// relative to base, which is the item path inside list-detail layouts.
func (w *walker) element(el *uischema.Element, base fieldpath.Path) *Descriptor {
	var d *Descriptor
	switch el.Type {
	case uischema.TypeVerticalLayout, uischema.TypeHorizontalLayout:
		d = w.newDescriptor(KindLayout, nil, base, el)
		w.children(d, el, base)
	case uischema.TypeGroup:
		d = w.newDescriptor(KindGroup, nil, base, el)
		d.Label = labels.PlainText(el.Label)
		w.children(d, el, base)
	case uischema.TypeCategorization:
		d = w.newDescriptor(KindCategories, nil, base, el)
		d.Label = labels.PlainText(el.Label)
		w.children(d, el, base)
		for i, child := range d.Children {
			if child.Kind == KindCategory && child.Label == "" {
				child.Label = fmt.Sprintf("Category %d", i+1)
			}
		}
		d.Selected = clampSelection(d.Selected, len(d.Children))
	case uischema.TypeCategory:
		d = w.newDescriptor(KindCategory, nil, base, el)
		d.Label = labels.PlainText(el.Label)
		w.children(d, el, base)
	case uischema.TypeLabel:
		d = w.newDescriptor(KindLabel, nil, base, el)
		d.Label = labels.PlainText(el.Text)
	case uischema.TypeControl, uischema.TypeTable, uischema.TypeListWithDetail:
		return w.control(el, base)
	default:
		w.tree.Warnings = append(w.tree.Warnings, &UnsupportedElementError{Type: el.Type, Pointer: el.Pointer})
		d = w.newDescriptor(KindPlaceholder, nil, base, el)
	}
	d.Rule = el.Rule
	return d
}

func (w *walker) children(d *Descriptor, el *uischema.Element, base fieldpath.Path) {
	for _, child := range el.Elements {
		if child == nil {
			continue
		}
		d.adopt(w.element(child, base))
	}
}

func (w *walker) control(el *uischema.Element, base fieldpath.Path) *Descriptor {
	p := base.Concat(el.Path)
	node := schema.ResolveDeclared(w.tree.schema, p, w.choose)
	d := w.fromSchema(node, p, p.LastName(), w.required(p), el)
	return w.pick(d, el)
}

// pick swaps the descriptor kind to custom when a registered renderer
// claims it. The built-in children stay in place for fallback painting.
func (w *walker) pick(d *Descriptor, el *uischema.Element) *Descriptor {
	if w.b.opts.Select == nil {
		return d
	}
	sel, ok := w.b.opts.Select(render.Context{
		Element:  el,
		Schema:   d.Schema,
		Path:     d.Path.Clone(),
		Label:    d.Label,
		Required: d.Required,
	})
	if !ok {
		return d
	}
	d.Builtin = d.Kind
	d.Kind = KindCustom
	d.Renderer = sel
	return d
}

// required reports whether the last name of p is listed in its parent's
// required set.
func (w *walker) required(p fieldpath.Path) bool {
	last, ok := p.Last()
	if !ok || last.IsIndex {
		return false
	}
	parent := schema.ResolveWith(w.tree.schema, p.Parent(), w.choose)
	return parent.IsRequired(last.Name)
}

func (w *walker) choose(at fieldpath.Path, node *schema.Node) int {
	if w.prev != nil {
		return w.prev.Choose(at, node)
	}
	return 0
}

func (w *walker) length(p fieldpath.Path) int {
	if w.data == nil {
		return 0
	}
	v, ok := w.data.Get(p)
	if !ok {
		return 0
	}
	list, _ := v.([]any)
	return len(list)
}

func clampSelection(selected, n int) int {
	switch {
	case n == 0 || selected < 0:
		return 0
	case selected >= n:
		return n - 1
	}
	return selected
}
