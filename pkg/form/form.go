package form

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/goliatone/go-schemaform/pkg/control"
	"github.com/goliatone/go-schemaform/pkg/datastore"
	"github.com/goliatone/go-schemaform/pkg/events"
	"github.com/goliatone/go-schemaform/pkg/fieldpath"
	"github.com/goliatone/go-schemaform/pkg/render"
	"github.com/goliatone/go-schemaform/pkg/rules"
	"github.com/goliatone/go-schemaform/pkg/schema"
	"github.com/goliatone/go-schemaform/pkg/uischema"
	"github.com/goliatone/go-schemaform/pkg/validation"
)

// Form is one live form instance: a data store, the control tree built for
// it, rules, custom renderers and a validator. V is the view type custom
// renderers produce for the rendering backend in use.
//
// A Form is not safe for concurrent use. Only background validator
// compilation runs on another goroutine.
type Form[V any] struct {
	cfg       config
	logger    *slog.Logger
	global    *render.Registry[V]
	renderers *render.Registry[V]
	builder   *control.Builder
	bus       *events.Bus
	catalog   *validation.Catalog

	root   *schema.Node
	ui     *uischema.Element
	store  *datastore.Store
	tree   *control.Tree
	rules  []rules.Rule
	focus  fieldpath.Path
	live   bool
	locale string
	last   validation.Result

	mu         sync.Mutex
	generation uint64
	validator  validation.Validator
	compileErr error
	pending    chan struct{}
	cancel     context.CancelFunc
}

// New creates an empty form. The instance starts with a copy of the
// renderers in global; later registrations on global are not seen until
// ClearRenderers. A nil global starts with no renderers.
func New[V any](global *render.Registry[V], opts ...Option) *Form[V] {
	cfg := defaultConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	if global == nil {
		global = render.NewRegistry[V]()
	}
	f := &Form[V]{
		cfg:       cfg,
		logger:    cfg.logger,
		global:    global,
		renderers: global.Clone(),
		bus:       events.New(cfg.logger),
		catalog:   validation.NewCatalog(cfg.translator),
		store:     datastore.New(nil),
		live:      cfg.liveValidate,
	}
	f.locale = f.catalog.Locale(cfg.locale)
	f.builder = control.New(control.Options{
		Labeler: cfg.labeler,
		Widgets: cfg.widgets,
		Select:  f.selectRenderer,
	})
	return f
}

// Load replaces the schema, the optional UI Schema and the data. The data
// starts from the schema defaults. A failing load leaves the previous form
// in place.
//
// Without WithAsyncCompile the validator is compiled before Load returns
// and the new data is validated once. With it, compilation continues in the
// background; results that arrive after a newer Load are discarded.
func (f *Form[V]) Load(root *schema.Node, ui *uischema.Element) error {
	if root == nil {
		return ErrNoSchema
	}
	store := datastore.New(datastore.Defaults(root))
	tree, err := f.builder.Build(root, ui, store)
	if err != nil {
		return err
	}
	gen, err := f.startCompile(root)
	if err != nil {
		return err
	}

	f.root, f.ui, f.store, f.tree = root, ui, store, tree
	f.focus = nil
	f.last = validation.Result{}
	for _, warning := range tree.Warnings {
		f.logger.Warn("form: ui schema element replaced by placeholder", "error", warning)
	}
	f.logger.Debug("form: schema loaded", "generation", gen, "ui", ui != nil)

	f.applyRules()
	if !f.cfg.async {
		f.Validate()
	}
	f.bus.Emit(events.FormChange, events.FormChangeDetail{Data: f.GetData()})
	return nil
}

// LoadBytes parses a data schema and an optional UI Schema, JSON or YAML,
// then loads them. Parse failures return *schema.ParseError and leave the
// form unchanged.
func (f *Form[V]) LoadBytes(schemaRaw, uiRaw []byte) error {
	root, err := schema.Parse(schemaRaw)
	if err != nil {
		return err
	}
	var ui *uischema.Element
	if len(uiRaw) > 0 {
		if ui, err = uischema.Parse(uiRaw); err != nil {
			return err
		}
	}
	return f.Load(root, ui)
}

// Regenerate rebuilds the control tree from the loaded documents. Custom
// renderers registered since the last build take effect; keys, manual
// state and selections are kept.
func (f *Form[V]) Regenerate() error {
	if f.root == nil {
		return ErrNoSchema
	}
	tree, err := f.tree.Rebuild(f.store)
	if err != nil {
		return err
	}
	f.tree = tree
	f.applyRules()
	f.Validate()
	return nil
}

// Schema returns the loaded data schema.
func (f *Form[V]) Schema() *schema.Node { return f.root }

// UISchema returns the loaded UI Schema, if any.
func (f *Form[V]) UISchema() *uischema.Element { return f.ui }

// Tree returns the current control tree. It is replaced by loads, data
// replacement and structural edits.
func (f *Form[V]) Tree() *control.Tree { return f.tree }

// GetData returns a copy of the data. An empty form yields an empty object.
func (f *Form[V]) GetData() any {
	if data := f.store.Snapshot(); data != nil {
		return data
	}
	return map[string]any{}
}

// SetData replaces the data with value written over the schema defaults.
// Values are coerced to the types the schema declares.
func (f *Form[V]) SetData(value any) error {
	if f.root == nil {
		return ErrNoSchema
	}
	store := datastore.New(datastore.Defaults(f.root))
	if err := store.SetValues(fieldpath.Root, f.tree.Resolve(fieldpath.Root), value); err != nil {
		return err
	}
	tree, err := f.tree.Rebuild(store)
	if err != nil {
		return err
	}
	f.store, f.tree = store, tree
	f.changed()
	return nil
}

// GetValue returns the value at path, or nil when nothing is stored there.
func (f *Form[V]) GetValue(path string) (any, error) {
	p, err := fieldpath.Parse(path)
	if err != nil {
		return nil, err
	}
	return datastore.Clone(f.store.Value(p)), nil
}

// SetValue writes a raw value, as reported by a rendering backend, at path.
// The value is coerced to the schema type at path; an empty string removes
// the field and nil leaves it unchanged.
func (f *Form[V]) SetValue(path string, raw any) error {
	p, err := f.path(path)
	if err != nil {
		return err
	}
	return f.setValue(p, raw)
}

func (f *Form[V]) setValue(p fieldpath.Path, raw any) error {
	if f.root == nil {
		return ErrNoSchema
	}
	node := f.tree.Resolve(p)
	if structural(node) {
		scratch := datastore.New(f.store.Snapshot())
		if err := scratch.SetValues(p, node, raw); err != nil {
			return err
		}
		tree, err := f.tree.Rebuild(scratch)
		if err != nil {
			return err
		}
		f.store, f.tree = scratch, tree
	} else if err := f.store.SetValues(p, node, raw); err != nil {
		return err
	}
	f.bus.Emit(events.FieldChange, events.FieldChangeDetail{Path: p.Clone(), Value: datastore.Clone(f.store.Value(p))})
	f.changed()
	return nil
}

// structural reports whether writing a value described by node can change
// the shape of the control tree.
func structural(node *schema.Node) bool {
	node = schema.MergeAllOf(node)
	return node.IsObject() || node.IsArray() || len(node.Branches()) > 0
}

// Show clears the manual hidden state of the controls at path. Rules may
// still hide them.
func (f *Form[V]) Show(path string) error {
	return f.each(path, func(d *control.Descriptor) { d.SetHidden(false) })
}

// Hide hides the controls at path and their subtrees.
func (f *Form[V]) Hide(path string) error {
	return f.each(path, func(d *control.Descriptor) { d.SetHidden(true) })
}

// Enable clears the manual disabled state of the controls at path.
func (f *Form[V]) Enable(path string) error {
	return f.each(path, func(d *control.Descriptor) { d.SetDisabled(false) })
}

// Disable makes every control under path read-only.
func (f *Form[V]) Disable(path string) error {
	return f.each(path, func(d *control.Descriptor) { d.SetDisabled(true) })
}

// Focus records path as the focused control.
func (f *Form[V]) Focus(path string) error {
	p, err := f.path(path)
	if err != nil {
		return err
	}
	if len(f.tree.FindAll(p)) == 0 {
		return fmt.Errorf("%w: %s", ErrUnknownPath, p)
	}
	f.focus = p
	return nil
}

// Focused returns the focused path, or nil.
func (f *Form[V]) Focused() fieldpath.Path { return f.focus.Clone() }

// AddRule registers a programmatic rule and re-evaluates every rule.
func (f *Form[V]) AddRule(rule rules.Rule) {
	f.rules = append(f.rules, rule)
	f.applyRules()
}

// ClearRules drops the programmatic rules. Inline UI Schema rules stay.
func (f *Form[V]) ClearRules() {
	f.rules = nil
	f.applyRules()
}

// On subscribes h to event. See the events package for event names.
func (f *Form[V]) On(event string, h events.Handler) events.Subscription {
	return f.bus.On(event, h)
}

// Off removes a subscription.
func (f *Form[V]) Off(sub events.Subscription) bool {
	return f.bus.Off(sub)
}

// RegisterRenderer adds a renderer to this form only. It applies from the
// next build: Load, Regenerate or a structural change.
func (f *Form[V]) RegisterRenderer(def render.Definition[V]) (int, error) {
	return f.renderers.Register(def)
}

// ClearRenderers resets the form's renderers to a fresh copy of the global
// registry.
func (f *Form[V]) ClearRenderers() {
	f.renderers = f.global.Clone()
}

// Renderers returns the renderers of this form.
func (f *Form[V]) Renderers() *render.Registry[V] { return f.renderers }

// SetLiveValidate toggles validation after every change and validates once.
func (f *Form[V]) SetLiveValidate(enabled bool) {
	f.live = enabled
	if f.root != nil {
		f.Validate()
	}
}

// LiveValidate reports whether changes trigger validation.
func (f *Form[V]) LiveValidate() bool { return f.live }

// SetLocale selects the message locale. Unknown codes select English.
func (f *Form[V]) SetLocale(code string) {
	f.locale = f.catalog.Locale(code)
	if f.root != nil {
		f.Validate()
	}
}

// Locale returns the active message locale.
func (f *Form[V]) Locale() string { return f.locale }

// Control returns the descriptor with the given key.
func (f *Form[V]) Control(key string) *control.Descriptor {
	var found *control.Descriptor
	f.tree.Walk(func(d *control.Descriptor) bool {
		if found != nil {
			return false
		}
		if d.Key == key {
			found = d
			return false
		}
		return true
	})
	return found
}

// Context describes d to a custom renderer, with the form as its host.
func (f *Form[V]) Context(d *control.Descriptor) render.Context {
	return render.Context{
		Element:  d.Element,
		Schema:   d.Schema,
		Path:     d.Path.Clone(),
		Label:    d.Label,
		Required: d.Required,
		Host:     host[V]{form: f},
	}
}

// RenderCustom paints a custom descriptor with its selected renderer. ok is
// false for built-in descriptors and for renderers removed since the build;
// backends then paint the built-in children.
func (f *Form[V]) RenderCustom(d *control.Descriptor) (view V, ok bool) {
	if d == nil || d.Kind != control.KindCustom {
		return view, false
	}
	return f.renderers.Render(d.Renderer, f.Context(d))
}

func (f *Form[V]) selectRenderer(ctx render.Context) (render.Selection, bool) {
	return f.renderers.Select(ctx)
}

func (f *Form[V]) path(path string) (fieldpath.Path, error) {
	if f.root == nil {
		return nil, ErrNoSchema
	}
	return fieldpath.Parse(path)
}

func (f *Form[V]) each(path string, fn func(*control.Descriptor)) error {
	p, err := f.path(path)
	if err != nil {
		return err
	}
	controls := f.tree.FindAll(p)
	if len(controls) == 0 {
		return fmt.Errorf("%w: %s", ErrUnknownPath, p)
	}
	for _, d := range controls {
		fn(d)
	}
	return nil
}

func (f *Form[V]) applyRules() {
	f.tree.ApplyRules(f.store, f.rules)
}

// changed runs after every data change.
func (f *Form[V]) changed() {
	f.applyRules()
	f.bus.Emit(events.FormChange, events.FormChangeDetail{Data: f.GetData()})
	if f.live {
		f.Validate()
	}
}

type host[V any] struct {
	form *Form[V]
}

func (h host[V]) Value(p fieldpath.Path) any { return datastore.Clone(h.form.store.Value(p)) }

func (h host[V]) SetValue(p fieldpath.Path, v any) error { return h.form.setValue(p, v) }

func (h host[V]) Emit(event string, detail any) { h.form.bus.Emit(event, detail) }
