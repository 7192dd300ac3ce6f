package render

import (
	"errors"
	"strings"
	"sync"

	"github.com/goliatone/go-schemaform/pkg/fieldpath"
	"github.com/goliatone/go-schemaform/pkg/schema"
	"github.com/goliatone/go-schemaform/pkg/uischema"
)

// ErrRenderRequired is returned when a definition has no Render function.
var ErrRenderRequired = errors.New("render: definition requires a render function")

// Host is the slice of a form a custom renderer may talk to while painting.
type Host interface {
	Value(p fieldpath.Path) any
	SetValue(p fieldpath.Path, v any) error
	Emit(event string, detail any)
}

// Context describes the control being matched or painted. Host is nil while
// testers run.
type Context struct {
	Element  *uischema.Element
	Schema   *schema.Node
	Path     fieldpath.Path
	Label    string
	Required bool
	Host     Host
}

// Tester scores how well a definition fits a control. Scores of zero or less
// never select the definition.
type Tester func(ctx Context) int

// Definition is one custom renderer. V is the view type the rendering backend
// produces (a string of markup, a widget handle, ...).
type Definition[V any] struct {
	Name   string
	Tester Tester
	Render func(ctx Context) V
}

// Selection identifies the definition chosen for a control.
type Selection struct {
	ID    int
	Name  string
	Score int
}

type entry[V any] struct {
	id  int
	def Definition[V]
}

// Registry is an ordered list of custom renderer definitions. Registration
// order decides ties, so it is preserved through Clone and Unregister.
type Registry[V any] struct {
	mu      sync.RWMutex
	entries []entry[V]
	nextID  int
}

// NewRegistry creates an empty registry.
func NewRegistry[V any]() *Registry[V] {
	return &Registry[V]{nextID: 1}
}

// Register appends def and returns the id used to look it up or remove it.
func (r *Registry[V]) Register(def Definition[V]) (int, error) {
	if def.Render == nil {
		return 0, ErrRenderRequired
	}
	def.Name = strings.TrimSpace(def.Name)

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.nextID == 0 {
		r.nextID = 1
	}
	id := r.nextID
	r.nextID++
	r.entries = append(r.entries, entry[V]{id: id, def: def})
	return id, nil
}

// MustRegister panics on registration failure. Useful for init-time wiring.
func (r *Registry[V]) MustRegister(def Definition[V]) int {
	id, err := r.Register(def)
	if err != nil {
		panic(err)
	}
	return id
}

// Unregister removes the definition with the given id.
func (r *Registry[V]) Unregister(id int) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, e := range r.entries {
		if e.id == id {
			r.entries = append(r.entries[:i:i], r.entries[i+1:]...)
			return true
		}
	}
	return false
}

// Clear removes every definition.
func (r *Registry[V]) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = nil
}

// Clone returns an independent copy. Later registrations on either side do
// not show up in the other.
func (r *Registry[V]) Clone() *Registry[V] {
	if r == nil {
		return NewRegistry[V]()
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	return &Registry[V]{
		entries: append([]entry[V](nil), r.entries...),
		nextID:  r.nextID,
	}
}

// Len returns the number of registered definitions.
func (r *Registry[V]) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// Lookup returns the definition registered under id.
func (r *Registry[V]) Lookup(id int) (Definition[V], bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, e := range r.entries {
		if e.id == id {
			return e.def, true
		}
	}
	return Definition[V]{}, false
}

// Select picks the definition that paints the control described by ctx.
//
// A renderer named by the UI Schema element wins outright when a definition
// carries that name; the Table and ListWithDetail names are reserved for the
// built-in array presentations and never match by name. Otherwise every
// tester runs and the strictly highest positive score wins, the earliest
// registration breaking ties. ok is false when nothing qualifies and the
// built-in control kind applies.
func (r *Registry[V]) Select(ctx Context) (sel Selection, ok bool) {
	if r == nil {
		return Selection{}, false
	}
	r.mu.RLock()
	entries := append([]entry[V](nil), r.entries...)
	r.mu.RUnlock()

	if name := requestedName(ctx.Element); name != "" {
		for _, e := range entries {
			if e.def.Name == name {
				return Selection{ID: e.id, Name: e.def.Name}, true
			}
		}
	}

	best := 0
	for _, e := range entries {
		if e.def.Tester == nil {
			continue
		}
		score := e.def.Tester(ctx)
		if score > best {
			best = score
			sel = Selection{ID: e.id, Name: e.def.Name, Score: score}
			ok = true
		}
	}
	return sel, ok
}

// Render paints ctx with the definition chosen by sel.
func (r *Registry[V]) Render(sel Selection, ctx Context) (V, bool) {
	def, ok := r.Lookup(sel.ID)
	if !ok {
		var zero V
		return zero, false
	}
	return def.Render(ctx), true
}

func requestedName(el *uischema.Element) string {
	if el == nil {
		return ""
	}
	name := strings.TrimSpace(el.Renderer)
	switch name {
	case "", uischema.RendererTable, uischema.RendererListWithDetail:
		return ""
	}
	return name
}
