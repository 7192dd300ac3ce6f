package datastore

import (
	"github.com/goliatone/go-schemaform/pkg/fieldpath"
	"github.com/goliatone/go-schemaform/pkg/schema"
)

// Store holds one data value. It is not safe for concurrent use; a form
// serializes every mutation through its single caller.
type Store struct {
	root any
}

// New returns a store holding a normalized copy of initial.
func New(initial any) *Store {
	return &Store{root: Normalize(Clone(initial))}
}

// Snapshot returns a deep copy of the whole value.
func (s *Store) Snapshot() any {
	return Clone(s.root)
}

// Get returns the value at p. Missing intermediate containers, wrong
// container kinds and out-of-range indices all report false.
func (s *Store) Get(p fieldpath.Path) (any, bool) {
	node := s.root
	if len(p) > 0 && node == nil {
		return nil, false
	}
	for _, tok := range p {
		switch container := node.(type) {
		case map[string]any:
			if tok.IsIndex {
				return nil, false
			}
			next, ok := container[tok.Name]
			if !ok {
				return nil, false
			}
			node = next
		case []any:
			if !tok.IsIndex || tok.Index >= len(container) {
				return nil, false
			}
			node = container[tok.Index]
		default:
			return nil, false
		}
	}
	return node, true
}

// Value is Get without the presence flag.
func (s *Store) Value(p fieldpath.Path) any {
	v, _ := s.Get(p)
	return v
}

// Set assigns v at p, creating intermediate containers on the way: an array
// when the next token is an index, an object otherwise. Writing through an
// existing value of the wrong kind fails with PathTypeConflictError and
// leaves the data unchanged.
func (s *Store) Set(p fieldpath.Path, v any) error {
	v = Normalize(v)
	if len(p) == 0 {
		s.root = v
		return nil
	}
	updated, err := setIn(s.root, p, 0, v)
	if err != nil {
		return err
	}
	s.root = updated
	return nil
}

func setIn(node any, p fieldpath.Path, depth int, v any) (any, error) {
	if depth == len(p) {
		return v, nil
	}
	tok := p[depth]
	if tok.IsIndex {
		var list []any
		switch container := node.(type) {
		case nil:
		case []any:
			list = container
		default:
			return nil, conflict(p[:depth+1], "array", container)
		}
		child := any(nil)
		if tok.Index < len(list) {
			child = list[tok.Index]
		}
		updated, err := setIn(child, p, depth+1, v)
		if err != nil {
			return nil, err
		}
		for len(list) <= tok.Index {
			list = append(list, nil)
		}
		list[tok.Index] = updated
		return list, nil
	}

	var obj map[string]any
	switch container := node.(type) {
	case nil:
		obj = make(map[string]any)
	case map[string]any:
		obj = container
	default:
		return nil, conflict(p[:depth+1], "object", container)
	}
	updated, err := setIn(obj[tok.Name], p, depth+1, v)
	if err != nil {
		return nil, err
	}
	obj[tok.Name] = updated
	return obj, nil
}

func conflict(p fieldpath.Path, want string, got any) error {
	return &PathTypeConflictError{Path: p.String(), Want: want, Got: Kind(got)}
}

// Delete removes the field at p. Array elements are nulled rather than
// removed; use RemoveAt to shrink an array.
func (s *Store) Delete(p fieldpath.Path) bool {
	if len(p) == 0 {
		had := s.root != nil
		s.root = nil
		return had
	}
	parent, ok := s.Get(p.Parent())
	if !ok {
		return false
	}
	last := p[len(p)-1]
	switch container := parent.(type) {
	case map[string]any:
		if last.IsIndex {
			return false
		}
		if _, ok := container[last.Name]; !ok {
			return false
		}
		delete(container, last.Name)
		return true
	case []any:
		if !last.IsIndex || last.Index >= len(container) {
			return false
		}
		container[last.Index] = nil
		return true
	}
	return false
}

// SetValues writes v at p following the shape of n. Objects write only the
// declared properties present in v, so absent keys keep their current value.
// Arrays are replaced as a whole. A nil v writes nothing and keeps what is
// stored. Leaves are coerced; an empty string removes the leaf.
func (s *Store) SetValues(p fieldpath.Path, n *schema.Node, v any) error {
	n = schema.MergeAllOf(n)
	if n == nil {
		n = schema.Empty()
	}
	v = Normalize(v)
	if v == nil {
		return nil
	}
	switch {
	case n.IsObject() && len(n.Properties) > 0:
		values, ok := v.(map[string]any)
		if !ok {
			return nil
		}
		for _, name := range n.PropertyNames() {
			child, present := values[name]
			if !present {
				continue
			}
			if err := s.SetValues(p.Child(name), n.Properties[name], child); err != nil {
				return err
			}
		}
		return nil
	case n.IsArray():
		list, _ := v.([]any)
		items := make([]any, 0, len(list))
		for _, item := range list {
			shaped, err := ShapeItem(n.Items, item)
			if err != nil {
				return err
			}
			items = append(items, shaped)
		}
		return s.Set(p, items)
	}
	coerced, ok := Coerce(n, v)
	if !ok {
		s.Delete(p)
		return nil
	}
	return s.Set(p, coerced)
}

// ShapeItem builds the value of one array item described by items: an empty
// shape when v is nil, otherwise v written through SetValues.
func ShapeItem(items *schema.Node, v any) (any, error) {
	if v == nil {
		return EmptyValue(items), nil
	}
	scratch := &Store{}
	if err := scratch.SetValues(fieldpath.Root, items, v); err != nil {
		return nil, err
	}
	if scratch.root == nil {
		return EmptyValue(items), nil
	}
	return scratch.root, nil
}

// EmptyValue returns the empty shape of n: an object for object schemas, an
// array for array schemas and nil for everything else.
func EmptyValue(n *schema.Node) any {
	n = schema.MergeAllOf(n)
	switch {
	case n.IsObject():
		return map[string]any{}
	case n.IsArray():
		return []any{}
	}
	return nil
}

// Defaults builds the initial value described by n: declared defaults,
// defaults of nested properties, and minItems empty items for arrays without
// a default. It returns nil when n declares nothing.
func Defaults(n *schema.Node) any {
	n = schema.MergeAllOf(n)
	if n == nil {
		return nil
	}
	if n.HasDefault {
		shaped, err := ShapeItem(n, Clone(n.Default))
		if err != nil {
			return Clone(n.Default)
		}
		return shaped
	}
	switch {
	case n.IsObject():
		var out map[string]any
		for _, name := range n.PropertyNames() {
			if v := Defaults(n.Properties[name]); v != nil {
				if out == nil {
					out = make(map[string]any)
				}
				out[name] = v
			}
		}
		if out == nil {
			return nil
		}
		return out
	case n.IsArray():
		if n.MinItems == nil || *n.MinItems == 0 {
			return nil
		}
		items := make([]any, *n.MinItems)
		for i := range items {
			if v := Defaults(n.Items); v != nil {
				items[i] = v
			} else {
				items[i] = EmptyValue(n.Items)
			}
		}
		return items
	}
	return nil
}
