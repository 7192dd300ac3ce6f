package control

import (
	"github.com/goliatone/go-schemaform/internal/labels"
	"github.com/goliatone/go-schemaform/pkg/datastore"
	"github.com/goliatone/go-schemaform/pkg/fieldpath"
	"github.com/goliatone/go-schemaform/pkg/rules"
	"github.com/goliatone/go-schemaform/pkg/schema"
	"github.com/goliatone/go-schemaform/pkg/uischema"
)

// Tree is a built control tree.
type Tree struct {
	Root *Descriptor
	// Warnings collects non-fatal build problems such as
	// *UnsupportedElementError.
	Warnings []error

	builder *Builder
	schema  *schema.Node
	ui      *uischema.Element
	bound   map[string][]*Descriptor
	layouts map[string]*Descriptor
}

// Schema returns the data schema the tree was built from.
func (t *Tree) Schema() *schema.Node { return t.schema }

// UISchema returns the UI Schema the tree was built from, if any.
func (t *Tree) UISchema() *uischema.Element { return t.ui }

// Walk visits every descriptor depth-first.
func (t *Tree) Walk(fn func(*Descriptor) bool) {
	if t == nil {
		return
	}
	t.Root.Walk(fn)
}

// Find returns the outermost data-bound descriptor at p.
func (t *Tree) Find(p fieldpath.Path) *Descriptor {
	all := t.FindAll(p)
	if len(all) == 0 {
		return nil
	}
	return all[0]
}

// FindAll returns every data-bound descriptor at p in depth-first order. A
// UI Schema may bind the same scope more than once, and a composition switch
// shares its path with its active branch.
func (t *Tree) FindAll(p fieldpath.Path) []*Descriptor {
	if t == nil {
		return nil
	}
	return t.bound[p.String()]
}

// Choose reports the selected branch of the composition switch at the given
// path, or 0 when there is none. It is a schema.BranchChooser.
func (t *Tree) Choose(at fieldpath.Path, _ *schema.Node) int {
	for _, d := range t.FindAll(at) {
		if d.Base() == KindComposition {
			return d.Selected
		}
	}
	return 0
}

// Resolve returns the effective schema at p, following the selected branch
// of every composition switch on the way.
func (t *Tree) Resolve(p fieldpath.Path) *schema.Node {
	return schema.ResolveWith(t.schema, p, t.Choose)
}

// Rebuild builds a fresh tree from the same documents. Descriptors that
// still exist keep their keys, manual state and selections.
func (t *Tree) Rebuild(data Data) (*Tree, error) {
	return t.builder.build(t.schema, t.ui, data, t)
}

// InsertItem adds the descriptor of a new item at index to array. The data
// must already hold the item. Items at and after index are renumbered.
func (t *Tree) InsertItem(array *Descriptor, index int, data Data) (*Descriptor, error) {
	if array == nil || !array.IsArray() {
		return nil, ErrNotArray
	}
	n := len(array.Children)
	if index < 0 || index > n {
		index = n
	}
	mapping := datastore.IndexMapping(n, datastore.Op{Kind: datastore.OpInsert, From: index})
	renumber(array, mapping)

	item := t.walker(data).itemFor(array, index)
	item.Parent = array
	children := make([]*Descriptor, 0, n+1)
	children = append(children, array.Children[:index]...)
	children = append(children, item)
	array.Children = append(children, array.Children[index:]...)

	if array.Base() == KindListDetail && n > 0 {
		array.Selected = mapping[clampSelection(array.Selected, n)]
	}
	t.reindex()
	return item, nil
}

// RemoveItem drops the item descriptor at index and renumbers the items
// after it.
func (t *Tree) RemoveItem(array *Descriptor, index int) error {
	if array == nil || !array.IsArray() {
		return ErrNotArray
	}
	n := len(array.Children)
	if index < 0 || index >= n {
		return ErrIndexOutOfRange
	}
	mapping := datastore.IndexMapping(n, datastore.Op{Kind: datastore.OpRemove, From: index})
	renumber(array, mapping)

	removed := array.Children[index]
	removed.Parent = nil
	array.Children = append(array.Children[:index:index], array.Children[index+1:]...)

	if array.Base() == KindListDetail {
		if next := mapping[clampSelection(array.Selected, n)]; next >= 0 {
			array.Selected = next
		} else {
			array.Selected = clampSelection(index, len(array.Children))
		}
	}
	t.reindex()
	return nil
}

// MoveItem relocates the item descriptor at from to position to, shifting
// the items in between. Every moved subtree keeps its key.
func (t *Tree) MoveItem(array *Descriptor, from, to int) error {
	if array == nil || !array.IsArray() {
		return ErrNotArray
	}
	n := len(array.Children)
	if from < 0 || from >= n || to < 0 || to >= n {
		return ErrIndexOutOfRange
	}
	if from == to {
		return nil
	}
	mapping := datastore.IndexMapping(n, datastore.Op{Kind: datastore.OpMove, From: from, To: to})
	renumber(array, mapping)

	reordered := make([]*Descriptor, n)
	for old, child := range array.Children {
		reordered[mapping[old]] = child
	}
	array.Children = reordered

	if array.Base() == KindListDetail {
		array.Selected = mapping[clampSelection(array.Selected, n)]
	}
	t.reindex()
	return nil
}

// SelectBranch switches a composition switch to branch idx and rebuilds its
// active subtree. The caller discards the data of the abandoned branch.
func (t *Tree) SelectBranch(d *Descriptor, idx int, data Data) error {
	if d == nil || d.Base() != KindComposition {
		return ErrNotComposition
	}
	if idx < 0 || idx >= len(d.Branches) {
		return ErrIndexOutOfRange
	}
	d.Selected = idx
	for _, child := range d.Children {
		child.Parent = nil
	}
	d.Children = nil
	d.adopt(t.walker(data).fromSchema(d.Branches[idx].Schema, d.Path, "", false, nil))
	t.reindex()
	return nil
}

// Select changes the active category of category tabs or the shown item of
// a list-detail.
func (t *Tree) Select(d *Descriptor, idx int) error {
	if d == nil {
		return ErrIndexOutOfRange
	}
	switch d.Base() {
	case KindCategories, KindListDetail:
	default:
		return ErrIndexOutOfRange
	}
	if idx < 0 || idx >= len(d.Children) {
		return ErrIndexOutOfRange
	}
	d.Selected = idx
	return nil
}

// ApplyRules re-evaluates every rule against data: first the inline rules of
// UI Schema elements, then the programmatic ones in registration order.
// Outcomes are recomputed from scratch each time.
func (t *Tree) ApplyRules(data rules.Getter, programmatic []rules.Rule) {
	if t == nil || t.Root == nil {
		return
	}
	t.Walk(func(d *Descriptor) bool {
		d.ruled = rules.Flags{}
		if d.Rule != nil {
			d.Rule.Apply(data, &d.ruled)
		}
		return true
	})
	for _, rule := range programmatic {
		for _, d := range t.FindAll(rule.TargetPath()) {
			rule.Apply(data, &d.ruled)
		}
	}
}

func (t *Tree) walker(data Data) *walker {
	return &walker{b: t.builder, tree: t, data: data}
}

func (t *Tree) reindex() {
	t.bound = make(map[string][]*Descriptor)
	t.layouts = make(map[string]*Descriptor)
	t.Walk(func(d *Descriptor) bool {
		if d.IsBound() {
			key := d.Path.String()
			t.bound[key] = append(t.bound[key], d)
		} else if slot := layoutSlot(d); slot != "" {
			t.layouts[slot] = d
		}
		return true
	})
}

// counterpart finds the descriptor in t that occupies the same place as d.
func (t *Tree) counterpart(d *Descriptor) *Descriptor {
	if t == nil {
		return nil
	}
	if !d.IsBound() {
		return t.layouts[layoutSlot(d)]
	}
	for _, old := range t.bound[d.Path.String()] {
		if old.Base() == d.Base() {
			return old
		}
	}
	return nil
}

func layoutSlot(d *Descriptor) string {
	if d.Element == nil {
		return ""
	}
	return d.base.String() + "|" + d.Element.Pointer
}

// renumber rewrites the index token of every item subtree of array
// according to mapping. Removed items map to -1 and are left alone.
func renumber(array *Descriptor, mapping []int) {
	pos := len(array.Path)
	for _, item := range array.Children {
		if len(item.Path) <= pos || !item.Path[pos].IsIndex {
			continue
		}
		old := item.Path[pos].Index
		if old < 0 || old >= len(mapping) {
			continue
		}
		next := mapping[old]
		if next < 0 || next == old {
			continue
		}
		item.Walk(func(d *Descriptor) bool {
			if len(d.Path) > pos {
				d.Path = d.Path.WithIndex(pos, next)
			}
			if len(d.base) > pos {
				d.base = d.base.WithIndex(pos, next)
			}
			return true
		})
		if item.autoLabel {
			item.Label = labels.Item(next)
		}
	}
}
