package form

import (
	"fmt"

	"github.com/goliatone/go-schemaform/pkg/control"
	"github.com/goliatone/go-schemaform/pkg/datastore"
	"github.com/goliatone/go-schemaform/pkg/events"
	"github.com/goliatone/go-schemaform/pkg/fieldpath"
)

// InsertItem inserts value into the array at path before index and returns
// the index it landed on. An index outside the array appends. A nil value
// inserts the defaults of the item schema. Growing past maxItems fails with
// datastore.ErrMaxItems and changes nothing. Focus moves to the new item.
func (f *Form[V]) InsertItem(path string, index int, value any) (int, error) {
	p, arrays, err := f.arrays(path)
	if err != nil {
		return -1, err
	}
	node := arrays[0].Schema
	if value == nil && node != nil {
		value = datastore.Defaults(node.Items)
	}
	idx, err := f.store.InsertAt(p, node, index, value)
	if err != nil {
		return -1, err
	}
	var item *control.Descriptor
	for _, array := range arrays {
		inserted, err := f.tree.InsertItem(array, idx, f.store)
		if err != nil {
			return -1, err
		}
		if item == nil {
			item = inserted
		}
	}
	f.focusItem(item, p.Item(idx))
	f.changed()
	return idx, nil
}

// AppendItem adds value at the end of the array at path.
func (f *Form[V]) AppendItem(path string, value any) (int, error) {
	return f.InsertItem(path, -1, value)
}

// RemoveItem removes the item at index. Shrinking below minItems fails with
// datastore.ErrMinItems and changes nothing. The other items keep their
// values under their renumbered paths.
func (f *Form[V]) RemoveItem(path string, index int) error {
	p, arrays, err := f.arrays(path)
	if err != nil {
		return err
	}
	if err := f.store.RemoveAt(p, arrays[0].Schema, index); err != nil {
		return err
	}
	for _, array := range arrays {
		if err := f.tree.RemoveItem(array, index); err != nil {
			return err
		}
	}
	if n := len(arrays[0].Children); n > 0 {
		if index >= n {
			index = n - 1
		}
		f.focusItem(arrays[0].Children[index], p.Item(index))
	} else {
		f.focus = p
	}
	f.changed()
	return nil
}

// MoveItem moves the item at from to position to, shifting the items in
// between. Values travel with their items.
func (f *Form[V]) MoveItem(path string, from, to int) error {
	p, arrays, err := f.arrays(path)
	if err != nil {
		return err
	}
	if err := f.store.Move(p, from, to); err != nil {
		return err
	}
	for _, array := range arrays {
		if err := f.tree.MoveItem(array, from, to); err != nil {
			return err
		}
	}
	f.focusItem(arrays[0].Children[to], p.Item(to))
	f.changed()
	return nil
}

// SelectBranch switches the composition switch at path to branch idx. The
// data at path is discarded and replaced by the defaults of the new branch;
// switching back does not restore it.
func (f *Form[V]) SelectBranch(path string, idx int) error {
	p, err := f.path(path)
	if err != nil {
		return err
	}
	var switches []*control.Descriptor
	for _, d := range f.tree.FindAll(p) {
		if d.Base() == control.KindComposition {
			switches = append(switches, d)
		}
	}
	if len(switches) == 0 {
		return fmt.Errorf("%w: %s", ErrNotComposition, p)
	}
	current := switches[0]
	if idx < 0 || idx >= len(current.Branches) {
		return fmt.Errorf("form: branch %d at %s: %w", idx, p, control.ErrIndexOutOfRange)
	}
	if idx == current.Selected {
		return nil
	}

	f.store.Delete(p)
	if seed := datastore.Defaults(current.Branches[idx].Schema); seed != nil {
		if err := f.store.Set(p, seed); err != nil {
			return err
		}
	}
	for _, d := range switches {
		if err := f.tree.SelectBranch(d, idx, f.store); err != nil {
			return err
		}
	}
	f.logger.Debug("form: branch selected", "path", p.String(), "branch", idx)
	f.bus.Emit(events.FieldChange, events.FieldChangeDetail{Path: p.Clone(), Value: f.store.Value(p)})
	f.changed()
	return nil
}

// SelectDetail shows item idx in the list-detail presentation at path.
func (f *Form[V]) SelectDetail(path string, idx int) error {
	p, err := f.path(path)
	if err != nil {
		return err
	}
	found := false
	for _, d := range f.tree.FindAll(p) {
		if d.Base() != control.KindListDetail {
			continue
		}
		if err := f.tree.Select(d, idx); err != nil {
			return err
		}
		found = true
	}
	if !found {
		return fmt.Errorf("%w: %s", ErrUnknownPath, p)
	}
	return nil
}

// SelectCategory activates category idx of the category tabs with the given
// descriptor key.
func (f *Form[V]) SelectCategory(key string, idx int) error {
	d := f.Control(key)
	if d == nil || d.Base() != control.KindCategories {
		return fmt.Errorf("%w: %s", ErrUnknownControl, key)
	}
	return f.tree.Select(d, idx)
}

func (f *Form[V]) arrays(path string) (fieldpath.Path, []*control.Descriptor, error) {
	p, err := f.path(path)
	if err != nil {
		return nil, nil, err
	}
	bound := f.tree.FindAll(p)
	var arrays []*control.Descriptor
	for _, d := range bound {
		if d.IsArray() {
			arrays = append(arrays, d)
		}
	}
	switch {
	case len(arrays) > 0:
		return p, arrays, nil
	case len(bound) > 0:
		return nil, nil, fmt.Errorf("%w: %s", ErrNotArray, p)
	}
	return nil, nil, fmt.Errorf("%w: %s", ErrUnknownPath, p)
}

// focusItem moves focus to the first leaf of item, or to fallback when the
// item has none.
func (f *Form[V]) focusItem(item *control.Descriptor, fallback fieldpath.Path) {
	f.focus = fallback
	found := false
	item.Walk(func(d *control.Descriptor) bool {
		if found {
			return false
		}
		if d.Base() == control.KindLeaf && d.IsBound() {
			f.focus = d.Path.Clone()
			found = true
		}
		return !found
	})
}
