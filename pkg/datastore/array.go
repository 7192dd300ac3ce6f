package datastore

import (
	"github.com/goliatone/go-schemaform/pkg/fieldpath"
	"github.com/goliatone/go-schemaform/pkg/schema"
)

// Len returns the length of the array at p, or 0 when p holds no array.
func (s *Store) Len(p fieldpath.Path) int {
	list, _ := s.list(p)
	return len(list)
}

func (s *Store) list(p fieldpath.Path) ([]any, error) {
	v, ok := s.Get(p)
	if !ok || v == nil {
		return nil, nil
	}
	list, ok := v.([]any)
	if !ok {
		return nil, ErrNotArray
	}
	return list, nil
}

// InsertAt inserts v into the array at p before index and returns the index
// the item landed on. An index outside [0, len] appends. A nil v inserts the
// empty shape of the item schema. Growing past maxItems fails with
// ErrMaxItems and leaves the data unchanged.
func (s *Store) InsertAt(p fieldpath.Path, n *schema.Node, index int, v any) (int, error) {
	n = schema.MergeAllOf(n)
	list, err := s.list(p)
	if err != nil {
		return -1, err
	}
	if n != nil && n.MaxItems != nil && len(list) >= *n.MaxItems {
		return -1, ErrMaxItems
	}
	var items *schema.Node
	if n != nil {
		items = n.Items
	}
	item, err := ShapeItem(items, v)
	if err != nil {
		return -1, err
	}
	if index < 0 || index > len(list) {
		index = len(list)
	}
	next := make([]any, 0, len(list)+1)
	next = append(next, list[:index]...)
	next = append(next, item)
	next = append(next, list[index:]...)
	if err := s.Set(p, next); err != nil {
		return -1, err
	}
	return index, nil
}

// RemoveAt removes the item at index from the array at p. Shrinking below
// minItems fails with ErrMinItems and leaves the data unchanged.
func (s *Store) RemoveAt(p fieldpath.Path, n *schema.Node, index int) error {
	n = schema.MergeAllOf(n)
	list, err := s.list(p)
	if err != nil {
		return err
	}
	if index < 0 || index >= len(list) {
		return ErrIndexOutOfRange
	}
	if n != nil && n.MinItems != nil && len(list)-1 < *n.MinItems {
		return ErrMinItems
	}
	next := make([]any, 0, len(list)-1)
	next = append(next, list[:index]...)
	next = append(next, list[index+1:]...)
	return s.Set(p, next)
}

// Move relocates the item at from so that it ends up at to, shifting the
// items in between by one.
func (s *Store) Move(p fieldpath.Path, from, to int) error {
	list, err := s.list(p)
	if err != nil {
		return err
	}
	if from < 0 || from >= len(list) || to < 0 || to >= len(list) {
		return ErrIndexOutOfRange
	}
	if from == to {
		return nil
	}
	next := make([]any, len(list))
	copy(next, list)
	item := next[from]
	if from < to {
		copy(next[from:to], next[from+1:to+1])
	} else {
		copy(next[to+1:from+1], next[to:from])
	}
	next[to] = item
	return s.Set(p, next)
}

// IndexMapping returns, for an array of length before an insert, remove or
// move, the new index of every old index; removed items map to -1. Callers
// use it to renumber descendant paths.
func IndexMapping(length int, op Op) []int {
	mapping := make([]int, length)
	for i := range mapping {
		mapping[i] = i
	}
	switch op.Kind {
	case OpInsert:
		for i := op.From; i < length; i++ {
			mapping[i] = i + 1
		}
	case OpRemove:
		for i := range mapping {
			switch {
			case i == op.From:
				mapping[i] = -1
			case i > op.From:
				mapping[i] = i - 1
			}
		}
	case OpMove:
		for i := range mapping {
			switch {
			case i == op.From:
				mapping[i] = op.To
			case op.From < op.To && i > op.From && i <= op.To:
				mapping[i] = i - 1
			case op.From > op.To && i >= op.To && i < op.From:
				mapping[i] = i + 1
			}
		}
	}
	return mapping
}

// OpKind names a structural array operation.
type OpKind int

const (
	OpInsert OpKind = iota
	OpRemove
	OpMove
)

// Op describes one structural array operation. From is the inserted or
// removed index, or the source of a move; To is the move destination.
type Op struct {
	Kind OpKind
	From int
	To   int
}
