// Package control builds the abstract control tree of a form from a data
// schema and an optional UI Schema.
//
// Every node of the tree is a *Descriptor tagged with a Kind. Descriptors
// hold a path into the data, never the data itself. Rendering backends walk
// the tree, paint each kind, and report edits back by path.
//
// Array items are rebuilt incrementally: InsertItem, RemoveItem and MoveItem
// renumber the paths of the surviving item subtrees in place so their keys
// and transient state (selected branch, active category) survive the edit.
package control
