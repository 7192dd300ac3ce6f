package control

import (
	"errors"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-schemaform/pkg/datastore"
	"github.com/goliatone/go-schemaform/pkg/rules"
	"github.com/goliatone/go-schemaform/pkg/schema"
	"github.com/goliatone/go-schemaform/pkg/uischema"
)

const peopleSchema = `{
  "type": "object",
  "properties": {
    "people": {
      "type": "array",
      "maxItems": 4,
      "items": {"type": "object", "properties": {"first": {"type": "string"}}}
    }
  }
}`

func itemKeys(array *Descriptor) []string {
	keys := make([]string, 0, len(array.Children))
	for _, child := range array.Children {
		keys = append(keys, child.Key)
	}
	return keys
}

func itemPaths(array *Descriptor) []string {
	var paths []string
	for _, item := range array.Children {
		item.Walk(func(d *Descriptor) bool {
			paths = append(paths, d.Path.String())
			return true
		})
	}
	return paths
}

func TestTree_InsertRenumbersFollowingItems(t *testing.T) {
	t.Parallel()

	root := schema.MustParse(peopleSchema)
	store := datastore.New(map[string]any{"people": []any{
		map[string]any{"first": "Ada"},
		map[string]any{"first": "Alan"},
	}})
	tree := mustBuild(t, New(Options{}), root, nil, store)
	people := tree.Find(at("people"))
	before := itemKeys(people)

	idx, err := store.InsertAt(at("people"), people.Schema, 0, map[string]any{"first": "Grace"})
	if err != nil {
		t.Fatalf("InsertAt: %v", err)
	}
	item, err := tree.InsertItem(people, idx, store)
	if err != nil {
		t.Fatalf("InsertItem: %v", err)
	}
	if item.Path.String() != "people[0]" || item.Label != "Item 1" {
		t.Fatalf("unexpected new item: %s %q", item.Path, item.Label)
	}

	if diff := cmp.Diff([]string{item.Key, before[0], before[1]}, itemKeys(people)); diff != "" {
		t.Fatalf("keys mismatch (-want +got):\n%s", diff)
	}
	want := []string{"people[0]", "people[0].first", "people[1]", "people[1].first", "people[2]", "people[2].first"}
	if diff := cmp.Diff(want, itemPaths(people)); diff != "" {
		t.Fatalf("paths mismatch (-want +got):\n%s", diff)
	}
	if people.Children[2].Label != "Item 3" {
		t.Fatalf("renumbered label = %q", people.Children[2].Label)
	}
	if got := tree.Find(at("people[2].first")); got != people.Children[2].Children[0] {
		t.Fatalf("index not refreshed after insert")
	}
}

func TestTree_RemoveAndMoveKeepSiblingSubtrees(t *testing.T) {
	t.Parallel()

	root := schema.MustParse(peopleSchema)
	store := datastore.New(map[string]any{"people": []any{
		map[string]any{"first": "A"},
		map[string]any{"first": "B"},
		map[string]any{"first": "C"},
	}})
	tree := mustBuild(t, New(Options{}), root, nil, store)
	people := tree.Find(at("people"))
	keys := itemKeys(people)
	leafB := tree.Find(at("people[1].first"))

	if err := store.Move(at("people"), 0, 1); err != nil {
		t.Fatalf("Move: %v", err)
	}
	if err := tree.MoveItem(people, 0, 1); err != nil {
		t.Fatalf("MoveItem: %v", err)
	}
	if diff := cmp.Diff([]string{keys[1], keys[0], keys[2]}, itemKeys(people)); diff != "" {
		t.Fatalf("keys after move mismatch (-want +got):\n%s", diff)
	}
	if leafB.Path.String() != "people[0].first" {
		t.Fatalf("moved leaf path = %s", leafB.Path)
	}
	if got := store.Value(leafB.Path); got != "B" {
		t.Fatalf("leaf path reads %v, want B", got)
	}

	if err := store.RemoveAt(at("people"), people.Schema, 0); err != nil {
		t.Fatalf("RemoveAt: %v", err)
	}
	if err := tree.RemoveItem(people, 0); err != nil {
		t.Fatalf("RemoveItem: %v", err)
	}
	if diff := cmp.Diff([]string{keys[0], keys[2]}, itemKeys(people)); diff != "" {
		t.Fatalf("keys after remove mismatch (-want +got):\n%s", diff)
	}
	for i, item := range people.Children {
		leaf := item.Children[0]
		if want := fmt.Sprintf("people[%d].first", i); leaf.Path.String() != want {
			t.Fatalf("item %d leaf path = %s, want %s", i, leaf.Path, want)
		}
		if got, want := store.Value(leaf.Path), []string{"A", "C"}[i]; got != want {
			t.Fatalf("item %d reads %v, want %s", i, got, want)
		}
	}
	if tree.Find(at("people[2]")) != nil {
		t.Fatalf("stale index entry after remove")
	}
}

func TestTree_ItemOpsRejectBadInput(t *testing.T) {
	t.Parallel()

	tree := mustBuild(t, New(Options{}), schema.MustParse(peopleSchema), nil, nil)
	if _, err := tree.InsertItem(tree.Root, 0, nil); !errors.Is(err, ErrNotArray) {
		t.Fatalf("expected ErrNotArray, got %v", err)
	}
	people := tree.Find(at("people"))
	if err := tree.RemoveItem(people, 0); !errors.Is(err, ErrIndexOutOfRange) {
		t.Fatalf("expected ErrIndexOutOfRange, got %v", err)
	}
	if err := tree.MoveItem(people, 0, 1); !errors.Is(err, ErrIndexOutOfRange) {
		t.Fatalf("expected ErrIndexOutOfRange, got %v", err)
	}
}

func TestTree_ListDetailSelectionFollowsItem(t *testing.T) {
	t.Parallel()

	root := schema.MustParse(peopleSchema)
	ui := uischema.MustParse(`{"type": "ListWithDetail", "scope": "#/properties/people"}`)
	store := datastore.New(map[string]any{"people": []any{
		map[string]any{"first": "A"},
		map[string]any{"first": "B"},
		map[string]any{"first": "C"},
	}})
	tree := mustBuild(t, New(Options{}), root, ui, store)
	list := tree.Root
	if err := tree.Select(list, 2); err != nil {
		t.Fatalf("Select: %v", err)
	}
	selected := list.Active().Key

	if err := tree.MoveItem(list, 2, 0); err != nil {
		t.Fatalf("MoveItem: %v", err)
	}
	if list.Selected != 0 || list.Active().Key != selected {
		t.Fatalf("selection did not follow the moved item: %d", list.Selected)
	}

	if err := tree.RemoveItem(list, 0); err != nil {
		t.Fatalf("RemoveItem: %v", err)
	}
	if list.Selected != 0 || len(list.Children) != 2 {
		t.Fatalf("selection after removing the selected item = %d", list.Selected)
	}
	if err := tree.Select(list, 9); !errors.Is(err, ErrIndexOutOfRange) {
		t.Fatalf("expected ErrIndexOutOfRange, got %v", err)
	}
}

func TestTree_ApplyRules(t *testing.T) {
	t.Parallel()

	root := schema.MustParse(`{"type":"object","properties":{"hasPet":{"type":"boolean"},"petName":{"type":"string"}}}`)
	store := datastore.New(map[string]any{"hasPet": false})
	tree := mustBuild(t, New(Options{}), root, nil, store)
	pet := tree.Find(at("petName"))

	hideWhenTrue := rules.MustParse(`{"condition":{"scope":"hasPet","equals":true},"effect":"HIDE","target":"petName"}`)
	tree.ApplyRules(store, []rules.Rule{hideWhenTrue})
	if !pet.Visible() {
		t.Fatalf("HIDE must not apply while the condition fails")
	}
	_ = store.Set(at("hasPet"), true)
	tree.ApplyRules(store, []rules.Rule{hideWhenTrue})
	if pet.Visible() {
		t.Fatalf("HIDE must apply once the condition holds")
	}

	showWhenTrue := rules.MustParse(`{"condition":{"scope":"hasPet","equals":true},"effect":"SHOW","target":"petName"}`)
	_ = store.Set(at("hasPet"), false)
	tree.ApplyRules(store, []rules.Rule{showWhenTrue})
	if pet.Visible() {
		t.Fatalf("petName must be hidden while hasPet is false")
	}
	_ = store.Set(at("hasPet"), true)
	tree.ApplyRules(store, []rules.Rule{showWhenTrue})
	if !pet.Visible() {
		t.Fatalf("petName must be shown once hasPet is true")
	}

	tree.ApplyRules(store, nil)
	if pet.RuleFlags() != (rules.Flags{}) {
		t.Fatalf("rule flags not reset: %+v", pet.RuleFlags())
	}
}

func TestTree_InlineDisablePropagates(t *testing.T) {
	t.Parallel()

	root := schema.MustParse(`{"type":"object","properties":{
  "locked": {"type": "boolean"},
  "address": {"type": "object", "properties": {"street": {"type": "string"}, "city": {"type": "string"}}}
}}`)
	ui := uischema.MustParse(`{"type": "VerticalLayout", "elements": [
  {"type": "Control", "scope": "#/properties/locked"},
  {"type": "Group", "label": "Address",
   "rule": {"effect": "DISABLE", "condition": {"scope": "#/properties/locked", "schema": {"const": true}}},
   "elements": [
     {"type": "Control", "scope": "#/properties/address/properties/street"},
     {"type": "Control", "scope": "#/properties/address/properties/city"}
   ]}
]}`)
	store := datastore.New(map[string]any{"locked": true})
	tree := mustBuild(t, New(Options{}), root, ui, store)
	tree.ApplyRules(store, nil)

	for _, raw := range []string{"address.street", "address.city"} {
		if tree.Find(at(raw)).Editable() {
			t.Fatalf("%s must be disabled by the group rule", raw)
		}
	}
	if !tree.Find(at("locked")).Editable() {
		t.Fatalf("locked must stay editable")
	}

	_ = store.Set(at("locked"), false)
	tree.ApplyRules(store, nil)
	if !tree.Find(at("address.city")).Editable() {
		t.Fatalf("city must be enabled again")
	}
}

func TestTree_ManualStateCombinesWithRules(t *testing.T) {
	t.Parallel()

	root := schema.MustParse(`{"type":"object","properties":{"a":{"type":"string"},"b":{"type":"string"}}}`)
	store := datastore.New(map[string]any{"a": "x"})
	tree := mustBuild(t, New(Options{}), root, nil, store)
	b := tree.Find(at("b"))

	b.SetHidden(true)
	tree.ApplyRules(store, nil)
	if b.Visible() {
		t.Fatalf("manual hide lost after rule evaluation")
	}
	b.SetHidden(false)
	tree.ApplyRules(store, []rules.Rule{rules.MustParse(`{"condition":{"scope":"a","equals":"x"},"target":"b"}`)})
	if b.Visible() {
		t.Fatalf("showing manually must not override a hiding rule")
	}
}

func TestTree_RebuildKeepsKeysAndSelections(t *testing.T) {
	t.Parallel()

	root := schema.MustParse(`{"type":"object","properties":{
  "pay": {"anyOf": [{"type": "string"}, {"type": "number"}]},
  "tags": {"type": "array", "items": {"type": "string"}}
}}`)
	store := datastore.New(map[string]any{"tags": []any{"x"}})
	tree := mustBuild(t, New(Options{}), root, nil, store)
	pay := tree.Find(at("pay"))
	if err := tree.SelectBranch(pay, 1, store); err != nil {
		t.Fatalf("SelectBranch: %v", err)
	}
	tree.Find(at("tags[0]")).SetDisabled(true)

	next, err := tree.Rebuild(store)
	if err != nil {
		t.Fatalf("Rebuild: %v", err)
	}
	nextPay := next.Find(at("pay"))
	if nextPay.Key != pay.Key || nextPay.Selected != 1 {
		t.Fatalf("composition state lost: key=%v selected=%d", nextPay.Key == pay.Key, nextPay.Selected)
	}
	if next.Find(at("tags[0]")).Enabled() {
		t.Fatalf("manual disabled state lost")
	}
	if got := next.Resolve(at("pay")); got.Type != "number" {
		t.Fatalf("Resolve after rebuild = %+v", got)
	}
}
