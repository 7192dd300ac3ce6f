// Package form ties the engine together into a live form instance.
//
// A Form owns its data store and control tree. Every mutation goes through
// the Form: data edits coerce values and write the store, structural array
// edits update the store first and then renumber the tree, and every change
// re-evaluates all rules before events fire.
//
// Visibility and enablement are presentation state only. Hidden and disabled
// fields keep their values in GetData and are validated. The one operation
// that discards data is SelectBranch, since the abandoned branch no longer
// describes it.
package form
