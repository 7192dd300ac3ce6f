// Package rules evaluates declarative show/hide/enable/disable conditions
// against a data snapshot.
//
// A Rule pairs a Condition with an Effect. Conditions read one value by path
// and compare it with `equals` or `schema.const`; with neither present the
// value's truthiness decides. A condition may instead carry an `expression`
// such as `hasPet && species != "cat"`, compiled once by Compile.
//
// The package holds no descriptor state. The control tree resets its
// rule-derived flags, folds every rule outcome in with Apply and keeps them
// separate from flags set through the form API.
package rules
