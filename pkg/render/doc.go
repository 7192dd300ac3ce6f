// Package render holds custom renderer definitions and decides which one, if
// any, paints a control. Selection is independent of the view type the
// rendering backend produces, which the registry carries as a type parameter.
package render
