// Package uischema parses JSONForms-style UI Schema documents into an Element
// tree. Elements describe layout only (grouping, sections, renderer choice and
// inline rules); they are bound to data through Control scopes, which are
// parsed into paths up front so malformed scopes fail the load.
package uischema
