// Package schema parses JSON Schema documents into immutable Node trees and
// resolves the effective sub-schema at a data path.
//
// Parsing preserves property declaration order: JSON text is decoded with a
// streaming token reader and YAML text through yaml.Node, so object-groups
// list their children in the order the document declares them. Schemas built
// from Go maps have no declaration order and fall back to sorted keys.
//
// `allOf` is always merged before other logic inspects a node; see MergeAllOf.
// `oneOf`/`anyOf` branches are exposed as candidate lists; choosing a branch
// is transient UI state owned by the control tree.
package schema
