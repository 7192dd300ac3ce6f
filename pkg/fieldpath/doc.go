// Package fieldpath implements the path algebra shared by the form engine.
//
// A Path is an ordered sequence of tokens, each either a property name or an
// array index. Paths convert losslessly between three notations:
//
//   - the dotted form used by callers and rendering backends (`a.b[0].c`)
//   - the JSON-Pointer scope used by UI Schema documents
//     (`#/properties/a/properties/b/items/properties/c`)
//   - validator instance pointers (`/a/b/0/c`)
//
// Scopes describe schema shape, not instances, so an `items` segment carries
// no token when converted back into a Path. Index tokens only appear through
// dotted paths, instance pointers, or Data Store operations.
package fieldpath
