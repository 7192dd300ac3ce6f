// Package openapi extracts form schemas from OpenAPI 3 documents. Component
// schemas and request bodies become standalone JSON Schema documents: local
// component references are rewritten to "$defs" and OpenAPI 3.0 keywords
// (nullable, boolean exclusive bounds) are translated to their JSON Schema
// 2020-12 form so the result can be validated as is.
//
// Only bytes are parsed; fetching documents from files or the network is
// left to callers. Property order follows sorted keys since the document
// model keeps properties in maps.
package openapi
