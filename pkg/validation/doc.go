// Package validation asks a JSON Schema validator about a data snapshot and
// maps its findings onto field paths, with messages in the form's locale.
//
// The validator itself is a collaborator behind the Compiler interface;
// JSONSchemaCompiler is the default implementation.
package validation
