// Command schemaform fills, renders, validates and checks forms described by
// JSON Schema and JSON Forms UI Schema documents.
//
// Usage:
//
//	schemaform fill --schema person.json --ui person.ui.json --format pretty
//	schemaform render --schema person.json --data person.data.json --out form.html
//	schemaform validate --openapi api.yaml --component Pet --data pet.json
//	schemaform check person.json team.json
package main

import (
	"context"
	"os"
)

func main() {
	os.Exit(Main(context.Background(), os.Args[1:], environment{
		stdin:  os.Stdin,
		stdout: os.Stdout,
		stderr: os.Stderr,
	}))
}
