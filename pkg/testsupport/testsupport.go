// Package testsupport provides fixture documents and helpers shared by the
// package tests and the CLI.
package testsupport

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/goliatone/go-schemaform/pkg/events"
	"github.com/goliatone/go-schemaform/pkg/fieldpath"
	"github.com/goliatone/go-schemaform/pkg/form"
	"github.com/goliatone/go-schemaform/pkg/schema"
	"github.com/goliatone/go-schemaform/pkg/uischema"
)

// Fixture names.
const (
	Person   = "person"
	Team     = "team"
	Petstore = "petstore"
)

//go:embed fixtures/*.json
var fixtures embed.FS

// SchemaBytes returns the raw data schema of fixture name.
func SchemaBytes(t testing.TB, name string) []byte {
	t.Helper()
	return read(t, name+".schema.json")
}

// UISchemaBytes returns the raw UI Schema of fixture name.
func UISchemaBytes(t testing.TB, name string) []byte {
	t.Helper()
	return read(t, name+".ui.json")
}

// OpenAPIBytes returns the raw OpenAPI document of fixture name.
func OpenAPIBytes(t testing.TB, name string) []byte {
	t.Helper()
	return read(t, name+".openapi.json")
}

// Schema parses the data schema of fixture name.
func Schema(t testing.TB, name string) *schema.Node {
	t.Helper()
	node, err := schema.ParseNamed(name, SchemaBytes(t, name))
	if err != nil {
		t.Fatalf("parse schema %s: %v", name, err)
	}
	return node
}

// UISchema parses the UI Schema of fixture name.
func UISchema(t testing.TB, name string) *uischema.Element {
	t.Helper()
	el, err := uischema.ParseNamed(name, UISchemaBytes(t, name))
	if err != nil {
		t.Fatalf("parse ui schema %s: %v", name, err)
	}
	return el
}

// NewForm loads fixture name into a fresh form without global renderers.
// withUI selects whether the fixture's UI Schema is loaded too.
func NewForm(t testing.TB, name string, withUI bool, opts ...form.Option) *form.Form[string] {
	t.Helper()
	var ui *uischema.Element
	if withUI {
		ui = UISchema(t, name)
	}
	f := form.New[string](nil, opts...)
	if err := f.Load(Schema(t, name), ui); err != nil {
		t.Fatalf("load fixture %s: %v", name, err)
	}
	return f
}

// Path parses a dotted path or fails the test.
func Path(t testing.TB, input string) fieldpath.Path {
	t.Helper()
	p, err := fieldpath.Parse(input)
	if err != nil {
		t.Fatalf("parse path %q: %v", input, err)
	}
	return p
}

// WriteFixture copies fixture file into dir and returns its path. CLI tests
// use it to pass documents by file name.
func WriteFixture(t testing.TB, dir, file string) string {
	t.Helper()
	path := filepath.Join(dir, file)
	if err := os.WriteFile(path, read(t, file), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}

func read(t testing.TB, file string) []byte {
	t.Helper()
	data, err := fs.ReadFile(fixtures, "fixtures/"+file)
	if err != nil {
		t.Fatalf("read fixture %s: %v", file, err)
	}
	return data
}

// Recorder collects form events for assertions.
type Recorder struct {
	mu     sync.Mutex
	events []string
}

// Record subscribes to names on f. Field changes are recorded as
// "field:change <path>", everything else by event name.
func Record(f interface {
	On(string, events.Handler) events.Subscription
}, names ...string) *Recorder {
	r := &Recorder{}
	for _, name := range names {
		f.On(name, func(evt events.Event) {
			entry := evt.Name
			if change, ok := evt.Detail.(events.FieldChangeDetail); ok {
				entry = fmt.Sprintf("%s %s", evt.Name, change.Path)
			}
			r.mu.Lock()
			r.events = append(r.events, entry)
			r.mu.Unlock()
		})
	}
	return r
}

// Events returns the recorded entries in arrival order.
func (r *Recorder) Events() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.events...)
}
