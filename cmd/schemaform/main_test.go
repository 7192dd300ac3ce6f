package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-schemaform/pkg/renderers/tui"
	"github.com/goliatone/go-schemaform/pkg/testsupport"
)

type result struct {
	code   int
	stdout string
	stderr string
}

func run(t *testing.T, stdin string, driver tui.PromptDriver, args ...string) result {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := Main(context.Background(), args, environment{
		stdin:  strings.NewReader(stdin),
		stdout: &stdout,
		stderr: &stderr,
		driver: driver,
	})
	return result{code: code, stdout: stdout.String(), stderr: stderr.String()}
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

type scriptedDriver struct {
	inputs []string
	infos  []string
}

// Ask answers text prompts from inputs, declines confirmations and picks
// the first option of every choice.
func (d *scriptedDriver) Ask(_ context.Context, p tui.Prompt) (tui.Answer, error) {
	switch p.Kind {
	case tui.PromptConfirm:
		return tui.Answer{}, nil
	case tui.PromptChoice:
		return tui.Answer{Picked: []int{0}}, nil
	case tui.PromptChoices:
		return tui.Answer{}, nil
	}
	if len(d.inputs) == 0 {
		return tui.Answer{}, errors.New("no input scripted")
	}
	next := d.inputs[0]
	d.inputs = d.inputs[1:]
	return tui.Answer{Text: next}, nil
}

func (d *scriptedDriver) Info(_ context.Context, msg string) error {
	d.infos = append(d.infos, msg)
	return nil
}

func TestValidate(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	schemaPath := testsupport.WriteFixture(t, dir, "person.schema.json")
	valid := writeFile(t, dir, "valid.json", `{"name": "Ada", "age": 36}`)
	invalid := writeFile(t, dir, "invalid.yaml", "name: A\nage: -1\n")

	got := run(t, "", nil, "validate", "--schema", schemaPath, "--data", valid)
	if got.code != 0 || got.stdout != "valid\n" {
		t.Fatalf("valid data: code %d, stdout %q, stderr %q", got.code, got.stdout, got.stderr)
	}

	got = run(t, "", nil, "validate", "--schema", schemaPath, "--data", invalid)
	if got.code != 1 {
		t.Fatalf("invalid data: code %d, stderr %q", got.code, got.stderr)
	}
	lines := strings.Split(strings.TrimSpace(got.stdout), "\n")
	var fields []string
	for _, line := range lines {
		fields = append(fields, strings.SplitN(line, ":", 2)[0])
	}
	if diff := cmp.Diff([]string{"age", "name"}, fields); diff != "" {
		t.Fatalf("reported fields mismatch (-want +got):\n%s", diff)
	}
}

func TestValidate_ReadsDataFromStdin(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	schemaPath := testsupport.WriteFixture(t, dir, "person.schema.json")

	got := run(t, `{"age": 3}`, nil, "validate", "--json", "--schema", schemaPath, "--data", "-")
	if got.code != 1 {
		t.Fatalf("code %d, stderr %q", got.code, got.stderr)
	}
	if !strings.HasPrefix(got.stdout, `{"errors":{"name":[`) || !strings.Contains(got.stdout, `"valid":false`) {
		t.Fatalf("unexpected json result %q", got.stdout)
	}
}

func TestValidate_OpenAPIComponent(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	doc := testsupport.WriteFixture(t, dir, "petstore.openapi.json")
	data := writeFile(t, dir, "pet.json", `{"name": "Rex", "species": "dog"}`)

	got := run(t, "", nil, "validate", "--openapi", doc, "--component", "Pet", "--data", data)
	if got.code != 0 {
		t.Fatalf("code %d, stdout %q, stderr %q", got.code, got.stdout, got.stderr)
	}

	got = run(t, "", nil, "validate", "--openapi", doc, "--data", data)
	if got.code != 1 || !strings.Contains(got.stderr, "components: Pet") {
		t.Fatalf("missing component: code %d, stderr %q", got.code, got.stderr)
	}
}

func TestRender(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	schemaPath := testsupport.WriteFixture(t, dir, "person.schema.json")
	uiPath := testsupport.WriteFixture(t, dir, "person.ui.json")
	data := writeFile(t, dir, "data.json", `{"name": "A"}`)
	out := filepath.Join(dir, "form.html")

	got := run(t, "", nil, "render", "-s", schemaPath, "-u", uiPath, "-d", data, "-o", out, "--submit-label", "Save")
	if got.code != 0 {
		t.Fatalf("code %d, stderr %q", got.code, got.stderr)
	}
	page, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read page: %v", err)
	}
	for _, fragment := range []string{
		`<form class="schemaform"`,
		`name="name" type="text" value="A"`,
		`<p class="sf-error">`,
		`<button type="submit">Save</button>`,
	} {
		if !strings.Contains(string(page), fragment) {
			t.Fatalf("expected %q in page:\n%s", fragment, page)
		}
	}
}

func TestRender_PicksLayoutFromDirectory(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	layouts := filepath.Join(dir, "layouts")
	if err := os.Mkdir(layouts, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	schemaPath := testsupport.WriteFixture(t, dir, "person.schema.json")
	writeFile(t, layouts, "person.json", `{
  "type": "Group",
  "label": "About you",
  "elements": [{"type": "Control", "scope": "#/properties/name"}]
}`)

	got := run(t, "", nil, "render", "--schema", schemaPath, "--ui", layouts)
	if got.code != 0 {
		t.Fatalf("code %d, stderr %q", got.code, got.stderr)
	}
	if !strings.Contains(got.stdout, "About you") || strings.Contains(got.stdout, `name="age"`) {
		t.Fatalf("layout not applied:\n%s", got.stdout)
	}

	got = run(t, "", nil, "render", "--schema", schemaPath, "--ui", layouts, "--layout", "missing")
	if got.code != 1 || !strings.Contains(got.stderr, `no layout "missing"`) {
		t.Fatalf("code %d, stderr %q", got.code, got.stderr)
	}
}

func TestFill(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	schemaPath := writeFile(t, dir, "city.json", `{
  "type": "object",
  "required": ["city"],
  "properties": {"city": {"type": "string", "minLength": 2}}
}`)
	driver := &scriptedDriver{inputs: []string{"O", "Oslo"}}

	got := run(t, "", driver, "fill", "--schema", schemaPath)
	if got.code != 0 {
		t.Fatalf("code %d, stderr %q", got.code, got.stderr)
	}
	if got.stdout != "{\"city\":\"Oslo\"}\n" {
		t.Fatalf("stdout = %q", got.stdout)
	}
	if len(driver.infos) != 1 || !strings.HasPrefix(driver.infos[0], "! Invalid City: ") {
		t.Fatalf("unexpected prompts %q", driver.infos)
	}
}

func TestFill_GivesUpAfterMaxAttempts(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	schemaPath := writeFile(t, dir, "city.json", `{"type": "object", "properties": {"city": {"type": "string", "minLength": 5}}}`)
	driver := &scriptedDriver{inputs: []string{"a", "b"}}

	got := run(t, "", driver, "fill", "--schema", schemaPath, "--max-attempts", "2")
	if got.code != 1 || got.stdout != "" {
		t.Fatalf("code %d, stdout %q", got.code, got.stdout)
	}
}

func TestCheck(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	person := testsupport.WriteFixture(t, dir, "person.schema.json")
	broken := writeFile(t, dir, "broken.json", `{"type": "object", "properties": {`)
	ui := writeFile(t, dir, "ui.json", `{
  "type": "VerticalLayout",
  "elements": [
    {"type": "Control", "scope": "#/properties/name"},
    {"type": "Wizard"}
  ]
}`)

	got := run(t, "", nil, "check", "--ui", ui, person, broken)
	if got.code != 1 {
		t.Fatalf("code %d, stderr %q", got.code, got.stderr)
	}
	lines := strings.Split(strings.TrimSpace(got.stderr), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected two violations, got:\n%s", got.stderr)
	}
	if !strings.HasPrefix(lines[0], broken+": # -> schema: parse") {
		t.Fatalf("unexpected first violation %q", lines[0])
	}
	want := ui + `: #/elements/1 -> control: unsupported ui schema element "Wizard" at #/elements/1`
	if lines[1] != want {
		t.Fatalf("second violation = %q, want %q", lines[1], want)
	}

	got = run(t, "", nil, "check", person)
	if got.code != 0 || got.stderr != "" {
		t.Fatalf("clean schema: code %d, stderr %q", got.code, got.stderr)
	}
}

func TestRequiresSchema(t *testing.T) {
	t.Parallel()

	got := run(t, "", nil, "validate")
	if got.code != 1 || !strings.Contains(got.stderr, "--schema or --openapi is required") {
		t.Fatalf("code %d, stderr %q", got.code, got.stderr)
	}
}
