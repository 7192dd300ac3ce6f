package fieldpath

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestTokenize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		want  Path
	}{
		{input: "", want: nil},
		{input: "name", want: Path{Name("name")}},
		{input: "a.b[0].c", want: Path{Name("a"), Name("b"), Index(0), Name("c")}},
		{input: "list[12]", want: Path{Name("list"), Index(12)}},
		{input: "[3].value", want: Path{Index(3), Name("value")}},
		{input: "matrix[1][2]", want: Path{Name("matrix"), Index(1), Index(2)}},
		{input: "first_name.last-name", want: Path{Name("first_name"), Name("last-name")}},
	}

	for _, tc := range tests {
		got, err := Tokenize(tc.input)
		if err != nil {
			t.Fatalf("Tokenize(%q) returned error: %v", tc.input, err)
		}
		if diff := cmp.Diff(tc.want, got); diff != "" {
			t.Fatalf("Tokenize(%q) mismatch (-want +got):\n%s", tc.input, diff)
		}
	}
}

func TestTokenizeMalformed(t *testing.T) {
	t.Parallel()

	for _, input := range []string{"a[", "a[x]", "a[-1]", "a[]", "a b", "a/b"} {
		_, err := Tokenize(input)
		var malformed *MalformedPathError
		if !errors.As(err, &malformed) {
			t.Fatalf("Tokenize(%q): expected MalformedPathError, got %v", input, err)
		}
		if malformed.Input != input {
			t.Fatalf("expected input %q on error, got %q", input, malformed.Input)
		}
	}
}

func TestSerializeRoundTrip(t *testing.T) {
	t.Parallel()

	for _, input := range []string{"a", "a.b", "a.b[0].c", "list[3]", "x[0][1].y", "[2].z"} {
		first := MustTokenize(input)
		second := MustTokenize(first.String())
		if !first.Equal(second) {
			t.Fatalf("round trip mismatch for %q: %v vs %v", input, first, second)
		}
		if first.String() != input {
			t.Fatalf("expected canonical %q, got %q", input, first.String())
		}
	}
}

func TestPointerConversions(t *testing.T) {
	t.Parallel()

	p := MustTokenize("a.b[0].c")
	if got := p.Pointer(); got != "#/properties/a/properties/b/items/properties/c" {
		t.Fatalf("unexpected scope pointer %q", got)
	}
	if got := p.InstancePointer(); got != "/a/b/0/c" {
		t.Fatalf("unexpected instance pointer %q", got)
	}

	scoped := FromPointer("#/properties/a/properties/b/items/properties/c")
	if diff := cmp.Diff(Path{Name("a"), Name("b"), Name("c")}, scoped); diff != "" {
		t.Fatalf("FromPointer mismatch (-want +got):\n%s", diff)
	}

	escaped := FromPointer("#/properties/a~1b/properties/t~0x")
	if diff := cmp.Diff(Path{Name("a/b"), Name("t~x")}, escaped); diff != "" {
		t.Fatalf("escaped pointer mismatch (-want +got):\n%s", diff)
	}

	if got := FromPointer("#"); got != nil {
		t.Fatalf("expected root path, got %v", got)
	}
}

func TestPathWithoutIndicesRoundTripsThroughScope(t *testing.T) {
	t.Parallel()

	p := MustTokenize("profile.address.city")
	if back := FromPointer(p.Pointer()); !back.Equal(p) {
		t.Fatalf("expected %v, got %v", p, back)
	}
}

func TestFromInstancePointer(t *testing.T) {
	t.Parallel()

	got := FromInstancePointer("/list/0/name")
	want := Path{Name("list"), Index(0), Name("name")}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
	if FromInstancePointer("") != nil {
		t.Fatalf("expected root for empty pointer")
	}
}

func TestParseAcceptsBothNotations(t *testing.T) {
	t.Parallel()

	a, err := Parse("#/properties/hasPet")
	if err != nil {
		t.Fatalf("parse scope: %v", err)
	}
	b, err := Parse("hasPet")
	if err != nil {
		t.Fatalf("parse dotted: %v", err)
	}
	if !a.Equal(b) {
		t.Fatalf("expected equal paths, got %v and %v", a, b)
	}
}

func TestHelpers(t *testing.T) {
	t.Parallel()

	p := MustTokenize("list[1].name")
	if !p.HasPrefix(MustTokenize("list[1]")) {
		t.Fatalf("expected prefix match")
	}
	if p.HasPrefix(MustTokenize("list[0]")) {
		t.Fatalf("unexpected prefix match")
	}
	if got := p.WithIndex(1, 4).String(); got != "list[4].name" {
		t.Fatalf("unexpected renumbered path %q", got)
	}
	if got := p.Parent().String(); got != "list[1]" {
		t.Fatalf("unexpected parent %q", got)
	}
	if got := MustTokenize("tags[2]").LastName(); got != "tags" {
		t.Fatalf("unexpected last name %q", got)
	}

	base := MustTokenize("a")
	child := base.Child("b")
	_ = base.Child("c")
	if child.String() != "a.b" {
		t.Fatalf("append aliased the receiver: %q", child.String())
	}
}
