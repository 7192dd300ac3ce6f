package fieldpath

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Token is one component of a Path. Name and Index are mutually exclusive;
// IsIndex disambiguates index 0 from an unset name.
type Token struct {
	Name    string
	Index   int
	IsIndex bool
}

// Name returns a property-name token.
func Name(name string) Token {
	return Token{Name: name}
}

// Index returns an array-index token.
func Index(idx int) Token {
	return Token{Index: idx, IsIndex: true}
}

// String renders the token in dotted notation without separators.
func (t Token) String() string {
	if t.IsIndex {
		return "[" + strconv.Itoa(t.Index) + "]"
	}
	return t.Name
}

// Path addresses a location inside a data value. The zero value is the root.
type Path []Token

// Root is the empty path.
var Root = Path(nil)

// Tokenize parses dotted notation such as `a.b[0].c`. Empty input yields the
// root path.
func Tokenize(input string) (Path, error) {
	var out Path
	i := 0
	for i < len(input) {
		ch := input[i]
		switch {
		case ch == '.':
			i++
		case ch == '[':
			closing := strings.IndexByte(input[i:], ']')
			if closing < 0 {
				return nil, &MalformedPathError{Input: input, Offset: i, Reason: "unterminated bracket"}
			}
			raw := input[i+1 : i+closing]
			if raw == "" || !isDigits(raw) {
				return nil, &MalformedPathError{Input: input, Offset: i, Reason: "index must be a non-negative integer"}
			}
			idx, err := strconv.Atoi(raw)
			if err != nil {
				return nil, &MalformedPathError{Input: input, Offset: i, Reason: "index out of range"}
			}
			out = append(out, Index(idx))
			i += closing + 1
		default:
			start := i
			for i < len(input) && isIdentByte(input, i) {
				_, size := utf8.DecodeRuneInString(input[i:])
				i += size
			}
			if i == start {
				return nil, &MalformedPathError{Input: input, Offset: i, Reason: "unexpected character " + strconv.QuoteRune(rune(ch))}
			}
			out = append(out, Name(input[start:i]))
		}
	}
	return out, nil
}

// MustTokenize panics when the input is malformed. Useful for tests and
// static paths.
func MustTokenize(input string) Path {
	p, err := Tokenize(input)
	if err != nil {
		panic(err)
	}
	return p
}

// Parse accepts either a UI Schema scope (`#/properties/a`) or dotted
// notation. Rules and programmatic targets use it so both styles work.
func Parse(input string) (Path, error) {
	trimmed := strings.TrimSpace(input)
	if strings.HasPrefix(trimmed, "#") || strings.HasPrefix(trimmed, "/") {
		return FromPointer(trimmed), nil
	}
	return Tokenize(trimmed)
}

// String serializes the path in dotted notation.
func (p Path) String() string {
	var b strings.Builder
	for i, t := range p {
		if t.IsIndex {
			b.WriteByte('[')
			b.WriteString(strconv.Itoa(t.Index))
			b.WriteByte(']')
			continue
		}
		if i > 0 {
			b.WriteByte('.')
		}
		b.WriteString(t.Name)
	}
	return b.String()
}

// Pointer returns the JSON-Pointer scope describing the schema location of
// the path. Index tokens map onto `items`.
func (p Path) Pointer() string {
	var b strings.Builder
	b.WriteByte('#')
	for _, t := range p {
		if t.IsIndex {
			b.WriteString("/items")
			continue
		}
		b.WriteString("/properties/")
		b.WriteString(escape(t.Name))
	}
	return b.String()
}

// InstancePointer returns the RFC 6901 pointer into the data value.
func (p Path) InstancePointer() string {
	var b strings.Builder
	for _, t := range p {
		b.WriteByte('/')
		if t.IsIndex {
			b.WriteString(strconv.Itoa(t.Index))
			continue
		}
		b.WriteString(escape(t.Name))
	}
	return b.String()
}

// FromPointer converts a UI Schema scope into a Path. `properties` segments
// introduce the following segment as a name token, `items` contributes
// nothing, and any other segment is skipped.
func FromPointer(pointer string) Path {
	trimmed := strings.TrimPrefix(strings.TrimSpace(pointer), "#")
	if trimmed == "" {
		return nil
	}
	parts := strings.Split(trimmed, "/")
	var out Path
	for i := 0; i < len(parts); i++ {
		if unescape(parts[i]) != "properties" || i+1 >= len(parts) {
			continue
		}
		i++
		out = append(out, Name(unescape(parts[i])))
	}
	return out
}

// FromInstancePointer converts a validator instance location such as
// `/list/0/name` into a Path. All-digit segments become index tokens.
func FromInstancePointer(pointer string) Path {
	trimmed := strings.TrimPrefix(strings.TrimSpace(pointer), "#")
	if trimmed == "" {
		return nil
	}
	parts := strings.Split(trimmed, "/")
	var out Path
	for _, part := range parts {
		if part == "" {
			continue
		}
		segment := unescape(part)
		if isDigits(segment) {
			if idx, err := strconv.Atoi(segment); err == nil {
				out = append(out, Index(idx))
				continue
			}
		}
		out = append(out, Name(segment))
	}
	return out
}

// Equal reports whether both paths carry the same token sequence.
func (p Path) Equal(other Path) bool {
	if len(p) != len(other) {
		return false
	}
	for i := range p {
		if p[i] != other[i] {
			return false
		}
	}
	return true
}

// HasPrefix reports whether prefix addresses p or one of its ancestors.
func (p Path) HasPrefix(prefix Path) bool {
	if len(prefix) > len(p) {
		return false
	}
	return p[:len(prefix)].Equal(prefix)
}

// Clone returns an independent copy.
func (p Path) Clone() Path {
	if p == nil {
		return nil
	}
	return append(Path(nil), p...)
}

// Append returns a new path with the tokens added. The receiver is never
// aliased.
func (p Path) Append(tokens ...Token) Path {
	out := make(Path, 0, len(p)+len(tokens))
	out = append(out, p...)
	return append(out, tokens...)
}

// Child appends a name token.
func (p Path) Child(name string) Path {
	return p.Append(Name(name))
}

// Item appends an index token.
func (p Path) Item(idx int) Path {
	return p.Append(Index(idx))
}

// Concat joins two paths.
func (p Path) Concat(other Path) Path {
	return p.Append(other...)
}

// Parent drops the last token. The root is its own parent.
func (p Path) Parent() Path {
	if len(p) == 0 {
		return nil
	}
	return p[:len(p)-1].Clone()
}

// Last returns the final token.
func (p Path) Last() (Token, bool) {
	if len(p) == 0 {
		return Token{}, false
	}
	return p[len(p)-1], true
}

// LastName returns the last name token, skipping trailing indices. Labels
// for array items fall back to the array's name.
func (p Path) LastName() string {
	for i := len(p) - 1; i >= 0; i-- {
		if !p[i].IsIndex {
			return p[i].Name
		}
	}
	return ""
}

// WithIndex returns a copy whose token at position pos is replaced by an
// index token. Used to renumber array item subtrees after structural edits.
func (p Path) WithIndex(pos, idx int) Path {
	out := p.Clone()
	if pos >= 0 && pos < len(out) {
		out[pos] = Index(idx)
	}
	return out
}

func escape(value string) string {
	return strings.NewReplacer("~", "~0", "/", "~1").Replace(value)
}

func unescape(value string) string {
	value = strings.ReplaceAll(value, "~1", "/")
	return strings.ReplaceAll(value, "~0", "~")
}

func isDigits(value string) bool {
	if value == "" {
		return false
	}
	for _, r := range value {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func isIdentByte(input string, i int) bool {
	r, _ := utf8.DecodeRuneInString(input[i:])
	return r == '_' || r == '-' || r == '$' || unicode.IsLetter(r) || unicode.IsDigit(r)
}
