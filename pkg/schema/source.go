package schema

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// Source identifies where a schema document originated so callers can read
// files or fs.FS entries without leaking implementation details.
type Source interface {
	Kind() SourceKind
	Location() string
}

// SourceKind enumerates the loader modalities.
type SourceKind string

const (
	SourceKindFile SourceKind = "file"
	SourceKindFS   SourceKind = "fs"
)

type fileSource struct {
	path string
}

func (s fileSource) Location() string { return s.path }
func (s fileSource) Kind() SourceKind { return SourceKindFile }

// SourceFromFile returns a Source pointing to a file path.
func SourceFromFile(path string) Source {
	return fileSource{path: filepath.Clean(path)}
}

type fsSource struct {
	fsys fs.FS
	name string
}

func (s fsSource) Location() string { return s.name }
func (s fsSource) Kind() SourceKind { return SourceKindFS }

// SourceFromFS returns a Source identifying a resource inside fsys.
func SourceFromFS(fsys fs.FS, name string) Source {
	return fsSource{fsys: fsys, name: name}
}

// ReadSource returns the raw bytes behind src.
func ReadSource(src Source) ([]byte, error) {
	switch s := src.(type) {
	case fileSource:
		return os.ReadFile(s.path)
	case fsSource:
		if s.fsys == nil {
			return nil, fmt.Errorf("schema: fs source %q has no filesystem", s.name)
		}
		return fs.ReadFile(s.fsys, s.name)
	case nil:
		return nil, fmt.Errorf("schema: source is required")
	}
	return nil, fmt.Errorf("schema: unsupported source kind %q", src.Kind())
}

// Load reads and parses the schema behind src.
func Load(src Source) (*Node, error) {
	raw, err := ReadSource(src)
	if err != nil {
		return nil, err
	}
	return ParseNamed(src.Location(), raw)
}
