package schema

import (
	"path/filepath"
	"strings"
)

// Source identifies where a schema document originated so loaders can operate
// on files or fs.FS entries without leaking implementation details.
type Source interface {
	Kind() SourceKind
	Location() string
}

// SourceKind enumerates the loader modalities.
type SourceKind string

const (
	SourceKindFile   SourceKind = "file"
	SourceKindFS     SourceKind = "fs"
	SourceKindInline SourceKind = "inline"
)

// fileSource identifies on-disk schema documents.
type fileSource struct {
	path string
}

func (s fileSource) Location() string {
	return s.path
}

func (s fileSource) Kind() SourceKind {
	return SourceKindFile
}

// SourceFromFile returns a Source pointing to a file path.
func SourceFromFile(path string) Source {
	return fileSource{path: filepath.Clean(path)}
}

// fsSource references a path within an fs.FS.
type fsSource struct {
	name string
}

func (s fsSource) Location() string {
	return s.name
}

func (s fsSource) Kind() SourceKind {
	return SourceKindFS
}

// SourceFromFS returns a Source identifying a resource inside an fs.FS.
func SourceFromFS(name string) Source {
	return fsSource{name: name}
}

// inlineSource labels documents handed over as bytes by the host application.
// The name doubles as a format hint when it carries an extension.
type inlineSource struct {
	name string
}

func (s inlineSource) Location() string {
	return s.name
}

func (s inlineSource) Kind() SourceKind {
	return SourceKindInline
}

// SourceInline returns a Source for in-memory documents.
func SourceInline(name string) Source {
	name = strings.TrimSpace(name)
	if name == "" {
		name = "inline"
	}
	return inlineSource{name: name}
}
