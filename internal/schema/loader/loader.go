package loader

import (
	"context"
	"errors"
	"fmt"
	"io/fs"

	"github.com/goliatone/go-fieldschema/pkg/schema"
)

// Loader implements schema.Loader by delegating to the file or fs.FS
// strategy. Inline sources carry their own bytes and are rejected.
type Loader struct {
	fs fs.FS
}

var _ schema.Loader = (*Loader)(nil)

// New constructs a Loader from pre-resolved options.
func New(options schema.LoaderOptions) *Loader {
	return &Loader{fs: options.FileSystem}
}

// Load fetches a document from src and wraps it in a Document.
func (l *Loader) Load(ctx context.Context, src schema.Source) (schema.Document, error) {
	if src == nil {
		return schema.Document{}, errors.New("schema loader: source is nil")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	var (
		data []byte
		err  error
	)
	switch src.Kind() {
	case schema.SourceKindFile:
		data, err = loadFile(ctx, src.Location())
	case schema.SourceKindFS:
		data, err = loadFromFS(ctx, l.fs, src.Location())
	default:
		err = fmt.Errorf("schema loader: unsupported source kind %q", src.Kind())
	}
	if err != nil {
		return schema.Document{}, err
	}
	return schema.NewDocument(src, data)
}
