package interfaces

import (
	"context"
	"io"
)

// Storage stores uploaded files by name
type Storage interface {
	// Put writes the content of r under name and returns the number of bytes written
	Put(ctx context.Context, name, contentType string, r io.Reader) (int64, error)

	// Open returns a reader of the named file. The caller must close it.
	Open(ctx context.Context, name string) (io.ReadCloser, error)

	Delete(ctx context.Context, name string) error
}
