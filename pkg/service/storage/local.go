package storage

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/themis/pkg/domain/interfaces"
	"github.com/secmon-lab/themis/pkg/utils/safe"
)

// Local stores files in a directory
type Local struct {
	dir string
}

var _ interfaces.Storage = &Local{}

// NewLocal creates dir when missing
func NewLocal(dir string) (*Local, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, goerr.Wrap(err, "failed to create upload directory", goerr.V("dir", dir))
	}
	return &Local{dir: dir}, nil
}

func (l *Local) path(name string) (string, error) {
	cleaned, err := cleanName(name)
	if err != nil {
		return "", err
	}
	return filepath.Join(l.dir, filepath.FromSlash(cleaned)), nil
}

func (l *Local) Put(ctx context.Context, name, contentType string, r io.Reader) (int64, error) {
	p, err := l.path(name)
	if err != nil {
		return 0, err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return 0, goerr.Wrap(err, "failed to create directory", goerr.V("name", name))
	}

	f, err := os.Create(p)
	if err != nil {
		return 0, goerr.Wrap(err, "failed to create file", goerr.V("name", name))
	}

	n, err := io.Copy(f, r)
	if err != nil {
		safe.Close(ctx, f)
		safe.Remove(ctx, p)
		return 0, goerr.Wrap(err, "failed to write file", goerr.V("name", name))
	}
	if err := f.Close(); err != nil {
		safe.Remove(ctx, p)
		return 0, goerr.Wrap(err, "failed to close file", goerr.V("name", name))
	}
	return n, nil
}

func (l *Local) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	p, err := l.path(name)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(p)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, goerr.Wrap(ErrNotFound, "file not found", goerr.V("name", name))
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to open file", goerr.V("name", name))
	}
	return f, nil
}

func (l *Local) Delete(ctx context.Context, name string) error {
	p, err := l.path(name)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return goerr.Wrap(ErrNotFound, "file not found", goerr.V("name", name))
		}
		return goerr.Wrap(err, "failed to delete file", goerr.V("name", name))
	}
	return nil
}
