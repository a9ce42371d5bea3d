package storage

import (
	"context"
	"errors"
	"io"
	"path"

	"cloud.google.com/go/storage"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/themis/pkg/domain/interfaces"
	"google.golang.org/api/option"
)

// GCS stores files as objects under prefix in a Cloud Storage bucket
type GCS struct {
	client *storage.Client
	bucket string
	prefix string
}

var _ interfaces.Storage = &GCS{}

type GCSOption func(*gcsConfig)

type gcsConfig struct {
	prefix      string
	credentials string
}

// WithGCSPrefix puts every object under prefix
func WithGCSPrefix(prefix string) GCSOption {
	return func(c *gcsConfig) {
		c.prefix = prefix
	}
}

// WithGCSCredentialsFile authenticates with a service account key instead of ADC
func WithGCSCredentialsFile(path string) GCSOption {
	return func(c *gcsConfig) {
		c.credentials = path
	}
}

func NewGCS(ctx context.Context, bucket string, opts ...GCSOption) (*GCS, error) {
	var cfg gcsConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	var clientOpts []option.ClientOption
	if cfg.credentials != "" {
		clientOpts = append(clientOpts, option.WithCredentialsFile(cfg.credentials))
	}

	client, err := storage.NewClient(ctx, clientOpts...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create cloud storage client", goerr.V("bucket", bucket))
	}

	return &GCS{client: client, bucket: bucket, prefix: cfg.prefix}, nil
}

func (g *GCS) object(name string) (*storage.ObjectHandle, error) {
	cleaned, err := cleanName(name)
	if err != nil {
		return nil, err
	}
	return g.client.Bucket(g.bucket).Object(path.Join(g.prefix, cleaned)), nil
}

func (g *GCS) Put(ctx context.Context, name, contentType string, r io.Reader) (int64, error) {
	obj, err := g.object(name)
	if err != nil {
		return 0, err
	}

	w := obj.NewWriter(ctx)
	w.ContentType = contentType

	n, err := io.Copy(w, r)
	if err != nil {
		_ = w.Close()
		return 0, goerr.Wrap(err, "failed to write object", goerr.V("bucket", g.bucket), goerr.V("name", name))
	}
	if err := w.Close(); err != nil {
		return 0, goerr.Wrap(err, "failed to finalize object", goerr.V("bucket", g.bucket), goerr.V("name", name))
	}
	return n, nil
}

func (g *GCS) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	obj, err := g.object(name)
	if err != nil {
		return nil, err
	}

	rd, err := obj.NewReader(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) {
		return nil, goerr.Wrap(ErrNotFound, "object not found", goerr.V("bucket", g.bucket), goerr.V("name", name))
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to open object", goerr.V("bucket", g.bucket), goerr.V("name", name))
	}
	return rd, nil
}

func (g *GCS) Delete(ctx context.Context, name string) error {
	obj, err := g.object(name)
	if err != nil {
		return err
	}
	if err := obj.Delete(ctx); err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return goerr.Wrap(ErrNotFound, "object not found", goerr.V("bucket", g.bucket), goerr.V("name", name))
		}
		return goerr.Wrap(err, "failed to delete object", goerr.V("bucket", g.bucket), goerr.V("name", name))
	}
	return nil
}

func (g *GCS) Close() error {
	return g.client.Close()
}
