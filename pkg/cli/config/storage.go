package config

import (
	"context"
	"log/slog"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/themis/pkg/domain/interfaces"
	"github.com/secmon-lab/themis/pkg/service/storage"
	"github.com/secmon-lab/themis/pkg/utils/logging"
	"github.com/secmon-lab/themis/pkg/utils/safe"
	"github.com/urfave/cli/v3"
)

// Storage holds CLI flags for the uploaded file store
type Storage struct {
	backend         string
	uploadDir       string
	bucket          string
	prefix          string
	credentialsFile string
}

func (x *Storage) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "storage-backend",
			Usage:       "File storage backend type (local or gcs)",
			Category:    "Storage",
			Value:       "local",
			Sources:     cli.EnvVars("THEMIS_STORAGE_BACKEND"),
			Destination: &x.backend,
		},
		&cli.StringFlag{
			Name:        "upload-dir",
			Usage:       "Directory for uploaded files (local backend)",
			Category:    "Storage",
			Value:       "uploads",
			Sources:     cli.EnvVars("THEMIS_UPLOAD_DIR"),
			Destination: &x.uploadDir,
		},
		&cli.StringFlag{
			Name:        "gcs-bucket",
			Usage:       "Cloud Storage bucket (required when using gcs backend)",
			Category:    "Storage",
			Sources:     cli.EnvVars("THEMIS_GCS_BUCKET"),
			Destination: &x.bucket,
		},
		&cli.StringFlag{
			Name:        "gcs-prefix",
			Usage:       "Object name prefix in the bucket",
			Category:    "Storage",
			Sources:     cli.EnvVars("THEMIS_GCS_PREFIX"),
			Destination: &x.prefix,
		},
		&cli.StringFlag{
			Name:        "gcs-credentials-file",
			Usage:       "Service account key file (Application Default Credentials when empty)",
			Category:    "Storage",
			Sources:     cli.EnvVars("THEMIS_GCS_CREDENTIALS_FILE"),
			Destination: &x.credentialsFile,
		},
	}
}

func (x Storage) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("backend", x.backend),
		slog.String("upload_dir", x.uploadDir),
		slog.String("gcs_bucket", x.bucket),
		slog.String("gcs_prefix", x.prefix),
	)
}

// Configure creates the file store. The returned closer is never nil.
func (x *Storage) Configure(ctx context.Context) (interfaces.Storage, func(), error) {
	switch x.backend {
	case "local":
		if x.uploadDir == "" {
			return nil, nil, goerr.Wrap(ErrMissingParameter, "upload-dir is required when using local backend",
				goerr.V(ParameterKey, "upload-dir"))
		}
		local, err := storage.NewLocal(x.uploadDir)
		if err != nil {
			return nil, nil, goerr.Wrap(err, "failed to initialize local storage")
		}
		logging.Default().Info("Using local file storage", "dir", x.uploadDir)
		return local, func() {}, nil

	case "gcs":
		if x.bucket == "" {
			return nil, nil, goerr.Wrap(ErrMissingParameter, "gcs-bucket is required when using gcs backend",
				goerr.V(ParameterKey, "gcs-bucket"))
		}
		var opts []storage.GCSOption
		if x.prefix != "" {
			opts = append(opts, storage.WithGCSPrefix(x.prefix))
		}
		if x.credentialsFile != "" {
			opts = append(opts, storage.WithGCSCredentialsFile(x.credentialsFile))
		}
		gcs, err := storage.NewGCS(ctx, x.bucket, opts...)
		if err != nil {
			return nil, nil, goerr.Wrap(err, "failed to initialize cloud storage")
		}
		logging.Default().Info("Using Cloud Storage", "bucket", x.bucket, "prefix", x.prefix)
		return gcs, func() { safe.Close(ctx, gcs) }, nil

	default:
		return nil, nil, goerr.Wrap(ErrInvalidBackend, "invalid storage backend", goerr.V(BackendKey, x.backend))
	}
}
