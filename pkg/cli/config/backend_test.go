package config_test

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/themis/pkg/cli/config"
	"github.com/secmon-lab/themis/pkg/utils/logging"
)

func TestRepository_Configure(t *testing.T) {
	ctx := context.Background()

	t.Run("memory", func(t *testing.T) {
		repo, err := config.NewRepositoryForTest("memory", "").Configure(ctx)
		gt.NoError(t, err).Required()
		gt.NoError(t, repo.Close())
	})

	t.Run("sqlite creates the database directory", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "data", "themis.db")
		repo, err := config.NewRepositoryForTest("sqlite", path).Configure(ctx)
		gt.NoError(t, err).Required()
		defer repo.Close()

		_, err = os.Stat(filepath.Dir(path))
		gt.NoError(t, err)
	})

	t.Run("sqlite requires a path", func(t *testing.T) {
		_, err := config.NewRepositoryForTest("sqlite", "").Configure(ctx)
		gt.Error(t, err).Is(config.ErrMissingParameter)
	})

	t.Run("firestore requires a project", func(t *testing.T) {
		_, err := config.NewRepositoryForTest("firestore", "").Configure(ctx)
		gt.Error(t, err).Is(config.ErrMissingParameter)
	})

	t.Run("unknown backend", func(t *testing.T) {
		_, err := config.NewRepositoryForTest("postgres", "").Configure(ctx)
		gt.Error(t, err).Is(config.ErrInvalidBackend)
	})
}

func TestStorage_Configure(t *testing.T) {
	ctx := context.Background()

	t.Run("local creates the upload directory", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "uploads")
		store, closer, err := config.NewStorageForTest("local", dir, "").Configure(ctx)
		gt.NoError(t, err).Required()
		defer closer()
		gt.Value(t, store).NotNil()

		info, err := os.Stat(dir)
		gt.NoError(t, err).Required()
		gt.Bool(t, info.IsDir()).True()
	})

	t.Run("gcs requires a bucket", func(t *testing.T) {
		_, _, err := config.NewStorageForTest("gcs", "", "").Configure(ctx)
		gt.Error(t, err).Is(config.ErrMissingParameter)
	})

	t.Run("unknown backend", func(t *testing.T) {
		_, _, err := config.NewStorageForTest("s3", "", "").Configure(ctx)
		gt.Error(t, err).Is(config.ErrInvalidBackend)
	})
}

func TestLogger_Configure(t *testing.T) {
	prev := logging.Default()
	t.Cleanup(func() { logging.SetDefault(prev) })

	t.Run("json to file masks secrets", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "themis.log")
		closer, err := config.NewLoggerForTest("debug", "json", path).Configure()
		gt.NoError(t, err).Required()

		type credential struct {
			Email  string
			APIKey string `masq:"secret"`
		}
		logging.Default().Info("login", slog.Any("credential", credential{Email: "a@example.com", APIKey: "hunter2hunter2"}))
		closer()

		data, err := os.ReadFile(path)
		gt.NoError(t, err).Required()
		gt.Bool(t, strings.Contains(string(data), "a@example.com")).True()
		gt.Bool(t, strings.Contains(string(data), "hunter2hunter2")).False()
	})

	t.Run("invalid level", func(t *testing.T) {
		_, err := config.NewLoggerForTest("verbose", "console", "stdout").Configure()
		gt.Error(t, err).Is(config.ErrInvalidLogSettings)
	})

	t.Run("invalid format", func(t *testing.T) {
		_, err := config.NewLoggerForTest("info", "xml", "stdout").Configure()
		gt.Error(t, err).Is(config.ErrInvalidLogSettings)
	})
}

func TestAuth_Configure(t *testing.T) {
	gt.Array(t, config.NewAuthForTest("", false).Configure()).Length(0)
	gt.Array(t, config.NewAuthForTest("secret", true).Configure()).Length(2)
	gt.Bool(t, config.NewAuthForTest("", true).IsNoAuthMode()).True()
}
