package storage_test

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/themis/pkg/domain/interfaces"
	"github.com/secmon-lab/themis/pkg/service/storage"
)

func TestLocal(t *testing.T) {
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "uploads")

	st, err := storage.NewLocal(dir)
	gt.NoError(t, err).Required()

	info, err := os.Stat(dir)
	gt.NoError(t, err).Required()
	gt.Bool(t, info.IsDir()).True()

	t.Run("Put then Open returns the content", func(t *testing.T) {
		n, err := st.Put(ctx, "policy.pdf", "application/pdf", strings.NewReader("hello"))
		gt.NoError(t, err).Required()
		gt.Number(t, n).Equal(5)

		rc, err := st.Open(ctx, "policy.pdf")
		gt.NoError(t, err).Required()
		defer rc.Close()

		data, err := io.ReadAll(rc)
		gt.NoError(t, err).Required()
		gt.Value(t, string(data)).Equal("hello")
	})

	t.Run("Delete removes the file", func(t *testing.T) {
		_, err := st.Put(ctx, "gone.txt", "text/plain", strings.NewReader("x"))
		gt.NoError(t, err).Required()
		gt.NoError(t, st.Delete(ctx, "gone.txt")).Required()

		_, err = st.Open(ctx, "gone.txt")
		gt.Error(t, err).Is(interfaces.ErrNotFound)

		err = st.Delete(ctx, "gone.txt")
		gt.Error(t, err).Is(interfaces.ErrNotFound)
	})

	t.Run("names escaping the directory are rejected", func(t *testing.T) {
		for _, name := range []string{"", "../secret", "/etc/passwd", `..\x`, "a/../../b"} {
			_, err := st.Put(ctx, name, "text/plain", strings.NewReader("x"))
			gt.Error(t, err).Is(storage.ErrInvalidName)
		}
	})
}
