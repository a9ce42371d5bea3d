package repository_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/themis/pkg/domain/interfaces"
	"github.com/secmon-lab/themis/pkg/repository/firestore"
	"github.com/secmon-lab/themis/pkg/repository/memory"
	"github.com/secmon-lab/themis/pkg/repository/sqlite"
)

type repoFactory func(t *testing.T) interfaces.Repository

// runAll runs fn against every repository backend. Firestore runs only when
// TEST_FIRESTORE_PROJECT_ID and TEST_FIRESTORE_DATABASE_ID are set.
func runAll(t *testing.T, fn func(t *testing.T, newRepo repoFactory)) {
	t.Run("memory", func(t *testing.T) {
		fn(t, func(t *testing.T) interfaces.Repository {
			return memory.New()
		})
	})

	t.Run("sqlite", func(t *testing.T) {
		fn(t, func(t *testing.T) interfaces.Repository {
			repo, err := sqlite.New(":memory:")
			gt.NoError(t, err).Required()
			t.Cleanup(func() { _ = repo.Close() })
			return repo
		})
	})

	t.Run("firestore", func(t *testing.T) {
		projectID := os.Getenv("TEST_FIRESTORE_PROJECT_ID")
		databaseID := os.Getenv("TEST_FIRESTORE_DATABASE_ID")
		if projectID == "" || databaseID == "" {
			t.Skip("TEST_FIRESTORE_PROJECT_ID or TEST_FIRESTORE_DATABASE_ID not set")
		}

		fn(t, func(t *testing.T) interfaces.Repository {
			prefix := "test_" + uuid.NewString()[:8]
			repo, err := firestore.New(context.Background(), projectID, databaseID,
				firestore.WithCollectionPrefix(prefix))
			gt.NoError(t, err).Required()
			t.Cleanup(func() { _ = repo.Close() })
			return repo
		})
	})
}

// sameTime compares timestamps at the precision every backend keeps
func sameTime(a, b time.Time) bool {
	return a.Sub(b).Abs() < time.Millisecond
}
