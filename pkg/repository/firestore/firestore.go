package firestore

import (
	"context"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/themis/pkg/domain/interfaces"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

var (
	ErrNotFound      = interfaces.ErrNotFound
	ErrAlreadyExists = interfaces.ErrAlreadyExists
)

// Collection names without prefix. The migrate command declares indexes on them.
const (
	CollectionRisks     = "risks"
	CollectionTasks     = "tasks"
	CollectionDocuments = "documents"
	CollectionControls  = "controls"
	CollectionSoA       = "soa_entries"
	CollectionGaps      = "gaps"
	CollectionUsers     = "users"
)

type Firestore struct {
	client   *firestore.Client
	prefix   string
	risk     *riskRepository
	task     *taskRepository
	document *documentRepository
	control  *controlRepository
	soa      *soaRepository
	gap      *gapRepository
	user     *userRepository
}

var _ interfaces.Repository = &Firestore{}

type Option func(*Firestore)

// WithCollectionPrefix prepends prefix and an underscore to every collection name
func WithCollectionPrefix(prefix string) Option {
	return func(f *Firestore) {
		f.prefix = prefix
	}
}

func New(ctx context.Context, projectID, databaseID string, opts ...Option) (*Firestore, error) {
	client, err := firestore.NewClientWithDatabase(ctx, projectID, databaseID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create firestore client",
			goerr.V("projectID", projectID),
			goerr.V("databaseID", databaseID))
	}

	f := &Firestore{client: client}
	for _, opt := range opts {
		opt(f)
	}

	f.risk = &riskRepository{client: client, collection: collectionName(f.prefix, CollectionRisks)}
	f.task = &taskRepository{client: client, collection: collectionName(f.prefix, CollectionTasks)}
	f.document = &documentRepository{client: client, collection: collectionName(f.prefix, CollectionDocuments)}
	f.control = &controlRepository{client: client, collection: collectionName(f.prefix, CollectionControls)}
	f.soa = &soaRepository{client: client, collection: collectionName(f.prefix, CollectionSoA)}
	f.gap = &gapRepository{client: client, collection: collectionName(f.prefix, CollectionGaps)}
	f.user = &userRepository{client: client, collection: collectionName(f.prefix, CollectionUsers)}

	return f, nil
}

func collectionName(prefix, name string) string {
	if prefix != "" {
		return prefix + "_" + name
	}
	return name
}

func (f *Firestore) Risk() interfaces.RiskRepository {
	return f.risk
}

func (f *Firestore) Task() interfaces.TaskRepository {
	return f.task
}

func (f *Firestore) Document() interfaces.DocumentRepository {
	return f.document
}

func (f *Firestore) Control() interfaces.ControlRepository {
	return f.control
}

func (f *Firestore) SoA() interfaces.SoARepository {
	return f.soa
}

func (f *Firestore) Gap() interfaces.GapRepository {
	return f.gap
}

func (f *Firestore) User() interfaces.UserRepository {
	return f.user
}

func (f *Firestore) Close() error {
	if f.client != nil {
		return f.client.Close()
	}
	return nil
}

// getDoc loads a document and converts it with decode, mapping NotFound to ErrNotFound
func getDoc[D any, M any](ctx context.Context, ref *firestore.DocumentRef, name string, decode func(*D) *M) (*M, error) {
	snap, err := ref.Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(ErrNotFound, name+" not found", goerr.V("id", ref.ID))
		}
		return nil, goerr.Wrap(err, "failed to get "+name, goerr.V("id", ref.ID))
	}

	var d D
	if err := snap.DataTo(&d); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal "+name, goerr.V("id", ref.ID))
	}
	return decode(&d), nil
}

// listDocs drains iter into models
func listDocs[D any, M any](iter *firestore.DocumentIterator, name string, decode func(*D) *M) ([]*M, error) {
	defer iter.Stop()

	result := []*M{}
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate "+name)
		}

		var d D
		if err := snap.DataTo(&d); err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal "+name, goerr.V("id", snap.Ref.ID))
		}
		result = append(result, decode(&d))
	}
	return result, nil
}

// deleteDoc deletes an existing document. Deleting a missing document is ErrNotFound.
func deleteDoc(ctx context.Context, ref *firestore.DocumentRef, name string) error {
	if _, err := ref.Delete(ctx, firestore.Exists); err != nil {
		if status.Code(err) == codes.NotFound {
			return goerr.Wrap(ErrNotFound, name+" not found", goerr.V("id", ref.ID))
		}
		return goerr.Wrap(err, "failed to delete "+name, goerr.V("id", ref.ID))
	}
	return nil
}
