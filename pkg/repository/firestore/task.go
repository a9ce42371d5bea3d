package firestore

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/themis/pkg/domain/model"
	"github.com/secmon-lab/themis/pkg/domain/types"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type taskDocument struct {
	ID          string    `firestore:"id"`
	RiskID      string    `firestore:"risk_id"`
	Title       string    `firestore:"title"`
	Description string    `firestore:"description"`
	Assignee    string    `firestore:"assignee"`
	Status      string    `firestore:"status"`
	DueDate     string    `firestore:"due_date"`
	CreatedAt   time.Time `firestore:"created_at"`
	UpdatedAt   time.Time `firestore:"updated_at"`
}

func toTaskDocument(t *model.Task) *taskDocument {
	return &taskDocument{
		ID:          t.ID.String(),
		RiskID:      t.RiskID,
		Title:       t.Title,
		Description: t.Description,
		Assignee:    t.Assignee,
		Status:      t.Status.String(),
		DueDate:     t.DueDate,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

func fromTaskDocument(d *taskDocument) *model.Task {
	return &model.Task{
		ID:          model.TaskID(d.ID),
		RiskID:      d.RiskID,
		Title:       d.Title,
		Description: d.Description,
		Assignee:    d.Assignee,
		Status:      types.TaskStatus(d.Status),
		DueDate:     d.DueDate,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

type taskRepository struct {
	client     *firestore.Client
	collection string
}

func (r *taskRepository) doc(id model.TaskID) *firestore.DocumentRef {
	return r.client.Collection(r.collection).Doc(id.String())
}

func (r *taskRepository) Create(ctx context.Context, task *model.Task) (*model.Task, error) {
	created := task.Clone()
	if created.ID == "" {
		created.ID = model.NewTaskID()
	}
	now := time.Now().UTC()
	created.CreatedAt = now
	created.UpdatedAt = now

	if _, err := r.doc(created.ID).Create(ctx, toTaskDocument(created)); err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return nil, goerr.Wrap(ErrAlreadyExists, "task already exists", goerr.V("id", created.ID))
		}
		return nil, goerr.Wrap(err, "failed to create task", goerr.V("id", created.ID))
	}
	return created, nil
}

func (r *taskRepository) Get(ctx context.Context, id model.TaskID) (*model.Task, error) {
	return getDoc(ctx, r.doc(id), "task", fromTaskDocument)
}

func (r *taskRepository) List(ctx context.Context) ([]*model.Task, error) {
	iter := r.client.Collection(r.collection).OrderBy("created_at", firestore.Asc).Documents(ctx)
	return listDocs(iter, "task", fromTaskDocument)
}

// ListByRisk needs the (risk_id, created_at) composite index created by the migrate command
func (r *taskRepository) ListByRisk(ctx context.Context, riskID string) ([]*model.Task, error) {
	iter := r.client.Collection(r.collection).
		Where("risk_id", "==", riskID).
		OrderBy("created_at", firestore.Asc).
		Documents(ctx)
	return listDocs(iter, "task", fromTaskDocument)
}

func (r *taskRepository) Update(ctx context.Context, task *model.Task) (*model.Task, error) {
	ref := r.doc(task.ID)

	var updated *taskDocument
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(ref)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				return goerr.Wrap(ErrNotFound, "task not found", goerr.V("id", task.ID))
			}
			return goerr.Wrap(err, "failed to get task", goerr.V("id", task.ID))
		}

		var existing taskDocument
		if err := snap.DataTo(&existing); err != nil {
			return goerr.Wrap(err, "failed to unmarshal task", goerr.V("id", task.ID))
		}

		updated = toTaskDocument(task)
		updated.CreatedAt = existing.CreatedAt
		updated.UpdatedAt = time.Now().UTC()
		return tx.Set(ref, updated)
	})
	if err != nil {
		return nil, err
	}
	return fromTaskDocument(updated), nil
}

func (r *taskRepository) Delete(ctx context.Context, id model.TaskID) error {
	return deleteDoc(ctx, r.doc(id), "task")
}
