package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/themis/pkg/domain/model"
)

type taskRepository struct {
	db *sql.DB
}

func (r *taskRepository) table() *docTable[model.Task] {
	return newDocTable[model.Task](r.db, "tasks", "task")
}

func (r *taskRepository) Create(ctx context.Context, task *model.Task) (*model.Task, error) {
	now := time.Now().UTC()
	created := task.Clone()
	if created.ID == "" {
		created.ID = model.NewTaskID()
	}
	created.CreatedAt = now
	created.UpdatedAt = now

	data, err := json.Marshal(created)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to marshal task", goerr.V("id", created.ID))
	}

	res, err := r.db.ExecContext(ctx,
		`INSERT INTO tasks (id, risk_id, data) VALUES (?, ?, ?) ON CONFLICT(id) DO NOTHING`,
		created.ID.String(), created.RiskID, string(data))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to insert task", goerr.V("id", created.ID))
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, goerr.Wrap(ErrAlreadyExists, "task already exists", goerr.V("id", created.ID))
	}
	return created, nil
}

func (r *taskRepository) Get(ctx context.Context, id model.TaskID) (*model.Task, error) {
	return r.table().get(ctx, id.String())
}

func (r *taskRepository) List(ctx context.Context) ([]*model.Task, error) {
	return r.table().list(ctx)
}

func (r *taskRepository) ListByRisk(ctx context.Context, riskID string) ([]*model.Task, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT data FROM tasks WHERE risk_id = ? ORDER BY rowid`, riskID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list tasks", goerr.V("risk_id", riskID))
	}
	defer rows.Close()
	return scanDocs[model.Task](rows, "task")
}

func (r *taskRepository) Update(ctx context.Context, task *model.Task) (*model.Task, error) {
	existing, err := r.Get(ctx, task.ID)
	if err != nil {
		return nil, err
	}

	updated := task.Clone()
	updated.CreatedAt = existing.CreatedAt
	updated.UpdatedAt = time.Now().UTC()

	data, err := json.Marshal(updated)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to marshal task", goerr.V("id", task.ID))
	}
	if _, err := r.db.ExecContext(ctx, `UPDATE tasks SET risk_id = ?, data = ? WHERE id = ?`,
		updated.RiskID, string(data), updated.ID.String()); err != nil {
		return nil, goerr.Wrap(err, "failed to update task", goerr.V("id", task.ID))
	}
	return updated, nil
}

func (r *taskRepository) Delete(ctx context.Context, id model.TaskID) error {
	return r.table().delete(ctx, id.String())
}
