package interfaces

import (
	"context"

	"github.com/secmon-lab/themis/pkg/domain/model"
)

type TaskRepository interface {
	Create(ctx context.Context, task *model.Task) (*model.Task, error)
	Get(ctx context.Context, id model.TaskID) (*model.Task, error)
	List(ctx context.Context) ([]*model.Task, error)

	// ListByRisk retrieves tasks whose RiskID equals riskID
	ListByRisk(ctx context.Context, riskID string) ([]*model.Task, error)

	Update(ctx context.Context, task *model.Task) (*model.Task, error)
	Delete(ctx context.Context, id model.TaskID) error
}
