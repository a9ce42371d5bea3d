package interfaces

import (
	"context"

	"github.com/secmon-lab/themis/pkg/domain/model"
)

type RiskRepository interface {
	// Get retrieves a risk by its risk ID
	Get(ctx context.Context, riskID string) (*model.Risk, error)

	// List retrieves all risks
	List(ctx context.Context) ([]*model.Risk, error)

	// ListIDs retrieves the risk IDs of all risks
	ListIDs(ctx context.Context) ([]string, error)

	// Put creates the risk or replaces the risk with the same risk ID. CreatedAt of an existing risk is preserved.
	Put(ctx context.Context, risk *model.Risk) (*model.Risk, error)

	// Delete deletes a risk by its risk ID
	Delete(ctx context.Context, riskID string) error
}
