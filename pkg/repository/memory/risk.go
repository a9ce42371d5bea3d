package memory

import (
	"context"
	"time"

	"github.com/secmon-lab/themis/pkg/domain/model"
)

type riskRepository struct {
	risks *table[model.Risk]
}

func newRiskRepository() *riskRepository {
	return &riskRepository{
		risks: newTable("risk", (*model.Risk).Clone),
	}
}

func (r *riskRepository) Get(ctx context.Context, riskID string) (*model.Risk, error) {
	return r.risks.get(riskID)
}

func (r *riskRepository) List(ctx context.Context) ([]*model.Risk, error) {
	return r.risks.list(nil), nil
}

func (r *riskRepository) ListIDs(ctx context.Context) ([]string, error) {
	risks := r.risks.list(nil)
	ids := make([]string, len(risks))
	for i, risk := range risks {
		ids[i] = risk.RiskID
	}
	return ids, nil
}

func (r *riskRepository) Put(ctx context.Context, risk *model.Risk) (*model.Risk, error) {
	now := time.Now().UTC()
	stored := risk.Clone()
	stored.CreatedAt = now
	stored.UpdatedAt = now

	if existing, err := r.risks.get(risk.RiskID); err == nil {
		stored.CreatedAt = existing.CreatedAt
	}

	return r.risks.put(stored.RiskID, stored), nil
}

func (r *riskRepository) Delete(ctx context.Context, riskID string) error {
	return r.risks.delete(riskID)
}
