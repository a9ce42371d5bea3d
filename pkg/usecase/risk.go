package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/themis/pkg/domain/interfaces"
	"github.com/secmon-lab/themis/pkg/domain/model"
	"github.com/secmon-lab/themis/pkg/domain/model/config"
)

type RiskUseCase struct {
	repo       interfaces.Repository
	riskConfig *config.RiskConfig
	clock      func() time.Time
}

func NewRiskUseCase(repo interfaces.Repository, cfg *config.RiskConfig, clock func() time.Time) *RiskUseCase {
	if clock == nil {
		clock = time.Now
	}
	return &RiskUseCase{
		repo:       repo,
		riskConfig: cfg,
		clock:      clock,
	}
}

// Config returns the risk register configuration. It may be nil.
func (uc *RiskUseCase) Config() *config.RiskConfig {
	return uc.riskConfig
}

func (uc *RiskUseCase) ListRisks(ctx context.Context) ([]*model.Risk, error) {
	risks, err := uc.repo.Risk().List(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list risks")
	}
	return risks, nil
}

func (uc *RiskUseCase) ListRiskIDs(ctx context.Context) ([]string, error) {
	ids, err := uc.repo.Risk().ListIDs(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list risk IDs")
	}
	return ids, nil
}

func (uc *RiskUseCase) GetRisk(ctx context.Context, riskID string) (*model.Risk, error) {
	risk, err := uc.repo.Risk().Get(ctx, riskID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get risk", goerr.V(RiskIDKey, riskID))
	}
	return risk, nil
}

// NextRiskID returns the first free risk ID of the current year
func (uc *RiskUseCase) NextRiskID(ctx context.Context) (string, error) {
	ids, err := uc.ListRiskIDs(ctx)
	if err != nil {
		return "", err
	}
	return model.NextRiskID(uc.clock().Year(), ids), nil
}

// SaveRisk creates the risk or replaces the risk with the same risk ID. A risk without
// ID gets the next free ID. Scored fields must use configured levels when levels are
// configured; empty values are accepted so that drafts can be saved.
func (uc *RiskUseCase) SaveRisk(ctx context.Context, risk *model.Risk) (*model.Risk, error) {
	if risk == nil {
		return nil, goerr.Wrap(ErrValidation, "risk is required")
	}
	saving := risk.Clone()

	if saving.RiskID == "" {
		id, err := uc.NextRiskID(ctx)
		if err != nil {
			return nil, err
		}
		saving.RiskID = id
	}
	if _, _, err := model.ParseRiskID(saving.RiskID); err != nil {
		return nil, goerr.Wrap(ErrValidation, "malformed risk ID", goerr.V(RiskIDKey, saving.RiskID))
	}

	for _, name := range model.ScoredFields {
		value, _ := saving.Field(name)
		if value != "" && !uc.riskConfig.HasLevel(value) {
			return nil, goerr.Wrap(ErrValidation, "unknown severity level",
				goerr.V(FieldKey, name),
				goerr.V("value", value))
		}
	}

	saved, err := uc.repo.Risk().Put(ctx, saving)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to save risk", goerr.V(RiskIDKey, saving.RiskID))
	}
	return saved, nil
}

// DeleteRisk deletes the risk and its tasks
func (uc *RiskUseCase) DeleteRisk(ctx context.Context, riskID string) error {
	if _, err := uc.repo.Risk().Get(ctx, riskID); err != nil {
		return goerr.Wrap(err, "failed to get risk", goerr.V(RiskIDKey, riskID))
	}

	tasks, err := uc.repo.Task().ListByRisk(ctx, riskID)
	if err != nil {
		return goerr.Wrap(err, "failed to list tasks of risk", goerr.V(RiskIDKey, riskID))
	}
	for _, task := range tasks {
		if err := uc.repo.Task().Delete(ctx, task.ID); err != nil && !errors.Is(err, ErrNotFound) {
			return goerr.Wrap(err, "failed to delete task", goerr.V(RiskIDKey, riskID), goerr.V(TaskIDKey, task.ID))
		}
	}

	if err := uc.repo.Risk().Delete(ctx, riskID); err != nil {
		return goerr.Wrap(err, "failed to delete risk", goerr.V(RiskIDKey, riskID))
	}
	return nil
}
