package usecase

import (
	"context"
	"errors"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/themis/pkg/domain/interfaces"
	"github.com/secmon-lab/themis/pkg/domain/model"
	"github.com/secmon-lab/themis/pkg/domain/types"
)

type ControlUseCase struct {
	repo interfaces.Repository
}

func NewControlUseCase(repo interfaces.Repository) *ControlUseCase {
	return &ControlUseCase{repo: repo}
}

func (uc *ControlUseCase) ListControls(ctx context.Context) ([]*model.Control, error) {
	controls, err := uc.repo.Control().List(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list controls")
	}
	return controls, nil
}

func (uc *ControlUseCase) GetControl(ctx context.Context, id string) (*model.Control, error) {
	control, err := uc.repo.Control().Get(ctx, id)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get control", goerr.V(ControlIDKey, id))
	}
	return control, nil
}

func validateControl(control *model.Control) error {
	if control.Reference == "" {
		return goerr.Wrap(ErrValidation, "control reference is required")
	}
	if control.Title == "" {
		return goerr.Wrap(ErrValidation, "control title is required", goerr.V(ReferenceKey, control.Reference))
	}
	return nil
}

// CreateControl creates a control. References are unique; a taken reference is ErrConflict.
func (uc *ControlUseCase) CreateControl(ctx context.Context, control *model.Control) (*model.Control, error) {
	if control == nil {
		return nil, goerr.Wrap(ErrValidation, "control is required")
	}
	if err := validateControl(control); err != nil {
		return nil, err
	}

	creating := *control
	creating.ID = ""
	created, err := uc.repo.Control().Create(ctx, &creating)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create control", goerr.V(ReferenceKey, control.Reference))
	}
	return created, nil
}

func (uc *ControlUseCase) UpdateControl(ctx context.Context, control *model.Control) (*model.Control, error) {
	if control == nil || control.ID == "" {
		return nil, goerr.Wrap(ErrValidation, "control ID is required")
	}
	if err := validateControl(control); err != nil {
		return nil, err
	}

	updated, err := uc.repo.Control().Update(ctx, control)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to update control", goerr.V(ControlIDKey, control.ID))
	}
	return updated, nil
}

func (uc *ControlUseCase) DeleteControl(ctx context.Context, id string) error {
	if err := uc.repo.Control().Delete(ctx, id); err != nil {
		return goerr.Wrap(err, "failed to delete control", goerr.V(ControlIDKey, id))
	}
	return nil
}

type SoAUseCase struct {
	repo interfaces.Repository
}

func NewSoAUseCase(repo interfaces.Repository) *SoAUseCase {
	return &SoAUseCase{repo: repo}
}

func (uc *SoAUseCase) ListEntries(ctx context.Context) ([]*model.SoAEntry, error) {
	entries, err := uc.repo.SoA().List(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list SoA entries")
	}
	return entries, nil
}

func (uc *SoAUseCase) GetEntry(ctx context.Context, id string) (*model.SoAEntry, error) {
	entry, err := uc.repo.SoA().Get(ctx, id)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get SoA entry", goerr.V("soa_id", id))
	}
	return entry, nil
}

// checkControlReference accepts any reference while the control catalogue is empty.
// Otherwise reference must name a registered control.
func checkControlReference(ctx context.Context, repo interfaces.Repository, reference string) error {
	_, err := repo.Control().GetByReference(ctx, reference)
	if err == nil {
		return nil
	}
	if !errors.Is(err, ErrNotFound) {
		return goerr.Wrap(err, "failed to get control", goerr.V(ReferenceKey, reference))
	}

	controls, err := repo.Control().List(ctx)
	if err != nil {
		return goerr.Wrap(err, "failed to list controls")
	}
	if len(controls) > 0 {
		return goerr.Wrap(ErrValidation, "unknown control reference", goerr.V(ReferenceKey, reference))
	}
	return nil
}

func (uc *SoAUseCase) normalize(ctx context.Context, entry *model.SoAEntry) error {
	if entry.ControlReference == "" {
		return goerr.Wrap(ErrValidation, "control reference is required")
	}
	status, err := types.ParseImplementationStatus(string(entry.ImplementationStatus))
	if err != nil {
		return goerr.Wrap(ErrValidation, "invalid implementation status", goerr.V("status", entry.ImplementationStatus))
	}
	entry.ImplementationStatus = status
	return checkControlReference(ctx, uc.repo, entry.ControlReference)
}

func (uc *SoAUseCase) CreateEntry(ctx context.Context, entry *model.SoAEntry) (*model.SoAEntry, error) {
	if entry == nil {
		return nil, goerr.Wrap(ErrValidation, "SoA entry is required")
	}
	creating := *entry
	creating.ID = ""
	if err := uc.normalize(ctx, &creating); err != nil {
		return nil, err
	}

	created, err := uc.repo.SoA().Create(ctx, &creating)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create SoA entry", goerr.V(ReferenceKey, entry.ControlReference))
	}
	return created, nil
}

func (uc *SoAUseCase) UpdateEntry(ctx context.Context, entry *model.SoAEntry) (*model.SoAEntry, error) {
	if entry == nil || entry.ID == "" {
		return nil, goerr.Wrap(ErrValidation, "SoA entry ID is required")
	}
	updating := *entry
	if err := uc.normalize(ctx, &updating); err != nil {
		return nil, err
	}

	updated, err := uc.repo.SoA().Update(ctx, &updating)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to update SoA entry", goerr.V("soa_id", entry.ID))
	}
	return updated, nil
}

func (uc *SoAUseCase) DeleteEntry(ctx context.Context, id string) error {
	if err := uc.repo.SoA().Delete(ctx, id); err != nil {
		return goerr.Wrap(err, "failed to delete SoA entry", goerr.V("soa_id", id))
	}
	return nil
}

type GapUseCase struct {
	repo interfaces.Repository
}

func NewGapUseCase(repo interfaces.Repository) *GapUseCase {
	return &GapUseCase{repo: repo}
}

func (uc *GapUseCase) ListGaps(ctx context.Context) ([]*model.Gap, error) {
	gaps, err := uc.repo.Gap().List(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list gaps")
	}
	return gaps, nil
}

func (uc *GapUseCase) GetGap(ctx context.Context, id string) (*model.Gap, error) {
	gap, err := uc.repo.Gap().Get(ctx, id)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get gap", goerr.V("gap_id", id))
	}
	return gap, nil
}

func (uc *GapUseCase) normalize(ctx context.Context, gap *model.Gap) error {
	if gap.Description == "" {
		return goerr.Wrap(ErrValidation, "gap description is required")
	}
	status, err := types.ParseGapStatus(string(gap.Status))
	if err != nil {
		return goerr.Wrap(ErrValidation, "invalid gap status", goerr.V("status", gap.Status))
	}
	gap.Status = status

	if gap.RiskID != "" {
		if _, err := uc.repo.Risk().Get(ctx, gap.RiskID); err != nil {
			if errors.Is(err, ErrNotFound) {
				return goerr.Wrap(ErrValidation, "linked risk does not exist", goerr.V(RiskIDKey, gap.RiskID))
			}
			return goerr.Wrap(err, "failed to get risk", goerr.V(RiskIDKey, gap.RiskID))
		}
	}
	return nil
}

func (uc *GapUseCase) CreateGap(ctx context.Context, gap *model.Gap) (*model.Gap, error) {
	if gap == nil {
		return nil, goerr.Wrap(ErrValidation, "gap is required")
	}
	creating := *gap
	creating.ID = ""
	if err := uc.normalize(ctx, &creating); err != nil {
		return nil, err
	}

	created, err := uc.repo.Gap().Create(ctx, &creating)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create gap")
	}
	return created, nil
}

func (uc *GapUseCase) UpdateGap(ctx context.Context, gap *model.Gap) (*model.Gap, error) {
	if gap == nil || gap.ID == "" {
		return nil, goerr.Wrap(ErrValidation, "gap ID is required")
	}
	updating := *gap
	if err := uc.normalize(ctx, &updating); err != nil {
		return nil, err
	}

	updated, err := uc.repo.Gap().Update(ctx, &updating)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to update gap", goerr.V("gap_id", gap.ID))
	}
	return updated, nil
}

func (uc *GapUseCase) DeleteGap(ctx context.Context, id string) error {
	if err := uc.repo.Gap().Delete(ctx, id); err != nil {
		return goerr.Wrap(err, "failed to delete gap", goerr.V("gap_id", id))
	}
	return nil
}
