package memory

import (
	"context"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/themis/pkg/domain/model"
)

func stamp(createdAt, updatedAt *time.Time) {
	now := time.Now().UTC()
	*createdAt = now
	*updatedAt = now
}

type documentRepository struct {
	docs *table[model.Document]
}

func newDocumentRepository() *documentRepository {
	return &documentRepository{docs: newTable("document", cloneValue[model.Document])}
}

func (r *documentRepository) Create(ctx context.Context, doc *model.Document) (*model.Document, error) {
	created := cloneValue(doc)
	if created.ID == "" {
		created.ID = model.NewRecordID()
	}
	stamp(&created.CreatedAt, &created.UpdatedAt)
	return r.docs.insert(created.ID, created)
}

func (r *documentRepository) Get(ctx context.Context, id string) (*model.Document, error) {
	return r.docs.get(id)
}

func (r *documentRepository) List(ctx context.Context) ([]*model.Document, error) {
	return r.docs.list(nil), nil
}

func (r *documentRepository) Update(ctx context.Context, doc *model.Document) (*model.Document, error) {
	return r.docs.update(doc.ID, doc, func(existing, updated *model.Document) {
		updated.CreatedAt = existing.CreatedAt
		updated.UpdatedAt = time.Now().UTC()
	})
}

func (r *documentRepository) Delete(ctx context.Context, id string) error {
	return r.docs.delete(id)
}

type controlRepository struct {
	controls *table[model.Control]
}

func newControlRepository() *controlRepository {
	return &controlRepository{controls: newTable("control", cloneValue[model.Control])}
}

func (r *controlRepository) Create(ctx context.Context, control *model.Control) (*model.Control, error) {
	if _, err := r.GetByReference(ctx, control.Reference); err == nil {
		return nil, goerr.Wrap(ErrAlreadyExists, "control reference already exists", goerr.V("reference", control.Reference))
	}

	created := cloneValue(control)
	if created.ID == "" {
		created.ID = model.NewRecordID()
	}
	stamp(&created.CreatedAt, &created.UpdatedAt)
	return r.controls.insert(created.ID, created)
}

func (r *controlRepository) Get(ctx context.Context, id string) (*model.Control, error) {
	return r.controls.get(id)
}

func (r *controlRepository) GetByReference(ctx context.Context, reference string) (*model.Control, error) {
	found := r.controls.list(func(c *model.Control) bool {
		return c.Reference == reference
	})
	if len(found) == 0 {
		return nil, goerr.Wrap(ErrNotFound, "control not found", goerr.V("reference", reference))
	}
	return found[0], nil
}

func (r *controlRepository) List(ctx context.Context) ([]*model.Control, error) {
	return r.controls.list(nil), nil
}

func (r *controlRepository) Update(ctx context.Context, control *model.Control) (*model.Control, error) {
	if other, err := r.GetByReference(ctx, control.Reference); err == nil && other.ID != control.ID {
		return nil, goerr.Wrap(ErrAlreadyExists, "control reference already exists", goerr.V("reference", control.Reference))
	}

	return r.controls.update(control.ID, control, func(existing, updated *model.Control) {
		updated.CreatedAt = existing.CreatedAt
		updated.UpdatedAt = time.Now().UTC()
	})
}

func (r *controlRepository) Delete(ctx context.Context, id string) error {
	return r.controls.delete(id)
}

type soaRepository struct {
	entries *table[model.SoAEntry]
}

func newSoARepository() *soaRepository {
	return &soaRepository{entries: newTable("soa entry", cloneValue[model.SoAEntry])}
}

func (r *soaRepository) Create(ctx context.Context, entry *model.SoAEntry) (*model.SoAEntry, error) {
	created := cloneValue(entry)
	if created.ID == "" {
		created.ID = model.NewRecordID()
	}
	stamp(&created.CreatedAt, &created.UpdatedAt)
	return r.entries.insert(created.ID, created)
}

func (r *soaRepository) Get(ctx context.Context, id string) (*model.SoAEntry, error) {
	return r.entries.get(id)
}

func (r *soaRepository) List(ctx context.Context) ([]*model.SoAEntry, error) {
	return r.entries.list(nil), nil
}

func (r *soaRepository) Update(ctx context.Context, entry *model.SoAEntry) (*model.SoAEntry, error) {
	return r.entries.update(entry.ID, entry, func(existing, updated *model.SoAEntry) {
		updated.CreatedAt = existing.CreatedAt
		updated.UpdatedAt = time.Now().UTC()
	})
}

func (r *soaRepository) Delete(ctx context.Context, id string) error {
	return r.entries.delete(id)
}

type gapRepository struct {
	gaps *table[model.Gap]
}

func newGapRepository() *gapRepository {
	return &gapRepository{gaps: newTable("gap", cloneValue[model.Gap])}
}

func (r *gapRepository) Create(ctx context.Context, gap *model.Gap) (*model.Gap, error) {
	created := cloneValue(gap)
	if created.ID == "" {
		created.ID = model.NewRecordID()
	}
	stamp(&created.CreatedAt, &created.UpdatedAt)
	return r.gaps.insert(created.ID, created)
}

func (r *gapRepository) Get(ctx context.Context, id string) (*model.Gap, error) {
	return r.gaps.get(id)
}

func (r *gapRepository) List(ctx context.Context) ([]*model.Gap, error) {
	return r.gaps.list(nil), nil
}

func (r *gapRepository) Update(ctx context.Context, gap *model.Gap) (*model.Gap, error) {
	return r.gaps.update(gap.ID, gap, func(existing, updated *model.Gap) {
		updated.CreatedAt = existing.CreatedAt
		updated.UpdatedAt = time.Now().UTC()
	})
}

func (r *gapRepository) Delete(ctx context.Context, id string) error {
	return r.gaps.delete(id)
}
