package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/themis/pkg/domain/model"
)

type documentRepository struct {
	docs *docTable[model.Document]
}

func (r *documentRepository) Create(ctx context.Context, doc *model.Document) (*model.Document, error) {
	created := *doc
	if created.ID == "" {
		created.ID = model.NewRecordID()
	}
	created.CreatedAt = time.Now().UTC()
	created.UpdatedAt = created.CreatedAt
	return r.docs.insert(ctx, created.ID, &created)
}

func (r *documentRepository) Get(ctx context.Context, id string) (*model.Document, error) {
	return r.docs.get(ctx, id)
}

func (r *documentRepository) List(ctx context.Context) ([]*model.Document, error) {
	return r.docs.list(ctx)
}

func (r *documentRepository) Update(ctx context.Context, doc *model.Document) (*model.Document, error) {
	existing, err := r.docs.get(ctx, doc.ID)
	if err != nil {
		return nil, err
	}
	updated := *doc
	updated.CreatedAt = existing.CreatedAt
	updated.UpdatedAt = time.Now().UTC()
	return r.docs.update(ctx, updated.ID, &updated)
}

func (r *documentRepository) Delete(ctx context.Context, id string) error {
	return r.docs.delete(ctx, id)
}

type controlRepository struct {
	db *sql.DB
}

func (r *controlRepository) table() *docTable[model.Control] {
	return newDocTable[model.Control](r.db, "controls", "control")
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func (r *controlRepository) Create(ctx context.Context, control *model.Control) (*model.Control, error) {
	created := *control
	if created.ID == "" {
		created.ID = model.NewRecordID()
	}
	created.CreatedAt = time.Now().UTC()
	created.UpdatedAt = created.CreatedAt

	data, err := json.Marshal(&created)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to marshal control", goerr.V("id", created.ID))
	}

	if _, err := r.db.ExecContext(ctx, `INSERT INTO controls (id, reference, data) VALUES (?, ?, ?)`,
		created.ID, created.Reference, string(data)); err != nil {
		if isUniqueViolation(err) {
			return nil, goerr.Wrap(ErrAlreadyExists, "control already exists", goerr.V("reference", created.Reference))
		}
		return nil, goerr.Wrap(err, "failed to insert control", goerr.V("id", created.ID))
	}
	return &created, nil
}

func (r *controlRepository) Get(ctx context.Context, id string) (*model.Control, error) {
	return r.table().get(ctx, id)
}

func (r *controlRepository) GetByReference(ctx context.Context, reference string) (*model.Control, error) {
	var data string
	err := r.db.QueryRowContext(ctx, `SELECT data FROM controls WHERE reference = ?`, reference).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, goerr.Wrap(ErrNotFound, "control not found", goerr.V("reference", reference))
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get control", goerr.V("reference", reference))
	}
	return decode[model.Control](data, "control")
}

func (r *controlRepository) List(ctx context.Context) ([]*model.Control, error) {
	return r.table().list(ctx)
}

func (r *controlRepository) Update(ctx context.Context, control *model.Control) (*model.Control, error) {
	existing, err := r.Get(ctx, control.ID)
	if err != nil {
		return nil, err
	}

	updated := *control
	updated.CreatedAt = existing.CreatedAt
	updated.UpdatedAt = time.Now().UTC()

	data, err := json.Marshal(&updated)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to marshal control", goerr.V("id", control.ID))
	}
	if _, err := r.db.ExecContext(ctx, `UPDATE controls SET reference = ?, data = ? WHERE id = ?`,
		updated.Reference, string(data), updated.ID); err != nil {
		if isUniqueViolation(err) {
			return nil, goerr.Wrap(ErrAlreadyExists, "control already exists", goerr.V("reference", updated.Reference))
		}
		return nil, goerr.Wrap(err, "failed to update control", goerr.V("id", control.ID))
	}
	return &updated, nil
}

func (r *controlRepository) Delete(ctx context.Context, id string) error {
	return r.table().delete(ctx, id)
}

type soaRepository struct {
	entries *docTable[model.SoAEntry]
}

func (r *soaRepository) Create(ctx context.Context, entry *model.SoAEntry) (*model.SoAEntry, error) {
	created := *entry
	if created.ID == "" {
		created.ID = model.NewRecordID()
	}
	created.CreatedAt = time.Now().UTC()
	created.UpdatedAt = created.CreatedAt
	return r.entries.insert(ctx, created.ID, &created)
}

func (r *soaRepository) Get(ctx context.Context, id string) (*model.SoAEntry, error) {
	return r.entries.get(ctx, id)
}

func (r *soaRepository) List(ctx context.Context) ([]*model.SoAEntry, error) {
	return r.entries.list(ctx)
}

func (r *soaRepository) Update(ctx context.Context, entry *model.SoAEntry) (*model.SoAEntry, error) {
	existing, err := r.entries.get(ctx, entry.ID)
	if err != nil {
		return nil, err
	}
	updated := *entry
	updated.CreatedAt = existing.CreatedAt
	updated.UpdatedAt = time.Now().UTC()
	return r.entries.update(ctx, updated.ID, &updated)
}

func (r *soaRepository) Delete(ctx context.Context, id string) error {
	return r.entries.delete(ctx, id)
}

type gapRepository struct {
	gaps *docTable[model.Gap]
}

func (r *gapRepository) Create(ctx context.Context, gap *model.Gap) (*model.Gap, error) {
	created := *gap
	if created.ID == "" {
		created.ID = model.NewRecordID()
	}
	created.CreatedAt = time.Now().UTC()
	created.UpdatedAt = created.CreatedAt
	return r.gaps.insert(ctx, created.ID, &created)
}

func (r *gapRepository) Get(ctx context.Context, id string) (*model.Gap, error) {
	return r.gaps.get(ctx, id)
}

func (r *gapRepository) List(ctx context.Context) ([]*model.Gap, error) {
	return r.gaps.list(ctx)
}

func (r *gapRepository) Update(ctx context.Context, gap *model.Gap) (*model.Gap, error) {
	existing, err := r.gaps.get(ctx, gap.ID)
	if err != nil {
		return nil, err
	}
	updated := *gap
	updated.CreatedAt = existing.CreatedAt
	updated.UpdatedAt = time.Now().UTC()
	return r.gaps.update(ctx, updated.ID, &updated)
}

func (r *gapRepository) Delete(ctx context.Context, id string) error {
	return r.gaps.delete(ctx, id)
}
