package firestore

import (
	"context"
	"errors"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/themis/pkg/domain/model"
	"github.com/secmon-lab/themis/pkg/domain/types"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type documentDocument struct {
	ID          string    `firestore:"id"`
	Title       string    `firestore:"title"`
	Category    string    `firestore:"category"`
	Description string    `firestore:"description"`
	Owner       string    `firestore:"owner"`
	Status      string    `firestore:"status"`
	Version     string    `firestore:"version"`
	FileName    string    `firestore:"file_name"`
	StoredName  string    `firestore:"stored_name"`
	ContentType string    `firestore:"content_type"`
	Size        int64     `firestore:"size"`
	URL         string    `firestore:"url"`
	CreatedAt   time.Time `firestore:"created_at"`
	UpdatedAt   time.Time `firestore:"updated_at"`
}

func toDocumentDocument(d *model.Document) *documentDocument {
	return &documentDocument{
		ID:          d.ID,
		Title:       d.Title,
		Category:    d.Category,
		Description: d.Description,
		Owner:       d.Owner,
		Status:      string(d.Status),
		Version:     d.Version,
		FileName:    d.FileName,
		StoredName:  d.StoredName,
		ContentType: d.ContentType,
		Size:        d.Size,
		URL:         d.URL,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

func fromDocumentDocument(d *documentDocument) *model.Document {
	return &model.Document{
		ID:          d.ID,
		Title:       d.Title,
		Category:    d.Category,
		Description: d.Description,
		Owner:       d.Owner,
		Status:      types.DocumentStatus(d.Status),
		Version:     d.Version,
		FileName:    d.FileName,
		StoredName:  d.StoredName,
		ContentType: d.ContentType,
		Size:        d.Size,
		URL:         d.URL,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

type documentRepository struct {
	client     *firestore.Client
	collection string
}

func (r *documentRepository) doc(id string) *firestore.DocumentRef {
	return r.client.Collection(r.collection).Doc(id)
}

func (r *documentRepository) Create(ctx context.Context, doc *model.Document) (*model.Document, error) {
	created := *doc
	if created.ID == "" {
		created.ID = model.NewRecordID()
	}
	created.CreatedAt = time.Now().UTC()
	created.UpdatedAt = created.CreatedAt

	if _, err := r.doc(created.ID).Create(ctx, toDocumentDocument(&created)); err != nil {
		return nil, wrapCreateErr(err, "document", created.ID)
	}
	return &created, nil
}

func (r *documentRepository) Get(ctx context.Context, id string) (*model.Document, error) {
	return getDoc(ctx, r.doc(id), "document", fromDocumentDocument)
}

func (r *documentRepository) List(ctx context.Context) ([]*model.Document, error) {
	iter := r.client.Collection(r.collection).OrderBy("created_at", firestore.Asc).Documents(ctx)
	return listDocs(iter, "document", fromDocumentDocument)
}

func (r *documentRepository) Update(ctx context.Context, doc *model.Document) (*model.Document, error) {
	stored, err := replaceDoc(ctx, r.client, r.doc(doc.ID), "document", toDocumentDocument(doc),
		func(existing, updated *documentDocument) {
			updated.CreatedAt = existing.CreatedAt
			updated.UpdatedAt = time.Now().UTC()
		})
	if err != nil {
		return nil, err
	}
	return fromDocumentDocument(stored), nil
}

func (r *documentRepository) Delete(ctx context.Context, id string) error {
	return deleteDoc(ctx, r.doc(id), "document")
}

type controlDocument struct {
	ID          string    `firestore:"id"`
	Reference   string    `firestore:"reference"`
	Title       string    `firestore:"title"`
	Description string    `firestore:"description"`
	Category    string    `firestore:"category"`
	Owner       string    `firestore:"owner"`
	CreatedAt   time.Time `firestore:"created_at"`
	UpdatedAt   time.Time `firestore:"updated_at"`
}

func toControlDocument(c *model.Control) *controlDocument {
	return &controlDocument{
		ID:          c.ID,
		Reference:   c.Reference,
		Title:       c.Title,
		Description: c.Description,
		Category:    c.Category,
		Owner:       c.Owner,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

func fromControlDocument(d *controlDocument) *model.Control {
	return &model.Control{
		ID:          d.ID,
		Reference:   d.Reference,
		Title:       d.Title,
		Description: d.Description,
		Category:    d.Category,
		Owner:       d.Owner,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

type controlRepository struct {
	client     *firestore.Client
	collection string
}

func (r *controlRepository) doc(id string) *firestore.DocumentRef {
	return r.client.Collection(r.collection).Doc(id)
}

// referenceTaken reports whether a control other than id already uses reference
func (r *controlRepository) referenceTaken(tx *firestore.Transaction, reference, id string) (bool, error) {
	iter := tx.Documents(r.client.Collection(r.collection).Where("reference", "==", reference).Limit(2))
	defer iter.Stop()

	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			return false, nil
		}
		if err != nil {
			return false, goerr.Wrap(err, "failed to query control reference", goerr.V("reference", reference))
		}
		if snap.Ref.ID != id {
			return true, nil
		}
	}
}

func (r *controlRepository) Create(ctx context.Context, control *model.Control) (*model.Control, error) {
	created := *control
	if created.ID == "" {
		created.ID = model.NewRecordID()
	}
	created.CreatedAt = time.Now().UTC()
	created.UpdatedAt = created.CreatedAt

	ref := r.doc(created.ID)
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		taken, err := r.referenceTaken(tx, created.Reference, created.ID)
		if err != nil {
			return err
		}
		if taken {
			return goerr.Wrap(ErrAlreadyExists, "control already exists", goerr.V("reference", created.Reference))
		}
		return tx.Create(ref, toControlDocument(&created))
	})
	if err != nil {
		return nil, wrapCreateErr(err, "control", created.ID)
	}
	return &created, nil
}

func (r *controlRepository) Get(ctx context.Context, id string) (*model.Control, error) {
	return getDoc(ctx, r.doc(id), "control", fromControlDocument)
}

func (r *controlRepository) GetByReference(ctx context.Context, reference string) (*model.Control, error) {
	iter := r.client.Collection(r.collection).Where("reference", "==", reference).Limit(1).Documents(ctx)
	controls, err := listDocs(iter, "control", fromControlDocument)
	if err != nil {
		return nil, err
	}
	if len(controls) == 0 {
		return nil, goerr.Wrap(ErrNotFound, "control not found", goerr.V("reference", reference))
	}
	return controls[0], nil
}

func (r *controlRepository) List(ctx context.Context) ([]*model.Control, error) {
	iter := r.client.Collection(r.collection).OrderBy("created_at", firestore.Asc).Documents(ctx)
	return listDocs(iter, "control", fromControlDocument)
}

func (r *controlRepository) Update(ctx context.Context, control *model.Control) (*model.Control, error) {
	ref := r.doc(control.ID)

	var updated *controlDocument
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(ref)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				return goerr.Wrap(ErrNotFound, "control not found", goerr.V("id", control.ID))
			}
			return goerr.Wrap(err, "failed to get control", goerr.V("id", control.ID))
		}
		var existing controlDocument
		if err := snap.DataTo(&existing); err != nil {
			return goerr.Wrap(err, "failed to unmarshal control", goerr.V("id", control.ID))
		}

		taken, err := r.referenceTaken(tx, control.Reference, control.ID)
		if err != nil {
			return err
		}
		if taken {
			return goerr.Wrap(ErrAlreadyExists, "control already exists", goerr.V("reference", control.Reference))
		}

		updated = toControlDocument(control)
		updated.CreatedAt = existing.CreatedAt
		updated.UpdatedAt = time.Now().UTC()
		return tx.Set(ref, updated)
	})
	if err != nil {
		return nil, err
	}
	return fromControlDocument(updated), nil
}

func (r *controlRepository) Delete(ctx context.Context, id string) error {
	return deleteDoc(ctx, r.doc(id), "control")
}

type soaDocument struct {
	ID                   string    `firestore:"id"`
	ControlReference     string    `firestore:"control_reference"`
	Applicable           bool      `firestore:"applicable"`
	Justification        string    `firestore:"justification"`
	ImplementationStatus string    `firestore:"implementation_status"`
	Evidence             string    `firestore:"evidence"`
	CreatedAt            time.Time `firestore:"created_at"`
	UpdatedAt            time.Time `firestore:"updated_at"`
}

func toSoADocument(e *model.SoAEntry) *soaDocument {
	return &soaDocument{
		ID:                   e.ID,
		ControlReference:     e.ControlReference,
		Applicable:           e.Applicable,
		Justification:        e.Justification,
		ImplementationStatus: string(e.ImplementationStatus),
		Evidence:             e.Evidence,
		CreatedAt:            e.CreatedAt,
		UpdatedAt:            e.UpdatedAt,
	}
}

func fromSoADocument(d *soaDocument) *model.SoAEntry {
	return &model.SoAEntry{
		ID:                   d.ID,
		ControlReference:     d.ControlReference,
		Applicable:           d.Applicable,
		Justification:        d.Justification,
		ImplementationStatus: types.ImplementationStatus(d.ImplementationStatus),
		Evidence:             d.Evidence,
		CreatedAt:            d.CreatedAt,
		UpdatedAt:            d.UpdatedAt,
	}
}

type soaRepository struct {
	client     *firestore.Client
	collection string
}

func (r *soaRepository) doc(id string) *firestore.DocumentRef {
	return r.client.Collection(r.collection).Doc(id)
}

func (r *soaRepository) Create(ctx context.Context, entry *model.SoAEntry) (*model.SoAEntry, error) {
	created := *entry
	if created.ID == "" {
		created.ID = model.NewRecordID()
	}
	created.CreatedAt = time.Now().UTC()
	created.UpdatedAt = created.CreatedAt

	if _, err := r.doc(created.ID).Create(ctx, toSoADocument(&created)); err != nil {
		return nil, wrapCreateErr(err, "soa entry", created.ID)
	}
	return &created, nil
}

func (r *soaRepository) Get(ctx context.Context, id string) (*model.SoAEntry, error) {
	return getDoc(ctx, r.doc(id), "soa entry", fromSoADocument)
}

func (r *soaRepository) List(ctx context.Context) ([]*model.SoAEntry, error) {
	iter := r.client.Collection(r.collection).OrderBy("created_at", firestore.Asc).Documents(ctx)
	return listDocs(iter, "soa entry", fromSoADocument)
}

func (r *soaRepository) Update(ctx context.Context, entry *model.SoAEntry) (*model.SoAEntry, error) {
	stored, err := replaceDoc(ctx, r.client, r.doc(entry.ID), "soa entry", toSoADocument(entry),
		func(existing, updated *soaDocument) {
			updated.CreatedAt = existing.CreatedAt
			updated.UpdatedAt = time.Now().UTC()
		})
	if err != nil {
		return nil, err
	}
	return fromSoADocument(stored), nil
}

func (r *soaRepository) Delete(ctx context.Context, id string) error {
	return deleteDoc(ctx, r.doc(id), "soa entry")
}

type gapDocument struct {
	ID               string    `firestore:"id"`
	ControlReference string    `firestore:"control_reference"`
	Description      string    `firestore:"description"`
	Severity         string    `firestore:"severity"`
	Status           string    `firestore:"status"`
	Owner            string    `firestore:"owner"`
	RiskID           string    `firestore:"risk_id"`
	DueDate          string    `firestore:"due_date"`
	CreatedAt        time.Time `firestore:"created_at"`
	UpdatedAt        time.Time `firestore:"updated_at"`
}

func toGapDocument(g *model.Gap) *gapDocument {
	return &gapDocument{
		ID:               g.ID,
		ControlReference: g.ControlReference,
		Description:      g.Description,
		Severity:         g.Severity,
		Status:           string(g.Status),
		Owner:            g.Owner,
		RiskID:           g.RiskID,
		DueDate:          g.DueDate,
		CreatedAt:        g.CreatedAt,
		UpdatedAt:        g.UpdatedAt,
	}
}

func fromGapDocument(d *gapDocument) *model.Gap {
	return &model.Gap{
		ID:               d.ID,
		ControlReference: d.ControlReference,
		Description:      d.Description,
		Severity:         d.Severity,
		Status:           types.GapStatus(d.Status),
		Owner:            d.Owner,
		RiskID:           d.RiskID,
		DueDate:          d.DueDate,
		CreatedAt:        d.CreatedAt,
		UpdatedAt:        d.UpdatedAt,
	}
}

type gapRepository struct {
	client     *firestore.Client
	collection string
}

func (r *gapRepository) doc(id string) *firestore.DocumentRef {
	return r.client.Collection(r.collection).Doc(id)
}

func (r *gapRepository) Create(ctx context.Context, gap *model.Gap) (*model.Gap, error) {
	created := *gap
	if created.ID == "" {
		created.ID = model.NewRecordID()
	}
	created.CreatedAt = time.Now().UTC()
	created.UpdatedAt = created.CreatedAt

	if _, err := r.doc(created.ID).Create(ctx, toGapDocument(&created)); err != nil {
		return nil, wrapCreateErr(err, "gap", created.ID)
	}
	return &created, nil
}

func (r *gapRepository) Get(ctx context.Context, id string) (*model.Gap, error) {
	return getDoc(ctx, r.doc(id), "gap", fromGapDocument)
}

func (r *gapRepository) List(ctx context.Context) ([]*model.Gap, error) {
	iter := r.client.Collection(r.collection).OrderBy("created_at", firestore.Asc).Documents(ctx)
	return listDocs(iter, "gap", fromGapDocument)
}

func (r *gapRepository) Update(ctx context.Context, gap *model.Gap) (*model.Gap, error) {
	stored, err := replaceDoc(ctx, r.client, r.doc(gap.ID), "gap", toGapDocument(gap),
		func(existing, updated *gapDocument) {
			updated.CreatedAt = existing.CreatedAt
			updated.UpdatedAt = time.Now().UTC()
		})
	if err != nil {
		return nil, err
	}
	return fromGapDocument(stored), nil
}

func (r *gapRepository) Delete(ctx context.Context, id string) error {
	return deleteDoc(ctx, r.doc(id), "gap")
}

// replaceDoc overwrites an existing document inside a transaction. merge copies the
// fields that survive the replacement from the stored document.
func replaceDoc[D any](ctx context.Context, client *firestore.Client, ref *firestore.DocumentRef, name string, updated *D, merge func(existing, updated *D)) (*D, error) {
	err := client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(ref)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				return goerr.Wrap(ErrNotFound, name+" not found", goerr.V("id", ref.ID))
			}
			return goerr.Wrap(err, "failed to get "+name, goerr.V("id", ref.ID))
		}

		var existing D
		if err := snap.DataTo(&existing); err != nil {
			return goerr.Wrap(err, "failed to unmarshal "+name, goerr.V("id", ref.ID))
		}
		merge(&existing, updated)
		return tx.Set(ref, updated)
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func wrapCreateErr(err error, name, id string) error {
	if errors.Is(err, ErrAlreadyExists) {
		return err
	}
	if status.Code(err) == codes.AlreadyExists {
		return goerr.Wrap(ErrAlreadyExists, name+" already exists", goerr.V("id", id))
	}
	return goerr.Wrap(err, "failed to create "+name, goerr.V("id", id))
}
