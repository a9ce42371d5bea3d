package usecase

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/themis/pkg/domain/interfaces"
	"github.com/secmon-lab/themis/pkg/domain/model"
	"github.com/secmon-lab/themis/pkg/domain/types"
	"github.com/secmon-lab/themis/pkg/utils/errutil"
)

// UploadPathPrefix is the URL path under which stored files are served
const UploadPathPrefix = "/uploads/"

type DocumentUseCase struct {
	repo    interfaces.Repository
	storage interfaces.Storage
}

func NewDocumentUseCase(repo interfaces.Repository, storage interfaces.Storage) *DocumentUseCase {
	return &DocumentUseCase{
		repo:    repo,
		storage: storage,
	}
}

// Upload is a file attached to a document
type Upload struct {
	FileName    string
	ContentType string
	Body        io.Reader
}

func (uc *DocumentUseCase) ListDocuments(ctx context.Context) ([]*model.Document, error) {
	docs, err := uc.repo.Document().List(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list documents")
	}
	return docs, nil
}

func (uc *DocumentUseCase) GetDocument(ctx context.Context, id string) (*model.Document, error) {
	doc, err := uc.repo.Document().Get(ctx, id)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get document", goerr.V(DocumentIDKey, id))
	}
	return doc, nil
}

func normalizeDocument(doc *model.Document) error {
	if doc.Title == "" {
		return goerr.Wrap(ErrValidation, "document title is required")
	}
	status, err := types.ParseDocumentStatus(string(doc.Status))
	if err != nil {
		return goerr.Wrap(ErrValidation, "invalid document status", goerr.V("status", doc.Status))
	}
	doc.Status = status
	return nil
}

// CreateDocument creates a document without file
func (uc *DocumentUseCase) CreateDocument(ctx context.Context, doc *model.Document) (*model.Document, error) {
	if doc == nil {
		return nil, goerr.Wrap(ErrValidation, "document is required")
	}
	creating := *doc
	creating.ID = ""
	creating.FileName, creating.StoredName, creating.ContentType, creating.URL = "", "", "", ""
	creating.Size = 0
	if err := normalizeDocument(&creating); err != nil {
		return nil, err
	}

	created, err := uc.repo.Document().Create(ctx, &creating)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create document")
	}
	return created, nil
}

// storedName returns a fresh file name keeping the lower cased extension of fileName
func storedName(fileName string) string {
	return model.NewRecordID() + strings.ToLower(filepath.Ext(filepath.Base(fileName)))
}

// UploadDocument stores the file and creates a document pointing to it. The title defaults
// to the file name.
func (uc *DocumentUseCase) UploadDocument(ctx context.Context, doc *model.Document, upload *Upload) (*model.Document, error) {
	if uc.storage == nil {
		return nil, goerr.Wrap(ErrStorageUnavailable, "cannot upload document")
	}
	if upload == nil || upload.Body == nil || upload.FileName == "" {
		return nil, goerr.Wrap(ErrValidation, "file is required")
	}

	creating := model.Document{}
	if doc != nil {
		creating = *doc
	}
	creating.ID = ""
	if creating.Title == "" {
		creating.Title = filepath.Base(upload.FileName)
	}
	if err := normalizeDocument(&creating); err != nil {
		return nil, err
	}

	name := storedName(upload.FileName)
	size, err := uc.storage.Put(ctx, name, upload.ContentType, upload.Body)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to store uploaded file", goerr.V("file_name", upload.FileName))
	}

	creating.FileName = filepath.Base(upload.FileName)
	creating.StoredName = name
	creating.ContentType = upload.ContentType
	creating.Size = size
	creating.URL = UploadPathPrefix + name

	created, err := uc.repo.Document().Create(ctx, &creating)
	if err != nil {
		if delErr := uc.storage.Delete(ctx, name); delErr != nil {
			_ = errutil.Handle(ctx, delErr, "failed to remove orphan upload")
		}
		return nil, goerr.Wrap(err, "failed to create document", goerr.V("stored_name", name))
	}
	return created, nil
}

// UpdateDocument updates document metadata. The attached file is kept.
func (uc *DocumentUseCase) UpdateDocument(ctx context.Context, doc *model.Document) (*model.Document, error) {
	if doc == nil || doc.ID == "" {
		return nil, goerr.Wrap(ErrValidation, "document ID is required")
	}

	existing, err := uc.repo.Document().Get(ctx, doc.ID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get document", goerr.V(DocumentIDKey, doc.ID))
	}

	updating := *doc
	updating.FileName = existing.FileName
	updating.StoredName = existing.StoredName
	updating.ContentType = existing.ContentType
	updating.Size = existing.Size
	updating.URL = existing.URL
	if err := normalizeDocument(&updating); err != nil {
		return nil, err
	}

	updated, err := uc.repo.Document().Update(ctx, &updating)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to update document", goerr.V(DocumentIDKey, doc.ID))
	}
	return updated, nil
}

// DeleteDocument deletes the document and its stored file
func (uc *DocumentUseCase) DeleteDocument(ctx context.Context, id string) error {
	doc, err := uc.repo.Document().Get(ctx, id)
	if err != nil {
		return goerr.Wrap(err, "failed to get document", goerr.V(DocumentIDKey, id))
	}

	if err := uc.repo.Document().Delete(ctx, id); err != nil {
		return goerr.Wrap(err, "failed to delete document", goerr.V(DocumentIDKey, id))
	}

	if doc.StoredName != "" && uc.storage != nil {
		if err := uc.storage.Delete(ctx, doc.StoredName); err != nil && !errors.Is(err, ErrNotFound) {
			_ = errutil.Handle(ctx, goerr.Wrap(err, "failed to delete stored file",
				goerr.V(DocumentIDKey, id),
				goerr.V("stored_name", doc.StoredName)), "stored file left behind")
		}
	}
	return nil
}

// OpenUpload opens a stored file by name. The caller must close it.
func (uc *DocumentUseCase) OpenUpload(ctx context.Context, name string) (io.ReadCloser, error) {
	if uc.storage == nil {
		return nil, goerr.Wrap(ErrStorageUnavailable, "cannot open upload")
	}
	r, err := uc.storage.Open(ctx, name)
	if errors.Is(err, interfaces.ErrInvalidName) {
		return nil, goerr.Wrap(ErrNotFound, "no such upload", goerr.V("name", name))
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to open upload", goerr.V("name", name))
	}
	return r, nil
}
