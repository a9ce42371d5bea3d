package interfaces

import (
	"context"

	"github.com/secmon-lab/themis/pkg/domain/model"
)

type DocumentRepository interface {
	Create(ctx context.Context, doc *model.Document) (*model.Document, error)
	Get(ctx context.Context, id string) (*model.Document, error)
	List(ctx context.Context) ([]*model.Document, error)
	Update(ctx context.Context, doc *model.Document) (*model.Document, error)
	Delete(ctx context.Context, id string) error
}

type ControlRepository interface {
	Create(ctx context.Context, control *model.Control) (*model.Control, error)
	Get(ctx context.Context, id string) (*model.Control, error)

	// GetByReference retrieves a control by its catalogue reference such as "A.5.1"
	GetByReference(ctx context.Context, reference string) (*model.Control, error)

	List(ctx context.Context) ([]*model.Control, error)
	Update(ctx context.Context, control *model.Control) (*model.Control, error)
	Delete(ctx context.Context, id string) error
}

type SoARepository interface {
	Create(ctx context.Context, entry *model.SoAEntry) (*model.SoAEntry, error)
	Get(ctx context.Context, id string) (*model.SoAEntry, error)
	List(ctx context.Context) ([]*model.SoAEntry, error)
	Update(ctx context.Context, entry *model.SoAEntry) (*model.SoAEntry, error)
	Delete(ctx context.Context, id string) error
}

type GapRepository interface {
	Create(ctx context.Context, gap *model.Gap) (*model.Gap, error)
	Get(ctx context.Context, id string) (*model.Gap, error)
	List(ctx context.Context) ([]*model.Gap, error)
	Update(ctx context.Context, gap *model.Gap) (*model.Gap, error)
	Delete(ctx context.Context, id string) error
}
