package firestore

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/themis/pkg/domain/model"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type riskDocument struct {
	RiskID             string    `firestore:"risk_id"`
	Department         string    `firestore:"department"`
	Date               string    `firestore:"date"`
	RiskType           string    `firestore:"risk_type"`
	AssetType          string    `firestore:"asset_type"`
	Asset              string    `firestore:"asset"`
	Location           string    `firestore:"location"`
	RiskDescription    string    `firestore:"risk_description"`
	Confidentiality    string    `firestore:"confidentiality"`
	Integrity          string    `firestore:"integrity"`
	Availability       string    `firestore:"availability"`
	Threat             string    `firestore:"threat"`
	Vulnerability      string    `firestore:"vulnerability"`
	Impact             string    `firestore:"impact"`
	Probability        string    `firestore:"probability"`
	ExistingControls   string    `firestore:"existing_controls"`
	AdditionalNotes    string    `firestore:"additional_notes"`
	ControlReference   string    `firestore:"control_reference"`
	AdditionalControls string    `firestore:"additional_controls"`
	NumberOfDays       string    `firestore:"number_of_days"`
	DeadlineDate       string    `firestore:"deadline_date"`
	CreatedAt          time.Time `firestore:"created_at"`
	UpdatedAt          time.Time `firestore:"updated_at"`
}

func toRiskDocument(r *model.Risk) *riskDocument {
	return &riskDocument{
		RiskID:             r.RiskID,
		Department:         r.Department,
		Date:               r.Date,
		RiskType:           r.RiskType,
		AssetType:          r.AssetType,
		Asset:              r.Asset,
		Location:           r.Location,
		RiskDescription:    r.RiskDescription,
		Confidentiality:    r.Confidentiality,
		Integrity:          r.Integrity,
		Availability:       r.Availability,
		Threat:             r.Threat,
		Vulnerability:      r.Vulnerability,
		Impact:             r.Impact,
		Probability:        r.Probability,
		ExistingControls:   r.ExistingControls,
		AdditionalNotes:    r.AdditionalNotes,
		ControlReference:   r.ControlReference,
		AdditionalControls: r.AdditionalControls,
		NumberOfDays:       r.NumberOfDays,
		DeadlineDate:       r.DeadlineDate,
		CreatedAt:          r.CreatedAt,
		UpdatedAt:          r.UpdatedAt,
	}
}

func fromRiskDocument(d *riskDocument) *model.Risk {
	return &model.Risk{
		RiskID:             d.RiskID,
		Department:         d.Department,
		Date:               d.Date,
		RiskType:           d.RiskType,
		AssetType:          d.AssetType,
		Asset:              d.Asset,
		Location:           d.Location,
		RiskDescription:    d.RiskDescription,
		Confidentiality:    d.Confidentiality,
		Integrity:          d.Integrity,
		Availability:       d.Availability,
		Threat:             d.Threat,
		Vulnerability:      d.Vulnerability,
		Impact:             d.Impact,
		Probability:        d.Probability,
		ExistingControls:   d.ExistingControls,
		AdditionalNotes:    d.AdditionalNotes,
		ControlReference:   d.ControlReference,
		AdditionalControls: d.AdditionalControls,
		NumberOfDays:       d.NumberOfDays,
		DeadlineDate:       d.DeadlineDate,
		CreatedAt:          d.CreatedAt,
		UpdatedAt:          d.UpdatedAt,
	}
}

// riskRepository keys risk documents by risk ID
type riskRepository struct {
	client     *firestore.Client
	collection string
}

func (r *riskRepository) doc(riskID string) *firestore.DocumentRef {
	return r.client.Collection(r.collection).Doc(riskID)
}

func (r *riskRepository) Get(ctx context.Context, riskID string) (*model.Risk, error) {
	return getDoc(ctx, r.doc(riskID), "risk", fromRiskDocument)
}

func (r *riskRepository) List(ctx context.Context) ([]*model.Risk, error) {
	iter := r.client.Collection(r.collection).OrderBy("created_at", firestore.Asc).Documents(ctx)
	return listDocs(iter, "risk", fromRiskDocument)
}

func (r *riskRepository) ListIDs(ctx context.Context) ([]string, error) {
	iter := r.client.Collection(r.collection).
		Select("risk_id").
		OrderBy("created_at", firestore.Asc).
		Documents(ctx)
	defer iter.Stop()

	ids := []string{}
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate risk IDs")
		}
		ids = append(ids, snap.Ref.ID)
	}
	return ids, nil
}

func (r *riskRepository) Put(ctx context.Context, risk *model.Risk) (*model.Risk, error) {
	ref := r.doc(risk.RiskID)
	now := time.Now().UTC()

	var stored *riskDocument
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		stored = toRiskDocument(risk)
		stored.CreatedAt = now
		stored.UpdatedAt = now

		snap, err := tx.Get(ref)
		switch {
		case err == nil:
			var existing riskDocument
			if err := snap.DataTo(&existing); err != nil {
				return goerr.Wrap(err, "failed to unmarshal risk")
			}
			stored.CreatedAt = existing.CreatedAt
		case status.Code(err) != codes.NotFound:
			return goerr.Wrap(err, "failed to get risk")
		}

		return tx.Set(ref, stored)
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to put risk", goerr.V("risk_id", risk.RiskID))
	}

	return fromRiskDocument(stored), nil
}

func (r *riskRepository) Delete(ctx context.Context, riskID string) error {
	return deleteDoc(ctx, r.doc(riskID), "risk")
}
