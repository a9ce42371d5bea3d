package model

import (
	"time"

	"github.com/m-mizutani/goerr/v2"
)

// Risk is a risk assessment record. Every assessment field is kept as the string the
// assessor entered so that partially filled drafts can be persisted.
type Risk struct {
	RiskID string `json:"riskId"`

	// Classification
	Department      string `json:"department"`
	Date            string `json:"date"`
	RiskType        string `json:"riskType"`
	AssetType       string `json:"assetType"`
	Asset           string `json:"asset"`
	Location        string `json:"location"`
	RiskDescription string `json:"riskDescription"`

	// CIA triad and qualitative scoring
	Confidentiality string `json:"confidentiality"`
	Integrity       string `json:"integrity"`
	Availability    string `json:"availability"`
	Threat          string `json:"threat"`
	Vulnerability   string `json:"vulnerability"`
	Impact          string `json:"impact"`
	Probability     string `json:"probability"`

	ExistingControls string `json:"existingControls"`
	AdditionalNotes  string `json:"additionalNotes"`

	// Treatment plan
	ControlReference   string `json:"controlReference"`
	AdditionalControls string `json:"additionalControls"`

	// Residual risk
	NumberOfDays string `json:"numberOfDays"`
	DeadlineDate string `json:"deadlineDate"`

	CreatedAt time.Time `json:"createdAt,omitempty"`
	UpdatedAt time.Time `json:"updatedAt,omitempty"`
}

// Risk field names as used by the assessment forms
const (
	FieldRiskID             = "riskId"
	FieldDepartment         = "department"
	FieldDate               = "date"
	FieldRiskType           = "riskType"
	FieldAssetType          = "assetType"
	FieldAsset              = "asset"
	FieldLocation           = "location"
	FieldRiskDescription    = "riskDescription"
	FieldConfidentiality    = "confidentiality"
	FieldIntegrity          = "integrity"
	FieldAvailability       = "availability"
	FieldThreat             = "threat"
	FieldVulnerability      = "vulnerability"
	FieldImpact             = "impact"
	FieldProbability        = "probability"
	FieldExistingControls   = "existingControls"
	FieldAdditionalNotes    = "additionalNotes"
	FieldControlReference   = "controlReference"
	FieldAdditionalControls = "additionalControls"
	FieldNumberOfDays       = "numberOfDays"
	FieldDeadlineDate       = "deadlineDate"
)

// ScoredFields are the fields holding a severity level
var ScoredFields = []string{
	FieldConfidentiality,
	FieldIntegrity,
	FieldAvailability,
	FieldThreat,
	FieldVulnerability,
	FieldImpact,
	FieldProbability,
}

func (r *Risk) fieldRef(name string) *string {
	switch name {
	case FieldRiskID:
		return &r.RiskID
	case FieldDepartment:
		return &r.Department
	case FieldDate:
		return &r.Date
	case FieldRiskType:
		return &r.RiskType
	case FieldAssetType:
		return &r.AssetType
	case FieldAsset:
		return &r.Asset
	case FieldLocation:
		return &r.Location
	case FieldRiskDescription:
		return &r.RiskDescription
	case FieldConfidentiality:
		return &r.Confidentiality
	case FieldIntegrity:
		return &r.Integrity
	case FieldAvailability:
		return &r.Availability
	case FieldThreat:
		return &r.Threat
	case FieldVulnerability:
		return &r.Vulnerability
	case FieldImpact:
		return &r.Impact
	case FieldProbability:
		return &r.Probability
	case FieldExistingControls:
		return &r.ExistingControls
	case FieldAdditionalNotes:
		return &r.AdditionalNotes
	case FieldControlReference:
		return &r.ControlReference
	case FieldAdditionalControls:
		return &r.AdditionalControls
	case FieldNumberOfDays:
		return &r.NumberOfDays
	case FieldDeadlineDate:
		return &r.DeadlineDate
	default:
		return nil
	}
}

// Field returns the value of the named form field
func (r *Risk) Field(name string) (string, error) {
	ref := r.fieldRef(name)
	if ref == nil {
		return "", goerr.Wrap(ErrUnknownField, "cannot read risk field", goerr.V(FieldNameKey, name))
	}
	return *ref, nil
}

// SetField sets the named form field
func (r *Risk) SetField(name, value string) error {
	ref := r.fieldRef(name)
	if ref == nil {
		return goerr.Wrap(ErrUnknownField, "cannot set risk field", goerr.V(FieldNameKey, name))
	}
	*ref = value
	return nil
}

// Clone returns a copy of the risk
func (r *Risk) Clone() *Risk {
	if r == nil {
		return nil
	}
	c := *r
	return &c
}
