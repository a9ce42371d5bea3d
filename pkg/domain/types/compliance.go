package types

import "github.com/m-mizutani/goerr/v2"

// GapStatus represents the lifecycle of a compliance gap
type GapStatus string

const (
	GapStatusOpen       GapStatus = "OPEN"
	GapStatusInProgress GapStatus = "IN_PROGRESS"
	GapStatusClosed     GapStatus = "CLOSED"
)

func (s GapStatus) IsValid() bool {
	switch s {
	case GapStatusOpen, GapStatusInProgress, GapStatusClosed:
		return true
	default:
		return false
	}
}

// ParseGapStatus parses a string into a GapStatus. An empty string yields GapStatusOpen.
func ParseGapStatus(s string) (GapStatus, error) {
	if s == "" {
		return GapStatusOpen, nil
	}
	status := GapStatus(s)
	if !status.IsValid() {
		return "", goerr.New("invalid gap status", goerr.V("status", s))
	}
	return status, nil
}

// ImplementationStatus is the implementation state of a control in the Statement of Applicability
type ImplementationStatus string

const (
	ImplementationNotImplemented       ImplementationStatus = "NOT_IMPLEMENTED"
	ImplementationPartiallyImplemented ImplementationStatus = "PARTIALLY_IMPLEMENTED"
	ImplementationImplemented          ImplementationStatus = "IMPLEMENTED"
)

func (s ImplementationStatus) IsValid() bool {
	switch s {
	case ImplementationNotImplemented, ImplementationPartiallyImplemented, ImplementationImplemented:
		return true
	default:
		return false
	}
}

// ParseImplementationStatus parses a string into an ImplementationStatus. An empty string yields ImplementationNotImplemented.
func ParseImplementationStatus(s string) (ImplementationStatus, error) {
	if s == "" {
		return ImplementationNotImplemented, nil
	}
	status := ImplementationStatus(s)
	if !status.IsValid() {
		return "", goerr.New("invalid implementation status", goerr.V("status", s))
	}
	return status, nil
}

// DocumentStatus is the approval state of a policy document
type DocumentStatus string

const (
	DocumentStatusDraft    DocumentStatus = "DRAFT"
	DocumentStatusApproved DocumentStatus = "APPROVED"
	DocumentStatusArchived DocumentStatus = "ARCHIVED"
)

func (s DocumentStatus) IsValid() bool {
	switch s {
	case DocumentStatusDraft, DocumentStatusApproved, DocumentStatusArchived:
		return true
	default:
		return false
	}
}

// ParseDocumentStatus parses a string into a DocumentStatus. An empty string yields DocumentStatusDraft.
func ParseDocumentStatus(s string) (DocumentStatus, error) {
	if s == "" {
		return DocumentStatusDraft, nil
	}
	status := DocumentStatus(s)
	if !status.IsValid() {
		return "", goerr.New("invalid document status", goerr.V("status", s))
	}
	return status, nil
}
