package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/secmon-lab/themis/pkg/domain/types"
)

// NewRecordID returns a fresh identifier for documents, controls, SoA entries, gaps and users
func NewRecordID() string {
	return uuid.New().String()
}

// Document is a policy or procedure document, optionally backed by an uploaded file
type Document struct {
	ID          string               `json:"id"`
	Title       string               `json:"title"`
	Category    string               `json:"category"`
	Description string               `json:"description"`
	Owner       string               `json:"owner"`
	Status      types.DocumentStatus `json:"status"`
	Version     string               `json:"version"`
	FileName    string               `json:"fileName,omitempty"`
	StoredName  string               `json:"storedName,omitempty"`
	ContentType string               `json:"contentType,omitempty"`
	Size        int64                `json:"size,omitempty"`
	URL         string               `json:"url,omitempty"`
	CreatedAt   time.Time            `json:"createdAt"`
	UpdatedAt   time.Time            `json:"updatedAt"`
}

// Control is a security control from a control catalogue such as ISO/IEC 27001 Annex A
type Control struct {
	ID          string    `json:"id"`
	Reference   string    `json:"reference"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	Owner       string    `json:"owner"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// SoAEntry is one line of the Statement of Applicability
type SoAEntry struct {
	ID                   string                     `json:"id"`
	ControlReference     string                     `json:"controlReference"`
	Applicable           bool                       `json:"applicable"`
	Justification        string                     `json:"justification"`
	ImplementationStatus types.ImplementationStatus `json:"implementationStatus"`
	Evidence             string                     `json:"evidence"`
	CreatedAt            time.Time                  `json:"createdAt"`
	UpdatedAt            time.Time                  `json:"updatedAt"`
}

// Gap is a deviation between a control requirement and current practice
type Gap struct {
	ID               string          `json:"id"`
	ControlReference string          `json:"controlReference"`
	Description      string          `json:"description"`
	Severity         string          `json:"severity"`
	Status           types.GapStatus `json:"status"`
	Owner            string          `json:"owner"`
	RiskID           string          `json:"riskId,omitempty"`
	DueDate          string          `json:"dueDate"`
	CreatedAt        time.Time       `json:"createdAt"`
	UpdatedAt        time.Time       `json:"updatedAt"`
}
