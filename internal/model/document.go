package model

import (
	"errors"
	"time"
)

// ErrFlowMismatch is returned by Validate when the validation status and the
// attached flow disagree.
var ErrFlowMismatch = errors.New("validation status does not match flow reference")

// Document is the metadata record of one uploaded business file.
// StorageKey is assigned once at initiation and never rewritten.
type Document struct {
	ID               string           `json:"id"`
	CompanyID        string           `json:"company_id"`
	EntityType       string           `json:"entity_type"`
	EntityID         string           `json:"entity_id"`
	Name             string           `json:"name"`
	MimeType         string           `json:"mime_type"`
	SizeBytes        int64            `json:"size_bytes"`
	StorageKey       string           `json:"storage_key"`
	Hash             *string          `json:"hash,omitempty"`
	CreatedBy        string           `json:"created_by"`
	CreatedAt        time.Time        `json:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at"`
	ValidationStatus ValidationStatus `json:"validation_status"`
	ValidationFlowID *string          `json:"validation_flow_id,omitempty"`
}

// RequiresValidation reports whether a validation flow is attached.
func (d *Document) RequiresValidation() bool {
	return d.ValidationFlowID != nil
}

// AttachFlow links the flow to the document and marks it Pending.
func (d *Document) AttachFlow(flow *ValidationFlow) {
	id := flow.ID
	d.ValidationFlowID = &id
	d.ValidationStatus = ValidationPending
	flow.DocumentID = d.ID
}

// Validate checks that the status is NoValidation exactly when no flow is attached.
func (d *Document) Validate() error {
	if d.ValidationStatus == "" {
		return ErrFlowMismatch
	}
	if (d.ValidationStatus == ValidationNone) != (d.ValidationFlowID == nil) {
		return ErrFlowMismatch
	}
	return nil
}
