package dto

import (
	"strings"
	"time"
)

// SubmitDocumentRequest is the body of POST /api/mobile/document-requests.
type SubmitDocumentRequest struct {
	Region       string `json:"region" validate:"required"`
	Province     string `json:"province" validate:"required"`
	City         string `json:"city" validate:"required"`
	Barangay     string `json:"barangay" validate:"required"`
	DocumentType string `json:"document_type" validate:"required,max=120"`
	Purpose      string `json:"purpose" validate:"max=1000"`
}

// UpdateDocumentStatusRequest moves a request along its workflow. PickupDeadline is honoured
// for "ready for pick-up" and "reschedule".
type UpdateDocumentStatusRequest struct {
	Actor
	Status         string     `json:"status" validate:"required"`
	PickupDeadline *time.Time `json:"pickup_deadline,omitempty"`
}

// RejectDocumentRequest is the only way into the rejected state.
type RejectDocumentRequest struct {
	Actor
	Reason string `json:"reason" validate:"required,max=1000"`
}

// Normalize trims every field so blank values fail the required checks.
func (r *SubmitDocumentRequest) Normalize() {
	r.Region = strings.TrimSpace(r.Region)
	r.Province = strings.TrimSpace(r.Province)
	r.City = strings.TrimSpace(r.City)
	r.Barangay = strings.TrimSpace(r.Barangay)
	r.DocumentType = strings.TrimSpace(r.DocumentType)
	r.Purpose = strings.TrimSpace(r.Purpose)
}
