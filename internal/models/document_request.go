package models

import "time"

// DocumentRequest is a citizen's request for a barangay-issued document.
type DocumentRequest struct {
	ID            int64  `db:"id" json:"id"`
	RequesterID   *int64 `db:"requester_id" json:"requester_id,omitempty"`
	RequesterName string `db:"requester_name" json:"requester_name"`
	Location
	DocumentType    string         `db:"document_type" json:"document_type"`
	Purpose         string         `db:"purpose" json:"purpose"`
	Status          DocumentStatus `db:"status" json:"status"`
	StatusHistory   StatusHistory  `db:"status_history" json:"status_history"`
	PickupDeadline  *time.Time     `db:"pickup_deadline" json:"pickup_deadline,omitempty"`
	RejectionReason *string        `db:"rejection_reason" json:"rejection_reason,omitempty"`
	CreatedAt       time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time      `db:"updated_at" json:"updated_at"`
}

// DocumentRequestFilter scopes request listings.
type DocumentRequestFilter struct {
	Location
	RequesterID *int64
	Status      *DocumentStatus
	Page        int
	PageSize    int
}

// DocumentTransition describes one guarded status write. PickupDeadline is written only when
// SetDeadline is true; RejectionReason only when non-nil.
type DocumentTransition struct {
	ID              int64
	From            DocumentStatus
	To              DocumentStatus
	Entry           StatusHistoryEntry
	SetDeadline     bool
	PickupDeadline  *time.Time
	RejectionReason *string
}
