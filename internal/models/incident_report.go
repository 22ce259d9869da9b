package models

import (
	"time"

	"github.com/lib/pq"
)

// IncidentReport is a citizen-filed report routed to a barangay.
type IncidentReport struct {
	ID int64 `db:"id" json:"id"`
	Location
	IncidentType  string         `db:"incident_type" json:"incident_type"`
	Description   string         `db:"description" json:"description"`
	Status        ReportStatus   `db:"status" json:"status"`
	StatusHistory StatusHistory  `db:"status_history" json:"status_history"`
	MediaURLs     pq.StringArray `db:"media_urls" json:"media_urls"`
	ProofURL      *string        `db:"proof_url" json:"proof_url,omitempty"`
	ReporterID    *int64         `db:"reporter_id" json:"reporter_id,omitempty"`
	ReporterName  string         `db:"reporter_name" json:"reporter_name"`
	CreatedAt     time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time      `db:"updated_at" json:"updated_at"`
}

// ReportFilter scopes report listings. Empty location fields are not filtered.
type ReportFilter struct {
	Location
	ReporterID *int64
	Status     *ReportStatus
	Page       int
	PageSize   int
}

// ReportTransition describes one guarded status write.
type ReportTransition struct {
	ID       int64
	From     ReportStatus
	To       ReportStatus
	Entry    StatusHistoryEntry
	ProofURL *string
}

// ReportTransfer moves a report to another barangay of the same city.
type ReportTransfer struct {
	ID           int64
	FromBarangay string
	NewBarangay  string
	From         ReportStatus
	Entry        StatusHistoryEntry
}
