package dto

import "time"

// ExportReportsRequest is the body of POST /api/admin/reports/export.
type ExportReportsRequest struct {
	Format   string  `json:"format" validate:"required,oneof=csv pdf xlsx"`
	Status   *string `json:"status,omitempty"`
	City     string  `json:"city,omitempty"`
	Barangay string  `json:"barangay,omitempty"`
}

// ExportResponse points at a signed download.
type ExportResponse struct {
	URL       string    `json:"url"`
	Token     string    `json:"token"`
	Format    string    `json:"format"`
	Rows      int       `json:"rows"`
	ExpiresAt time.Time `json:"expires_at"`
}
