package dto

import "strings"

// Actor identifies the staff member performing a write. Empty names fall back to the token.
type Actor struct {
	FirstName string `json:"first_name" form:"first_name"`
	LastName  string `json:"last_name" form:"last_name"`
}

// SubmitReportRequest is the multipart body of POST /api/mobile/incident-reports.
type SubmitReportRequest struct {
	Region       string `json:"region" form:"region" validate:"required"`
	Province     string `json:"province" form:"province" validate:"required"`
	City         string `json:"city" form:"city" validate:"required"`
	Barangay     string `json:"barangay" form:"barangay" validate:"required"`
	IncidentType string `json:"incident_type" form:"incident_type" validate:"required,max=120"`
	Description  string `json:"description" form:"description" validate:"max=4000"`
}

// UpdateReportStatusRequest moves a report along its workflow. A multipart proof file may
// accompany it.
type UpdateReportStatusRequest struct {
	Actor
	Status string `json:"status" form:"status" validate:"required"`
}

// TransferReportRequest hands a report to another barangay of the same city.
type TransferReportRequest struct {
	Actor
	NewBarangay string `json:"newBarangay" form:"newBarangay" validate:"required"`
}

// ListQuery captures list filters. Staff scope always comes from the token.
type ListQuery struct {
	Region   string `form:"region"`
	Province string `form:"province"`
	City     string `form:"city"`
	Barangay string `form:"barangay"`
	Status   string `form:"status"`
	Page     int    `form:"page"`
	PageSize int    `form:"page_size"`
}

// BarangayListResponse lists transfer destinations of the caller's city.
type BarangayListResponse struct {
	City      string   `json:"city"`
	Barangays []string `json:"barangays"`
}

// Normalize trims every field so blank values fail the required checks.
func (r *SubmitReportRequest) Normalize() {
	r.Region = strings.TrimSpace(r.Region)
	r.Province = strings.TrimSpace(r.Province)
	r.City = strings.TrimSpace(r.City)
	r.Barangay = strings.TrimSpace(r.Barangay)
	r.IncidentType = strings.TrimSpace(r.IncidentType)
	r.Description = strings.TrimSpace(r.Description)
}
