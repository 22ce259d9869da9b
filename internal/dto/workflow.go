package dto

import "github.com/noah-isme/civic-report-api/internal/workflow"

// WorkflowTable describes one status machine to clients.
type WorkflowTable struct {
	States      []string                   `json:"states"`
	Transitions map[string][]workflow.Rule `json:"transitions"`
}

// WorkflowResponse is served at GET /api/workflow/transitions.
type WorkflowResponse struct {
	IncidentReports  WorkflowTable `json:"incident_reports"`
	DocumentRequests WorkflowTable `json:"document_requests"`
}
