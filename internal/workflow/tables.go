package workflow

import "github.com/noah-isme/civic-report-api/internal/models"

func s[T ~string](v T) string { return string(v) }

// Reports governs incident_reports.status.
var Reports = newMachine("incident_report",
	[]string{
		s(models.ReportPending), s(models.ReportUnderReview), s(models.ReportInProgress),
		s(models.ReportTransferred), s(models.ReportEscalated), s(models.ReportResolved), s(models.ReportInvalid),
	},
	map[string][]Rule{
		s(models.ReportPending): {{To: s(models.ReportUnderReview)}},
		s(models.ReportUnderReview): {
			{To: s(models.ReportInProgress)},
			{To: s(models.ReportInvalid), RequiresProof: true},
			{To: s(models.ReportEscalated), RequiresProof: true},
			{To: s(models.ReportTransferred), Roles: []models.UserRole{models.RoleBarangay}, Via: OpTransfer},
		},
		s(models.ReportInProgress): {{To: s(models.ReportResolved), RequiresProof: true}},
		s(models.ReportTransferred): {
			{To: s(models.ReportInProgress)},
			{To: s(models.ReportInvalid)},
			{To: s(models.ReportEscalated)},
		},
		s(models.ReportEscalated): {
			{To: s(models.ReportInProgress)},
			{To: s(models.ReportInvalid)},
		},
	},
)

// Documents governs document_requests.status.
var Documents = newMachine("document_request",
	[]string{
		s(models.DocumentSubmitted), s(models.DocumentAccepted), s(models.DocumentProcessing),
		s(models.DocumentReadyForPickup), s(models.DocumentReschedule), s(models.DocumentClaimed),
		s(models.DocumentUnclaimed), s(models.DocumentRejected),
	},
	map[string][]Rule{
		s(models.DocumentSubmitted): {
			{To: s(models.DocumentAccepted)},
			{To: s(models.DocumentRejected), Via: OpReject},
		},
		s(models.DocumentAccepted):   {{To: s(models.DocumentProcessing)}},
		s(models.DocumentProcessing): {{To: s(models.DocumentReadyForPickup)}},
		s(models.DocumentReadyForPickup): {
			{To: s(models.DocumentReschedule)},
			{To: s(models.DocumentClaimed)},
			{To: s(models.DocumentUnclaimed)},
		},
		s(models.DocumentReschedule): {
			{To: s(models.DocumentClaimed)},
			{To: s(models.DocumentUnclaimed)},
		},
		s(models.DocumentUnclaimed): {{To: s(models.DocumentClaimed), Roles: []models.UserRole{models.RoleBarangay}}},
	},
)
