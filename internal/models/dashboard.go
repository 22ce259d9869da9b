package models

// StatusCount is one row of a GROUP BY status aggregate.
type StatusCount struct {
	Status string `db:"status" json:"status"`
	Count  int    `db:"count" json:"count"`
}

// DashboardSummary holds per-status totals for the caller's scope.
type DashboardSummary struct {
	Scope            Location       `json:"scope"`
	Reports          map[string]int `json:"reports"`
	DocumentRequests map[string]int `json:"document_requests"`
	PendingAccounts  int            `json:"pending_accounts,omitempty"`
	UnreadAlerts     int            `json:"unread_notifications"`
}
