package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ReportStatus is the lifecycle state of an incident report.
type ReportStatus string

const (
	ReportPending     ReportStatus = "pending"
	ReportUnderReview ReportStatus = "under review"
	ReportInProgress  ReportStatus = "in progress"
	ReportInvalid     ReportStatus = "invalid"
	ReportEscalated   ReportStatus = "escalated"
	ReportTransferred ReportStatus = "transferred"
	ReportResolved    ReportStatus = "resolved"
)

// DocumentStatus is the lifecycle state of a document request.
type DocumentStatus string

const (
	DocumentSubmitted      DocumentStatus = "submitted"
	DocumentAccepted       DocumentStatus = "accepted"
	DocumentRejected       DocumentStatus = "rejected"
	DocumentProcessing     DocumentStatus = "processing"
	DocumentReadyForPickup DocumentStatus = "ready for pick-up"
	DocumentReschedule     DocumentStatus = "reschedule"
	DocumentClaimed        DocumentStatus = "claimed"
	DocumentUnclaimed      DocumentStatus = "unclaimed"
)

// SystemActor is recorded as updated_by for automatic transitions.
const SystemActor = "System"

// StatusHistoryEntry is one line of the append-only status log.
type StatusHistoryEntry struct {
	Label     string    `json:"label"`
	UpdatedBy string    `json:"updated_by"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Validate checks the entry carries a label, an actor and a timestamp.
func (e StatusHistoryEntry) Validate() error {
	switch {
	case strings.TrimSpace(e.Label) == "":
		return errors.New("history label required")
	case strings.TrimSpace(e.UpdatedBy) == "":
		return errors.New("history updated_by required")
	case e.UpdatedAt.IsZero():
		return errors.New("history updated_at required")
	}
	return nil
}

// Value encodes a single entry as a one-element JSON array so it can be appended with ||.
func (e StatusHistoryEntry) Value() (driver.Value, error) {
	data, err := json.Marshal([]StatusHistoryEntry{e})
	if err != nil {
		return nil, fmt.Errorf("marshal status history entry: %w", err)
	}
	return string(data), nil
}

// StatusHistory is the JSONB status log of a report or request.
type StatusHistory []StatusHistoryEntry

// Last returns the newest entry, if any.
func (h StatusHistory) Last() (StatusHistoryEntry, bool) {
	if len(h) == 0 {
		return StatusHistoryEntry{}, false
	}
	return h[len(h)-1], true
}

// Value marshals the log to JSON for persistence.
func (h StatusHistory) Value() (driver.Value, error) {
	if h == nil {
		h = StatusHistory{}
	}
	data, err := json.Marshal([]StatusHistoryEntry(h))
	if err != nil {
		return nil, fmt.Errorf("marshal status history: %w", err)
	}
	return string(data), nil
}

// Scan unmarshals the JSONB column.
func (h *StatusHistory) Scan(value interface{}) error {
	data, err := jsonBytes(value, "StatusHistory")
	if err != nil {
		return err
	}
	if len(data) == 0 {
		*h = StatusHistory{}
		return nil
	}
	var entries []StatusHistoryEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return fmt.Errorf("unmarshal status history: %w", err)
	}
	*h = entries
	return nil
}

func jsonBytes(value interface{}, target string) ([]byte, error) {
	switch v := value.(type) {
	case nil:
		return nil, nil
	case []byte:
		return v, nil
	case string:
		return []byte(v), nil
	default:
		return nil, fmt.Errorf("unsupported type %T for %s", value, target)
	}
}
