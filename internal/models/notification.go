package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// NotificationType enumerates persisted notification kinds.
type NotificationType string

const (
	NotificationMobileRegistered    NotificationType = "mobileRegistered"
	NotificationVerificationRequest NotificationType = "verificationRequest"
	NotificationNewBarangayReport   NotificationType = "newBarangayReport"
	NotificationNewDocumentRequest  NotificationType = "newDocumentRequest"
)

// NotificationPayload is the JSONB body describing what happened.
type NotificationPayload struct {
	ActorName    string `json:"actor_name"`
	IncidentType string `json:"incident_type,omitempty"`
	DocumentType string `json:"document_type,omitempty"`
	EntityID     int64  `json:"entity_id,omitempty"`
}

// Value marshals the payload for persistence.
func (p NotificationPayload) Value() (driver.Value, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("marshal notification payload: %w", err)
	}
	return string(data), nil
}

// Scan unmarshals the JSONB column.
func (p *NotificationPayload) Scan(value interface{}) error {
	data, err := jsonBytes(value, "NotificationPayload")
	if err != nil {
		return err
	}
	if len(data) == 0 {
		*p = NotificationPayload{}
		return nil
	}
	if err := json.Unmarshal(data, p); err != nil {
		return fmt.Errorf("unmarshal notification payload: %w", err)
	}
	return nil
}

// Notification is a persisted staff notification addressed to a location scope.
type Notification struct {
	ID      int64               `db:"id" json:"id"`
	Type    NotificationType    `db:"type" json:"type"`
	Payload NotificationPayload `db:"payload" json:"payload"`
	Location
	IsRead    bool       `db:"is_read" json:"is_read"`
	ReadBy    *string    `db:"read_by" json:"read_by,omitempty"`
	ReadAt    *time.Time `db:"read_at" json:"read_at,omitempty"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
}

func (n Notification) FeedID() int64          { return n.ID }
func (n Notification) FeedTime() time.Time    { return n.CreatedAt }
func (n Notification) FeedReadAt() *time.Time { return n.ReadAt }

// NotificationFilter scopes notification listings.
type NotificationFilter struct {
	Location
	// ReadSince hides notifications read before it. Unread ones always match.
	ReadSince *time.Time
	Page      int
	PageSize  int
}
