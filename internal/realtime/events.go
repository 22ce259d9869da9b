package realtime

import (
	"fmt"
	"strings"
	"time"

	"github.com/noah-isme/civic-report-api/internal/models"
)

// Server to client event names.
const (
	EventConnected              = "connected"
	EventNewBarangayReport      = "newBarangayReport"
	EventNewDocumentRequest     = "newDocumentRequest"
	EventDocumentRequestUpdate  = "documentRequestUpdate"
	EventReportStatusUpdate     = "reportStatusUpdate"
	EventMobileUserRegistered   = "mobileUserRegistered"
	EventNewVerificationRequest = "newVerificationRequest"
	EventNewAnnouncement        = "newAnnouncement"
	EventAccountStatusUpdate    = "accountStatusUpdate"
	EventNewAccountRegistration = "newAccountRegistration"
	EventNotificationUpdate     = "notificationUpdate"
	EventError                  = "error"
)

// Client to server event names.
const (
	EventJoinRoom = "joinRoom"
)

// AdminRoom receives every staff event for super admins.
const AdminRoom = "admin"

// Message is the JSON frame exchanged on the socket.
type Message struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data,omitempty"`
}

// ReportStatusUpdate is the payload of reportStatusUpdate.
type ReportStatusUpdate struct {
	ReportID      int64                `json:"reportId"`
	Status        models.ReportStatus  `json:"status"`
	Barangay      string               `json:"barangay"`
	StatusHistory models.StatusHistory `json:"status_history"`
	ProofURL      *string              `json:"proof_url,omitempty"`
}

// DocumentRequestUpdate is the payload of documentRequestUpdate.
type DocumentRequestUpdate struct {
	RequestID       int64                 `json:"requestId"`
	Status          models.DocumentStatus `json:"status"`
	StatusHistory   models.StatusHistory  `json:"status_history"`
	RejectionReason *string               `json:"rejection_reason"`
	PickupDeadline  *time.Time            `json:"pickup_deadline"`
}

// UserRoom addresses a single mobile user.
func UserRoom(userID int64) string { return fmt.Sprintf("user_%d", userID) }

// StaffRoom addresses a single staff account.
func StaffRoom(accountID int64) string { return fmt.Sprintf("staff_%d", accountID) }

// BarangayRoom addresses the staff of one barangay.
func BarangayRoom(loc models.Location) string {
	return "barangay:" + key(loc.Region, loc.Province, loc.City, loc.Barangay)
}

// CityRoom addresses the LGU staff of one city.
func CityRoom(loc models.Location) string {
	return "city:" + key(loc.Region, loc.Province, loc.City)
}

// RoomsFor returns the rooms a verified principal joins on connect.
func RoomsFor(claims *models.JWTClaims) []string {
	if claims == nil {
		return nil
	}
	loc := claims.Location()
	switch claims.Role {
	case models.RoleSuperAdmin:
		return []string{AdminRoom, StaffRoom(claims.UserID)}
	case models.RoleLGU:
		return []string{CityRoom(loc), StaffRoom(claims.UserID)}
	case models.RoleBarangay:
		return []string{BarangayRoom(loc), StaffRoom(claims.UserID)}
	case models.RoleMobile:
		return []string{UserRoom(claims.UserID)}
	default:
		return nil
	}
}

func key(parts ...string) string {
	for i, p := range parts {
		parts[i] = strings.ToLower(strings.TrimSpace(p))
	}
	return strings.Join(parts, "|")
}
