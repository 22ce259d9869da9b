package models

import "time"

// AccountStatus is the approval state of a staff account.
type AccountStatus string

const (
	AccountPending  AccountStatus = "pending"
	AccountApproved AccountStatus = "approved"
	AccountRejected AccountStatus = "rejected"
)

// Account is an LGU or barangay staff login stored in lgu_accounts.
type Account struct {
	ID           int64    `db:"id" json:"id"`
	FirstName    string   `db:"first_name" json:"first_name"`
	LastName     string   `db:"last_name" json:"last_name"`
	Email        string   `db:"email" json:"email"`
	PasswordHash string   `db:"password_hash" json:"-"`
	Role         UserRole `db:"role" json:"role"`
	Location
	Status    AccountStatus `db:"status" json:"status"`
	ActionBy  *string       `db:"action_by" json:"action_by,omitempty"`
	CreatedAt time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt time.Time     `db:"updated_at" json:"updated_at"`
}

// AccountFilter scopes account listings.
type AccountFilter struct {
	Status   *AccountStatus
	Role     *UserRole
	Page     int
	PageSize int
}

// VerificationStatus is the ID verification state of a mobile user.
type VerificationStatus string

const (
	VerificationUnverified VerificationStatus = "unverified"
	VerificationPending    VerificationStatus = "pending"
	VerificationVerified   VerificationStatus = "verified"
	VerificationRejected   VerificationStatus = "rejected"
)

// MobileUser is a citizen account of the mobile app.
type MobileUser struct {
	ID           int64  `db:"id" json:"id"`
	FirstName    string `db:"first_name" json:"first_name"`
	LastName     string `db:"last_name" json:"last_name"`
	Email        string `db:"email" json:"email"`
	PasswordHash string `db:"password_hash" json:"-"`
	Location
	VerificationStatus VerificationStatus `db:"verification_status" json:"verification_status"`
	CreatedAt          time.Time          `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time          `db:"updated_at" json:"updated_at"`
}

// FullName joins first and last name.
func (u MobileUser) FullName() string {
	return u.FirstName + " " + u.LastName
}
