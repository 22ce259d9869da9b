package dto

import "strings"

// RegisterAccountRequest is the public staff sign-up body.
type RegisterAccountRequest struct {
	FirstName string `json:"first_name" validate:"required,max=80"`
	LastName  string `json:"last_name" validate:"required,max=80"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=8,max=72"`
	Role      string `json:"role" validate:"required,oneof=lgu barangay"`
	Region    string `json:"region" validate:"required"`
	Province  string `json:"province" validate:"required"`
	City      string `json:"city" validate:"required"`
	Barangay  string `json:"barangay" validate:"required_if=Role barangay"`
}

// UpdateAccountStatusRequest approves or rejects a pending account.
type UpdateAccountStatusRequest struct {
	Actor
	Status string `json:"status" validate:"required,oneof=approved rejected"`
}

// AccountListQuery filters GET /api/admin/accounts.
type AccountListQuery struct {
	Status   string `form:"status"`
	Role     string `form:"role"`
	Page     int    `form:"page"`
	PageSize int    `form:"page_size"`
}

// RegisterMobileUserRequest is the public citizen sign-up body.
type RegisterMobileUserRequest struct {
	FirstName string `json:"first_name" validate:"required,max=80"`
	LastName  string `json:"last_name" validate:"required,max=80"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=8,max=72"`
	Region    string `json:"region" validate:"required"`
	Province  string `json:"province" validate:"required"`
	City      string `json:"city" validate:"required"`
	Barangay  string `json:"barangay" validate:"required"`
}

// ReviewVerificationRequest settles a pending ID verification.
type ReviewVerificationRequest struct {
	Status string `json:"status" validate:"required,oneof=verified rejected"`
}

// Normalize trims the text fields and lowercases the email. The password is kept as sent.
func (r *RegisterAccountRequest) Normalize() {
	r.FirstName = strings.TrimSpace(r.FirstName)
	r.LastName = strings.TrimSpace(r.LastName)
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	r.Role = strings.TrimSpace(r.Role)
	r.Region = strings.TrimSpace(r.Region)
	r.Province = strings.TrimSpace(r.Province)
	r.City = strings.TrimSpace(r.City)
	r.Barangay = strings.TrimSpace(r.Barangay)
}

// Normalize trims the text fields and lowercases the email. The password is kept as sent.
func (r *RegisterMobileUserRequest) Normalize() {
	r.FirstName = strings.TrimSpace(r.FirstName)
	r.LastName = strings.TrimSpace(r.LastName)
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	r.Region = strings.TrimSpace(r.Region)
	r.Province = strings.TrimSpace(r.Province)
	r.City = strings.TrimSpace(r.City)
	r.Barangay = strings.TrimSpace(r.Barangay)
}
