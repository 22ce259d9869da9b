package models

// UserRole enumerates the principals accepted by the API.
type UserRole string

const (
	RoleSuperAdmin UserRole = "superadmin"
	RoleLGU        UserRole = "lgu"
	RoleBarangay   UserRole = "barangay"
	RoleMobile     UserRole = "mobile"
)

// IsStaff reports whether the role belongs to a dashboard user.
func (r UserRole) IsStaff() bool {
	return r == RoleSuperAdmin || r == RoleLGU || r == RoleBarangay
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
