package models

import (
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// JWTClaims is the payload of bearer tokens issued by the identity service.
type JWTClaims struct {
	UserID    int64    `json:"id"`
	Role      UserRole `json:"role"`
	Email     string   `json:"email,omitempty"`
	FirstName string   `json:"first_name"`
	LastName  string   `json:"last_name"`
	Region    string   `json:"region,omitempty"`
	Province  string   `json:"province,omitempty"`
	City      string   `json:"city,omitempty"`
	Barangay  string   `json:"barangay,omitempty"`
	jwt.RegisteredClaims
}

// FullName joins first and last name the way history entries record actors.
func (c *JWTClaims) FullName() string {
	return strings.TrimSpace(strings.TrimSpace(c.FirstName) + " " + strings.TrimSpace(c.LastName))
}

// Location returns the caller's administrative scope.
func (c *JWTClaims) Location() Location {
	return Location{Region: c.Region, Province: c.Province, City: c.City, Barangay: c.Barangay}
}
