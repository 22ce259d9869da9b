package models

import "strings"

// Location is the administrative tuple every report, request, account and notification is
// scoped by.
type Location struct {
	Region   string `db:"region" json:"region"`
	Province string `db:"province" json:"province"`
	City     string `db:"city" json:"city"`
	Barangay string `db:"barangay" json:"barangay"`
}

// SameBarangay compares two locations case-insensitively down to the barangay.
func (l Location) SameBarangay(o Location) bool {
	return l.SameCity(o) && strings.EqualFold(strings.TrimSpace(l.Barangay), strings.TrimSpace(o.Barangay))
}

// SameCity compares two locations case-insensitively down to the city.
func (l Location) SameCity(o Location) bool {
	return strings.EqualFold(strings.TrimSpace(l.Region), strings.TrimSpace(o.Region)) &&
		strings.EqualFold(strings.TrimSpace(l.Province), strings.TrimSpace(o.Province)) &&
		strings.EqualFold(strings.TrimSpace(l.City), strings.TrimSpace(o.City))
}
