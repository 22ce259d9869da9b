package models

import "time"

// Announcement is a public notice; a nil ScopeCity targets every city.
type Announcement struct {
	ID        int64     `db:"id" json:"id"`
	Title     string    `db:"title" json:"title"`
	Content   string    `db:"content" json:"content"`
	ScopeCity *string   `db:"scope_city" json:"scope_city,omitempty"`
	CreatedBy string    `db:"created_by" json:"created_by"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
