package dto

// CreateAnnouncementRequest publishes a notice. A missing scope_city targets every city.
type CreateAnnouncementRequest struct {
	Title     string  `json:"title" validate:"required,notblank,max=200"`
	Content   string  `json:"content" validate:"required,notblank"`
	ScopeCity *string `json:"scope_city,omitempty"`
}
