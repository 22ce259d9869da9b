package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/civic-report-api/internal/models"
)

const announcementColumns = `id, title, content, scope_city, created_by, created_at`

// AnnouncementRepository persists announcements.
type AnnouncementRepository struct {
	db *sqlx.DB
}

// NewAnnouncementRepository constructs the repository.
func NewAnnouncementRepository(db *sqlx.DB) *AnnouncementRepository {
	return &AnnouncementRepository{db: db}
}

// Create inserts an announcement.
func (r *AnnouncementRepository) Create(ctx context.Context, a *models.Announcement) error {
	const query = `INSERT INTO announcements (title, content, scope_city, created_by)
	VALUES ($1, $2, $3, $4) RETURNING id, created_at`
	if err := r.db.QueryRowxContext(ctx, query, a.Title, a.Content, a.ScopeCity, a.CreatedBy).Scan(&a.ID, &a.CreatedAt); err != nil {
		return fmt.Errorf("create announcement: %w", err)
	}
	return nil
}

// List returns announcements newest first. A non-empty city limits the list to that city's and
// the global announcements.
func (r *AnnouncementRepository) List(ctx context.Context, city string, page, size int) ([]models.Announcement, int, error) {
	var cond conditions
	if c := strings.TrimSpace(city); c != "" {
		cond.add("(scope_city IS NULL OR LOWER(scope_city) = LOWER($%d))", c)
	}
	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM announcements`+cond.where(), cond.args...); err != nil {
		return nil, 0, fmt.Errorf("count announcements: %w", err)
	}
	limit, offset := paginate(page, size)
	query := fmt.Sprintf(`SELECT %s FROM announcements%s ORDER BY created_at DESC, id DESC LIMIT %d OFFSET %d`,
		announcementColumns, cond.where(), limit, offset)
	items := make([]models.Announcement, 0)
	if err := r.db.SelectContext(ctx, &items, query, cond.args...); err != nil {
		return nil, 0, fmt.Errorf("list announcements: %w", err)
	}
	return items, total, nil
}

// Delete removes an announcement; sql.ErrNoRows when missing.
func (r *AnnouncementRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM announcements WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete announcement %d: %w", id, err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check announcement delete rows: %w", err)
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}
