package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/civic-report-api/internal/models"
)

const notificationColumns = `id, type, payload, region, province, city, barangay, is_read, read_by, read_at, created_at`

// NotificationRepository persists staff notifications.
type NotificationRepository struct {
	db *sqlx.DB
}

// NewNotificationRepository constructs the repository.
func NewNotificationRepository(db *sqlx.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

// Create inserts a notification and fills id and created_at.
func (r *NotificationRepository) Create(ctx context.Context, n *models.Notification) error {
	const query = `INSERT INTO notifications (type, payload, region, province, city, barangay)
	VALUES ($1, $2, $3, $4, $5, $6)
	RETURNING id, created_at`
	row := r.db.QueryRowxContext(ctx, query, n.Type, n.Payload, n.Region, n.Province, n.City, n.Barangay)
	if err := row.Scan(&n.ID, &n.CreatedAt); err != nil {
		return fmt.Errorf("create notification: %w", err)
	}
	return nil
}

// List returns notifications addressed to the scope, newest first.
func (r *NotificationRepository) List(ctx context.Context, filter models.NotificationFilter) ([]models.Notification, int, error) {
	var cond conditions
	cond.addLocation(filter.Location)
	if filter.ReadSince != nil {
		cond.add("(read_at IS NULL OR read_at >= $%d)", *filter.ReadSince)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM notifications`+cond.where(), cond.args...); err != nil {
		return nil, 0, fmt.Errorf("count notifications: %w", err)
	}

	limit, offset := paginate(filter.Page, filter.PageSize)
	query := fmt.Sprintf(`SELECT %s FROM notifications%s ORDER BY created_at DESC, id DESC LIMIT %d OFFSET %d`,
		notificationColumns, cond.where(), limit, offset)
	items := make([]models.Notification, 0)
	if err := r.db.SelectContext(ctx, &items, query, cond.args...); err != nil {
		return nil, 0, fmt.Errorf("list notifications: %w", err)
	}
	return items, total, nil
}

// MarkRead flags a notification in scope as read. Re-marking keeps the first reader.
func (r *NotificationRepository) MarkRead(ctx context.Context, id int64, readBy string, at time.Time, scope models.Location) (*models.Notification, error) {
	cond := conditions{}
	cond.add("id = $%d", id)
	cond.addLocation(scope)
	cond.args = append(cond.args, readBy, at)
	byIdx, atIdx := len(cond.args)-1, len(cond.args)
	query := fmt.Sprintf(`UPDATE notifications
	SET is_read = TRUE, read_by = COALESCE(read_by, $%d), read_at = COALESCE(read_at, $%d)%s
	RETURNING %s`, byIdx, atIdx, cond.where(), notificationColumns)
	var n models.Notification
	if err := r.db.QueryRowxContext(ctx, query, cond.args...).StructScan(&n); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("mark notification %d read: %w", id, err)
	}
	return &n, nil
}

// Delete removes a notification in scope; sql.ErrNoRows when nothing matched.
func (r *NotificationRepository) Delete(ctx context.Context, id int64, scope models.Location) error {
	cond := conditions{}
	cond.add("id = $%d", id)
	cond.addLocation(scope)
	result, err := r.db.ExecContext(ctx, `DELETE FROM notifications`+cond.where(), cond.args...)
	if err != nil {
		return fmt.Errorf("delete notification %d: %w", id, err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check notification delete rows: %w", err)
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// PurgeReadBefore deletes read notifications whose read_at precedes cutoff.
func (r *NotificationRepository) PurgeReadBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM notifications WHERE is_read AND read_at IS NOT NULL AND read_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("purge read notifications: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("check purge rows: %w", err)
	}
	return rows, nil
}

// CountUnread counts unread notifications in scope.
func (r *NotificationRepository) CountUnread(ctx context.Context, scope models.Location) (int, error) {
	var cond conditions
	cond.addLocation(scope)
	cond.parts = append(cond.parts, "NOT is_read")
	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM notifications`+cond.where(), cond.args...); err != nil {
		return 0, fmt.Errorf("count unread notifications: %w", err)
	}
	return total, nil
}
