package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/civic-report-api/internal/models"
)

const documentRequestColumns = `id, requester_id, requester_name, region, province, city, barangay, document_type, purpose,
       status, status_history, pickup_deadline, rejection_reason, created_at, updated_at`

// DocumentRequestRepository persists document requests.
type DocumentRequestRepository struct {
	db *sqlx.DB
}

// NewDocumentRequestRepository constructs the repository.
func NewDocumentRequestRepository(db *sqlx.DB) *DocumentRequestRepository {
	return &DocumentRequestRepository{db: db}
}

// Create inserts a request and fills its generated columns.
func (r *DocumentRequestRepository) Create(ctx context.Context, req *models.DocumentRequest) error {
	const query = `INSERT INTO document_requests
	(requester_id, requester_name, region, province, city, barangay, document_type, purpose, status, status_history)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	RETURNING id, created_at, updated_at`
	row := r.db.QueryRowxContext(ctx, query,
		req.RequesterID, req.RequesterName, req.Region, req.Province, req.City, req.Barangay,
		req.DocumentType, req.Purpose, req.Status, req.StatusHistory,
	)
	if err := row.Scan(&req.ID, &req.CreatedAt, &req.UpdatedAt); err != nil {
		return fmt.Errorf("create document request: %w", err)
	}
	return nil
}

// GetByID returns sql.ErrNoRows when the request does not exist.
func (r *DocumentRequestRepository) GetByID(ctx context.Context, id int64) (*models.DocumentRequest, error) {
	query := `SELECT ` + documentRequestColumns + ` FROM document_requests WHERE id = $1`
	var req models.DocumentRequest
	if err := r.db.GetContext(ctx, &req, query, id); err != nil {
		return nil, err
	}
	return &req, nil
}

// List returns requests in the filter scope, newest first, plus the total count.
func (r *DocumentRequestRepository) List(ctx context.Context, filter models.DocumentRequestFilter) ([]models.DocumentRequest, int, error) {
	var cond conditions
	cond.addLocation(filter.Location)
	if filter.RequesterID != nil {
		cond.add("requester_id = $%d", *filter.RequesterID)
	}
	if filter.Status != nil {
		cond.add("status = $%d", *filter.Status)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM document_requests`+cond.where(), cond.args...); err != nil {
		return nil, 0, fmt.Errorf("count document requests: %w", err)
	}

	limit, offset := paginate(filter.Page, filter.PageSize)
	query := fmt.Sprintf(`SELECT %s FROM document_requests%s ORDER BY created_at DESC, id DESC LIMIT %d OFFSET %d`,
		documentRequestColumns, cond.where(), limit, offset)
	requests := make([]models.DocumentRequest, 0)
	if err := r.db.SelectContext(ctx, &requests, query, cond.args...); err != nil {
		return nil, 0, fmt.Errorf("list document requests: %w", err)
	}
	return requests, total, nil
}

// Transition applies a guarded status change; sql.ErrNoRows when the row left t.From.
func (r *DocumentRequestRepository) Transition(ctx context.Context, t models.DocumentTransition) (*models.DocumentRequest, error) {
	query := `UPDATE document_requests
	SET status = $1,
	    status_history = status_history || $2::jsonb,
	    pickup_deadline = CASE WHEN $3 THEN $4 ELSE pickup_deadline END,
	    rejection_reason = COALESCE($5, rejection_reason),
	    updated_at = NOW()
	WHERE id = $6 AND status = $7
	RETURNING ` + documentRequestColumns
	var req models.DocumentRequest
	err := r.db.QueryRowxContext(ctx, query,
		t.To, t.Entry, t.SetDeadline, t.PickupDeadline, t.RejectionReason, t.ID, t.From,
	).StructScan(&req)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("transition document request %d: %w", t.ID, err)
	}
	return &req, nil
}

// ExpireOverduePickups flips every ready-for-pick-up request whose deadline passed before now to
// unclaimed, appending entry, and returns the rows it changed. A row already flipped no longer
// matches, so concurrent callers never double-process it.
func (r *DocumentRequestRepository) ExpireOverduePickups(ctx context.Context, now time.Time, entry models.StatusHistoryEntry) ([]models.DocumentRequest, error) {
	query := `UPDATE document_requests
	SET status = $1, status_history = status_history || $2::jsonb, updated_at = NOW()
	WHERE status = $3 AND pickup_deadline IS NOT NULL AND pickup_deadline < $4
	RETURNING ` + documentRequestColumns
	expired := make([]models.DocumentRequest, 0)
	if err := r.db.SelectContext(ctx, &expired, query,
		models.DocumentUnclaimed, entry, models.DocumentReadyForPickup, now,
	); err != nil {
		return nil, fmt.Errorf("expire overdue pickups: %w", err)
	}
	return expired, nil
}

// CountByStatus aggregates requests in scope.
func (r *DocumentRequestRepository) CountByStatus(ctx context.Context, scope models.Location) ([]models.StatusCount, error) {
	var cond conditions
	cond.addLocation(scope)
	counts := make([]models.StatusCount, 0)
	query := `SELECT status, COUNT(*) AS count FROM document_requests` + cond.where() + ` GROUP BY status`
	if err := r.db.SelectContext(ctx, &counts, query, cond.args...); err != nil {
		return nil, fmt.Errorf("count document requests by status: %w", err)
	}
	return counts, nil
}
