package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/civic-report-api/internal/models"
)

const incidentReportColumns = `id, region, province, city, barangay, incident_type, description, status, status_history,
       media_urls, proof_url, reporter_id, reporter_name, created_at, updated_at`

// IncidentReportRepository persists incident reports.
type IncidentReportRepository struct {
	db *sqlx.DB
}

// NewIncidentReportRepository constructs the repository.
func NewIncidentReportRepository(db *sqlx.DB) *IncidentReportRepository {
	return &IncidentReportRepository{db: db}
}

// Create inserts a report and fills its generated columns.
func (r *IncidentReportRepository) Create(ctx context.Context, report *models.IncidentReport) error {
	const query = `INSERT INTO incident_reports
	(region, province, city, barangay, incident_type, description, status, status_history, media_urls, reporter_id, reporter_name)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	RETURNING id, created_at, updated_at`
	row := r.db.QueryRowxContext(ctx, query,
		report.Region, report.Province, report.City, report.Barangay,
		report.IncidentType, report.Description, report.Status, report.StatusHistory,
		report.MediaURLs, report.ReporterID, report.ReporterName,
	)
	if err := row.Scan(&report.ID, &report.CreatedAt, &report.UpdatedAt); err != nil {
		return fmt.Errorf("create incident report: %w", err)
	}
	return nil
}

// GetByID returns sql.ErrNoRows when the report does not exist.
func (r *IncidentReportRepository) GetByID(ctx context.Context, id int64) (*models.IncidentReport, error) {
	query := `SELECT ` + incidentReportColumns + ` FROM incident_reports WHERE id = $1`
	var report models.IncidentReport
	if err := r.db.GetContext(ctx, &report, query, id); err != nil {
		return nil, err
	}
	return &report, nil
}

// List returns reports in the filter scope, newest first, plus the total count.
func (r *IncidentReportRepository) List(ctx context.Context, filter models.ReportFilter) ([]models.IncidentReport, int, error) {
	var cond conditions
	cond.addLocation(filter.Location)
	if filter.ReporterID != nil {
		cond.add("reporter_id = $%d", *filter.ReporterID)
	}
	if filter.Status != nil {
		cond.add("status = $%d", *filter.Status)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM incident_reports`+cond.where(), cond.args...); err != nil {
		return nil, 0, fmt.Errorf("count incident reports: %w", err)
	}

	limit, offset := paginate(filter.Page, filter.PageSize)
	query := fmt.Sprintf(`SELECT %s FROM incident_reports%s ORDER BY created_at DESC, id DESC LIMIT %d OFFSET %d`,
		incidentReportColumns, cond.where(), limit, offset)
	reports := make([]models.IncidentReport, 0)
	if err := r.db.SelectContext(ctx, &reports, query, cond.args...); err != nil {
		return nil, 0, fmt.Errorf("list incident reports: %w", err)
	}
	return reports, total, nil
}

// Transition moves a report from t.From to t.To and appends t.Entry in one statement. When the
// row is no longer in t.From, sql.ErrNoRows is returned.
func (r *IncidentReportRepository) Transition(ctx context.Context, t models.ReportTransition) (*models.IncidentReport, error) {
	query := `UPDATE incident_reports
	SET status = $1, status_history = status_history || $2::jsonb, proof_url = COALESCE($3, proof_url), updated_at = NOW()
	WHERE id = $4 AND status = $5
	RETURNING ` + incidentReportColumns
	var report models.IncidentReport
	if err := r.db.QueryRowxContext(ctx, query, t.To, t.Entry, t.ProofURL, t.ID, t.From).StructScan(&report); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("transition incident report %d: %w", t.ID, err)
	}
	return &report, nil
}

// Transfer re-scopes a report to another barangay while it is still owned by t.FromBarangay and
// in t.From. sql.ErrNoRows means another writer got there first.
func (r *IncidentReportRepository) Transfer(ctx context.Context, t models.ReportTransfer) (*models.IncidentReport, error) {
	query := `UPDATE incident_reports
	SET status = $1, barangay = $2, status_history = status_history || $3::jsonb, updated_at = NOW()
	WHERE id = $4 AND status = $5 AND LOWER(barangay) = LOWER($6)
	RETURNING ` + incidentReportColumns
	var report models.IncidentReport
	err := r.db.QueryRowxContext(ctx, query,
		models.ReportTransferred, t.NewBarangay, t.Entry, t.ID, t.From, t.FromBarangay,
	).StructScan(&report)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("transfer incident report %d: %w", t.ID, err)
	}
	return &report, nil
}

// Delete removes a report within scope; sql.ErrNoRows when nothing matched.
func (r *IncidentReportRepository) Delete(ctx context.Context, id int64, scope models.Location) error {
	cond := conditions{}
	cond.add("id = $%d", id)
	cond.addLocation(scope)
	result, err := r.db.ExecContext(ctx, `DELETE FROM incident_reports`+cond.where(), cond.args...)
	if err != nil {
		return fmt.Errorf("delete incident report %d: %w", id, err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check incident report delete rows: %w", err)
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// CountByStatus aggregates reports in scope.
func (r *IncidentReportRepository) CountByStatus(ctx context.Context, scope models.Location) ([]models.StatusCount, error) {
	var cond conditions
	cond.addLocation(scope)
	counts := make([]models.StatusCount, 0)
	query := `SELECT status, COUNT(*) AS count FROM incident_reports` + cond.where() + ` GROUP BY status`
	if err := r.db.SelectContext(ctx, &counts, query, cond.args...); err != nil {
		return nil, fmt.Errorf("count incident reports by status: %w", err)
	}
	return counts, nil
}
