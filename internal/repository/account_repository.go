package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/civic-report-api/internal/models"
)

const accountColumns = `id, first_name, last_name, email, password_hash, role, region, province, city, barangay,
       status, action_by, created_at, updated_at`

// AccountRepository persists staff accounts in lgu_accounts.
type AccountRepository struct {
	db *sqlx.DB
}

// NewAccountRepository constructs the repository.
func NewAccountRepository(db *sqlx.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

// Create inserts an account; ErrDuplicate when the email is taken.
func (r *AccountRepository) Create(ctx context.Context, a *models.Account) error {
	const query = `INSERT INTO lgu_accounts
	(first_name, last_name, email, password_hash, role, region, province, city, barangay, status)
	VALUES (:first_name, :last_name, :email, :password_hash, :role, :region, :province, :city, :barangay, :status)
	RETURNING id, created_at, updated_at`
	rows, err := r.db.NamedQueryContext(ctx, query, a)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("create account %s: %w", a.Email, ErrDuplicate)
		}
		return fmt.Errorf("create account: %w", err)
	}
	defer rows.Close() //nolint:errcheck
	if rows.Next() {
		if err := rows.Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return fmt.Errorf("scan account id: %w", err)
		}
	}
	return rows.Err()
}

// GetByID returns sql.ErrNoRows when missing.
func (r *AccountRepository) GetByID(ctx context.Context, id int64) (*models.Account, error) {
	var a models.Account
	if err := r.db.GetContext(ctx, &a, `SELECT `+accountColumns+` FROM lgu_accounts WHERE id = $1`, id); err != nil {
		return nil, err
	}
	return &a, nil
}

// List returns accounts matching the filter, newest first.
func (r *AccountRepository) List(ctx context.Context, filter models.AccountFilter) ([]models.Account, int, error) {
	var cond conditions
	if filter.Status != nil {
		cond.add("status = $%d", *filter.Status)
	}
	if filter.Role != nil {
		cond.add("role = $%d", *filter.Role)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM lgu_accounts`+cond.where(), cond.args...); err != nil {
		return nil, 0, fmt.Errorf("count accounts: %w", err)
	}
	limit, offset := paginate(filter.Page, filter.PageSize)
	query := fmt.Sprintf(`SELECT %s FROM lgu_accounts%s ORDER BY created_at DESC, id DESC LIMIT %d OFFSET %d`,
		accountColumns, cond.where(), limit, offset)
	accounts := make([]models.Account, 0)
	if err := r.db.SelectContext(ctx, &accounts, query, cond.args...); err != nil {
		return nil, 0, fmt.Errorf("list accounts: %w", err)
	}
	return accounts, total, nil
}

// UpdateStatus moves an account from one status to another; sql.ErrNoRows when it is no longer
// in from.
func (r *AccountRepository) UpdateStatus(ctx context.Context, id int64, from, to models.AccountStatus, actionBy string) (*models.Account, error) {
	query := `UPDATE lgu_accounts SET status = $1, action_by = $2, updated_at = NOW()
	WHERE id = $3 AND status = $4
	RETURNING ` + accountColumns
	var a models.Account
	if err := r.db.QueryRowxContext(ctx, query, to, actionBy, id, from).StructScan(&a); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("update account %d status: %w", id, err)
	}
	return &a, nil
}

// ListBarangays returns the barangays of a city that have an approved barangay account.
func (r *AccountRepository) ListBarangays(ctx context.Context, city models.Location) ([]string, error) {
	cond := conditions{}
	cond.add("role = $%d", models.RoleBarangay)
	cond.add("status = $%d", models.AccountApproved)
	cond.addLocation(models.Location{Region: city.Region, Province: city.Province, City: city.City})
	names := make([]string, 0)
	query := `SELECT DISTINCT barangay FROM lgu_accounts` + cond.where() + ` ORDER BY barangay`
	if err := r.db.SelectContext(ctx, &names, query, cond.args...); err != nil {
		return nil, fmt.Errorf("list barangays: %w", err)
	}
	return names, nil
}

// BarangayExists reports whether loc names a barangay in the directory.
func (r *AccountRepository) BarangayExists(ctx context.Context, loc models.Location) (bool, error) {
	cond := conditions{}
	cond.add("role = $%d", models.RoleBarangay)
	cond.add("status = $%d", models.AccountApproved)
	cond.addLocation(loc)
	var exists bool
	if err := r.db.GetContext(ctx, &exists, `SELECT EXISTS (SELECT 1 FROM lgu_accounts`+cond.where()+`)`, cond.args...); err != nil {
		return false, fmt.Errorf("check barangay directory: %w", err)
	}
	return exists, nil
}

// CountPending counts accounts awaiting approval.
func (r *AccountRepository) CountPending(ctx context.Context) (int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM lgu_accounts WHERE status = $1`, models.AccountPending); err != nil {
		return 0, fmt.Errorf("count pending accounts: %w", err)
	}
	return total, nil
}
