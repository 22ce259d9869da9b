package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/civic-report-api/internal/models"
)

const mobileUserColumns = `id, first_name, last_name, email, password_hash, region, province, city, barangay,
       verification_status, created_at, updated_at`

// MobileUserRepository persists citizen accounts.
type MobileUserRepository struct {
	db *sqlx.DB
}

// NewMobileUserRepository constructs the repository.
func NewMobileUserRepository(db *sqlx.DB) *MobileUserRepository {
	return &MobileUserRepository{db: db}
}

// Create inserts a mobile user; ErrDuplicate when the email is taken.
func (r *MobileUserRepository) Create(ctx context.Context, u *models.MobileUser) error {
	const query = `INSERT INTO mobile_users
	(first_name, last_name, email, password_hash, region, province, city, barangay, verification_status)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	RETURNING id, created_at, updated_at`
	err := r.db.QueryRowxContext(ctx, query,
		u.FirstName, u.LastName, u.Email, u.PasswordHash, u.Region, u.Province, u.City, u.Barangay, u.VerificationStatus,
	).Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("create mobile user %s: %w", u.Email, ErrDuplicate)
		}
		return fmt.Errorf("create mobile user: %w", err)
	}
	return nil
}

// GetByID returns sql.ErrNoRows when missing.
func (r *MobileUserRepository) GetByID(ctx context.Context, id int64) (*models.MobileUser, error) {
	var u models.MobileUser
	if err := r.db.GetContext(ctx, &u, `SELECT `+mobileUserColumns+` FROM mobile_users WHERE id = $1`, id); err != nil {
		return nil, err
	}
	return &u, nil
}

// UpdateVerification moves a user into to when its current status is one of from.
func (r *MobileUserRepository) UpdateVerification(ctx context.Context, id int64, from []models.VerificationStatus, to models.VerificationStatus, scope models.Location) (*models.MobileUser, error) {
	allowed := make([]string, len(from))
	for i, s := range from {
		allowed[i] = string(s)
	}
	cond := conditions{}
	cond.args = append(cond.args, to)
	cond.add("id = $%d", id)
	cond.add("verification_status = ANY($%d)", pq.Array(allowed))
	cond.addLocation(scope)
	query := `UPDATE mobile_users SET verification_status = $1, updated_at = NOW()` + cond.where() + ` RETURNING ` + mobileUserColumns
	var u models.MobileUser
	if err := r.db.QueryRowxContext(ctx, query, cond.args...).StructScan(&u); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("update mobile user %d verification: %w", id, err)
	}
	return &u, nil
}
