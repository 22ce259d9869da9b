package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/civic-report-api/internal/models"
)

func TestMobileUserUpdateVerification(t *testing.T) {
	db, mock := newRepoMock(t)
	repo := NewMobileUserRepository(db)
	now := time.Now()
	cols := []string{"id", "first_name", "last_name", "email", "password_hash", "region", "province", "city", "barangay",
		"verification_status", "created_at", "updated_at"}

	mock.ExpectQuery(regexp.QuoteMeta("UPDATE mobile_users SET verification_status = $1, updated_at = NOW() WHERE id = $2 AND verification_status = ANY($3)")).
		WithArgs(models.VerificationPending, int64(21), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows(cols).AddRow(int64(21), "Juan", "Dela Cruz", "juan@example.com", "hash",
			"NCR", "Metro Manila", "Quezon City", "San Isidro", "pending", now, now))

	u, err := repo.UpdateVerification(context.Background(), 21,
		[]models.VerificationStatus{models.VerificationUnverified, models.VerificationRejected}, models.VerificationPending, models.Location{})
	require.NoError(t, err)
	assert.Equal(t, models.VerificationPending, u.VerificationStatus)
	assert.Equal(t, "Juan Dela Cruz", u.FullName())
	require.NoError(t, mock.ExpectationsWereMet())
}
