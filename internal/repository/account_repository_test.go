package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/civic-report-api/internal/models"
)

var accountCols = []string{"id", "first_name", "last_name", "email", "password_hash", "role", "region", "province", "city",
	"barangay", "status", "action_by", "created_at", "updated_at"}

func TestAccountCreateDuplicate(t *testing.T) {
	db, mock := newRepoMock(t)
	repo := NewAccountRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO lgu_accounts")).
		WillReturnError(&pq.Error{Code: "23505", Message: "duplicate key value"})

	err := repo.Create(context.Background(), &models.Account{Email: "ana@qc.gov.ph", Role: models.RoleBarangay, Status: models.AccountPending})
	require.ErrorIs(t, err, ErrDuplicate)
}

func TestAccountUpdateStatusOnlyFromPending(t *testing.T) {
	db, mock := newRepoMock(t)
	repo := NewAccountRepository(db)
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta("WHERE id = $3 AND status = $4")).
		WithArgs(models.AccountApproved, "Super Admin", int64(2), models.AccountPending).
		WillReturnRows(sqlmock.NewRows(accountCols).AddRow(int64(2), "Ana", "Cruz", "ana@qc.gov.ph", "hash", "barangay",
			"NCR", "Metro Manila", "Quezon City", "San Isidro", "approved", "Super Admin", now, now))

	a, err := repo.UpdateStatus(context.Background(), 2, models.AccountPending, models.AccountApproved, "Super Admin")
	require.NoError(t, err)
	assert.Equal(t, models.AccountApproved, a.Status)

	mock.ExpectQuery(regexp.QuoteMeta("UPDATE lgu_accounts")).WillReturnRows(sqlmock.NewRows(accountCols))
	_, err = repo.UpdateStatus(context.Background(), 2, models.AccountPending, models.AccountRejected, "Super Admin")
	require.ErrorIs(t, err, sql.ErrNoRows)
}

func TestAccountBarangayDirectory(t *testing.T) {
	db, mock := newRepoMock(t)
	repo := NewAccountRepository(db)
	city := models.Location{Region: "NCR", Province: "Metro Manila", City: "Quezon City", Barangay: "ignored"}

	mock.ExpectQuery(regexp.QuoteMeta("SELECT DISTINCT barangay FROM lgu_accounts WHERE role = $1 AND status = $2 AND LOWER(region) = LOWER($3)")).
		WithArgs(models.RoleBarangay, models.AccountApproved, "NCR", "Metro Manila", "Quezon City").
		WillReturnRows(sqlmock.NewRows([]string{"barangay"}).AddRow("Commonwealth").AddRow("San Isidro"))

	names, err := repo.ListBarangays(context.Background(), city)
	require.NoError(t, err)
	assert.Equal(t, []string{"Commonwealth", "San Isidro"}, names)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS (SELECT 1 FROM lgu_accounts WHERE role = $1")).
		WithArgs(models.RoleBarangay, models.AccountApproved, "NCR", "Metro Manila", "Quezon City", "Commonwealth").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	city.Barangay = "Commonwealth"
	ok, err := repo.BarangayExists(context.Background(), city)
	require.NoError(t, err)
	assert.True(t, ok)
	require.NoError(t, mock.ExpectationsWereMet())
}
