package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/civic-report-api/internal/models"
)

var notificationCols = []string{"id", "type", "payload", "region", "province", "city", "barangay", "is_read", "read_by", "read_at", "created_at"}

func TestNotificationCreate(t *testing.T) {
	db, mock := newRepoMock(t)
	repo := NewNotificationRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO notifications")).
		WithArgs(models.NotificationNewBarangayReport, sqlmock.AnyArg(), "NCR", "Metro Manila", "Quezon City", "San Isidro").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(int64(11), time.Now()))

	n := &models.Notification{
		Type:     models.NotificationNewBarangayReport,
		Payload:  models.NotificationPayload{ActorName: "Juan Dela Cruz", IncidentType: "flood", EntityID: 3},
		Location: models.Location{Region: "NCR", Province: "Metro Manila", City: "Quezon City", Barangay: "San Isidro"},
	}
	require.NoError(t, repo.Create(context.Background(), n))
	assert.Equal(t, int64(11), n.ID)
}

func TestNotificationMarkRead(t *testing.T) {
	db, mock := newRepoMock(t)
	repo := NewNotificationRepository(db)
	at := time.Date(2026, 10, 2, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("SET is_read = TRUE, read_by = COALESCE(read_by, $3), read_at = COALESCE(read_at, $4) WHERE id = $1 AND LOWER(barangay) = LOWER($2)")).
		WithArgs(int64(11), "San Isidro", "Ana Cruz", at).
		WillReturnRows(sqlmock.NewRows(notificationCols).
			AddRow(int64(11), "newBarangayReport", `{"actor_name":"Juan"}`, "NCR", "Metro Manila", "Quezon City", "San Isidro", true, "Ana Cruz", at, at))

	n, err := repo.MarkRead(context.Background(), 11, "Ana Cruz", at, models.Location{Barangay: "San Isidro"})
	require.NoError(t, err)
	assert.True(t, n.IsRead)
	assert.Equal(t, "Juan", n.Payload.ActorName)

	mock.ExpectQuery(regexp.QuoteMeta("UPDATE notifications")).WillReturnRows(sqlmock.NewRows(notificationCols))
	_, err = repo.MarkRead(context.Background(), 12, "Ana Cruz", at, models.Location{})
	require.ErrorIs(t, err, sql.ErrNoRows)
}

func TestNotificationListAppliesReadCutoff(t *testing.T) {
	db, mock := newRepoMock(t)
	repo := NewNotificationRepository(db)
	cutoff := time.Date(2026, 9, 16, 0, 0, 0, 0, time.UTC)
	created := cutoff.Add(48 * time.Hour)

	where := "WHERE LOWER(city) = LOWER($1) AND LOWER(barangay) = LOWER($2) AND (read_at IS NULL OR read_at >= $3)"
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM notifications " + where)).
		WithArgs("Quezon City", "San Isidro", cutoff).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(regexp.QuoteMeta(where + " ORDER BY created_at DESC, id DESC")).
		WithArgs("Quezon City", "San Isidro", cutoff).
		WillReturnRows(sqlmock.NewRows(notificationCols).
			AddRow(int64(4), "newDocumentRequest", `{"actor_name":"Juan"}`, "NCR", "Metro Manila", "Quezon City", "San Isidro", false, nil, nil, created))

	items, total, err := repo.List(context.Background(), models.NotificationFilter{
		Location:  models.Location{City: "Quezon City", Barangay: "San Isidro"},
		ReadSince: &cutoff,
		Page:      1,
		PageSize:  20,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, items, 1)
	assert.Nil(t, items[0].ReadAt)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestNotificationPurgeReadBefore(t *testing.T) {
	db, mock := newRepoMock(t)
	repo := NewNotificationRepository(db)
	cutoff := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM notifications WHERE is_read AND read_at IS NOT NULL AND read_at < $1")).
		WithArgs(cutoff).
		WillReturnResult(sqlmock.NewResult(0, 3))

	purged, err := repo.PurgeReadBefore(context.Background(), cutoff)
	require.NoError(t, err)
	assert.EqualValues(t, 3, purged)
}

func TestNotificationCountUnread(t *testing.T) {
	db, mock := newRepoMock(t)
	repo := NewNotificationRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM notifications WHERE LOWER(city) = LOWER($1) AND NOT is_read")).
		WithArgs("Quezon City").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))

	n, err := repo.CountUnread(context.Background(), models.Location{City: "Quezon City"})
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}
