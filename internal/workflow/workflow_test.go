package workflow

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/civic-report-api/internal/models"
)

func TestReportTable(t *testing.T) {
	cases := []struct {
		from, to string
		role     models.UserRole
		op       Operation
		err      error
	}{
		{"pending", "under review", models.RoleBarangay, OpStatusUpdate, nil},
		{"pending", "resolved", models.RoleBarangay, OpStatusUpdate, ErrTransitionDenied},
		{"under review", "escalated", models.RoleLGU, OpStatusUpdate, nil},
		{"under review", "transferred", models.RoleBarangay, OpStatusUpdate, ErrDedicatedOperation},
		{"under review", "transferred", models.RoleLGU, OpTransfer, ErrRoleDenied},
		{"under review", "transferred", models.RoleBarangay, OpTransfer, nil},
		{"transferred", "escalated", models.RoleBarangay, OpStatusUpdate, nil},
		{"escalated", "resolved", models.RoleSuperAdmin, OpStatusUpdate, ErrTransitionDenied},
		{"resolved", "pending", models.RoleSuperAdmin, OpStatusUpdate, ErrTransitionDenied},
		{"archived", "pending", models.RoleSuperAdmin, OpStatusUpdate, ErrUnknownStatus},
	}
	for _, tc := range cases {
		_, err := Reports.Check(tc.from, tc.to, tc.role, tc.op)
		if tc.err == nil {
			assert.NoError(t, err, "%s -> %s", tc.from, tc.to)
			continue
		}
		assert.ErrorIs(t, err, tc.err, "%s -> %s", tc.from, tc.to)
	}
}

func TestProofTransitions(t *testing.T) {
	for _, pair := range [][2]string{{"under review", "escalated"}, {"under review", "invalid"}, {"in progress", "resolved"}} {
		rule, err := Reports.Check(pair[0], pair[1], models.RoleBarangay, OpStatusUpdate)
		require.NoError(t, err)
		assert.True(t, rule.RequiresProof, "%s -> %s", pair[0], pair[1])
	}
	rule, err := Reports.Check("under review", "in progress", models.RoleBarangay, OpStatusUpdate)
	require.NoError(t, err)
	assert.False(t, rule.RequiresProof)
}

func TestDocumentTable(t *testing.T) {
	_, err := Documents.Check("submitted", "rejected", models.RoleBarangay, OpStatusUpdate)
	assert.ErrorIs(t, err, ErrDedicatedOperation)
	_, err = Documents.Check("submitted", "rejected", models.RoleBarangay, OpReject)
	assert.NoError(t, err)
	_, err = Documents.Check("accepted", "rejected", models.RoleBarangay, OpReject)
	assert.ErrorIs(t, err, ErrTransitionDenied)

	_, err = Documents.Check("unclaimed", "claimed", models.RoleBarangay, OpStatusUpdate)
	assert.NoError(t, err)
	_, err = Documents.Check("unclaimed", "claimed", models.RoleSuperAdmin, OpStatusUpdate)
	assert.ErrorIs(t, err, ErrRoleDenied)

	assert.True(t, Documents.Terminal("claimed"))
	assert.True(t, Documents.Terminal("rejected"))
	assert.False(t, Documents.Terminal("unclaimed"))
}

func TestNextHidesDedicatedEdges(t *testing.T) {
	assert.Equal(t, []string{"in progress", "invalid", "escalated"}, Reports.Next("under review", models.RoleBarangay))
	assert.Equal(t, []string{"accepted"}, Documents.Next("submitted", models.RoleBarangay))
	assert.Empty(t, Documents.Next("unclaimed", models.RoleLGU))
	assert.Equal(t, []string{"under review"}, Reports.Sources("transferred"))
}

func TestValidateEntry(t *testing.T) {
	now := time.Now()
	require.NoError(t, Documents.ValidateEntry(models.StatusHistoryEntry{Label: "unclaimed", UpdatedBy: "System", UpdatedAt: now}))
	require.ErrorIs(t, Documents.ValidateEntry(models.StatusHistoryEntry{Label: "lost", UpdatedBy: "System", UpdatedAt: now}), ErrUnknownStatus)
	require.Error(t, Reports.ValidateEntry(models.StatusHistoryEntry{Label: "pending", UpdatedAt: now}))
}

func TestTableCoversAllStates(t *testing.T) {
	table := Reports.Table()
	assert.Len(t, table, len(Reports.States()))
	assert.Empty(t, table["resolved"])
}
