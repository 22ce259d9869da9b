package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestStatusHistoryScan(t *testing.T) {
	var h StatusHistory
	require.NoError(t, h.Scan([]byte(`[{"label":"pending","updated_by":"Ana Cruz","updated_at":"2026-10-01T08:00:00Z"}]`)))
	require.Len(t, h, 1)
	last, ok := h.Last()
	require.True(t, ok)
	require.Equal(t, "Ana Cruz", last.UpdatedBy)

	require.NoError(t, h.Scan(nil))
	require.Empty(t, h)
	require.Error(t, h.Scan(42))
}

func TestStatusHistoryEntryValue(t *testing.T) {
	entry := StatusHistoryEntry{Label: "unclaimed", UpdatedBy: SystemActor, UpdatedAt: time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)}
	require.NoError(t, entry.Validate())

	v, err := entry.Value()
	require.NoError(t, err)
	require.JSONEq(t, `[{"label":"unclaimed","updated_by":"System","updated_at":"2026-10-01T00:00:00Z"}]`, v.(string))

	require.Error(t, StatusHistoryEntry{Label: "x", UpdatedAt: time.Now()}.Validate())
}

func TestLocationComparisons(t *testing.T) {
	a := Location{Region: "NCR", Province: "Metro Manila", City: "Quezon City", Barangay: "Bagong Silangan"}
	b := Location{Region: "ncr", Province: "metro manila", City: "quezon city ", Barangay: "bagong silangan"}
	require.True(t, a.SameBarangay(b))
	b.Barangay = "Commonwealth"
	require.False(t, a.SameBarangay(b))
	require.True(t, a.SameCity(b))
}
