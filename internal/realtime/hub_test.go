package realtime

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/civic-report-api/internal/models"
)

type countingMetrics struct {
	opened, closed, sent, dropped int
}

func (m *countingMetrics) SocketOpened()       { m.opened++ }
func (m *countingMetrics) SocketClosed()       { m.closed++ }
func (m *countingMetrics) EventSent(string)    { m.sent++ }
func (m *countingMetrics) EventDropped(string) { m.dropped++ }

var sanIsidro = models.Location{Region: "NCR", Province: "Metro Manila", City: "Quezon City", Barangay: "San Isidro"}

func barangayClaims(id int64, barangay string) *models.JWTClaims {
	return &models.JWTClaims{UserID: id, Role: models.RoleBarangay, Region: "NCR", Province: "Metro Manila", City: "Quezon City", Barangay: barangay}
}

func decode(t *testing.T, frame []byte) Message {
	t.Helper()
	var msg struct {
		Event string          `json:"event"`
		Data  json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(frame, &msg))
	return Message{Event: msg.Event, Data: msg.Data}
}

func TestEmitIsRoomScoped(t *testing.T) {
	hub := NewHub(4, nil, nil)
	own := hub.Register(barangayClaims(1, "San Isidro"))
	other := hub.Register(barangayClaims(2, "Commonwealth"))

	hub.Emit(context.Background(), BarangayRoom(sanIsidro), EventNewBarangayReport, map[string]int64{"id": 7})

	require.Len(t, own.Send(), 1)
	assert.Equal(t, EventNewBarangayReport, decode(t, <-own.Send()).Event)
	assert.Len(t, other.Send(), 0)
}

func TestBroadcastReachesEveryone(t *testing.T) {
	hub := NewHub(4, nil, nil)
	a := hub.Register(barangayClaims(1, "San Isidro"))
	b := hub.Register(&models.JWTClaims{UserID: 9, Role: models.RoleMobile})

	hub.Broadcast(context.Background(), EventNewAnnouncement, map[string]string{"title": "Road closure"})

	assert.Len(t, a.Send(), 1)
	assert.Len(t, b.Send(), 1)
}

func TestFullBufferDropsInsteadOfBlocking(t *testing.T) {
	metrics := &countingMetrics{}
	hub := NewHub(1, metrics, nil)
	slow := hub.Register(&models.JWTClaims{UserID: 5, Role: models.RoleMobile})

	for i := 0; i < 3; i++ {
		hub.Emit(context.Background(), UserRoom(5), EventDocumentRequestUpdate, i)
	}

	assert.Len(t, slow.Send(), 1)
	assert.Equal(t, 1, metrics.sent)
	assert.Equal(t, 2, metrics.dropped)
}

func TestUnregisterLeavesRooms(t *testing.T) {
	metrics := &countingMetrics{}
	hub := NewHub(2, metrics, nil)
	c := hub.Register(&models.JWTClaims{UserID: 3, Role: models.RoleSuperAdmin})
	assert.ElementsMatch(t, []string{AdminRoom, "staff_3"}, hub.Rooms(c))

	hub.Unregister(c)
	hub.Unregister(c)
	hub.Emit(context.Background(), AdminRoom, EventNewAccountRegistration, nil)

	assert.Equal(t, 0, hub.Connections())
	assert.Len(t, c.Send(), 0)
	assert.Equal(t, 1, metrics.closed)
	_, open := <-c.Done()
	assert.False(t, open)
}

func TestRoomNamesNormalise(t *testing.T) {
	loc := models.Location{Region: " NCR", Province: "Metro Manila", City: "Quezon City", Barangay: "San ISIDRO "}
	assert.Equal(t, "barangay:ncr|metro manila|quezon city|san isidro", BarangayRoom(loc))
	assert.Equal(t, "city:ncr|metro manila|quezon city", CityRoom(loc))
	assert.Equal(t, "user_12", UserRoom(12))
	assert.Equal(t, []string{"city:ncr|metro manila|quezon city", "staff_4"},
		RoomsFor(&models.JWTClaims{UserID: 4, Role: models.RoleLGU, Region: "NCR", Province: "Metro Manila", City: "Quezon City"}))
}
