package realtime

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/civic-report-api/internal/models"
)

type stubValidator map[string]*models.JWTClaims

func (s stubValidator) ValidateToken(token string) (*models.JWTClaims, error) {
	if claims, ok := s[token]; ok {
		return claims, nil
	}
	return nil, errors.New("invalid token")
}

type frame struct {
	Event string                 `json:"event"`
	Data  map[string]interface{} `json:"data"`
}

func dial(t *testing.T, srv *httptest.Server, token string) *websocket.Conn {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/socket?token=" + token
	conn, _, err := websocket.Dial(ctx, url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close(websocket.StatusNormalClosure, "") })
	return conn
}

func read(t *testing.T, conn *websocket.Conn) frame {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	var f frame
	require.NoError(t, wsjson.Read(ctx, conn, &f))
	return f
}

func newSocketFixture(t *testing.T) (*Hub, *httptest.Server) {
	hub := NewHub(8, nil, nil)
	tokens := stubValidator{
		"citizen": {UserID: 21, Role: models.RoleMobile, FirstName: "Juan"},
		"brgy":    barangayClaims(4, "San Isidro"),
	}
	mux := http.NewServeMux()
	mux.Handle("/socket", NewSocketServer(hub, tokens, nil, nil))
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return hub, srv
}

func TestSocketRejectsMissingToken(t *testing.T) {
	_, srv := newSocketFixture(t)
	resp, err := http.Get(srv.URL + "/socket")
	require.NoError(t, err)
	defer resp.Body.Close() //nolint:errcheck
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestSocketStaffAutoJoinsScope(t *testing.T) {
	hub, srv := newSocketFixture(t)
	conn := dial(t, srv, "brgy")

	hello := read(t, conn)
	require.Equal(t, EventConnected, hello.Event)
	assert.ElementsMatch(t, []interface{}{BarangayRoom(sanIsidro), "staff_4"}, hello.Data["rooms"])

	hub.Emit(context.Background(), BarangayRoom(sanIsidro), EventNewDocumentRequest, map[string]interface{}{"id": 3})
	got := read(t, conn)
	assert.Equal(t, EventNewDocumentRequest, got.Event)
	assert.EqualValues(t, 3, got.Data["id"])
}

func TestSocketJoinRoomOnlyForSelf(t *testing.T) {
	hub, srv := newSocketFixture(t)
	conn := dial(t, srv, "citizen")
	require.Equal(t, EventConnected, read(t, conn).Event)

	ctx := context.Background()
	require.NoError(t, wsjson.Write(ctx, conn, map[string]interface{}{"event": "joinRoom", "data": map[string]interface{}{"userId": 99}}))
	denied := read(t, conn)
	assert.Equal(t, EventError, denied.Event)

	require.NoError(t, wsjson.Write(ctx, conn, map[string]interface{}{"event": "joinRoom", "data": map[string]interface{}{"userId": "21"}}))
	require.Eventually(t, func() bool { return hub.Connections() == 1 }, time.Second, 10*time.Millisecond)

	hub.Emit(ctx, UserRoom(99), EventDocumentRequestUpdate, map[string]interface{}{"requestId": 1})
	hub.Emit(ctx, UserRoom(21), EventDocumentRequestUpdate, map[string]interface{}{"requestId": 2})
	got := read(t, conn)
	assert.EqualValues(t, 2, got.Data["requestId"])
}
