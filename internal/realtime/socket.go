package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"go.uber.org/zap"

	"github.com/noah-isme/civic-report-api/internal/models"
)

const socketWriteTimeout = 5 * time.Second

// TokenValidator verifies bearer tokens presented by socket clients.
type TokenValidator interface {
	ValidateToken(token string) (*models.JWTClaims, error)
}

// SocketServer upgrades authenticated requests and pumps hub frames to them.
type SocketServer struct {
	hub    *Hub
	tokens TokenValidator
	accept websocket.AcceptOptions
	logger *zap.Logger
}

// NewSocketServer builds the /socket endpoint. allowedOrigins follows the CORS setting: empty or
// "*" accepts any origin.
func NewSocketServer(hub *Hub, tokens TokenValidator, allowedOrigins []string, logger *zap.Logger) *SocketServer {
	if logger == nil {
		logger = zap.NewNop()
	}
	opts := websocket.AcceptOptions{}
	patterns := originPatterns(allowedOrigins)
	if patterns == nil {
		opts.InsecureSkipVerify = true
	} else {
		opts.OriginPatterns = patterns
	}
	return &SocketServer{hub: hub, tokens: tokens, accept: opts, logger: logger}
}

type inboundMessage struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

type joinRoomRequest struct {
	UserID flexibleID `json:"userId"`
}

type connectedPayload struct {
	UserID int64           `json:"user_id"`
	Role   models.UserRole `json:"role"`
	Rooms  []string        `json:"rooms"`
}

// ServeHTTP implements http.Handler.
func (s *SocketServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	claims, err := s.authenticate(r)
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(map[string]string{"message": "unauthorized"})
		return
	}

	conn, err := websocket.Accept(w, r, &s.accept)
	if err != nil {
		s.logger.Debug("socket upgrade failed", zap.Error(err))
		return
	}
	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	client := s.hub.Register(claims)
	defer s.hub.Unregister(client)
	logger := s.logger.With(zap.Int64("user_id", claims.UserID), zap.String("role", string(claims.Role)))
	logger.Debug("socket connected")

	hello := Message{Event: EventConnected, Data: connectedPayload{UserID: claims.UserID, Role: claims.Role, Rooms: s.hub.Rooms(client)}}
	if err := s.write(ctx, conn, hello); err != nil {
		_ = conn.Close(websocket.StatusNormalClosure, "write_failed")
		return
	}

	readErr := make(chan error, 1)
	go func() {
		for {
			var msg inboundMessage
			if err := wsjson.Read(ctx, conn, &msg); err != nil {
				readErr <- err
				return
			}
			s.handleInbound(client, msg, logger)
		}
	}()

	for {
		select {
		case <-ctx.Done():
			_ = conn.Close(websocket.StatusNormalClosure, "closed")
			return
		case <-client.Done():
			_ = conn.Close(websocket.StatusGoingAway, "closed")
			return
		case err := <-readErr:
			if websocket.CloseStatus(err) == -1 && !errors.Is(err, context.Canceled) {
				logger.Debug("socket read ended", zap.Error(err))
			}
			_ = conn.Close(websocket.StatusNormalClosure, "closed")
			return
		case frame := <-client.Send():
			writeCtx, cancelWrite := context.WithTimeout(ctx, socketWriteTimeout)
			err := conn.Write(writeCtx, websocket.MessageText, frame)
			cancelWrite()
			if err != nil {
				_ = conn.Close(websocket.StatusNormalClosure, "write_failed")
				return
			}
		}
	}
}

func (s *SocketServer) handleInbound(client *Client, msg inboundMessage, logger *zap.Logger) {
	switch msg.Event {
	case EventJoinRoom:
		var req joinRoomRequest
		if err := json.Unmarshal(msg.Data, &req); err != nil {
			s.reply(client, EventError, map[string]string{"message": "invalid joinRoom payload"})
			return
		}
		claims := client.Claims()
		if int64(req.UserID) != claims.UserID {
			logger.Warn("joinRoom denied", zap.Int64("requested", int64(req.UserID)))
			s.reply(client, EventError, map[string]string{"message": "cannot join another user's room"})
			return
		}
		room := UserRoom(claims.UserID)
		if claims.Role.IsStaff() {
			room = StaffRoom(claims.UserID)
		}
		s.hub.Join(client, room)
	default:
		logger.Debug("ignoring socket event", zap.String("event", msg.Event))
	}
}

func (s *SocketServer) reply(client *Client, event string, data interface{}) {
	frame, err := encode(event, data)
	if err != nil {
		return
	}
	select {
	case client.send <- frame:
	default:
	}
}

func (s *SocketServer) write(ctx context.Context, conn *websocket.Conn, msg Message) error {
	writeCtx, cancel := context.WithTimeout(ctx, socketWriteTimeout)
	defer cancel()
	return wsjson.Write(writeCtx, conn, msg)
}

func (s *SocketServer) authenticate(r *http.Request) (*models.JWTClaims, error) {
	token := strings.TrimSpace(r.URL.Query().Get("token"))
	if token == "" {
		header := r.Header.Get("Authorization")
		if strings.HasPrefix(strings.ToLower(header), "bearer ") {
			token = strings.TrimSpace(header[7:])
		}
	}
	if token == "" || s.tokens == nil {
		return nil, errors.New("missing token")
	}
	return s.tokens.ValidateToken(token)
}

func originPatterns(origins []string) []string {
	out := make([]string, 0, len(origins))
	for _, origin := range origins {
		origin = strings.TrimSpace(origin)
		if origin == "" {
			continue
		}
		if origin == "*" {
			return nil
		}
		if u, err := url.Parse(origin); err == nil && u.Host != "" {
			origin = u.Host
		}
		out = append(out, origin)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// flexibleID accepts both 42 and "42".
type flexibleID int64

func (f *flexibleID) UnmarshalJSON(b []byte) error {
	raw := strings.Trim(string(b), `"`)
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return err
	}
	*f = flexibleID(v)
	return nil
}
