package realtime

import (
	"context"
	"encoding/json"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/noah-isme/civic-report-api/internal/models"
)

// Emitter delivers events to rooms. Services depend on this instead of a concrete hub so the
// relay can be swapped in and tests can record emits.
type Emitter interface {
	Emit(ctx context.Context, room, event string, data interface{})
	Broadcast(ctx context.Context, event string, data interface{})
}

// Metrics observes hub activity.
type Metrics interface {
	SocketOpened()
	SocketClosed()
	EventSent(event string)
	EventDropped(event string)
}

type noopMetrics struct{}

func (noopMetrics) SocketOpened()       {}
func (noopMetrics) SocketClosed()       {}
func (noopMetrics) EventSent(string)    {}
func (noopMetrics) EventDropped(string) {}

// Client is one connected socket.
type Client struct {
	id     uint64
	claims *models.JWTClaims
	send   chan []byte
	rooms  map[string]struct{}
	done   chan struct{}
	once   sync.Once
}

// Claims returns the principal the socket authenticated as.
func (c *Client) Claims() *models.JWTClaims { return c.claims }

// Send exposes the outbound frame queue.
func (c *Client) Send() <-chan []byte { return c.send }

// Done is closed when the hub drops the client.
func (c *Client) Done() <-chan struct{} { return c.done }

// Hub fans events out to the sockets connected to this process.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]struct{}
	rooms   map[string]map[*Client]struct{}
	nextID  atomic.Uint64

	sendBuffer int
	metrics    Metrics
	logger     *zap.Logger
}

// NewHub constructs an empty hub. sendBuffer bounds each socket's outbound queue.
func NewHub(sendBuffer int, metrics Metrics, logger *zap.Logger) *Hub {
	if sendBuffer <= 0 {
		sendBuffer = 64
	}
	if metrics == nil {
		metrics = noopMetrics{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		clients:    make(map[*Client]struct{}),
		rooms:      make(map[string]map[*Client]struct{}),
		sendBuffer: sendBuffer,
		metrics:    metrics,
		logger:     logger,
	}
}

// Register adds a socket and joins the rooms derived from its claims.
func (h *Hub) Register(claims *models.JWTClaims) *Client {
	c := &Client{
		id:     h.nextID.Add(1),
		claims: claims,
		send:   make(chan []byte, h.sendBuffer),
		rooms:  make(map[string]struct{}),
		done:   make(chan struct{}),
	}
	h.mu.Lock()
	h.clients[c] = struct{}{}
	for _, room := range RoomsFor(claims) {
		h.joinLocked(c, room)
	}
	h.mu.Unlock()
	h.metrics.SocketOpened()
	return c
}

// Unregister removes the socket from every room. Safe to call more than once.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; !ok {
		h.mu.Unlock()
		return
	}
	delete(h.clients, c)
	for room := range c.rooms {
		members := h.rooms[room]
		delete(members, c)
		if len(members) == 0 {
			delete(h.rooms, room)
		}
	}
	h.mu.Unlock()
	c.once.Do(func() { close(c.done) })
	h.metrics.SocketClosed()
}

// Join subscribes the socket to room.
func (h *Hub) Join(c *Client, room string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; !ok {
		return
	}
	h.joinLocked(c, room)
}

func (h *Hub) joinLocked(c *Client, room string) {
	members, ok := h.rooms[room]
	if !ok {
		members = make(map[*Client]struct{})
		h.rooms[room] = members
	}
	members[c] = struct{}{}
	c.rooms[room] = struct{}{}
}

// Rooms lists the rooms the socket belongs to.
func (h *Hub) Rooms(c *Client) []string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]string, 0, len(c.rooms))
	for room := range c.rooms {
		out = append(out, room)
	}
	return out
}

// Connections returns the number of registered sockets.
func (h *Hub) Connections() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Emit delivers an event to every socket in room.
func (h *Hub) Emit(_ context.Context, room, event string, data interface{}) {
	frame, err := encode(event, data)
	if err != nil {
		h.logger.Error("encode realtime event", zap.String("event", event), zap.Error(err))
		return
	}
	h.Deliver(room, event, frame)
}

// Broadcast delivers an event to every connected socket.
func (h *Hub) Broadcast(ctx context.Context, event string, data interface{}) {
	h.Emit(ctx, "", event, data)
}

// Deliver pushes an encoded frame to room, or to every socket when room is empty. A socket whose
// buffer is full misses the frame rather than stalling the others.
func (h *Hub) Deliver(room, event string, frame []byte) {
	h.mu.RLock()
	targets := h.clients
	if room != "" {
		targets = h.rooms[room]
	}
	recipients := make([]*Client, 0, len(targets))
	for c := range targets {
		recipients = append(recipients, c)
	}
	h.mu.RUnlock()

	for _, c := range recipients {
		select {
		case c.send <- frame:
			h.metrics.EventSent(event)
		default:
			h.metrics.EventDropped(event)
			h.logger.Warn("realtime buffer full, dropping event",
				zap.String("event", event), zap.String("room", room), zap.Uint64("client", c.id))
		}
	}
}

func encode(event string, data interface{}) ([]byte, error) {
	return json.Marshal(Message{Event: event, Data: data})
}
