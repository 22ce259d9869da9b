package realtime

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type relayEnvelope struct {
	Origin string          `json:"origin"`
	Room   string          `json:"room,omitempty"`
	Event  string          `json:"event"`
	Frame  json.RawMessage `json:"frame"`
}

// RedisRelay is an Emitter that delivers locally and republishes every event on a Redis channel
// so sockets held by other API instances receive it too.
type RedisRelay struct {
	client  *redis.Client
	channel string
	hub     *Hub
	origin  string
	logger  *zap.Logger
}

// NewRedisRelay wires a hub to a pub/sub channel.
func NewRedisRelay(client *redis.Client, channel string, hub *Hub, logger *zap.Logger) *RedisRelay {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisRelay{
		client:  client,
		channel: channel,
		hub:     hub,
		origin:  uuid.NewString(),
		logger:  logger.With(zap.String("channel", channel)),
	}
}

// Emit delivers to local sockets in room and publishes for the other instances.
func (r *RedisRelay) Emit(ctx context.Context, room, event string, data interface{}) {
	frame, err := encode(event, data)
	if err != nil {
		r.logger.Error("encode realtime event", zap.String("event", event), zap.Error(err))
		return
	}
	r.hub.Deliver(room, event, frame)

	body, err := json.Marshal(relayEnvelope{Origin: r.origin, Room: room, Event: event, Frame: frame})
	if err != nil {
		r.logger.Error("encode relay envelope", zap.String("event", event), zap.Error(err))
		return
	}
	if err := r.client.Publish(context.WithoutCancel(ctx), r.channel, body).Err(); err != nil {
		r.logger.Warn("publish realtime event", zap.String("event", event), zap.Error(err))
	}
}

// Broadcast emits to every socket on every instance.
func (r *RedisRelay) Broadcast(ctx context.Context, event string, data interface{}) {
	r.Emit(ctx, "", event, data)
}

// Run subscribes to the channel and forwards foreign events to the local hub until ctx ends.
func (r *RedisRelay) Run(ctx context.Context) error {
	sub := r.client.Subscribe(ctx, r.channel)
	defer sub.Close() //nolint:errcheck

	if _, err := sub.Receive(ctx); err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("subscribe %s: %w", r.channel, err)
	}
	r.logger.Info("realtime relay subscribed")

	messages := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-messages:
			if !ok {
				return nil
			}
			r.forward(msg.Payload)
		}
	}
}

func (r *RedisRelay) forward(payload string) {
	var env relayEnvelope
	if err := json.Unmarshal([]byte(payload), &env); err != nil {
		r.logger.Warn("discard malformed relay message", zap.Error(err))
		return
	}
	if env.Origin == r.origin {
		return
	}
	r.hub.Deliver(env.Room, env.Event, env.Frame)
}
