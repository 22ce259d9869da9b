package realtime

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/civic-report-api/internal/models"
)

func TestRedisRelayFansOutAcrossInstances(t *testing.T) {
	mr := miniredis.RunT(t)
	const channel = "civic:test"

	newInstance := func() (*Hub, *RedisRelay) {
		client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
		t.Cleanup(func() { _ = client.Close() })
		hub := NewHub(4, nil, nil)
		return hub, NewRedisRelay(client, channel, hub, nil)
	}
	hubA, relayA := newInstance()
	hubB, relayB := newInstance()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = relayA.Run(ctx) }()
	go func() { _ = relayB.Run(ctx) }()
	require.Eventually(t, func() bool {
		return mr.PubSubNumSub(channel)[channel] == 2
	}, 2*time.Second, 10*time.Millisecond)

	local := hubA.Register(&models.JWTClaims{UserID: 8, Role: models.RoleMobile})
	remote := hubB.Register(&models.JWTClaims{UserID: 8, Role: models.RoleMobile})

	relayA.Emit(context.Background(), UserRoom(8), EventDocumentRequestUpdate, map[string]string{"status": "unclaimed"})

	select {
	case frame := <-remote.Send():
		assert.Equal(t, EventDocumentRequestUpdate, decode(t, frame).Event)
	case <-time.After(2 * time.Second):
		t.Fatal("remote instance never received the event")
	}
	require.Len(t, local.Send(), 1)

	// the origin instance must not deliver its own event twice
	time.Sleep(50 * time.Millisecond)
	assert.Len(t, local.Send(), 1)
}
