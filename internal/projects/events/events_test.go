package events

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drafte-app/drafte-backend/internal/projects/domain"
)

func TestRedisPublisher_StatusChanged(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	ctx := context.Background()
	sub := client.Subscribe(ctx, Channel("p1"))
	t.Cleanup(func() { _ = sub.Close() })
	_, err := sub.Receive(ctx)
	require.NoError(t, err)

	NewRedisPublisher(client, nil).StatusChanged(ctx, "p1", domain.StatusContentGenerating)

	select {
	case msg := <-sub.Channel():
		var ev StatusChange
		require.NoError(t, json.Unmarshal([]byte(msg.Payload), &ev))
		assert.Equal(t, "p1", ev.ProjectID)
		assert.Equal(t, domain.StatusContentGenerating, ev.Status)
	case <-time.After(2 * time.Second):
		t.Fatal("no event received")
	}
}

func TestRedisPublisher_ServerDown(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = client.Close() })
	mr.Close()

	assert.NotPanics(t, func() {
		NewRedisPublisher(client, nil).StatusChanged(context.Background(), "p1", domain.StatusFailed)
	})
}
