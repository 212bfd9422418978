// Package events announces project status changes on Redis Pub/Sub.
package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/drafte-app/drafte-backend/internal/projects/domain"
)

const channelPrefix = "drafte:project:" // drafte:project:{id}:events

type StatusChange struct {
	ProjectID string        `json:"projectId"`
	Status    domain.Status `json:"status"`
	At        time.Time     `json:"at"`
}

// Publisher is best effort: failures are logged, never returned.
type Publisher interface {
	StatusChanged(ctx context.Context, projectID string, status domain.Status)
}

type RedisPublisher struct {
	client *redis.Client
	log    *zap.Logger
}

func NewRedisPublisher(client *redis.Client, log *zap.Logger) *RedisPublisher {
	if log == nil {
		log = zap.NewNop()
	}
	return &RedisPublisher{client: client, log: log}
}

func Channel(projectID string) string {
	return channelPrefix + projectID + ":events"
}

func (p *RedisPublisher) StatusChanged(ctx context.Context, projectID string, status domain.Status) {
	data, err := json.Marshal(StatusChange{ProjectID: projectID, Status: status, At: time.Now().UTC()})
	if err != nil {
		return
	}
	if err := p.client.Publish(ctx, Channel(projectID), data).Err(); err != nil {
		p.log.Warn("publish status change failed",
			zap.String("project_id", projectID),
			zap.String("status", string(status)),
			zap.Error(err))
	}
}

// Nop discards every event.
type Nop struct{}

func (Nop) StatusChanged(context.Context, string, domain.Status) {}
