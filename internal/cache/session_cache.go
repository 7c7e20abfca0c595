package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"prepzone/internal/model"
)

// SessionCache handles Redis operations for the active training session of
// each player. Sessions are ephemeral: one per player, 24h TTL.
type SessionCache interface {
	Set(ctx context.Context, playerID string, session *model.Session) error
	Get(ctx context.Context, playerID string) (*model.Session, error)
	Delete(ctx context.Context, playerID string) error
}

type sessionCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSessionCache creates a new session cache.
func NewSessionCache(client *redis.Client) SessionCache {
	return &sessionCache{
		client: client,
		ttl:    24 * time.Hour,
	}
}

func (c *sessionCache) key(playerID string) string {
	return fmt.Sprintf("player:%s:session", playerID)
}

func (c *sessionCache) Set(ctx context.Context, playerID string, session *model.Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.key(playerID), data, c.ttl).Err()
}

func (c *sessionCache) Get(ctx context.Context, playerID string) (*model.Session, error) {
	data, err := c.client.Get(ctx, c.key(playerID)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var session model.Session
	if err := json.Unmarshal([]byte(data), &session); err != nil {
		return nil, err
	}
	return &session, nil
}

func (c *sessionCache) Delete(ctx context.Context, playerID string) error {
	return c.client.Del(ctx, c.key(playerID)).Err()
}
