package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"prepzone/internal/model"
)

// ChatCache stores simulated chat histories per player and contact.
type ChatCache interface {
	Append(ctx context.Context, playerID, contactID string, msg *model.ChatMessage) error
	History(ctx context.Context, playerID, contactID string) ([]model.ChatMessage, error)
	Clear(ctx context.Context, playerID, contactID string) error
}

type chatCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewChatCache creates a new chat cache.
func NewChatCache(client *redis.Client) ChatCache {
	return &chatCache{
		client: client,
		ttl:    7 * 24 * time.Hour,
	}
}

func (c *chatCache) key(playerID, contactID string) string {
	return fmt.Sprintf("player:%s:chat:%s", playerID, contactID)
}

func (c *chatCache) Append(ctx context.Context, playerID, contactID string, msg *model.ChatMessage) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	key := c.key(playerID, contactID)
	if err := c.client.RPush(ctx, key, data).Err(); err != nil {
		return err
	}
	return c.client.Expire(ctx, key, c.ttl).Err()
}

func (c *chatCache) History(ctx context.Context, playerID, contactID string) ([]model.ChatMessage, error) {
	items, err := c.client.LRange(ctx, c.key(playerID, contactID), 0, -1).Result()
	if err != nil {
		return nil, err
	}
	messages := make([]model.ChatMessage, 0, len(items))
	for _, item := range items {
		var msg model.ChatMessage
		if err := json.Unmarshal([]byte(item), &msg); err != nil {
			continue
		}
		messages = append(messages, msg)
	}
	return messages, nil
}

func (c *chatCache) Clear(ctx context.Context, playerID, contactID string) error {
	return c.client.Del(ctx, c.key(playerID, contactID)).Err()
}
