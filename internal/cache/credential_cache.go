package cache

import (
	"context"

	"github.com/redis/go-redis/v9"
)

const credentialKey = "settings:gemini_api_key"

// CredentialCache persists the Gemini API key supplied through the setup
// endpoint so it survives restarts.
type CredentialCache interface {
	SetKey(ctx context.Context, key string) error
	GetKey(ctx context.Context) (string, error)
}

type credentialCache struct {
	client *redis.Client
}

// NewCredentialCache creates a new credential cache.
func NewCredentialCache(client *redis.Client) CredentialCache {
	return &credentialCache{client: client}
}

func (c *credentialCache) SetKey(ctx context.Context, key string) error {
	return c.client.Set(ctx, credentialKey, key, 0).Err()
}

func (c *credentialCache) GetKey(ctx context.Context) (string, error) {
	val, err := c.client.Get(ctx, credentialKey).Result()
	if err == redis.Nil {
		return "", nil
	}
	return val, err
}
