package trustscorecache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"

	trustscoredomain "github.com/escrowhub/api/app/modules/trustscore/domain"
)

// Cache is a read-through cache of persisted trust scores.
type Cache interface {
	// Get returns nil without error on a miss.
	Get(ctx context.Context, userID uuid.UUID) (*trustscoredomain.Result, error)
	Set(ctx context.Context, result *trustscoredomain.Result) error
	Invalidate(ctx context.Context, userID uuid.UUID) error
}

const keyPrefix = "trustscore:"

type redisCache struct {
	client redis.UniversalClient
	ttl    time.Duration
}

// NewRedisCache stores results as JSON under trustscore:<user id>.
func NewRedisCache(client redis.UniversalClient, ttl time.Duration) Cache {
	return &redisCache{client: client, ttl: ttl}
}

func key(userID uuid.UUID) string {
	return keyPrefix + userID.String()
}

func (c *redisCache) Get(ctx context.Context, userID uuid.UUID) (*trustscoredomain.Result, error) {
	data, err := c.client.Get(ctx, key(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read cached trust score: %w", err)
	}
	var result trustscoredomain.Result
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("failed to decode cached trust score: %w", err)
	}
	return &result, nil
}

func (c *redisCache) Set(ctx context.Context, result *trustscoredomain.Result) error {
	if result == nil {
		return nil
	}
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to encode trust score: %w", err)
	}
	return c.client.Set(ctx, key(result.UserID), data, c.ttl).Err()
}

func (c *redisCache) Invalidate(ctx context.Context, userID uuid.UUID) error {
	return c.client.Del(ctx, key(userID)).Err()
}

type noopCache struct{}

// NewNoopCache is used when no Redis address is configured.
func NewNoopCache() Cache { return noopCache{} }

func (noopCache) Get(context.Context, uuid.UUID) (*trustscoredomain.Result, error) {
	return nil, nil
}

func (noopCache) Set(context.Context, *trustscoredomain.Result) error {
	return nil
}

func (noopCache) Invalidate(context.Context, uuid.UUID) error {
	return nil
}
