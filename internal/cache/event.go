package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"eventplatform/internal/domain"
)

const (
	eventKeyPrefix = "event:"

	// DefaultEventTTL bounds staleness for cached event details. Mutations
	// invalidate explicitly; the TTL only covers writes this process missed.
	DefaultEventTTL = 5 * time.Minute
)

// ErrCacheMiss is returned when the requested event is not cached.
var ErrCacheMiss = errors.New("cache miss")

// EventCache implements domain.EventCache on Redis, storing populated event
// details as JSON keyed by event ID.
type EventCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewEventCache returns an EventCache with the default TTL.
func NewEventCache(client *redis.Client) *EventCache {
	return &EventCache{client: client, ttl: DefaultEventTTL}
}

func (c *EventCache) GetDetails(ctx context.Context, eventID string) (*domain.EventDetails, error) {
	raw, err := c.client.Get(ctx, eventKeyPrefix+eventID).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrCacheMiss
		}
		return nil, fmt.Errorf("redis get failed: %w", err)
	}
	details := &domain.EventDetails{}
	if err := json.Unmarshal(raw, details); err != nil {
		return nil, fmt.Errorf("decode cached event: %w", err)
	}
	return details, nil
}

func (c *EventCache) SetDetails(ctx context.Context, details *domain.EventDetails) error {
	raw, err := json.Marshal(details)
	if err != nil {
		return fmt.Errorf("encode event for cache: %w", err)
	}
	if err := c.client.Set(ctx, eventKeyPrefix+details.ID, raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache event: %w", err)
	}
	return nil
}

func (c *EventCache) Invalidate(ctx context.Context, eventID string) error {
	if err := c.client.Del(ctx, eventKeyPrefix+eventID).Err(); err != nil {
		return fmt.Errorf("failed to invalidate event cache: %w", err)
	}
	return nil
}
