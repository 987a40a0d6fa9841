package redis

import (
	"context"
	"fmt"
	"time"

	"mpesa-push-relay/internal/core/ports"

	goredis "github.com/redis/go-redis/v9"
)

// DedupeStore implements ports.DedupeStore using Redis. The gateway retries
// its result webhook aggressively on anything it considers a failure, so a
// checkout identifier may arrive more than once; SETNX makes the first
// arrival win atomically.
type DedupeStore struct {
	client *goredis.Client
	prefix string
}

// NewDedupeStore creates a new Redis-backed callback dedupe store.
func NewDedupeStore(client *goredis.Client) *DedupeStore {
	return &DedupeStore{
		client: client,
		prefix: "callback:seen:",
	}
}

var _ ports.DedupeStore = (*DedupeStore)(nil)

// FirstSeen records checkoutID and reports whether this was its first arrival.
func (s *DedupeStore) FirstSeen(ctx context.Context, checkoutID string, ttl time.Duration) (bool, error) {
	ok, err := s.client.SetNX(ctx, s.prefix+checkoutID, 1, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("redis dedupe setnx: %w", err)
	}
	return ok, nil
}
