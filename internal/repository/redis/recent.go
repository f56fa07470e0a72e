package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const recentKeyPrefix = "searches:recent:"

// RecentSearchRepository implements repository.RecentSearchRepository using
// Redis. Each shopper's log is a single JSON array under its own key so the
// insert-dedupe-truncate result written by the service is stored atomically.
type RecentSearchRepository struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRecentSearchRepository creates a new Redis-backed recent-search
// repository. The TTL refreshes on every save; an idle shopper's log expires
// on its own.
func NewRecentSearchRepository(client *redis.Client, ttl time.Duration) *RecentSearchRepository {
	return &RecentSearchRepository{
		client: client,
		ttl:    ttl,
	}
}

// Get retrieves the recent-search log for a shopper. A missing key yields an
// empty log.
func (r *RecentSearchRepository) Get(ctx context.Context, shopperID string) ([]string, error) {
	key := recentKeyPrefix + shopperID

	data, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return []string{}, nil
		}
		return nil, fmt.Errorf("redis get recent searches: %w", err)
	}

	var log []string
	if err := json.Unmarshal(data, &log); err != nil {
		return nil, fmt.Errorf("unmarshal recent searches: %w", err)
	}

	return log, nil
}

// Save overwrites the recent-search log for a shopper with the configured TTL.
func (r *RecentSearchRepository) Save(ctx context.Context, shopperID string, log []string) error {
	key := recentKeyPrefix + shopperID

	data, err := json.Marshal(log)
	if err != nil {
		return fmt.Errorf("marshal recent searches: %w", err)
	}

	if err := r.client.Set(ctx, key, data, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set recent searches: %w", err)
	}

	return nil
}

// Clear removes the recent-search log for a shopper.
func (r *RecentSearchRepository) Clear(ctx context.Context, shopperID string) error {
	key := recentKeyPrefix + shopperID

	if err := r.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("redis del recent searches: %w", err)
	}

	return nil
}
