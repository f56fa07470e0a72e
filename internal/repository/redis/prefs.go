package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/romindigital/ikirezi-bookstore-sub002/internal/domain"
	apperrors "github.com/romindigital/ikirezi-bookstore-sub002/pkg/errors"
)

const prefsKeyPrefix = "preferences:"

// PreferenceRepository implements repository.PreferenceRepository using Redis.
type PreferenceRepository struct {
	client *redis.Client
}

// NewPreferenceRepository creates a new Redis-backed preference repository.
// Preferences carry no TTL; they persist until overwritten.
func NewPreferenceRepository(client *redis.Client) *PreferenceRepository {
	return &PreferenceRepository{
		client: client,
	}
}

// Get retrieves a shopper's stored preferences.
func (r *PreferenceRepository) Get(ctx context.Context, shopperID string) (*domain.Preferences, error) {
	key := prefsKeyPrefix + shopperID

	data, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, apperrors.NotFound("preferences", shopperID)
		}
		return nil, fmt.Errorf("redis get preferences: %w", err)
	}

	var prefs domain.Preferences
	if err := json.Unmarshal(data, &prefs); err != nil {
		return nil, fmt.Errorf("unmarshal preferences: %w", err)
	}

	return &prefs, nil
}

// Save persists a shopper's preferences.
func (r *PreferenceRepository) Save(ctx context.Context, shopperID string, prefs *domain.Preferences) error {
	key := prefsKeyPrefix + shopperID

	data, err := json.Marshal(prefs)
	if err != nil {
		return fmt.Errorf("marshal preferences: %w", err)
	}

	if err := r.client.Set(ctx, key, data, 0).Err(); err != nil {
		return fmt.Errorf("redis set preferences: %w", err)
	}

	return nil
}
