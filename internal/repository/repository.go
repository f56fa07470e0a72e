package repository

import (
	"context"

	"github.com/romindigital/ikirezi-bookstore-sub002/internal/domain"
)

// RecentSearchRepository defines persistence for a shopper's recent-search
// log. The log is stored most-recent-first and capped by the caller.
type RecentSearchRepository interface {
	// Get retrieves the recent-search log for a shopper. A shopper with no
	// recorded searches gets an empty log, not an error.
	Get(ctx context.Context, shopperID string) ([]string, error)

	// Save overwrites the recent-search log for a shopper.
	Save(ctx context.Context, shopperID string, log []string) error

	// Clear removes the recent-search log for a shopper.
	Clear(ctx context.Context, shopperID string) error
}

// PreferenceRepository defines persistence for per-shopper storefront
// preferences.
type PreferenceRepository interface {
	// Get retrieves a shopper's stored preferences. Returns ErrNotFound when
	// the shopper has never saved any.
	Get(ctx context.Context, shopperID string) (*domain.Preferences, error)

	// Save persists a shopper's preferences, overwriting any existing record.
	Save(ctx context.Context, shopperID string, prefs *domain.Preferences) error
}
