package domain

import (
	"time"
)

// Book represents a catalog item as served to the storefront.
// The collection held by the index is pre-ranked by the upstream data
// source; relevance ordering is the insertion order.
type Book struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Author        string    `json:"author"`
	Category      string    `json:"category"`
	Price         int64     `json:"price"`
	DiscountPrice *int64    `json:"discount_price,omitempty"`
	Rating        float64   `json:"rating"`
	Stock         int       `json:"stock"`
	PublishedAt   time.Time `json:"published_at"`
	Featured      bool      `json:"featured"`
}

// EffectivePrice returns the discount price if one is set, otherwise the list price.
func (b *Book) EffectivePrice() int64 {
	if b.DiscountPrice != nil {
		return *b.DiscountPrice
	}
	return b.Price
}

// InStock reports whether the book can currently be added to a cart.
func (b *Book) InStock() bool {
	return b.Stock > 0
}

// Sort options for catalog listings. Relevance keeps the pre-ranked input
// order; featured surfaces behave the same way with a featured-first source.
const (
	SortRelevance  = "relevance"
	SortTitleAsc   = "title_asc"
	SortTitleDesc  = "title_desc"
	SortPriceAsc   = "price_asc"
	SortPriceDesc  = "price_desc"
	SortRatingDesc = "rating_desc"
	SortNewest     = "newest"
)

// SortOption pairs a sort key with a display label for the storefront UI.
type SortOption struct {
	Key   string `json:"key"`
	Label string `json:"label"`
}

// SortOptions returns the sort vocabulary in display order.
func SortOptions() []SortOption {
	return []SortOption{
		{Key: SortRelevance, Label: "Relevance"},
		{Key: SortTitleAsc, Label: "Title: A to Z"},
		{Key: SortTitleDesc, Label: "Title: Z to A"},
		{Key: SortPriceAsc, Label: "Price: Low to High"},
		{Key: SortPriceDesc, Label: "Price: High to Low"},
		{Key: SortRatingDesc, Label: "Highest Rated"},
		{Key: SortNewest, Label: "Newest Arrivals"},
	}
}

// IsValidSort checks whether the given sort string is a valid sort option.
func IsValidSort(sort string) bool {
	switch sort {
	case SortRelevance, SortTitleAsc, SortTitleDesc, SortPriceAsc,
		SortPriceDesc, SortRatingDesc, SortNewest:
		return true
	}
	return false
}

// PriceBucket is a labeled price range offered as a quick filter.
// Min/Max are inclusive cents; nil means unbounded on that side.
type PriceBucket struct {
	Label string `json:"label"`
	Min   *int64 `json:"min,omitempty"`
	Max   *int64 `json:"max,omitempty"`
}

// DefaultPriceBuckets returns the storefront's standard price quick filters.
func DefaultPriceBuckets() []PriceBucket {
	cents := func(v int64) *int64 { return &v }
	return []PriceBucket{
		{Label: "Under $10", Max: cents(9_99)},
		{Label: "$10 to $25", Min: cents(10_00), Max: cents(25_00)},
		{Label: "$25 to $50", Min: cents(25_00), Max: cents(50_00)},
		{Label: "Over $50", Min: cents(50_01)},
	}
}
