package catalog

import (
	"sort"
	"strings"

	"github.com/romindigital/ikirezi-bookstore-sub002/internal/domain"
	"github.com/romindigital/ikirezi-bookstore-sub002/internal/query"
)

// Result is the outcome of evaluating query params against a collection.
// Total is the number of matches before pagination, so callers can detect
// an out-of-range page (empty Books with a non-zero Total) and re-issue
// with a clamped page.
type Result struct {
	Books []domain.Book `json:"books"`
	Total int           `json:"total"`
}

// Evaluate filters, sorts, and paginates the given collection according to
// params. It is deterministic and side-effect free: the input slice is never
// reordered or mutated, and equal inputs always produce equal output.
//
// Filters apply in a fixed order: free text, category, price range on the
// effective price, rating floor. Sorting is stable, so books that compare
// equal keep their input order; relevance performs no reordering at all
// because the input collection arrives pre-ranked.
//
// Evaluate does not clamp out-of-range pages. It returns an empty page and
// the true total, leaving the correction to the caller.
func Evaluate(items []domain.Book, p query.Params) Result {
	matched := filter(items, p)
	sortBooks(matched, p.Sort)

	total := len(matched)

	offset := (p.Page - 1) * p.PerPage
	if offset >= total {
		return Result{Books: []domain.Book{}, Total: total}
	}
	end := offset + p.PerPage
	if end > total {
		end = total
	}

	return Result{Books: matched[offset:end], Total: total}
}

// LastPage returns the highest page that still holds results, or 1 when the
// collection is empty. Adapters use it to clamp after a filter change
// shrinks the result set.
func LastPage(total, perPage int) int {
	if total <= 0 || perPage <= 0 {
		return 1
	}
	last := total / perPage
	if total%perPage > 0 {
		last++
	}
	return last
}

// filter returns the books passing every active filter, preserving input
// order. It always allocates so the sort pass never touches the caller's
// backing array.
func filter(items []domain.Book, p query.Params) []domain.Book {
	matched := make([]domain.Book, 0, len(items))

	text := strings.ToLower(p.FreeText)
	for i := range items {
		if !matches(&items[i], p, text) {
			continue
		}
		matched = append(matched, items[i])
	}
	return matched
}

// matches applies the filter chain to a single book, cheapest rejection first
// within the fixed text -> category -> price -> rating order.
func matches(b *domain.Book, p query.Params, textLower string) bool {
	if textLower != "" {
		if !strings.Contains(strings.ToLower(b.Title), textLower) &&
			!strings.Contains(strings.ToLower(b.Author), textLower) &&
			!strings.Contains(strings.ToLower(b.Category), textLower) {
			return false
		}
	}

	if p.Category != "" && b.Category != p.Category {
		return false
	}

	price := b.EffectivePrice()
	if p.PriceMin != nil && price < *p.PriceMin {
		return false
	}
	if p.PriceMax != nil && price > *p.PriceMax {
		return false
	}

	if p.MinRating != nil && b.Rating < *p.MinRating {
		return false
	}

	return true
}

// sortBooks orders books in place by the given sort key. Every branch uses a
// stable sort; ties keep the pre-ranked input order.
func sortBooks(books []domain.Book, sortBy string) {
	switch sortBy {
	case domain.SortTitleAsc:
		sort.SliceStable(books, func(i, j int) bool {
			return strings.ToLower(books[i].Title) < strings.ToLower(books[j].Title)
		})
	case domain.SortTitleDesc:
		sort.SliceStable(books, func(i, j int) bool {
			return strings.ToLower(books[i].Title) > strings.ToLower(books[j].Title)
		})
	case domain.SortPriceAsc:
		sort.SliceStable(books, func(i, j int) bool {
			return books[i].EffectivePrice() < books[j].EffectivePrice()
		})
	case domain.SortPriceDesc:
		sort.SliceStable(books, func(i, j int) bool {
			return books[i].EffectivePrice() > books[j].EffectivePrice()
		})
	case domain.SortRatingDesc:
		sort.SliceStable(books, func(i, j int) bool {
			return books[i].Rating > books[j].Rating
		})
	case domain.SortNewest:
		sort.SliceStable(books, func(i, j int) bool {
			return books[i].PublishedAt.After(books[j].PublishedAt)
		})
	default:
		// Relevance: identity order, the source ranking stands.
	}
}
