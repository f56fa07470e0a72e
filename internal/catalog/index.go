package catalog

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/romindigital/ikirezi-bookstore-sub002/internal/domain"
	"github.com/romindigital/ikirezi-bookstore-sub002/internal/query"
)

// Index is the in-memory book collection backing every storefront surface.
// Insertion order is preserved because it carries the source ranking used
// by the relevance sort. Thread-safe via sync.RWMutex.
type Index struct {
	mu    sync.RWMutex
	byID  map[string]int
	books []domain.Book
}

// NewIndex creates an empty index.
func NewIndex() *Index {
	return &Index{
		byID: make(map[string]int),
	}
}

// Upsert adds a book or replaces an existing one in place, keeping the
// original rank for updates.
func (ix *Index) Upsert(_ context.Context, book domain.Book) error {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	if pos, ok := ix.byID[book.ID]; ok {
		ix.books[pos] = book
		return nil
	}
	ix.byID[book.ID] = len(ix.books)
	ix.books = append(ix.books, book)
	return nil
}

// BulkUpsert applies Upsert for each book under a single lock.
func (ix *Index) BulkUpsert(_ context.Context, books []domain.Book) error {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	for i := range books {
		if pos, ok := ix.byID[books[i].ID]; ok {
			ix.books[pos] = books[i]
			continue
		}
		ix.byID[books[i].ID] = len(ix.books)
		ix.books = append(ix.books, books[i])
	}
	return nil
}

// Delete removes a book by ID. Unknown IDs are a no-op.
func (ix *Index) Delete(_ context.Context, id string) error {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	pos, ok := ix.byID[id]
	if !ok {
		return nil
	}
	ix.books = append(ix.books[:pos], ix.books[pos+1:]...)
	delete(ix.byID, id)
	for i := pos; i < len(ix.books); i++ {
		ix.byID[ix.books[i].ID] = i
	}
	return nil
}

// Search evaluates params against a snapshot of the collection.
func (ix *Index) Search(_ context.Context, p query.Params) (Result, error) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	return Evaluate(ix.books, p), nil
}

// Suggest returns up to limit candidate books whose title, author, or
// category contains the query, case-insensitively, in rank order.
func (ix *Index) Suggest(_ context.Context, q string, limit int) ([]domain.Book, error) {
	if limit <= 0 {
		limit = 5
	}

	ix.mu.RLock()
	defer ix.mu.RUnlock()

	text := strings.ToLower(strings.TrimSpace(q))
	out := make([]domain.Book, 0, limit)
	if text == "" {
		return out, nil
	}

	for i := range ix.books {
		b := &ix.books[i]
		if strings.Contains(strings.ToLower(b.Title), text) ||
			strings.Contains(strings.ToLower(b.Author), text) ||
			strings.Contains(strings.ToLower(b.Category), text) {
			out = append(out, *b)
			if len(out) == limit {
				break
			}
		}
	}
	return out, nil
}

// Categories returns the distinct category names present in the index,
// sorted alphabetically.
func (ix *Index) Categories(_ context.Context) ([]string, error) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	seen := make(map[string]struct{})
	var names []string
	for i := range ix.books {
		c := ix.books[i].Category
		if c == "" {
			continue
		}
		if _, ok := seen[c]; !ok {
			seen[c] = struct{}{}
			names = append(names, c)
		}
	}
	sort.Strings(names)
	return names, nil
}

// Len returns the number of indexed books.
func (ix *Index) Len() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.books)
}
