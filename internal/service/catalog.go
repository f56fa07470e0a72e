package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/romindigital/ikirezi-bookstore-sub002/internal/catalog"
	"github.com/romindigital/ikirezi-bookstore-sub002/internal/domain"
	"github.com/romindigital/ikirezi-bookstore-sub002/internal/event"
	"github.com/romindigital/ikirezi-bookstore-sub002/internal/history"
	"github.com/romindigital/ikirezi-bookstore-sub002/internal/query"
	"github.com/romindigital/ikirezi-bookstore-sub002/internal/repository"
	apperrors "github.com/romindigital/ikirezi-bookstore-sub002/pkg/errors"
)

// Catalog operation limits.
const (
	// MaxBulkBooks caps a single bulk index request.
	MaxBulkBooks = 500
	// MaxSuggestLimit caps suggestion candidates per request.
	MaxSuggestLimit = 20
	// MinSuggestLength is the query length below which no suggestions are served.
	MinSuggestLength = 2
)

var (
	searchesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "storefront",
		Subsystem: "catalog",
		Name:      "searches_total",
		Help:      "Total number of catalog searches by sort key.",
	}, []string{"sort"})

	searchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "storefront",
		Subsystem: "catalog",
		Name:      "search_duration_seconds",
		Help:      "Catalog search evaluation latency.",
		Buckets:   prometheus.DefBuckets,
	})
)

// IndexBookInput holds the parameters for indexing a single book.
type IndexBookInput struct {
	ID            string    `json:"id" validate:"required"`
	Title         string    `json:"title" validate:"required"`
	Author        string    `json:"author" validate:"required"`
	Category      string    `json:"category" validate:"required"`
	Price         int64     `json:"price" validate:"gte=0"`
	DiscountPrice *int64    `json:"discount_price,omitempty"`
	Rating        float64   `json:"rating" validate:"gte=0,lte=5"`
	Stock         int       `json:"stock" validate:"gte=0"`
	PublishedAt   time.Time `json:"published_at"`
	Featured      bool      `json:"featured"`
}

// PreferencesInput holds the parameters for saving shopper preferences.
type PreferencesInput struct {
	Language string `json:"language" validate:"required"`
	Currency string `json:"currency" validate:"required,len=3"`
}

// SearchResult is a page of books plus the parameters that actually produced
// it. Params may differ from the requested ones: when the requested page
// falls past the end of the filtered set, the search is re-issued on the last
// valid page and Params carries the corrected page number.
type SearchResult struct {
	Books  []domain.Book
	Total  int
	Params query.Params
}

// PanelTier identifies which fallback tier filled the suggestion panel.
type PanelTier string

const (
	TierLive    PanelTier = "live"
	TierRecent  PanelTier = "recent"
	TierPopular PanelTier = "popular"
)

// Panel is the tiered suggestion panel. Live suggestions carry books; the
// recent and popular tiers carry plain search terms.
type Panel struct {
	Tier  PanelTier
	Books []domain.Book
	Terms []string
}

// Vocabularies supplies the filter/sort vocabularies the storefront renders,
// so option lists come from the catalog rather than being hardcoded client
// side.
type Vocabularies struct {
	Categories   []string
	PriceBuckets []domain.PriceBucket
	SortOptions  []domain.SortOption
}

// CatalogService implements the business logic for catalog search,
// suggestions, recent searches, and shopper preferences.
type CatalogService struct {
	index      *catalog.Index
	recentRepo repository.RecentSearchRepository
	prefsRepo  repository.PreferenceRepository
	producer   *event.Producer
	logger     *slog.Logger
	popular    []string
	recentCap  int
}

// NewCatalogService creates a new catalog service. The producer may be nil
// when analytics publishing is disabled.
func NewCatalogService(
	index *catalog.Index,
	recentRepo repository.RecentSearchRepository,
	prefsRepo repository.PreferenceRepository,
	producer *event.Producer,
	logger *slog.Logger,
	popular []string,
) *CatalogService {
	return &CatalogService{
		index:      index,
		recentRepo: recentRepo,
		prefsRepo:  prefsRepo,
		producer:   producer,
		logger:     logger,
		popular:    popular,
		recentCap:  history.DefaultCap,
	}
}

// Search evaluates the catalog against the given parameters. A page past the
// end of the filtered set is corrected to the last valid page and the search
// re-issued, so callers always get the page they can actually display.
// Non-blank free text is recorded in the shopper's recent-search log and an
// analytics event is published; both are best effort and never fail the
// search.
func (s *CatalogService) Search(ctx context.Context, shopperID string, p query.Params) (*SearchResult, error) {
	start := time.Now()

	result, err := s.index.Search(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("search catalog: %w", err)
	}

	if len(result.Books) == 0 && result.Total > 0 && p.Page > 1 {
		last := catalog.LastPage(result.Total, p.PerPage)
		if last < p.Page {
			p = p.WithPage(last)
			result, err = s.index.Search(ctx, p)
			if err != nil {
				return nil, fmt.Errorf("search catalog on clamped page: %w", err)
			}
		}
	}

	searchDuration.Observe(time.Since(start).Seconds())
	searchesTotal.WithLabelValues(p.Sort).Inc()

	if term := strings.TrimSpace(p.FreeText); term != "" && shopperID != "" {
		if _, err := s.RecordSearch(ctx, shopperID, term); err != nil {
			s.logger.WarnContext(ctx, "failed to record recent search",
				slog.String("shopper_id", shopperID),
				slog.String("error", err.Error()),
			)
		}
	}

	s.publishSearchPerformed(ctx, shopperID, p, result.Total)

	return &SearchResult{
		Books:  result.Books,
		Total:  result.Total,
		Params: p,
	}, nil
}

// Suggest returns up to limit candidate books matching the query. Queries
// shorter than the minimum length yield no candidates.
func (s *CatalogService) Suggest(ctx context.Context, q string, limit int) ([]domain.Book, error) {
	trimmed := strings.TrimSpace(q)
	if len([]rune(trimmed)) < MinSuggestLength {
		return []domain.Book{}, nil
	}
	if limit <= 0 || limit > MaxSuggestLimit {
		limit = 0 // index default
	}

	candidates, err := s.index.Suggest(ctx, trimmed, limit)
	if err != nil {
		return nil, fmt.Errorf("suggest: %w", err)
	}
	return candidates, nil
}

// SuggestionPanel returns the highest-priority non-empty tier: live
// suggestions for the query, then the shopper's recent searches, then the
// configured popular list.
func (s *CatalogService) SuggestionPanel(ctx context.Context, shopperID, q string) (*Panel, error) {
	live, err := s.Suggest(ctx, q, 0)
	if err != nil {
		return nil, err
	}
	if len(live) > 0 {
		return &Panel{Tier: TierLive, Books: live}, nil
	}

	if shopperID != "" {
		recent, err := s.recentRepo.Get(ctx, shopperID)
		if err != nil {
			s.logger.WarnContext(ctx, "failed to load recent searches for panel",
				slog.String("shopper_id", shopperID),
				slog.String("error", err.Error()),
			)
		} else if len(recent) > 0 {
			return &Panel{Tier: TierRecent, Terms: recent}, nil
		}
	}

	return &Panel{Tier: TierPopular, Terms: append([]string(nil), s.popular...)}, nil
}

// RecordSearch adds a term to the shopper's recent-search log and returns the
// updated log.
func (s *CatalogService) RecordSearch(ctx context.Context, shopperID, term string) ([]string, error) {
	if shopperID == "" {
		return nil, apperrors.InvalidInput("shopper id is required")
	}
	if strings.TrimSpace(term) == "" {
		return nil, apperrors.InvalidInput("search term is required")
	}

	log, err := s.recentRepo.Get(ctx, shopperID)
	if err != nil {
		return nil, fmt.Errorf("load recent searches: %w", err)
	}

	updated := history.Record(log, term, s.recentCap)

	if err := s.recentRepo.Save(ctx, shopperID, updated); err != nil {
		return nil, fmt.Errorf("save recent searches: %w", err)
	}

	return updated, nil
}

// RecentSearches returns the shopper's recent-search log, most recent first.
func (s *CatalogService) RecentSearches(ctx context.Context, shopperID string) ([]string, error) {
	if shopperID == "" {
		return nil, apperrors.InvalidInput("shopper id is required")
	}

	log, err := s.recentRepo.Get(ctx, shopperID)
	if err != nil {
		return nil, fmt.Errorf("load recent searches: %w", err)
	}
	return log, nil
}

// ClearRecentSearches removes the shopper's recent-search log.
func (s *CatalogService) ClearRecentSearches(ctx context.Context, shopperID string) error {
	if shopperID == "" {
		return apperrors.InvalidInput("shopper id is required")
	}

	if err := s.recentRepo.Clear(ctx, shopperID); err != nil {
		return fmt.Errorf("clear recent searches: %w", err)
	}
	return nil
}

// Vocabularies returns the categories present in the index plus the static
// price buckets and sort options.
func (s *CatalogService) Vocabularies(ctx context.Context) (*Vocabularies, error) {
	categories, err := s.index.Categories(ctx)
	if err != nil {
		return nil, fmt.Errorf("load categories: %w", err)
	}

	return &Vocabularies{
		Categories:   categories,
		PriceBuckets: domain.DefaultPriceBuckets(),
		SortOptions:  domain.SortOptions(),
	}, nil
}

// GetPreferences returns the shopper's stored preferences, falling back to
// the storefront defaults when none are stored.
func (s *CatalogService) GetPreferences(ctx context.Context, shopperID string) (*domain.Preferences, error) {
	if shopperID == "" {
		return nil, apperrors.InvalidInput("shopper id is required")
	}

	prefs, err := s.prefsRepo.Get(ctx, shopperID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			defaults := domain.DefaultPreferences()
			return &defaults, nil
		}
		return nil, fmt.Errorf("get preferences: %w", err)
	}
	return prefs, nil
}

// SavePreferences persists the shopper's preferences.
func (s *CatalogService) SavePreferences(ctx context.Context, shopperID string, input PreferencesInput) (*domain.Preferences, error) {
	if shopperID == "" {
		return nil, apperrors.InvalidInput("shopper id is required")
	}

	prefs := &domain.Preferences{
		Language: strings.ToLower(strings.TrimSpace(input.Language)),
		Currency: strings.ToUpper(strings.TrimSpace(input.Currency)),
	}
	if prefs.Language == "" {
		return nil, apperrors.InvalidInput("language is required")
	}
	if len(prefs.Currency) != 3 {
		return nil, apperrors.InvalidInput("currency must be a 3-letter code")
	}

	if err := s.prefsRepo.Save(ctx, shopperID, prefs); err != nil {
		return nil, fmt.Errorf("save preferences: %w", err)
	}
	return prefs, nil
}

// IndexBook validates and upserts a single book into the catalog index.
func (s *CatalogService) IndexBook(ctx context.Context, input *IndexBookInput) error {
	book, err := bookFromInput(input)
	if err != nil {
		return err
	}

	if err := s.index.Upsert(ctx, *book); err != nil {
		return fmt.Errorf("index book: %w", err)
	}

	s.logger.InfoContext(ctx, "indexed book", slog.String("book_id", book.ID))
	return nil
}

// BulkIndexBooks validates and upserts a batch of books. The batch is
// all-or-nothing: one invalid entry rejects the whole request.
func (s *CatalogService) BulkIndexBooks(ctx context.Context, inputs []IndexBookInput) (int, error) {
	if len(inputs) == 0 {
		return 0, apperrors.InvalidInput("at least one book is required")
	}
	if len(inputs) > MaxBulkBooks {
		return 0, apperrors.InvalidInput(fmt.Sprintf("bulk request must not exceed %d books", MaxBulkBooks))
	}

	books := make([]domain.Book, 0, len(inputs))
	for i := range inputs {
		book, err := bookFromInput(&inputs[i])
		if err != nil {
			return 0, fmt.Errorf("book %d: %w", i, err)
		}
		books = append(books, *book)
	}

	if err := s.index.BulkUpsert(ctx, books); err != nil {
		return 0, fmt.Errorf("bulk index books: %w", err)
	}

	s.logger.InfoContext(ctx, "bulk indexed books", slog.Int("count", len(books)))
	return len(books), nil
}

// RemoveBook deletes a book from the catalog index.
func (s *CatalogService) RemoveBook(ctx context.Context, id string) error {
	if id == "" {
		return apperrors.InvalidInput("book id is required")
	}

	if err := s.index.Delete(ctx, id); err != nil {
		return fmt.Errorf("remove book: %w", err)
	}

	s.logger.InfoContext(ctx, "removed book from index", slog.String("book_id", id))
	return nil
}

// publishSearchPerformed emits a best-effort analytics event. Publish
// failures are logged and swallowed.
func (s *CatalogService) publishSearchPerformed(ctx context.Context, shopperID string, p query.Params, total int) {
	if s.producer == nil {
		return
	}

	data := event.SearchPerformedData{
		ShopperID: shopperID,
		Query:     p.FreeText,
		Category:  p.Category,
		Sort:      p.Sort,
		Page:      p.Page,
		PerPage:   p.PerPage,
		Total:     total,
	}

	if err := s.producer.PublishSearchPerformed(ctx, data); err != nil {
		s.logger.WarnContext(ctx, "failed to publish search analytics event",
			slog.String("error", err.Error()),
		)
	}
}

func bookFromInput(input *IndexBookInput) (*domain.Book, error) {
	if input.ID == "" {
		return nil, apperrors.InvalidInput("book id is required")
	}
	if input.Title == "" {
		return nil, apperrors.InvalidInput("title is required")
	}
	if input.Author == "" {
		return nil, apperrors.InvalidInput("author is required")
	}
	if input.Category == "" {
		return nil, apperrors.InvalidInput("category is required")
	}
	if input.Price < 0 {
		return nil, apperrors.InvalidInput("price must not be negative")
	}
	if input.DiscountPrice != nil {
		if *input.DiscountPrice < 0 {
			return nil, apperrors.InvalidInput("discount price must not be negative")
		}
		if *input.DiscountPrice > input.Price {
			return nil, apperrors.InvalidInput("discount price must not exceed price")
		}
	}
	if input.Rating < 0 || input.Rating > 5 {
		return nil, apperrors.InvalidInput("rating must be between 0 and 5")
	}
	if input.Stock < 0 {
		return nil, apperrors.InvalidInput("stock must not be negative")
	}

	return &domain.Book{
		ID:            input.ID,
		Title:         input.Title,
		Author:        input.Author,
		Category:      input.Category,
		Price:         input.Price,
		DiscountPrice: input.DiscountPrice,
		Rating:        input.Rating,
		Stock:         input.Stock,
		PublishedAt:   input.PublishedAt,
		Featured:      input.Featured,
	}, nil
}
