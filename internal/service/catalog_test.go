package service

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/romindigital/ikirezi-bookstore-sub002/internal/catalog"
	"github.com/romindigital/ikirezi-bookstore-sub002/internal/domain"
	"github.com/romindigital/ikirezi-bookstore-sub002/internal/query"
	apperrors "github.com/romindigital/ikirezi-bookstore-sub002/pkg/errors"
)

// --- Mock Repositories ---

type mockRecentSearchRepository struct {
	mock.Mock
}

func (m *mockRecentSearchRepository) Get(ctx context.Context, shopperID string) ([]string, error) {
	args := m.Called(ctx, shopperID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *mockRecentSearchRepository) Save(ctx context.Context, shopperID string, log []string) error {
	args := m.Called(ctx, shopperID, log)
	return args.Error(0)
}

func (m *mockRecentSearchRepository) Clear(ctx context.Context, shopperID string) error {
	args := m.Called(ctx, shopperID)
	return args.Error(0)
}

type mockPreferenceRepository struct {
	mock.Mock
}

func (m *mockPreferenceRepository) Get(ctx context.Context, shopperID string) (*domain.Preferences, error) {
	args := m.Called(ctx, shopperID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Preferences), args.Error(1)
}

func (m *mockPreferenceRepository) Save(ctx context.Context, shopperID string, prefs *domain.Preferences) error {
	args := m.Called(ctx, shopperID, prefs)
	return args.Error(0)
}

// --- Test Helpers ---

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func seededIndex(t *testing.T) *catalog.Index {
	t.Helper()
	ix := catalog.NewIndex()
	books := []domain.Book{
		{ID: "b1", Title: "Dune", Author: "Frank Herbert", Category: "science-fiction", Price: 1500, Rating: 4.8, Stock: 3, PublishedAt: time.Date(1965, 8, 1, 0, 0, 0, 0, time.UTC)},
		{ID: "b2", Title: "Foundation", Author: "Isaac Asimov", Category: "science-fiction", Price: 1200, Rating: 4.5, Stock: 5, PublishedAt: time.Date(1951, 6, 1, 0, 0, 0, 0, time.UTC)},
		{ID: "b3", Title: "Hyperion", Author: "Dan Simmons", Category: "science-fiction", Price: 1800, Rating: 4.3, Stock: 0, PublishedAt: time.Date(1989, 5, 26, 0, 0, 0, 0, time.UTC)},
		{ID: "b4", Title: "Pride and Prejudice", Author: "Jane Austen", Category: "classics", Price: 900, Rating: 4.6, Stock: 7, PublishedAt: time.Date(1813, 1, 28, 0, 0, 0, 0, time.UTC)},
	}
	require.NoError(t, ix.BulkUpsert(context.Background(), books))
	return ix
}

func newTestService(t *testing.T, recentRepo *mockRecentSearchRepository, prefsRepo *mockPreferenceRepository) *CatalogService {
	t.Helper()
	return NewCatalogService(seededIndex(t), recentRepo, prefsRepo, nil, newTestLogger(),
		[]string{"bestsellers", "new releases"})
}

// --- Search ---

func TestCatalogService_Search_ReturnsPage(t *testing.T) {
	recentRepo := new(mockRecentSearchRepository)
	svc := newTestService(t, recentRepo, new(mockPreferenceRepository))

	p := query.Defaults().WithCategory("science-fiction")

	result, err := svc.Search(context.Background(), "", p)
	require.NoError(t, err)
	assert.Equal(t, 3, result.Total)
	assert.Len(t, result.Books, 3)
	assert.Equal(t, 1, result.Params.Page)
}

func TestCatalogService_Search_ClampsPagePastEnd(t *testing.T) {
	recentRepo := new(mockRecentSearchRepository)
	svc := newTestService(t, recentRepo, new(mockPreferenceRepository))

	// 4 books, 2 per page = 2 pages; page 9 must be corrected to page 2.
	p := query.Defaults().WithPerPage(2).WithPage(9)

	result, err := svc.Search(context.Background(), "", p)
	require.NoError(t, err)
	assert.Equal(t, 4, result.Total)
	assert.Len(t, result.Books, 2)
	assert.Equal(t, 2, result.Params.Page, "page past the end is re-issued on the last valid page")
}

func TestCatalogService_Search_RecordsFreeTextForShopper(t *testing.T) {
	recentRepo := new(mockRecentSearchRepository)
	recentRepo.On("Get", mock.Anything, "shopper-1").Return([]string{"foundation"}, nil)
	recentRepo.On("Save", mock.Anything, "shopper-1", []string{"dune", "foundation"}).Return(nil)

	svc := newTestService(t, recentRepo, new(mockPreferenceRepository))

	p := query.Defaults().WithFreeText("dune")

	result, err := svc.Search(context.Background(), "shopper-1", p)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Total)
	recentRepo.AssertExpectations(t)
}

func TestCatalogService_Search_RecordFailureDoesNotFailSearch(t *testing.T) {
	recentRepo := new(mockRecentSearchRepository)
	recentRepo.On("Get", mock.Anything, "shopper-1").Return(nil, assert.AnError)

	svc := newTestService(t, recentRepo, new(mockPreferenceRepository))

	p := query.Defaults().WithFreeText("dune")

	result, err := svc.Search(context.Background(), "shopper-1", p)
	require.NoError(t, err, "recent-search persistence is best effort")
	assert.Equal(t, 1, result.Total)
}

func TestCatalogService_Search_AnonymousShopperSkipsRecording(t *testing.T) {
	recentRepo := new(mockRecentSearchRepository)
	svc := newTestService(t, recentRepo, new(mockPreferenceRepository))

	p := query.Defaults().WithFreeText("dune")

	_, err := svc.Search(context.Background(), "", p)
	require.NoError(t, err)
	recentRepo.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
}

// --- Suggest ---

func TestCatalogService_Suggest_BelowMinLengthReturnsNothing(t *testing.T) {
	svc := newTestService(t, new(mockRecentSearchRepository), new(mockPreferenceRepository))

	got, err := svc.Suggest(context.Background(), "d", 5)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestCatalogService_Suggest_MatchesTitleAndAuthor(t *testing.T) {
	svc := newTestService(t, new(mockRecentSearchRepository), new(mockPreferenceRepository))

	got, err := svc.Suggest(context.Background(), "asimov", 5)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Foundation", got[0].Title)
}

// --- SuggestionPanel ---

func TestCatalogService_SuggestionPanel_LiveTierWins(t *testing.T) {
	recentRepo := new(mockRecentSearchRepository)
	svc := newTestService(t, recentRepo, new(mockPreferenceRepository))

	panel, err := svc.SuggestionPanel(context.Background(), "shopper-1", "dune")
	require.NoError(t, err)
	assert.Equal(t, TierLive, panel.Tier)
	require.Len(t, panel.Books, 1)
	assert.Equal(t, "Dune", panel.Books[0].Title)
	recentRepo.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
}

func TestCatalogService_SuggestionPanel_FallsBackToRecent(t *testing.T) {
	recentRepo := new(mockRecentSearchRepository)
	recentRepo.On("Get", mock.Anything, "shopper-1").Return([]string{"hyperion"}, nil)

	svc := newTestService(t, recentRepo, new(mockPreferenceRepository))

	panel, err := svc.SuggestionPanel(context.Background(), "shopper-1", "zzzz")
	require.NoError(t, err)
	assert.Equal(t, TierRecent, panel.Tier)
	assert.Equal(t, []string{"hyperion"}, panel.Terms)
}

func TestCatalogService_SuggestionPanel_FallsBackToPopular(t *testing.T) {
	recentRepo := new(mockRecentSearchRepository)
	recentRepo.On("Get", mock.Anything, "shopper-1").Return([]string{}, nil)

	svc := newTestService(t, recentRepo, new(mockPreferenceRepository))

	panel, err := svc.SuggestionPanel(context.Background(), "shopper-1", "zzzz")
	require.NoError(t, err)
	assert.Equal(t, TierPopular, panel.Tier)
	assert.Equal(t, []string{"bestsellers", "new releases"}, panel.Terms)
}

func TestCatalogService_SuggestionPanel_AnonymousSkipsRecentTier(t *testing.T) {
	recentRepo := new(mockRecentSearchRepository)
	svc := newTestService(t, recentRepo, new(mockPreferenceRepository))

	panel, err := svc.SuggestionPanel(context.Background(), "", "zzzz")
	require.NoError(t, err)
	assert.Equal(t, TierPopular, panel.Tier)
	recentRepo.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
}

// --- Recent searches ---

func TestCatalogService_RecordSearch_RequiresShopper(t *testing.T) {
	svc := newTestService(t, new(mockRecentSearchRepository), new(mockPreferenceRepository))

	_, err := svc.RecordSearch(context.Background(), "", "dune")
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestCatalogService_RecordSearch_DedupesAndCaps(t *testing.T) {
	recentRepo := new(mockRecentSearchRepository)
	recentRepo.On("Get", mock.Anything, "shopper-1").
		Return([]string{"a1", "a2", "a3", "a4", "a5"}, nil)
	recentRepo.On("Save", mock.Anything, "shopper-1", []string{"a6", "a1", "a2", "a3", "a4"}).
		Return(nil)

	svc := newTestService(t, recentRepo, new(mockPreferenceRepository))

	got, err := svc.RecordSearch(context.Background(), "shopper-1", "a6")
	require.NoError(t, err)
	assert.Equal(t, []string{"a6", "a1", "a2", "a3", "a4"}, got)
	recentRepo.AssertExpectations(t)
}

func TestCatalogService_ClearRecentSearches(t *testing.T) {
	recentRepo := new(mockRecentSearchRepository)
	recentRepo.On("Clear", mock.Anything, "shopper-1").Return(nil)

	svc := newTestService(t, recentRepo, new(mockPreferenceRepository))

	require.NoError(t, svc.ClearRecentSearches(context.Background(), "shopper-1"))
	recentRepo.AssertExpectations(t)
}

// --- Vocabularies ---

func TestCatalogService_Vocabularies(t *testing.T) {
	svc := newTestService(t, new(mockRecentSearchRepository), new(mockPreferenceRepository))

	vocab, err := svc.Vocabularies(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"classics", "science-fiction"}, vocab.Categories)
	assert.NotEmpty(t, vocab.PriceBuckets)
	assert.NotEmpty(t, vocab.SortOptions)
}

// --- Preferences ---

func TestCatalogService_GetPreferences_DefaultsWhenMissing(t *testing.T) {
	prefsRepo := new(mockPreferenceRepository)
	prefsRepo.On("Get", mock.Anything, "shopper-1").
		Return(nil, apperrors.NotFound("preferences", "shopper-1"))

	svc := newTestService(t, new(mockRecentSearchRepository), prefsRepo)

	got, err := svc.GetPreferences(context.Background(), "shopper-1")
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultPreferences(), *got)
}

func TestCatalogService_SavePreferences_NormalizesInput(t *testing.T) {
	prefsRepo := new(mockPreferenceRepository)
	expected := &domain.Preferences{Language: "fr", Currency: "EUR"}
	prefsRepo.On("Save", mock.Anything, "shopper-1", expected).Return(nil)

	svc := newTestService(t, new(mockRecentSearchRepository), prefsRepo)

	got, err := svc.SavePreferences(context.Background(), "shopper-1", PreferencesInput{
		Language: " FR ",
		Currency: " eur ",
	})
	require.NoError(t, err)
	assert.Equal(t, expected, got)
	prefsRepo.AssertExpectations(t)
}

func TestCatalogService_SavePreferences_RejectsBadCurrency(t *testing.T) {
	svc := newTestService(t, new(mockRecentSearchRepository), new(mockPreferenceRepository))

	_, err := svc.SavePreferences(context.Background(), "shopper-1", PreferencesInput{
		Language: "en",
		Currency: "dollars",
	})
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

// --- Index administration ---

func TestCatalogService_IndexBook_RejectsDiscountAbovePrice(t *testing.T) {
	svc := newTestService(t, new(mockRecentSearchRepository), new(mockPreferenceRepository))

	discount := int64(2000)
	err := svc.IndexBook(context.Background(), &IndexBookInput{
		ID:            "b9",
		Title:         "Overpriced",
		Author:        "Nobody",
		Category:      "classics",
		Price:         1500,
		DiscountPrice: &discount,
	})
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestCatalogService_IndexBook_ThenSearchable(t *testing.T) {
	svc := newTestService(t, new(mockRecentSearchRepository), new(mockPreferenceRepository))

	err := svc.IndexBook(context.Background(), &IndexBookInput{
		ID:       "b9",
		Title:    "Snow Crash",
		Author:   "Neal Stephenson",
		Category: "science-fiction",
		Price:    1400,
		Rating:   4.1,
		Stock:    2,
	})
	require.NoError(t, err)

	got, err := svc.Suggest(context.Background(), "snow", 5)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "b9", got[0].ID)
}

func TestCatalogService_BulkIndexBooks_AllOrNothing(t *testing.T) {
	svc := newTestService(t, new(mockRecentSearchRepository), new(mockPreferenceRepository))

	inputs := []IndexBookInput{
		{ID: "b9", Title: "Valid", Author: "Author", Category: "classics", Price: 100},
		{ID: "", Title: "Invalid", Author: "Author", Category: "classics", Price: 100},
	}

	n, err := svc.BulkIndexBooks(context.Background(), inputs)
	assert.Zero(t, n)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)

	got, err := svc.Suggest(context.Background(), "valid", 5)
	require.NoError(t, err)
	assert.Empty(t, got, "a rejected batch must index nothing")
}

func TestCatalogService_RemoveBook(t *testing.T) {
	svc := newTestService(t, new(mockRecentSearchRepository), new(mockPreferenceRepository))

	require.NoError(t, svc.RemoveBook(context.Background(), "b1"))

	got, err := svc.Suggest(context.Background(), "dune", 5)
	require.NoError(t, err)
	assert.Empty(t, got)
}
