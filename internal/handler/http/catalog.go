package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/romindigital/ikirezi-bookstore-sub002/internal/domain"
	"github.com/romindigital/ikirezi-bookstore-sub002/internal/query"
	"github.com/romindigital/ikirezi-bookstore-sub002/internal/service"
	apperrors "github.com/romindigital/ikirezi-bookstore-sub002/pkg/errors"
	"github.com/romindigital/ikirezi-bookstore-sub002/pkg/httputil"
	"github.com/romindigital/ikirezi-bookstore-sub002/pkg/validator"
)

// CatalogHandler handles HTTP requests for catalog endpoints.
type CatalogHandler struct {
	service *service.CatalogService
	logger  *slog.Logger
}

// NewCatalogHandler creates a new catalog HTTP handler.
func NewCatalogHandler(svc *service.CatalogService, logger *slog.Logger) *CatalogHandler {
	return &CatalogHandler{
		service: svc,
		logger:  logger,
	}
}

// --- Request DTOs ---

// IndexBookRequest is the JSON request body for indexing a book.
type IndexBookRequest struct {
	ID            string  `json:"id" validate:"required"`
	Title         string  `json:"title" validate:"required,min=1"`
	Author        string  `json:"author" validate:"required,min=1"`
	Category      string  `json:"category" validate:"required,min=1"`
	Price         int64   `json:"price" validate:"gte=0"`
	DiscountPrice *int64  `json:"discount_price,omitempty"`
	Rating        float64 `json:"rating" validate:"gte=0,lte=5"`
	Stock         int     `json:"stock" validate:"gte=0"`
	PublishedAt   string  `json:"published_at,omitempty"`
	Featured      bool    `json:"featured"`
}

// BulkIndexRequest is the JSON request body for bulk indexing books.
type BulkIndexRequest struct {
	Books []IndexBookRequest `json:"books" validate:"required,min=1,max=500,dive"`
}

// RecordSearchRequest is the JSON request body for recording a search term.
type RecordSearchRequest struct {
	Term string `json:"term" validate:"required,min=1"`
}

// PreferencesRequest is the JSON request body for saving preferences.
type PreferencesRequest struct {
	Language string `json:"language" validate:"required"`
	Currency string `json:"currency" validate:"required,len=3"`
}

// --- Response DTOs ---

// PanelResponse is the tiered suggestion panel payload.
type PanelResponse struct {
	Tier  string        `json:"tier"`
	Books []domain.Book `json:"books,omitempty"`
	Terms []string      `json:"terms,omitempty"`
}

// MetaResponse carries the filter/sort vocabularies the storefront renders.
type MetaResponse struct {
	Categories   []string             `json:"categories"`
	PriceBuckets []domain.PriceBucket `json:"price_buckets"`
	SortOptions  []domain.SortOption  `json:"sort_options"`
}

// --- Handlers ---

// SearchBooks handles GET /api/v1/catalog/books.
//
// Query parameters are parsed leniently: malformed or unknown values fall
// back to defaults rather than producing an error, so a hand-edited URL
// always renders a page.
func (h *CatalogHandler) SearchBooks(w http.ResponseWriter, r *http.Request) {
	params := query.FromValues(r.URL.Query(), query.Defaults())
	shopperID, _ := shopperIDFromContext(r.Context())

	result, err := h.service.Search(r.Context(), shopperID, params)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	resp := httputil.NewPaginatedResponse(result.Books, result.Total, result.Params.Page, result.Params.PerPage)
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: resp})
}

// Suggest handles GET /api/v1/catalog/suggest.
func (h *CatalogHandler) Suggest(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))

	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		if l, err := strconv.Atoi(v); err == nil && l > 0 && l <= service.MaxSuggestLimit {
			limit = l
		}
	}

	candidates, err := h.service.Suggest(r.Context(), q, limit)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: map[string]any{"suggestions": candidates}})
}

// SuggestionPanel handles GET /api/v1/catalog/suggestions.
func (h *CatalogHandler) SuggestionPanel(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	shopperID, _ := shopperIDFromContext(r.Context())

	panel, err := h.service.SuggestionPanel(r.Context(), shopperID, q)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: PanelResponse{
		Tier:  string(panel.Tier),
		Books: panel.Books,
		Terms: panel.Terms,
	}})
}

// Meta handles GET /api/v1/catalog/meta.
func (h *CatalogHandler) Meta(w http.ResponseWriter, r *http.Request) {
	vocab, err := h.service.Vocabularies(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: MetaResponse{
		Categories:   vocab.Categories,
		PriceBuckets: vocab.PriceBuckets,
		SortOptions:  vocab.SortOptions,
	}})
}

// RecentSearches handles GET /api/v1/searches/recent.
func (h *CatalogHandler) RecentSearches(w http.ResponseWriter, r *http.Request) {
	shopperID, _ := shopperIDFromContext(r.Context())

	log, err := h.service.RecentSearches(r.Context(), shopperID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: map[string]any{"searches": log}})
}

// RecordSearch handles POST /api/v1/searches/recent.
func (h *CatalogHandler) RecordSearch(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 64<<10)

	var req RecordSearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
		})
		return
	}

	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	shopperID, _ := shopperIDFromContext(r.Context())

	log, err := h.service.RecordSearch(r.Context(), shopperID, req.Term)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: map[string]any{"searches": log}})
}

// ClearRecentSearches handles DELETE /api/v1/searches/recent.
func (h *CatalogHandler) ClearRecentSearches(w http.ResponseWriter, r *http.Request) {
	shopperID, _ := shopperIDFromContext(r.Context())

	if err := h.service.ClearRecentSearches(r.Context(), shopperID); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: map[string]string{"status": "cleared"}})
}

// GetPreferences handles GET /api/v1/preferences.
func (h *CatalogHandler) GetPreferences(w http.ResponseWriter, r *http.Request) {
	shopperID, _ := shopperIDFromContext(r.Context())

	prefs, err := h.service.GetPreferences(r.Context(), shopperID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: prefs})
}

// SavePreferences handles PUT /api/v1/preferences.
func (h *CatalogHandler) SavePreferences(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 64<<10)

	var req PreferencesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
		})
		return
	}

	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	shopperID, _ := shopperIDFromContext(r.Context())

	prefs, err := h.service.SavePreferences(r.Context(), shopperID, service.PreferencesInput{
		Language: req.Language,
		Currency: req.Currency,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: prefs})
}

// IndexBook handles POST /api/v1/catalog/index.
func (h *CatalogHandler) IndexBook(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var req IndexBookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
		})
		return
	}

	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	input, err := indexInputFromRequest(&req)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	if err := h.service.IndexBook(r.Context(), input); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: map[string]string{"id": req.ID, "status": "indexed"}})
}

// BulkIndex handles POST /api/v1/catalog/bulk.
func (h *CatalogHandler) BulkIndex(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 10<<20) // 10MB limit for bulk endpoint

	var req BulkIndexRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
		})
		return
	}

	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	inputs := make([]service.IndexBookInput, 0, len(req.Books))
	for i := range req.Books {
		input, err := indexInputFromRequest(&req.Books[i])
		if err != nil {
			httputil.WriteError(w, r, err, h.logger)
			return
		}
		inputs = append(inputs, *input)
	}

	n, err := h.service.BulkIndexBooks(r.Context(), inputs)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: map[string]any{"indexed": n, "status": "ok"}})
}

// DeleteBook handles DELETE /api/v1/catalog/{id}.
func (h *CatalogHandler) DeleteBook(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.service.RemoveBook(r.Context(), id); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: map[string]string{"id": id, "status": "deleted"}})
}

func indexInputFromRequest(req *IndexBookRequest) (*service.IndexBookInput, error) {
	input := &service.IndexBookInput{
		ID:            req.ID,
		Title:         req.Title,
		Author:        req.Author,
		Category:      req.Category,
		Price:         req.Price,
		DiscountPrice: req.DiscountPrice,
		Rating:        req.Rating,
		Stock:         req.Stock,
		Featured:      req.Featured,
	}

	if req.PublishedAt != "" {
		ts, err := time.Parse(time.RFC3339, req.PublishedAt)
		if err != nil {
			return nil, apperrors.InvalidInput("published_at must be an RFC 3339 timestamp")
		}
		input.PublishedAt = ts
	}

	return input, nil
}
