package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/romindigital/ikirezi-bookstore-sub002/internal/service"
	"github.com/romindigital/ikirezi-bookstore-sub002/pkg/health"
	"github.com/romindigital/ikirezi-bookstore-sub002/pkg/middleware"
)

// NewRouter creates a chi router with all catalog service routes registered.
func NewRouter(
	catalogService *service.CatalogService,
	healthHandler *health.Handler,
	logger *slog.Logger,
	corsCfg middleware.CORSConfig,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.CORS(corsCfg))
	r.Use(middleware.Recovery(logger))
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.PrometheusMetrics("storefront"))
	r.Use(middleware.RequestLogger(logger))

	// Health check endpoints
	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})

	// Catalog API endpoints
	catalogHandler := NewCatalogHandler(catalogService, logger)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(ShopperIDFromHeader)

		r.Route("/catalog", func(r chi.Router) {
			r.Get("/books", catalogHandler.SearchBooks)
			r.Get("/suggest", catalogHandler.Suggest)
			r.Get("/suggestions", catalogHandler.SuggestionPanel)
			r.Get("/meta", catalogHandler.Meta)

			r.Group(func(r chi.Router) {
				r.Use(ContentTypeJSON)
				r.Post("/index", catalogHandler.IndexBook)
				r.Post("/bulk", catalogHandler.BulkIndex)
				r.Delete("/{id}", catalogHandler.DeleteBook)
			})
		})

		r.Route("/searches/recent", func(r chi.Router) {
			r.Use(ContentTypeJSON)
			r.Use(RequireShopper)

			r.Get("/", catalogHandler.RecentSearches)
			r.Post("/", catalogHandler.RecordSearch)
			r.Delete("/", catalogHandler.ClearRecentSearches)
		})

		r.Route("/preferences", func(r chi.Router) {
			r.Use(ContentTypeJSON)
			r.Use(RequireShopper)

			r.Get("/", catalogHandler.GetPreferences)
			r.Put("/", catalogHandler.SavePreferences)
		})
	})

	return r
}
